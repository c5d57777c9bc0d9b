package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	historyrepository "github.com/quoteforge/quoteforge/internal/confighistory/repository"
	historyservice "github.com/quoteforge/quoteforge/internal/confighistory/service"
	requestoverridedomain "github.com/quoteforge/quoteforge/internal/requestoverride/domain"
	"github.com/quoteforge/quoteforge/internal/requestoverride/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (requestoverridedomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&requestoverridedomain.RequestConfigurationOverride{},
		&historydomain.ConfigurationHistory{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()

	historySvc := historyservice.NewService(historyservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  historyrepository.Provide(),
	})

	svc := NewService(ServiceParam{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Repo:       repository.Provide(),
		HistorySvc: historySvc,
	})
	return svc, db
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestSet_CreatesThenUpdates(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	requestID := uuid.NewString()

	created, err := svc.Set(ctx, requestID, requestoverridedomain.SetParams{
		OverridePricing:     boolPtr(true),
		CoordinationEnabled: boolPtr(true),
		CoordinationRate:    decPtr("0.25"),
		Reason:              strPtr("cliente VIP"),
	}, "ana")
	require.NoError(t, err)
	assert.True(t, created.OverridePricing)
	assert.Equal(t, "0.25", created.CoordinationRate.String())
	assert.Equal(t, "cliente VIP", created.Reason)
	// Defaults fill the untouched axes.
	assert.Equal(t, "final_total", created.CalculationBase)
	assert.True(t, created.RoundToCents)

	updated, err := svc.Set(ctx, requestID, requestoverridedomain.SetParams{
		OverrideCurrency: boolPtr(true),
		Currency:         strPtr("eur"),
	}, "luis")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.OverrideCurrency)
	assert.Equal(t, "EUR", updated.Currency)
	// Earlier values persist.
	assert.True(t, updated.OverridePricing)
	assert.Equal(t, "0.25", updated.CoordinationRate.String())

	var rows int64
	require.NoError(t, db.Model(&requestoverridedomain.RequestConfigurationOverride{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestSet_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	requestID := uuid.NewString()

	_, err := svc.Set(ctx, requestID, requestoverridedomain.SetParams{
		CoordinationRate: decPtr("1.5"),
	}, "ana")
	assert.ErrorIs(t, err, requestoverridedomain.ErrInvalidCoordinationRate)

	_, err = svc.Set(ctx, "nope", requestoverridedomain.SetParams{}, "ana")
	assert.ErrorIs(t, err, requestoverridedomain.ErrInvalidRequestID)
}

func TestSet_FlagOnlyChangeIsAudited(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	requestID := uuid.NewString()

	created, err := svc.Set(ctx, requestID, requestoverridedomain.SetParams{
		OverridePricing: boolPtr(true),
	}, "ana")
	require.NoError(t, err)
	require.True(t, created.RoundToCents)
	require.True(t, created.TaxApplyToSubtotalWithCoordination)

	updated, err := svc.Set(ctx, requestID, requestoverridedomain.SetParams{
		RoundToCents:                       boolPtr(false),
		TaxApplyToSubtotalWithCoordination: boolPtr(false),
		CoordinationApplyToTotal:           boolPtr(true),
	}, "ana")
	require.NoError(t, err)
	assert.False(t, updated.RoundToCents)
	assert.False(t, updated.TaxApplyToSubtotalWithCoordination)
	assert.True(t, updated.CoordinationApplyToTotal)

	var updateCount int64
	require.NoError(t, db.Model(&historydomain.ConfigurationHistory{}).
		Where("change_type = ?", historydomain.ChangeUpdate).
		Count(&updateCount).Error)
	assert.EqualValues(t, 1, updateCount)
}

func TestClear_RemovesAndAudits(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	requestID := uuid.NewString()

	_, err := svc.Set(ctx, requestID, requestoverridedomain.SetParams{
		OverrideLanguage: boolPtr(true),
		Language:         strPtr("fr"),
	}, "ana")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, requestID, "luis"))

	_, err = svc.Get(ctx, requestID)
	assert.ErrorIs(t, err, requestoverridedomain.ErrNotFound)

	var deleteCount int64
	require.NoError(t, db.Model(&historydomain.ConfigurationHistory{}).
		Where("change_type = ? AND actor = ?", historydomain.ChangeDelete, "luis").
		Count(&deleteCount).Error)
	assert.EqualValues(t, 1, deleteCount)

	err = svc.Clear(ctx, requestID, "luis")
	assert.ErrorIs(t, err, requestoverridedomain.ErrNotFound)
}
