package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	industrytemplatedomain "github.com/quoteforge/quoteforge/internal/industrytemplate/domain"
	industrytemplaterepository "github.com/quoteforge/quoteforge/internal/industrytemplate/repository"
	"github.com/quoteforge/quoteforge/internal/migration"
	pricingconfigdomain "github.com/quoteforge/quoteforge/internal/pricingconfig/domain"
	pricingconfigrepository "github.com/quoteforge/quoteforge/internal/pricingconfig/repository"
	requestoverridedomain "github.com/quoteforge/quoteforge/internal/requestoverride/domain"
	requestoverriderepository "github.com/quoteforge/quoteforge/internal/requestoverride/repository"
	resolutiondomain "github.com/quoteforge/quoteforge/internal/resolution/domain"
	userdefaultdomain "github.com/quoteforge/quoteforge/internal/userdefault/domain"
	userdefaultrepository "github.com/quoteforge/quoteforge/internal/userdefault/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   resolutiondomain.Service
	db    *gorm.DB
	genID *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&pricingconfigdomain.QuoteRequest{},
		&pricingconfigdomain.PricingConfiguration{},
		&pricingconfigdomain.CoordinationSetting{},
		&pricingconfigdomain.CostPerPersonSetting{},
		&pricingconfigdomain.TaxSetting{},
		&userdefaultdomain.UserDefaultConfiguration{},
		&industrytemplatedomain.IndustryTemplate{},
		&requestoverridedomain.RequestConfigurationOverride{},
	))
	require.NoError(t, migration.EnsureActiveIndex(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:           db,
		Log:          zap.NewNop(),
		ConfigRepo:   pricingconfigrepository.Provide(),
		OverrideRepo: requestoverriderepository.Provide(),
		DefaultRepo:  userdefaultrepository.Provide(),
		TemplateRepo: industrytemplaterepository.Provide(),
	})

	return &fixture{svc: svc, db: db, genID: node}
}

func (f *fixture) seedRequest(t *testing.T, userID, industry string) string {
	t.Helper()
	requestID := uuid.NewString()
	require.NoError(t, f.db.Create(&pricingconfigdomain.QuoteRequest{
		ID:        requestID,
		UserID:    userID,
		Industry:  industry,
		CreatedAt: time.Now().UTC(),
	}).Error)
	return requestID
}

func (f *fixture) seedUserDefault(t *testing.T, userID string) *userdefaultdomain.UserDefaultConfiguration {
	t.Helper()
	cfg := &userdefaultdomain.UserDefaultConfiguration{
		ID:                  f.genID.Generate(),
		UserID:              userID,
		CoordinationEnabled: true,
		CoordinationRate:    decimal.RequireFromString("0.12"),
		TaxEnabled:          true,
		TaxRate:             decimal.RequireFromString("0.16"),
		TaxApplyToSubtotalWithCoordination: true,
		CalculationBase:     "final_total",
		RoundToCents:        true,
		Currency:            "USD",
		Language:            "en",
		BrandingTemplate:    "minimal",
	}
	require.NoError(t, f.db.Create(cfg).Error)
	return cfg
}

func (f *fixture) seedTemplate(t *testing.T, industry string) *industrytemplatedomain.IndustryTemplate {
	t.Helper()
	template := &industrytemplatedomain.IndustryTemplate{
		ID:                  f.genID.Generate(),
		Industry:            industry,
		Name:                "Base",
		CoordinationEnabled: true,
		CoordinationRate:    decimal.RequireFromString("0.18"),
		TaxEnabled:          true,
		TaxRate:             decimal.RequireFromString("0.16"),
		TaxApplyToSubtotalWithCoordination: true,
		CalculationBase:     "final_total",
		RoundToCents:        true,
		Currency:            "MXN",
		Language:            "es",
		BrandingTemplate:    "standard",
	}
	require.NoError(t, f.db.Create(template).Error)
	return template
}

func (f *fixture) seedActiveConfig(t *testing.T, requestID string, isDefault bool) *pricingconfigdomain.PricingConfiguration {
	t.Helper()
	cfg := &pricingconfigdomain.PricingConfiguration{
		ID:        f.genID.Generate(),
		RequestID: requestID,
		Name:      "Configuracion de prueba",
		Active:    true,
		Status:    pricingconfigdomain.StatusActive,
		IsDefault: isDefault,
		CreatedBy: "ana",
		UpdatedBy: "ana",
	}
	require.NoError(t, f.db.Create(cfg).Error)
	require.NoError(t, f.db.Create(&pricingconfigdomain.CoordinationSetting{
		ID:              f.genID.Generate(),
		ConfigurationID: cfg.ID,
		Enabled:         true,
		Rate:            decimal.RequireFromString("0.2"),
	}).Error)
	require.NoError(t, f.db.Create(&pricingconfigdomain.TaxSetting{
		ID:              f.genID.Generate(),
		ConfigurationID: cfg.ID,
		Enabled:         true,
		Rate:            decimal.RequireFromString("0.08"),
	}).Error)
	return cfg
}

func (f *fixture) seedOverride(t *testing.T, requestID string) *requestoverridedomain.RequestConfigurationOverride {
	t.Helper()
	override := &requestoverridedomain.RequestConfigurationOverride{
		ID:                  f.genID.Generate(),
		RequestID:           requestID,
		OverridePricing:     true,
		OverrideCurrency:    true,
		OverrideLanguage:    true,
		CoordinationEnabled: true,
		CoordinationRate:    decimal.RequireFromString("0.25"),
		CalculationBase:     "subtotal",
		Currency:            "EUR",
		Language:            "fr",
		Reason:              "cliente internacional",
	}
	require.NoError(t, f.db.Create(override).Error)
	return override
}

func TestResolve_SystemDefaultsWhenNothingConfigured(t *testing.T) {
	f := newFixture(t)

	requestID := uuid.NewString()
	effective, err := f.svc.Resolve(context.Background(), requestID)
	require.NoError(t, err)

	assert.Equal(t, resolutiondomain.DefaultCurrency, effective.Currency)
	assert.Equal(t, resolutiondomain.DefaultLanguage, effective.Language)
	assert.Equal(t, resolutiondomain.DefaultBrandingTemplate, effective.Branding.Template)
	assert.False(t, effective.Pricing.Coordination.Enabled)
	assert.False(t, effective.Pricing.Tax.Enabled)
	for _, group := range []resolutiondomain.FieldGroup{
		resolutiondomain.GroupPricing,
		resolutiondomain.GroupBranding,
		resolutiondomain.GroupCurrency,
		resolutiondomain.GroupLanguage,
	} {
		assert.Equal(t, resolutiondomain.SourceSystemDefault, effective.Sources[group])
	}
}

func TestResolve_InvalidRequestID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Resolve(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, resolutiondomain.ErrInvalidRequestID)
}

func TestResolve_IndustryTemplateLayer(t *testing.T) {
	f := newFixture(t)
	f.seedTemplate(t, "catering")
	requestID := f.seedRequest(t, "user-1", "catering")

	effective, err := f.svc.Resolve(context.Background(), requestID)
	require.NoError(t, err)

	assert.Equal(t, resolutiondomain.SourceIndustryTemplate, effective.Sources[resolutiondomain.GroupPricing])
	assert.Equal(t, "0.18", effective.Pricing.Coordination.Rate.String())
	assert.Equal(t, resolutiondomain.SourceIndustryTemplate, effective.Sources[resolutiondomain.GroupCurrency])
	assert.Equal(t, "MXN", effective.Currency)
}

func TestResolve_UserDefaultBeatsTemplate(t *testing.T) {
	f := newFixture(t)
	f.seedTemplate(t, "catering")
	f.seedUserDefault(t, "user-1")
	requestID := f.seedRequest(t, "user-1", "catering")

	effective, err := f.svc.Resolve(context.Background(), requestID)
	require.NoError(t, err)

	assert.Equal(t, resolutiondomain.SourceUserDefault, effective.Sources[resolutiondomain.GroupPricing])
	assert.Equal(t, "0.12", effective.Pricing.Coordination.Rate.String())
	assert.Equal(t, "USD", effective.Currency)
	assert.Equal(t, "en", effective.Language)
	assert.Equal(t, "minimal", effective.Branding.Template)
}

func TestResolve_RequestConfigBeatsUserDefault(t *testing.T) {
	f := newFixture(t)
	f.seedUserDefault(t, "user-1")
	requestID := f.seedRequest(t, "user-1", "")
	f.seedActiveConfig(t, requestID, false)

	effective, err := f.svc.Resolve(context.Background(), requestID)
	require.NoError(t, err)

	assert.Equal(t, resolutiondomain.SourceRequest, effective.Sources[resolutiondomain.GroupPricing])
	assert.Equal(t, "0.2", effective.Pricing.Coordination.Rate.String())
	assert.Equal(t, "0.08", effective.Pricing.Tax.Rate.String())
	// The request layer only carries pricing; documents still inherit.
	assert.Equal(t, resolutiondomain.SourceUserDefault, effective.Sources[resolutiondomain.GroupCurrency])
	assert.Equal(t, "USD", effective.Currency)
}

func TestResolve_DefaultMaterializedConfigDoesNotShadowUserLayer(t *testing.T) {
	f := newFixture(t)
	f.seedUserDefault(t, "user-1")
	requestID := f.seedRequest(t, "user-1", "")
	f.seedActiveConfig(t, requestID, true)

	effective, err := f.svc.Resolve(context.Background(), requestID)
	require.NoError(t, err)

	assert.Equal(t, resolutiondomain.SourceUserDefault, effective.Sources[resolutiondomain.GroupPricing])
	assert.Equal(t, "0.12", effective.Pricing.Coordination.Rate.String())
}

func TestResolve_OverrideWinsEverywhereItIsFlagged(t *testing.T) {
	f := newFixture(t)
	f.seedTemplate(t, "catering")
	f.seedUserDefault(t, "user-1")
	requestID := f.seedRequest(t, "user-1", "catering")
	f.seedActiveConfig(t, requestID, false)
	f.seedOverride(t, requestID)

	effective, err := f.svc.Resolve(context.Background(), requestID)
	require.NoError(t, err)

	assert.Equal(t, resolutiondomain.SourceOverride, effective.Sources[resolutiondomain.GroupPricing])
	assert.Equal(t, "0.25", effective.Pricing.Coordination.Rate.String())
	assert.Equal(t, resolutiondomain.SourceOverride, effective.Sources[resolutiondomain.GroupCurrency])
	assert.Equal(t, "EUR", effective.Currency)
	assert.Equal(t, resolutiondomain.SourceOverride, effective.Sources[resolutiondomain.GroupLanguage])
	assert.Equal(t, "fr", effective.Language)
	// Branding was not flagged; the user layer keeps it.
	assert.Equal(t, resolutiondomain.SourceUserDefault, effective.Sources[resolutiondomain.GroupBranding])
	assert.Equal(t, "minimal", effective.Branding.Template)
}

func TestResolve_OverrideFlagOffFallsThrough(t *testing.T) {
	f := newFixture(t)
	f.seedUserDefault(t, "user-1")
	requestID := f.seedRequest(t, "user-1", "")

	override := &requestoverridedomain.RequestConfigurationOverride{
		ID:               f.genID.Generate(),
		RequestID:        requestID,
		OverrideCurrency: true,
		Currency:         "GBP",
		CalculationBase:  "final_total",
	}
	require.NoError(t, f.db.Create(override).Error)

	effective, err := f.svc.Resolve(context.Background(), requestID)
	require.NoError(t, err)

	assert.Equal(t, resolutiondomain.SourceOverride, effective.Sources[resolutiondomain.GroupCurrency])
	assert.Equal(t, "GBP", effective.Currency)
	// Pricing was not flagged even though the row exists.
	assert.Equal(t, resolutiondomain.SourceUserDefault, effective.Sources[resolutiondomain.GroupPricing])
}
