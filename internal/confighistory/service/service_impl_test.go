package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/quoteforge/quoteforge/internal/actorcontext"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	"github.com/quoteforge/quoteforge/internal/confighistory/repository"
	"github.com/quoteforge/quoteforge/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (historydomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&historydomain.ConfigurationHistory{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, node
}

func TestRecord_CreateAndDelete(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, nil, historydomain.Change{
		EntityType: "pricing_configuration",
		EntityID:   "42",
		ChangeType: historydomain.ChangeCreate,
		Actor:      "ana",
		NewValue:   map[string]any{"name": "Config"},
	}))
	require.NoError(t, svc.Record(ctx, nil, historydomain.Change{
		EntityType: "pricing_configuration",
		EntityID:   "42",
		ChangeType: historydomain.ChangeDelete,
		Actor:      "luis",
		OldValue:   map[string]any{"name": "Config"},
	}))

	var entries []historydomain.ConfigurationHistory
	require.NoError(t, db.Order("created_at asc").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, historydomain.ChangeCreate, entries[0].ChangeType)
	assert.Equal(t, "ana", entries[0].Actor)
	assert.Nil(t, entries[0].OldValue)
	assert.Equal(t, historydomain.ChangeDelete, entries[1].ChangeType)
	assert.Nil(t, entries[1].NewValue)
}

func TestRecord_NoOpUpdateSuppressed(t *testing.T) {
	svc, db, _ := newTestService(t)

	same := map[string]any{"rate": "0.18", "enabled": true}
	require.NoError(t, svc.Record(context.Background(), nil, historydomain.Change{
		EntityType: "pricing_configuration",
		EntityID:   "42",
		ChangeType: historydomain.ChangeUpdate,
		OldValue:   same,
		NewValue:   map[string]any{"rate": "0.18", "enabled": true},
	}))

	var count int64
	require.NoError(t, db.Model(&historydomain.ConfigurationHistory{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRecord_ActorFallsBackToSystem(t *testing.T) {
	svc, db, _ := newTestService(t)

	require.NoError(t, svc.Record(context.Background(), nil, historydomain.Change{
		EntityType: "user_default_configuration",
		EntityID:   "7",
		ChangeType: historydomain.ChangeCreate,
		NewValue:   map[string]any{"currency": "MXN"},
	}))

	var entry historydomain.ConfigurationHistory
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, actorcontext.SystemActor, entry.Actor)
}

func TestRecord_ContextActorWins(t *testing.T) {
	svc, db, _ := newTestService(t)

	ctx := actorcontext.WithActor(context.Background(), "maria")
	require.NoError(t, svc.Record(ctx, nil, historydomain.Change{
		EntityType: "user_default_configuration",
		EntityID:   "7",
		ChangeType: historydomain.ChangeCreate,
		NewValue:   map[string]any{"currency": "MXN"},
	}))

	var entry historydomain.ConfigurationHistory
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "maria", entry.Actor)
}

func TestRecord_RejectsIncompleteChanges(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Record(ctx, nil, historydomain.Change{EntityID: "1", ChangeType: historydomain.ChangeCreate})
	assert.ErrorIs(t, err, historydomain.ErrInvalidEntityType)

	err = svc.Record(ctx, nil, historydomain.Change{EntityType: "x", ChangeType: historydomain.ChangeCreate})
	assert.ErrorIs(t, err, historydomain.ErrInvalidEntityID)

	err = svc.Record(ctx, nil, historydomain.Change{EntityType: "x", EntityID: "1", ChangeType: "RENAME"})
	assert.ErrorIs(t, err, historydomain.ErrInvalidChangeType)
}

func TestList_FiltersAndPagination(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entityType := "pricing_configuration"
		if i%2 == 1 {
			entityType = "user_default_configuration"
		}
		require.NoError(t, db.Create(&historydomain.ConfigurationHistory{
			ID:         node.Generate(),
			EntityType: entityType,
			EntityID:   "42",
			ChangeType: historydomain.ChangeUpdate,
			Actor:      "ana",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	resp, err := svc.List(ctx, historydomain.ListRequest{
		EntityType: "pricing_configuration",
	})
	require.NoError(t, err)
	assert.Len(t, resp.History, 3)
	assert.False(t, resp.HasMore)

	// Newest first.
	require.True(t, resp.History[0].CreatedAt.After(resp.History[1].CreatedAt))

	resp, err = svc.List(ctx, historydomain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	assert.Len(t, resp.History, 2)
	assert.True(t, resp.HasMore)
	require.NotEmpty(t, resp.NextPageToken)

	resp, err = svc.List(ctx, historydomain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: resp.NextPageToken},
	})
	require.NoError(t, err)
	assert.Len(t, resp.History, 2)
	assert.True(t, resp.HasMore)

	resp, err = svc.List(ctx, historydomain.ListRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: resp.NextPageToken},
	})
	require.NoError(t, err)
	assert.Len(t, resp.History, 1)
	assert.False(t, resp.HasMore)
}

func TestList_InvalidInputs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, historydomain.ListRequest{
		Pagination: pagination.Pagination{PageToken: "%%%not-base64%%%"},
	})
	assert.ErrorIs(t, err, historydomain.ErrInvalidPageToken)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = svc.List(ctx, historydomain.ListRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, historydomain.ErrInvalidTimeRange)
}
