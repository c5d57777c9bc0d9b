package service

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quoteforge/quoteforge/internal/actorcontext"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	"github.com/quoteforge/quoteforge/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  historydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  historydomain.Repository
}

func NewService(p Params) historydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("confighistory.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, change historydomain.Change) error {
	entityType := strings.TrimSpace(change.EntityType)
	if entityType == "" {
		return historydomain.ErrInvalidEntityType
	}
	entityID := strings.TrimSpace(change.EntityID)
	if entityID == "" {
		return historydomain.ErrInvalidEntityID
	}

	switch change.ChangeType {
	case historydomain.ChangeCreate, historydomain.ChangeUpdate, historydomain.ChangeDelete:
	default:
		return historydomain.ErrInvalidChangeType
	}

	// No-op updates would only add noise to the trail.
	if change.ChangeType == historydomain.ChangeUpdate && reflect.DeepEqual(change.OldValue, change.NewValue) {
		return nil
	}

	if tx == nil {
		tx = s.db
	}

	entry := historydomain.ConfigurationHistory{
		ID:         s.genID.Generate(),
		EntityType: entityType,
		EntityID:   entityID,
		ChangeType: change.ChangeType,
		Actor:      actorcontext.Resolve(ctx, change.Actor),
		CreatedAt:  time.Now().UTC(),
	}
	if change.OldValue != nil {
		entry.OldValue = datatypes.JSONMap(change.OldValue)
	}
	if change.NewValue != nil {
		entry.NewValue = datatypes.JSONMap(change.NewValue)
	}

	if err := s.repo.Insert(ctx, tx, &entry); err != nil {
		s.log.Warn("failed to write configuration history",
			zap.String("entity_type", entityType),
			zap.String("change_type", string(change.ChangeType)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req historydomain.ListRequest) (historydomain.ListResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return historydomain.ListResponse{}, historydomain.ErrInvalidTimeRange
	}

	var cursor *historydomain.AuditCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return historydomain.ListResponse{}, historydomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339, decoded.CreatedAt)
		if err != nil {
			return historydomain.ListResponse{}, historydomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return historydomain.ListResponse{}, historydomain.ErrInvalidPageToken
		}
		cursor = &historydomain.AuditCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	entries, err := s.repo.List(ctx, s.db, historydomain.ListFilter{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		ChangeType: req.ChangeType,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Cursor:     cursor,
		Limit:      int(pageSize),
	})
	if err != nil {
		return historydomain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(entries, pageSize, func(entry *historydomain.ConfigurationHistory) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        entry.ID.String(),
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(entries) > int(pageSize) {
		entries = entries[:pageSize]
	}

	history := make([]historydomain.ConfigurationHistory, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		history = append(history, *entry)
	}

	resp := historydomain.ListResponse{History: history}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
