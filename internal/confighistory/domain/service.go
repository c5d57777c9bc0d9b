package domain

import (
	"context"
	"errors"
	"time"

	"github.com/quoteforge/quoteforge/pkg/db/pagination"
	"gorm.io/gorm"
)

// Change describes a single mutating event on a configuration entity.
// OldValue is absent for creates, NewValue is absent for deletes.
type Change struct {
	EntityType string
	EntityID   string
	ChangeType ChangeType
	Actor      string
	OldValue   map[string]any
	NewValue   map[string]any
}

type ListRequest struct {
	pagination.Pagination
	EntityType string
	EntityID   string
	ChangeType string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	History []ConfigurationHistory `json:"history"`
}

type Service interface {
	// Record appends a history entry inside the caller's transaction so the
	// audit trail can never reference a rolled-back change. No-op updates
	// (new snapshot identical to old) are suppressed.
	Record(ctx context.Context, tx *gorm.DB, change Change) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidEntityType = errors.New("invalid_entity_type")
	ErrInvalidEntityID   = errors.New("invalid_entity_id")
	ErrInvalidChangeType = errors.New("invalid_change_type")
	ErrInvalidPageToken  = errors.New("invalid_page_token")
	ErrInvalidTimeRange  = errors.New("invalid_time_range")
)
