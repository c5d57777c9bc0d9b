package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ChangeType string

var (
	ChangeCreate ChangeType = "CREATE"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ConfigurationHistory is the append-only audit trail for configuration
// entities. Rows are never updated or deleted.
type ConfigurationHistory struct {
	ID         snowflake.ID      `json:"id" gorm:"primaryKey"`
	EntityType string            `json:"entity_type" gorm:"type:text;not null;index"`
	EntityID   string            `json:"entity_id" gorm:"type:text;not null;index"`
	ChangeType ChangeType        `json:"change_type" gorm:"type:text;not null"`
	Actor      string            `json:"actor" gorm:"type:text;not null"`
	OldValue   datatypes.JSONMap `json:"old_value,omitempty" gorm:"type:jsonb"`
	NewValue   datatypes.JSONMap `json:"new_value,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (ConfigurationHistory) TableName() string { return "configuration_history" }

// AuditCursor keys history pagination by (created_at, id).
type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	EntityType string
	EntityID   string
	ChangeType string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *AuditCursor
	Limit      int
}
