package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ConfigStatus string

var (
	StatusActive   ConfigStatus = "ACTIVE"
	StatusInactive ConfigStatus = "INACTIVE"
	StatusArchived ConfigStatus = "ARCHIVED"
)

// PricingConfiguration is the request-scoped root entity. At most one row
// per request may have active=true; the store enforces this with a partial
// unique index on (request_id) WHERE active.
type PricingConfiguration struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	RequestID string       `json:"request_id" gorm:"type:text;not null;index"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Active    bool         `json:"active" gorm:"not null;default:false"`
	Status    ConfigStatus `json:"status" gorm:"type:text;not null;default:ACTIVE"`
	// IsDefault marks configurations materialized from user defaults rather
	// than created specifically for the request. The resolver skips default
	// rows so inherited values keep flowing from the user layer.
	IsDefault bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedBy string    `json:"created_by" gorm:"type:text;not null"`
	UpdatedBy string    `json:"updated_by" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Coordination  *CoordinationSetting  `json:"coordination,omitempty" gorm:"foreignKey:ConfigurationID"`
	CostPerPerson *CostPerPersonSetting `json:"cost_per_person,omitempty" gorm:"foreignKey:ConfigurationID"`
	Tax           *TaxSetting           `json:"tax,omitempty" gorm:"foreignKey:ConfigurationID"`
}

func (PricingConfiguration) TableName() string { return "pricing_configurations" }

// CoordinationSetting is a 1:1 child of a PricingConfiguration.
type CoordinationSetting struct {
	ID              snowflake.ID     `json:"id" gorm:"primaryKey"`
	ConfigurationID snowflake.ID     `json:"configuration_id" gorm:"not null;uniqueIndex:ux_coordination_settings_configuration"`
	Enabled         bool             `json:"enabled" gorm:"not null;default:false"`
	Rate            decimal.Decimal  `json:"rate" gorm:"type:decimal(20,6);not null;default:0"`
	ApplyToTotal    bool             `json:"apply_to_total" gorm:"not null;default:false"`
	MinimumAmount   *decimal.Decimal `json:"minimum_amount,omitempty" gorm:"type:decimal(20,6)"`
	MaximumAmount   *decimal.Decimal `json:"maximum_amount,omitempty" gorm:"type:decimal(20,6)"`
	CreatedAt       time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CoordinationSetting) TableName() string { return "coordination_settings" }

// CostPerPersonSetting is a 1:1 child of a PricingConfiguration.
type CostPerPersonSetting struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	ConfigurationID snowflake.ID `json:"configuration_id" gorm:"not null;uniqueIndex:ux_cost_per_person_settings_configuration"`
	Enabled         bool         `json:"enabled" gorm:"not null;default:false"`
	Headcount       int64        `json:"headcount" gorm:"not null;default:0"`
	CalculationBase string       `json:"calculation_base" gorm:"type:text;not null;default:final_total"`
	RoundToCents    bool         `json:"round_to_cents" gorm:"not null;default:true"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CostPerPersonSetting) TableName() string { return "cost_per_person_settings" }

// TaxSetting is a 1:1 child of a PricingConfiguration.
type TaxSetting struct {
	ID                              snowflake.ID    `json:"id" gorm:"primaryKey"`
	ConfigurationID                 snowflake.ID    `json:"configuration_id" gorm:"not null;uniqueIndex:ux_tax_settings_configuration"`
	Enabled                         bool            `json:"enabled" gorm:"not null;default:false"`
	Rate                            decimal.Decimal `json:"rate" gorm:"type:decimal(20,6);not null;default:0"`
	ApplyToSubtotalWithCoordination bool            `json:"apply_to_subtotal_with_coordination" gorm:"not null;default:true"`
	CreatedAt                       time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                       time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TaxSetting) TableName() string { return "tax_settings" }

// QuoteRequest is owned by the external quote pipeline; this core reads it
// only to find the owning user and declared industry during resolution.
type QuoteRequest struct {
	ID        string    `json:"id" gorm:"type:text;primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:text;not null;index"`
	Industry  string    `json:"industry" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (QuoteRequest) TableName() string { return "quote_requests" }

// Snapshot returns the flat audit representation of the configuration and
// its children.
func (c *PricingConfiguration) Snapshot() map[string]any {
	if c == nil {
		return nil
	}
	snap := map[string]any{
		"id":         c.ID.String(),
		"request_id": c.RequestID,
		"name":       c.Name,
		"active":     c.Active,
		"status":     string(c.Status),
		"is_default": c.IsDefault,
	}
	if c.Coordination != nil {
		snap["coordination"] = c.Coordination.Snapshot()
	}
	if c.CostPerPerson != nil {
		snap["cost_per_person"] = c.CostPerPerson.Snapshot()
	}
	if c.Tax != nil {
		snap["tax"] = c.Tax.Snapshot()
	}
	return snap
}

func (s *CoordinationSetting) Snapshot() map[string]any {
	if s == nil {
		return nil
	}
	snap := map[string]any{
		"enabled":        s.Enabled,
		"rate":           s.Rate.String(),
		"apply_to_total": s.ApplyToTotal,
	}
	if s.MinimumAmount != nil {
		snap["minimum_amount"] = s.MinimumAmount.String()
	}
	if s.MaximumAmount != nil {
		snap["maximum_amount"] = s.MaximumAmount.String()
	}
	return snap
}

func (s *CostPerPersonSetting) Snapshot() map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"enabled":          s.Enabled,
		"headcount":        s.Headcount,
		"calculation_base": s.CalculationBase,
		"round_to_cents":   s.RoundToCents,
	}
}

func (s *TaxSetting) Snapshot() map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"enabled":                             s.Enabled,
		"rate":                                s.Rate.String(),
		"apply_to_subtotal_with_coordination": s.ApplyToSubtotalWithCoordination,
	}
}
