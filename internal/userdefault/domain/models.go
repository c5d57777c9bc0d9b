package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// UserDefaultConfiguration holds a user's default pricing values and
// document preferences. At most one row per user; created lazily on the
// first configuration interaction.
type UserDefaultConfiguration struct {
	ID     snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID string       `json:"user_id" gorm:"type:text;not null;uniqueIndex:ux_user_default_configurations_user"`

	CoordinationEnabled       bool             `json:"coordination_enabled" gorm:"not null;default:false"`
	CoordinationRate          decimal.Decimal  `json:"coordination_rate" gorm:"type:decimal(20,6);not null;default:0"`
	CoordinationApplyToTotal  bool             `json:"coordination_apply_to_total" gorm:"not null;default:false"`
	CoordinationMinimumAmount *decimal.Decimal `json:"coordination_minimum_amount,omitempty" gorm:"type:decimal(20,6)"`
	CoordinationMaximumAmount *decimal.Decimal `json:"coordination_maximum_amount,omitempty" gorm:"type:decimal(20,6)"`

	CostPerPersonEnabled bool   `json:"cost_per_person_enabled" gorm:"not null;default:false"`
	Headcount            int64  `json:"headcount" gorm:"not null;default:0"`
	CalculationBase      string `json:"calculation_base" gorm:"type:text;not null;default:final_total"`
	RoundToCents         bool   `json:"round_to_cents" gorm:"not null;default:true"`

	TaxEnabled                         bool            `json:"tax_enabled" gorm:"not null;default:false"`
	TaxRate                            decimal.Decimal `json:"tax_rate" gorm:"type:decimal(20,6);not null;default:0"`
	TaxApplyToSubtotalWithCoordination bool            `json:"tax_apply_to_subtotal_with_coordination" gorm:"not null;default:true"`

	Currency         string  `json:"currency" gorm:"type:text;not null"`
	Language         string  `json:"language" gorm:"type:text;not null"`
	BrandingTemplate string  `json:"branding_template" gorm:"type:text;not null"`
	LogoURL          *string `json:"logo_url,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (UserDefaultConfiguration) TableName() string { return "user_default_configurations" }

func (c *UserDefaultConfiguration) Snapshot() map[string]any {
	if c == nil {
		return nil
	}
	snap := map[string]any{
		"user_id":                             c.UserID,
		"coordination_enabled":                c.CoordinationEnabled,
		"coordination_rate":                   c.CoordinationRate.String(),
		"coordination_apply_to_total":         c.CoordinationApplyToTotal,
		"cost_per_person_enabled":             c.CostPerPersonEnabled,
		"headcount":                           c.Headcount,
		"calculation_base":                    c.CalculationBase,
		"round_to_cents":                      c.RoundToCents,
		"tax_enabled":                         c.TaxEnabled,
		"tax_rate":                            c.TaxRate.String(),
		"tax_apply_to_subtotal_with_coordination": c.TaxApplyToSubtotalWithCoordination,
		"currency":          c.Currency,
		"language":          c.Language,
		"branding_template": c.BrandingTemplate,
	}
	if c.CoordinationMinimumAmount != nil {
		snap["coordination_minimum_amount"] = c.CoordinationMinimumAmount.String()
	}
	if c.CoordinationMaximumAmount != nil {
		snap["coordination_maximum_amount"] = c.CoordinationMaximumAmount.String()
	}
	if c.LogoURL != nil {
		snap["logo_url"] = *c.LogoURL
	}
	return snap
}
