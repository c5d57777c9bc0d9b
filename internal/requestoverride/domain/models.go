package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RequestConfigurationOverride diverges a single request from the user's
// defaults. Each field group has an override flag paired with the
// override values themselves; unset flags leave the inherited values in
// force. At most one row per request.
type RequestConfigurationOverride struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	RequestID string       `json:"request_id" gorm:"type:text;not null;uniqueIndex:ux_request_configuration_overrides_request"`

	OverridePricing  bool `json:"override_pricing" gorm:"not null;default:false"`
	OverrideBranding bool `json:"override_branding" gorm:"not null;default:false"`
	OverrideCurrency bool `json:"override_currency" gorm:"not null;default:false"`
	OverrideLanguage bool `json:"override_language" gorm:"not null;default:false"`

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

	Currency         string  `json:"currency" gorm:"type:text"`
	Language         string  `json:"language" gorm:"type:text"`
	BrandingTemplate string  `json:"branding_template" gorm:"type:text"`
	LogoURL          *string `json:"logo_url,omitempty" gorm:"type:text"`

	// Reason preserves why this request diverged from the defaults.
	Reason string `json:"reason" gorm:"type:text"`
	// UserDefaultConfigurationID is a weak reference to the defaults this
	// override was derived from, kept for diagnostics only.
	UserDefaultConfigurationID *snowflake.ID `json:"user_default_configuration_id,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RequestConfigurationOverride) TableName() string { return "request_configuration_overrides" }

func (o *RequestConfigurationOverride) Snapshot() map[string]any {
	if o == nil {
		return nil
	}
	snap := map[string]any{
		"request_id":        o.RequestID,
		"override_pricing":  o.OverridePricing,
		"override_branding": o.OverrideBranding,
		"override_currency": o.OverrideCurrency,
		"override_language": o.OverrideLanguage,
		"currency":          o.Currency,
		"language":          o.Language,
		"branding_template": o.BrandingTemplate,
		"reason":            o.Reason,
	}
	snap["coordination_enabled"] = o.CoordinationEnabled
	snap["coordination_rate"] = o.CoordinationRate.String()
	snap["coordination_apply_to_total"] = o.CoordinationApplyToTotal
	snap["cost_per_person_enabled"] = o.CostPerPersonEnabled
	snap["headcount"] = o.Headcount
	snap["calculation_base"] = o.CalculationBase
	snap["round_to_cents"] = o.RoundToCents
	snap["tax_enabled"] = o.TaxEnabled
	snap["tax_rate"] = o.TaxRate.String()
	snap["tax_apply_to_subtotal_with_coordination"] = o.TaxApplyToSubtotalWithCoordination
	if o.UserDefaultConfigurationID != nil {
		snap["user_default_configuration_id"] = o.UserDefaultConfigurationID.String()
	}
	if o.CoordinationMinimumAmount != nil {
		snap["coordination_minimum_amount"] = o.CoordinationMinimumAmount.String()
	}
	if o.CoordinationMaximumAmount != nil {
		snap["coordination_maximum_amount"] = o.CoordinationMaximumAmount.String()
	}
	if o.LogoURL != nil {
		snap["logo_url"] = *o.LogoURL
	}
	return snap
}
