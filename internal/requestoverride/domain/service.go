package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	FindByRequest(ctx context.Context, db *gorm.DB, requestID string) (*RequestConfigurationOverride, error)
	Insert(ctx context.Context, db *gorm.DB, override *RequestConfigurationOverride) error
	Update(ctx context.Context, db *gorm.DB, override *RequestConfigurationOverride) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type Service interface {
	// Set creates or updates the request's override row.
	Set(ctx context.Context, requestID string, params SetParams, actor string) (*RequestConfigurationOverride, error)
	// Clear removes the override; inherited values take effect again.
	Clear(ctx context.Context, requestID string, actor string) error
	Get(ctx context.Context, requestID string) (*RequestConfigurationOverride, error)
}

// SetParams carries the override flags and their paired values. A nil
// flag leaves the stored flag untouched.
type SetParams struct {
	OverridePricing  *bool `json:"override_pricing"`
	OverrideBranding *bool `json:"override_branding"`
	OverrideCurrency *bool `json:"override_currency"`
	OverrideLanguage *bool `json:"override_language"`

	CoordinationEnabled       *bool            `json:"coordination_enabled"`
	CoordinationRate          *decimal.Decimal `json:"coordination_rate"`
	CoordinationApplyToTotal  *bool            `json:"coordination_apply_to_total"`
	CoordinationMinimumAmount *decimal.Decimal `json:"coordination_minimum_amount"`
	CoordinationMaximumAmount *decimal.Decimal `json:"coordination_maximum_amount"`

	CostPerPersonEnabled *bool   `json:"cost_per_person_enabled"`
	Headcount            *int64  `json:"headcount"`
	CalculationBase      *string `json:"calculation_base"`
	RoundToCents         *bool   `json:"round_to_cents"`

	TaxEnabled                         *bool            `json:"tax_enabled"`
	TaxRate                            *decimal.Decimal `json:"tax_rate"`
	TaxApplyToSubtotalWithCoordination *bool            `json:"tax_apply_to_subtotal_with_coordination"`

	Currency         *string `json:"currency"`
	Language         *string `json:"language"`
	BrandingTemplate *string `json:"branding_template"`
	LogoURL          *string `json:"logo_url"`

	Reason                     *string       `json:"reason"`
	UserDefaultConfigurationID *snowflake.ID `json:"user_default_configuration_id"`
}

var (
	ErrInvalidRequestID        = errors.New("invalid_request_id")
	ErrInvalidCoordinationRate = errors.New("invalid_coordination_rate")
	ErrInvalidTaxRate          = errors.New("invalid_tax_rate")
	ErrInvalidHeadcount        = errors.New("invalid_headcount")
	ErrInvalidAmountBounds     = errors.New("invalid_amount_bounds")
	ErrInvalidCalculationBase  = errors.New("invalid_calculation_base")
	ErrNotFound                = errors.New("not_found")
)
