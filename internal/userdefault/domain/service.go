package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	FindByUser(ctx context.Context, db *gorm.DB, userID string) (*UserDefaultConfiguration, error)
	Insert(ctx context.Context, db *gorm.DB, cfg *UserDefaultConfiguration) error
	Update(ctx context.Context, db *gorm.DB, cfg *UserDefaultConfiguration) error
}

type Service interface {
	// Ensure returns the user's default configuration, creating it with
	// system defaults on first interaction.
	Ensure(ctx context.Context, userID string) (*UserDefaultConfiguration, error)
	Update(ctx context.Context, userID string, params UpdateParams, actor string) (*UserDefaultConfiguration, error)
}

// UpdateParams mirrors the configuration axes plus document preferences.
// Nil pointers leave the stored value untouched.
type UpdateParams struct {
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
}

var (
	ErrInvalidUser             = errors.New("invalid_user")
	ErrInvalidCoordinationRate = errors.New("invalid_coordination_rate")
	ErrInvalidTaxRate          = errors.New("invalid_tax_rate")
	ErrInvalidHeadcount        = errors.New("invalid_headcount")
	ErrInvalidAmountBounds     = errors.New("invalid_amount_bounds")
	ErrInvalidCalculationBase  = errors.New("invalid_calculation_base")
)
