package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	// Upsert applies flat configuration parameters to the request's active
	// configuration, creating one when absent. The whole change commits
	// atomically and survives concurrent writers.
	Upsert(ctx context.Context, requestID string, params UpsertParams, actor string) (string, error)
	// Replace supersedes the current active configuration with a fresh one;
	// the old row is deactivated, never deleted.
	Replace(ctx context.Context, requestID string, params UpsertParams, actor string) (string, error)
	// Archive retires the active configuration for a request.
	Archive(ctx context.Context, requestID string, actor string) error
	// Get returns the active configuration with its children.
	Get(ctx context.Context, requestID string) (*PricingConfiguration, error)
}

// UpsertParams is the flat parameter set accepted from the configuration
// management UI. Nil pointers leave the corresponding stored value alone
// on update and fall back to defaults on create.
type UpsertParams struct {
	Name string `json:"name"`

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

	// IsDefault marks the configuration as materialized from user defaults.
	IsDefault bool `json:"is_default"`
}

var (
	ErrInvalidRequestID        = errors.New("invalid_request_id")
	ErrInvalidCoordinationRate = errors.New("invalid_coordination_rate")
	ErrInvalidTaxRate          = errors.New("invalid_tax_rate")
	ErrInvalidHeadcount        = errors.New("invalid_headcount")
	ErrInvalidAmountBounds     = errors.New("invalid_amount_bounds")
	ErrInvalidCalculationBase  = errors.New("invalid_calculation_base")

	ErrConfigurationNotFound = errors.New("configuration_not_found")
	ErrConfigurationLocked   = errors.New("configuration_locked")
	ErrUpdateConflict        = errors.New("configuration_update_conflict")
)
