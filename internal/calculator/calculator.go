package calculator

import (
	"github.com/shopspring/decimal"
)

// CalculationBase selects the figure a per-person cost is derived from.
type CalculationBase string

const (
	BaseSubtotal                 CalculationBase = "subtotal"
	BaseSubtotalWithCoordination CalculationBase = "subtotal_with_coordination"
	BaseFinalTotal               CalculationBase = "final_total"
)

// ValidCalculationBase reports whether base names a known figure.
func ValidCalculationBase(base CalculationBase) bool {
	switch base {
	case BaseSubtotal, BaseSubtotalWithCoordination, BaseFinalTotal:
		return true
	default:
		return false
	}
}

// CentsPrecision is the default rounding precision for per-person costs.
const CentsPrecision int32 = 2

// LineItem is a priced quote line supplied by the extraction pipeline.
// An absent unit price is treated as zero.
type LineItem struct {
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CoordinationInput configures the coordination fee stage.
type CoordinationInput struct {
	Enabled       bool             `json:"enabled"`
	Rate          decimal.Decimal  `json:"rate"`
	ApplyToTotal  bool             `json:"apply_to_total"`
	MinimumAmount *decimal.Decimal `json:"minimum_amount,omitempty"`
	MaximumAmount *decimal.Decimal `json:"maximum_amount,omitempty"`
}

// TaxInput configures the tax stage.
type TaxInput struct {
	Enabled bool            `json:"enabled"`
	Rate    decimal.Decimal `json:"rate"`
	// ApplyToSubtotalWithCoordination bases tax on the coordinated figure
	// instead of the raw subtotal.
	ApplyToSubtotalWithCoordination bool `json:"apply_to_subtotal_with_coordination"`
}

// CostPerPersonInput configures the per-head cost stage.
type CostPerPersonInput struct {
	Enabled         bool            `json:"enabled"`
	Headcount       int64           `json:"headcount"`
	CalculationBase CalculationBase `json:"calculation_base"`
	RoundToCents    bool            `json:"round_to_cents"`
}

// PricingInput is the resolved pricing configuration the calculator runs with.
type PricingInput struct {
	Coordination  CoordinationInput  `json:"coordination"`
	Tax           TaxInput           `json:"tax"`
	CostPerPerson CostPerPersonInput `json:"cost_per_person"`
}

// Breakdown carries every intermediate figure so downstream rendering
// never re-derives any of them.
type Breakdown struct {
	Subtotal               decimal.Decimal  `json:"subtotal"`
	CoordinationAmount     decimal.Decimal  `json:"coordination_amount"`
	AmountWithCoordination decimal.Decimal  `json:"amount_with_coordination"`
	TaxAmount              decimal.Decimal  `json:"tax_amount"`
	FinalTotal             decimal.Decimal  `json:"final_total"`
	CostPerPerson          *decimal.Decimal `json:"cost_per_person,omitempty"`
}

// Calculate runs the ordered pricing pipeline. It is a pure function:
// identical inputs always yield an identical Breakdown.
//
// Stage order is load-bearing: coordination feeds the coordinated amount,
// tax bases off either the subtotal or the coordinated amount, and the
// per-person cost derives from whichever figure its base selects.
func Calculate(items []LineItem, cfg PricingInput) Breakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
	}

	coordination := coordinationAmount(subtotal, cfg.Coordination)
	withCoordination := subtotal.Add(coordination)

	tax := decimal.Zero
	if cfg.Tax.Enabled {
		base := subtotal
		if cfg.Tax.ApplyToSubtotalWithCoordination {
			base = withCoordination
		}
		tax = base.Mul(cfg.Tax.Rate)
	}

	finalTotal := withCoordination.Add(tax)

	b := Breakdown{
		Subtotal:               subtotal,
		CoordinationAmount:     coordination,
		AmountWithCoordination: withCoordination,
		TaxAmount:              tax,
		FinalTotal:             finalTotal,
	}

	if perPerson, ok := costPerPerson(b, cfg.CostPerPerson); ok {
		b.CostPerPerson = &perPerson
	}

	return b
}

// coordinationAmount is always computed off the pre-coordination subtotal;
// ApplyToTotal only changes the downstream tax base. The raw rate result
// is clamped to the configured bounds when present.
func coordinationAmount(subtotal decimal.Decimal, cfg CoordinationInput) decimal.Decimal {
	if !cfg.Enabled {
		return decimal.Zero
	}

	amount := subtotal.Mul(cfg.Rate)
	if cfg.MinimumAmount != nil && amount.LessThan(*cfg.MinimumAmount) {
		amount = *cfg.MinimumAmount
	}
	if cfg.MaximumAmount != nil && amount.GreaterThan(*cfg.MaximumAmount) {
		amount = *cfg.MaximumAmount
	}
	return amount
}

func costPerPerson(b Breakdown, cfg CostPerPersonInput) (decimal.Decimal, bool) {
	if !cfg.Enabled || cfg.Headcount <= 0 {
		return decimal.Decimal{}, false
	}

	var basis decimal.Decimal
	switch cfg.CalculationBase {
	case BaseSubtotalWithCoordination:
		basis = b.AmountWithCoordination
	case BaseFinalTotal:
		basis = b.FinalTotal
	default:
		basis = b.Subtotal
	}

	perPerson := basis.Div(decimal.NewFromInt(cfg.Headcount))
	if cfg.RoundToCents {
		perPerson = perPerson.Round(CentsPrecision)
	}
	return perPerson, true
}
