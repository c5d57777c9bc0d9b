package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func items(pairs ...string) []LineItem {
	out := make([]LineItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, LineItem{Quantity: dec(pairs[i]), UnitPrice: dec(pairs[i+1])})
	}
	return out
}

func TestCalculate_CoordinationAndTax(t *testing.T) {
	cfg := PricingInput{
		Coordination: CoordinationInput{Enabled: true, Rate: dec("0.18")},
		Tax:          TaxInput{Enabled: true, Rate: dec("0.16"), ApplyToSubtotalWithCoordination: true},
	}

	b := Calculate(items("10", "100.00"), cfg)

	assert.True(t, b.Subtotal.Equal(dec("1000.00")), "subtotal = %s", b.Subtotal)
	assert.True(t, b.CoordinationAmount.Equal(dec("180.00")), "coordination = %s", b.CoordinationAmount)
	assert.True(t, b.AmountWithCoordination.Equal(dec("1180.00")), "with coordination = %s", b.AmountWithCoordination)
	assert.True(t, b.TaxAmount.Equal(dec("188.80")), "tax = %s", b.TaxAmount)
	assert.True(t, b.FinalTotal.Equal(dec("1368.80")), "final total = %s", b.FinalTotal)
	assert.Nil(t, b.CostPerPerson)
}

func TestCalculate_TaxOnRawSubtotal(t *testing.T) {
	cfg := PricingInput{
		Coordination: CoordinationInput{Enabled: true, Rate: dec("0.18")},
		Tax:          TaxInput{Enabled: true, Rate: dec("0.16"), ApplyToSubtotalWithCoordination: false},
	}

	b := Calculate(items("10", "100.00"), cfg)

	assert.True(t, b.TaxAmount.Equal(dec("160.00")), "tax = %s", b.TaxAmount)
	assert.True(t, b.FinalTotal.Equal(dec("1340.00")), "final total = %s", b.FinalTotal)
}

func TestCalculate_CostPerPersonOnly(t *testing.T) {
	cfg := PricingInput{
		CostPerPerson: CostPerPersonInput{
			Enabled:         true,
			Headcount:       50,
			CalculationBase: BaseFinalTotal,
			RoundToCents:    true,
		},
	}

	b := Calculate(items("10", "100.00"), cfg)

	assert.True(t, b.CoordinationAmount.IsZero())
	assert.True(t, b.TaxAmount.IsZero())
	assert.True(t, b.FinalTotal.Equal(dec("1000.00")))
	require.NotNil(t, b.CostPerPerson)
	assert.True(t, b.CostPerPerson.Equal(dec("20.00")), "cost per person = %s", b.CostPerPerson)
}

func TestCalculate_CoordinationMinimumClamp(t *testing.T) {
	cfg := PricingInput{
		Coordination: CoordinationInput{
			Enabled:       true,
			Rate:          dec("0.05"),
			MinimumAmount: decPtr("25.00"),
		},
	}

	b := Calculate(items("1", "100.00"), cfg)

	assert.True(t, b.CoordinationAmount.Equal(dec("25.00")), "coordination = %s", b.CoordinationAmount)
	assert.True(t, b.AmountWithCoordination.Equal(dec("125.00")))
}

func TestCalculate_CoordinationMaximumClamp(t *testing.T) {
	cfg := PricingInput{
		Coordination: CoordinationInput{
			Enabled:       true,
			Rate:          dec("0.20"),
			MaximumAmount: decPtr("50.00"),
		},
	}

	b := Calculate(items("10", "100.00"), cfg)

	assert.True(t, b.CoordinationAmount.Equal(dec("50.00")), "coordination = %s", b.CoordinationAmount)
}

func TestCalculate_NoConfigurationAnywhere(t *testing.T) {
	b := Calculate(items("10", "100.00"), PricingInput{})

	assert.True(t, b.Subtotal.Equal(dec("1000.00")))
	assert.True(t, b.CoordinationAmount.IsZero())
	assert.True(t, b.TaxAmount.IsZero())
	assert.True(t, b.FinalTotal.Equal(b.Subtotal))
	assert.Nil(t, b.CostPerPerson)
}

func TestCalculate_EmptyAndZeroPriceItems(t *testing.T) {
	b := Calculate(nil, PricingInput{})
	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.FinalTotal.IsZero())

	b = Calculate(items("3", "0"), PricingInput{})
	assert.True(t, b.Subtotal.IsZero())
}

func TestCalculate_Deterministic(t *testing.T) {
	cfg := PricingInput{
		Coordination:  CoordinationInput{Enabled: true, Rate: dec("0.18"), MinimumAmount: decPtr("10.00")},
		Tax:           TaxInput{Enabled: true, Rate: dec("0.16"), ApplyToSubtotalWithCoordination: true},
		CostPerPerson: CostPerPersonInput{Enabled: true, Headcount: 7, CalculationBase: BaseFinalTotal, RoundToCents: true},
	}
	lineItems := items("3", "149.99", "2", "75.50", "1", "1200.00")

	first := Calculate(lineItems, cfg)
	for i := 0; i < 10; i++ {
		again := Calculate(lineItems, cfg)
		assert.True(t, first.Subtotal.Equal(again.Subtotal))
		assert.True(t, first.CoordinationAmount.Equal(again.CoordinationAmount))
		assert.True(t, first.AmountWithCoordination.Equal(again.AmountWithCoordination))
		assert.True(t, first.TaxAmount.Equal(again.TaxAmount))
		assert.True(t, first.FinalTotal.Equal(again.FinalTotal))
		require.NotNil(t, again.CostPerPerson)
		assert.True(t, first.CostPerPerson.Equal(*again.CostPerPerson))
	}
}

// Disabling coordination must flow through to the tax base in the same
// call; tax never sees a stale coordinated figure.
func TestCalculate_OrderingLaw(t *testing.T) {
	withCoordination := PricingInput{
		Coordination: CoordinationInput{Enabled: true, Rate: dec("0.18")},
		Tax:          TaxInput{Enabled: true, Rate: dec("0.16"), ApplyToSubtotalWithCoordination: true},
	}
	withoutCoordination := withCoordination
	withoutCoordination.Coordination.Enabled = false

	lineItems := items("10", "100.00")

	b1 := Calculate(lineItems, withCoordination)
	b2 := Calculate(lineItems, withoutCoordination)

	assert.True(t, b1.TaxAmount.Equal(dec("188.80")))
	assert.True(t, b2.AmountWithCoordination.Equal(b2.Subtotal))
	assert.True(t, b2.TaxAmount.Equal(dec("160.00")), "tax must base off the current coordination result, got %s", b2.TaxAmount)
}

func TestCalculate_RoundingIdempotent(t *testing.T) {
	cfg := PricingInput{
		CostPerPerson: CostPerPersonInput{Enabled: true, Headcount: 3, CalculationBase: BaseSubtotal, RoundToCents: true},
	}

	b := Calculate(items("1", "100.00"), cfg)
	require.NotNil(t, b.CostPerPerson)

	rounded := b.CostPerPerson.Round(CentsPrecision)
	assert.True(t, b.CostPerPerson.Equal(rounded), "rounding twice must not change the value")
}

func TestCalculate_UnroundedCostPerPerson(t *testing.T) {
	cfg := PricingInput{
		CostPerPerson: CostPerPersonInput{Enabled: true, Headcount: 3, CalculationBase: BaseSubtotal, RoundToCents: false},
	}

	b := Calculate(items("1", "100.00"), cfg)
	require.NotNil(t, b.CostPerPerson)
	assert.False(t, b.CostPerPerson.Equal(dec("33.33")), "unrounded division keeps full precision")
}

func TestCalculate_NonPositiveHeadcount(t *testing.T) {
	for _, headcount := range []int64{0, -5} {
		cfg := PricingInput{
			CostPerPerson: CostPerPersonInput{Enabled: true, Headcount: headcount, CalculationBase: BaseSubtotal},
		}
		b := Calculate(items("1", "100.00"), cfg)
		assert.Nil(t, b.CostPerPerson)
	}
}

// Every combination of the three pricing axes stays independent.
func TestCalculate_AxisCombinations(t *testing.T) {
	lineItems := items("10", "100.00")

	for _, coordination := range []bool{false, true} {
		for _, tax := range []bool{false, true} {
			for _, perPerson := range []bool{false, true} {
				cfg := PricingInput{
					Coordination:  CoordinationInput{Enabled: coordination, Rate: dec("0.10")},
					Tax:           TaxInput{Enabled: tax, Rate: dec("0.16"), ApplyToSubtotalWithCoordination: true},
					CostPerPerson: CostPerPersonInput{Enabled: perPerson, Headcount: 10, CalculationBase: BaseFinalTotal, RoundToCents: true},
				}

				b := Calculate(lineItems, cfg)

				expectedCoordination := decimal.Zero
				if coordination {
					expectedCoordination = dec("100.00")
				}
				assert.True(t, b.CoordinationAmount.Equal(expectedCoordination))

				expectedTax := decimal.Zero
				if tax {
					expectedTax = b.AmountWithCoordination.Mul(dec("0.16"))
				}
				assert.True(t, b.TaxAmount.Equal(expectedTax))

				assert.True(t, b.FinalTotal.Equal(b.AmountWithCoordination.Add(b.TaxAmount)))

				if perPerson {
					require.NotNil(t, b.CostPerPerson)
					assert.True(t, b.CostPerPerson.Equal(b.FinalTotal.Div(dec("10")).Round(CentsPrecision)))
				} else {
					assert.Nil(t, b.CostPerPerson)
				}
			}
		}
	}
}

func TestValidCalculationBase(t *testing.T) {
	assert.True(t, ValidCalculationBase(BaseSubtotal))
	assert.True(t, ValidCalculationBase(BaseSubtotalWithCoordination))
	assert.True(t, ValidCalculationBase(BaseFinalTotal))
	assert.False(t, ValidCalculationBase("grand_total"))
	assert.False(t, ValidCalculationBase(""))
}
