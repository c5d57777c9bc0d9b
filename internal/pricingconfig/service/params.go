package service

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quoteforge/quoteforge/internal/calculator"
	pricingconfigdomain "github.com/quoteforge/quoteforge/internal/pricingconfig/domain"
	"github.com/shopspring/decimal"
)

func intOne() decimal.Decimal { return decimal.NewFromInt(1) }

func newCoordination(id, configID snowflake.ID, params pricingconfigdomain.UpsertParams, now time.Time) *pricingconfigdomain.CoordinationSetting {
	setting := &pricingconfigdomain.CoordinationSetting{
		ID:              id,
		ConfigurationID: configID,
		Rate:            decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyCoordination(setting, params, now)
	return setting
}

func applyCoordination(setting *pricingconfigdomain.CoordinationSetting, params pricingconfigdomain.UpsertParams, now time.Time) {
	if params.CoordinationEnabled != nil {
		setting.Enabled = *params.CoordinationEnabled
	}
	if params.CoordinationRate != nil {
		setting.Rate = *params.CoordinationRate
	}
	if params.CoordinationApplyToTotal != nil {
		setting.ApplyToTotal = *params.CoordinationApplyToTotal
	}
	if params.CoordinationMinimumAmount != nil {
		amount := *params.CoordinationMinimumAmount
		setting.MinimumAmount = &amount
	}
	if params.CoordinationMaximumAmount != nil {
		amount := *params.CoordinationMaximumAmount
		setting.MaximumAmount = &amount
	}
	setting.UpdatedAt = now
}

func newCostPerPerson(id, configID snowflake.ID, params pricingconfigdomain.UpsertParams, now time.Time) *pricingconfigdomain.CostPerPersonSetting {
	setting := &pricingconfigdomain.CostPerPersonSetting{
		ID:              id,
		ConfigurationID: configID,
		CalculationBase: string(calculator.BaseFinalTotal),
		RoundToCents:    true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyCostPerPerson(setting, params, now)
	return setting
}

func applyCostPerPerson(setting *pricingconfigdomain.CostPerPersonSetting, params pricingconfigdomain.UpsertParams, now time.Time) {
	if params.CostPerPersonEnabled != nil {
		setting.Enabled = *params.CostPerPersonEnabled
	}
	if params.Headcount != nil {
		setting.Headcount = *params.Headcount
	}
	if params.CalculationBase != nil {
		setting.CalculationBase = *params.CalculationBase
	}
	if params.RoundToCents != nil {
		setting.RoundToCents = *params.RoundToCents
	}
	setting.UpdatedAt = now
}

func newTax(id, configID snowflake.ID, params pricingconfigdomain.UpsertParams, now time.Time) *pricingconfigdomain.TaxSetting {
	setting := &pricingconfigdomain.TaxSetting{
		ID:                              id,
		ConfigurationID:                 configID,
		Rate:                            decimal.Zero,
		ApplyToSubtotalWithCoordination: true,
		CreatedAt:                       now,
		UpdatedAt:                       now,
	}
	applyTax(setting, params, now)
	return setting
}

func applyTax(setting *pricingconfigdomain.TaxSetting, params pricingconfigdomain.UpsertParams, now time.Time) {
	if params.TaxEnabled != nil {
		setting.Enabled = *params.TaxEnabled
	}
	if params.TaxRate != nil {
		setting.Rate = *params.TaxRate
	}
	if params.TaxApplyToSubtotalWithCoordination != nil {
		setting.ApplyToSubtotalWithCoordination = *params.TaxApplyToSubtotalWithCoordination
	}
	setting.UpdatedAt = now
}
