package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	requestoverridedomain "github.com/quoteforge/quoteforge/internal/requestoverride/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() requestoverridedomain.Repository {
	return &repo{}
}

func (r *repo) FindByRequest(ctx context.Context, db *gorm.DB, requestID string) (*requestoverridedomain.RequestConfigurationOverride, error) {
	var override requestoverridedomain.RequestConfigurationOverride
	err := db.WithContext(ctx).Where("request_id = ?", requestID).First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, override *requestoverridedomain.RequestConfigurationOverride) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO request_configuration_overrides (
			id, request_id,
			override_pricing, override_branding, override_currency, override_language,
			coordination_enabled, coordination_rate, coordination_apply_to_total,
			coordination_minimum_amount, coordination_maximum_amount,
			cost_per_person_enabled, headcount, calculation_base, round_to_cents,
			tax_enabled, tax_rate, tax_apply_to_subtotal_with_coordination,
			currency, language, branding_template, logo_url,
			reason, user_default_configuration_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		override.ID, override.RequestID,
		override.OverridePricing, override.OverrideBranding, override.OverrideCurrency, override.OverrideLanguage,
		override.CoordinationEnabled, override.CoordinationRate, override.CoordinationApplyToTotal,
		override.CoordinationMinimumAmount, override.CoordinationMaximumAmount,
		override.CostPerPersonEnabled, override.Headcount, override.CalculationBase, override.RoundToCents,
		override.TaxEnabled, override.TaxRate, override.TaxApplyToSubtotalWithCoordination,
		override.Currency, override.Language, override.BrandingTemplate, override.LogoURL,
		override.Reason, override.UserDefaultConfigurationID,
		override.CreatedAt, override.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, override *requestoverridedomain.RequestConfigurationOverride) error {
	return db.WithContext(ctx).Exec(`
		UPDATE request_configuration_overrides SET
			override_pricing = ?, override_branding = ?, override_currency = ?, override_language = ?,
			coordination_enabled = ?, coordination_rate = ?, coordination_apply_to_total = ?,
			coordination_minimum_amount = ?, coordination_maximum_amount = ?,
			cost_per_person_enabled = ?, headcount = ?, calculation_base = ?, round_to_cents = ?,
			tax_enabled = ?, tax_rate = ?, tax_apply_to_subtotal_with_coordination = ?,
			currency = ?, language = ?, branding_template = ?, logo_url = ?,
			reason = ?, user_default_configuration_id = ?,
			updated_at = ?
		WHERE id = ?`,
		override.OverridePricing, override.OverrideBranding, override.OverrideCurrency, override.OverrideLanguage,
		override.CoordinationEnabled, override.CoordinationRate, override.CoordinationApplyToTotal,
		override.CoordinationMinimumAmount, override.CoordinationMaximumAmount,
		override.CostPerPersonEnabled, override.Headcount, override.CalculationBase, override.RoundToCents,
		override.TaxEnabled, override.TaxRate, override.TaxApplyToSubtotalWithCoordination,
		override.Currency, override.Language, override.BrandingTemplate, override.LogoURL,
		override.Reason, override.UserDefaultConfigurationID,
		override.UpdatedAt,
		override.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM request_configuration_overrides WHERE id = ?`, id).Error
}
