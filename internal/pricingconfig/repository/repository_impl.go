package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	pricingconfigdomain "github.com/quoteforge/quoteforge/internal/pricingconfig/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() pricingconfigdomain.Repository {
	return &repo{}
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, requestID string) (*pricingconfigdomain.PricingConfiguration, error) {
	return r.findActive(ctx, db, requestID, false)
}

func (r *repo) FindActiveForUpdate(ctx context.Context, db *gorm.DB, requestID string) (*pricingconfigdomain.PricingConfiguration, error) {
	return r.findActive(ctx, db, requestID, true)
}

func (r *repo) findActive(ctx context.Context, db *gorm.DB, requestID string, lock bool) (*pricingconfigdomain.PricingConfiguration, error) {
	query := `SELECT id, request_id, name, active, status, is_default,
	 created_by, updated_by, created_at, updated_at
	 FROM pricing_configurations
	 WHERE request_id = ? AND active = ?`
	if lock {
		query += `
	 FOR UPDATE`
	}

	var cfg pricingconfigdomain.PricingConfiguration
	err := db.WithContext(ctx).Raw(query, requestID, true).Scan(&cfg).Error
	if err != nil {
		return nil, err
	}
	if cfg.ID == 0 {
		return nil, nil
	}
	return &cfg, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cfg *pricingconfigdomain.PricingConfiguration) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO pricing_configurations (
			id, request_id, name, active, status, is_default,
			created_by, updated_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ID,
		cfg.RequestID,
		cfg.Name,
		cfg.Active,
		cfg.Status,
		cfg.IsDefault,
		cfg.CreatedBy,
		cfg.UpdatedBy,
		cfg.CreatedAt,
		cfg.UpdatedAt,
	).Error
}

func (r *repo) Touch(ctx context.Context, db *gorm.DB, cfg *pricingconfigdomain.PricingConfiguration) error {
	cfg.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Exec(
		`UPDATE pricing_configurations
		 SET name = ?, updated_by = ?, updated_at = ?
		 WHERE id = ?`,
		cfg.Name,
		cfg.UpdatedBy,
		cfg.UpdatedAt,
		cfg.ID,
	).Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, id snowflake.ID, status pricingconfigdomain.ConfigStatus, actor string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE pricing_configurations
		 SET active = ?, status = ?, updated_by = ?, updated_at = ?
		 WHERE id = ?`,
		false,
		status,
		actor,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) LoadChildren(ctx context.Context, db *gorm.DB, cfg *pricingconfigdomain.PricingConfiguration) error {
	if cfg == nil || cfg.ID == 0 {
		return nil
	}

	var coordination pricingconfigdomain.CoordinationSetting
	err := db.WithContext(ctx).Where("configuration_id = ?", cfg.ID).First(&coordination).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		cfg.Coordination = &coordination
	}

	var perPerson pricingconfigdomain.CostPerPersonSetting
	err = db.WithContext(ctx).Where("configuration_id = ?", cfg.ID).First(&perPerson).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		cfg.CostPerPerson = &perPerson
	}

	var tax pricingconfigdomain.TaxSetting
	err = db.WithContext(ctx).Where("configuration_id = ?", cfg.ID).First(&tax).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		cfg.Tax = &tax
	}

	return nil
}

// Child upserts key on the unique configuration_id so a concurrent writer
// can never produce duplicate children.

func (r *repo) UpsertCoordination(ctx context.Context, db *gorm.DB, setting *pricingconfigdomain.CoordinationSetting) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "configuration_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"enabled", "rate", "apply_to_total", "minimum_amount", "maximum_amount", "updated_at",
		}),
	}).Create(setting).Error
}

func (r *repo) UpsertCostPerPerson(ctx context.Context, db *gorm.DB, setting *pricingconfigdomain.CostPerPersonSetting) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "configuration_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"enabled", "headcount", "calculation_base", "round_to_cents", "updated_at",
		}),
	}).Create(setting).Error
}

func (r *repo) UpsertTax(ctx context.Context, db *gorm.DB, setting *pricingconfigdomain.TaxSetting) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "configuration_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"enabled", "rate", "apply_to_subtotal_with_coordination", "updated_at",
		}),
	}).Create(setting).Error
}

func (r *repo) FindRequest(ctx context.Context, db *gorm.DB, requestID string) (*pricingconfigdomain.QuoteRequest, error) {
	var request pricingconfigdomain.QuoteRequest
	err := db.WithContext(ctx).Where("id = ?", requestID).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}
