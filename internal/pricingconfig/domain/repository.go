package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindActive returns the active configuration for a request, or nil.
	FindActive(ctx context.Context, db *gorm.DB, requestID string) (*PricingConfiguration, error)
	// FindActiveForUpdate is FindActive with an exclusive row lock; it must
	// run inside a transaction.
	FindActiveForUpdate(ctx context.Context, db *gorm.DB, requestID string) (*PricingConfiguration, error)
	Insert(ctx context.Context, db *gorm.DB, cfg *PricingConfiguration) error
	Touch(ctx context.Context, db *gorm.DB, cfg *PricingConfiguration) error
	Deactivate(ctx context.Context, db *gorm.DB, id snowflake.ID, status ConfigStatus, actor string) error

	LoadChildren(ctx context.Context, db *gorm.DB, cfg *PricingConfiguration) error
	UpsertCoordination(ctx context.Context, db *gorm.DB, setting *CoordinationSetting) error
	UpsertCostPerPerson(ctx context.Context, db *gorm.DB, setting *CostPerPersonSetting) error
	UpsertTax(ctx context.Context, db *gorm.DB, setting *TaxSetting) error

	FindRequest(ctx context.Context, db *gorm.DB, requestID string) (*QuoteRequest, error)
}
