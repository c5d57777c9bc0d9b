package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IndustryTemplate is a global, admin-maintained preset of default values
// keyed by business vertical. Read-only at request time.
type IndustryTemplate struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	Industry string       `json:"industry" gorm:"type:text;not null;uniqueIndex:ux_industry_templates_industry_name,priority:1"`
	Name     string       `json:"name" gorm:"type:text;not null;uniqueIndex:ux_industry_templates_industry_name,priority:2"`

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

	Currency         string `json:"currency" gorm:"type:text;not null"`
	Language         string `json:"language" gorm:"type:text;not null"`
	BrandingTemplate string `json:"branding_template" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (IndustryTemplate) TableName() string { return "industry_templates" }

type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]IndustryTemplate, error)
	// FindByIndustry returns the first template for an industry, or nil.
	FindByIndustry(ctx context.Context, db *gorm.DB, industry string) (*IndustryTemplate, error)
}

type Service interface {
	List(ctx context.Context) ([]IndustryTemplate, error)
}

var ErrNotFound = errors.New("not_found")
