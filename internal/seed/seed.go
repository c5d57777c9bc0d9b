package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	industrytemplatedomain "github.com/quoteforge/quoteforge/internal/industrytemplate/domain"
	resolutiondomain "github.com/quoteforge/quoteforge/internal/resolution/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureIndustryTemplates inserts the built-in vertical presets. Existing
// rows are left untouched so admin edits survive restarts.
func EnsureIndustryTemplates(db *gorm.DB, node *snowflake.Node) error {
	now := time.Now().UTC()

	templates := []industrytemplatedomain.IndustryTemplate{
		{
			Industry:            "catering",
			Name:                "Catering estandar",
			CoordinationEnabled: true,
			CoordinationRate:    decimal.NewFromFloat(0.18),
			CostPerPersonEnabled: true,
			CalculationBase:      "final_total",
			RoundToCents:         true,
			TaxEnabled:           true,
			TaxRate:              decimal.NewFromFloat(0.16),
			TaxApplyToSubtotalWithCoordination: true,
		},
		{
			Industry:            "events",
			Name:                "Eventos corporativos",
			CoordinationEnabled: true,
			CoordinationRate:    decimal.NewFromFloat(0.15),
			CalculationBase:     "final_total",
			RoundToCents:        true,
			TaxEnabled:          true,
			TaxRate:             decimal.NewFromFloat(0.16),
			TaxApplyToSubtotalWithCoordination: true,
		},
		{
			Industry:        "photography",
			Name:            "Fotografia",
			CalculationBase: "final_total",
			RoundToCents:    true,
			TaxEnabled:      true,
			TaxRate:         decimal.NewFromFloat(0.16),
			TaxApplyToSubtotalWithCoordination: true,
		},
	}

	for i := range templates {
		templates[i].ID = node.Generate()
		templates[i].Currency = resolutiondomain.DefaultCurrency
		templates[i].Language = resolutiondomain.DefaultLanguage
		templates[i].BrandingTemplate = resolutiondomain.DefaultBrandingTemplate
		templates[i].CreatedAt = now
		templates[i].UpdatedAt = now
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "industry"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&templates).Error
}
