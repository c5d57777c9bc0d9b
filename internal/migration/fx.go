package migration

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/quoteforge/quoteforge/internal/config"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	industrytemplatedomain "github.com/quoteforge/quoteforge/internal/industrytemplate/domain"
	pricingconfigdomain "github.com/quoteforge/quoteforge/internal/pricingconfig/domain"
	requestoverridedomain "github.com/quoteforge/quoteforge/internal/requestoverride/domain"
	"github.com/quoteforge/quoteforge/internal/seed"
	userdefaultdomain "github.com/quoteforge/quoteforge/internal/userdefault/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if cfg.AutoMigrate {
			if err := autoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.SeedTemplates {
			return seed.EnsureIndustryTemplates(conn, node)
		}
		return nil
	}),
)

// autoMigrate covers the non-postgres dialects where the embedded SQL
// migrations do not apply.
func autoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&pricingconfigdomain.QuoteRequest{},
		&pricingconfigdomain.PricingConfiguration{},
		&pricingconfigdomain.CoordinationSetting{},
		&pricingconfigdomain.CostPerPersonSetting{},
		&pricingconfigdomain.TaxSetting{},
		&userdefaultdomain.UserDefaultConfiguration{},
		&industrytemplatedomain.IndustryTemplate{},
		&requestoverridedomain.RequestConfigurationOverride{},
		&historydomain.ConfigurationHistory{},
	); err != nil {
		return err
	}
	return EnsureActiveIndex(conn)
}

// EnsureActiveIndex installs the at-most-one-active-configuration
// constraint. Postgres and sqlite support partial unique indexes; mysql
// needs a generated column that is NULL for inactive rows so the unique
// key only bites on active ones.
func EnsureActiveIndex(conn *gorm.DB) error {
	switch conn.Dialector.Name() {
	case "mysql":
		if err := conn.Exec(`ALTER TABLE pricing_configurations
			ADD COLUMN active_request_key TEXT
			GENERATED ALWAYS AS (IF(active, request_id, NULL)) STORED`).Error; err != nil && !isDuplicateColumn(err) {
			return err
		}
		err := conn.Exec(`CREATE UNIQUE INDEX ux_pricing_configurations_request_active
			ON pricing_configurations (active_request_key)`).Error
		if err != nil && !isDuplicateIndex(err) {
			return err
		}
		return nil
	default:
		return conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_pricing_configurations_request_active
			ON pricing_configurations (request_id) WHERE active`).Error
	}
}

func isDuplicateColumn(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "Duplicate column name") ||
		strings.Contains(err.Error(), "duplicate column"))
}

func isDuplicateIndex(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "Duplicate key name") ||
		strings.Contains(err.Error(), "already exists"))
}
