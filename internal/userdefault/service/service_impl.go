package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quoteforge/quoteforge/internal/actorcontext"
	"github.com/quoteforge/quoteforge/internal/calculator"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	resolutiondomain "github.com/quoteforge/quoteforge/internal/resolution/domain"
	userdefaultdomain "github.com/quoteforge/quoteforge/internal/userdefault/domain"
	pkgdb "github.com/quoteforge/quoteforge/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const EntityUserDefaultConfiguration = "user_default_configuration"

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       userdefaultdomain.Repository
	HistorySvc historydomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       userdefaultdomain.Repository
	historySvc historydomain.Service
}

func NewService(p ServiceParam) userdefaultdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("userdefault.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		historySvc: p.HistorySvc,
	}
}

func (s *Service) Ensure(ctx context.Context, userID string) (*userdefaultdomain.UserDefaultConfiguration, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, userdefaultdomain.ErrInvalidUser
	}

	existing, err := s.repo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	cfg := &userdefaultdomain.UserDefaultConfiguration{
		ID:               s.genID.Generate(),
		UserID:           userID,
		CalculationBase:  string(calculator.BaseFinalTotal),
		RoundToCents:     true,
		TaxApplyToSubtotalWithCoordination: true,
		Currency:         resolutiondomain.DefaultCurrency,
		Language:         resolutiondomain.DefaultLanguage,
		BrandingTemplate: resolutiondomain.DefaultBrandingTemplate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, cfg); err != nil {
			return err
		}
		return s.historySvc.Record(ctx, tx, historydomain.Change{
			EntityType: EntityUserDefaultConfiguration,
			EntityID:   cfg.ID.String(),
			ChangeType: historydomain.ChangeCreate,
			Actor:      actorcontext.Resolve(ctx, ""),
			NewValue:   cfg.Snapshot(),
		})
	})
	if err != nil {
		// Two concurrent first interactions race on the unique user index;
		// the loser adopts the winner's row.
		if pkgdb.IsDuplicateKeyErr(err) {
			return s.repo.FindByUser(ctx, s.db, userID)
		}
		return nil, err
	}

	return cfg, nil
}

func (s *Service) Update(ctx context.Context, userID string, params userdefaultdomain.UpdateParams, actor string) (*userdefaultdomain.UserDefaultConfiguration, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	cfg, err := s.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldSnapshot := cfg.Snapshot()
	applyParams(cfg, params)
	cfg.UpdatedAt = time.Now().UTC()

	actor = actorcontext.Resolve(ctx, actor)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, cfg); err != nil {
			return err
		}
		return s.historySvc.Record(ctx, tx, historydomain.Change{
			EntityType: EntityUserDefaultConfiguration,
			EntityID:   cfg.ID.String(),
			ChangeType: historydomain.ChangeUpdate,
			Actor:      actor,
			OldValue:   oldSnapshot,
			NewValue:   cfg.Snapshot(),
		})
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyParams(cfg *userdefaultdomain.UserDefaultConfiguration, params userdefaultdomain.UpdateParams) {
	if params.CoordinationEnabled != nil {
		cfg.CoordinationEnabled = *params.CoordinationEnabled
	}
	if params.CoordinationRate != nil {
		cfg.CoordinationRate = *params.CoordinationRate
	}
	if params.CoordinationApplyToTotal != nil {
		cfg.CoordinationApplyToTotal = *params.CoordinationApplyToTotal
	}
	if params.CoordinationMinimumAmount != nil {
		amount := *params.CoordinationMinimumAmount
		cfg.CoordinationMinimumAmount = &amount
	}
	if params.CoordinationMaximumAmount != nil {
		amount := *params.CoordinationMaximumAmount
		cfg.CoordinationMaximumAmount = &amount
	}
	if params.CostPerPersonEnabled != nil {
		cfg.CostPerPersonEnabled = *params.CostPerPersonEnabled
	}
	if params.Headcount != nil {
		cfg.Headcount = *params.Headcount
	}
	if params.CalculationBase != nil {
		cfg.CalculationBase = *params.CalculationBase
	}
	if params.RoundToCents != nil {
		cfg.RoundToCents = *params.RoundToCents
	}
	if params.TaxEnabled != nil {
		cfg.TaxEnabled = *params.TaxEnabled
	}
	if params.TaxRate != nil {
		cfg.TaxRate = *params.TaxRate
	}
	if params.TaxApplyToSubtotalWithCoordination != nil {
		cfg.TaxApplyToSubtotalWithCoordination = *params.TaxApplyToSubtotalWithCoordination
	}
	if params.Currency != nil {
		cfg.Currency = strings.ToUpper(strings.TrimSpace(*params.Currency))
	}
	if params.Language != nil {
		cfg.Language = strings.ToLower(strings.TrimSpace(*params.Language))
	}
	if params.BrandingTemplate != nil {
		cfg.BrandingTemplate = *params.BrandingTemplate
	}
	if params.LogoURL != nil {
		logo := *params.LogoURL
		cfg.LogoURL = &logo
	}
}

func validateParams(params userdefaultdomain.UpdateParams) error {
	one := decimal.NewFromInt(1)

	if params.CoordinationRate != nil {
		if params.CoordinationRate.IsNegative() || params.CoordinationRate.GreaterThan(one) {
			return userdefaultdomain.ErrInvalidCoordinationRate
		}
	}
	if params.TaxRate != nil {
		if params.TaxRate.IsNegative() || params.TaxRate.GreaterThan(one) {
			return userdefaultdomain.ErrInvalidTaxRate
		}
	}
	if params.Headcount != nil && *params.Headcount <= 0 {
		return userdefaultdomain.ErrInvalidHeadcount
	}
	if params.CoordinationMinimumAmount != nil && params.CoordinationMaximumAmount != nil &&
		params.CoordinationMinimumAmount.GreaterThan(*params.CoordinationMaximumAmount) {
		return userdefaultdomain.ErrInvalidAmountBounds
	}
	if params.CalculationBase != nil && !calculator.ValidCalculationBase(calculator.CalculationBase(*params.CalculationBase)) {
		return userdefaultdomain.ErrInvalidCalculationBase
	}
	return nil
}
