package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/quoteforge/quoteforge/internal/actorcontext"
	"github.com/quoteforge/quoteforge/internal/calculator"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	requestoverridedomain "github.com/quoteforge/quoteforge/internal/requestoverride/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const EntityRequestConfigurationOverride = "request_configuration_override"

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       requestoverridedomain.Repository
	HistorySvc historydomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       requestoverridedomain.Repository
	historySvc historydomain.Service
}

func NewService(p ServiceParam) requestoverridedomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("requestoverride.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		historySvc: p.HistorySvc,
	}
}

func (s *Service) Set(ctx context.Context, requestID string, params requestoverridedomain.SetParams, actor string) (*requestoverridedomain.RequestConfigurationOverride, error) {
	requestID = strings.TrimSpace(requestID)
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, requestoverridedomain.ErrInvalidRequestID
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}

	actor = actorcontext.Resolve(ctx, actor)
	now := time.Now().UTC()

	var result *requestoverridedomain.RequestConfigurationOverride
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		if existing == nil {
			override := &requestoverridedomain.RequestConfigurationOverride{
				ID:              s.genID.Generate(),
				RequestID:       requestID,
				CalculationBase: string(calculator.BaseFinalTotal),
				RoundToCents:    true,
				TaxApplyToSubtotalWithCoordination: true,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			applyParams(override, params)
			if err := s.repo.Insert(ctx, tx, override); err != nil {
				return err
			}
			result = override
			return s.historySvc.Record(ctx, tx, historydomain.Change{
				EntityType: EntityRequestConfigurationOverride,
				EntityID:   override.ID.String(),
				ChangeType: historydomain.ChangeCreate,
				Actor:      actor,
				NewValue:   override.Snapshot(),
			})
		}

		oldSnapshot := existing.Snapshot()
		applyParams(existing, params)
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, existing); err != nil {
			return err
		}
		result = existing
		return s.historySvc.Record(ctx, tx, historydomain.Change{
			EntityType: EntityRequestConfigurationOverride,
			EntityID:   existing.ID.String(),
			ChangeType: historydomain.ChangeUpdate,
			Actor:      actor,
			OldValue:   oldSnapshot,
			NewValue:   existing.Snapshot(),
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) Clear(ctx context.Context, requestID string, actor string) error {
	requestID = strings.TrimSpace(requestID)
	if _, err := uuid.Parse(requestID); err != nil {
		return requestoverridedomain.ErrInvalidRequestID
	}

	actor = actorcontext.Resolve(ctx, actor)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if existing == nil {
			return requestoverridedomain.ErrNotFound
		}
		if err := s.repo.Delete(ctx, tx, existing.ID); err != nil {
			return err
		}
		return s.historySvc.Record(ctx, tx, historydomain.Change{
			EntityType: EntityRequestConfigurationOverride,
			EntityID:   existing.ID.String(),
			ChangeType: historydomain.ChangeDelete,
			Actor:      actor,
			OldValue:   existing.Snapshot(),
		})
	})
}

func (s *Service) Get(ctx context.Context, requestID string) (*requestoverridedomain.RequestConfigurationOverride, error) {
	requestID = strings.TrimSpace(requestID)
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, requestoverridedomain.ErrInvalidRequestID
	}
	override, err := s.repo.FindByRequest(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}
	if override == nil {
		return nil, requestoverridedomain.ErrNotFound
	}
	return override, nil
}

func applyParams(override *requestoverridedomain.RequestConfigurationOverride, params requestoverridedomain.SetParams) {
	if params.OverridePricing != nil {
		override.OverridePricing = *params.OverridePricing
	}
	if params.OverrideBranding != nil {
		override.OverrideBranding = *params.OverrideBranding
	}
	if params.OverrideCurrency != nil {
		override.OverrideCurrency = *params.OverrideCurrency
	}
	if params.OverrideLanguage != nil {
		override.OverrideLanguage = *params.OverrideLanguage
	}
	if params.CoordinationEnabled != nil {
		override.CoordinationEnabled = *params.CoordinationEnabled
	}
	if params.CoordinationRate != nil {
		override.CoordinationRate = *params.CoordinationRate
	}
	if params.CoordinationApplyToTotal != nil {
		override.CoordinationApplyToTotal = *params.CoordinationApplyToTotal
	}
	if params.CoordinationMinimumAmount != nil {
		amount := *params.CoordinationMinimumAmount
		override.CoordinationMinimumAmount = &amount
	}
	if params.CoordinationMaximumAmount != nil {
		amount := *params.CoordinationMaximumAmount
		override.CoordinationMaximumAmount = &amount
	}
	if params.CostPerPersonEnabled != nil {
		override.CostPerPersonEnabled = *params.CostPerPersonEnabled
	}
	if params.Headcount != nil {
		override.Headcount = *params.Headcount
	}
	if params.CalculationBase != nil {
		override.CalculationBase = *params.CalculationBase
	}
	if params.RoundToCents != nil {
		override.RoundToCents = *params.RoundToCents
	}
	if params.TaxEnabled != nil {
		override.TaxEnabled = *params.TaxEnabled
	}
	if params.TaxRate != nil {
		override.TaxRate = *params.TaxRate
	}
	if params.TaxApplyToSubtotalWithCoordination != nil {
		override.TaxApplyToSubtotalWithCoordination = *params.TaxApplyToSubtotalWithCoordination
	}
	if params.Currency != nil {
		override.Currency = strings.ToUpper(strings.TrimSpace(*params.Currency))
	}
	if params.Language != nil {
		override.Language = strings.ToLower(strings.TrimSpace(*params.Language))
	}
	if params.BrandingTemplate != nil {
		override.BrandingTemplate = *params.BrandingTemplate
	}
	if params.LogoURL != nil {
		logo := *params.LogoURL
		override.LogoURL = &logo
	}
	if params.Reason != nil {
		override.Reason = strings.TrimSpace(*params.Reason)
	}
	if params.UserDefaultConfigurationID != nil {
		id := *params.UserDefaultConfigurationID
		override.UserDefaultConfigurationID = &id
	}
}

func validateParams(params requestoverridedomain.SetParams) error {
	one := decimal.NewFromInt(1)

	if params.CoordinationRate != nil {
		if params.CoordinationRate.IsNegative() || params.CoordinationRate.GreaterThan(one) {
			return requestoverridedomain.ErrInvalidCoordinationRate
		}
	}
	if params.TaxRate != nil {
		if params.TaxRate.IsNegative() || params.TaxRate.GreaterThan(one) {
			return requestoverridedomain.ErrInvalidTaxRate
		}
	}
	if params.Headcount != nil && *params.Headcount <= 0 {
		return requestoverridedomain.ErrInvalidHeadcount
	}
	if params.CoordinationMinimumAmount != nil && params.CoordinationMaximumAmount != nil &&
		params.CoordinationMinimumAmount.GreaterThan(*params.CoordinationMaximumAmount) {
		return requestoverridedomain.ErrInvalidAmountBounds
	}
	if params.CalculationBase != nil && !calculator.ValidCalculationBase(calculator.CalculationBase(*params.CalculationBase)) {
		return requestoverridedomain.ErrInvalidCalculationBase
	}
	return nil
}
