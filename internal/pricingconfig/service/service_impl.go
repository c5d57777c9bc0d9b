package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/quoteforge/quoteforge/internal/actorcontext"
	"github.com/quoteforge/quoteforge/internal/calculator"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	obsmetrics "github.com/quoteforge/quoteforge/internal/observability/metrics"
	pricingconfigdomain "github.com/quoteforge/quoteforge/internal/pricingconfig/domain"
	"github.com/quoteforge/quoteforge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxUpsertAttempts bounds the optimistic retry loop for writers racing to
// install the first active configuration of a request.
const maxUpsertAttempts = 3

const (
	EntityPricingConfiguration = "pricing_configuration"

	defaultConfigurationName = "Pricing configuration"
)

// errLostInsertRace marks a transaction rejected by the at-most-one-active
// constraint; the caller re-reads and retries against the winner's row.
var errLostInsertRace = errors.New("lost_active_configuration_race")

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       pricingconfigdomain.Repository
	HistorySvc historydomain.Service
	Metrics    *obsmetrics.EngineMetrics `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	repo       pricingconfigdomain.Repository
	historySvc historydomain.Service
	metrics    *obsmetrics.EngineMetrics
}

func NewService(p ServiceParam) pricingconfigdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("pricingconfig.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		historySvc: p.HistorySvc,
		metrics:    p.Metrics,
	}
}

func (s *Service) Upsert(ctx context.Context, requestID string, params pricingconfigdomain.UpsertParams, actor string) (string, error) {
	return s.apply(ctx, requestID, params, actor, false)
}

func (s *Service) Replace(ctx context.Context, requestID string, params pricingconfigdomain.UpsertParams, actor string) (string, error) {
	return s.apply(ctx, requestID, params, actor, true)
}

func (s *Service) apply(ctx context.Context, requestID string, params pricingconfigdomain.UpsertParams, actor string, replace bool) (string, error) {
	requestID = strings.TrimSpace(requestID)
	if _, err := uuid.Parse(requestID); err != nil {
		return "", pricingconfigdomain.ErrInvalidRequestID
	}
	if err := validateParams(params); err != nil {
		return "", err
	}
	actor = actorcontext.Resolve(ctx, actor)

	for attempt := 1; attempt <= maxUpsertAttempts; attempt++ {
		configID, err := s.applyTx(ctx, requestID, params, actor, replace)
		if err == nil {
			return configID.String(), nil
		}
		if errors.Is(err, errLostInsertRace) {
			s.log.Info("active configuration race lost, retrying",
				zap.String("request_id", requestID),
				zap.Int("attempt", attempt),
			)
			if s.metrics != nil {
				s.metrics.UpsertRetries.Inc()
			}
			continue
		}
		if db.IsLockWaitErr(err) {
			return "", pricingconfigdomain.ErrConfigurationLocked
		}
		return "", err
	}

	if s.metrics != nil {
		s.metrics.UpsertConflicts.Inc()
	}
	return "", pricingconfigdomain.ErrUpdateConflict
}

func (s *Service) applyTx(ctx context.Context, requestID string, params pricingconfigdomain.UpsertParams, actor string, replace bool) (snowflake.ID, error) {
	var configID snowflake.ID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindActiveForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}

		if existing != nil && replace {
			if err := s.supersede(ctx, tx, existing, actor); err != nil {
				return err
			}
			existing = nil
		}

		if existing == nil {
			created, err := s.createConfiguration(ctx, tx, requestID, params, actor)
			if err != nil {
				return err
			}
			configID = created.ID
			return nil
		}

		updated, err := s.updateConfiguration(ctx, tx, existing, params, actor)
		if err != nil {
			return err
		}
		configID = updated.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return configID, nil
}

func (s *Service) createConfiguration(ctx context.Context, tx *gorm.DB, requestID string, params pricingconfigdomain.UpsertParams, actor string) (*pricingconfigdomain.PricingConfiguration, error) {
	now := time.Now().UTC()
	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = defaultConfigurationName
	}

	cfg := &pricingconfigdomain.PricingConfiguration{
		ID:        s.genID.Generate(),
		RequestID: requestID,
		Name:      name,
		Active:    true,
		Status:    pricingconfigdomain.StatusActive,
		IsDefault: params.IsDefault,
		CreatedBy: actor,
		UpdatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, tx, cfg); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// A concurrent writer installed the first active configuration
			// for this request between our read and insert.
			return nil, errLostInsertRace
		}
		return nil, err
	}

	cfg.Coordination = newCoordination(s.genID.Generate(), cfg.ID, params, now)
	cfg.CostPerPerson = newCostPerPerson(s.genID.Generate(), cfg.ID, params, now)
	cfg.Tax = newTax(s.genID.Generate(), cfg.ID, params, now)

	if err := s.repo.UpsertCoordination(ctx, tx, cfg.Coordination); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertCostPerPerson(ctx, tx, cfg.CostPerPerson); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertTax(ctx, tx, cfg.Tax); err != nil {
		return nil, err
	}

	if err := s.historySvc.Record(ctx, tx, historydomain.Change{
		EntityType: EntityPricingConfiguration,
		EntityID:   cfg.ID.String(),
		ChangeType: historydomain.ChangeCreate,
		Actor:      actor,
		NewValue:   cfg.Snapshot(),
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s *Service) updateConfiguration(ctx context.Context, tx *gorm.DB, cfg *pricingconfigdomain.PricingConfiguration, params pricingconfigdomain.UpsertParams, actor string) (*pricingconfigdomain.PricingConfiguration, error) {
	if err := s.repo.LoadChildren(ctx, tx, cfg); err != nil {
		return nil, err
	}
	oldSnapshot := cfg.Snapshot()

	now := time.Now().UTC()
	if name := strings.TrimSpace(params.Name); name != "" {
		cfg.Name = name
	}

	if cfg.Coordination == nil {
		cfg.Coordination = newCoordination(s.genID.Generate(), cfg.ID, params, now)
	} else {
		applyCoordination(cfg.Coordination, params, now)
	}
	if cfg.CostPerPerson == nil {
		cfg.CostPerPerson = newCostPerPerson(s.genID.Generate(), cfg.ID, params, now)
	} else {
		applyCostPerPerson(cfg.CostPerPerson, params, now)
	}
	if cfg.Tax == nil {
		cfg.Tax = newTax(s.genID.Generate(), cfg.ID, params, now)
	} else {
		applyTax(cfg.Tax, params, now)
	}

	if err := s.repo.UpsertCoordination(ctx, tx, cfg.Coordination); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertCostPerPerson(ctx, tx, cfg.CostPerPerson); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertTax(ctx, tx, cfg.Tax); err != nil {
		return nil, err
	}

	cfg.UpdatedBy = actor
	if err := s.repo.Touch(ctx, tx, cfg); err != nil {
		return nil, err
	}

	if err := s.historySvc.Record(ctx, tx, historydomain.Change{
		EntityType: EntityPricingConfiguration,
		EntityID:   cfg.ID.String(),
		ChangeType: historydomain.ChangeUpdate,
		Actor:      actor,
		OldValue:   oldSnapshot,
		NewValue:   cfg.Snapshot(),
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// supersede deactivates the current active configuration so a fresh one
// can take its place inside the same transaction.
func (s *Service) supersede(ctx context.Context, tx *gorm.DB, cfg *pricingconfigdomain.PricingConfiguration, actor string) error {
	if err := s.repo.LoadChildren(ctx, tx, cfg); err != nil {
		return err
	}
	oldSnapshot := cfg.Snapshot()

	if err := s.repo.Deactivate(ctx, tx, cfg.ID, pricingconfigdomain.StatusInactive, actor); err != nil {
		return err
	}

	cfg.Active = false
	cfg.Status = pricingconfigdomain.StatusInactive
	cfg.UpdatedBy = actor

	return s.historySvc.Record(ctx, tx, historydomain.Change{
		EntityType: EntityPricingConfiguration,
		EntityID:   cfg.ID.String(),
		ChangeType: historydomain.ChangeUpdate,
		Actor:      actor,
		OldValue:   oldSnapshot,
		NewValue:   cfg.Snapshot(),
	})
}

func (s *Service) Archive(ctx context.Context, requestID string, actor string) error {
	requestID = strings.TrimSpace(requestID)
	if _, err := uuid.Parse(requestID); err != nil {
		return pricingconfigdomain.ErrInvalidRequestID
	}
	actor = actorcontext.Resolve(ctx, actor)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := s.repo.FindActiveForUpdate(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if cfg == nil {
			return pricingconfigdomain.ErrConfigurationNotFound
		}
		if err := s.repo.LoadChildren(ctx, tx, cfg); err != nil {
			return err
		}
		oldSnapshot := cfg.Snapshot()

		if err := s.repo.Deactivate(ctx, tx, cfg.ID, pricingconfigdomain.StatusArchived, actor); err != nil {
			return err
		}

		cfg.Active = false
		cfg.Status = pricingconfigdomain.StatusArchived
		cfg.UpdatedBy = actor

		return s.historySvc.Record(ctx, tx, historydomain.Change{
			EntityType: EntityPricingConfiguration,
			EntityID:   cfg.ID.String(),
			ChangeType: historydomain.ChangeUpdate,
			Actor:      actor,
			OldValue:   oldSnapshot,
			NewValue:   cfg.Snapshot(),
		})
	})
}

func (s *Service) Get(ctx context.Context, requestID string) (*pricingconfigdomain.PricingConfiguration, error) {
	requestID = strings.TrimSpace(requestID)
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, pricingconfigdomain.ErrInvalidRequestID
	}

	cfg, err := s.repo.FindActive(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, pricingconfigdomain.ErrConfigurationNotFound
	}
	if err := s.repo.LoadChildren(ctx, s.db, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateParams rejects out-of-domain values before any write happens.
func validateParams(params pricingconfigdomain.UpsertParams) error {
	one := intOne()

	if params.CoordinationRate != nil {
		if params.CoordinationRate.IsNegative() || params.CoordinationRate.GreaterThan(one) {
			return pricingconfigdomain.ErrInvalidCoordinationRate
		}
	}
	if params.TaxRate != nil {
		if params.TaxRate.IsNegative() || params.TaxRate.GreaterThan(one) {
			return pricingconfigdomain.ErrInvalidTaxRate
		}
	}
	if params.Headcount != nil && *params.Headcount <= 0 {
		return pricingconfigdomain.ErrInvalidHeadcount
	}
	if params.CoordinationMinimumAmount != nil && params.CoordinationMaximumAmount != nil &&
		params.CoordinationMinimumAmount.GreaterThan(*params.CoordinationMaximumAmount) {
		return pricingconfigdomain.ErrInvalidAmountBounds
	}
	if params.CalculationBase != nil && !calculator.ValidCalculationBase(calculator.CalculationBase(*params.CalculationBase)) {
		return pricingconfigdomain.ErrInvalidCalculationBase
	}
	return nil
}
