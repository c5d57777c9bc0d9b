package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/quoteforge/quoteforge/internal/calculator"
	industrytemplatedomain "github.com/quoteforge/quoteforge/internal/industrytemplate/domain"
	"github.com/quoteforge/quoteforge/internal/observability/metrics"
	pricingconfigdomain "github.com/quoteforge/quoteforge/internal/pricingconfig/domain"
	requestoverridedomain "github.com/quoteforge/quoteforge/internal/requestoverride/domain"
	resolutiondomain "github.com/quoteforge/quoteforge/internal/resolution/domain"
	userdefaultdomain "github.com/quoteforge/quoteforge/internal/userdefault/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	ConfigRepo   pricingconfigdomain.Repository
	OverrideRepo requestoverridedomain.Repository
	DefaultRepo  userdefaultdomain.Repository
	TemplateRepo industrytemplatedomain.Repository
	Metrics      *metrics.EngineMetrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	configRepo   pricingconfigdomain.Repository
	overrideRepo requestoverridedomain.Repository
	defaultRepo  userdefaultdomain.Repository
	templateRepo industrytemplatedomain.Repository
	metrics      *metrics.EngineMetrics
}

func NewService(p ServiceParam) resolutiondomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("resolution.service"),
		configRepo:   p.ConfigRepo,
		overrideRepo: p.OverrideRepo,
		defaultRepo:  p.DefaultRepo,
		templateRepo: p.TemplateRepo,
		metrics:      p.Metrics,
	}
}

// layers holds everything the precedence walk reads, loaded in one
// transaction so concurrent writes cannot produce a torn view.
type layers struct {
	override    *requestoverridedomain.RequestConfigurationOverride
	config      *pricingconfigdomain.PricingConfiguration
	userDefault *userdefaultdomain.UserDefaultConfiguration
	template    *industrytemplatedomain.IndustryTemplate
}

func (s *Service) Resolve(ctx context.Context, requestID string) (resolutiondomain.EffectiveConfiguration, error) {
	requestID = strings.TrimSpace(requestID)
	if _, err := uuid.Parse(requestID); err != nil {
		return resolutiondomain.EffectiveConfiguration{}, resolutiondomain.ErrInvalidRequestID
	}

	var loaded layers
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		override, err := s.overrideRepo.FindByRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		loaded.override = override

		cfg, err := s.configRepo.FindActive(ctx, tx, requestID)
		if err != nil {
			return err
		}
		// A configuration materialized from user defaults is not a
		// request-level decision; the user layer keeps precedence so later
		// default edits still flow through.
		if cfg != nil && !cfg.IsDefault {
			if err := s.configRepo.LoadChildren(ctx, tx, cfg); err != nil {
				return err
			}
			loaded.config = cfg
		}

		request, err := s.configRepo.FindRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return nil
		}

		userDefault, err := s.defaultRepo.FindByUser(ctx, tx, request.UserID)
		if err != nil {
			return err
		}
		loaded.userDefault = userDefault

		if request.Industry != "" {
			template, err := s.templateRepo.FindByIndustry(ctx, tx, request.Industry)
			if err != nil {
				return err
			}
			loaded.template = template
		}
		return nil
	})
	if err != nil {
		return resolutiondomain.EffectiveConfiguration{}, err
	}

	effective := resolutiondomain.SystemDefaults(requestID)
	applyLayers(&effective, sourceLayers(loaded))

	for group, source := range effective.Sources {
		s.hit(group, source)
	}

	return effective, nil
}

// layer is one rung of the precedence ladder. Each accessor returns its
// value and whether this layer actually provides it; a nil accessor
// means the layer never carries that field group.
type layer struct {
	source   resolutiondomain.Source
	pricing  func() (calculator.PricingInput, bool)
	branding func() (resolutiondomain.Branding, bool)
	currency func() (string, bool)
	language func() (string, bool)
}

// sourceLayers orders the loaded layers by precedence. Adding a layer
// means appending one entry in the right position.
func sourceLayers(loaded layers) []layer {
	var ordered []layer

	if o := loaded.override; o != nil {
		ordered = append(ordered, layer{
			source: resolutiondomain.SourceOverride,
			pricing: func() (calculator.PricingInput, bool) {
				return overridePricing(o), o.OverridePricing
			},
			branding: func() (resolutiondomain.Branding, bool) {
				return resolutiondomain.Branding{Template: o.BrandingTemplate, LogoURL: o.LogoURL}, o.OverrideBranding
			},
			currency: func() (string, bool) { return o.Currency, o.OverrideCurrency },
			language: func() (string, bool) { return o.Language, o.OverrideLanguage },
		})
	}

	// Request-level configurations carry only the pricing group.
	if cfg := loaded.config; cfg != nil {
		ordered = append(ordered, layer{
			source:  resolutiondomain.SourceRequest,
			pricing: func() (calculator.PricingInput, bool) { return configPricing(cfg), true },
		})
	}

	if d := loaded.userDefault; d != nil {
		ordered = append(ordered, layer{
			source:  resolutiondomain.SourceUserDefault,
			pricing: func() (calculator.PricingInput, bool) { return userDefaultPricing(d), true },
			branding: func() (resolutiondomain.Branding, bool) {
				return resolutiondomain.Branding{Template: d.BrandingTemplate, LogoURL: d.LogoURL}, d.BrandingTemplate != ""
			},
			currency: func() (string, bool) { return d.Currency, d.Currency != "" },
			language: func() (string, bool) { return d.Language, d.Language != "" },
		})
	}

	if t := loaded.template; t != nil {
		ordered = append(ordered, layer{
			source:  resolutiondomain.SourceIndustryTemplate,
			pricing: func() (calculator.PricingInput, bool) { return templatePricing(t), true },
			branding: func() (resolutiondomain.Branding, bool) {
				return resolutiondomain.Branding{Template: t.BrandingTemplate}, t.BrandingTemplate != ""
			},
			currency: func() (string, bool) { return t.Currency, t.Currency != "" },
			language: func() (string, bool) { return t.Language, t.Language != "" },
		})
	}

	return ordered
}

// applyLayers walks each field group down the ladder and takes the first
// layer that provides it; system defaults stay in place otherwise.
func applyLayers(effective *resolutiondomain.EffectiveConfiguration, ordered []layer) {
	if pricing, source, ok := firstOf(ordered, func(l layer) func() (calculator.PricingInput, bool) { return l.pricing }); ok {
		effective.Pricing = pricing
		effective.Sources[resolutiondomain.GroupPricing] = source
	}
	if branding, source, ok := firstOf(ordered, func(l layer) func() (resolutiondomain.Branding, bool) { return l.branding }); ok {
		effective.Branding = branding
		effective.Sources[resolutiondomain.GroupBranding] = source
	}
	if currency, source, ok := firstOf(ordered, func(l layer) func() (string, bool) { return l.currency }); ok {
		effective.Currency = currency
		effective.Sources[resolutiondomain.GroupCurrency] = source
	}
	if language, source, ok := firstOf(ordered, func(l layer) func() (string, bool) { return l.language }); ok {
		effective.Language = language
		effective.Sources[resolutiondomain.GroupLanguage] = source
	}
}

func firstOf[T any](ordered []layer, accessor func(layer) func() (T, bool)) (T, resolutiondomain.Source, bool) {
	for _, l := range ordered {
		get := accessor(l)
		if get == nil {
			continue
		}
		if value, ok := get(); ok {
			return value, l.source, true
		}
	}
	var zero T
	return zero, "", false
}

func (s *Service) hit(group resolutiondomain.FieldGroup, source resolutiondomain.Source) {
	if s.metrics == nil {
		return
	}
	s.metrics.ResolutionHits.WithLabelValues(string(group), string(source)).Inc()
}

func overridePricing(o *requestoverridedomain.RequestConfigurationOverride) calculator.PricingInput {
	return calculator.PricingInput{
		Coordination: calculator.CoordinationInput{
			Enabled:       o.CoordinationEnabled,
			Rate:          o.CoordinationRate,
			ApplyToTotal:  o.CoordinationApplyToTotal,
			MinimumAmount: o.CoordinationMinimumAmount,
			MaximumAmount: o.CoordinationMaximumAmount,
		},
		Tax: calculator.TaxInput{
			Enabled:                         o.TaxEnabled,
			Rate:                            o.TaxRate,
			ApplyToSubtotalWithCoordination: o.TaxApplyToSubtotalWithCoordination,
		},
		CostPerPerson: calculator.CostPerPersonInput{
			Enabled:         o.CostPerPersonEnabled,
			Headcount:       o.Headcount,
			CalculationBase: calculator.CalculationBase(o.CalculationBase),
			RoundToCents:    o.RoundToCents,
		},
	}
}

func configPricing(cfg *pricingconfigdomain.PricingConfiguration) calculator.PricingInput {
	input := calculator.PricingInput{
		CostPerPerson: calculator.CostPerPersonInput{
			CalculationBase: calculator.BaseFinalTotal,
			RoundToCents:    true,
		},
		Tax: calculator.TaxInput{ApplyToSubtotalWithCoordination: true},
	}
	if cfg.Coordination != nil {
		input.Coordination = calculator.CoordinationInput{
			Enabled:       cfg.Coordination.Enabled,
			Rate:          cfg.Coordination.Rate,
			ApplyToTotal:  cfg.Coordination.ApplyToTotal,
			MinimumAmount: cfg.Coordination.MinimumAmount,
			MaximumAmount: cfg.Coordination.MaximumAmount,
		}
	}
	if cfg.Tax != nil {
		input.Tax = calculator.TaxInput{
			Enabled:                         cfg.Tax.Enabled,
			Rate:                            cfg.Tax.Rate,
			ApplyToSubtotalWithCoordination: cfg.Tax.ApplyToSubtotalWithCoordination,
		}
	}
	if cfg.CostPerPerson != nil {
		input.CostPerPerson = calculator.CostPerPersonInput{
			Enabled:         cfg.CostPerPerson.Enabled,
			Headcount:       cfg.CostPerPerson.Headcount,
			CalculationBase: calculator.CalculationBase(cfg.CostPerPerson.CalculationBase),
			RoundToCents:    cfg.CostPerPerson.RoundToCents,
		}
	}
	return input
}

func userDefaultPricing(d *userdefaultdomain.UserDefaultConfiguration) calculator.PricingInput {
	return calculator.PricingInput{
		Coordination: calculator.CoordinationInput{
			Enabled:       d.CoordinationEnabled,
			Rate:          d.CoordinationRate,
			ApplyToTotal:  d.CoordinationApplyToTotal,
			MinimumAmount: d.CoordinationMinimumAmount,
			MaximumAmount: d.CoordinationMaximumAmount,
		},
		Tax: calculator.TaxInput{
			Enabled:                         d.TaxEnabled,
			Rate:                            d.TaxRate,
			ApplyToSubtotalWithCoordination: d.TaxApplyToSubtotalWithCoordination,
		},
		CostPerPerson: calculator.CostPerPersonInput{
			Enabled:         d.CostPerPersonEnabled,
			Headcount:       d.Headcount,
			CalculationBase: calculator.CalculationBase(d.CalculationBase),
			RoundToCents:    d.RoundToCents,
		},
	}
}

func templatePricing(t *industrytemplatedomain.IndustryTemplate) calculator.PricingInput {
	return calculator.PricingInput{
		Coordination: calculator.CoordinationInput{
			Enabled:       t.CoordinationEnabled,
			Rate:          t.CoordinationRate,
			ApplyToTotal:  t.CoordinationApplyToTotal,
			MinimumAmount: t.CoordinationMinimumAmount,
			MaximumAmount: t.CoordinationMaximumAmount,
		},
		Tax: calculator.TaxInput{
			Enabled:                         t.TaxEnabled,
			Rate:                            t.TaxRate,
			ApplyToSubtotalWithCoordination: t.TaxApplyToSubtotalWithCoordination,
		},
		CostPerPerson: calculator.CostPerPersonInput{
			Enabled:         t.CostPerPersonEnabled,
			Headcount:       t.Headcount,
			CalculationBase: calculator.CalculationBase(t.CalculationBase),
			RoundToCents:    t.RoundToCents,
		},
	}
}
