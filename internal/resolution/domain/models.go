package domain

import (
	"context"
	"errors"

	"github.com/quoteforge/quoteforge/internal/calculator"
)

// Source names the layer that satisfied a field group.
type Source string

var (
	SourceOverride         Source = "override"
	SourceRequest          Source = "request"
	SourceUserDefault      Source = "user_default"
	SourceIndustryTemplate Source = "industry_template"
	SourceSystemDefault    Source = "system_default"
)

// FieldGroup is an independently resolved slice of the configuration.
type FieldGroup string

var (
	GroupPricing  FieldGroup = "pricing"
	GroupBranding FieldGroup = "branding"
	GroupCurrency FieldGroup = "currency"
	GroupLanguage FieldGroup = "language"
)

// System defaults applied when no layer provides a value. All pricing
// axes start disabled; document preferences match the product's home
// market.
const (
	DefaultCurrency         = "MXN"
	DefaultLanguage         = "es"
	DefaultBrandingTemplate = "standard"
)

// Branding is the document branding slice of the configuration.
type Branding struct {
	Template string  `json:"template"`
	LogoURL  *string `json:"logo_url,omitempty"`
}

// EffectiveConfiguration is the fully-resolved configuration applied to a
// request. Sources records, per field group, which layer won.
type EffectiveConfiguration struct {
	RequestID string                  `json:"request_id"`
	Pricing   calculator.PricingInput `json:"pricing"`
	Branding  Branding                `json:"branding"`
	Currency  string                  `json:"currency"`
	Language  string                  `json:"language"`
	Sources   map[FieldGroup]Source   `json:"sources"`
}

type Service interface {
	// Resolve walks the override hierarchy inside a single consistent
	// snapshot and returns the effective configuration. Missing layers fall
	// through; a request with no configuration anywhere resolves to system
	// defaults.
	Resolve(ctx context.Context, requestID string) (EffectiveConfiguration, error)
}

var (
	ErrInvalidRequestID = errors.New("invalid_request_id")
)

// SystemDefaults is the bottom of the precedence chain.
func SystemDefaults(requestID string) EffectiveConfiguration {
	return EffectiveConfiguration{
		RequestID: requestID,
		Pricing: calculator.PricingInput{
			CostPerPerson: calculator.CostPerPersonInput{
				CalculationBase: calculator.BaseFinalTotal,
				RoundToCents:    true,
			},
			Tax: calculator.TaxInput{
				ApplyToSubtotalWithCoordination: true,
			},
		},
		Branding: Branding{Template: DefaultBrandingTemplate},
		Currency: DefaultCurrency,
		Language: DefaultLanguage,
		Sources: map[FieldGroup]Source{
			GroupPricing:  SourceSystemDefault,
			GroupBranding: SourceSystemDefault,
			GroupCurrency: SourceSystemDefault,
			GroupLanguage: SourceSystemDefault,
		},
	}
}
