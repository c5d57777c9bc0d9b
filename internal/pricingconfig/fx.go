package pricingconfig

import (
	"github.com/quoteforge/quoteforge/internal/pricingconfig/repository"
	"github.com/quoteforge/quoteforge/internal/pricingconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingconfig.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
