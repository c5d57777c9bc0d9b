package requestoverride

import (
	"github.com/quoteforge/quoteforge/internal/requestoverride/repository"
	"github.com/quoteforge/quoteforge/internal/requestoverride/service"
	"go.uber.org/fx"
)

var Module = fx.Module("requestoverride.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
