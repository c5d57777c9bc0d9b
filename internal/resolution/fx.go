package resolution

import (
	"github.com/quoteforge/quoteforge/internal/resolution/service"
	"go.uber.org/fx"
)

var Module = fx.Module("resolution.service",
	fx.Provide(service.NewService),
)
