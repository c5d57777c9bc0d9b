package confighistory

import (
	"github.com/quoteforge/quoteforge/internal/confighistory/repository"
	"github.com/quoteforge/quoteforge/internal/confighistory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("confighistory.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
