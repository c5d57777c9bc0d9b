package industrytemplate

import (
	"github.com/quoteforge/quoteforge/internal/industrytemplate/repository"
	"github.com/quoteforge/quoteforge/internal/industrytemplate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("industrytemplate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
