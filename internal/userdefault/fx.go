package userdefault

import (
	"github.com/quoteforge/quoteforge/internal/userdefault/repository"
	"github.com/quoteforge/quoteforge/internal/userdefault/service"
	"go.uber.org/fx"
)

var Module = fx.Module("userdefault.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
