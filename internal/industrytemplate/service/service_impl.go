package service

import (
	"context"

	industrytemplatedomain "github.com/quoteforge/quoteforge/internal/industrytemplate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo industrytemplatedomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo industrytemplatedomain.Repository
}

func NewService(p ServiceParam) industrytemplatedomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("industrytemplate.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]industrytemplatedomain.IndustryTemplate, error) {
	return s.repo.List(ctx, s.db)
}
