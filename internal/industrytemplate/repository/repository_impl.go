package repository

import (
	"context"
	"errors"
	"strings"

	industrytemplatedomain "github.com/quoteforge/quoteforge/internal/industrytemplate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() industrytemplatedomain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]industrytemplatedomain.IndustryTemplate, error) {
	var templates []industrytemplatedomain.IndustryTemplate
	err := db.WithContext(ctx).Order("industry asc, name asc").Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *repo) FindByIndustry(ctx context.Context, db *gorm.DB, industry string) (*industrytemplatedomain.IndustryTemplate, error) {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == "" {
		return nil, nil
	}

	var template industrytemplatedomain.IndustryTemplate
	err := db.WithContext(ctx).Where("industry = ?", industry).Order("name asc").First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}
