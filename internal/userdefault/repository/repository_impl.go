package repository

import (
	"context"
	"errors"

	userdefaultdomain "github.com/quoteforge/quoteforge/internal/userdefault/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() userdefaultdomain.Repository {
	return &repo{}
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID string) (*userdefaultdomain.UserDefaultConfiguration, error) {
	var cfg userdefaultdomain.UserDefaultConfiguration
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cfg *userdefaultdomain.UserDefaultConfiguration) error {
	return db.WithContext(ctx).Create(cfg).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, cfg *userdefaultdomain.UserDefaultConfiguration) error {
	return db.WithContext(ctx).Save(cfg).Error
}
