package captcha

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	bizerr "admin-gateway/pkg/common/errors"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) Save(ctx context.Context, c *Challenge) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("%w: store captcha", bizerr.WrapGormError(err))
	}
	return nil
}

// Take 读出后删除，删除行数为 0 说明已被其他请求消费
func (s *GormStore) Take(ctx context.Context, key string) (*Challenge, error) {
	var c Challenge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hashkey = ?", key).Take(&c).Error; err != nil {
			return err
		}
		result := tx.Where("hashkey = ?", key).Delete(&Challenge{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: take captcha", bizerr.WrapGormError(err))
	}
	return &c, nil
}
