package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	bizerr "admin-gateway/pkg/common/errors"
	"admin-gateway/pkg/core/user/model"
	"admin-gateway/pkg/core/user/repository/dao"
)

// ErrUserNotFound 供本包调用方直接引用
var ErrUserNotFound = dao.ErrUserNotFound

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var _ dao.UserRepository = (*GormUserRepository)(nil)

func (r *GormUserRepository) FindByIdentifier(ctx context.Context, identifier string) (dao.Lookup, error) {
	var users []model.User
	// 取 2 条足以区分 0/1/N
	err := r.db.WithContext(ctx).
		Preload("Dept").
		Preload("Roles").
		Where("username = ? OR email = ? OR mobile = ?", identifier, identifier, identifier).
		Order("id").
		Limit(2).
		Find(&users).Error
	if err != nil {
		return dao.Lookup{}, fmt.Errorf("%w: identifier lookup failed", bizerr.WrapGormError(err))
	}

	lookup := dao.Lookup{Matches: len(users)}
	if len(users) > 0 {
		lookup.User = users[0]
	}
	return lookup, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Dept").
		Preload("Roles").
		Where("username = ?", username).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.User{}, ErrUserNotFound
	case err != nil:
		return model.User{}, fmt.Errorf("%w: user query failed", bizerr.WrapGormError(err))
	default:
		return user, nil
	}
}

// CreateUser 事务内创建用户（含角色关联）
func (r *GormUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if bizerr.IsDuplicateError(err) {
				return bizerr.ErrDuplicateEntry
			}
			return fmt.Errorf("%w: user creation failed", bizerr.WrapGormError(err))
		}
		return nil
	})
}

func (r *GormUserRepository) RecordLoginSuccess(ctx context.Context, userID int64, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"login_error_count": 0,
			"last_login":        at,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: reset login errors failed", bizerr.WrapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordLoginFailure 使用 SQL 自增而不是读出再写回，并发失败不会丢失计数
func (r *GormUserRepository) RecordLoginFailure(ctx context.Context, userID int64, threshold int) (int, bool, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).
			Where("id = ?", userID).
			UpdateColumn("login_error_count", gorm.Expr("login_error_count + ?", 1))
		if result.Error != nil {
			return bizerr.WrapGormError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		if err := tx.Model(&model.User{}).
			Where("id = ? AND login_error_count >= ?", userID, threshold).
			UpdateColumn("is_active", false).Error; err != nil {
			return bizerr.WrapGormError(err)
		}

		return tx.Select("id", "login_error_count", "is_active").
			Where("id = ?", userID).
			Take(&user).Error
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, false, err
		}
		return 0, false, fmt.Errorf("%w: record login failure failed", bizerr.WrapGormError(err))
	}
	return user.LoginErrorCount, !user.IsActive, nil
}

func (r *GormUserRepository) Unlock(ctx context.Context, userID int64) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_active":         true,
			"login_error_count": 0,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: unlock failed", bizerr.WrapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

type GormLoginLogRepository struct {
	db *gorm.DB
}

func NewGormLoginLogRepository(db *gorm.DB) *GormLoginLogRepository {
	return &GormLoginLogRepository{db: db}
}

var _ dao.LoginLogRepository = (*GormLoginLogRepository)(nil)

func (r *GormLoginLogRepository) Create(ctx context.Context, log *model.LoginLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("%w: login log insert failed", bizerr.WrapGormError(err))
	}
	return nil
}
