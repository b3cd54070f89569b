package dao

import (
	"context"
	"errors"
	"time"

	"admin-gateway/pkg/core/user/model"
)

var ErrUserNotFound = errors.New("user not found")

// Lookup 多字段登录标识的查询结果，Matches 为命中数（超过 1 时只保证 >1）
type Lookup struct {
	User    model.User
	Matches int
}

func (l Lookup) Found() bool     { return l.Matches == 1 }
func (l Lookup) Ambiguous() bool { return l.Matches > 1 }

type UserRepository interface {
	// FindByIdentifier 按 username OR email OR mobile 查询
	FindByIdentifier(ctx context.Context, identifier string) (Lookup, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	// RecordLoginSuccess 清零失败计数并记录登录时间
	RecordLoginSuccess(ctx context.Context, userID int64, at time.Time) error
	// RecordLoginFailure 原子地累加失败计数，达到 threshold 时锁定账号
	RecordLoginFailure(ctx context.Context, userID int64, threshold int) (count int, locked bool, err error)
	// Unlock 管理员解锁
	Unlock(ctx context.Context, userID int64) error
}

type LoginLogRepository interface {
	Create(ctx context.Context, log *model.LoginLog) error
}
