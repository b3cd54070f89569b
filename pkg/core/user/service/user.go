package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	bizerr "admin-gateway/pkg/common/errors"
	"admin-gateway/pkg/core/user/model"
	"admin-gateway/pkg/core/user/repository/dao"
)

// AccountService 管理员侧的账号维护，供命令行使用
type AccountService interface {
	// CreateAccount 创建账号，hashedPwd 为已经过 bcrypt 的密码
	CreateAccount(ctx context.Context, username, email, mobile, name, hashedPwd string) (int64, error)
	// Unlock 解除锁定并清零失败次数，identifier 可以是用户名、邮箱或手机号
	Unlock(ctx context.Context, identifier string) (model.User, error)
}

type accountService struct {
	users dao.UserRepository
}

func NewAccountService(users dao.UserRepository) AccountService {
	return &accountService{users: users}
}

func (s *accountService) CreateAccount(ctx context.Context, username, email, mobile, name, hashedPwd string) (int64, error) {
	if username == "" || hashedPwd == "" {
		return 0, bizerr.ErrInvalidParams
	}
	u := &model.User{
		Username: username,
		Email:    email,
		Mobile:   mobile,
		Name:     name,
		Password: hashedPwd,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, bizerr.ErrDuplicateEntry) {
			return 0, fmt.Errorf("username %q already exists: %w", username, err)
		}
		return 0, err
	}
	hlog.CtxInfof(ctx, "account %s created with id %d", username, u.ID)
	return u.ID, nil
}

func (s *accountService) Unlock(ctx context.Context, identifier string) (model.User, error) {
	lookup, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return model.User{}, err
	}
	switch {
	case lookup.Ambiguous():
		return model.User{}, bizerr.ErrAccountDuplicate
	case !lookup.Found():
		return model.User{}, bizerr.ErrAccountNotFound
	}

	if err := s.users.Unlock(ctx, lookup.User.ID); err != nil {
		return model.User{}, err
	}
	hlog.CtxInfof(ctx, "account %s unlocked (was %d failed logins)", lookup.User.Username, lookup.User.LoginErrorCount)
	return lookup.User, nil
}
