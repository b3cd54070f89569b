// Package auth 登录网关：验证码校验、多字段账号解析、失败计数锁定、令牌签发，以及文档页的会话登录。
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	bizerr "admin-gateway/pkg/common/errors"
	"admin-gateway/pkg/core/captcha"
	"admin-gateway/pkg/core/settings"
	"admin-gateway/pkg/core/token"
	"admin-gateway/pkg/core/user/model"
	"admin-gateway/pkg/core/user/repository/dao"
)

const DefaultMaxLoginErrors = 5

// CaptchaService 由 captcha.Service 实现
type CaptchaService interface {
	Issue(ctx context.Context) (*captcha.Image, error)
	Verify(ctx context.Context, key, answer string) error
}

// TokenIssuer 由 token.Issuer 实现
type TokenIssuer interface {
	IssuePair(userID int64, username string) (token.Pair, error)
	Refresh(refreshToken string) (string, error)
}

type LoginInput struct {
	Username   string
	Password   string
	Captcha    *string
	CaptchaKey string
	IP         string
	UserAgent  string
}

type DeptInfo struct {
	DeptID   int64  `json:"dept_id"`
	DeptName string `json:"dept_name"`
}

type RoleInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// LoginResult 登录成功返回的数据
type LoginResult struct {
	Access         string     `json:"access"`
	Refresh        string     `json:"refresh"`
	Username       string     `json:"username"`
	Name           string     `json:"name"`
	UserID         int64      `json:"userId"`
	Avatar         string     `json:"avatar"`
	UserType       int        `json:"user_type"`
	PwdChangeCount int        `json:"pwd_change_count"`
	DeptInfo       *DeptInfo  `json:"dept_info,omitempty"`
	RoleInfo       []RoleInfo `json:"role_info,omitempty"`
}

// TokenResult 免验证码签发返回的数据
type TokenResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Name    string `json:"name"`
	UserID  int64  `json:"userId"`
}

type Gateway struct {
	users     dao.UserRepository
	logs      dao.LoginLogRepository
	captchas  CaptchaService
	tokens    TokenIssuer
	flags     settings.Provider
	maxErrors int
	now       func() time.Time
}

type Option func(*Gateway)

func WithMaxLoginErrors(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxErrors = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(users dao.UserRepository, logs dao.LoginLogRepository, captchas CaptchaService,
	tokens TokenIssuer, flags settings.Provider, opts ...Option) *Gateway {
	g := &Gateway{
		users:     users,
		logs:      logs,
		captchas:  captchas,
		tokens:    tokens,
		flags:     flags,
		maxErrors: DefaultMaxLoginErrors,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Captcha 验证码关闭时返回 nil
func (g *Gateway) Captcha(ctx context.Context) (*captcha.Image, error) {
	if !g.flags.CaptchaEnabled(ctx) {
		return nil, nil
	}
	return g.captchas.Issue(ctx)
}

func (g *Gateway) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Username == "" || in.Password == "" {
		return nil, bizerr.ErrInvalidParams
	}

	if g.flags.CaptchaEnabled(ctx) {
		if in.Captcha == nil || *in.Captcha == "" {
			return nil, bizerr.ErrCaptchaRequired
		}
		if err := g.captchas.Verify(ctx, in.CaptchaKey, *in.Captcha); err != nil {
			return nil, err
		}
	}

	lookup, err := g.users.FindByIdentifier(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	switch {
	case lookup.Ambiguous():
		hlog.CtxWarnf(ctx, "login identifier %q matches multiple accounts", in.Username)
		return nil, bizerr.ErrAccountDuplicate
	case !lookup.Found():
		return nil, bizerr.ErrAccountNotFound
	}
	if !lookup.User.IsActive {
		return nil, bizerr.ErrAccountLocked
	}

	// 邮箱、手机号登录统一换成用户名再校验密码
	user, err := g.authenticate(ctx, lookup.User.Username, in.Password)
	if errors.Is(err, bizerr.ErrBadCredentials) {
		return nil, g.recordFailure(ctx, lookup.User)
	}
	if err != nil {
		return nil, err
	}

	pair, err := g.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if err := g.users.RecordLoginSuccess(ctx, user.ID, g.now()); err != nil {
		return nil, err
	}
	g.writeLoginLog(ctx, user, in)

	hlog.CtxInfof(ctx, "user %s logged in from %s", user.Username, in.IP)
	return newLoginResult(user, pair), nil
}

// ObtainToken 免验证码签发，不计失败次数
func (g *Gateway) ObtainToken(ctx context.Context, username, password string) (*TokenResult, error) {
	if !g.flags.NoCaptchaAuthAllowed(ctx) {
		return nil, bizerr.ErrFeatureDisabled
	}
	if username == "" || password == "" {
		return nil, bizerr.ErrInvalidParams
	}

	user, err := g.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	pair, err := g.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &TokenResult{Access: pair.Access, Refresh: pair.Refresh, Name: user.Name, UserID: user.ID}, nil
}

func (g *Gateway) Refresh(ctx context.Context, refreshToken string) (string, error) {
	access, err := g.tokens.Refresh(refreshToken)
	if err != nil {
		hlog.CtxDebugf(ctx, "refresh rejected: %v", err)
		return "", bizerr.ErrTokenInvalid
	}
	return access, nil
}

// DocsLogin 文档页登录，返回写入会话的用户 ID
func (g *Gateway) DocsLogin(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, bizerr.ErrBadCredentials
	}
	user, err := g.authenticate(ctx, username, DocsDigest(password))
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// authenticate 只按规范用户名查找，禁用账号与密码错误返回同一个错误
func (g *Gateway) authenticate(ctx context.Context, username, password string) (model.User, error) {
	user, err := g.users.FindByUsername(ctx, username)
	if errors.Is(err, dao.ErrUserNotFound) {
		return model.User{}, bizerr.ErrBadCredentials
	}
	if err != nil {
		return model.User{}, err
	}
	if !user.IsActive || !CheckPassword(user.Password, password) {
		return model.User{}, bizerr.ErrBadCredentials
	}
	return user, nil
}

func (g *Gateway) recordFailure(ctx context.Context, user model.User) error {
	count, locked, err := g.users.RecordLoginFailure(ctx, user.ID, g.maxErrors)
	if err != nil {
		return err
	}
	if locked {
		hlog.CtxWarnf(ctx, "account %s locked after %d failed logins", user.Username, count)
		return bizerr.ErrAccountLocked
	}
	return bizerr.NewAttemptsRemaining(g.maxErrors - count)
}

// writeLoginLog 审计失败不影响登录
func (g *Gateway) writeLoginLog(ctx context.Context, user model.User, in LoginInput) {
	if g.logs == nil {
		return
	}
	entry := &model.LoginLog{
		Username:  user.Username,
		UserID:    user.ID,
		IP:        in.IP,
		Agent:     in.UserAgent,
		LoginType: 1,
	}
	if err := g.logs.Create(ctx, entry); err != nil {
		hlog.CtxErrorf(ctx, "write login log for %s failed: %v", user.Username, err)
	}
}

func newLoginResult(user model.User, pair token.Pair) *LoginResult {
	result := &LoginResult{
		Access:         pair.Access,
		Refresh:        pair.Refresh,
		Username:       user.Username,
		Name:           user.Name,
		UserID:         user.ID,
		Avatar:         user.Avatar,
		UserType:       user.UserType,
		PwdChangeCount: user.PwdChangeCount,
	}
	if user.Dept != nil {
		result.DeptInfo = &DeptInfo{DeptID: user.Dept.ID, DeptName: user.Dept.Name}
	}
	for _, r := range user.Roles {
		result.RoleInfo = append(result.RoleInfo, RoleInfo{ID: r.ID, Name: r.Name, Key: r.Key})
	}
	return result
}
