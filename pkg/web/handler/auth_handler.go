package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/sessions"

	bizerr "admin-gateway/pkg/common/errors"
	"admin-gateway/pkg/common/response"
	"admin-gateway/pkg/core/auth"
	"admin-gateway/pkg/core/captcha"
	"admin-gateway/pkg/web/middleware"
	"admin-gateway/pkg/web/model"
)

// Gateway 由 auth.Gateway 实现
type Gateway interface {
	Captcha(ctx context.Context) (*captcha.Image, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.LoginResult, error)
	ObtainToken(ctx context.Context, username, password string) (*auth.TokenResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	DocsLogin(ctx context.Context, username, password string) (int64, error)
}

type AuthHandler struct {
	gateway Gateway
}

func NewAuthHandler(gateway Gateway) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

// Captcha 获取验证码
// @Summary 获取验证码
// @Tags auth
// @Produce json
// @Success 200 {object} response.Body{data=captcha.Image}
// @Router /api/captcha/ [get]
func (h *AuthHandler) Captcha(ctx context.Context, c *app.RequestContext) {
	img, err := h.gateway.Captcha(ctx)
	if err != nil {
		response.FromError(ctx, c, err)
		return
	}
	if img == nil {
		response.Detail(c, model.EmptyData{}, "")
		return
	}
	response.Detail(c, img, "")
}

// Login 登录
// @Summary 登录并签发令牌
// @Tags auth
// @Accept json
// @Produce json
// @Param body body model.LoginReq true "账号、密码、验证码"
// @Success 200 {object} response.Body{data=auth.LoginResult}
// @Router /api/login/ [post]
func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		response.FromError(ctx, c, bizerr.ErrInvalidParams)
		return
	}

	result, err := h.gateway.Login(ctx, auth.LoginInput{
		Username:   req.Username,
		Password:   req.Password,
		Captcha:    req.Captcha,
		CaptchaKey: req.CaptchaKey,
		IP:         c.ClientIP(),
		UserAgent:  string(c.UserAgent()),
	})
	if err != nil {
		response.FromError(ctx, c, err)
		return
	}
	response.Detail(c, result, "login success")
}

// Logout 注销，令牌在过期前依然有效
// @Summary 注销
// @Tags auth
// @Security Bearer
// @Produce json
// @Success 200 {object} response.Body
// @Router /api/logout/ [post]
func (h *AuthHandler) Logout(ctx context.Context, c *app.RequestContext) {
	if id, ok := c.Get(middleware.IdentityKey); ok {
		hlog.CtxInfof(ctx, "user %v logged out", id)
	}
	response.Detail(c, nil, "logout success")
}

// Token 免验证码签发，需开启 auth.loginNoCaptchaAuth
// @Summary 免验证码获取令牌
// @Tags auth
// @Accept json
// @Produce json
// @Param body body model.TokenReq true "用户名、密码"
// @Success 200 {object} response.Body{data=auth.TokenResult}
// @Router /api/token/ [post]
func (h *AuthHandler) Token(ctx context.Context, c *app.RequestContext) {
	var req model.TokenReq
	if err := c.Bind(&req); err != nil {
		response.FromError(ctx, c, bizerr.ErrInvalidParams)
		return
	}

	result, err := h.gateway.ObtainToken(ctx, req.Username, req.Password)
	if err != nil {
		response.FromError(ctx, c, err)
		return
	}
	response.Detail(c, result, "")
}

// Refresh 刷新访问令牌
// @Summary 刷新访问令牌
// @Tags auth
// @Accept json
// @Produce json
// @Param body body model.RefreshReq true "refresh 令牌"
// @Success 200 {object} response.Body{data=model.RefreshRes}
// @Failure 401 {object} response.Body
// @Router /token/refresh/ [post]
func (h *AuthHandler) Refresh(ctx context.Context, c *app.RequestContext) {
	var req model.RefreshReq
	if err := c.Bind(&req); err != nil || req.Refresh == "" {
		response.Unauthorized(c, http.StatusUnauthorized, bizerr.ErrTokenInvalid.Error())
		return
	}

	access, err := h.gateway.Refresh(ctx, req.Refresh)
	if errors.Is(err, bizerr.ErrTokenInvalid) {
		response.Unauthorized(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		response.FromError(ctx, c, err)
		return
	}
	response.Detail(c, model.RefreshRes{Access: access}, "")
}

// DocsLogin 文档页登录，成功后写入会话并跳转首页
// @Summary 文档登录
// @Tags docs
// @Accept x-www-form-urlencoded
// @Param username formData string true "用户名"
// @Param password formData string true "密码"
// @Success 302
// @Router /apiLogin/ [post]
func (h *AuthHandler) DocsLogin(ctx context.Context, c *app.RequestContext) {
	var req model.DocsLoginReq
	if err := c.Bind(&req); err != nil {
		response.Error(c, bizerr.ErrBadCredentials.Error())
		return
	}

	userID, err := h.gateway.DocsLogin(ctx, req.Username, req.Password)
	if err != nil {
		response.FromError(ctx, c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.DocsSessionUserKey, userID)
	if err := session.Save(); err != nil {
		response.FromError(ctx, c, err)
		return
	}
	c.Redirect(http.StatusFound, []byte("/"))
}
