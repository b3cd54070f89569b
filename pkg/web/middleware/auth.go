package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/jwt"
	"github.com/hertz-contrib/sessions"
	"github.com/hertz-contrib/sessions/cookie"

	"admin-gateway/pkg/common/config"
	"admin-gateway/pkg/common/response"
)

const (
	IdentityKey        = "user_id"
	DocsSessionUserKey = "user_id"
)

// InitJWTAuth 校验 Authorization: Bearer <access>，refresh 令牌不能用来访问接口
func InitJWTAuth(cfg config.JWTAuthConfig) (*jwt.HertzJWTMiddleware, error) {
	return jwt.New(&jwt.HertzJWTMiddleware{
		Realm:            cfg.Realm,
		SigningAlgorithm: cfg.SigningMethod,
		Key:              []byte(cfg.Secret),
		Timeout:          cfg.ExpireDuration,
		MaxRefresh:       cfg.RefreshExpire,
		TokenLookup:      "header: Authorization",
		TokenHeadName:    cfg.TokenHeadName,
		TimeFunc:         time.Now,
		IdentityKey:      IdentityKey,
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			return jwt.ExtractClaims(ctx, c)[IdentityKey]
		},
		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			return jwt.ExtractClaims(ctx, c)["token_type"] == "access"
		},
		Unauthorized: handleJWTError,
	})
}

func handleJWTError(ctx context.Context, c *app.RequestContext, code int, message string) {
	hlog.CtxWarnf(ctx, "JWT Error (code=%d) path=%s: %s", code, c.Path(), message)
	response.Unauthorized(c, code, message)
}

// SessionMiddleware 文档页使用的 cookie 会话
func SessionMiddleware(cfg config.SessionConfig) app.HandlerFunc {
	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
	})
	return sessions.New(cfg.Name, store)
}

// DocsSessionRequired 未通过 /apiLogin/ 登录时拒绝访问文档
func DocsSessionRequired() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if sessions.Default(c).Get(DocsSessionUserKey) == nil {
			response.Unauthorized(c, http.StatusUnauthorized, "docs login required")
			return
		}
		c.Next(ctx)
	}
}
