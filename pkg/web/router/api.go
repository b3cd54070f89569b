package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/swagger"
	swaggerFiles "github.com/swaggo/files"
	"github.com/swaggo/swag"

	"admin-gateway/pkg/common/config"
	"admin-gateway/pkg/common/response"
	"admin-gateway/pkg/web/handler"
	"admin-gateway/pkg/web/middleware"

	_ "admin-gateway/docs"
)

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, cfg *config.Config, authHandler *handler.AuthHandler, healthHandler *handler.HealthCheckHandler) error {
	jwtAuth, err := middleware.InitJWTAuth(cfg.Middleware.JWT)
	if err != nil {
		return fmt.Errorf("init jwt middleware: %w", err)
	}

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
		middleware.RateLimitMiddleware(
			cfg.Middleware.RateLimit.Rate,
			cfg.Middleware.RateLimit.Interval,
		),
	)

	// 基础接口组
	h.GET("/health", healthHandler.AdvancedHealthCheck)

	// 登录类接口单独限流
	loginLimit := middleware.RateLimitMiddleware(
		cfg.Middleware.LoginRateLimit.Rate,
		cfg.Middleware.LoginRateLimit.Interval,
	)

	apiGroup := h.Group("/api")
	{
		apiGroup.GET("/captcha/", authHandler.Captcha)
		apiGroup.POST("/login/", loginLimit, authHandler.Login)
		apiGroup.POST("/token/", loginLimit, authHandler.Token)

		// 需要身份认证的接口
		apiGroup.POST("/logout/", jwtAuth.MiddlewareFunc(), authHandler.Logout)
	}
	h.POST("/token/refresh/", loginLimit, authHandler.Refresh)

	// 文档相关接口，共用 cookie 会话
	docsGroup := h.Group("/", middleware.SessionMiddleware(cfg.Session))
	{
		docsGroup.POST("/apiLogin/", loginLimit, authHandler.DocsLogin)

		guarded := func(handlers ...app.HandlerFunc) []app.HandlerFunc {
			if !cfg.Docs.RequireLogin {
				return handlers
			}
			return append([]app.HandlerFunc{middleware.DocsSessionRequired()}, handlers...)
		}
		docsGroup.GET("/", func(ctx context.Context, c *app.RequestContext) {
			c.Redirect(http.StatusFound, []byte("/swagger/index.html"))
		})
		docsGroup.GET("/swagger/*any", guarded(
			swagger.WrapHandler(swaggerFiles.Handler, swagger.URL("/swagger/doc.json")))...)
		docsGroup.GET("/swagger.json", guarded(serveSwaggerJSON)...)
	}
	return nil
}

func serveSwaggerJSON(ctx context.Context, c *app.RequestContext) {
	doc, err := swag.ReadDoc()
	if err != nil {
		response.FromError(ctx, c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
