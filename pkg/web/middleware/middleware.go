package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/cors"
	"golang.org/x/time/rate"

	"admin-gateway/pkg/common/config"
	"admin-gateway/pkg/common/response"
)

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)

		errMsg := "-"
		if last := ctx.Errors.Last(); last != nil {
			errMsg = last.Error()
		}

		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | err=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			errMsg,
		)
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	go run ./cmd/web serve
*/

// RecoveryMiddleware 异常捕获，生产环境不返回堆栈
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())
				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				if cfg.IsProd() {
					ctx.AbortWithStatusJSON(http.StatusInternalServerError, response.Body{
						Code: response.CodeServerError,
						Msg:  "internal server error",
					})
					return
				}
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, response.Body{
					Code: response.CodeServerError,
					Msg:  fmt.Sprintf("%v", err),
					Data: strings.Split(stack, "\n"),
				})
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware 安全的跨域配置
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	return cors.New(
		cors.Config{
			AllowOrigins:     corsConfig.AllowOrigins,
			AllowMethods:     corsConfig.AllowMethods,
			AllowHeaders:     corsConfig.AllowHeaders,
			ExposeHeaders:    corsConfig.ExposeHeaders,
			AllowCredentials: corsConfig.AllowCredentials,
			MaxAge:           corsConfig.MaxAge,
			// 动态校验来源
			AllowOriginFunc: func(origin string) bool {
				for _, allowed := range corsConfig.AllowOrigins {
					if origin == allowed {
						return true
					}
				}
				for _, domain := range corsConfig.TrustedDomains {
					if strings.HasSuffix(origin, domain) {
						return true
					}
				}
				return false
			},
		},
	)
}

// TimeoutMiddleware 为后续处理器设置截止时间，数据库调用随上下文取消
func TimeoutMiddleware(seconds int) app.HandlerFunc {
	if seconds <= 0 {
		return func(c context.Context, ctx *app.RequestContext) { ctx.Next(c) }
	}
	return func(c context.Context, ctx *app.RequestContext) {
		timeoutCtx, cancel := context.WithTimeout(c, time.Duration(seconds)*time.Second)
		defer cancel()

		ctx.Next(timeoutCtx)

		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			hlog.CtxWarnf(c, "request timeout path=%s", ctx.Path())
		}
	}
}

// RateLimitMiddleware 令牌桶限流，每 interval 放行 n 个请求
func RateLimitMiddleware(n int, interval time.Duration) app.HandlerFunc {
	limiter := NewLimiter(n, interval)

	return func(c context.Context, ctx *app.RequestContext) {
		if !limiter.Allow() {
			hlog.CtxInfof(c, "[RATE LIMIT] path=%s ip=%s", ctx.Path(), ctx.ClientIP())
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, response.Body{
				Code: http.StatusTooManyRequests,
				Msg:  "too many requests",
			})
			return
		}
		ctx.Next(c)
	}
}

func NewLimiter(n int, interval time.Duration) *rate.Limiter {
	if n <= 0 || interval <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(n)/interval.Seconds()), n)
}

// SecurityCheckMiddleware 全局安全校验中间件
func SecurityCheckMiddleware(cfg config.SecurityConfig) app.HandlerFunc {
	// 预编译恶意字符正则
	xssRegex := regexp.MustCompile(`(?i)<script.*?>|<\/script>|alert\(|onerror=`)
	sqlInjectRegex := regexp.MustCompile(`(?i)\b(union|select|drop|delete|insert)\b`)

	allowed := make(map[string]bool, len(cfg.AllowedMethods))
	for _, m := range cfg.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：检查User-Agent
		if isInvalidUserAgent(ctx) {
			securityResponse(c, ctx, "missing required header: User-Agent", http.StatusBadRequest)
			return
		}

		// 防护机制2：请求体大小限制
		if cfg.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > cfg.MaxBodySize {
			securityResponse(c, ctx, "request body exceeds max size", http.StatusRequestEntityTooLarge)
			return
		}

		// 防护机制3：查询参数恶意字符检查。请求体里是账号密码等自由文本，不做关键字匹配
		if hasMaliciousQuery(ctx, xssRegex, sqlInjectRegex) {
			securityResponse(c, ctx, "request contains invalid characters", http.StatusUnprocessableEntity)
			return
		}

		// 防护机制4：检查HTTP方法
		if len(allowed) > 0 && !allowed[string(ctx.Method())] {
			securityResponse(c, ctx, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx.Next(c)
	}
}

// 辅助方法：不允许空UA
func isInvalidUserAgent(ctx *app.RequestContext) bool {
	return len(ctx.GetHeader("User-Agent")) == 0
}

func hasMaliciousQuery(ctx *app.RequestContext, xss, sql *regexp.Regexp) bool {
	found := false
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		if found {
			return
		}
		found = xss.Match(key) || xss.Match(value) || sql.Match(key) || sql.Match(value)
	})
	return found
}

// 安全响应统一处理
func securityResponse(c context.Context, ctx *app.RequestContext, msg string, status int) {
	hlog.CtxWarnf(c, "SecurityAlert[status=%d] path=%s: %s", status, ctx.Path(), msg)
	ctx.AbortWithStatusJSON(status, response.Body{
		Code: status,
		Msg:  msg,
	})
}
