package middleware

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"

	"admin-gateway/pkg/common/config"
)

func ok(ctx context.Context, c *app.RequestContext) {
	c.String(http.StatusOK, "ok")
}

var ua = ut.Header{Key: "User-Agent", Value: "middleware-test"}

func TestRateLimitMiddleware(t *testing.T) {
	h := server.New()
	h.Use(RateLimitMiddleware(2, time.Hour))
	h.GET("/", ok)

	assert.Equal(t, http.StatusOK, ut.PerformRequest(h.Engine, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, ut.PerformRequest(h.Engine, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, ut.PerformRequest(h.Engine, http.MethodGet, "/", nil).Code)
}

func TestNewLimiterUnlimited(t *testing.T) {
	l := NewLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow())
	}
}

func TestSecurityCheckMiddleware(t *testing.T) {
	h := server.New()
	h.Use(SecurityCheckMiddleware(config.SecurityConfig{
		MaxBodySize:    64,
		AllowedMethods: []string{"GET", "POST"},
	}))
	h.GET("/", ok)
	h.POST("/", ok)
	h.DELETE("/", ok)

	assert.Equal(t, http.StatusBadRequest, ut.PerformRequest(h.Engine, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, ut.PerformRequest(h.Engine, http.MethodGet, "/?q=hello", nil, ua).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		ut.PerformRequest(h.Engine, http.MethodGet, "/?q=1+union+select+1", nil, ua).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, ut.PerformRequest(h.Engine, http.MethodDelete, "/", nil, ua).Code)

	big := make([]byte, 128)
	w := ut.PerformRequest(h.Engine, http.MethodPost, "/", &ut.Body{Body: bytes.NewReader(big), Len: len(big)}, ua)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	cfg := config.Default()
	cfg.Env = "production"

	h := server.New()
	h.Use(RecoveryMiddleware(&cfg))
	h.GET("/", func(ctx context.Context, c *app.RequestContext) { panic("boom") })

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":5000,"msg":"internal server error","data":null}`, w.Body.String())
}

func TestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	h := server.New()
	h.Use(TimeoutMiddleware(5))
	var hasDeadline bool
	h.GET("/", func(ctx context.Context, c *app.RequestContext) {
		_, hasDeadline = ctx.Deadline()
		ok(ctx, c)
	})

	ut.PerformRequest(h.Engine, http.MethodGet, "/", nil)
	assert.True(t, hasDeadline)
}
