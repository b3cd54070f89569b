package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthCheckHandler struct {
	db    *gorm.DB
	redis redis.Cmdable
}

// NewHealthCheckHandler redis 为 nil 时不检查
func NewHealthCheckHandler(db *gorm.DB, rdb redis.Cmdable) *HealthCheckHandler {
	return &HealthCheckHandler{db: db, redis: rdb}
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	IsCore  bool          `json:"is_core"` // 核心组件异常时整体降级
	Latency time.Duration `json:"latency,omitempty"`
	Error   string        `json:"error,omitempty"`
}

var startupTime = time.Now()

// AdvancedHealthCheck 健康检查
// @Summary 健康检查
// @Tags system
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus
// @Router /health [get]
func (h *HealthCheckHandler) AdvancedHealthCheck(ctx context.Context, c *app.RequestContext) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(startupTime).Round(time.Second).String(),
	}
	if h.db != nil {
		status.Components = append(status.Components, h.checkDatabase(ctx))
	}
	if h.redis != nil {
		status.Components = append(status.Components, h.checkRedis(ctx))
	}

	if hasCriticalErrors(status.Components) {
		status.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *HealthCheckHandler) checkDatabase(ctx context.Context) ComponentStatus {
	comp := ComponentStatus{Name: "database", Status: "ok", IsCore: true}
	start := time.Now()
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	comp.Latency = time.Since(start)
	if err != nil {
		comp.Status, comp.Error = "critical", err.Error()
	}
	return comp
}

func (h *HealthCheckHandler) checkRedis(ctx context.Context) ComponentStatus {
	comp := ComponentStatus{Name: "redis", Status: "ok", IsCore: true}
	start := time.Now()
	err := h.redis.Ping(ctx).Err()
	comp.Latency = time.Since(start)
	if err != nil {
		comp.Status, comp.Error = "critical", err.Error()
	}
	return comp
}

func hasCriticalErrors(components []ComponentStatus) bool {
	for _, comp := range components {
		// 核心组件状态异常或任意组件发生严重错误
		if (comp.IsCore && comp.Status != "ok") || comp.Status == "critical" {
			return true
		}
	}
	return false
}
