package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"deepwriting-api/internal/infrastructure/persistence/postgres"
	"deepwriting-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	pg  *postgres.Client
	rdb *redis.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(pg *postgres.Client, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{pg: pg, rdb: rdb}
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Health 存活探针
// @Summary 进程存活检查
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// Live 存活探针（K8s liveness）
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready 就绪探针，并行探测依赖
// @Summary 依赖就绪检查
// @Description 并行检查 PostgreSQL 与 Redis，任一失败返回 503
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	checks := make(map[string]readinessCheck, 2)
	record := func(name string, err error, latency time.Duration) {
		check := readinessCheck{Status: "ok", LatencyMs: latency.Milliseconds()}
		if err != nil {
			check.Status = "error"
			check.Error = err.Error()
		}
		mu.Lock()
		checks[name] = check
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		err := h.pg.HealthCheck(gctx)
		record("postgres", err, time.Since(start))
		return err
	})
	g.Go(func() error {
		start := time.Now()
		err := h.rdb.HealthCheck(gctx)
		record("redis", err, time.Since(start))
		return err
	})

	if err := g.Wait(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
