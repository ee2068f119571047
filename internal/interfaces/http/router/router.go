// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"deepwriting-api/internal/config"
	"deepwriting-api/internal/interfaces/http/handler"
	"deepwriting-api/internal/interfaces/http/middleware"
)

// Handlers 路由所需的全部处理器
type Handlers struct {
	Auth      *handler.AuthHandler
	Project   *handler.ProjectHandler
	Workspace *handler.WorkspaceHandler
	Generate  *handler.GenerateHandler
	Health    *handler.HealthHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.Auth(middleware.AuthConfig{
		Secret:  r.cfg.Security.JWT.Secret,
		Issuer:  r.cfg.Security.JWT.Issuer,
		Enabled: true,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/live",
			r.metricsPath(),
			"/v1/auth/register",
			"/v1/auth/login",
			"/v1/auth/refresh",
		},
	}))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.handlers.Auth.Register)
			auth.POST("/login", r.handlers.Auth.Login)
			auth.POST("/refresh", r.handlers.Auth.Refresh)
			auth.POST("/logout", r.handlers.Auth.Logout)
		}

		v1.GET("/users/me", r.handlers.Auth.Me)

		projects := v1.Group("/projects")
		projects.Use(middleware.ProjectContext())
		{
			projects.GET("", r.handlers.Project.List)
			projects.POST("", r.handlers.Project.Create)
			projects.PATCH("/:pid", r.handlers.Project.Update)
			projects.GET("/:pid/workspace", r.handlers.Workspace.Get)
			projects.PUT("/:pid/workspace", r.handlers.Workspace.Put)
		}

		// AI 生成端点挂按用户限流
		ai := v1.Group("/ai")
		ai.Use(middleware.RateLimit(r.cfg.Security.RateLimit, r.limiter))
		{
			ai.POST("/outline", r.handlers.Generate.Outline)
			ai.POST("/content", r.handlers.Generate.Content)
			ai.POST("/title", r.handlers.Generate.Titles)
		}
	}
}

func (r *Router) metricsPath() string {
	if r.cfg.Observability.Metrics.Path != "" {
		return r.cfg.Observability.Metrics.Path
	}
	return "/metrics"
}
