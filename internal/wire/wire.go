// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"deepwriting-api/internal/application/workspace"
	"deepwriting-api/internal/application/writer"
	"deepwriting-api/internal/config"
	"deepwriting-api/internal/infrastructure/llm"
	"deepwriting-api/internal/infrastructure/persistence/postgres"
	"deepwriting-api/internal/infrastructure/persistence/redis"
	"deepwriting-api/internal/interfaces/http/handler"
	"deepwriting-api/internal/interfaces/http/router"
	"deepwriting-api/pkg/logger"
)

// InitializeApp 组装整个应用，返回路由器与资源清理函数
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		pgClient.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn(ctx, "redis close failed", "error", err.Error())
		}
		if err := pgClient.Close(); err != nil {
			logger.Warn(ctx, "postgres close failed", "error", err.Error())
		}
	}

	// 数据层
	txManager := postgres.NewTxManager(pgClient)
	projectRepo := postgres.NewProjectRepository(pgClient)
	workspaceRepo := postgres.NewWorkspaceRepository(pgClient)
	userRepo := postgres.NewUserRepository(pgClient)
	rateLimiter := redis.NewRateLimiter(redisClient)

	// 应用层
	workspaceSvc := workspace.NewService(projectRepo, workspaceRepo, txManager)
	generator := writer.NewGenerator(llm.NewEinoFactory(cfg))

	// 接口层
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg.Security.JWT, userRepo),
		Project:   handler.NewProjectHandler(workspaceSvc),
		Workspace: handler.NewWorkspaceHandler(workspaceSvc),
		Generate:  handler.NewGenerateHandler(generator),
		Health:    handler.NewHealthHandler(pgClient, redisClient),
	}

	return router.New(cfg, handlers, rateLimiter), cleanup, nil
}
