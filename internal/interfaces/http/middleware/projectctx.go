package middleware

import (
	"github.com/gin-gonic/gin"

	"deepwriting-api/pkg/logger"
)

// ProjectContext 把路径里的项目 ID 注入日志上下文，项目范围内的日志可按 project_id 聚合
func ProjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if pid := c.Param("pid"); pid != "" {
			ctx := logger.WithContext(c.Request.Context(), logger.ProjectIDKey, pid)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
