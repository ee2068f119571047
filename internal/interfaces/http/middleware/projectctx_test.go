package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"deepwriting-api/pkg/logger"
)

func TestProjectContext_InjectsProjectID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ProjectContext())

	var got any
	r.GET("/projects/:pid/workspace", func(c *gin.Context) {
		got = c.Request.Context().Value(logger.ProjectIDKey)
		c.Status(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/projects/p-1/workspace", nil))
	assert.Equal(t, "p-1", got)
}

func TestProjectContext_NoParamLeavesContextUntouched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ProjectContext())

	var got any
	r.GET("/projects", func(c *gin.Context) {
		got = c.Request.Context().Value(logger.ProjectIDKey)
		c.Status(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/projects", nil))
	assert.Nil(t, got)
}
