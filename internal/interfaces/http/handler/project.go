package handler

import (
	"github.com/gin-gonic/gin"

	"deepwriting-api/internal/application/workspace"
	"deepwriting-api/internal/interfaces/http/dto"
	"deepwriting-api/pkg/logger"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc *workspace.Service
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *workspace.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List 项目列表
// @Summary 列出当前用户的全部项目
// @Tags Project
// @Produce json
// @Success 200 {object} dto.Response[[]dto.ProjectResponse]
// @Router /v1/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	projects, err := h.svc.ListProjects(ctx, c.GetString("user_id"))
	if err != nil {
		logger.Error(ctx, "项目列表查询失败", err)
		dto.InternalError(c, "failed to list projects")
		return
	}

	out := make([]dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, dto.ToProjectResponse(p))
	}
	dto.Success(c, out)
}

// Create 创建项目
// @Summary 创建新项目，标题缺省为未命名项目
// @Tags Project
// @Accept json
// @Produce json
// @Param body body dto.CreateProjectRequest true "项目信息"
// @Success 201 {object} dto.Response[dto.ProjectResponse]
// @Router /v1/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.svc.CreateProject(ctx, c.GetString("user_id"), req.Title)
	if err != nil {
		logger.Error(ctx, "项目创建失败", err)
		dto.InternalError(c, "failed to create project")
		return
	}

	dto.Created(c, dto.ToProjectResponse(project))
}

// Update 重命名项目
// @Summary 修改项目标题
// @Tags Project
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.UpdateProjectRequest true "新标题"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.svc.RenameProject(ctx, c.GetString("user_id"), c.Param("pid"), req.Title)
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, dto.ToProjectResponse(project))
}
