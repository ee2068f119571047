package handler

import (
	"github.com/gin-gonic/gin"

	"deepwriting-api/internal/application/workspace"
	"deepwriting-api/internal/interfaces/http/dto"
)

// WorkspaceHandler 工作区处理器
type WorkspaceHandler struct {
	svc *workspace.Service
}

// NewWorkspaceHandler 创建工作区处理器
func NewWorkspaceHandler(svc *workspace.Service) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc}
}

// Get 读取工作区快照
// @Summary 读取项目的工作区快照
// @Tags Workspace
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.WorkspaceResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/workspace [get]
func (h *WorkspaceHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	project, snapshot, err := h.svc.GetWorkspace(ctx, c.GetString("user_id"), c.Param("pid"))
	if err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, dto.WorkspaceResponse{
		Project:   dto.ToProjectResponse(project),
		Workspace: snapshot,
	})
}

// Put 保存工作区快照
// @Summary 保存项目的工作区快照，载荷任意形状均被规整后落库
// @Tags Workspace
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.SaveWorkspaceRequest true "工作区数据"
// @Success 200 {object} dto.Response[dto.SaveWorkspaceResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/workspace [put]
func (h *WorkspaceHandler) Put(c *gin.Context) {
	ctx := c.Request.Context()

	// 保存接口对载荷形状完全宽容：解析失败按空载荷处理
	var req dto.SaveWorkspaceRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.svc.SaveWorkspace(ctx, c.GetString("user_id"), c.Param("pid"), req.Workspace); err != nil {
		dto.FromError(c, err)
		return
	}

	dto.Success(c, dto.SaveWorkspaceResponse{OK: true})
}
