package dto

import (
	"deepwriting-api/internal/domain/entity"
)

// SaveWorkspaceRequest 保存工作区请求。
// workspace 字段保持原始形状，归一化在服务层完成，
// 任何形状都不会因验证失败被拒绝。
type SaveWorkspaceRequest struct {
	Workspace interface{} `json:"workspace"`
}

// WorkspaceResponse 工作区读取响应
type WorkspaceResponse struct {
	Project   ProjectResponse           `json:"project"`
	Workspace *entity.WorkspaceSnapshot `json:"workspace"`
}

// SaveWorkspaceResponse 保存确认；不回显快照，
// 调用方需重新加载才能看到服务端派生字段
type SaveWorkspaceResponse struct {
	OK bool `json:"ok"`
}
