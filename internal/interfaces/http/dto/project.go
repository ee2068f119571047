package dto

import (
	"time"

	"deepwriting-api/internal/domain/entity"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title string `json:"title"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Title string `json:"title" binding:"required"`
}

// ProjectResponse 项目信息
type ProjectResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	MilestoneTab string    `json:"milestoneTab"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToProjectResponse 实体转响应
func ToProjectResponse(project *entity.Project) ProjectResponse {
	return ProjectResponse{
		ID:           project.ID,
		Title:        project.Title,
		Status:       string(project.Status),
		MilestoneTab: string(project.MilestoneTab),
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}
}

// ToProjectResponses 实体列表转响应
func ToProjectResponses(projects []*entity.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, ToProjectResponse(p))
	}
	return out
}
