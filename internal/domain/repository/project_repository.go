package repository

import (
	"context"

	"deepwriting-api/internal/domain/entity"
)

// ProjectRepository 项目仓储接口
//
// 所有按 ID 的读写都带上 ownerID 谓词：项目不存在与项目属于他人
// 返回同一个 ErrProjectNotFound，调用方无法区分。
type ProjectRepository interface {
	// Create 创建项目
	Create(ctx context.Context, project *entity.Project) error
	// ListByOwner 按更新时间倒序列出用户的全部项目
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Project, error)
	// GetOwned 查询用户拥有的项目
	GetOwned(ctx context.Context, ownerID, projectID string) (*entity.Project, error)
	// UpdateTitle 重命名用户拥有的项目
	UpdateTitle(ctx context.Context, ownerID, projectID, title string) error
	// Touch 刷新项目的 updated_at
	Touch(ctx context.Context, projectID string) error
	// AdvanceMilestone 单调推进项目里程碑，目标早于当前时不变
	AdvanceMilestone(ctx context.Context, projectID string, target entity.MilestoneTab) error
}
