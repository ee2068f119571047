package repository

import (
	"context"

	"deepwriting-api/internal/domain/entity"
)

// WorkspaceRepository 工作区仓储接口
//
// Load 把分散在多张表里的工作区数据拼装成一个快照；
// Save 在单个事务里整体落库。两者都只操作调用方已经
// 通过 ProjectRepository 验证过归属的项目。
type WorkspaceRepository interface {
	// Load 读取项目工作区；各部分缺失时返回带默认值的快照
	Load(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error)
	// Save 全量保存工作区：素材与候选标题整体替换，
	// 风格、要求、大纲、正文按项目 upsert
	Save(ctx context.Context, projectID string, snapshot *entity.WorkspaceSnapshot) error
}
