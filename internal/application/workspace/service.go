package workspace

import (
	"context"
	"time"

	"deepwriting-api/internal/domain/entity"
	"deepwriting-api/internal/domain/repository"
	"deepwriting-api/pkg/logger"
	"deepwriting-api/pkg/metrics"
)

// Service 项目与工作区的服务端用例
//
// 所有按项目的操作先过归属校验：项目不存在和项目属于他人
// 对调用方都是 not found，不泄露项目是否存在。
type Service struct {
	projects   repository.ProjectRepository
	workspaces repository.WorkspaceRepository
	tx         repository.Transactor
}

// NewService 创建工作区服务
func NewService(projects repository.ProjectRepository, workspaces repository.WorkspaceRepository, tx repository.Transactor) *Service {
	return &Service{
		projects:   projects,
		workspaces: workspaces,
		tx:         tx,
	}
}

// CreateProject 创建项目，标题为空时使用缺省标题
func (s *Service) CreateProject(ctx context.Context, userID, title string) (*entity.Project, error) {
	project := entity.NewProject(userID, title)
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	logger.Info(ctx, "项目已创建", "project_id", project.ID, "user_id", userID)
	return project, nil
}

// ListProjects 列出用户的全部项目
func (s *Service) ListProjects(ctx context.Context, userID string) ([]*entity.Project, error) {
	return s.projects.ListByOwner(ctx, userID)
}

// RenameProject 重命名项目
func (s *Service) RenameProject(ctx context.Context, userID, projectID, title string) (*entity.Project, error) {
	if err := s.projects.UpdateTitle(ctx, userID, projectID, title); err != nil {
		return nil, err
	}
	return s.projects.GetOwned(ctx, userID, projectID)
}

// GetWorkspace 加载项目及其完整工作区快照
func (s *Service) GetWorkspace(ctx context.Context, userID, projectID string) (*entity.Project, *entity.WorkspaceSnapshot, error) {
	project, err := s.projects.GetOwned(ctx, userID, projectID)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := s.workspaces.Load(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	return project, snapshot, nil
}

// SaveWorkspace 归一化任意形状的文档并整体落库。
// 归一化从不失败，已认证且归属通过后不会因文档形状拒绝保存。
// 落库、里程碑推进和项目时间戳刷新在同一个事务里完成。
func (s *Service) SaveWorkspace(ctx context.Context, userID, projectID string, raw interface{}) error {
	if _, err := s.projects.GetOwned(ctx, userID, projectID); err != nil {
		return err
	}

	snapshot := Normalize(raw)

	start := time.Now()
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.workspaces.Save(txCtx, projectID, snapshot); err != nil {
			return err
		}
		if err := s.projects.AdvanceMilestone(txCtx, projectID, snapshot.MilestoneTab); err != nil {
			return err
		}
		return s.projects.Touch(txCtx, projectID)
	})
	metrics.WorkspaceSaveDuration.WithLabelValues().Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.WorkspaceSavesTotal.WithLabelValues("error").Inc()
		logger.Error(ctx, "工作区保存失败", err, "project_id", projectID)
		return err
	}

	metrics.WorkspaceSavesTotal.WithLabelValues("ok").Inc()
	return nil
}
