package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"deepwriting-api/internal/domain/entity"
	apperrors "deepwriting-api/pkg/errors"
)

// ProjectRepository 项目仓储实现
//
// 按 ID 的语句一律带 user_id 谓词：查不到行时不区分
// “项目不存在”和“项目属于他人”，统一返回 ErrProjectNotFound。
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		INSERT INTO projects (id, user_id, title, status, milestone_tab, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		project.UserID, project.Title, project.Status, project.MilestoneTab,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// ListByOwner 按更新时间倒序列出用户的全部项目
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.ListByOwner")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, user_id, title, status, milestone_tab, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := q.QueryContext(ctx, query, ownerID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*entity.Project, 0)
	for rows.Next() {
		var project entity.Project
		if err := rows.Scan(
			&project.ID, &project.UserID, &project.Title, &project.Status,
			&project.MilestoneTab, &project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &project)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// GetOwned 查询用户拥有的项目
func (r *ProjectRepository) GetOwned(ctx context.Context, ownerID, projectID string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetOwned")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, user_id, title, status, milestone_tab, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`

	var project entity.Project
	err := q.QueryRowContext(ctx, query, projectID, ownerID).Scan(
		&project.ID, &project.UserID, &project.Title, &project.Status,
		&project.MilestoneTab, &project.CreatedAt, &project.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrProjectNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// UpdateTitle 重命名用户拥有的项目
func (r *ProjectRepository) UpdateTitle(ctx context.Context, ownerID, projectID, title string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.UpdateTitle")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		UPDATE projects
		SET title = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`

	result, err := q.ExecContext(ctx, query, title, projectID, ownerID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update project title: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrProjectNotFound
	}

	return nil
}

// Touch 刷新项目的 updated_at
func (r *ProjectRepository) Touch(ctx context.Context, projectID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Touch")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `UPDATE projects SET updated_at = NOW() WHERE id = $1`
	if _, err := q.ExecContext(ctx, query, projectID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to touch project: %w", err)
	}

	return nil
}

// AdvanceMilestone 单调推进项目里程碑，只会向后不会向前
func (r *ProjectRepository) AdvanceMilestone(ctx context.Context, projectID string, target entity.MilestoneTab) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.AdvanceMilestone")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `SELECT milestone_tab FROM projects WHERE id = $1 FOR UPDATE`
	var current string
	if err := q.QueryRowContext(ctx, query, projectID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrProjectNotFound
		}
		span.RecordError(err)
		return fmt.Errorf("failed to read milestone: %w", err)
	}

	currentTab, ok := entity.ParseMilestoneTab(current)
	if !ok {
		currentTab = entity.MilestoneMaterials
	}
	next := entity.AdvanceMilestone(currentTab, target)
	if next == currentTab && ok {
		return nil
	}

	update := `UPDATE projects SET milestone_tab = $1 WHERE id = $2`
	if _, err := q.ExecContext(ctx, update, next, projectID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to advance milestone: %w", err)
	}

	return nil
}
