package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"deepwriting-api/internal/domain/entity"
	apperrors "deepwriting-api/pkg/errors"
)

// WorkspaceRepository 工作区仓储实现
//
// 一个快照分散在 materials、styles、requirements、outlines、
// contents、title_options 六张表里。Save 设计为在调用方开启的
// 事务里执行：素材和候选标题整体替换，其余各表按项目 upsert，
// 任何一步失败整个事务回滚，不会出现半套数据。
type WorkspaceRepository struct {
	client *Client
}

// NewWorkspaceRepository 创建工作区仓储
func NewWorkspaceRepository(client *Client) *WorkspaceRepository {
	return &WorkspaceRepository{client: client}
}

// Load 读取项目工作区并重建快照
func (r *WorkspaceRepository) Load(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error) {
	ctx, span := tracer.Start(ctx, "postgres.workspace.load",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)
	snapshot := entity.DefaultSnapshot()

	var milestoneRaw string
	err := q.QueryRowContext(ctx, `SELECT milestone_tab FROM projects WHERE id = $1`, projectID).
		Scan(&milestoneRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrProjectNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load project milestone: %w", err)
	}

	if err := r.loadMaterials(ctx, q, projectID, snapshot); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := r.loadStyle(ctx, q, projectID, snapshot); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := r.loadRequirements(ctx, q, projectID, snapshot); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := r.loadOutline(ctx, q, projectID, snapshot); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := r.loadContent(ctx, q, projectID, snapshot); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := r.loadTitles(ctx, q, projectID, snapshot); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 里程碑列为空说明是显式里程碑之前保存的数据，按内容推断
	if tab, ok := entity.ParseMilestoneTab(milestoneRaw); ok {
		snapshot.MilestoneTab = tab
	} else {
		snapshot.MilestoneTab = entity.InferMilestone(snapshot.Outline, snapshot.Content)
	}

	return snapshot, nil
}

func (r *WorkspaceRepository) loadMaterials(ctx context.Context, q Querier, projectID string, snapshot *entity.WorkspaceSnapshot) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, type, name, content, importance
		FROM materials
		WHERE project_id = $1
		ORDER BY position ASC, created_at ASC
	`, projectID)
	if err != nil {
		return fmt.Errorf("failed to load materials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(&m.ID, &m.Type, &m.Name, &m.Content, &m.Importance); err != nil {
			return fmt.Errorf("failed to scan material: %w", err)
		}
		snapshot.Materials = append(snapshot.Materials, m)
	}
	return rows.Err()
}

func (r *WorkspaceRepository) loadStyle(ctx context.Context, q Querier, projectID string, snapshot *entity.WorkspaceSnapshot) error {
	var preset sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT selected_preset, custom_style_text, emotion_level, professional_level, colloquial_level
		FROM styles
		WHERE project_id = $1
	`, projectID).Scan(
		&preset, &snapshot.Style.CustomStyleText,
		&snapshot.Style.EmotionLevel, &snapshot.Style.ProfessionalLevel, &snapshot.Style.ColloquialLevel,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load style: %w", err)
	}
	if preset.Valid && preset.String != "" {
		snapshot.Style.SelectedPreset = &preset.String
	}
	return nil
}

func (r *WorkspaceRepository) loadRequirements(ctx context.Context, q Querier, projectID string, snapshot *entity.WorkspaceSnapshot) error {
	err := q.QueryRowContext(ctx, `
		SELECT target_word_count, audience, purpose, custom_requirement
		FROM requirements
		WHERE project_id = $1
	`, projectID).Scan(
		&snapshot.Requirements.TargetWordCount, &snapshot.Requirements.Audience,
		&snapshot.Requirements.Purpose, &snapshot.Requirements.CustomRequirement,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load requirements: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) loadOutline(ctx context.Context, q Querier, projectID string, snapshot *entity.WorkspaceSnapshot) error {
	err := q.QueryRowContext(ctx, `SELECT content FROM outlines WHERE project_id = $1`, projectID).
		Scan(&snapshot.Outline)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load outline: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) loadContent(ctx context.Context, q Querier, projectID string, snapshot *entity.WorkspaceSnapshot) error {
	var generatedAt sql.NullTime
	err := q.QueryRowContext(ctx, `
		SELECT body, word_count, generated_at
		FROM contents
		WHERE project_id = $1
	`, projectID).Scan(&snapshot.Content, &snapshot.WordCount, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	if generatedAt.Valid {
		snapshot.GeneratedAt = &generatedAt.Time
	}
	return nil
}

func (r *WorkspaceRepository) loadTitles(ctx context.Context, q Querier, projectID string, snapshot *entity.WorkspaceSnapshot) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, title, category, score, is_selected
		FROM title_options
		WHERE project_id = $1
		ORDER BY position ASC, created_at ASC
	`, projectID)
	if err != nil {
		return fmt.Errorf("failed to load title options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t entity.TitleOption
		var selected bool
		if err := rows.Scan(&t.ID, &t.Title, &t.Category, &t.Score, &selected); err != nil {
			return fmt.Errorf("failed to scan title option: %w", err)
		}
		snapshot.Titles = append(snapshot.Titles, t)
		// 容忍没有任何 is_selected 行；多行时取第一行
		if selected && snapshot.SelectedTitleID == nil {
			id := t.ID
			snapshot.SelectedTitleID = &id
		}
	}
	return rows.Err()
}

// Save 全量保存工作区。应在事务上下文中调用，保证整体原子性。
func (r *WorkspaceRepository) Save(ctx context.Context, projectID string, snapshot *entity.WorkspaceSnapshot) error {
	ctx, span := tracer.Start(ctx, "postgres.workspace.save",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	if err := r.replaceMaterials(ctx, q, projectID, snapshot.Materials); err != nil {
		span.RecordError(err)
		return err
	}
	if err := r.upsertStyle(ctx, q, projectID, snapshot.Style); err != nil {
		span.RecordError(err)
		return err
	}
	if err := r.upsertRequirements(ctx, q, projectID, snapshot.Requirements); err != nil {
		span.RecordError(err)
		return err
	}
	if err := r.upsertOutline(ctx, q, projectID, snapshot.Outline); err != nil {
		span.RecordError(err)
		return err
	}
	if err := r.upsertContent(ctx, q, projectID, snapshot.Content); err != nil {
		span.RecordError(err)
		return err
	}
	if err := r.replaceTitles(ctx, q, projectID, snapshot.Titles, snapshot.SelectedTitleID); err != nil {
		span.RecordError(err)
		return err
	}

	return nil
}

// replaceMaterials 整体替换素材；行 ID 由数据库重新生成
func (r *WorkspaceRepository) replaceMaterials(ctx context.Context, q Querier, projectID string, materials []entity.Material) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM materials WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear materials: %w", err)
	}

	insert := `
		INSERT INTO materials (id, project_id, type, name, content, importance, position, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, NOW())
	`
	for i, m := range materials {
		if _, err := q.ExecContext(ctx, insert, projectID, m.Type, m.Name, m.Content, m.Importance, i); err != nil {
			return fmt.Errorf("failed to insert material: %w", err)
		}
	}
	return nil
}

func (r *WorkspaceRepository) upsertStyle(ctx context.Context, q Querier, projectID string, style entity.StyleSettings) error {
	var preset sql.NullString
	if style.SelectedPreset != nil {
		preset = sql.NullString{String: *style.SelectedPreset, Valid: true}
	}

	query := `
		INSERT INTO styles (project_id, selected_preset, custom_style_text, emotion_level, professional_level, colloquial_level, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (project_id) DO UPDATE SET
			selected_preset = EXCLUDED.selected_preset,
			custom_style_text = EXCLUDED.custom_style_text,
			emotion_level = EXCLUDED.emotion_level,
			professional_level = EXCLUDED.professional_level,
			colloquial_level = EXCLUDED.colloquial_level,
			updated_at = NOW()
	`
	if _, err := q.ExecContext(ctx, query, projectID, preset, style.CustomStyleText,
		style.EmotionLevel, style.ProfessionalLevel, style.ColloquialLevel); err != nil {
		return fmt.Errorf("failed to upsert style: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) upsertRequirements(ctx context.Context, q Querier, projectID string, req entity.Requirements) error {
	query := `
		INSERT INTO requirements (project_id, target_word_count, audience, purpose, custom_requirement, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (project_id) DO UPDATE SET
			target_word_count = EXCLUDED.target_word_count,
			audience = EXCLUDED.audience,
			purpose = EXCLUDED.purpose,
			custom_requirement = EXCLUDED.custom_requirement,
			updated_at = NOW()
	`
	if _, err := q.ExecContext(ctx, query, projectID, req.TargetWordCount, req.Audience,
		req.Purpose, req.CustomRequirement); err != nil {
		return fmt.Errorf("failed to upsert requirements: %w", err)
	}
	return nil
}

func (r *WorkspaceRepository) upsertOutline(ctx context.Context, q Querier, projectID, outline string) error {
	query := `
		INSERT INTO outlines (project_id, content, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (project_id) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = NOW()
	`
	if _, err := q.ExecContext(ctx, query, projectID, outline); err != nil {
		return fmt.Errorf("failed to upsert outline: %w", err)
	}
	return nil
}

// upsertContent 字数由服务端重算，不信任客户端；
// generated_at 仅在正文非空时盖章
func (r *WorkspaceRepository) upsertContent(ctx context.Context, q Querier, projectID, body string) error {
	wordCount := entity.CountWords(body)
	var generatedAt sql.NullTime
	if body != "" {
		generatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	query := `
		INSERT INTO contents (project_id, body, word_count, generated_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (project_id) DO UPDATE SET
			body = EXCLUDED.body,
			word_count = EXCLUDED.word_count,
			generated_at = EXCLUDED.generated_at,
			updated_at = NOW()
	`
	if _, err := q.ExecContext(ctx, query, projectID, body, wordCount, generatedAt); err != nil {
		return fmt.Errorf("failed to upsert content: %w", err)
	}
	return nil
}

// replaceTitles 整体替换候选标题，is_selected 按本次快照的
// selectedTitleId 重算，不沿用旧状态
func (r *WorkspaceRepository) replaceTitles(ctx context.Context, q Querier, projectID string, titles []entity.TitleOption, selectedID *string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM title_options WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear title options: %w", err)
	}

	insert := `
		INSERT INTO title_options (id, project_id, title, category, score, is_selected, position, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, NOW())
	`
	for i, t := range titles {
		selected := selectedID != nil && t.ID == *selectedID
		if _, err := q.ExecContext(ctx, insert, projectID, t.Title, t.Category, t.Score, selected, i); err != nil {
			return fmt.Errorf("failed to insert title option: %w", err)
		}
	}
	return nil
}
