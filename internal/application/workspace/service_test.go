package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwriting-api/internal/domain/entity"
	apperrors "deepwriting-api/pkg/errors"
)

type mockProjectRepo struct {
	projects map[string]*entity.Project // key: ownerID + "/" + projectID
	advanced []entity.MilestoneTab
	touched  []string
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: map[string]*entity.Project{}}
}

func (m *mockProjectRepo) add(ownerID string, p *entity.Project) {
	p.UserID = ownerID
	m.projects[ownerID+"/"+p.ID] = p
}

func (m *mockProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	project.ID = "generated-id"
	m.projects[project.UserID+"/"+project.ID] = project
	return nil
}

func (m *mockProjectRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Project, error) {
	var out []*entity.Project
	for _, p := range m.projects {
		if p.UserID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProjectRepo) GetOwned(ctx context.Context, ownerID, projectID string) (*entity.Project, error) {
	if p, ok := m.projects[ownerID+"/"+projectID]; ok {
		return p, nil
	}
	return nil, apperrors.ErrProjectNotFound
}

func (m *mockProjectRepo) UpdateTitle(ctx context.Context, ownerID, projectID, title string) error {
	p, ok := m.projects[ownerID+"/"+projectID]
	if !ok {
		return apperrors.ErrProjectNotFound
	}
	p.Title = title
	return nil
}

func (m *mockProjectRepo) Touch(ctx context.Context, projectID string) error {
	m.touched = append(m.touched, projectID)
	return nil
}

func (m *mockProjectRepo) AdvanceMilestone(ctx context.Context, projectID string, target entity.MilestoneTab) error {
	m.advanced = append(m.advanced, target)
	return nil
}

type mockWorkspaceRepo struct {
	saved   map[string]*entity.WorkspaceSnapshot
	loadFn  func(projectID string) (*entity.WorkspaceSnapshot, error)
	saveErr error
}

func newMockWorkspaceRepo() *mockWorkspaceRepo {
	return &mockWorkspaceRepo{saved: map[string]*entity.WorkspaceSnapshot{}}
}

func (m *mockWorkspaceRepo) Load(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error) {
	if m.loadFn != nil {
		return m.loadFn(projectID)
	}
	if s, ok := m.saved[projectID]; ok {
		return s.Clone(), nil
	}
	return entity.DefaultSnapshot(), nil
}

func (m *mockWorkspaceRepo) Save(ctx context.Context, projectID string, snapshot *entity.WorkspaceSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[projectID] = snapshot.Clone()
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestService_OwnershipIsolation(t *testing.T) {
	projects := newMockProjectRepo()
	projects.add("user-a", &entity.Project{ID: "p1", Title: "甲的项目"})

	workspaces := newMockWorkspaceRepo()
	workspaces.loadFn = func(projectID string) (*entity.WorkspaceSnapshot, error) {
		t.Fatal("load must not be reached for a non-owner")
		return nil, nil
	}
	svc := NewService(projects, workspaces, passthroughTx{})

	_, _, err := svc.GetWorkspace(context.Background(), "user-b", "p1")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeProjectNotFound, apperrors.AsAppError(err).Code)

	err = svc.SaveWorkspace(context.Background(), "user-b", "p1", map[string]interface{}{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeProjectNotFound, apperrors.AsAppError(err).Code)

	_, err = svc.RenameProject(context.Background(), "user-b", "p1", "改名")
	require.Error(t, err)
}

func TestService_SaveNormalizesBeforePersist(t *testing.T) {
	projects := newMockProjectRepo()
	projects.add("user-a", &entity.Project{ID: "p1"})
	workspaces := newMockWorkspaceRepo()
	svc := NewService(projects, workspaces, passthroughTx{})

	raw := map[string]interface{}{
		"materials": []interface{}{
			map[string]interface{}{"name": "A", "content": "x", "importance": float64(9)},
		},
		"titles": []interface{}{
			map[string]interface{}{"id": "t1", "title": "Foo"},
			map[string]interface{}{"id": "t2", "title": ""},
		},
		"selectedTitleId": "t2",
		"content":         "正文",
	}

	require.NoError(t, svc.SaveWorkspace(context.Background(), "user-a", "p1", raw))

	saved := workspaces.saved["p1"]
	require.NotNil(t, saved)
	require.Len(t, saved.Materials, 1)
	assert.Equal(t, 5, saved.Materials[0].Importance)
	assert.Equal(t, "A", saved.Materials[0].Name)
	require.Len(t, saved.Titles, 1)
	assert.Equal(t, "t1", saved.Titles[0].ID)
	assert.Nil(t, saved.SelectedTitleID)

	// 里程碑在保存事务里按归一化结果推进，时间戳同步刷新
	require.Len(t, projects.advanced, 1)
	assert.Equal(t, entity.MilestoneContent, projects.advanced[0])
	assert.Equal(t, []string{"p1"}, projects.touched)
}

func TestService_SaveFailurePropagates(t *testing.T) {
	projects := newMockProjectRepo()
	projects.add("user-a", &entity.Project{ID: "p1"})
	workspaces := newMockWorkspaceRepo()
	workspaces.saveErr = errors.New("deadlock detected")
	svc := NewService(projects, workspaces, passthroughTx{})

	err := svc.SaveWorkspace(context.Background(), "user-a", "p1", nil)
	require.Error(t, err)
	// 事务失败后不推进里程碑状态之外的任何可见副作用
	assert.Empty(t, workspaces.saved)
}

func TestService_CreateProjectDefaultsTitle(t *testing.T) {
	projects := newMockProjectRepo()
	svc := NewService(projects, newMockWorkspaceRepo(), passthroughTx{})

	project, err := svc.CreateProject(context.Background(), "user-a", "")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultProjectTitle, project.Title)
	assert.Equal(t, entity.ProjectStatusDraft, project.Status)
}
