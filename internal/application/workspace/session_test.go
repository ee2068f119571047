package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwriting-api/internal/domain/entity"
)

type stubStore struct {
	mu     sync.Mutex
	loadFn func(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error)
	saveFn func(ctx context.Context, projectID string, snapshot *entity.WorkspaceSnapshot) error
	saves  []string
}

func (s *stubStore) Load(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error) {
	if s.loadFn != nil {
		return s.loadFn(ctx, projectID)
	}
	return entity.DefaultSnapshot(), nil
}

func (s *stubStore) Save(ctx context.Context, projectID string, snapshot *entity.WorkspaceSnapshot) error {
	s.mu.Lock()
	s.saves = append(s.saves, projectID)
	s.mu.Unlock()
	if s.saveFn != nil {
		return s.saveFn(ctx, projectID, snapshot)
	}
	return nil
}

func (s *stubStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func waitForState(t *testing.T, session *Session, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return session.State() == want
	}, time.Second, 5*time.Millisecond)
}

func TestSession_LoadMakesReady(t *testing.T) {
	store := &stubStore{
		loadFn: func(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error) {
			snapshot := entity.DefaultSnapshot()
			snapshot.Outline = "## 提纲"
			return snapshot, nil
		},
	}
	session := NewSession(store, time.Hour)
	defer session.Close()

	session.Select(context.Background(), "p1")
	waitForState(t, session, StateReady)

	assert.False(t, session.Dirty())
	assert.Equal(t, "p1", session.ProjectID())
	assert.Equal(t, "## 提纲", session.Snapshot().Outline)
}

func TestSession_UpdateBeforeReadyRejected(t *testing.T) {
	blocked := make(chan struct{})
	store := &stubStore{
		loadFn: func(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error) {
			<-blocked
			return entity.DefaultSnapshot(), nil
		},
	}
	session := NewSession(store, time.Hour)
	defer session.Close()

	session.Select(context.Background(), "p1")

	applied := session.Update(func(s *entity.WorkspaceSnapshot) { s.Content = "编辑" })
	assert.False(t, applied)

	close(blocked)
	waitForState(t, session, StateReady)
	assert.Empty(t, session.Snapshot().Content)
}

func TestSession_UpdateMarksDirtyAndBumpsRevision(t *testing.T) {
	session := NewSession(&stubStore{}, time.Hour)
	defer session.Close()
	session.Select(context.Background(), "p1")
	waitForState(t, session, StateReady)

	require.True(t, session.Update(func(s *entity.WorkspaceSnapshot) { s.Content = "a" }))
	require.True(t, session.Update(func(s *entity.WorkspaceSnapshot) { s.Content = "ab" }))

	assert.True(t, session.Dirty())
	assert.Equal(t, uint64(2), session.Revision())
	assert.Equal(t, "ab", session.Snapshot().Content)
}

func TestSession_DebouncedSave(t *testing.T) {
	store := &stubStore{}
	session := NewSession(store, 20*time.Millisecond)
	defer session.Close()
	session.Select(context.Background(), "p1")
	waitForState(t, session, StateReady)

	session.Update(func(s *entity.WorkspaceSnapshot) { s.Content = "a" })
	session.Update(func(s *entity.WorkspaceSnapshot) { s.Content = "ab" })

	require.Eventually(t, func() bool {
		return !session.Dirty() && session.State() == StateReady
	}, time.Second, 5*time.Millisecond)

	// 静默窗口内的两次编辑合并成一次保存
	assert.Equal(t, 1, store.saveCount())
}

func TestSession_SaveFailureLeavesDirty(t *testing.T) {
	store := &stubStore{
		saveFn: func(ctx context.Context, projectID string, snapshot *entity.WorkspaceSnapshot) error {
			return errors.New("connection reset")
		},
	}
	session := NewSession(store, time.Hour)
	defer session.Close()
	session.Select(context.Background(), "p1")
	waitForState(t, session, StateReady)

	session.Update(func(s *entity.WorkspaceSnapshot) { s.Content = "a" })
	err := session.Flush(context.Background())

	require.Error(t, err)
	assert.True(t, session.Dirty())
	assert.Equal(t, StateReady, session.State())
}

func TestSession_EditDuringSaveStaysDirty(t *testing.T) {
	saving := make(chan struct{})
	release := make(chan struct{})
	store := &stubStore{
		saveFn: func(ctx context.Context, projectID string, snapshot *entity.WorkspaceSnapshot) error {
			close(saving)
			<-release
			return nil
		},
	}
	session := NewSession(store, time.Hour)
	defer session.Close()
	session.Select(context.Background(), "p1")
	waitForState(t, session, StateReady)

	session.Update(func(s *entity.WorkspaceSnapshot) { s.Content = "a" })

	done := make(chan error, 1)
	go func() { done <- session.Flush(context.Background()) }()

	<-saving
	// 保存在途期间的新编辑不被丢弃
	require.True(t, session.Update(func(s *entity.WorkspaceSnapshot) { s.Content = "ab" }))
	close(release)
	require.NoError(t, <-done)

	assert.True(t, session.Dirty())
	assert.Equal(t, "ab", session.Snapshot().Content)
}

func TestSession_SwitchAwayDiscardsStaleLoad(t *testing.T) {
	p1Release := make(chan struct{})
	store := &stubStore{
		loadFn: func(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error) {
			snapshot := entity.DefaultSnapshot()
			snapshot.Content = "content of " + projectID
			if projectID == "p1" {
				<-p1Release
			}
			return snapshot, nil
		},
	}
	session := NewSession(store, time.Hour)
	defer session.Close()

	session.Select(context.Background(), "p1")
	session.Select(context.Background(), "p2")
	waitForState(t, session, StateReady)
	require.Equal(t, "content of p2", session.Snapshot().Content)

	// p1 的加载此刻才返回，结果必须被丢弃
	close(p1Release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, "p2", session.ProjectID())
	assert.Equal(t, "content of p2", session.Snapshot().Content)
}

func TestSession_SwitchAwayDiscardsStaleSave(t *testing.T) {
	saving := make(chan struct{})
	release := make(chan struct{})
	store := &stubStore{
		saveFn: func(ctx context.Context, projectID string, snapshot *entity.WorkspaceSnapshot) error {
			close(saving)
			<-release
			return errors.New("timeout")
		},
		loadFn: func(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error) {
			snapshot := entity.DefaultSnapshot()
			snapshot.Content = "content of " + projectID
			return snapshot, nil
		},
	}
	session := NewSession(store, time.Hour)
	defer session.Close()
	session.Select(context.Background(), "p1")
	waitForState(t, session, StateReady)

	session.Update(func(s *entity.WorkspaceSnapshot) { s.Content = "本地编辑" })
	go func() { _ = session.Flush(context.Background()) }()
	<-saving

	session.Select(context.Background(), "p2")
	waitForState(t, session, StateReady)

	// p1 的保存失败返回，不能污染 p2 的状态
	close(release)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, StateReady, session.State())
	assert.False(t, session.Dirty())
	assert.Equal(t, "content of p2", session.Snapshot().Content)
}
