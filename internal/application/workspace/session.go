package workspace

import (
	"context"
	"sync"
	"time"

	"deepwriting-api/internal/domain/entity"
	"deepwriting-api/pkg/logger"
)

// Store 会话使用的工作区读写端
type Store interface {
	Load(ctx context.Context, projectID string) (*entity.WorkspaceSnapshot, error)
	Save(ctx context.Context, projectID string, snapshot *entity.WorkspaceSnapshot) error
}

// State 会话状态
type State int

const (
	// StateIdle 未选中项目
	StateIdle State = iota
	// StateLoading 正在加载选中项目的快照
	StateLoading
	// StateReady 快照就绪，可读可改
	StateReady
	// StateSaving 保存请求在途
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// DefaultDebounce 编辑静默窗口，窗口内无新编辑才触发保存
const DefaultDebounce = 800 * time.Millisecond

// Session 镜像单个项目工作区的内存缓存，负责脏标记、去抖保存
// 以及快速切换项目时的加载/保存竞态防护。
//
// 同一会话内的加载和保存由状态机串行化：Loading 期间不发起保存，
// 网络调用返回时如果选中的项目已经变了，结果直接丢弃，绝不覆盖
// 另一个项目的状态。保存失败时快照保持脏，靠下一次编辑触发的
// 去抖重试。
type Session struct {
	store    Store
	debounce time.Duration

	mu        sync.Mutex
	state     State
	projectID string
	snapshot  *entity.WorkspaceSnapshot
	dirty     bool
	// revision 每次编辑单调递增，用于判定在途保存落地时
	// 是否又有新编辑进来
	revision uint64
	timer    *time.Timer
	ctx      context.Context
}

// NewSession 创建工作区会话
func NewSession(store Store, debounce time.Duration) *Session {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Session{
		store:    store,
		debounce: debounce,
		state:    StateIdle,
		ctx:      context.Background(),
	}
}

// Select 切换到指定项目并发起加载。之前项目的在途调用不会被
// 打断，但其结果会因项目不匹配而被丢弃。
func (s *Session) Select(ctx context.Context, projectID string) {
	s.mu.Lock()
	if s.projectID == projectID && s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.ctx = ctx
	s.projectID = projectID
	s.snapshot = nil
	s.dirty = false
	s.state = StateLoading
	s.mu.Unlock()

	go s.runLoad(ctx, projectID)
}

func (s *Session) runLoad(ctx context.Context, projectID string) {
	snapshot, err := s.store.Load(ctx, projectID)

	s.mu.Lock()
	defer s.mu.Unlock()

	// 切换竞态：加载结果属于过期的项目上下文，丢弃
	if s.projectID != projectID {
		return
	}

	if err != nil {
		logger.Warn(ctx, "工作区加载失败", "project_id", projectID, "error", err)
		s.state = StateIdle
		return
	}

	// 加载结果整体替换内存状态，加载期间的本地编辑一并丢弃
	s.snapshot = snapshot
	s.dirty = false
	s.state = StateReady
}

// Update 对当前快照应用一次编辑：标脏、递增修订号并重置去抖
// 计时器。项目尚未就绪时编辑被拒绝（返回 false）。
func (s *Session) Update(mutate func(*entity.WorkspaceSnapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil || (s.state != StateReady && s.state != StateSaving) {
		return false
	}

	mutate(s.snapshot)
	s.dirty = true
	s.revision++
	s.armTimerLocked()
	return true
}

// Flush 立即保存脏快照，不等待去抖窗口
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.dirty || s.snapshot == nil || s.state == StateLoading {
		s.mu.Unlock()
		return nil
	}
	s.stopTimerLocked()
	projectID, revision, snapshot := s.projectID, s.revision, s.snapshot.Clone()
	s.state = StateSaving
	s.mu.Unlock()

	return s.runSave(ctx, projectID, revision, snapshot)
}

func (s *Session) armTimerLocked() {
	s.stopTimerLocked()
	ctx := s.ctx
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		if !s.dirty || s.snapshot == nil || s.state != StateReady {
			s.mu.Unlock()
			return
		}
		projectID, revision, snapshot := s.projectID, s.revision, s.snapshot.Clone()
		s.state = StateSaving
		s.mu.Unlock()

		_ = s.runSave(ctx, projectID, revision, snapshot)
	})
}

func (s *Session) runSave(ctx context.Context, projectID string, revision uint64, snapshot *entity.WorkspaceSnapshot) error {
	err := s.store.Save(ctx, projectID, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()

	// 切换竞态：保存结果属于过期的项目上下文，状态交给新项目的加载流程
	if s.projectID != projectID {
		return err
	}

	if err != nil {
		logger.Warn(ctx, "工作区保存失败", "project_id", projectID, "error", err)
		// 保持脏，等下一次编辑重试
		s.state = StateReady
		s.dirty = true
		return err
	}

	s.state = StateReady
	if s.revision != revision {
		// 保存在途期间又有编辑进来，结果仍是脏的，重新排队
		s.dirty = true
		s.armTimerLocked()
	} else {
		s.dirty = false
	}
	return nil
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Snapshot 返回当前快照的深拷贝；未就绪时返回 nil
func (s *Session) Snapshot() *entity.WorkspaceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// State 返回当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ProjectID 返回当前选中的项目
func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// Dirty 返回是否有未落库的编辑
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Revision 返回当前修订号
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Close 停掉去抖计时器
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}
