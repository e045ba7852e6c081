package usecase

import (
	"sort"
	"sync"
	"time"

	"fiflow_backend/internal/feature/crawler/domain/entity"
)

// StatusTracker はプロセス内のクロール実行状態を保持します。
// 複数の goroutine から同時に呼ばれるため mutex で保護します。
type StatusTracker struct {
	mu     sync.Mutex
	states map[entity.Kind]*entity.RunStatus
	now    func() time.Time
}

// NewStatusTracker は stock と index の状態を初期化して返します。
func NewStatusTracker() *StatusTracker {
	t := &StatusTracker{
		states: make(map[entity.Kind]*entity.RunStatus),
		now:    time.Now,
	}
	for _, k := range []entity.Kind{entity.KindStock, entity.KindIndex} {
		t.states[k] = &entity.RunStatus{Kind: k}
	}
	return t
}

// Start records the beginning of a run.
func (t *StatusTracker) Start(kind entity.Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(kind)
	now := t.now()
	s.ActiveRuns++
	s.Running = true
	s.LastStartedAt = &now
}

// Finish records the end of a run. A nil err clears the last error.
func (t *StatusTracker) Finish(kind entity.Kind, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(kind)
	now := t.now()
	if s.ActiveRuns > 0 {
		s.ActiveRuns--
	}
	s.Running = s.ActiveRuns > 0
	s.LastFinishedAt = &now
	s.LastError = ""
	if err != nil {
		s.LastError = err.Error()
	}
}

// Snapshot returns a copy of every state ordered by kind.
func (t *StatusTracker) Snapshot() []entity.RunStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]entity.RunStatus, 0, len(t.states))
	for _, s := range t.states {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind > out[j].Kind })
	return out
}

func (t *StatusTracker) state(kind entity.Kind) *entity.RunStatus {
	s, ok := t.states[kind]
	if !ok {
		s = &entity.RunStatus{Kind: kind}
		t.states[kind] = s
	}
	return s
}
