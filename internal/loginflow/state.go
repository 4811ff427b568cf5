package loginflow

import (
	"sync"
	"time"
)

type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusNavigating
	StatusFailed
	StatusBlocked
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusNavigating:
		return "navigating"
	case StatusFailed:
		return "failed"
	case StatusBlocked:
		return "blocked"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// FormView is what a login form renders from.
type FormView struct {
	Status  Status
	Message string
	Path    string
}

// Enabled reports whether the submit control should accept input.
func (v FormView) Enabled() bool {
	return v.Status == StatusIdle || v.Status == StatusFailed
}

// FormState is the single state container for one login form. A blocked
// view lapses back to idle once its deadline passes.
type FormState struct {
	mu           sync.RWMutex
	view         FormView
	blockedUntil time.Time
	now          func() time.Time
}

func NewFormState() *FormState {
	return &FormState{now: time.Now}
}

func (s *FormState) View() FormView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.view.Status == StatusBlocked && !s.now().Before(s.blockedUntil) {
		return FormView{Status: StatusIdle}
	}
	return s.view
}

func (s *FormState) setClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *FormState) set(status Status, message string) {
	s.mu.Lock()
	s.view.Status = status
	s.view.Message = message
	s.blockedUntil = time.Time{}
	s.mu.Unlock()
}

func (s *FormState) block(until time.Time, message string) {
	s.mu.Lock()
	s.view.Status = StatusBlocked
	s.view.Message = message
	s.blockedUntil = until
	s.mu.Unlock()
}

func (s *FormState) landed(path string) {
	s.mu.Lock()
	s.view = FormView{Status: StatusDone, Path: path}
	s.blockedUntil = time.Time{}
	s.mu.Unlock()
}
