package server

import (
	"sync"

	"github.com/desertthunder/oneshot/internal/models"
)

// captureState is the single-write slot shared by the terminal route and the waiting listener.
//
// The slot goes from empty to filled once per run. The first successful tryFill also closes the
// shutdown channel, under the same lock, so the signal fires exactly once.
type captureState struct {
	mu       sync.Mutex
	filled   bool
	outcome  *models.Outcome
	shutdown chan struct{}
	stopped  <-chan struct{}
}

func newCaptureState() *captureState {
	ch := make(chan struct{})
	return &captureState{shutdown: ch, stopped: ch}
}

// tryFill stores o if the slot has never been filled and reports whether this call wrote it.
func (s *captureState) tryFill(o models.Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filled {
		return false
	}
	s.filled = true
	s.outcome = &o

	close(s.shutdown)
	s.shutdown = nil
	return true
}

// take drains the slot. It reports false if nothing was ever captured or it was already taken.
func (s *captureState) take() (models.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome == nil {
		return models.NoResponse(), false
	}
	o := *s.outcome
	s.outcome = nil
	return o, true
}

// done is closed by the first successful tryFill.
func (s *captureState) done() <-chan struct{} {
	return s.stopped
}
