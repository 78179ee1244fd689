package models

import (
	"fmt"
	"time"
)

// Run records a single listener run. Codes and state tokens are never stored.
type Run struct {
	id         string
	address    string
	path       string
	kind       OutcomeKind
	errorCode  string
	detail     string
	finished   bool
	createdAt  time.Time
	updatedAt  time.Time
	finishedAt time.Time
}

var _ Model = (*Run)(nil)

// NewRun creates a pending run for the given bind address and callback path.
func NewRun(address, path string) *Run {
	now := time.Now().UTC()
	return &Run{address: address, path: path, createdAt: now, updatedAt: now}
}

// RestoreRun rebuilds a run from stored columns.
func RestoreRun(id, address, path string, kind OutcomeKind, errorCode, detail string, createdAt, updatedAt time.Time, finishedAt *time.Time) *Run {
	r := &Run{
		id:        id,
		address:   address,
		path:      path,
		kind:      kind,
		errorCode: errorCode,
		detail:    detail,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
	if finishedAt != nil {
		r.finished = true
		r.finishedAt = *finishedAt
	}
	return r
}

func (r *Run) ID() string           { return r.id }
func (r *Run) SetID(id string)      { r.id = id }
func (r *Run) Address() string      { return r.address }
func (r *Run) Path() string         { return r.path }
func (r *Run) Kind() OutcomeKind    { return r.kind }
func (r *Run) ErrorCode() string    { return r.errorCode }
func (r *Run) Detail() string       { return r.detail }
func (r *Run) Finished() bool       { return r.finished }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }

// FinishedAt returns the completion time, or nil while the run is pending.
func (r *Run) FinishedAt() *time.Time {
	if !r.finished {
		return nil
	}
	t := r.finishedAt
	return &t
}

// Duration is the time between creation and completion; zero while pending.
func (r *Run) Duration() time.Duration {
	if !r.finished {
		return 0
	}
	return r.finishedAt.Sub(r.createdAt)
}

// Finish stamps the run with its outcome.
func (r *Run) Finish(o Outcome) {
	now := time.Now().UTC()
	r.kind = o.Kind
	r.errorCode = o.ErrorCode()
	if o.Err != nil {
		r.detail = o.Err.Error()
	}
	r.finished = true
	r.finishedAt = now
	r.updatedAt = now
}

func (r *Run) Validate() error {
	if r.address == "" {
		return fmt.Errorf("address is required")
	}
	if r.path == "" || r.path[0] != '/' {
		return fmt.Errorf("callback path must start with '/': %q", r.path)
	}
	return nil
}
