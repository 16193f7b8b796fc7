// Package activities keeps the append-only log of administrative actions.
package activities

import (
	"context"
	"time"
)

// Activity is a single log entry. Entries are never mutated.
type Activity struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
}

// Entry describes an activity to append. A non-empty ID makes the append
// idempotent: an entry whose ID is already in the log is not added again.
type Entry struct {
	ID     string    `json:"id" validate:"omitempty,uuid"`
	Action string    `json:"action" validate:"required,max=200"`
	User   string    `json:"user" validate:"max=200"`
	At     time.Time `json:"at"`
}

// Recorder appends activities. Implemented by Service (synchronous) and the jobs client (queued).
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NopRecorder discards entries.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, Entry) error { return nil }
