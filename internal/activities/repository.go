package activities

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository holds the log in insertion order.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows []Activity
}

// NewMemoryRepository constructs a repository holding seed entries.
func NewMemoryRepository(seed []Activity) *MemoryRepository {
	rows := make([]Activity, len(seed))
	copy(rows, seed)
	return &MemoryRepository{rows: rows}
}

// Fixtures returns the default activity log.
func Fixtures() []Activity {
	return []Activity{
		{ID: "6f1c1c7e-5d3b-4a57-9a51-0d2a8f3c1a01", Action: "Login", Timestamp: time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC), User: "John Doe"},
		{ID: "6f1c1c7e-5d3b-4a57-9a51-0d2a8f3c1a02", Action: "Logout", Timestamp: time.Date(2023, 10, 1, 12, 30, 0, 0, time.UTC), User: "Jane Doe"},
	}
}

// List returns every entry in insertion order.
func (r *MemoryRepository) List(_ context.Context) ([]Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Activity, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

// Append adds an entry to the end of the log. An entry whose ID is already present is ignored.
func (r *MemoryRepository) Append(_ context.Context, a Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.ID == a.ID {
			return nil
		}
	}
	r.rows = append(r.rows, a)
	return nil
}
