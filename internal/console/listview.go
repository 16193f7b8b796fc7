package console

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// ErrSuperseded is returned by Load when a newer load replaced it.
var ErrSuperseded = errors.New("console: load superseded")

// State is the lifecycle of a list view.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	default:
		return "loading"
	}
}

// FetchFunc loads one page of rows.
type FetchFunc[T any] func(ctx context.Context, page shared.PageRequest) (shared.Page[T], error)

// Snapshot is a copy of a list view's state.
type Snapshot[T any] struct {
	State      State
	Rows       []T
	Total      int
	Page       shared.PageRequest
	Pagination shared.Pagination
	Err        error
}

type listData[T any] struct {
	state State
	rows  []T
	total int
	page  shared.PageRequest
}

// ListView holds the state of a paginated list. Each Load cancels the fetch in
// flight and only the latest generation may write results.
type ListView[T any] struct {
	fetch  FetchFunc[T]
	logger *slog.Logger

	mu      sync.Mutex
	cur     listData[T]
	settled *listData[T]
	gen     uint64
	cancel  context.CancelFunc
	err     error
}

// NewListView builds a list view that fetches perPage rows at a time.
func NewListView[T any](fetch FetchFunc[T], perPage int, logger *slog.Logger) *ListView[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListView[T]{
		fetch:  fetch,
		logger: logger,
		cur: listData[T]{
			state: StateLoading,
			page:  shared.PageRequest{Page: 1, ResultsPerPage: perPage}.Normalize(),
		},
	}
}

// Load fetches page and applies the result unless a newer load started meanwhile.
func (v *ListView[T]) Load(ctx context.Context, page int) error {
	gen, fetchCtx, req := v.load(ctx, page)
	result, err := v.fetch(fetchCtx, req)
	if err != nil {
		if !v.fail(gen, err) {
			return ErrSuperseded
		}
		return err
	}
	if !v.succeed(gen, result) {
		return ErrSuperseded
	}
	return nil
}

// Refetch reloads the current page.
func (v *ListView[T]) Refetch(ctx context.Context) error {
	v.mu.Lock()
	page := v.cur.page.Page
	v.mu.Unlock()
	return v.Load(ctx, page)
}

// Snapshot returns a copy of the current state.
func (v *ListView[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	rows := make([]T, len(v.cur.rows))
	copy(rows, v.cur.rows)
	return Snapshot[T]{
		State:      v.cur.state,
		Rows:       rows,
		Total:      v.cur.total,
		Page:       v.cur.page,
		Pagination: shared.NewPagination(v.cur.page.Page, v.cur.page.ResultsPerPage, v.cur.total),
		Err:        v.err,
	}
}

// Err returns the error of the last failed load, cleared by a successful one.
func (v *ListView[T]) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func (v *ListView[T]) load(ctx context.Context, page int) (uint64, context.Context, shared.PageRequest) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	if v.cur.state != StateLoading {
		prev := v.cur
		v.settled = &prev
	}
	v.gen++
	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.cur.state = StateLoading
	v.cur.page = shared.PageRequest{Page: page, ResultsPerPage: v.cur.page.ResultsPerPage}.Normalize()
	return v.gen, fetchCtx, v.cur.page
}

func (v *ListView[T]) succeed(gen uint64, result shared.Page[T]) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return false
	}
	v.finish()
	v.cur.rows = result.Results
	v.cur.total = result.Total
	v.cur.state = StateLoaded
	if len(result.Results) == 0 {
		v.cur.state = StateEmpty
	}
	v.settled = nil
	v.err = nil
	return true
}

// fail keeps the last settled state; a view that never loaded stays loading.
func (v *ListView[T]) fail(gen uint64, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return false
	}
	v.finish()
	v.logger.Error("list fetch failed", slog.Int("page", v.cur.page.Page), slog.Any("error", err))
	v.err = err
	if v.settled != nil {
		v.cur = *v.settled
		v.settled = nil
	}
	return true
}

func (v *ListView[T]) finish() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
