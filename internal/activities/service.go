package activities

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// RepositoryPort defines data access methods for activities.
type RepositoryPort interface {
	List(ctx context.Context) ([]Activity, error)
	Append(ctx context.Context, a Activity) error
}

// Service handles activity log business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
	cache    shared.Invalidator
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache shared.Invalidator, logger *slog.Logger) *Service {
	if cache == nil {
		cache = shared.NopInvalidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		validate: shared.NewValidator(),
		cache:    cache,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

// List returns the full log.
func (s *Service) List(ctx context.Context) ([]Activity, error) {
	return s.repo.List(ctx)
}

// Record appends an entry, defaulting the timestamp to now and the user to the system actor.
// Once the entry is stored a failed cache invalidation is logged, not returned, so a
// retried caller never appends the entry twice.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	entry.Action = strings.TrimSpace(entry.Action)
	entry.User = strings.TrimSpace(entry.User)
	if err := shared.ValidateStruct(s.validate, entry); err != nil {
		return err
	}
	if entry.User == "" {
		entry.User = shared.SystemActor
	}
	at := entry.At
	if at.IsZero() {
		at = s.now()
	}
	id := entry.ID
	if id == "" {
		id = s.newID()
	}
	if err := s.repo.Append(ctx, Activity{ID: id, Action: entry.Action, Timestamp: at.UTC(), User: entry.User}); err != nil {
		return err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.String("activity", id), slog.Any("error", err))
	}
	return nil
}
