package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

// UserSource lists live users.
type UserSource interface {
	All(ctx context.Context) ([]users.User, error)
}

// RoleSource lists every role.
type RoleSource interface {
	All(ctx context.Context) ([]roles.Role, error)
}

// ActivitySource lists the activity log.
type ActivitySource interface {
	List(ctx context.Context) ([]activities.Activity, error)
}

// Service coordinates dashboard aggregation with the cache layer.
type Service struct {
	users      UserSource
	roles      RoleSource
	activities ActivitySource
	cache      *Cache
	group      singleflight.Group
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the sources with a Cache helper. cache may be nil.
func NewService(us UserSource, rs RoleSource, as ActivitySource, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:      us,
		roles:      rs,
		activities: as,
		cache:      cache,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Metrics computes the headline counters from the current data.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	var (
		us []users.User
		rs []roles.Role
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		us, err = s.users.All(gctx)
		return err
	})
	g.Go(func() (err error) {
		rs, err = s.roles.All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Metrics{}, fmt.Errorf("dashboard metrics: %w", err)
	}
	return ComputeMetrics(rs, us), nil
}

// Summary returns the cached dashboard payload, building it at most once per
// cache version across concurrent callers.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "summary")
	if err != nil {
		s.logger.Warn("dashboard cache unavailable", slog.Any("error", err))
		return s.build(ctx)
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		var out Summary
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return s.build(ctx)
		})
		return out, err
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

// Warmup populates the cache for the current version.
func (s *Service) Warmup(ctx context.Context) error {
	start := time.Now()
	if _, err := s.Summary(ctx); err != nil {
		return err
	}
	s.logger.Info("dashboard warmed", slog.Duration("took", time.Since(start)))
	return nil
}

func (s *Service) build(ctx context.Context) (Summary, error) {
	var (
		us   []users.User
		rs   []roles.Role
		acts []activities.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		us, err = s.users.All(gctx)
		return err
	})
	g.Go(func() (err error) {
		rs, err = s.roles.All(gctx)
		return err
	})
	g.Go(func() (err error) {
		acts, err = s.activities.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("build dashboard summary: %w", err)
	}
	return Summary{
		Metrics:        ComputeMetrics(rs, us),
		UsersByRole:    RoleDistribution(rs, us),
		ActivityCounts: ActivitySeries(acts),
		UserStatus:     UserStatus(rs, us),
		GeneratedAt:    s.now(),
	}, nil
}
