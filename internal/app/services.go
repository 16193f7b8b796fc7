package app

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/dashboard"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/db"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

// ServiceOptions tweaks how services are assembled.
type ServiceOptions struct {
	// Recorder replaces direct activity writes, e.g. with a queue client.
	Recorder activities.Recorder
	// SkipRedis disables the dashboard cache even when REDIS_ADDR is set.
	SkipRedis bool
}

// Services bundles the domain services and the infrastructure they own.
type Services struct {
	Pool       *pgxpool.Pool
	Redis      *redis.Client
	Cache      *dashboard.Cache
	Activities *activities.Service
	Roles      *roles.Service
	Users      *users.Service
	RBAC       *rbac.Service
	Dashboard  *dashboard.Service
}

type stores struct {
	activities activities.RepositoryPort
	roles      roles.RepositoryPort
	users      users.RepositoryPort
	rbac       rbac.RepositoryPort
}

// NewServices opens the configured store and cache and wires every service.
func NewServices(ctx context.Context, cfg *Config, logger *slog.Logger, opts ServiceOptions) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out := &Services{}

	var st stores
	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.PGAutoMigrate {
			if err := db.Migrate(cfg.PGDSN); err != nil {
				return nil, err
			}
		}
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, err
		}
		out.Pool = pool
		st = stores{
			activities: activities.NewPostgresRepository(pool),
			roles:      roles.NewPostgresRepository(pool),
			users:      users.NewPostgresRepository(pool),
			rbac:       rbac.NewPostgresRepository(pool),
		}
	default:
		st = memoryStores()
	}

	if cfg.QueueEnabled() && !opts.SkipRedis {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			out.Close()
			return nil, err
		}
		out.Redis = client
		out.Cache = dashboard.NewCache(client, cfg.DashboardCacheTTL)
	}

	out.wire(st, opts.Recorder, logger)
	logger.Info("services ready",
		slog.String("store", cfg.StoreDriver),
		slog.Bool("cache", out.Cache != nil),
	)
	return out, nil
}

// NewMemoryServices wires every service over seeded in-memory stores.
func NewMemoryServices(logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	out := &Services{}
	out.wire(memoryStores(), nil, logger)
	return out
}

func memoryStores() stores {
	return stores{
		activities: activities.NewMemoryRepository(activities.Fixtures()),
		roles:      roles.NewMemoryRepository(roles.Fixtures()),
		users:      users.NewMemoryRepository(users.Fixtures()),
		rbac:       rbac.NewMemoryRepository(rbac.Fixtures()),
	}
}

func (s *Services) wire(st stores, recorder activities.Recorder, logger *slog.Logger) {
	var invalidator shared.Invalidator = shared.NopInvalidator{}
	if s.Cache != nil {
		invalidator = s.Cache
	}
	s.Activities = activities.NewService(st.activities, invalidator, logger.With(slog.String("component", "activities")))
	if recorder == nil {
		recorder = s.Activities
	}
	s.Roles = roles.NewService(st.roles, recorder, invalidator, logger.With(slog.String("component", "roles")))
	s.Users = users.NewService(st.users, s.Roles, recorder, invalidator, logger.With(slog.String("component", "users")))
	s.RBAC = rbac.NewService(st.rbac, s.Roles, recorder, logger.With(slog.String("component", "rbac")))
	s.Roles.OnDelete(s.Users.UnassignRole, s.RBAC.DeleteByRole)
	s.Dashboard = dashboard.NewService(s.Users, s.Roles, s.Activities, s.Cache, logger.With(slog.String("component", "dashboard")))
}

// Close releases the database pool and Redis client.
func (s *Services) Close() {
	if s == nil {
		return
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			slog.Default().Warn("close redis", slog.Any("error", err))
		}
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}
