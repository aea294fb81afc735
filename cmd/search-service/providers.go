package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/rodruizronald/tw-search/internal/cache"
	"github.com/rodruizronald/tw-search/internal/config"
	"github.com/rodruizronald/tw-search/internal/db"
	"github.com/rodruizronald/tw-search/internal/events"
	"github.com/rodruizronald/tw-search/internal/grpcserver"
	"github.com/rodruizronald/tw-search/internal/httpapi"
	"github.com/rodruizronald/tw-search/internal/jobs"
	"github.com/rodruizronald/tw-search/internal/scheduler"
	"github.com/rodruizronald/tw-search/internal/search"
	"github.com/rodruizronald/tw-search/internal/search/memory"
	"github.com/rodruizronald/tw-search/internal/search/postgres"
	"github.com/rodruizronald/tw-search/internal/search/supabase"
	"github.com/rodruizronald/tw-search/internal/telemetry"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogLevel == "debug" {
		return zap.NewDevelopment()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build(zap.Fields(zap.String("service", "search-service")))
}

// ── Search engine ───────────────────────────────────────────────────────────

func newBackend(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (search.Backend, error) {
	var backend search.Backend

	switch cfg.Backend {
	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info("connecting to PostgreSQL", zap.Bool("pooler_mode", cfg.PoolerMode))
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, db.PoolOptions{
			MaxConns:        cfg.MaxConns,
			MaxConnLifetime: 30 * time.Minute,
			PoolerMode:      cfg.PoolerMode,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		backend = postgres.New(pool, logger.Named("postgres"))

	case config.BackendSupabase:
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, fmt.Errorf("supabase: %w", err)
		}
		backend = supabase.New(client, logger.Named("supabase"))

	case config.BackendMemory:
		engine, err := memory.LoadFile(cfg.FixturesPath)
		if err != nil {
			return nil, fmt.Errorf("fixtures: %w", err)
		}
		logger.Info("loaded fixtures", zap.String("path", cfg.FixturesPath), zap.Int("jobs", engine.Len()))
		backend = engine

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	logger.Info("search backend ready", zap.String("backend", cfg.Backend))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			backend.Close()
			return nil
		},
	})
	return backend, nil
}

// newCache returns a Redis cache when REDIS_URL is set, a process-local one
// otherwise.
func newCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	opts := cache.DefaultOptions()
	opts.DefaultTTL = cfg.CacheTTL

	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-process cache")
		return cache.NewMemory(opts), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, db.RedisOptions{
		PoolSize:    cfg.RedisPoolSize,
		DialTimeout: cfg.RedisDialTimeout,
		Timeout:     cfg.RedisTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	c := cache.NewRedis(rdb, opts)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	logger.Info("redis connected")
	return c, nil
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		return events.Nop{}, nil
	}
	conn, err := events.Connect(cfg.NATSURL, 5*time.Second)
	if err != nil {
		return nil, err
	}
	pub := events.NewPublisher(conn, logger.Named("events"))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pub.Close()
			return nil
		},
	})
	return pub, nil
}

func newService(cfg *config.Config, backend search.Backend, c cache.Cache, pub events.Publisher, logger *zap.Logger) (*search.Service, error) {
	lang, err := jobs.ParseLanguage(cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("SEARCH_DEFAULT_LANGUAGE: %w", err)
	}
	return search.NewService(backend, c, pub, logger.Named("search"), search.Options{
		Limits: search.Limits{
			DefaultLimit:    cfg.DefaultPageSize,
			MaxLimit:        cfg.MaxPageSize,
			DefaultLanguage: lang,
		},
		CacheTTL:     cfg.CacheTTL,
		FacetTTL:     cfg.FacetTTL,
		QueryTimeout: cfg.QueryTimeout,
	}), nil
}

// ── Servers & jobs ──────────────────────────────────────────────────────────

func registerTracer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	if cfg.OTLPEndpoint == "" {
		return nil
	}
	shutdown, err := telemetry.InitTracer(context.Background(), "search-service", version, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	logger.Info("tracing enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	lc.Append(fx.Hook{OnStop: shutdown})
	return nil
}

func registerHTTPServer(lc fx.Lifecycle, cfg *config.Config, svc *search.Service, logger *zap.Logger) {
	h := httpapi.NewHandler(svc, logger.Named("http"))

	var limiter *httpapi.IPLimiter
	if cfg.RateLimitEnabled() {
		limiter = httpapi.NewIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	} else {
		logger.Info("http rate limiting disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Routes(limiter),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("http listen: %w", err)
			}
			logger.Info("http listening", zap.String("addr", srv.Addr), zap.String("version", version))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func registerGRPCServer(lc fx.Lifecycle, cfg *config.Config, svc *search.Service, logger *zap.Logger) {
	gs, hs := grpcserver.New(svc, logger.Named("grpc"))

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", ":"+cfg.GRPCPort)
			if err != nil {
				return fmt.Errorf("grpc listen: %w", err)
			}
			logger.Info("grpc listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := gs.Serve(ln); err != nil {
					logger.Error("grpc server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			hs.Shutdown()
			gs.GracefulStop()
			return nil
		},
	})
}

func registerScheduler(lc fx.Lifecycle, cfg *config.Config, svc *search.Service, logger *zap.Logger) {
	sched := scheduler.New(svc, cfg.FacetRefreshSpec, logger.Named("scheduler"))
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return sched.Start(ctx)
		},
		OnStop: func(context.Context) error {
			cancel()
			sched.Stop()
			return nil
		},
	})
}
