package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/gridfan/f1-fantasy/external/jolpica"
	"github.com/gridfan/f1-fantasy/internal/config"
	"github.com/gridfan/f1-fantasy/internal/domain/driver"
	"github.com/gridfan/f1-fantasy/internal/domain/fantasyteam"
	"github.com/gridfan/f1-fantasy/internal/domain/race"
	"github.com/gridfan/f1-fantasy/internal/domain/user"
	"github.com/gridfan/f1-fantasy/internal/infrastructure/auth"
	"github.com/gridfan/f1-fantasy/internal/infrastructure/repository/memory"
	"github.com/gridfan/f1-fantasy/internal/infrastructure/repository/postgres"
	"github.com/gridfan/f1-fantasy/internal/infrastructure/repository/seed"
	"github.com/gridfan/f1-fantasy/internal/interfaces/httpapi"
	"github.com/gridfan/f1-fantasy/internal/platform/cache"
	"github.com/gridfan/f1-fantasy/internal/platform/logging"
	"github.com/gridfan/f1-fantasy/internal/platform/resilience"
	"github.com/gridfan/f1-fantasy/internal/scheduler"
	"github.com/gridfan/f1-fantasy/internal/usecase"
)

// App wires repositories, services and transport into a runnable server.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler

	logger *logging.Logger
	db     *sqlx.DB
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	verifier, err := auth.NewStaticTokenVerifier(cfg.AuthTokens)
	if err != nil {
		return nil, fmt.Errorf("configure token verifier: %w", err)
	}

	provider := jolpica.NewClient(jolpica.ClientConfig{
		BaseURL:    cfg.JolpicaBaseURL,
		Timeout:    cfg.JolpicaTimeout,
		MaxRetries: cfg.JolpicaMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.JolpicaCircuitEnabled,
			FailureThreshold: cfg.JolpicaCircuitFailureCount,
			OpenTimeout:      cfg.JolpicaCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.JolpicaCircuitHalfOpenMaxReq,
		},
	})

	a := &App{logger: logger}

	var (
		driverRepo driver.Repository
		raceRepo   race.Repository
		teamRepo   fantasyteam.Repository
		userRepo   user.Repository
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.db = db

		pgDrivers := postgres.NewDriverRepository(db)
		pgUsers := postgres.NewUserRepository(db)
		for _, item := range seed.Grid() {
			if err := pgDrivers.Upsert(ctx, item); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("seed driver grid: %w", err)
			}
		}
		for _, principal := range verifier.Principals() {
			if err := pgUsers.EnsureExists(ctx, principal.UserID, principal.Username); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("seed users: %w", err)
			}
		}

		driverRepo = pgDrivers
		raceRepo = postgres.NewRaceRepository(db)
		teamRepo = postgres.NewTeamRepository(db)
		userRepo = pgUsers
	default:
		memDrivers := memory.NewDriverRepository()
		memory.SeedDrivers(memDrivers)
		memUsers := memory.NewUserRepository()
		for _, principal := range verifier.Principals() {
			memUsers.Put(user.User{ID: principal.UserID, Username: principal.Username})
		}

		driverRepo = memDrivers
		raceRepo = memory.NewRaceRepository()
		teamRepo = memory.NewTeamRepository()
		userRepo = memUsers
	}

	store := cache.NewStore(cfg.CacheTTL)

	teamSvc := usecase.NewTeamService(teamRepo, raceRepo, driverRepo, provider, store, logger)
	leaderboardSvc := usecase.NewLeaderboardService(userRepo, logger)
	reconcileSvc := usecase.NewReconciliationService(
		raceRepo,
		teamRepo,
		driverRepo,
		userRepo,
		provider,
		logger,
		cfg.ReconcileWindow,
		cfg.ReconcilePoolSize,
	)

	handler := httpapi.NewHandler(teamSvc, leaderboardSvc, reconcileSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if a.Server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	if cfg.SchedulerEnabled {
		sched, err := scheduler.New(reconcileSvc, logger, scheduler.Config{
			Weekday:    cfg.SchedulerWeekday,
			AtHour:     cfg.SchedulerHour,
			AtMinute:   cfg.SchedulerMinute,
			RunOnStart: cfg.SchedulerRunOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("build scheduler: %w", err)
		}
		a.Scheduler = sched
	}

	return a, nil
}

// Start launches the background scheduler. The HTTP server is started by the
// caller so it owns the listen error.
func (a *App) Start(ctx context.Context) error {
	if a.Scheduler == nil {
		return nil
	}
	return a.Scheduler.Start(ctx)
}

func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(); err != nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
