package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/drivingschool/internal/core/config"
	"github.com/vietddude/drivingschool/internal/core/present"
	"github.com/vietddude/drivingschool/internal/core/report"
	"github.com/vietddude/drivingschool/internal/core/resilient"
	"github.com/vietddude/drivingschool/internal/health"
	redisclient "github.com/vietddude/drivingschool/internal/infra/redis"
	"github.com/vietddude/drivingschool/internal/infra/storage"
	"github.com/vietddude/drivingschool/internal/infra/storage/memory"
	"github.com/vietddude/drivingschool/internal/infra/storage/postgres"
	"github.com/vietddude/drivingschool/internal/school"
)

// App wires the error handling core to its sinks and the ops server.
type App struct {
	cfg       *config.AppConfig
	db        *postgres.DB
	redis     *redisclient.Client
	store     *memory.MemoryStorage
	reports   storage.ReportRepository
	reporter  *report.Reporter
	presenter *present.Presenter
	executor  *resilient.Executor
	students  *school.Service
	server    *health.Server
	log       *slog.Logger
	closeOnce sync.Once
}

// NewApp connects the configured stores and builds every component.
// Without a database URL the app falls back to in-memory storage.
func NewApp(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	a := &App{cfg: cfg, log: slog.Default()}
	checks := map[string]health.CheckFunc{}

	var studentRepo storage.StudentRepository
	var remotes []report.Sink

	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		a.db = db

		if cfg.Database.Migrate {
			if err := db.Migrate(ctx); err != nil {
				a.Close()
				return nil, err
			}
		}

		reportRepo := postgres.NewErrorReportRepo(db)
		a.reports = reportRepo
		remotes = append(remotes, reportRepo)
		studentRepo = postgres.NewStudentRepo(db)
		checks["postgres"] = db.Health
		a.log.Info("Using PostgreSQL storage")
	} else {
		a.store = memory.NewMemoryStorage()
		reportRepo := memory.NewReportRepo(a.store, 0)
		a.reports = reportRepo
		remotes = append(remotes, reportRepo)
		studentRepo = memory.NewStudentRepo(a.store)
		a.log.Info("Using Memory storage")
	}

	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		a.redis = rc
		remotes = append(remotes, redisclient.NewReportStream(rc, cfg.Redis))
		checks["redis"] = rc.Health
	}

	a.reporter = report.New(cfg.Reporter, report.NewConsoleSink(a.log), remotes...)
	a.presenter = present.New(a.reporter)
	a.executor = resilient.New(cfg.Retry,
		resilient.WithReporter(a.reporter),
		resilient.WithLogger(a.log),
	)
	a.students = school.NewService(studentRepo, a.executor)
	a.server = health.NewServer(cfg.Server.Port, a.presenter, checks)

	a.log.Info("Error reporter configured",
		"debug", cfg.Reporter.Debug,
		"mirror", cfg.Reporter.Mirror,
		"sinks", a.reporter.Sinks(),
	)
	return a, nil
}

func (a *App) Presenter() *present.Presenter { return a.presenter }

func (a *App) Executor() *resilient.Executor { return a.executor }

func (a *App) Students() *school.Service { return a.students }

func (a *App) Reports() storage.ReportRepository { return a.reports }

func (a *App) Reporter() *report.Reporter { return a.reporter }

// Run starts the reporter and ops server and blocks until ctx is done,
// then shuts down within the shutdown timeout.
func (a *App) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	a.reporter.Start(ctx)
	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("Ops server listening", "port", a.cfg.Server.Port)
		return a.server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Stop(shutdownCtx)
	})

	err := g.Wait()
	a.Close()
	return err
}

// Close flushes the reporter and releases connections.
func (a *App) Close() {
	a.closeOnce.Do(a.close)
}

func (a *App) close() {
	if a.reporter != nil {
		a.reporter.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}
