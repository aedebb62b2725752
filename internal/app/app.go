package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/records-backend/internal/adapter/postgres"
	"github.com/heartmarshall/records-backend/internal/adapter/postgres/audit"
	courserepo "github.com/heartmarshall/records-backend/internal/adapter/postgres/course"
	departmentrepo "github.com/heartmarshall/records-backend/internal/adapter/postgres/department"
	instructorrepo "github.com/heartmarshall/records-backend/internal/adapter/postgres/instructor"
	"github.com/heartmarshall/records-backend/internal/config"
	"github.com/heartmarshall/records-backend/internal/domain"
	"github.com/heartmarshall/records-backend/internal/metrics"
	coursesvc "github.com/heartmarshall/records-backend/internal/service/course"
	departmentsvc "github.com/heartmarshall/records-backend/internal/service/department"
	instructorsvc "github.com/heartmarshall/records-backend/internal/service/instructor"
	"github.com/heartmarshall/records-backend/internal/transport/middleware"
	"github.com/heartmarshall/records-backend/internal/transport/rest"
)

const rateLimitCleanup = time.Minute

// Run is the application entry point. It loads configuration, connects to
// the database, optionally applies migrations and serves HTTP until ctx is
// cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.AutoMigrate {
		applied, err := postgres.MigrateUp(ctx, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", slog.Int("count", applied))
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	var m *metrics.Metrics
	if cfg.Server.MetricsEnabled {
		m = metrics.New()
	}

	handler, stop := NewHTTPHandler(logger, pool, cfg, m)
	defer stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application stopped")
	return nil
}

// Services holds the application services over one pool.
type Services struct {
	Departments *departmentsvc.Service
	Courses     *coursesvc.Service
	Instructors *instructorsvc.Service
}

// NewServices wires repositories and services over pool. m may be nil.
func NewServices(logger *slog.Logger, pool *pgxpool.Pool, cfg *config.Config, m *metrics.Metrics) *Services {
	txm := postgres.NewTxManager(pool)

	departmentRepo := departmentrepo.New(pool)
	courseRepo := courserepo.New(pool)
	instructorRepo := instructorrepo.New(pool)
	auditRepo := audit.New(pool)

	// A nil *metrics.Metrics must not become a non-nil interface.
	var recorder interface {
		ObserveWrite(op string, outcome domain.Outcome)
	}
	if m != nil {
		recorder = m
	}

	return &Services{
		Departments: departmentsvc.NewService(
			logger, departmentRepo, courseRepo, auditRepo, txm, recorder, cfg.Guard.SampleSize,
		),
		Courses:     coursesvc.NewService(logger, courseRepo, departmentRepo, auditRepo, txm),
		Instructors: instructorsvc.NewService(logger, instructorRepo),
	}
}

// NewHTTPHandler wires repositories, services and handlers over pool and
// returns the full middleware chain. m may be nil to disable metrics. stop
// releases background resources.
func NewHTTPHandler(logger *slog.Logger, pool *pgxpool.Pool, cfg *config.Config, m *metrics.Metrics) (http.Handler, func()) {
	svc := NewServices(logger, pool, cfg, m)

	handlers := rest.Handlers{
		Health: rest.NewHealthHandler(BuildVersion(),
			rest.Check{Name: "database", Probe: pool.Ping},
			rest.Check{Name: "schema", Probe: postgres.SchemaReady(pool)},
		),
		Departments: rest.NewDepartmentHandler(svc.Departments, logger),
		Courses:     rest.NewCourseHandler(svc.Courses, logger),
		Instructors: rest.NewInstructorHandler(svc.Instructors, logger),
	}
	if m != nil {
		handlers.Metrics = m.Handler()
	}

	mux := rest.NewRouter(handlers, cfg.Server.RequestTimeout)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, rateLimitCleanup)

	var metricsMW middleware.Middleware
	if m != nil {
		metricsMW = middleware.Metrics(m)
	}

	// Logger and Metrics must see the request the mux routes, so nothing
	// between them and the mux may replace it.
	chain := middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		metricsMW,
		middleware.Logger(logger),
		limiter.Limit(),
	)

	return chain(mux), limiter.Stop
}
