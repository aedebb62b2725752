// Command seeder fills an empty database with sample instructors,
// departments and courses. It does nothing when any department exists.
//
// Flags:
//
//	--migrate  apply pending migrations first
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/records-backend/internal/adapter/postgres"
	"github.com/heartmarshall/records-backend/internal/app"
	"github.com/heartmarshall/records-backend/internal/config"
	"github.com/heartmarshall/records-backend/pkg/ctxutil"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "apply pending migrations first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *migrateFlag {
		applied, err := postgres.MigrateUp(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Error("migrate", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migrations applied", slog.Int("count", applied))
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := app.NewServices(logger, pool, cfg, nil)

	ctx, runID := ctxutil.EnsureRequestID(ctx, "seed")
	logger.InfoContext(ctx, "seeding", slog.String("run_id", runID))

	if _, err := app.Seed(ctx, logger, svc.Departments, svc.Courses, svc.Instructors); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
