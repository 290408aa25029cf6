package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geoquiz/geoquiz-api/internal/api"
	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/geoquiz/geoquiz-api/internal/database"
	"github.com/geoquiz/geoquiz-api/internal/repository"
	"github.com/geoquiz/geoquiz-api/internal/seeder"
	"github.com/geoquiz/geoquiz-api/internal/service"
	"github.com/geoquiz/geoquiz-api/internal/stats"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const migrationsRoot = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("Server exited")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB, migrationsRoot); err != nil {
		return err
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	if cfg.Seeder.AutoSeed {
		if err := autoSeed(ctx, db, repos, cfg, logger); err != nil {
			return err
		}
	}

	svc := service.NewService(repos, cfg.Game)
	statsCollector := stats.NewCollector(db, cfg.DB, cfg.Game.MinImages)
	router := api.NewRouter(svc, statsCollector, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// autoSeed loads the seed files into an empty database. Missing seed files are not fatal:
// the server starts and answers questions with a content-not-available error.
func autoSeed(ctx context.Context, db *sqlx.DB, repos *repository.Container, cfg *config.Config, logger *zap.Logger) error {
	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
		return nil
	}
	if !isEmpty {
		return nil
	}

	logger.Info("Database is empty, auto-seeding data...", zap.String("data_dir", cfg.Seeder.DataDir))
	parser := seeder.NewParser(cfg.Seeder.DataDir, cfg.Seeder)
	if _, err := seeder.Seed(ctx, parser, repos, logger); err != nil {
		if errors.Is(err, seeder.ErrSeedFileMissing) {
			logger.Warn("Seed files not found, starting without content", zap.Error(err))
			return nil
		}
		return fmt.Errorf("failed to auto-seed database: %w", err)
	}
	logger.Info("Database seeded successfully")
	return nil
}
