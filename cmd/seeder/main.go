package main

import (
	"context"
	"flag"
	"log"

	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/geoquiz/geoquiz-api/internal/database"
	"github.com/geoquiz/geoquiz-api/internal/repository"
	"github.com/geoquiz/geoquiz-api/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	migrationsRoot := flag.String("migrations", "migrations", "Directory holding the sqlite and postgres migrations")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// Make sure the schema exists so the seeder can run against a fresh database
	if err := database.Migrate(db, cfg.DB, *migrationsRoot); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Starting data import...", zap.String("data_dir", cfg.Seeder.DataDir))

	repos := repository.NewRepositories(db, cfg.DB.Type)
	parser := seeder.NewParser(cfg.Seeder.DataDir, cfg.Seeder)

	summary, err := seeder.Seed(ctx, parser, repos, logger)
	if err != nil {
		logger.Fatal("Failed to import data", zap.Error(err))
	}

	if cfg.DB.IsMemory() {
		logger.Warn("DB_TYPE=memory: imported data is discarded when the process exits")
	}

	logger.Info("Data import completed successfully!",
		zap.Int("countries", summary.Countries),
		zap.Int("cities", summary.Cities),
		zap.Int("images", summary.Images),
	)
}
