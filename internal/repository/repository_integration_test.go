//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/geoquiz/geoquiz-api/internal/database"
	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pgTestConfig() config.DBConfig {
	cfg := config.DBConfig{
		Type:     config.DBTypePostgreSQL,
		Host:     "localhost",
		Port:     "5432",
		User:     "geoquiz",
		Password: "geoquiz_password",
		Name:     "geoquiz_test",
		SSLMode:  "disable",
	}
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		cfg.Host = host
	}
	return cfg
}

// setupTestDB migrates a running PostgreSQL instance and empties the game tables
func setupTestDB(t *testing.T) (*pgxpool.Pool, *sqlx.DB) {
	ctx := context.Background()
	cfg := pgTestConfig()

	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))

	pool, err := pgxpool.New(ctx, cfg.DSN())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))

	_, err = pool.Exec(ctx, `TRUNCATE scores, session_hints, answers, game_sessions, players, images, cities, countries RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pool, db
}

func TestGameFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool, db := setupTestDB(t)
	repos := NewRepositories(db, config.DBTypePostgreSQL)
	ctx := context.Background()

	require.NoError(t, repos.Country.BulkInsertCountries(ctx, []model.Country{{Name: "Japan", Code: "JP"}}))
	countries, err := repos.Country.CountryIDsByCode(ctx)
	require.NoError(t, err)
	require.NoError(t, repos.City.BulkInsertCities(ctx, []model.City{{Name: "Kyoto", SourceID: 1, CountryID: countries["JP"]}}))
	cities, err := repos.City.CityIDsBySourceID(ctx)
	require.NoError(t, err)
	require.NoError(t, repos.Image.BulkInsertImages(ctx, []model.Image{
		{URL: "https://img.example/kyoto/1.jpg", CityID: cities[1], IsValid: true},
		{URL: "https://img.example/kyoto/2.jpg", CityID: cities[1], IsValid: true},
		{URL: "https://img.example/kyoto/3.jpg", CityID: cities[1], IsValid: true},
	}))

	t.Run("eligible cities", func(t *testing.T) {
		ids, err := repos.City.ListEligibleCityIDs(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []int64{cities[1]}, ids)
	})

	t.Run("session lifecycle", func(t *testing.T) {
		created, err := repos.Session.Create(ctx, "Hiro", model.StartingLives, time.Now().UTC())
		require.NoError(t, err)

		_, err = repos.Session.Mutate(ctx, created.ID, func(s *model.GameSession) (*model.Answer, error) {
			s.CurrentScore += 10
			return &model.Answer{CityID: cities[1], GuessedCountry: "Japan", IsCorrect: true, PointsEarned: 10, CreatedAt: time.Now().UTC()}, nil
		})
		require.NoError(t, err)

		score, err := repos.Score.Finalize(ctx, created.ID, func(s *model.GameSession, tally model.AnswerTally) (*model.Score, error) {
			s.Complete(time.Now().UTC())
			return &model.Score{FinalScore: s.CurrentScore, TotalQuestions: tally.TotalQuestions, CorrectAnswers: tally.CorrectAnswers, CreatedAt: time.Now().UTC()}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 10, score.FinalScore)
		assert.Equal(t, 1, score.CorrectAnswers)

		_, err = repos.Score.Finalize(ctx, created.ID, func(s *model.GameSession, tally model.AnswerTally) (*model.Score, error) {
			return &model.Score{CreatedAt: time.Now().UTC()}, nil
		})
		assert.ErrorIs(t, err, ErrAlreadyExists)

		var scores int
		require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM scores").Scan(&scores))
		assert.Equal(t, 1, scores)
	})
}
