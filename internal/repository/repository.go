package repository

import (
	"context"
	"errors"
	"time"

	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a row violates a uniqueness rule
	ErrAlreadyExists = errors.New("record already exists")
)

// CountryRepository defines operations for countries
type CountryRepository interface {
	ListCountries(ctx context.Context) ([]model.Country, error)
	CountryIDsByCode(ctx context.Context) (map[string]int64, error)
	BulkInsertCountries(ctx context.Context, countries []model.Country) error
}

// CityRepository defines operations for cities
type CityRepository interface {
	GetCityWithCountry(ctx context.Context, id int64) (*model.CityWithCountry, error)
	ListEligibleCityIDs(ctx context.Context, minImages int) ([]int64, error)
	CityIDsBySourceID(ctx context.Context) (map[int64]int64, error)
	BulkInsertCities(ctx context.Context, cities []model.City) error
}

// ImageRepository defines operations for city images
type ImageRepository interface {
	ListValidImages(ctx context.Context, cityID int64) ([]model.Image, error)
	BulkInsertImages(ctx context.Context, images []model.Image) error
}

// PlayerRepository defines operations for players
type PlayerRepository interface {
	GetPlayer(ctx context.Context, id int64) (*model.Player, error)
}

// MutateFunc changes a locked session in place and returns the answer to record, if any.
// Returning an error rolls the whole change back.
type MutateFunc func(s *model.GameSession) (*model.Answer, error)

// SessionRepository defines operations for game sessions
type SessionRepository interface {
	// Create resolves or creates the player by name and opens a new session for it
	Create(ctx context.Context, playerName string, lives int, now time.Time) (*model.SessionView, error)
	GetSession(ctx context.Context, id int64) (*model.SessionView, error)
	// Mutate runs fn against the locked session row and persists the result in the same transaction.
	// Recording an answer closes the open hint for its city.
	Mutate(ctx context.Context, id int64, fn MutateFunc) (*model.GameSession, error)
	// RecordHint runs fn against the locked session row, then opens a hint for cityID
	RecordHint(ctx context.Context, id, cityID int64, now time.Time, fn HintFunc) (*model.GameSession, error)
}

// HintFunc changes a locked session for a hint request. alreadyHinted reports an open hint for the
// same city. Returning an error rolls the whole change back and opens no hint.
type HintFunc func(s *model.GameSession, alreadyHinted bool) error

// FinalizeFunc builds the score of a locked session from its answer tally.
// Changes made to the session are persisted with the score.
type FinalizeFunc func(s *model.GameSession, tally model.AnswerTally) (*model.Score, error)

// ScoreRepository defines operations for final scores
type ScoreRepository interface {
	Finalize(ctx context.Context, sessionID int64, fn FinalizeFunc) (*model.Score, error)
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	PlayerAggregate(ctx context.Context, playerID int64) (*model.PlayerAggregate, error)
	RecentGames(ctx context.Context, playerID int64, limit int) ([]model.RecentGame, error)
}

// Container holds all repositories
type Container struct {
	Country CountryRepository
	City    CityRepository
	Image   ImageRepository
	Player  PlayerRepository
	Session SessionRepository
	Score   ScoreRepository
}

// dialect captures what differs between the SQL engines
type dialect interface {
	// lockSuffix is appended to a SELECT to lock the selected rows for the transaction
	lockSuffix() string
	// chunkSize bounds the rows of one multi-row insert
	chunkSize() int
	isUniqueViolation(err error) bool
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	var d dialect = sqliteDialect{}
	if dbType == config.DBTypePostgreSQL {
		d = pgDialect{}
	}

	return &Container{
		Country: &countryRepository{db: db, dialect: d},
		City:    &cityRepository{db: db, dialect: d},
		Image:   &imageRepository{db: db, dialect: d},
		Player:  &playerRepository{db: db},
		Session: &sessionRepository{db: db, dialect: d},
		Score:   &scoreRepository{db: db, dialect: d},
	}
}

// IsDatabaseEmpty reports whether no playable content was loaded yet (used by main)
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities"); err != nil {
		return false, err
	}
	return count == 0, nil
}

// inChunks calls fn for consecutive slices of at most size elements
func inChunks[T any](items []T, size int, fn func(batch []T) error) error {
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		if err := fn(items[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// withTx runs fn inside a transaction, committing only when fn succeeds
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
