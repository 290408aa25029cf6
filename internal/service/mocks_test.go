package service

import (
	"context"
	"time"

	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/geoquiz/geoquiz-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockCountryRepository implements repository.CountryRepository interface
type MockCountryRepository struct {
	mock.Mock
}

func (m *MockCountryRepository) ListCountries(ctx context.Context) ([]model.Country, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Country), args.Error(1)
}

func (m *MockCountryRepository) CountryIDsByCode(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockCountryRepository) BulkInsertCountries(ctx context.Context, countries []model.Country) error {
	args := m.Called(ctx, countries)
	return args.Error(0)
}

// MockCityRepository implements repository.CityRepository interface
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) GetCityWithCountry(ctx context.Context, id int64) (*model.CityWithCountry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CityWithCountry), args.Error(1)
}

func (m *MockCityRepository) ListEligibleCityIDs(ctx context.Context, minImages int) ([]int64, error) {
	args := m.Called(ctx, minImages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockCityRepository) CityIDsBySourceID(ctx context.Context) (map[int64]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	args := m.Called(ctx, cities)
	return args.Error(0)
}

// MockImageRepository implements repository.ImageRepository interface
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) ListValidImages(ctx context.Context, cityID int64) ([]model.Image, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Image), args.Error(1)
}

func (m *MockImageRepository) BulkInsertImages(ctx context.Context, images []model.Image) error {
	args := m.Called(ctx, images)
	return args.Error(0)
}

// MockPlayerRepository implements repository.PlayerRepository interface
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetPlayer(ctx context.Context, id int64) (*model.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Player), args.Error(1)
}

// MockSessionRepository implements repository.SessionRepository interface.
// Mutate applies the callback to the session returned by the expectation and keeps the recorded answers.
// RecordHint tracks open hints per city in Hinted; an answer for the city closes its hint.
type MockSessionRepository struct {
	mock.Mock
	Answers []model.Answer
	Hinted  map[int64]bool
}

func (m *MockSessionRepository) Create(ctx context.Context, playerName string, lives int, now time.Time) (*model.SessionView, error) {
	args := m.Called(ctx, playerName, lives)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionView), args.Error(1)
}

func (m *MockSessionRepository) GetSession(ctx context.Context, id int64) (*model.SessionView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionView), args.Error(1)
}

func (m *MockSessionRepository) Mutate(ctx context.Context, id int64, fn repository.MutateFunc) (*model.GameSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Work on a copy so a rejected change leaves the stored session untouched
	stored := args.Get(0).(*model.GameSession)
	session := *stored
	answer, err := fn(&session)
	if err != nil {
		return nil, err
	}
	if answer != nil {
		answer.HintUsed = m.Hinted[answer.CityID]
		delete(m.Hinted, answer.CityID)
		m.Answers = append(m.Answers, *answer)
	}
	*stored = session
	return &session, nil
}

func (m *MockSessionRepository) RecordHint(ctx context.Context, id, cityID int64, now time.Time, fn repository.HintFunc) (*model.GameSession, error) {
	args := m.Called(ctx, id, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	stored := args.Get(0).(*model.GameSession)
	session := *stored
	if err := fn(&session, m.Hinted[cityID]); err != nil {
		return nil, err
	}
	if m.Hinted == nil {
		m.Hinted = map[int64]bool{}
	}
	m.Hinted[cityID] = true
	*stored = session
	return &session, nil
}

// MockScoreRepository implements repository.ScoreRepository interface
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) Finalize(ctx context.Context, sessionID int64, fn repository.FinalizeFunc) (*model.Score, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(2)
	}
	session := args.Get(0).(*model.GameSession)
	score, err := fn(session, args.Get(1).(model.AnswerTally))
	if err != nil {
		return nil, err
	}
	score.ID = 1
	score.SessionID = session.ID
	score.PlayerID = session.PlayerID
	return score, nil
}

func (m *MockScoreRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeaderboardEntry), args.Error(1)
}

func (m *MockScoreRepository) PlayerAggregate(ctx context.Context, playerID int64) (*model.PlayerAggregate, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlayerAggregate), args.Error(1)
}

func (m *MockScoreRepository) RecentGames(ctx context.Context, playerID int64, limit int) ([]model.RecentGame, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RecentGame), args.Error(1)
}

type mocks struct {
	country *MockCountryRepository
	city    *MockCityRepository
	image   *MockImageRepository
	player  *MockPlayerRepository
	session *MockSessionRepository
	score   *MockScoreRepository
}

func newMocks() *mocks {
	return &mocks{
		country: new(MockCountryRepository),
		city:    new(MockCityRepository),
		image:   new(MockImageRepository),
		player:  new(MockPlayerRepository),
		session: new(MockSessionRepository),
		score:   new(MockScoreRepository),
	}
}

func (m *mocks) container() *repository.Container {
	return &repository.Container{
		Country: m.country,
		City:    m.city,
		Image:   m.image,
		Player:  m.player,
		Session: m.session,
		Score:   m.score,
	}
}
