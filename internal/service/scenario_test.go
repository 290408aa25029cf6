package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/geoquiz/geoquiz-api/internal/database"
	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/geoquiz/geoquiz-api/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	svc       *Service
	db        *sqlx.DB
	repos     *repository.Container
	countries map[string]int64
	cities    map[int64]int64
}

// setupWorld builds a service over a migrated in-memory database holding the given countries.
// Every country gets one city (source id = index+1) with three valid images.
func setupWorld(t *testing.T, codes ...string) *world {
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("svc_%d", rand.Int()),
	}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))

	repos := repository.NewRepositories(db, config.DBTypeMemory)
	ctx := context.Background()

	names := map[string]string{"FR": "France", "DE": "Germany", "ES": "Spain", "IT": "Italy", "JP": "Japan"}
	var countries []model.Country
	for _, code := range codes {
		countries = append(countries, model.Country{Name: names[code], Code: code})
	}
	require.NoError(t, repos.Country.BulkInsertCountries(ctx, countries))
	countryIDs, err := repos.Country.CountryIDsByCode(ctx)
	require.NoError(t, err)

	var cities []model.City
	for i, code := range codes {
		cities = append(cities, model.City{Name: "Capital of " + code, SourceID: int64(i + 1), CountryID: countryIDs[code]})
	}
	require.NoError(t, repos.City.BulkInsertCities(ctx, cities))
	cityIDs, err := repos.City.CityIDsBySourceID(ctx)
	require.NoError(t, err)

	var images []model.Image
	for sourceID, cityID := range cityIDs {
		for j := 0; j < 3; j++ {
			images = append(images, model.Image{URL: fmt.Sprintf("https://img.example/%d/%d.jpg", sourceID, j), CityID: cityID, IsValid: true})
		}
	}
	require.NoError(t, repos.Image.BulkInsertImages(ctx, images))

	return &world{
		svc:       NewService(repos, config.DefaultGameConfig()),
		db:        db,
		repos:     repos,
		countries: countryIDs,
		cities:    cityIDs,
	}
}

func (w *world) countAnswers(t *testing.T, sessionID int64) int {
	var n int
	require.NoError(t, w.db.Get(&n, "SELECT COUNT(*) FROM answers WHERE session_id = ?", sessionID))
	return n
}

func (w *world) countOpenHints(t *testing.T, sessionID int64) int {
	var n int
	require.NoError(t, w.db.Get(&n, "SELECT COUNT(*) FROM session_hints WHERE session_id = ?", sessionID))
	return n
}

func TestScenario_FiveWrongAnswersEndTheGame(t *testing.T) {
	w := setupWorld(t, "FR", "DE", "ES", "IT")
	ctx := context.Background()
	paris := w.cities[1]

	start, err := w.svc.StartSession(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 5, start.LivesRemaining)
	assert.Equal(t, 0, start.CurrentScore)

	var last *model.AnswerResult
	for i := 0; i < 5; i++ {
		last, err = w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: paris, Answer: "Germany"})
		require.NoError(t, err)
		assert.False(t, last.IsCorrect)
		assert.Equal(t, 4-i, last.LivesRemaining)
		assert.Equal(t, i == 4, last.GameOver)
	}
	assert.Equal(t, 0, last.LivesRemaining)

	state, err := w.svc.GetSession(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, state.Status)
	assert.NotNil(t, state.CompletedAt)

	_, err = w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: paris, Answer: "France"})
	assert.ErrorIs(t, err, ErrSessionCompleted)
	assert.Equal(t, 5, w.countAnswers(t, start.SessionID))

	final, err := w.svc.FinalizeScore(ctx, model.FinalizeRequest{SessionID: start.SessionID})
	require.NoError(t, err)
	assert.Equal(t, 5, final.TotalQuestions)
	assert.Equal(t, 0, final.CorrectAnswers)
	assert.Equal(t, 5, final.LivesUsed)
	assert.Equal(t, 0, final.FinalScore)

	_, err = w.svc.FinalizeScore(ctx, model.FinalizeRequest{SessionID: start.SessionID})
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.ErrorIs(t, err, ErrConflict)

	var scores int
	require.NoError(t, w.db.Get(&scores, "SELECT COUNT(*) FROM scores"))
	assert.Equal(t, 1, scores)
}

func TestScenario_InsufficientCountries(t *testing.T) {
	w := setupWorld(t, "FR", "DE", "ES")

	_, err := w.svc.BuildChoices(context.Background(), 7, 4)
	assert.ErrorIs(t, err, ErrInsufficientCountries)

	_, err = w.svc.PickQuestion(context.Background(), model.QuestionRequest{})
	assert.ErrorIs(t, err, ErrInsufficientCountries)

	q, err := w.svc.PickQuestion(context.Background(), model.QuestionRequest{Difficulty: "easy"})
	require.NoError(t, err)
	assert.Len(t, q.Choices, 3)
	assert.Len(t, q.Images, 3)
}

func TestScenario_CaseInsensitiveExactMatch(t *testing.T) {
	w := setupWorld(t, "FR", "DE")
	ctx := context.Background()

	start, err := w.svc.StartSession(ctx, "Bob")
	require.NoError(t, err)

	res, err := w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: w.cities[1], Answer: "france"})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 10, res.NewScore)

	res, err = w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: w.cities[1], Answer: "Fra"})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 10, res.NewScore)
	assert.Equal(t, 4, res.LivesRemaining)
}

func TestScenario_HintWithLowScoreIsRejected(t *testing.T) {
	w := setupWorld(t, "FR", "DE")
	ctx := context.Background()

	start, err := w.svc.StartSession(ctx, "Carol")
	require.NoError(t, err)
	_, err = w.db.Exec("UPDATE game_sessions SET current_score = 1 WHERE id = ?", start.SessionID)
	require.NoError(t, err)

	hint, err := w.svc.RequestHint(ctx, start.SessionID, w.cities[1])
	assert.ErrorIs(t, err, ErrHintUnavailable)
	assert.Nil(t, hint)

	state, err := w.svc.GetSession(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentScore)

	assert.Zero(t, w.countOpenHints(t, start.SessionID))
}

func TestScenario_HintThenCorrectAnswer(t *testing.T) {
	w := setupWorld(t, "FR", "DE")
	ctx := context.Background()
	paris := w.cities[1]

	start, err := w.svc.StartSession(ctx, "Dave")
	require.NoError(t, err)
	_, err = w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: paris, Answer: "FR"})
	require.NoError(t, err)

	hint, err := w.svc.RequestHint(ctx, start.SessionID, paris)
	require.NoError(t, err)
	assert.Equal(t, "F", hint.FirstLetter)
	assert.Equal(t, 8, hint.NewScore)

	_, err = w.svc.RequestHint(ctx, start.SessionID, paris)
	assert.ErrorIs(t, err, ErrHintUnavailable)

	state, err := w.svc.GetSession(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 8, state.CurrentScore)

	res, err := w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: paris, Answer: "France", Difficulty: "normal"})
	require.NoError(t, err)
	assert.Equal(t, 10, res.PointsEarned)
	assert.Equal(t, 18, res.NewScore)
}

func TestScenario_HintThenWrongAnswerStillCosts(t *testing.T) {
	w := setupWorld(t, "FR", "DE")
	ctx := context.Background()
	paris := w.cities[1]

	start, err := w.svc.StartSession(ctx, "Dana")
	require.NoError(t, err)
	_, err = w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: paris, Answer: "FR"})
	require.NoError(t, err)

	hint, err := w.svc.RequestHint(ctx, start.SessionID, paris)
	require.NoError(t, err)
	assert.Equal(t, 8, hint.NewScore)

	res, err := w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: paris, Answer: "Germany"})
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 8, res.NewScore)
	assert.Equal(t, 4, res.LivesRemaining)

	var hintUsed []bool
	require.NoError(t, w.db.Select(&hintUsed,
		"SELECT hint_used FROM answers WHERE session_id = ? ORDER BY id", start.SessionID))
	assert.Equal(t, []bool{false, true}, hintUsed)
	assert.Zero(t, w.countOpenHints(t, start.SessionID))

	final, err := w.svc.FinalizeScore(ctx, model.FinalizeRequest{SessionID: start.SessionID})
	require.NoError(t, err)
	assert.Equal(t, 8, final.FinalScore)
	assert.Equal(t, model.ScoreSourceServer, final.ScoreSource)
}

func TestScenario_HintOncePerQuestion(t *testing.T) {
	w := setupWorld(t, "FR", "DE")
	ctx := context.Background()
	paris, berlin := w.cities[1], w.cities[2]

	start, err := w.svc.StartSession(ctx, "Eve")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: berlin, Answer: "DE"})
		require.NoError(t, err)
	}

	_, err = w.svc.RequestHint(ctx, start.SessionID, paris)
	require.NoError(t, err)
	_, err = w.svc.RequestHint(ctx, start.SessionID, berlin)
	require.NoError(t, err)

	hint, err := w.svc.RequestHint(ctx, start.SessionID, paris)
	assert.ErrorIs(t, err, ErrHintUnavailable)
	assert.Nil(t, hint)

	state, err := w.svc.GetSession(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 16, state.CurrentScore)
	assert.Equal(t, 2, w.countOpenHints(t, start.SessionID))

	_, err = w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: paris, Answer: "France"})
	require.NoError(t, err)

	hint, err = w.svc.RequestHint(ctx, start.SessionID, paris)
	require.NoError(t, err)
	assert.Equal(t, 24, hint.NewScore)
}

func TestScenario_ConcurrentAnswersAreSerialized(t *testing.T) {
	w := setupWorld(t, "FR", "DE")
	ctx := context.Background()

	start, err := w.svc.StartSession(ctx, "Erin")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: w.cities[1], Answer: "Germany"})
		}()
	}
	wg.Wait()

	state, err := w.svc.GetSession(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.LivesRemaining)
	assert.Equal(t, model.SessionCompleted, state.Status)
	assert.Equal(t, 5, w.countAnswers(t, start.SessionID))
}

func TestScenario_LeaderboardAndStats(t *testing.T) {
	w := setupWorld(t, "FR", "DE")
	ctx := context.Background()

	play := func(name string, correct int) int64 {
		start, err := w.svc.StartSession(ctx, name)
		require.NoError(t, err)
		for i := 0; i < correct; i++ {
			_, err := w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: w.cities[2], Answer: "Germany"})
			require.NoError(t, err)
		}
		_, err = w.svc.SubmitAnswer(ctx, model.AnswerRequest{SessionID: start.SessionID, CityID: w.cities[2], Answer: "Japan"})
		require.NoError(t, err)
		_, err = w.svc.FinalizeScore(ctx, model.FinalizeRequest{SessionID: start.SessionID})
		require.NoError(t, err)
		return start.PlayerID
	}

	frank := play("Frank", 3)
	play("Grace", 5)
	play("Frank", 1)

	board, err := w.svc.GetLeaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "Grace", board[0].PlayerName)
	assert.Equal(t, 50, board[0].FinalScore)
	for i := 1; i < len(board); i++ {
		assert.GreaterOrEqual(t, board[i-1].FinalScore, board[i].FinalScore)
	}

	stats, err := w.svc.GetPlayerStats(ctx, frank)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Stats.TotalGames)
	assert.Equal(t, 30, stats.Stats.BestScore)
	assert.Equal(t, 20.0, stats.Stats.AvgScore)
	assert.Equal(t, 4, stats.Stats.TotalCorrect)
	assert.Equal(t, 6, stats.Stats.TotalQuestions)
	assert.Equal(t, 66.67, stats.Stats.Accuracy)
	require.Len(t, stats.RecentGames, 2)
	assert.Equal(t, 10, stats.RecentGames[0].FinalScore)
}
