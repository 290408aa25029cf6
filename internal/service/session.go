package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/geoquiz/geoquiz-api/internal/repository"
	"github.com/geoquiz/geoquiz-api/internal/scoring"
	"golang.org/x/text/cases"
)

const maxPlayerNameLength = 64

// StartSession resolves or creates the player and opens a new session with full lives
func (s *Service) StartSession(ctx context.Context, playerName string) (*model.SessionStart, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, validationError("player_name is required")
	}
	if utf8.RuneCountInString(name) > maxPlayerNameLength {
		return nil, validationError("player_name must be at most %d characters", maxPlayerNameLength)
	}

	view, err := s.sessionRepo.Create(ctx, name, model.StartingLives, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	return &model.SessionStart{
		SessionID:      view.ID,
		PlayerID:       view.PlayerID,
		PlayerName:     view.PlayerName,
		LivesRemaining: view.LivesRemaining,
		CurrentScore:   view.CurrentScore,
	}, nil
}

// GetSession returns the current state of a session
func (s *Service) GetSession(ctx context.Context, id int64) (*model.SessionState, error) {
	view, err := s.sessionRepo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &model.SessionState{
		SessionID:      view.ID,
		PlayerID:       view.PlayerID,
		PlayerName:     view.PlayerName,
		LivesRemaining: view.LivesRemaining,
		CurrentScore:   view.CurrentScore,
		Status:         view.Status,
		Streak:         view.Streak,
		BestStreak:     view.BestStreak,
		CreatedAt:      view.CreatedAt,
		CompletedAt:    view.CompletedAt,
	}, nil
}

// SubmitAnswer checks a guess for a city and applies its outcome to the session.
// Without a difficulty a correct answer is worth the flat amount; with one the points come from the
// scoring table and the server-side streak. A hint was already paid for when it was taken.
func (s *Service) SubmitAnswer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResult, error) {
	if req.SessionID <= 0 || req.CityID <= 0 {
		return nil, validationError("session_id and city_id are required")
	}
	if strings.TrimSpace(req.Answer) == "" {
		return nil, validationError("answer is required")
	}

	var level *scoring.Level
	if req.Difficulty != "" {
		l, err := scoring.ParseDifficulty(req.Difficulty)
		if err != nil {
			return nil, validationError("difficulty must be one of easy, normal, hard")
		}
		level = &l
	}

	city, err := s.cityRepo.GetCityWithCountry(ctx, req.CityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}

	correct := matchesCountry(req.Answer, city.CountryName, city.CountryCode)
	now := s.now()
	var points int

	session, err := s.sessionRepo.Mutate(ctx, req.SessionID, func(gs *model.GameSession) (*model.Answer, error) {
		if gs.IsCompleted() {
			return nil, ErrSessionCompleted
		}

		gs.Streak = scoring.NextStreak(gs.Streak, correct)
		if gs.Streak > gs.BestStreak {
			gs.BestStreak = gs.Streak
		}

		points = 0
		if correct {
			points = pointsFor(level, req.TimeRemaining, gs.Streak)
			gs.CurrentScore += points
		} else {
			gs.LivesRemaining--
			if gs.LivesRemaining <= 0 {
				gs.Complete(now)
			}
		}

		return &model.Answer{
			CityID:         city.ID,
			GuessedCountry: req.Answer,
			IsCorrect:      correct,
			PointsEarned:   points,
			CreatedAt:      now,
		}, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrSessionNotFound
		case errors.Is(err, ErrSessionCompleted):
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit answer: %w", err)
	}

	return &model.AnswerResult{
		IsCorrect:      correct,
		CorrectCountry: city.CountryName,
		CorrectCode:    city.CountryCode,
		CityName:       city.Name,
		NewScore:       session.CurrentScore,
		LivesRemaining: session.LivesRemaining,
		GameOver:       session.IsCompleted(),
		PointsEarned:   points,
		Streak:         session.Streak,
	}, nil
}

// pointsFor returns what a correct answer adds to the score
func pointsFor(level *scoring.Level, timeRemaining *int, streak int) int {
	if level == nil {
		return scoring.FlatPoints
	}
	return scoring.ComputePoints(scoring.Input{
		Level:         *level,
		TimeRemaining: timeRemaining,
		Streak:        streak,
	}).Earned
}

// RequestHint charges the hint cost for the question about cityID right away and reveals part of the
// answer. One hint per question: the next hint for the same city is accepted only after it was answered.
// A rejected request changes nothing and reveals nothing.
func (s *Service) RequestHint(ctx context.Context, sessionID, cityID int64) (*model.Hint, error) {
	if sessionID <= 0 || cityID <= 0 {
		return nil, validationError("session_id and city_id are required")
	}

	city, err := s.cityRepo.GetCityWithCountry(ctx, cityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}

	session, err := s.sessionRepo.RecordHint(ctx, sessionID, city.ID, s.now(), func(gs *model.GameSession, alreadyHinted bool) error {
		if gs.IsCompleted() {
			return ErrSessionCompleted
		}
		if !scoring.CanUseHint(gs.CurrentScore, alreadyHinted) {
			return ErrHintUnavailable
		}
		gs.CurrentScore = scoring.DeductHint(gs.CurrentScore)
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrSessionNotFound
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, ErrHintUnavailable
		case errors.Is(err, ErrSessionCompleted), errors.Is(err, ErrHintUnavailable):
			return nil, err
		}
		return nil, fmt.Errorf("failed to record hint: %w", err)
	}

	hint := buildHint(city)
	hint.NewScore = session.CurrentScore
	return hint, nil
}

func buildHint(city *model.CityWithCountry) *model.Hint {
	first, _ := utf8.DecodeRuneInString(city.CountryName)
	return &model.Hint{
		Continent:   city.CountryContinent,
		FirstLetter: string(unicode.ToUpper(first)),
		NameLength:  utf8.RuneCountInString(city.CountryName),
		Cost:        scoring.HintCost,
	}
}

// matchesCountry reports whether a guess is the country name or code, ignoring case. No partial matches.
func matchesCountry(guess, countryName, countryCode string) bool {
	fold := cases.Fold()
	g := fold.String(strings.TrimSpace(guess))
	if g == "" {
		return false
	}
	return g == fold.String(countryName) || g == fold.String(countryCode)
}
