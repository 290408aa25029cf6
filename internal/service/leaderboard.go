package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/geoquiz/geoquiz-api/internal/repository"
)

const (
	maxLeaderboardLimit = 100
	recentGamesLimit    = 5
)

// FinalizeScore completes the session and records its score. The persisted score is the one tracked by
// the server; the client value is kept for reference unless the game is configured to trust it.
func (s *Service) FinalizeScore(ctx context.Context, req model.FinalizeRequest) (*model.FinalScore, error) {
	if req.SessionID <= 0 {
		return nil, validationError("session_id is required")
	}
	if req.ClientFinalScore != nil && *req.ClientFinalScore < 0 {
		return nil, validationError("final_score must not be negative")
	}
	if req.BestStreak != nil && *req.BestStreak < 0 {
		return nil, validationError("best_streak must not be negative")
	}

	now := s.now()
	source := model.ScoreSourceServer
	score, err := s.scoreRepo.Finalize(ctx, req.SessionID, func(gs *model.GameSession, tally model.AnswerTally) (*model.Score, error) {
		gs.Complete(now)

		finalScore := gs.CurrentScore
		bestStreak := gs.BestStreak
		if s.game.TrustClientScore {
			if req.ClientFinalScore != nil {
				finalScore = *req.ClientFinalScore
				source = model.ScoreSourceClient
			}
			if req.BestStreak != nil {
				bestStreak = *req.BestStreak
			}
		}

		return &model.Score{
			FinalScore:     finalScore,
			TotalQuestions: tally.TotalQuestions,
			CorrectAnswers: tally.CorrectAnswers,
			LivesUsed:      model.StartingLives - gs.LivesRemaining,
			BestStreak:     bestStreak,
			ClientScore:    req.ClientFinalScore,
			CreatedAt:      now,
		}, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrSessionNotFound
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, ErrAlreadyFinalized
		}
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	return &model.FinalScore{
		ScoreID:        score.ID,
		FinalScore:     score.FinalScore,
		ScoreSource:    source,
		ClientScore:    score.ClientScore,
		TotalQuestions: score.TotalQuestions,
		CorrectAnswers: score.CorrectAnswers,
		LivesUsed:      score.LivesUsed,
		BestStreak:     score.BestStreak,
	}, nil
}

// GetLeaderboard returns the best scores, highest first and earliest first among equal scores
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.game.LeaderboardSize
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := s.scoreRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

// GetPlayerStats aggregates the finished games of a player
func (s *Service) GetPlayerStats(ctx context.Context, playerID int64) (*model.PlayerStats, error) {
	if playerID <= 0 {
		return nil, validationError("player_id is required")
	}

	player, err := s.playerRepo.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	agg, err := s.scoreRepo.PlayerAggregate(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scores: %w", err)
	}

	recent, err := s.scoreRepo.RecentGames(ctx, playerID, recentGamesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent games: %w", err)
	}

	var accuracy float64
	if agg.TotalQuestions > 0 {
		accuracy = round2(float64(agg.TotalCorrect) / float64(agg.TotalQuestions) * 100)
	}

	return &model.PlayerStats{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Stats: model.StatsSummary{
			TotalGames:     agg.TotalGames,
			BestScore:      agg.BestScore,
			AvgScore:       round2(agg.AvgScore),
			TotalCorrect:   agg.TotalCorrect,
			TotalQuestions: agg.TotalQuestions,
			Accuracy:       accuracy,
		},
		RecentGames: recent,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
