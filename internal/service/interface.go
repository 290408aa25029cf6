package service

import (
	"context"

	"github.com/geoquiz/geoquiz-api/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	StartSession(ctx context.Context, playerName string) (*model.SessionStart, error)
	GetSession(ctx context.Context, id int64) (*model.SessionState, error)
	PickQuestion(ctx context.Context, req model.QuestionRequest) (*model.Question, error)
	SubmitAnswer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResult, error)
	RequestHint(ctx context.Context, sessionID, cityID int64) (*model.Hint, error)
	FinalizeScore(ctx context.Context, req model.FinalizeRequest) (*model.FinalScore, error)
	GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	GetPlayerStats(ctx context.Context, playerID int64) (*model.PlayerStats, error)
}

var _ ServiceInterface = (*Service)(nil)
