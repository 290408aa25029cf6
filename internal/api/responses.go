package api

import (
	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/geoquiz/geoquiz-api/internal/scoring"
)

// Actions accepted by the game endpoint
const (
	ActionStartSession   = "start_session"
	ActionGetQuestion    = "get_question"
	ActionSubmitAnswer   = "submit_answer"
	ActionSaveScore      = "save_score"
	ActionGetLeaderboard = "get_leaderboard"
	ActionGetSession     = "get_session"
	ActionGetHint        = "get_hint"
	ActionGetPlayerStats = "get_player_stats"
)

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ActionResponse is the part shared by every successful action response
type ActionResponse struct {
	Success bool `json:"success"`
}

type StartSessionResponse struct {
	Success bool `json:"success"`
	model.SessionStart
}

type SessionResponse struct {
	Success bool `json:"success"`
	model.SessionState
}

type QuestionResponse struct {
	Success bool `json:"success"`
	model.Question
}

type AnswerResponse struct {
	Success bool `json:"success"`
	model.AnswerResult
}

type HintResponse struct {
	Success bool `json:"success"`
	model.Hint
}

type SaveScoreResponse struct {
	Success bool `json:"success"`
	model.FinalScore
}

type LeaderboardResponse struct {
	Success     bool                     `json:"success"`
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
}

type PlayerStatsResponse struct {
	Success bool `json:"success"`
	model.PlayerStats
}

type DifficultiesResponse struct {
	Success      bool            `json:"success"`
	Difficulties []scoring.Level `json:"difficulties"`
}
