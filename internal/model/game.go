package model

import "time"

// StartingLives is the number of lives every session starts with
const StartingLives = 5

// SessionStatus is the lifecycle state of a game session
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Player represents a player, identified by a unique display name
type Player struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// GameSession is one playthrough of a player
type GameSession struct {
	ID             int64         `db:"id"`
	PlayerID       int64         `db:"player_id"`
	LivesRemaining int           `db:"lives_remaining"`
	CurrentScore   int           `db:"current_score"`
	Status         SessionStatus `db:"status"`
	Streak         int           `db:"streak"`
	BestStreak     int           `db:"best_streak"`
	CreatedAt      time.Time     `db:"created_at"`
	CompletedAt    *time.Time    `db:"completed_at"`
}

// IsCompleted reports whether the session reached its terminal state
func (s *GameSession) IsCompleted() bool {
	return s.Status == SessionCompleted
}

// Complete moves the session to its terminal state. Calling it on a completed session is a no-op.
func (s *GameSession) Complete(at time.Time) {
	if s.IsCompleted() {
		return
	}
	s.Status = SessionCompleted
	s.CompletedAt = &at
}

// SessionView is a session joined with its player name
type SessionView struct {
	GameSession
	PlayerName string `db:"player_name"`
}

// Answer is an append-only record of a submitted guess
type Answer struct {
	ID             int64     `db:"id"`
	SessionID      int64     `db:"session_id"`
	CityID         int64     `db:"city_id"`
	GuessedCountry string    `db:"guessed_country"`
	IsCorrect      bool      `db:"is_correct"`
	PointsEarned   int       `db:"points_earned"`
	CreatedAt      time.Time `db:"created_at"`
	// HintUsed is set by the store when a hint was open for the city when the answer came in
	HintUsed bool `db:"hint_used"`
}

// AnswerTally aggregates the answer log of a session
type AnswerTally struct {
	TotalQuestions int `db:"total_questions"`
	CorrectAnswers int `db:"correct_answers"`
}

// Score is the permanent record of a finished session
type Score struct {
	ID             int64     `db:"id"`
	PlayerID       int64     `db:"player_id"`
	SessionID      int64     `db:"session_id"`
	FinalScore     int       `db:"final_score"`
	TotalQuestions int       `db:"total_questions"`
	CorrectAnswers int       `db:"correct_answers"`
	LivesUsed      int       `db:"lives_used"`
	BestStreak     int       `db:"best_streak"`
	ClientScore    *int      `db:"client_score"`
	CreatedAt      time.Time `db:"created_at"`
}

// LeaderboardEntry is a score row joined with the player name
type LeaderboardEntry struct {
	PlayerName     string    `db:"player_name" json:"player_name"`
	FinalScore     int       `db:"final_score" json:"final_score"`
	CorrectAnswers int       `db:"correct_answers" json:"correct_answers"`
	TotalQuestions int       `db:"total_questions" json:"total_questions"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// PlayerAggregate holds the raw score aggregates of a player
type PlayerAggregate struct {
	TotalGames     int     `db:"total_games"`
	BestScore      int     `db:"best_score"`
	AvgScore       float64 `db:"avg_score"`
	TotalCorrect   int     `db:"total_correct"`
	TotalQuestions int     `db:"total_questions"`
}
