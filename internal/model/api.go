package model

import "time"

// ActionRequest is the body accepted by the action dispatch endpoint.
// Only the fields relevant to the requested action are read.
type ActionRequest struct {
	Action        string `json:"action"`
	PlayerName    string `json:"player_name,omitempty"`
	PlayerID      int64  `json:"player_id,omitempty"`
	SessionID     int64  `json:"session_id,omitempty"`
	CityID        int64  `json:"city_id,omitempty"`
	Answer        string `json:"answer,omitempty"`
	Difficulty    string `json:"difficulty,omitempty"`
	NumChoices    int    `json:"num_choices,omitempty"`
	TimeRemaining *int   `json:"time_remaining,omitempty"`
	FinalScore    *int   `json:"final_score,omitempty"`
	BestStreak    *int   `json:"best_streak,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

// QuestionRequest holds the optional knobs of a question
type QuestionRequest struct {
	Difficulty string
	NumChoices int
}

// AnswerRequest represents a guess for the city of the current question
type AnswerRequest struct {
	SessionID  int64
	CityID     int64
	Answer     string
	Difficulty string
	// TimeRemaining is the number of seconds left on the question timer, nil when no timer ran
	TimeRemaining *int
}

// FinalizeRequest represents the end-of-game save
type FinalizeRequest struct {
	SessionID        int64
	ClientFinalScore *int
	BestStreak       *int
}

// SessionStart is returned when a new session is created
type SessionStart struct {
	SessionID      int64  `json:"session_id"`
	PlayerID       int64  `json:"player_id"`
	PlayerName     string `json:"player_name"`
	LivesRemaining int    `json:"lives_remaining"`
	CurrentScore   int    `json:"current_score"`
}

// SessionState describes the current state of a session
type SessionState struct {
	SessionID      int64         `json:"session_id"`
	PlayerID       int64         `json:"player_id"`
	PlayerName     string        `json:"player_name"`
	LivesRemaining int           `json:"lives_remaining"`
	CurrentScore   int           `json:"current_score"`
	Status         SessionStatus `json:"status"`
	Streak         int           `json:"streak"`
	BestStreak     int           `json:"best_streak"`
	CreatedAt      time.Time     `json:"created_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// QuestionCity is the city a question is about
type QuestionCity struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CountryID   int64  `json:"country_id"`
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
}

// QuestionImage is one picture shown for a question
type QuestionImage struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CountryChoice is one multiple-choice option
type CountryChoice struct {
	ID   int64  `json:"id_country"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Question is a city, its pictures and the country options
type Question struct {
	City         QuestionCity    `json:"city"`
	Images       []QuestionImage `json:"images"`
	Choices      []CountryChoice `json:"choices"`
	Difficulty   string          `json:"difficulty,omitempty"`
	TimerSeconds int             `json:"timer_seconds,omitempty"`
}

// AnswerResult is the outcome of a submitted guess
type AnswerResult struct {
	IsCorrect      bool   `json:"is_correct"`
	CorrectCountry string `json:"correct_country"`
	CorrectCode    string `json:"correct_code"`
	CityName       string `json:"city_name"`
	NewScore       int    `json:"new_score"`
	LivesRemaining int    `json:"lives_remaining"`
	GameOver       bool   `json:"game_over"`
	PointsEarned   int    `json:"points_earned"`
	Streak         int    `json:"streak"`
}

// Hint reveals partial information about the country of a city
type Hint struct {
	Continent   *string `json:"continent,omitempty"`
	FirstLetter string  `json:"first_letter"`
	NameLength  int     `json:"name_length"`
	Cost        int     `json:"cost"`
	// NewScore is the session score once the hint is paid for
	NewScore int `json:"new_score"`
}

// ScoreSource tells which value was persisted as the final score
type ScoreSource string

const (
	ScoreSourceServer ScoreSource = "server"
	ScoreSourceClient ScoreSource = "client"
)

// FinalScore is the result of finalizing a session
type FinalScore struct {
	ScoreID        int64       `json:"score_id"`
	FinalScore     int         `json:"final_score"`
	ScoreSource    ScoreSource `json:"score_source" enum:"server,client" description:"Which value was persisted as final_score: the score tracked by the server, or the client value when the game trusts it"`
	ClientScore    *int        `json:"client_score,omitempty" description:"The final_score sent by the client, kept for reference"`
	TotalQuestions int         `json:"total_questions"`
	CorrectAnswers int         `json:"correct_answers"`
	LivesUsed      int         `json:"lives_used"`
	BestStreak     int         `json:"best_streak"`
}

// StatsSummary aggregates all finished games of a player
type StatsSummary struct {
	TotalGames     int     `json:"total_games"`
	BestScore      int     `json:"best_score"`
	AvgScore       float64 `json:"avg_score"`
	TotalCorrect   int     `json:"total_correct"`
	TotalQuestions int     `json:"total_questions"`
	Accuracy       float64 `json:"accuracy"`
}

// RecentGame is one of the latest finished games of a player
type RecentGame struct {
	FinalScore     int       `json:"final_score" db:"final_score"`
	CorrectAnswers int       `json:"correct_answers" db:"correct_answers"`
	TotalQuestions int       `json:"total_questions" db:"total_questions"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// PlayerStats is the statistics view of a player
type PlayerStats struct {
	PlayerID    int64        `json:"player_id"`
	PlayerName  string       `json:"player_name"`
	Stats       StatsSummary `json:"stats"`
	RecentGames []RecentGame `json:"recent_games"`
}
