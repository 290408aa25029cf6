// Package scoring computes the points of a correct answer from the difficulty, the time left on the
// question timer and the current streak, and prices hints. It has no side effects and no storage access.
package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Difficulty names a level of play
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

const (
	// FlatPoints is awarded for a correct answer when no difficulty is in play
	FlatPoints = 10
	// HintCost is deducted from the score when a hint is taken
	HintCost = 2

	streakStep       = 3
	streakBonusPoint = 5
	timeBonusDivisor = 3
)

// ErrUnknownDifficulty is returned for a difficulty outside the table
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Level describes how a difficulty plays
type Level struct {
	Difficulty   Difficulty `json:"difficulty"`
	Choices      int        `json:"choices"`
	TimerSeconds int        `json:"timer_seconds"`
	BasePoints   int        `json:"base_points"`
}

var levels = map[Difficulty]Level{
	Easy:   {Difficulty: Easy, Choices: 3, TimerSeconds: 25, BasePoints: 8},
	Normal: {Difficulty: Normal, Choices: 4, TimerSeconds: 15, BasePoints: 10},
	Hard:   {Difficulty: Hard, Choices: 6, TimerSeconds: 10, BasePoints: 15},
}

// Levels returns the difficulty table ordered from easiest to hardest
func Levels() []Level {
	return []Level{levels[Easy], levels[Normal], levels[Hard]}
}

// ParseDifficulty resolves a difficulty name, ignoring case and surrounding spaces
func ParseDifficulty(name string) (Level, error) {
	level, ok := levels[Difficulty(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Level{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
	}
	return level, nil
}

// TimeBonus is one point per full 3 seconds left. A nil timeRemaining means the timer was off.
// Values above the level's timer are clamped to it.
func (l Level) TimeBonus(timeRemaining *int) int {
	if timeRemaining == nil || *timeRemaining <= 0 {
		return 0
	}
	t := *timeRemaining
	if t > l.TimerSeconds {
		t = l.TimerSeconds
	}
	return t / timeBonusDivisor
}

// StreakBonus is 5 points per full 3 consecutive correct answers
func StreakBonus(streak int) int {
	if streak < streakStep {
		return 0
	}
	return (streak / streakStep) * streakBonusPoint
}

// NextStreak returns the streak after an answer
func NextStreak(current int, correct bool) int {
	if !correct {
		return 0
	}
	return current + 1
}

// CanUseHint reports whether a hint may be taken for the current question
func CanUseHint(currentScore int, alreadyUsed bool) bool {
	return !alreadyUsed && currentScore >= HintCost
}

// DeductHint returns the score after paying for a hint, never below zero
func DeductHint(currentScore int) int {
	if currentScore < HintCost {
		return 0
	}
	return currentScore - HintCost
}

// Input holds everything the points of a correct answer depend on
type Input struct {
	Level         Level
	TimeRemaining *int
	// Streak is the number of consecutive correct answers including this one
	Streak int
}

// Breakdown itemizes the points of an answer
type Breakdown struct {
	Base        int `json:"base"`
	TimeBonus   int `json:"time_bonus"`
	StreakBonus int `json:"streak_bonus"`
	// Earned is base plus bonuses
	Earned int `json:"earned"`
}

// ComputePoints computes the points of a correct answer
func ComputePoints(in Input) Breakdown {
	b := Breakdown{
		Base:        in.Level.BasePoints,
		TimeBonus:   in.Level.TimeBonus(in.TimeRemaining),
		StreakBonus: StreakBonus(in.Streak),
	}
	b.Earned = b.Base + b.TimeBonus + b.StreakBonus
	return b
}
