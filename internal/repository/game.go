package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/geoquiz/geoquiz-api/internal/model"
	"github.com/jmoiron/sqlx"
)

const sessionColumns = `id, player_id, lives_remaining, current_score, status, streak, best_streak,
	created_at, completed_at`

type playerRepository struct {
	db *sqlx.DB
}

func (r *playerRepository) GetPlayer(ctx context.Context, id int64) (*model.Player, error) {
	var player model.Player
	q := r.db.Rebind(`SELECT id, name, created_at FROM players WHERE id = ?`)
	if err := r.db.GetContext(ctx, &player, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

type sessionRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func (r *sessionRepository) Create(ctx context.Context, playerName string, lives int, now time.Time) (*model.SessionView, error) {
	view := &model.SessionView{PlayerName: playerName}
	view.LivesRemaining = lives
	view.Status = model.SessionInProgress
	view.CreatedAt = now

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO players (name, created_at) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`),
			playerName, now)
		if err != nil {
			return fmt.Errorf("failed to upsert player: %w", err)
		}
		if err := tx.GetContext(ctx, &view.PlayerID,
			tx.Rebind(`SELECT id FROM players WHERE name = ?`), playerName); err != nil {
			return fmt.Errorf("failed to resolve player: %w", err)
		}

		q := tx.Rebind(`
			INSERT INTO game_sessions (player_id, lives_remaining, current_score, status, streak, best_streak, created_at)
			VALUES (?, ?, 0, ?, 0, 0, ?)
			RETURNING id
		`)
		if err := tx.QueryRowxContext(ctx, q, view.PlayerID, lives, model.SessionInProgress, now).Scan(&view.ID); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (r *sessionRepository) GetSession(ctx context.Context, id int64) (*model.SessionView, error) {
	q := r.db.Rebind(`
		SELECT
			s.id, s.player_id, s.lives_remaining, s.current_score, s.status, s.streak, s.best_streak,
			s.created_at, s.completed_at,
			p.name AS player_name
		FROM game_sessions s
		JOIN players p ON p.id = s.player_id
		WHERE s.id = ?
	`)
	var view model.SessionView
	if err := r.db.GetContext(ctx, &view, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &view, nil
}

func (r *sessionRepository) Mutate(ctx context.Context, id int64, fn MutateFunc) (*model.GameSession, error) {
	var session model.GameSession
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockSession(ctx, tx, r.dialect, id, &session); err != nil {
			return err
		}

		answer, err := fn(&session)
		if err != nil {
			return err
		}

		if answer != nil {
			answer.SessionID = session.ID
			res, err := tx.ExecContext(ctx,
				tx.Rebind(`DELETE FROM session_hints WHERE session_id = ? AND city_id = ?`),
				answer.SessionID, answer.CityID)
			if err != nil {
				return fmt.Errorf("failed to close hint: %w", err)
			}
			closed, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to close hint: %w", err)
			}
			answer.HintUsed = closed > 0

			q := tx.Rebind(`
				INSERT INTO answers (session_id, city_id, guessed_country, is_correct, points_earned, hint_used, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				RETURNING id
			`)
			err = tx.QueryRowxContext(ctx, q,
				answer.SessionID, answer.CityID, answer.GuessedCountry, answer.IsCorrect, answer.PointsEarned,
				answer.HintUsed, answer.CreatedAt,
			).Scan(&answer.ID)
			if err != nil {
				return fmt.Errorf("failed to insert answer: %w", err)
			}
		}

		return updateSession(ctx, tx, &session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) RecordHint(ctx context.Context, id, cityID int64, now time.Time, fn HintFunc) (*model.GameSession, error) {
	var session model.GameSession
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockSession(ctx, tx, r.dialect, id, &session); err != nil {
			return err
		}

		var open int
		if err := tx.GetContext(ctx, &open,
			tx.Rebind(`SELECT COUNT(*) FROM session_hints WHERE session_id = ? AND city_id = ?`),
			id, cityID); err != nil {
			return fmt.Errorf("failed to check open hint: %w", err)
		}

		if err := fn(&session, open > 0); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO session_hints (session_id, city_id, created_at) VALUES (?, ?, ?)`),
			session.ID, cityID, now)
		if err != nil {
			if r.dialect.isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to record hint: %w", err)
		}

		return updateSession(ctx, tx, &session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func lockSession(ctx context.Context, tx *sqlx.Tx, d dialect, id int64, dest *model.GameSession) error {
	q := tx.Rebind(`SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = ?` + d.lockSuffix())
	if err := tx.GetContext(ctx, dest, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock session: %w", err)
	}
	return nil
}

func updateSession(ctx context.Context, tx *sqlx.Tx, s *model.GameSession) error {
	q := tx.Rebind(`
		UPDATE game_sessions
		SET lives_remaining = ?, current_score = ?, status = ?, streak = ?, best_streak = ?, completed_at = ?
		WHERE id = ?
	`)
	_, err := tx.ExecContext(ctx, q,
		s.LivesRemaining, s.CurrentScore, s.Status, s.Streak, s.BestStreak, s.CompletedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

type scoreRepository struct {
	db      *sqlx.DB
	dialect dialect
}

func (r *scoreRepository) Finalize(ctx context.Context, sessionID int64, fn FinalizeFunc) (*model.Score, error) {
	var score *model.Score
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var session model.GameSession
		if err := lockSession(ctx, tx, r.dialect, sessionID, &session); err != nil {
			return err
		}

		var existing int
		if err := tx.GetContext(ctx, &existing,
			tx.Rebind(`SELECT COUNT(*) FROM scores WHERE session_id = ?`), sessionID); err != nil {
			return fmt.Errorf("failed to check existing score: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyExists
		}

		var tally model.AnswerTally
		q := tx.Rebind(`
			SELECT
				COUNT(*) AS total_questions,
				COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct_answers
			FROM answers
			WHERE session_id = ?
		`)
		if err := tx.GetContext(ctx, &tally, q, sessionID); err != nil {
			return fmt.Errorf("failed to tally answers: %w", err)
		}

		s, err := fn(&session, tally)
		if err != nil {
			return err
		}
		if err := updateSession(ctx, tx, &session); err != nil {
			return err
		}

		s.SessionID = session.ID
		s.PlayerID = session.PlayerID
		q = tx.Rebind(`
			INSERT INTO scores (player_id, session_id, final_score, total_questions, correct_answers,
				lives_used, best_streak, client_score, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		err = tx.QueryRowxContext(ctx, q,
			s.PlayerID, s.SessionID, s.FinalScore, s.TotalQuestions, s.CorrectAnswers,
			s.LivesUsed, s.BestStreak, s.ClientScore, s.CreatedAt,
		).Scan(&s.ID)
		if err != nil {
			if r.dialect.isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to insert score: %w", err)
		}
		score = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return score, nil
}

func (r *scoreRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	q := r.db.Rebind(`
		SELECT p.name AS player_name, s.final_score, s.correct_answers, s.total_questions, s.created_at
		FROM scores s
		JOIN players p ON p.id = s.player_id
		ORDER BY s.final_score DESC, s.created_at ASC, s.id ASC
		LIMIT ?
	`)
	entries := []model.LeaderboardEntry{}
	if err := r.db.SelectContext(ctx, &entries, q, limit); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *scoreRepository) PlayerAggregate(ctx context.Context, playerID int64) (*model.PlayerAggregate, error) {
	q := r.db.Rebind(`
		SELECT
			COUNT(*) AS total_games,
			COALESCE(MAX(final_score), 0) AS best_score,
			CAST(COALESCE(AVG(final_score), 0) AS DOUBLE PRECISION) AS avg_score,
			COALESCE(SUM(correct_answers), 0) AS total_correct,
			COALESCE(SUM(total_questions), 0) AS total_questions
		FROM scores
		WHERE player_id = ?
	`)
	var agg model.PlayerAggregate
	if err := r.db.GetContext(ctx, &agg, q, playerID); err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *scoreRepository) RecentGames(ctx context.Context, playerID int64, limit int) ([]model.RecentGame, error) {
	q := r.db.Rebind(`
		SELECT final_score, correct_answers, total_questions, created_at
		FROM scores
		WHERE player_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)
	games := []model.RecentGame{}
	if err := r.db.SelectContext(ctx, &games, q, playerID, limit); err != nil {
		return nil, err
	}
	return games, nil
}
