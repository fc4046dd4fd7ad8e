package grading

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/smarticulous/internal/db"
)

// AddExercise stores e with its questions. An id already in use yields
// ErrDuplicateExercise and nothing is written.
func (s *SQLStore) AddExercise(ctx context.Context, e Exercise) (int64, error) {
	if err := s.validate.Struct(e); err != nil {
		return 0, fmt.Errorf("invalid exercise: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := db.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO exercises (id, name, due_date)
			VALUES ($1,$2,$3)
			ON CONFLICT (id) DO NOTHING`,
			e.ID, e.Name, e.DueDate.UnixMilli())
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrDuplicateExercise
		}

		for i, q := range e.Questions {
			if _, err := tx.ExecContext(ctx, `INSERT INTO questions (exercise_id, question_id, name, description, points)
				VALUES ($1,$2,$3,$4,$5)`,
				e.ID, i, q.Name, q.Desc, q.Points); err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateExercise) {
			s.logger.Debug().Int64("exercise_id", e.ID).Msg("exercise already exists")
			return 0, fmt.Errorf("exercise %d: %w", e.ID, ErrDuplicateExercise)
		}
		return 0, db.Unavailable(err)
	}
	s.logger.Debug().Int64("exercise_id", e.ID).Int("questions", len(e.Questions)).Msg("exercise added")
	return e.ID, nil
}

func (s *SQLStore) GetExercise(ctx context.Context, id int64) (Exercise, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var e Exercise
	var due int64
	err := s.conn.QueryRowContext(ctx, `SELECT id, name, due_date FROM exercises WHERE id=$1`, id).
		Scan(&e.ID, &e.Name, &due)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exercise{}, fmt.Errorf("exercise %d: %w", id, ErrExerciseNotFound)
		}
		return Exercise{}, db.Unavailable(err)
	}
	e.DueDate = time.UnixMilli(due).UTC()

	byID, err := s.loadQuestions(ctx, `SELECT exercise_id, name, description, points
		FROM questions WHERE exercise_id=$1 ORDER BY question_id ASC`, id)
	if err != nil {
		return Exercise{}, err
	}
	e.Questions = byID[id]
	return e, nil
}

// ListExercises returns every exercise ordered by id, each with its questions
// in question order. Listing never modifies stored rows.
func (s *SQLStore) ListExercises(ctx context.Context) ([]Exercise, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, due_date FROM exercises ORDER BY id ASC`)
	if err != nil {
		return nil, db.Unavailable(err)
	}
	var out []Exercise
	for rows.Next() {
		var e Exercise
		var due int64
		if err := rows.Scan(&e.ID, &e.Name, &due); err != nil {
			rows.Close()
			return nil, err
		}
		e.DueDate = time.UnixMilli(due).UTC()
		out = append(out, e)
	}
	// release the connection before the next query (sqlite runs a single one)
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byID, err := s.loadQuestions(ctx, `SELECT exercise_id, name, description, points
		FROM questions ORDER BY exercise_id ASC, question_id ASC`)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Questions = byID[out[i].ID]
	}
	return out, nil
}

func (s *SQLStore) loadQuestions(ctx context.Context, query string, args ...any) (map[int64][]Question, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Unavailable(err)
	}
	defer rows.Close()

	out := map[int64][]Question{}
	for rows.Next() {
		var exID int64
		var q Question
		if err := rows.Scan(&exID, &q.Name, &q.Desc, &q.Points); err != nil {
			return nil, err
		}
		out[exID] = append(out[exID], q)
	}
	return out, rows.Err()
}
