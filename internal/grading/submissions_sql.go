package grading

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mind-engage/smarticulous/internal/db"
	syncx "github.com/mind-engage/smarticulous/internal/sync"
)

type submissionStored struct {
	SubmissionID int64   `json:"submission_id"`
	Username     string  `json:"username"`
	ExerciseID   int64   `json:"exercise_id"`
	SubmittedAt  int64   `json:"submitted_at"`
	Total        float64 `json:"total"`
}

// StoreSubmission writes sub and one grade row per question in a single
// transaction. sub.ID is used when positive, otherwise an id is generated.
// Nothing is written when the user or exercise is unknown (ErrUserNotFound,
// ErrExerciseNotFound), the grade count differs from the question count
// (ErrGradeCount) or the id is taken (ErrDuplicateSubmission).
func (s *SQLStore) StoreSubmission(ctx context.Context, sub Submission) (int64, error) {
	if err := s.validate.Var(sub.User.Username, "required"); err != nil {
		s.metrics.ObserveStore("invalid")
		return 0, fmt.Errorf("invalid submission username: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err := db.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		var userID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE username=$1`, sub.User.Username).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%q: %w", sub.User.Username, ErrUserNotFound)
		}
		if err != nil {
			return err
		}

		var questions int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(q.question_id) FROM exercises e
			LEFT JOIN questions q ON q.exercise_id = e.id
			WHERE e.id=$1
			GROUP BY e.id`, sub.Exercise.ID).Scan(&questions)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("exercise %d: %w", sub.Exercise.ID, ErrExerciseNotFound)
		}
		if err != nil {
			return err
		}
		if len(sub.Grades) != questions {
			return fmt.Errorf("%w: %d grades for %d questions", ErrGradeCount, len(sub.Grades), questions)
		}

		submittedAt := sub.SubmissionTime.UnixMilli()
		if sub.ID > 0 {
			err = tx.QueryRowContext(ctx, `INSERT INTO submissions (id, user_id, exercise_id, submitted_at)
				VALUES ($1,$2,$3,$4)
				ON CONFLICT (id) DO NOTHING
				RETURNING id`,
				sub.ID, userID, sub.Exercise.ID, submittedAt).Scan(&id)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("submission %d: %w", sub.ID, ErrDuplicateSubmission)
			}
		} else {
			err = tx.QueryRowContext(ctx, `INSERT INTO submissions (user_id, exercise_id, submitted_at)
				VALUES ($1,$2,$3)
				RETURNING id`,
				userID, sub.Exercise.ID, submittedAt).Scan(&id)
			// postgres identity values do not skip ids inserted explicitly
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("generated submission id: %w: %w", ErrDuplicateSubmission, err)
			}
		}
		if err != nil {
			return err
		}

		for q, grade := range sub.Grades {
			if _, err := tx.ExecContext(ctx, `INSERT INTO question_grades (submission_id, question_id, grade)
				VALUES ($1,$2,$3)`, id, q, grade); err != nil {
				return fmt.Errorf("grade %d: %w", q, err)
			}
		}

		data, err := json.Marshal(submissionStored{
			SubmissionID: id,
			Username:     sub.User.Username,
			ExerciseID:   sub.Exercise.ID,
			SubmittedAt:  submittedAt,
			Total:        sub.Total(),
		})
		if err != nil {
			return err
		}
		return s.events.Append(ctx, tx, syncx.Event{
			Type:     syncx.TypeSubmissionStored,
			Key:      strconv.FormatInt(id, 10),
			DataJSON: string(data),
		})
	})
	if err != nil {
		s.metrics.ObserveStore(storeOutcome(err))
		return 0, db.Unavailable(err)
	}

	s.metrics.ObserveStore("ok")
	s.logger.Debug().
		Int64("submission_id", id).
		Str("username", sub.User.Username).
		Int64("exercise_id", sub.Exercise.ID).
		Msg("submission stored")
	return id, nil
}

func storeOutcome(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrExerciseNotFound):
		return "exercise_not_found"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrGradeCount):
		return "invalid"
	default:
		return "error"
	}
}

func (s *SQLStore) LatestSubmission(ctx context.Context, u User, e Exercise) (Submission, bool, error) {
	return s.SelectSubmission(ctx, u, e, ByRecency)
}

func (s *SQLStore) BestSubmission(ctx context.Context, u User, e Exercise) (Submission, bool, error) {
	return s.SelectSubmission(ctx, u, e, ByTotalScore)
}

// SelectSubmission returns the submission of u for e chosen by sel, with one
// grade per question of e in question order. When e carries no questions it
// is treated as a reference and the stored exercise is loaded first.
func (s *SQLStore) SelectSubmission(ctx context.Context, u User, e Exercise, sel Selection) (Submission, bool, error) {
	query, err := selectionQuery(sel)
	if err != nil {
		return Submission{}, false, err
	}

	if e.Questions == nil {
		stored, err := s.GetExercise(ctx, e.ID)
		switch {
		case errors.Is(err, ErrExerciseNotFound):
			s.metrics.ObserveSelection(sel.String(), "none")
			return Submission{}, false, nil
		case err != nil:
			s.metrics.ObserveSelection(sel.String(), "error")
			return Submission{}, false, err
		}
		e = stored
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, query, u.Username, e.ID, rowLimit(e))
	if err != nil {
		s.metrics.ObserveSelection(sel.String(), "error")
		return Submission{}, false, db.Unavailable(err)
	}
	gradeRows, err := scanGradeRows(rows)
	if err != nil {
		s.metrics.ObserveSelection(sel.String(), "error")
		return Submission{}, false, err
	}

	sub, ok, err := reconstruct(gradeRows, u, e)
	switch {
	case err != nil:
		s.metrics.ObserveSelection(sel.String(), "incomplete")
		s.logger.Warn().Err(err).Str("policy", sel.String()).Msg("cannot reconstruct submission")
		return Submission{}, false, err
	case !ok:
		s.metrics.ObserveSelection(sel.String(), "none")
		return Submission{}, false, nil
	}
	s.metrics.ObserveSelection(sel.String(), "found")
	return sub, true, nil
}
