package db_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/smarticulous/internal/db"
)

func TestIsUniqueViolationSQLite(t *testing.T) {
	h, _ := openTemp(t)
	_, err := h.Exec(`INSERT INTO exercises (id, name, due_date) VALUES (1, 'HW', 0)`)
	require.NoError(t, err)

	_, err = h.Exec(`INSERT INTO exercises (id, name, due_date) VALUES (1, 'HW again', 0)`)
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(fmt.Errorf("insert: %w", err)))

	_, err = h.Exec(`INSERT INTO questions (exercise_id, question_id, name, points) VALUES (1, 0, 'q', -5)`)
	require.Error(t, err)
	require.False(t, db.IsUniqueViolation(err))
}

func TestIsUniqueViolationPostgres(t *testing.T) {
	require.True(t, db.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	require.False(t, db.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, db.IsUniqueViolation(errors.New("boom")))
	require.False(t, db.IsUniqueViolation(nil))
}
