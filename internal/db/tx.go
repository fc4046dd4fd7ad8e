package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// WithTx starts a transaction, runs fn, and commits if fn returns nil.
// If fn returns an error, the transaction is rolled back and that error is returned.
// If commit fails, the commit error is returned.
//
// Typical usage:
//
//	err := db.WithTx(ctx, h, func(tx *sql.Tx) error {
//	    // use tx.ExecContext / tx.QueryRowContext ...
//	    return nil
//	})
func WithTx(ctx context.Context, h *sql.DB, fn func(*sql.Tx) error) (err error) {
	if h == nil {
		return fmt.Errorf("%w: db is nil", ErrUnavailable)
	}
	tx, err := h.BeginTx(ctx, nil)
	if err != nil {
		return Unavailable(fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if e := tx.Commit(); e != nil && !errors.Is(e, sql.ErrTxDone) {
			err = fmt.Errorf("commit: %w", e)
		}
	}()
	err = fn(tx)
	return
}
