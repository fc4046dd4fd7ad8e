package grading

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/smarticulous/internal/db"
)

// AddOrUpdateUser inserts u, or updates the names and password of the user
// already holding u.Username. The id of an existing user is kept.
func (s *SQLStore) AddOrUpdateUser(ctx context.Context, u User, password string) (int64, error) {
	if err := s.validate.Struct(u); err != nil {
		return 0, fmt.Errorf("invalid user: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword(prehash(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err = s.conn.QueryRowContext(ctx, `INSERT INTO users (username, firstname, lastname, password_hash)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (username) DO UPDATE SET
			firstname=excluded.firstname,
			lastname=excluded.lastname,
			password_hash=excluded.password_hash
		RETURNING id`,
		u.Username, u.Firstname, u.Lastname, string(hash)).Scan(&id)
	if err != nil {
		return 0, db.Unavailable(err)
	}
	s.logger.Debug().Int64("user_id", id).Str("username", u.Username).Msg("user upserted")
	return id, nil
}

func (s *SQLStore) GetUser(ctx context.Context, username string) (User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var u User
	err := s.conn.QueryRowContext(ctx, `SELECT id, username, firstname, lastname FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.Firstname, &u.Lastname)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, db.Unavailable(err)
	}
	return u, nil
}

// VerifyLogin reports whether username exists and password matches its hash.
func (s *SQLStore) VerifyLogin(ctx context.Context, username, password string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var storedHash string
	err := s.conn.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE username=$1`, username).Scan(&storedHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, db.Unavailable(err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(storedHash), prehash(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// prehash keeps passwords of any length under bcrypt's 72 byte input limit.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
