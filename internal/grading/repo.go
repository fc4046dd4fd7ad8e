package grading

import "context"

// Store persists users, exercises and graded submissions.
type Store interface {
	AddOrUpdateUser(ctx context.Context, u User, password string) (int64, error)
	GetUser(ctx context.Context, username string) (User, error)
	VerifyLogin(ctx context.Context, username, password string) (bool, error)

	AddExercise(ctx context.Context, e Exercise) (int64, error)
	GetExercise(ctx context.Context, id int64) (Exercise, error)
	ListExercises(ctx context.Context) ([]Exercise, error)

	StoreSubmission(ctx context.Context, s Submission) (int64, error)
	// The bool result is false when the user has no submission for the exercise.
	// An Exercise without questions (nil slice) is resolved by id from the store.
	LatestSubmission(ctx context.Context, u User, e Exercise) (Submission, bool, error)
	BestSubmission(ctx context.Context, u User, e Exercise) (Submission, bool, error)
	SelectSubmission(ctx context.Context, u User, e Exercise, sel Selection) (Submission, bool, error)

	Close() error
}
