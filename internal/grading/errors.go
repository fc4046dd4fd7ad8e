package grading

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrExerciseNotFound = fmt.Errorf("exercise %w", ErrNotFound)

	ErrDuplicate           = errors.New("already exists")
	ErrDuplicateExercise   = fmt.Errorf("exercise %w", ErrDuplicate)
	ErrDuplicateSubmission = fmt.Errorf("submission %w", ErrDuplicate)

	// ErrGradeCount rejects a write whose grade vector does not match the question count.
	ErrGradeCount = errors.New("grade count does not match question count")

	ErrIncompleteSubmission = errors.New("incomplete submission")
)

// IncompleteSubmissionError reports grade rows that cannot be aligned to the
// exercise questions.
type IncompleteSubmissionError struct {
	SubmissionID int64
	Expected     int
	Got          int
	Missing      []int // question ids without a grade row
	Unexpected   []int // question ids outside 0..Expected-1, or repeated
}

func (e *IncompleteSubmissionError) Error() string {
	msg := fmt.Sprintf("submission %d: expected %d grades, got %d", e.SubmissionID, e.Expected, e.Got)
	if len(e.Missing) > 0 {
		msg += fmt.Sprintf(", missing questions %v", e.Missing)
	}
	if len(e.Unexpected) > 0 {
		msg += fmt.Sprintf(", unexpected questions %v", e.Unexpected)
	}
	return msg
}

func (e *IncompleteSubmissionError) Is(target error) bool {
	return target == ErrIncompleteSubmission
}
