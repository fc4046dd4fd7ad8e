package grading

import "time"

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username" validate:"required,max=255"`
	Firstname string `json:"firstname" validate:"max=255"`
	Lastname  string `json:"lastname" validate:"max=255"`
}

// Question is identified within its exercise by its 0-based position.
type Question struct {
	Name   string `json:"name" validate:"required"`
	Desc   string `json:"desc,omitempty"`
	Points int    `json:"points" validate:"gte=0"`
}

type Exercise struct {
	ID        int64      `json:"id" validate:"gte=0"`
	Name      string     `json:"name" validate:"required"`
	DueDate   time.Time  `json:"due_date"`
	Questions []Question `json:"questions" validate:"dive"`
}

// MaxPoints is the sum of the question point values.
func (e Exercise) MaxPoints() int {
	total := 0
	for _, q := range e.Questions {
		total += q.Points
	}
	return total
}

// Submission is one graded attempt. Grades[i] belongs to Exercise.Questions[i].
type Submission struct {
	ID             int64     `json:"id"` // <= 0 lets the store generate one
	User           User      `json:"user"`
	Exercise       Exercise  `json:"exercise"`
	SubmissionTime time.Time `json:"submission_time"`
	Grades         []float64 `json:"grades"`
}

// Total is the sum of all grades.
func (s Submission) Total() float64 {
	var total float64
	for _, g := range s.Grades {
		total += g
	}
	return total
}
