package grading

import (
	"database/sql"
	"sort"
	"time"
)

// gradeRow is one row of a selection query. QuestionID and Grade are NULL
// when the selected submission has no grade rows at all.
type gradeRow struct {
	SubmissionID   int64
	QuestionID     sql.NullInt64
	Grade          sql.NullFloat64
	SubmissionTime int64 // unix ms
}

func scanGradeRows(rows *sql.Rows) ([]gradeRow, error) {
	defer rows.Close()
	var out []gradeRow
	for rows.Next() {
		var r gradeRow
		if err := rows.Scan(&r.SubmissionID, &r.QuestionID, &r.Grade, &r.SubmissionTime); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// reconstruct builds the submission for user and ex from the rows of a single
// submission. ok is false when rows is empty.
// Rows are re-sorted by question id; every question 0..n-1 must have exactly one grade.
func reconstruct(rows []gradeRow, user User, ex Exercise) (Submission, bool, error) {
	if len(rows) == 0 {
		return Submission{}, false, nil
	}

	first := rows[0]
	n := len(ex.Questions)

	graded := make([]gradeRow, 0, len(rows))
	for _, r := range rows {
		if r.QuestionID.Valid {
			graded = append(graded, r)
		}
	}
	sort.SliceStable(graded, func(i, j int) bool {
		return graded[i].QuestionID.Int64 < graded[j].QuestionID.Int64
	})

	grades := make([]float64, n)
	seen := make([]bool, n)
	var unexpected []int
	for _, r := range graded {
		q := int(r.QuestionID.Int64)
		if r.SubmissionID != first.SubmissionID || q < 0 || q >= n || seen[q] || !r.Grade.Valid {
			unexpected = append(unexpected, q)
			continue
		}
		seen[q] = true
		grades[q] = r.Grade.Float64
	}

	var missing []int
	for q, ok := range seen {
		if !ok {
			missing = append(missing, q)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		return Submission{}, false, &IncompleteSubmissionError{
			SubmissionID: first.SubmissionID,
			Expected:     n,
			Got:          len(graded),
			Missing:      missing,
			Unexpected:   unexpected,
		}
	}

	return Submission{
		ID:             first.SubmissionID,
		User:           user,
		Exercise:       ex,
		SubmissionTime: time.UnixMilli(first.SubmissionTime).UTC(),
		Grades:         grades,
	}, true, nil
}
