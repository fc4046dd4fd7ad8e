package grading

import "fmt"

// Selection picks one submission among a user's submissions to an exercise.
type Selection int

const (
	// ByRecency picks the greatest submission time. Equal times go to the higher id.
	ByRecency Selection = iota
	// ByTotalScore picks the greatest sum of grades. Equal totals go to the
	// earliest submission time, then the lowest id. Submissions without any
	// grade row are not ranked.
	ByTotalScore
)

func (s Selection) String() string {
	switch s {
	case ByRecency:
		return "latest"
	case ByTotalScore:
		return "best"
	default:
		return fmt.Sprintf("selection(%d)", int(s))
	}
}

// Each ranking defines a CTE named chosen(id, submitted_at) holding at most one
// submission of user $1 for exercise $2.
var rankings = map[Selection]string{
	ByRecency: `chosen AS (
  SELECT s.id, s.submitted_at
  FROM submissions s
  JOIN users u ON u.id = s.user_id
  WHERE u.username = $1 AND s.exercise_id = $2
  ORDER BY s.submitted_at DESC, s.id DESC
  LIMIT 1
)`,
	ByTotalScore: `totals AS (
  SELECT s.id, s.submitted_at, SUM(qg.grade) AS total
  FROM submissions s
  JOIN users u ON u.id = s.user_id
  JOIN question_grades qg ON qg.submission_id = s.id
  WHERE u.username = $1 AND s.exercise_id = $2
  GROUP BY s.id, s.submitted_at
),
chosen AS (
  SELECT id, submitted_at
  FROM totals
  ORDER BY total DESC, submitted_at ASC, id ASC
  LIMIT 1
)`,
}

// The LEFT JOIN keeps one all-NULL grade row for a chosen submission that has
// no grades, so it is told apart from "no submission".
const expandChosen = `
SELECT c.id, qg.question_id, qg.grade, c.submitted_at
FROM chosen c
LEFT JOIN question_grades qg ON qg.submission_id = c.id
ORDER BY qg.question_id ASC
LIMIT $3`

// selectionQuery returns the query for sel. Its parameters are
// ($1 username, $2 exercise id, $3 row limit).
func selectionQuery(sel Selection) (string, error) {
	ranking, ok := rankings[sel]
	if !ok {
		return "", fmt.Errorf("unknown selection %s", sel)
	}
	return "WITH " + ranking + expandChosen, nil
}

// rowLimit asks for one row more than the question count so surplus grade
// rows surface as a reconstruction error instead of being cut off.
func rowLimit(ex Exercise) int {
	return len(ex.Questions) + 1
}
