package models

import (
	"fmt"
	"time"
)

// Cycle is one bounded survey period, normally a calendar month.
// At most one cycle is expected to be active at a time, but nothing in the
// model enforces that; aggregation must work with zero or many active cycles.
type Cycle struct {
	ID       string    `json:"id"`
	Year     int       `json:"year"`
	Month    int       `json:"month"` // 1..12
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	IsActive bool      `json:"is_active"`
}

// Period returns the cycle label in YYYY-MM form.
func (c *Cycle) Period() string {
	return PeriodLabel(c.Year, c.Month)
}

// PeriodLabel formats a year/month pair as YYYY-MM.
func PeriodLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Question is a free-text prompt attached to a cycle, ordered 1..3.
type Question struct {
	ID      string `json:"id"`
	CycleID string `json:"cycle_id"`
	Order   int    `json:"order"`
	Text    string `json:"text"`
}

// Department is an optional labeling segment for responses.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Response is one respondent's submission. The record is anonymous: the only
// respondent-derived value is SubmissionHash, a one-way dedup key that is
// never reversed to recover identity. Name is a voluntary display name.
type Response struct {
	ID             string    `json:"id"`
	CycleID        string    `json:"cycle_id"`
	DepartmentID   string    `json:"department_id,omitempty"`
	Score          int       `json:"score"` // 0..10
	Answer1        string    `json:"answer1,omitempty"`
	Answer2        string    `json:"answer2,omitempty"`
	Answer3        string    `json:"answer3,omitempty"`
	Name           string    `json:"name,omitempty"`
	SubmissionHash string    `json:"submission_hash"`
	CreatedAt      time.Time `json:"created_at"`
}

// Answers returns the free-text answers in order, skipping empty slots.
func (r *Response) Answers() []string {
	out := make([]string, 0, 3)
	for _, a := range []string{r.Answer1, r.Answer2, r.Answer3} {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// User is an admin account for the reporting/management surface.
type User struct {
	ID        string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}
