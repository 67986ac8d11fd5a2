package planner

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is how hard the user expects a subject to be.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Multiplier scales urgency and allocated time for the difficulty.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case Easy:
		return 1.0
	case Medium:
		return 1.3
	case Hard:
		return 1.6
	}
	// Unset difficulty behaves like the form default.
	return 1.3
}

func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// ParseDifficulty accepts easy, medium or hard in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidInput, s)
	}
	return d, nil
}

// SubjectInput is a subject as entered by the user. ExamDate is read as a
// calendar date in its own location; its time of day is ignored.
type SubjectInput struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`
	ExamDate   time.Time  `json:"exam_date"`
	Difficulty Difficulty `json:"difficulty"`
}

// Subject is a SubjectInput scored against a particular day.
type Subject struct {
	SubjectInput
	DaysUntilExam int     `json:"days_until_exam"`
	PriorityScore float64 `json:"priority_score"`
	HoursNeeded   float64 `json:"hours_needed"` // informational only

	exam time.Time
}

// Session is one block of study for a single subject.
type Session struct {
	Subject    string    `json:"subject"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	IsRevision bool      `json:"is_revision"`
	DayNumber  int       `json:"day_number"`
}

func (s Session) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

func (s Session) Hours() float64 {
	return s.Duration().Hours()
}

// Plan is the result of a generation run.
type Plan struct {
	Sessions   []Session `json:"sessions"`
	TotalDays  int       `json:"total_days"`
	DailyHours float64   `json:"daily_hours"`
}
