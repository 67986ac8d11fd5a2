// Package subjects handles user-entered subjects before they reach the
// planner: parsing, editing and validation.
package subjects

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tj/go-naturaldate"

	"github.com/christopherklint97/studyr/internal/calendar"
	"github.com/christopherklint97/studyr/internal/planner"
)

// ErrValidation wraps every input problem reported to the user.
var ErrValidation = errors.New("validation failed")

const dateLayout = "2006-01-02"

// Entry is a subject as typed by the user; dates are still text.
type Entry struct {
	ID         string `json:"id,omitempty" jsonschema:"description=Opaque identifier"`
	Name       string `json:"name" jsonschema:"minLength=1"`
	ExamDate   string `json:"exam_date" jsonschema:"minLength=1,description=YYYY-MM-DD or a phrase like 'next friday'"`
	Difficulty string `json:"difficulty,omitempty" jsonschema:"pattern=^ *(?i:easy|medium|hard) *$"`
}

// List is an ordered set of entries. Its methods never modify the
// receiver; each returns a new List.
type List []Entry

func NewList(entries ...Entry) List {
	var l List
	for _, e := range entries {
		l = l.Add(e)
	}
	return l
}

// Add appends e, assigning an ID when it has none. Difficulty is
// lower-cased and a blank one becomes medium.
func (l List) Add(e Entry) List {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Difficulty = strings.ToLower(strings.TrimSpace(e.Difficulty))
	if e.Difficulty == "" {
		e.Difficulty = string(planner.Medium)
	}
	return append(slices.Clone(l), e)
}

// Remove drops the entry with id. The last remaining entry is never removed.
func (l List) Remove(id string) List {
	if len(l) <= 1 {
		return slices.Clone(l)
	}
	return slices.DeleteFunc(slices.Clone(l), func(e Entry) bool { return e.ID == id })
}

// Update replaces the entry with id by fn applied to it.
func (l List) Update(id string, fn func(Entry) Entry) List {
	out := slices.Clone(l)
	for i, e := range out {
		if e.ID == id {
			updated := fn(e)
			updated.ID = e.ID
			out[i] = updated
		}
	}
	return out
}

func (l List) Names() []string {
	names := make([]string, len(l))
	for i, e := range l {
		names[i] = e.Name
	}
	return names
}

// ParseLine reads "name, exam date[, difficulty]".
func ParseLine(line string) (Entry, error) {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) < 2 || len(parts) > 3 {
		return Entry{}, fmt.Errorf("%w: expected \"name, exam date[, difficulty]\", got %q", ErrValidation, line)
	}

	e := Entry{Name: parts[0], ExamDate: parts[1]}
	if len(parts) == 3 {
		e.Difficulty = strings.ToLower(parts[2])
	}
	return e, nil
}

// ParseLines reads one entry per line, skipping blank lines and # comments.
func ParseLines(text string) (List, error) {
	var l List
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		l = l.Add(e)
	}
	return l, nil
}

// ParseDate accepts YYYY-MM-DD or a natural-language phrase resolved
// forward from now. The result is midnight in now's location.
func ParseDate(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrValidation)
	}

	if t, err := time.ParseInLocation(dateLayout, text, now.Location()); err == nil {
		return t, nil
	}

	t, err := naturaldate.Parse(text, now, naturaldate.WithDirection(naturaldate.Future))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: cannot read date %q", ErrValidation, text)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
}

// Validate checks everything the planner assumes about its input and
// converts the entries. Exam dates must be today or later.
func Validate(l List, dailyHours float64, now time.Time) ([]planner.SubjectInput, error) {
	if dailyHours <= 0 {
		return nil, fmt.Errorf("%w: daily study hours must be greater than zero", ErrValidation)
	}
	if len(l) == 0 {
		return nil, fmt.Errorf("%w: add at least one subject", ErrValidation)
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	inputs := make([]planner.SubjectInput, 0, len(l))
	for _, e := range l {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: every subject needs a name", ErrValidation)
		}

		exam, err := ParseDate(e.ExamDate, now)
		if err != nil {
			return nil, fmt.Errorf("exam date for %s: %w", name, err)
		}
		if exam.Before(today) {
			return nil, fmt.Errorf("%w: exam date for %s must be today or later", ErrValidation, name)
		}

		diff := planner.Medium
		if e.Difficulty != "" {
			diff, err = planner.ParseDifficulty(e.Difficulty)
			if err != nil {
				return nil, fmt.Errorf("%w: subject %s: unknown difficulty %q", ErrValidation, name, e.Difficulty)
			}
		}

		inputs = append(inputs, planner.SubjectInput{
			ID:         e.ID,
			Name:       name,
			ExamDate:   exam,
			Difficulty: diff,
		})
	}
	return inputs, nil
}

// FromEvents turns calendar events (exams) into entries with the given
// difficulty.
func FromEvents(events []calendar.Event, difficulty planner.Difficulty) List {
	var l List
	for _, ev := range events {
		l = l.Add(Entry{
			Name:       ev.Summary,
			ExamDate:   ev.StartTime.Local().Format(dateLayout),
			Difficulty: string(difficulty),
		})
	}
	return l
}
