package planner

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidInput is returned when the generator cannot produce a plan.
var ErrInvalidInput = errors.New("invalid input")

const (
	// MaxDays caps the schedule horizon for far-off exams.
	MaxDays = 90

	// RevisionWindow is how many days before an exam count as revision days.
	RevisionWindow = 2

	// MinSessionHours is the shortest session worth scheduling.
	MinSessionHours = 0.5

	// StartHour is the local hour at which a day's sessions begin.
	StartHour = 9

	revisionShare = 0.8
	studyShare    = 0.4
	neededShare   = 0.6
)

// Generator turns subjects and a daily hour budget into a Plan.
type Generator struct {
	// Now supplies "today". Defaults to time.Now.
	Now func() time.Time

	// Stagger places a day's sessions back to back instead of starting
	// them all at StartHour.
	Stagger bool
}

// Generate builds a plan with a default Generator.
func Generate(subjects []SubjectInput, dailyHours float64) (*Plan, error) {
	return (&Generator{}).Generate(subjects, dailyHours)
}

func (g *Generator) today() time.Time {
	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}
	return midnight(now)
}

// Prioritize scores subjects relative to today and returns them in
// processing order, highest priority first. Equal scores keep input order.
func (g *Generator) Prioritize(subjects []SubjectInput, dailyHours float64) []Subject {
	return prioritize(subjects, dailyHours, g.today())
}

func prioritize(subjects []SubjectInput, dailyHours float64, today time.Time) []Subject {
	scored := make([]Subject, 0, len(subjects))
	for _, in := range subjects {
		exam := dateIn(in.ExamDate, today.Location())
		days := max(1, calendarDays(today, exam))
		mult := in.Difficulty.Multiplier()

		scored = append(scored, Subject{
			SubjectInput:  in,
			DaysUntilExam: days,
			PriorityScore: mult * 100 / float64(days),
			HoursNeeded:   dailyHours * float64(days) * neededShare * mult,
			exam:          exam,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].PriorityScore > scored[j].PriorityScore
	})
	return scored
}

// Generate schedules study sessions day by day until the furthest exam,
// capped at MaxDays.
func (g *Generator) Generate(subjects []SubjectInput, dailyHours float64) (*Plan, error) {
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: no subjects to plan", ErrInvalidInput)
	}

	today := g.today()
	ordered := prioritize(subjects, dailyHours, today)

	totalDays := 0
	for _, s := range ordered {
		totalDays = max(totalDays, s.DaysUntilExam)
	}
	totalDays = min(totalDays, MaxDays)

	var sessions []Session
	for day := 0; day < totalDays; day++ {
		date := today.AddDate(0, 0, day)
		remaining := dailyHours
		offset := time.Duration(0)

		for _, s := range ordered {
			if remaining <= 0 {
				break
			}

			daysLeft := calendarDays(date, s.exam)
			if daysLeft < 0 {
				continue
			}

			revision := daysLeft > 0 && daysLeft <= RevisionWindow
			if !revision && !(daysLeft > RevisionWindow && day%cadence(s.PriorityScore) == 0) {
				continue
			}

			share := dailyHours * studyShare * s.PriorityScore / 100
			if revision {
				share = dailyHours * revisionShare
			}
			hours := math.Min(remaining, share)
			if hours < MinSessionHours {
				continue
			}

			y, m, d := date.Date()
			start := time.Date(y, m, d, StartHour, 0, 0, 0, date.Location())
			if g.Stagger {
				start = start.Add(offset)
			}
			length := hoursToDuration(hours)

			sessions = append(sessions, Session{
				Subject:    s.Name,
				StartTime:  start,
				EndTime:    start.Add(length),
				IsRevision: revision,
				DayNumber:  day + 1,
			})

			remaining -= hours
			offset += length
		}
	}

	return &Plan{
		Sessions:   sessions,
		TotalDays:  totalDays,
		DailyHours: dailyHours,
	}, nil
}

// cadence is the day interval at which a subject outside its revision
// window is studied. Low scores give long gaps.
func cadence(score float64) int {
	return max(1, int(math.Floor(3/score)))
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h*float64(time.Hour/time.Millisecond))) * time.Millisecond
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// calendarDays counts whole calendar days from a to b, ignoring DST shifts.
func calendarDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}
