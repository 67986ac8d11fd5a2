// Package progress aggregates stored sessions into the numbers shown to
// the user.
package progress

import (
	"sort"
	"time"

	"github.com/christopherklint97/studyr/internal/store"
)

const (
	UpcomingWindow = 3 * 24 * time.Hour
	UpcomingLimit  = 5
)

type SubjectProgress struct {
	Subject   string         `json:"subject"`
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Percent   int            `json:"percent"`
	Next      *store.Session `json:"next,omitempty"`
}

func (p SubjectProgress) Remaining() int {
	return p.Total - p.Completed
}

type Summary struct {
	CompletionRate int               `json:"completion_rate"`
	Completed      int               `json:"completed"`
	Total          int               `json:"total"`
	Subjects       []SubjectProgress `json:"subjects"`
	Upcoming       []store.Session   `json:"upcoming"`
}

// Summarize groups sessions by subject in order of first appearance and
// picks the next few incomplete sessions starting after now.
func Summarize(sessions []store.Session, now time.Time) Summary {
	var sum Summary
	index := make(map[string]int)

	for _, s := range sessions {
		i, ok := index[s.Subject]
		if !ok {
			i = len(sum.Subjects)
			index[s.Subject] = i
			sum.Subjects = append(sum.Subjects, SubjectProgress{Subject: s.Subject})
		}
		sp := &sum.Subjects[i]
		sp.Total++
		sum.Total++
		if s.Completed {
			sp.Completed++
			sum.Completed++
		} else if sp.Next == nil || s.StartTime.Before(sp.Next.StartTime) {
			next := s
			sp.Next = &next
		}
	}

	for i := range sum.Subjects {
		sum.Subjects[i].Percent = store.Percent(sum.Subjects[i].Completed, sum.Subjects[i].Total)
	}
	sum.CompletionRate = store.Percent(sum.Completed, sum.Total)
	sum.Upcoming = Upcoming(sessions, now)

	return sum
}

// Upcoming returns incomplete sessions starting in (now, now+3 days),
// earliest first, at most five.
func Upcoming(sessions []store.Session, now time.Time) []store.Session {
	limit := now.Add(UpcomingWindow)
	var out []store.Session
	for _, s := range sessions {
		if !s.Completed && s.StartTime.After(now) && s.StartTime.Before(limit) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	if len(out) > UpcomingLimit {
		out = out[:UpcomingLimit]
	}
	return out
}
