package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/studyr/internal/store"
)

var now = time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)

func session(subject string, hoursFromNow int, completed bool) store.Session {
	start := now.Add(time.Duration(hoursFromNow) * time.Hour)
	return store.Session{
		ID:        subject + start.Format("0102T15"),
		Subject:   subject,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Completed: completed,
	}
}

func TestSummarize(t *testing.T) {
	sessions := []store.Session{
		session("Math", -48, true),
		session("Math", -24, true),
		session("Physics", -20, false),
		session("Math", 24, false),
		session("Physics", 30, false),
		session("Math", 100, false),
	}

	sum := Summarize(sessions, now)
	assert.Equal(t, 6, sum.Total)
	assert.Equal(t, 2, sum.Completed)
	assert.Equal(t, 33, sum.CompletionRate)

	require.Len(t, sum.Subjects, 2)
	math := sum.Subjects[0]
	assert.Equal(t, "Math", math.Subject)
	assert.Equal(t, 4, math.Total)
	assert.Equal(t, 2, math.Completed)
	assert.Equal(t, 50, math.Percent)
	assert.Equal(t, 2, math.Remaining())
	require.NotNil(t, math.Next)
	assert.Equal(t, now.Add(24*time.Hour), math.Next.StartTime)

	physics := sum.Subjects[1]
	assert.Equal(t, 0, physics.Percent)
	require.NotNil(t, physics.Next)
	// The overdue session is still the next one to complete.
	assert.Equal(t, now.Add(-20*time.Hour), physics.Next.StartTime)

	// Past and beyond-three-day sessions are not upcoming.
	require.Len(t, sum.Upcoming, 2)
	assert.Equal(t, "Math", sum.Upcoming[0].Subject)
	assert.Equal(t, "Physics", sum.Upcoming[1].Subject)
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil, now)
	assert.Equal(t, 0, sum.CompletionRate)
	assert.Empty(t, sum.Subjects)
	assert.Empty(t, sum.Upcoming)
}

func TestUpcoming_Limit(t *testing.T) {
	var sessions []store.Session
	for i := 10; i > 0; i-- {
		sessions = append(sessions, session("Math", i, false))
	}

	up := Upcoming(sessions, now)
	require.Len(t, up, UpcomingLimit)
	assert.Equal(t, now.Add(time.Hour), up[0].StartTime)
	assert.Equal(t, now.Add(5*time.Hour), up[4].StartTime)
}

func TestCache(t *testing.T) {
	c := NewCache(time.Minute)
	clock := now
	c.now = func() time.Time { return clock }

	_, ok := c.Get()
	assert.False(t, ok)

	c.Set(Summary{Total: 3})
	got, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, 3, got.Total)

	clock = clock.Add(2 * time.Minute)
	_, ok = c.Get()
	assert.False(t, ok)

	c.Set(Summary{Total: 4})
	c.Invalidate()
	_, ok = c.Get()
	assert.False(t, ok)
}
