package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/studyr/internal/planner"
	"github.com/christopherklint97/studyr/internal/progress"
	"github.com/christopherklint97/studyr/internal/store"
	"github.com/christopherklint97/studyr/internal/study"
)

type mockPlanner struct {
	requests    []study.Request
	planErr     error
	summary     progress.Summary
	completed   []string
	completeErr error
}

func (m *mockPlanner) CreatePlan(_ context.Context, req study.Request) (*study.Result, error) {
	m.requests = append(m.requests, req)
	if m.planErr != nil {
		return nil, m.planErr
	}
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
	return &study.Result{Plan: &planner.Plan{
		TotalDays:  1,
		DailyHours: req.DailyHours,
		Sessions: []planner.Session{
			{Subject: "Math", StartTime: start, EndTime: start.Add(time.Hour), DayNumber: 1, IsRevision: true},
		},
	}}, nil
}

func (m *mockPlanner) Progress(_ context.Context) (progress.Summary, error) {
	return m.summary, nil
}

func (m *mockPlanner) Complete(_ context.Context, subject string) (store.Session, error) {
	if m.completeErr != nil {
		return store.Session{}, m.completeErr
	}
	m.completed = append(m.completed, subject)
	return store.Session{Subject: subject, DayNumber: 1, Completed: true}, nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_PreviewThenSave(t *testing.T) {
	m := &mockPlanner{}
	app := NewApp(m, "Math, 2026-06-10, hard", 2.5, "Keep going.")

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Equal(t, loadingView, app.state)
	assert.True(t, app.request.DryRun)
	assert.Equal(t, 2.5, app.request.DailyHours)
	require.Len(t, app.request.Subjects, 1)
	assert.Equal(t, "hard", app.request.Subjects[0].Difficulty)

	app.Update(app.createPlan(app.request)())
	require.Equal(t, previewView, app.state)
	assert.Contains(t, app.View(), "Plan Preview")
	assert.Contains(t, app.View(), "revision")

	app.Update(key("y"))
	require.Equal(t, loadingView, app.state)

	req := app.request
	req.DryRun = false
	app.Update(app.createPlan(req)())
	require.Equal(t, confirmationView, app.state)
	require.NotNil(t, app.GetResult())
	assert.False(t, app.GetResult().Cancelled)
	assert.Contains(t, app.View(), "Saved 1 sessions over 1 days.")
	assert.Contains(t, app.View(), "Keep going.")

	require.Len(t, m.requests, 2)
	assert.False(t, m.requests[1].DryRun)
}

func TestApp_ParseErrorStaysOnInput(t *testing.T) {
	app := NewApp(&mockPlanner{}, "just a name", 2, "")

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, inputView, app.state)
	assert.Contains(t, app.View(), "line 1")
}

func TestApp_ValidationErrorReturnsToInput(t *testing.T) {
	m := &mockPlanner{planErr: errors.New("validation failed: add at least one subject")}
	app := NewApp(m, "", 2, "")

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	app.Update(app.createPlan(app.request)())
	assert.Equal(t, inputView, app.state)
	assert.Contains(t, app.View(), "add at least one subject")
}

func TestApp_CtrlCCancels(t *testing.T) {
	app := NewApp(&mockPlanner{}, "", 2, "")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, app.GetResult().Cancelled)
}

func TestInputModel_Hours(t *testing.T) {
	in := newInputModel("", 3)
	assert.Equal(t, 3.0, in.Hours())

	in = newInputModel("", 0)
	assert.Equal(t, 0.0, in.Hours())
}

func TestInputModel_TabTogglesFocus(t *testing.T) {
	in := newInputModel("", 3)
	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, in.hoursFocus)
	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, in.hoursFocus)
}

func trackerSummary() progress.Summary {
	next := store.Session{Subject: "Physics", StartTime: time.Date(2026, 6, 2, 9, 0, 0, 0, time.Local), EndTime: time.Date(2026, 6, 2, 10, 0, 0, 0, time.Local)}
	return progress.Summary{
		CompletionRate: 50,
		Completed:      2,
		Total:          4,
		Subjects: []progress.SubjectProgress{
			{Subject: "Math", Total: 2, Completed: 2, Percent: 100},
			{Subject: "Physics", Total: 2, Completed: 0, Percent: 0, Next: &next},
		},
		Upcoming: []store.Session{next},
	}
}

func TestTracker_CompleteSelected(t *testing.T) {
	m := &mockPlanner{summary: trackerSummary()}
	tr := NewTracker(m, "Strive for progress.")

	tr.Update(tr.load())
	assert.Contains(t, tr.View(), "Overall 50% (2 of 4 sessions)")
	assert.Contains(t, tr.View(), "Upcoming")

	tr.Update(key("j"))
	assert.Equal(t, 1, tr.cursor)
	tr.Update(key("j"))
	assert.Equal(t, 1, tr.cursor)

	_, cmd := tr.Update(key("c"))
	require.NotNil(t, cmd)
	tr.Update(cmd())
	assert.Equal(t, []string{"Physics"}, m.completed)
	assert.Contains(t, tr.View(), "Completed day 1 of Physics.")
	assert.Contains(t, tr.View(), "Strive for progress.")
}

func TestTracker_NothingPending(t *testing.T) {
	m := &mockPlanner{summary: trackerSummary(), completeErr: store.ErrNoPendingSession}
	tr := NewTracker(m, "")
	tr.Update(tr.load())

	_, cmd := tr.Update(key("c"))
	tr.Update(cmd())
	assert.Contains(t, tr.View(), "Nothing left to complete")
}

func TestTracker_Empty(t *testing.T) {
	tr := NewTracker(&mockPlanner{}, "")
	assert.Contains(t, tr.View(), "Loading")

	tr.Update(tr.load())
	assert.Contains(t, tr.View(), "No sessions yet")

	_, cmd := tr.Update(key("c"))
	assert.Nil(t, cmd)
}
