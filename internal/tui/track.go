package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/studyr/internal/progress"
	"github.com/christopherklint97/studyr/internal/store"
)

type summaryMsg struct {
	summary progress.Summary
	err     error
}

type completedMsg struct {
	session store.Session
	err     error
}

// Tracker is the `studyr track` screen: per-subject progress bars with a
// key to complete the next session of the selected subject.
type Tracker struct {
	planner Planner
	summary progress.Summary
	bar     bar.Model
	cursor  int
	loaded  bool
	status  string
	errMsg  string
	quote   string
}

func NewTracker(planner Planner, quote string) *Tracker {
	return &Tracker{
		planner: planner,
		bar:     bar.New(bar.WithDefaultGradient(), bar.WithWidth(30)),
		quote:   quote,
	}
}

func (t *Tracker) Init() tea.Cmd {
	return t.load
}

func (t *Tracker) load() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sum, err := t.planner.Progress(ctx)
	return summaryMsg{summary: sum, err: err}
}

func (t *Tracker) complete(subject string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sess, err := t.planner.Complete(ctx, subject)
		return completedMsg{session: sess, err: err}
	}
}

func (t *Tracker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.bar.Width = max(10, min(msg.Width-40, 40))
		return t, nil

	case summaryMsg:
		t.loaded = true
		if msg.err != nil {
			t.errMsg = msg.err.Error()
			return t, nil
		}
		t.summary = msg.summary
		t.cursor = min(t.cursor, max(0, len(t.summary.Subjects)-1))
		return t, nil

	case completedMsg:
		switch {
		case errors.Is(msg.err, store.ErrNoPendingSession):
			t.status = "Nothing left to complete for that subject."
		case msg.err != nil:
			t.errMsg = msg.err.Error()
		default:
			t.status = fmt.Sprintf("Completed day %d of %s.", msg.session.DayNumber, msg.session.Subject)
		}
		return t, t.load

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return t, tea.Quit
		case "up", "k":
			if t.cursor > 0 {
				t.cursor--
			}
		case "down", "j":
			if t.cursor < len(t.summary.Subjects)-1 {
				t.cursor++
			}
		case "c", "enter":
			if sp, ok := t.selected(); ok {
				t.errMsg = ""
				return t, t.complete(sp.Subject)
			}
		case "r":
			return t, t.load
		}
	}
	return t, nil
}

func (t *Tracker) selected() (progress.SubjectProgress, bool) {
	if t.cursor < 0 || t.cursor >= len(t.summary.Subjects) {
		return progress.SubjectProgress{}, false
	}
	return t.summary.Subjects[t.cursor], true
}

func (t *Tracker) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("studyr - Progress"))
	b.WriteString("\n")

	if !t.loaded {
		b.WriteString(dimStyle.Render("Loading..."))
		return b.String()
	}

	sum := t.summary
	if sum.Total == 0 {
		b.WriteString(dimStyle.Render("No sessions yet. Run `studyr new` to create a plan."))
		b.WriteString("\n" + helpStyle.Render("[q] quit"))
		return b.String()
	}

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Overall %d%% (%d of %d sessions)",
		sum.CompletionRate, sum.Completed, sum.Total)))
	b.WriteString("\n")

	for i, sp := range sum.Subjects {
		prefix := "  "
		name := fmt.Sprintf("%-18s", sp.Subject)
		if i == t.cursor {
			prefix = "> "
			name = highlightStyle.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s %3d%%  %d/%d", prefix, name, t.bar.ViewAs(float64(sp.Percent)/100), sp.Percent, sp.Completed, sp.Total)
		if sp.Next != nil {
			b.WriteString(dimStyle.Render("  next " + sp.Next.StartTime.Local().Format("Mon Jan 2 15:04")))
		}
		b.WriteString("\n")
	}

	if len(sum.Upcoming) > 0 {
		b.WriteString("\n" + labelStyle.Render("Upcoming") + "\n")
		for _, s := range sum.Upcoming {
			line := fmt.Sprintf("  %s  %s (%.1fh)", s.StartTime.Local().Format("Mon 15:04"), s.Subject, s.Hours())
			if s.IsRevision {
				line += " " + revisionStyle.Render("revision")
			}
			b.WriteString(line + "\n")
		}
	}

	if t.status != "" {
		b.WriteString("\n" + successStyle.Render(t.status))
	}
	if t.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render("Error: ") + t.errMsg)
	}
	if t.quote != "" {
		b.WriteString("\n" + quoteStyle.Render(t.quote))
	}
	b.WriteString("\n" + helpStyle.Render("↑/↓ select • [c] complete next session • [r] refresh • [q] quit"))
	return b.String()
}
