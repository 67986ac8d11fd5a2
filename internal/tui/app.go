// Package tui holds the interactive terminal screens.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/christopherklint97/studyr/internal/progress"
	"github.com/christopherklint97/studyr/internal/store"
	"github.com/christopherklint97/studyr/internal/study"
	"github.com/christopherklint97/studyr/internal/subjects"
)

// Planner is the part of the study service the screens use.
type Planner interface {
	CreatePlan(ctx context.Context, req study.Request) (*study.Result, error)
	Progress(ctx context.Context) (progress.Summary, error)
	Complete(ctx context.Context, subject string) (store.Session, error)
}

type viewState int

const (
	inputView viewState = iota
	loadingView
	previewView
	confirmationView
)

type Result struct {
	Cancelled bool
	Plan      *study.Result
}

type planMsg struct {
	result *study.Result
	saved  bool
	err    error
}

// App is the `studyr new` screen: enter subjects, preview the plan, save it.
type App struct {
	state   viewState
	input   inputModel
	spinner spinner.Model
	preview *study.Result
	request study.Request
	result  *Result
	errMsg  string
	quote   string

	planner Planner
}

func NewApp(planner Planner, prefill string, dailyHours float64, quote string) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &App{
		state:   inputView,
		input:   newInputModel(prefill, dailyHours),
		spinner: s,
		planner: planner,
		quote:   quote,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.input.textarea.Focus(), a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsMsg, ok := msg.(tea.WindowSizeMsg); ok {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(wsMsg)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.result = &Result{Cancelled: true}
			return a, tea.Quit
		}
	case planMsg:
		return a.handlePlan(msg)
	}

	switch a.state {
	case inputView:
		return a.updateInput(msg)
	case loadingView:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case previewView:
		return a.updatePreview(msg)
	case confirmationView:
		if _, ok := msg.(tea.KeyMsg); ok {
			return a, tea.Quit
		}
	}

	return a, nil
}

func (a *App) View() string {
	switch a.state {
	case inputView:
		view := a.input.View()
		if a.errMsg != "" {
			view += "\n" + errorStyle.Render(a.errMsg)
		}
		return view
	case loadingView:
		return a.spinner.View() + " Building your plan..."
	case previewView:
		return a.previewView()
	case confirmationView:
		var b strings.Builder
		if a.errMsg != "" {
			b.WriteString(errorStyle.Render("Error: ") + a.errMsg)
		} else {
			b.WriteString(successStyle.Render(fmt.Sprintf("Saved %d sessions over %d days.",
				len(a.preview.Plan.Sessions), a.preview.Plan.TotalDays)))
		}
		if a.quote != "" {
			b.WriteString("\n" + quoteStyle.Render(a.quote))
		}
		b.WriteString("\n" + helpStyle.Render("Press any key to exit"))
		return b.String()
	}
	return ""
}

func (a *App) GetResult() *Result {
	return a.result
}

func (a *App) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+s" {
		list, err := subjects.ParseLines(a.input.Value())
		if err != nil {
			a.errMsg = err.Error()
			return a, nil
		}
		a.errMsg = ""
		a.request = study.Request{Subjects: list, DailyHours: a.input.Hours(), DryRun: true}
		a.state = loadingView
		return a, tea.Batch(a.spinner.Tick, a.createPlan(a.request))
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	switch keyMsg.String() {
	case "y", "enter":
		req := a.request
		req.DryRun = false
		a.state = loadingView
		return a, tea.Batch(a.spinner.Tick, a.createPlan(req))
	case "e":
		a.state = inputView
		return a, a.input.textarea.Focus()
	case "q", "esc":
		a.result = &Result{Cancelled: true}
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handlePlan(msg planMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.saved {
			a.state = confirmationView
		} else {
			a.state = inputView
		}
		a.errMsg = msg.err.Error()
		return a, nil
	}

	a.preview = msg.result
	if msg.saved {
		a.result = &Result{Plan: msg.result}
		a.state = confirmationView
		return a, nil
	}
	a.state = previewView
	return a, nil
}

func (a *App) createPlan(req study.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := a.planner.CreatePlan(ctx, req)
		return planMsg{result: res, saved: !req.DryRun, err: err}
	}
}

const previewLimit = 12

func (a *App) previewView() string {
	plan := a.preview.Plan

	var b strings.Builder
	b.WriteString(titleStyle.Render("Plan Preview"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%d sessions over %d days at %.1fh/day",
		len(plan.Sessions), plan.TotalDays, plan.DailyHours)))
	b.WriteString("\n")

	for _, s := range a.preview.Inputs {
		fmt.Fprintf(&b, "%-20s %s  priority %.1f  ~%.1fh needed\n",
			s.Name, dimStyle.Render(string(s.Difficulty)), s.PriorityScore, s.HoursNeeded)
	}
	b.WriteString("\n")

	for i, s := range plan.Sessions {
		if i == previewLimit {
			b.WriteString(dimStyle.Render(fmt.Sprintf("... and %d more", len(plan.Sessions)-previewLimit)))
			b.WriteString("\n")
			break
		}
		line := fmt.Sprintf("Day %2d  %s  %-20s %.1fh",
			s.DayNumber, s.StartTime.Format("Mon Jan 2 15:04"), s.Subject, s.Hours())
		if s.IsRevision {
			line += " " + revisionStyle.Render("revision")
		}
		b.WriteString(line + "\n")
	}

	if len(plan.Sessions) == 0 {
		b.WriteString(dimStyle.Render("No sessions fit your daily hours.") + "\n")
	}

	b.WriteString(helpStyle.Render("[y] save • [e] edit • [q] quit"))
	return b.String()
}
