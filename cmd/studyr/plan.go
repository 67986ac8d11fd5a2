package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/christopherklint97/studyr/internal/calendar"
	"github.com/christopherklint97/studyr/internal/config"
	"github.com/christopherklint97/studyr/internal/planner"
	"github.com/christopherklint97/studyr/internal/quotes"
	"github.com/christopherklint97/studyr/internal/study"
	"github.com/christopherklint97/studyr/internal/subjects"
	"github.com/christopherklint97/studyr/internal/tui"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and save a study plan",
	Example: `  studyr plan --subject "Math, 2026-06-10, hard" --subject "Physics, next friday"
  studyr plan --file subjects.json --dry-run
  studyr plan --from-ics https://example.com/exams.ics --difficulty hard`,
	RunE: runPlan,
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a study plan interactively",
	RunE:  runNew,
}

func init() {
	f := planCmd.Flags()
	f.Float64("hours", 0, "daily study hours (defaults to plan.daily_hours)")
	f.StringArray("subject", nil, `subject as "name, exam date[, difficulty]" (repeatable)`)
	f.String("file", "", "JSON file with subjects")
	f.String("from-ics", "", "import exams from an iCalendar URL or file")
	f.String("difficulty", string(planner.Medium), "difficulty for imported exams")
	f.Bool("dry-run", false, "print the plan without saving it")
	f.Bool("json", false, "print the plan as JSON")
	f.Bool("remember", false, "save --hours as the default daily hours")
}

// planInput gathers subjects from every source the flags name, in the
// order file, --subject, --from-ics.
type planInput struct {
	File       string
	Lines      []string
	ICS        string
	Difficulty string
	Hours      float64
}

func collectSubjects(ctx context.Context, in planInput, now time.Time) (subjects.List, float64, error) {
	var list subjects.List
	hours := in.Hours

	if in.File != "" {
		f, err := subjects.LoadFile(in.File)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, f.List()...)
		if hours == 0 {
			hours = f.DailyHours
		}
	}

	for _, line := range in.Lines {
		e, err := subjects.ParseLine(line)
		if err != nil {
			return nil, 0, err
		}
		list = list.Add(e)
	}

	if in.ICS != "" {
		diff, err := planner.ParseDifficulty(in.Difficulty)
		if err != nil {
			return nil, 0, err
		}
		events, err := calendar.Fetch(ctx, in.ICS, now, now.AddDate(0, 0, planner.MaxDays))
		if err != nil {
			return nil, 0, err
		}
		list = append(list, subjects.FromEvents(events, diff)...)
	}

	return list, hours, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	var in planInput
	in.Hours, _ = f.GetFloat64("hours")
	in.Lines, _ = f.GetStringArray("subject")
	in.File, _ = f.GetString("file")
	in.ICS, _ = f.GetString("from-ics")
	in.Difficulty, _ = f.GetString("difficulty")
	dryRun, _ := f.GetBool("dry-run")
	asJSON, _ := f.GetBool("json")
	remember, _ := f.GetBool("remember")

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	list, hours, err := collectSubjects(ctx, in, time.Now())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no subjects given; use --subject, --file or --from-ics")
	}
	if hours == 0 {
		hours = e.cfg.Plan.DailyHours
	}

	res, err := e.svc.CreatePlan(ctx, study.Request{Subjects: list, DailyHours: hours, DryRun: dryRun})
	if err != nil {
		return err
	}

	if remember && in.Hours > 0 {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if err := config.SaveDailyHours(path, in.Hours); err != nil {
			return fmt.Errorf("saving daily hours: %w", err)
		}
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printPlan(res)
	if dryRun {
		fmt.Println("\nDry run: nothing was saved.")
	}
	return nil
}

func printPlan(res *study.Result) {
	plan := res.Plan

	fmt.Println("Subjects by priority:")
	for _, s := range res.Inputs {
		fmt.Printf("  %-20s %-6s  exam in %2d days  priority %6.2f  ~%.1fh needed\n",
			s.Name, s.Difficulty, s.DaysUntilExam, s.PriorityScore, s.HoursNeeded)
	}

	fmt.Printf("\n%d sessions over %d days (%.1fh/day):\n\n", len(plan.Sessions), plan.TotalDays, plan.DailyHours)
	for _, s := range plan.Sessions {
		tag := ""
		if s.IsRevision {
			tag = "  [revision]"
		}
		fmt.Printf("  Day %2d  %s-%s  %-20s %5.2fh%s\n",
			s.DayNumber,
			s.StartTime.Format("Mon Jan 02 15:04"),
			s.EndTime.Format("15:04"),
			s.Subject, s.Hours(), tag)
	}
}

func runNew(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	app := tui.NewApp(e.svc, "", e.cfg.Plan.DailyHours, quotes.Random(nil).String())
	if _, err := tea.NewProgram(app).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	if result := app.GetResult(); result != nil && result.Cancelled {
		fmt.Println("No plan saved.")
	}
	return nil
}
