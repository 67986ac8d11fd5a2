package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/christopherklint97/studyr/internal/calendar"
	"github.com/christopherklint97/studyr/internal/export"
	"github.com/christopherklint97/studyr/internal/quotes"
	"github.com/christopherklint97/studyr/internal/store"
	"github.com/christopherklint97/studyr/internal/tui"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved study sessions",
	RunE:  runSessions,
}

var completeCmd = &cobra.Command{
	Use:   "complete <subject>",
	Short: "Mark the next session of a subject as done",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show completion per subject",
	RunE:  runProgress,
}

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track progress interactively",
	RunE:  runTrack,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions as iCalendar or Excel",
	RunE:  runExport,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all plans and sessions",
	RunE:  runReset,
}

func init() {
	sessionsCmd.Flags().Bool("pending", false, "only show incomplete sessions")
	progressCmd.Flags().Bool("json", false, "print progress as JSON")
	exportCmd.Flags().String("format", "ics", "export format: ics or xlsx")
	exportCmd.Flags().StringP("output", "o", "", "output file (ics defaults to stdout, xlsx to studyr.xlsx)")
	resetCmd.Flags().Bool("yes", false, "do not ask for confirmation")
}

func runSessions(cmd *cobra.Command, args []string) error {
	pending, _ := cmd.Flags().GetBool("pending")

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	sessions, err := e.svc.Sessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	shown := 0
	for _, s := range sessions {
		if pending && s.Completed {
			continue
		}
		printSession(s)
		shown++
	}

	if shown == 0 {
		fmt.Println("No sessions found.")
		return nil
	}
	fmt.Printf("\n%d sessions\n", shown)
	return nil
}

func printSession(s store.Session) {
	mark := "[ ]"
	if s.Completed {
		mark = "[x]"
	}
	start := s.StartTime.Local()
	fmt.Printf("  %s %s %s-%s  %-24s %5.2fh\n",
		mark,
		start.Format("Mon Jan 02"),
		start.Format("15:04"),
		s.EndTime.Local().Format("15:04"),
		calendar.Summary(s),
		s.Hours(),
	)
}

func runComplete(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.svc.Complete(cmd.Context(), args[0])
	if errors.Is(err, store.ErrNoPendingSession) {
		return fmt.Errorf("no pending session for %q", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Printf("Completed %s on %s (%.2fh).\n",
		calendar.Summary(sess), sess.StartTime.Local().Format("Mon Jan 02 15:04"), sess.Hours())

	rate, err := e.svc.CompletionRate(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Overall progress: %d%%\n", rate)
	return nil
}

func runProgress(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	sum, err := e.svc.Progress(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	if sum.Total == 0 {
		fmt.Println("No sessions yet. Run `studyr plan` or `studyr new`.")
		return nil
	}

	fmt.Printf("Overall: %d%% (%d of %d sessions)\n\n", sum.CompletionRate, sum.Completed, sum.Total)
	for _, sp := range sum.Subjects {
		next := "done"
		if sp.Next != nil {
			next = "next " + sp.Next.StartTime.Local().Format("Mon Jan 02 15:04")
		}
		fmt.Printf("  %-20s %3d%%  %d/%d  %s\n", sp.Subject, sp.Percent, sp.Completed, sp.Total, next)
	}

	if len(sum.Upcoming) > 0 {
		fmt.Println("\nUpcoming:")
		for _, s := range sum.Upcoming {
			printSession(s)
		}
	}

	fmt.Println()
	fmt.Println(quotes.Random(nil))
	return nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	tracker := tui.NewTracker(e.svc, quotes.Random(nil).String())
	if _, err := tea.NewProgram(tracker).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	sessions, err := e.svc.Sessions(ctx)
	if err != nil {
		return err
	}

	switch format {
	case "ics":
		w := io.Writer(os.Stdout)
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return calendar.Export(w, sessions, time.Now())

	case "xlsx":
		sum, err := e.svc.Progress(ctx)
		if err != nil {
			return err
		}
		buf, err := export.Workbook(sessions, sum)
		if err != nil {
			return err
		}
		if output == "" {
			output = "studyr.xlsx"
		}
		if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Printf("Wrote %d sessions to %s\n", len(sessions), output)
		return nil

	default:
		return fmt.Errorf("unknown format %q (use ics or xlsx)", format)
	}
}

func runReset(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && !confirm(os.Stdin, "Delete all plans and sessions? [y/N] ") {
		fmt.Println("Aborted.")
		return nil
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.svc.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("All plans and sessions deleted.")
	return nil
}

func confirm(r io.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(r).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
