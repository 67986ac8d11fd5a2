package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/christopherklint97/studyr/internal/ai"
	"github.com/christopherklint97/studyr/internal/config"
	"github.com/christopherklint97/studyr/internal/quotes"
	"github.com/christopherklint97/studyr/internal/scheduler"
	"github.com/christopherklint97/studyr/internal/server"
	"github.com/christopherklint97/studyr/internal/subjects"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the session reminder loop",
	RunE:  runRemind,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running reminder loop",
	RunE:  runStop,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run reminders",
	RunE:  runServe,
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Print a motivational quote",
	RunE:  runQuote,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema for subject files",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := subjects.SchemaJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (defaults to server.addr)")
	serveCmd.Flags().Bool("no-reminders", false, "serve the API without the reminder loop")
	quoteCmd.Flags().Bool("ai", false, "ask the configured AI provider for a quote about your progress")
}

func runRemind(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signalContext()
	defer cancel()

	sched := scheduler.New(e.cfg.Notifications, e.db, scheduler.DesktopNotifier{}, e.logger)
	fmt.Printf("Reminders running (every %d min, %d min ahead). Press Ctrl+C to stop.\n",
		e.cfg.Notifications.CheckMinutes, e.cfg.Notifications.LeadMinutes)
	return sched.Run(ctx)
}

func runStop(cmd *cobra.Command, args []string) error {
	pid, err := scheduler.ReadPID()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending stop signal: %w", err)
	}

	fmt.Printf("Sent stop signal to studyr (PID %d)\n", pid)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	noReminders, _ := cmd.Flags().GetBool("no-reminders")

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if addr == "" {
		addr = e.cfg.Server.Addr
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.NewHandler(e.svc, e.cfg.Plan.DailyHours), e.logger)

	ctx, cancel := signalContext()
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(ctx, addr, router, e.logger)
	})
	if e.cfg.Notifications.Enabled && !noReminders {
		sched := scheduler.New(e.cfg.Notifications, e.db, scheduler.DesktopNotifier{}, e.logger)
		g.Go(func() error {
			return sched.Run(ctx)
		})
	}

	fmt.Printf("Serving on http://%s\n", addr)
	return g.Wait()
}

func runQuote(cmd *cobra.Command, args []string) error {
	useAI, _ := cmd.Flags().GetBool("ai")
	if !useAI {
		fmt.Println(quotes.Random(nil))
		return nil
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Println(aiQuote(cmd.Context(), e))
	return nil
}

// aiQuote asks the configured provider for a quote and falls back to a
// built-in one on any failure.
func aiQuote(ctx context.Context, e *env) string {
	provider, err := ai.New(e.cfg.AI, e.logger)
	if err != nil {
		e.logger.Warn("AI provider unavailable", zap.Error(err))
		return quotes.Random(nil).String()
	}

	sum, err := e.svc.Progress(ctx)
	if err != nil {
		e.logger.Warn("loading progress", zap.Error(err))
		return quotes.Random(nil).String()
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	m, err := provider.Motivate(ctx, sum)
	if err != nil {
		e.logger.Warn("AI quote failed", zap.Error(err))
		return quotes.Random(nil).String()
	}
	return quotes.Quote{Text: m.Quote, Author: m.Author}.String()
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.WriteDefault(configPath); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	editorPath, err := exec.LookPath(editor)
	if err != nil {
		fmt.Printf("Could not find %s. Config file is at: %s\n", editor, configPath)
		return nil
	}
	process, err := os.StartProcess(editorPath, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
