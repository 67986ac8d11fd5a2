package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/christopherklint97/studyr/internal/config"
	"github.com/christopherklint97/studyr/internal/logger"
	"github.com/christopherklint97/studyr/internal/planner"
	"github.com/christopherklint97/studyr/internal/store"
	"github.com/christopherklint97/studyr/internal/study"
)

var (
	dbFlag       string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:           "studyr",
	Short:         "Exam study planner",
	Long:          "studyr turns your subjects and exam dates into a day-by-day study schedule, tracks completed sessions and reminds you before each one.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "path to the session database")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(planCmd, newCmd, sessionsCmd, completeCmd, progressCmd, trackCmd,
		exportCmd, remindCmd, stopCmd, serveCmd, quoteCmd, schemaCmd, resetCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is what most commands need: config, logger, the database and the
// study service built on it.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *store.DB
	svc    *study.Service
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	path, err := dbPath(cfg)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(path, log)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	gen := &planner.Generator{Stagger: cfg.Plan.StaggerSessions}
	return &env{
		cfg:    cfg,
		logger: log,
		db:     db,
		svc:    study.NewService(db, gen, log),
	}, nil
}

func (e *env) Close() {
	e.db.Close()
	e.logger.Sync()
}

// dbPath resolves --db, then STUDYR_DB or store.path, then the XDG default.
func dbPath(cfg *config.Config) (string, error) {
	if dbFlag != "" {
		return dbFlag, nil
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path, nil
	}
	return store.DefaultPath()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
