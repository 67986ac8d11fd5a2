// Package study is the application layer shared by the CLI, the terminal
// UI and the HTTP API.
package study

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/christopherklint97/studyr/internal/planner"
	"github.com/christopherklint97/studyr/internal/progress"
	"github.com/christopherklint97/studyr/internal/store"
	"github.com/christopherklint97/studyr/internal/subjects"
)

// Store is everything the service needs from persistence.
type Store interface {
	store.SessionStore
	SavePlan(ctx context.Context, plan *planner.Plan) (store.PlanRecord, error)
	DeleteAll(ctx context.Context) error
}

type Request struct {
	Subjects   subjects.List
	DailyHours float64
	DryRun     bool
}

type Result struct {
	Plan   *planner.Plan     `json:"plan"`
	Record *store.PlanRecord `json:"record,omitempty"`
	Inputs []planner.Subject `json:"subjects"`
}

type Service struct {
	store  Store
	gen    *planner.Generator
	cache  *progress.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewService(st Store, gen *planner.Generator, logger *zap.Logger) *Service {
	if gen == nil {
		gen = &planner.Generator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  st,
		gen:    gen,
		cache:  progress.NewCache(30 * time.Second),
		logger: logger,
		now:    time.Now,
	}
}

// CreatePlan validates the request, generates a plan and saves it unless
// DryRun is set. New sessions are appended to any existing ones.
func (s *Service) CreatePlan(ctx context.Context, req Request) (*Result, error) {
	now := s.now()
	inputs, err := subjects.Validate(req.Subjects, req.DailyHours, now)
	if err != nil {
		return nil, err
	}

	gen := *s.gen
	if gen.Now == nil {
		gen.Now = s.now
	}

	plan, err := gen.Generate(inputs, req.DailyHours)
	if err != nil {
		return nil, fmt.Errorf("generating plan: %w", err)
	}

	res := &Result{Plan: plan, Inputs: gen.Prioritize(inputs, req.DailyHours)}
	if req.DryRun {
		return res, nil
	}

	rec, err := s.store.SavePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	res.Record = &rec

	s.logger.Info("plan saved",
		zap.String("plan", rec.ID),
		zap.Int("sessions", rec.SessionCount),
		zap.Int("days", rec.TotalDays))
	return res, nil
}

func (s *Service) Sessions(ctx context.Context) ([]store.Session, error) {
	return s.store.ListSessions(ctx)
}

// Complete marks the next pending session of subject as done.
func (s *Service) Complete(ctx context.Context, subject string) (store.Session, error) {
	sess, err := s.store.MarkComplete(ctx, subject)
	if err != nil {
		return store.Session{}, err
	}
	s.cache.Invalidate()
	s.logger.Info("session completed", zap.String("session", sess.ID), zap.String("subject", subject))
	return sess, nil
}

func (s *Service) Progress(ctx context.Context) (progress.Summary, error) {
	if sum, ok := s.cache.Get(); ok {
		return sum, nil
	}

	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return progress.Summary{}, err
	}
	sum := progress.Summarize(sessions, s.now())
	s.cache.Set(sum)
	return sum, nil
}

func (s *Service) CompletionRate(ctx context.Context) (int, error) {
	return s.store.CompletionRate(ctx)
}

// Reset deletes every plan and session.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	s.cache.Invalidate()
	s.logger.Info("all plans deleted")
	return nil
}
