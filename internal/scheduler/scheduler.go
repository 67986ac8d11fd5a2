// Package scheduler runs the reminder loop that announces upcoming study
// sessions.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/christopherklint97/studyr/internal/calendar"
	"github.com/christopherklint97/studyr/internal/config"
	"github.com/christopherklint97/studyr/internal/store"
)

// Store is the subset of the session store the reminder loop needs.
type Store interface {
	PendingBetween(ctx context.Context, from, to time.Time) ([]store.Session, error)
	MarkNotified(ctx context.Context, id string) error
}

type Scheduler struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	lead     time.Duration
	interval time.Duration
	now      func() time.Time
}

func New(cfg config.NotifyConfig, st Store, notifier Notifier, logger *zap.Logger) *Scheduler {
	lead := time.Duration(cfg.LeadMinutes) * time.Minute
	if lead <= 0 {
		lead = 15 * time.Minute
	}
	interval := time.Duration(cfg.CheckMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		store:    st,
		notifier: notifier,
		logger:   logger,
		lead:     lead,
		interval: interval,
		now:      time.Now,
	}
}

// Run checks for upcoming sessions on every aligned tick until ctx is
// cancelled. It writes a PID file so `studyr stop` can find it.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePID()

	s.logger.Info("reminders started",
		zap.Duration("interval", s.interval),
		zap.Duration("lead", s.lead))

	s.Check(ctx)

	for {
		next := nextAlignedTick(s.now(), s.interval)
		s.logger.Debug("next reminder check", zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("reminders stopped")
			return nil
		case <-timer.C:
		}

		s.Check(ctx)
	}
}

// Check notifies once for every incomplete session starting within the
// lead window and returns how many were sent. The window never ends
// before the next tick, so a lead shorter than the check interval still
// catches sessions that start between ticks.
func (s *Scheduler) Check(ctx context.Context) int {
	now := s.now()
	window := max(s.lead, s.interval)
	pending, err := s.store.PendingBetween(ctx, now, now.Add(window))
	if err != nil {
		s.logger.Error("loading pending sessions", zap.Error(err))
		return 0
	}

	sent := 0
	for _, sess := range pending {
		msg := fmt.Sprintf("%s starts at %s (%.1fh)",
			calendar.Summary(sess), sess.StartTime.Local().Format("15:04"), sess.Hours())

		if err := s.notifier.Notify("Time to study", msg); err != nil {
			s.logger.Warn("sending notification", zap.String("session", sess.ID), zap.Error(err))
			continue
		}
		if err := s.store.MarkNotified(ctx, sess.ID); err != nil {
			s.logger.Error("marking session notified", zap.String("session", sess.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

func nextAlignedTick(now time.Time, interval time.Duration) time.Time {
	mins := int(interval.Minutes())
	if mins <= 0 {
		mins = 60
	}

	nextMinute := ((now.Minute() / mins) + 1) * mins

	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	return next.Add(time.Duration(nextMinute) * time.Minute)
}
