package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/christopherklint97/studyr/internal/config"
	"github.com/christopherklint97/studyr/internal/store"
)

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Notify(title, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

func TestNextAlignedTick(t *testing.T) {
	tests := []struct {
		now      time.Time
		interval time.Duration
		want     time.Time
	}{
		{
			now:      time.Date(2026, 6, 1, 9, 3, 0, 0, time.UTC),
			interval: 5 * time.Minute,
			want:     time.Date(2026, 6, 1, 9, 5, 0, 0, time.UTC),
		},
		{
			now:      time.Date(2026, 6, 1, 9, 5, 0, 0, time.UTC),
			interval: 5 * time.Minute,
			want:     time.Date(2026, 6, 1, 9, 10, 0, 0, time.UTC),
		},
		{
			now:      time.Date(2026, 6, 1, 9, 59, 0, 0, time.UTC),
			interval: 15 * time.Minute,
			want:     time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			now:      time.Date(2026, 6, 1, 23, 40, 0, 0, time.UTC),
			interval: 0,
			want:     time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, nextAlignedTick(tt.now, tt.interval))
	}
}

func newTestScheduler(t *testing.T, n Notifier, now time.Time) (*Scheduler, *store.DB) {
	t.Helper()
	return newTestSchedulerWith(t, config.NotifyConfig{Enabled: true, LeadMinutes: 30, CheckMinutes: 5}, n, now)
}

func newTestSchedulerWith(t *testing.T, cfg config.NotifyConfig, n Notifier, now time.Time) (*Scheduler, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "studyr.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(cfg, db, n, zap.NewNop())
	s.now = func() time.Time { return now }
	return s, db
}

func TestCheck_NotifiesOnce(t *testing.T) {
	now := time.Date(2026, 6, 1, 8, 45, 0, 0, time.Local)
	n := &fakeNotifier{}
	s, db := newTestScheduler(t, n, now)
	ctx := context.Background()

	_, err := db.AppendSession(ctx, "Math", now.Add(15*time.Minute), now.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = db.AppendSession(ctx, "Physics", now.Add(3*time.Hour), now.Add(4*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, s.Check(ctx))
	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "Math starts at 09:00")

	assert.Equal(t, 0, s.Check(ctx))
	assert.Len(t, n.messages, 1)
}

func TestCheck_LeadShorterThanInterval(t *testing.T) {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
	n := &fakeNotifier{}
	cfg := config.NotifyConfig{Enabled: true, LeadMinutes: 5, CheckMinutes: 15}
	s, db := newTestSchedulerWith(t, cfg, n, start.Add(-30*time.Minute))
	ctx := context.Background()

	_, err := db.AppendSession(ctx, "Math", start, start.Add(time.Hour))
	require.NoError(t, err)

	sent := 0
	for _, tick := range []time.Time{
		start.Add(-30 * time.Minute),
		start.Add(-15 * time.Minute),
		start.Add(time.Millisecond),
	} {
		s.now = func() time.Time { return tick }
		sent += s.Check(ctx)
	}

	assert.Equal(t, 1, sent)
	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "Math")
}

func TestCheck_SkipsCompleted(t *testing.T) {
	now := time.Date(2026, 6, 1, 8, 45, 0, 0, time.Local)
	n := &fakeNotifier{}
	s, db := newTestScheduler(t, n, now)
	ctx := context.Background()

	_, err := db.AppendSession(ctx, "Math", now.Add(10*time.Minute), now.Add(time.Hour))
	require.NoError(t, err)
	_, err = db.MarkComplete(ctx, "Math")
	require.NoError(t, err)

	assert.Equal(t, 0, s.Check(ctx))
	assert.Empty(t, n.messages)
}

func TestCheck_NotifierFailureRetriesLater(t *testing.T) {
	now := time.Date(2026, 6, 1, 8, 45, 0, 0, time.Local)
	n := &fakeNotifier{err: errors.New("no notification daemon")}
	s, db := newTestScheduler(t, n, now)
	ctx := context.Background()

	_, err := db.AppendSession(ctx, "Math", now.Add(10*time.Minute), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 0, s.Check(ctx))

	n.err = nil
	assert.Equal(t, 1, s.Check(ctx))
}

func TestRun_WritesAndRemovesPID(t *testing.T) {
	t.Setenv("STUDYR_CONFIG_DIR", t.TempDir())

	s, _ := newTestScheduler(t, &fakeNotifier{}, time.Now())
	s.now = time.Now

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		pid, err := ReadPID()
		return err == nil && pid > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	_, err := ReadPID()
	assert.Error(t, err)
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STUDYR_CONFIG_DIR", dir)
	require.NoError(t, writePID())

	pid, err := ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "studyr.pid"), []byte("garbage"), 0644))
	_, err = ReadPID()
	assert.Error(t, err)
}
