package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/christopherklint97/studyr/internal/planner"
)

// ErrNoPendingSession is returned by MarkComplete when the subject has no
// incomplete sessions left.
var ErrNoPendingSession = errors.New("no pending session for subject")

// SessionStore is the persistence contract for generated sessions.
type SessionStore interface {
	AppendSession(ctx context.Context, subject string, start, end time.Time) (Session, error)
	// MarkComplete completes the chronologically earliest incomplete
	// session for subject.
	MarkComplete(ctx context.Context, subject string) (Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
	// CompletionRate is the rounded percentage of completed sessions.
	CompletionRate(ctx context.Context) (int, error)
}

var _ SessionStore = (*DB)(nil)

type Session struct {
	ID          string     `json:"id"`
	PlanID      string     `json:"plan_id,omitempty"`
	Subject     string     `json:"subject"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	IsRevision  bool       `json:"is_revision"`
	DayNumber   int        `json:"day_number,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NotifiedAt  *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (s Session) Hours() float64 {
	return s.EndTime.Sub(s.StartTime).Hours()
}

const sessionColumns = `id, plan_id, subject, start_time, end_time, is_revision, day_number,
	completed, completed_at, notified_at, created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) insertSession(ctx context.Context, ex execer, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = db.now()

	var planID sql.NullString
	if s.PlanID != "" {
		planID = sql.NullString{String: s.PlanID, Valid: true}
	}

	_, err := ex.ExecContext(ctx,
		`INSERT INTO sessions (id, plan_id, subject, start_time, end_time, is_revision, day_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, planID, s.Subject,
		s.StartTime.UnixNano(), s.EndTime.UnixNano(),
		s.IsRevision, s.DayNumber,
		s.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (db *DB) AppendSession(ctx context.Context, subject string, start, end time.Time) (Session, error) {
	s := Session{Subject: subject, StartTime: start, EndTime: end}
	if err := db.insertSession(ctx, db, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (db *DB) MarkComplete(ctx context.Context, subject string) (Session, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT seq FROM sessions
		 WHERE subject = ? AND completed = 0
		 ORDER BY start_time ASC, seq ASC
		 LIMIT 1`,
		subject,
	).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNoPendingSession, subject)
	}
	if err != nil {
		return Session{}, fmt.Errorf("finding pending session: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE sessions SET completed = 1, completed_at = ? WHERE seq = ?",
		db.now().UnixNano(), seq,
	); err != nil {
		return Session{}, fmt.Errorf("completing session: %w", err)
	}

	sessions, err := querySessions(ctx, tx, "SELECT "+sessionColumns+" FROM sessions WHERE seq = ?", seq)
	if err != nil {
		return Session{}, err
	}
	if err := tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("committing: %w", err)
	}

	db.logger.Debug("session completed", zap.String("subject", subject), zap.String("id", sessions[0].ID))
	return sessions[0], nil
}

func (db *DB) ListSessions(ctx context.Context) ([]Session, error) {
	return querySessions(ctx, db,
		"SELECT "+sessionColumns+" FROM sessions ORDER BY start_time ASC, seq ASC")
}

// PendingBetween returns incomplete sessions that have not been notified
// and start in [from, to].
func (db *DB) PendingBetween(ctx context.Context, from, to time.Time) ([]Session, error) {
	return querySessions(ctx, db,
		"SELECT "+sessionColumns+` FROM sessions
		 WHERE completed = 0 AND notified_at IS NULL
		   AND start_time >= ? AND start_time <= ?
		 ORDER BY start_time ASC, seq ASC`,
		from.UnixNano(), to.UnixNano(),
	)
}

func (db *DB) MarkNotified(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx,
		"UPDATE sessions SET notified_at = ? WHERE id = ?",
		db.now().UnixNano(), id,
	)
	return err
}

func (db *DB) CompletionRate(ctx context.Context) (int, error) {
	var total, completed int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM sessions",
	).Scan(&total, &completed)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return Percent(completed, total), nil
}

// Percent rounds completed/total to a whole percentage; 0 when total is 0.
func Percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func querySessions(ctx context.Context, q querier, query string, args ...any) ([]Session, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var planID sql.NullString
		var start, end, created int64
		var completedAt, notifiedAt sql.NullInt64

		if err := rows.Scan(
			&s.ID, &planID, &s.Subject, &start, &end, &s.IsRevision, &s.DayNumber,
			&s.Completed, &completedAt, &notifiedAt, &created,
		); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		s.PlanID = planID.String
		s.StartTime = time.Unix(0, start)
		s.EndTime = time.Unix(0, end)
		s.CreatedAt = time.Unix(0, created)
		s.CompletedAt = nullTime(completedAt)
		s.NotifiedAt = nullTime(notifiedAt)

		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func nullTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64)
	return &t
}

// FromPlanned converts a generated session into a record ready for insertion.
func FromPlanned(planID string, s planner.Session) Session {
	return Session{
		PlanID:     planID,
		Subject:    s.Subject,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		IsRevision: s.IsRevision,
		DayNumber:  s.DayNumber,
	}
}
