package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/christopherklint97/studyr/internal/planner"
)

type PlanRecord struct {
	ID           string    `json:"id"`
	DailyHours   float64   `json:"daily_hours"`
	TotalDays    int       `json:"total_days"`
	SessionCount int       `json:"session_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// SavePlan stores a generated plan and all of its sessions atomically.
func (db *DB) SavePlan(ctx context.Context, plan *planner.Plan) (PlanRecord, error) {
	rec := PlanRecord{
		ID:           uuid.NewString(),
		DailyHours:   plan.DailyHours,
		TotalDays:    plan.TotalDays,
		SessionCount: len(plan.Sessions),
		CreatedAt:    db.now(),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return PlanRecord{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO plans (id, daily_hours, total_days, created_at) VALUES (?, ?, ?, ?)",
		rec.ID, rec.DailyHours, rec.TotalDays, rec.CreatedAt.UnixNano(),
	); err != nil {
		return PlanRecord{}, fmt.Errorf("inserting plan: %w", err)
	}

	for _, ps := range plan.Sessions {
		s := FromPlanned(rec.ID, ps)
		if err := db.insertSession(ctx, tx, &s); err != nil {
			return PlanRecord{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return PlanRecord{}, fmt.Errorf("committing plan: %w", err)
	}

	db.logger.Info("plan saved",
		zap.String("plan_id", rec.ID),
		zap.Int("sessions", rec.SessionCount),
		zap.Int("total_days", rec.TotalDays),
	)
	return rec, nil
}

func (db *DB) ListPlans(ctx context.Context) ([]PlanRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT p.id, p.daily_hours, p.total_days, p.created_at,
		        (SELECT COUNT(*) FROM sessions s WHERE s.plan_id = p.id)
		 FROM plans p
		 ORDER BY p.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var plans []PlanRecord
	for rows.Next() {
		var p PlanRecord
		var created int64
		if err := rows.Scan(&p.ID, &p.DailyHours, &p.TotalDays, &created, &p.SessionCount); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		p.CreatedAt = time.Unix(0, created)
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// DeleteAll removes every plan and session.
func (db *DB) DeleteAll(ctx context.Context) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM sessions", "DELETE FROM plans"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("resetting data: %w", err)
		}
	}
	return tx.Commit()
}
