package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pill_control_bot/internal/domain/dose"
)

var ErrDoseEventNotFound = fmt.Errorf("dose event not found")
var ErrDuplicateDoseEvent = fmt.Errorf("dose event for this cycle and day already exists")

type PostgresDoseRepository struct {
	db *sql.DB
}

func NewPostgresDoseRepository(db *sql.DB) *PostgresDoseRepository {
	return &PostgresDoseRepository{db: db}
}

func (r *PostgresDoseRepository) Create(ctx context.Context, e *dose.Event) error {
	query := `INSERT INTO dose_events (cycle_id, user_id, day_taken, status, hour_taken, complications)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		e.CycleID, e.UserID, e.DayTaken, e.Status, e.HourTaken, e.Complications,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "dose_events_cycle_day_unique") {
			return ErrDuplicateDoseEvent
		}
		return fmt.Errorf("error creating dose event: %w", err)
	}
	return nil
}

func (r *PostgresDoseRepository) GetByCycleAndDay(ctx context.Context, cycleID int64, day time.Time) (*dose.Event, error) {
	query := `SELECT id, cycle_id, user_id, day_taken, status, hour_taken, complications, created_at
               FROM dose_events WHERE cycle_id = $1 AND day_taken = $2`
	e := &dose.Event{}
	err := r.db.QueryRowContext(ctx, query, cycleID, day).Scan(
		&e.ID, &e.CycleID, &e.UserID, &e.DayTaken, &e.Status, &e.HourTaken, &e.Complications, &e.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDoseEventNotFound
		}
		return nil, fmt.Errorf("error getting dose event by cycle and day: %w", err)
	}
	return e, nil
}

func (r *PostgresDoseRepository) ListByCycle(ctx context.Context, cycleID int64) ([]dose.Event, error) {
	query := `SELECT id, cycle_id, user_id, day_taken, status, hour_taken, complications, created_at
               FROM dose_events WHERE cycle_id = $1 ORDER BY day_taken`

	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error listing dose events: %w", err)
	}
	defer rows.Close()

	events := make([]dose.Event, 0)
	for rows.Next() {
		var e dose.Event
		if err := rows.Scan(&e.ID, &e.CycleID, &e.UserID, &e.DayTaken, &e.Status, &e.HourTaken, &e.Complications, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning dose event: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dose events: %w", err)
	}
	return events, nil
}
