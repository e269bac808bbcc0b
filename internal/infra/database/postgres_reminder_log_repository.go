package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pill_control_bot/internal/domain/reminder"
)

var ErrDuplicateReminderLog = fmt.Errorf("reminder already logged for this cycle, day and bucket")

type PostgresReminderLogRepository struct {
	db *sql.DB
}

func NewPostgresReminderLogRepository(db *sql.DB) *PostgresReminderLogRepository {
	return &PostgresReminderLogRepository{db: db}
}

func (r *PostgresReminderLogRepository) Create(ctx context.Context, e *reminder.LogEntry) error {
	query := `INSERT INTO reminder_log (cycle_id, day, bucket, sent_at)
               VALUES ($1, $2, $3, $4)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, e.CycleID, e.Day, e.Bucket, e.SentAt).Scan(&e.ID)
	if err != nil {
		if strings.Contains(err.Error(), "reminder_log_cycle_day_bucket_unique") {
			return ErrDuplicateReminderLog
		}
		return fmt.Errorf("error creating reminder log entry: %w", err)
	}
	return nil
}

func (r *PostgresReminderLogRepository) Exists(ctx context.Context, cycleID int64, day time.Time, bucket reminder.Bucket) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reminder_log WHERE cycle_id = $1 AND day = $2 AND bucket = $3)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, cycleID, day, bucket).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking reminder log entry: %w", err)
	}
	return exists, nil
}
