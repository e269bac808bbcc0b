package database

import (
	"context"
	"database/sql"
	"fmt"

	"pill_control_bot/internal/domain/cycle"
)

var ErrCycleNotFound = fmt.Errorf("cycle not found")

type PostgresCycleRepository struct {
	db *sql.DB
}

func NewPostgresCycleRepository(db *sql.DB) *PostgresCycleRepository {
	return &PostgresCycleRepository{db: db}
}

func (r *PostgresCycleRepository) Create(ctx context.Context, c *cycle.Cycle) error {
	query := `INSERT INTO cycles (user_id, start_date, total_days, active_dose_days, take_hour)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		c.UserID, c.StartDate, c.TotalDays, c.ActiveDoseDays, c.TakeHour,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating cycle: %w", err)
	}
	return nil
}

func (r *PostgresCycleRepository) GetByID(ctx context.Context, id int64) (*cycle.Cycle, error) {
	query := `SELECT id, user_id, start_date, total_days, active_dose_days, take_hour, is_deleted, created_at, updated_at
               FROM cycles WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresCycleRepository) GetActiveByUserID(ctx context.Context, userID int64) (*cycle.Cycle, error) {
	query := `SELECT id, user_id, start_date, total_days, active_dose_days, take_hour, is_deleted, created_at, updated_at
               FROM cycles WHERE user_id = $1 AND NOT is_deleted
               ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresCycleRepository) ListActive(ctx context.Context) ([]*cycle.Cycle, error) {
	query := `SELECT id, user_id, start_date, total_days, active_dose_days, take_hour, is_deleted, created_at, updated_at
               FROM cycles WHERE NOT is_deleted ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active cycles: %w", err)
	}
	defer rows.Close()

	cycles := make([]*cycle.Cycle, 0)
	for rows.Next() {
		c := &cycle.Cycle{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.StartDate, &c.TotalDays, &c.ActiveDoseDays, &c.TakeHour, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning active cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active cycles: %w", err)
	}
	return cycles, nil
}

func (r *PostgresCycleRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE cycles SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error soft-deleting cycle: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func (r *PostgresCycleRepository) scanOne(row *sql.Row) (*cycle.Cycle, error) {
	c := &cycle.Cycle{}
	err := row.Scan(&c.ID, &c.UserID, &c.StartDate, &c.TotalDays, &c.ActiveDoseDays, &c.TakeHour, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error getting cycle: %w", err)
	}
	return c, nil
}
