package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pill_control_bot/internal/domain/user"
)

// Custom errors
var ErrUserNotFound = fmt.Errorf("user not found")
var ErrDuplicateTelegramID = fmt.Errorf("user with this Telegram ID already exists")

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (telegram_id, first_name, last_name)
               VALUES ($1, $2, $3)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, u.TelegramID, u.FirstName, u.LastName).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "users_telegram_id_key") {
			return ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT id, telegram_id, first_name, last_name, created_at, updated_at
               FROM users WHERE id = $1`
	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*user.User, error) {
	query := `SELECT id, telegram_id, first_name, last_name, created_at, updated_at
               FROM users WHERE telegram_id = $1`
	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(&u.ID, &u.TelegramID, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by Telegram ID: %w", err)
	}
	return u, nil
}
