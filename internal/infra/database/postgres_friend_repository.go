package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pill_control_bot/internal/domain/friend"
)

var ErrFriendLinkNotFound = fmt.Errorf("friend link not found")
var ErrDuplicateFriendLink = fmt.Errorf("friend link already exists")

type PostgresFriendRepository struct {
	db *sql.DB
}

func NewPostgresFriendRepository(db *sql.DB) *PostgresFriendRepository {
	return &PostgresFriendRepository{db: db}
}

func (r *PostgresFriendRepository) Create(ctx context.Context, l *friend.Link) error {
	query := `INSERT INTO friend_links (user_id, friend_user_id)
               VALUES ($1, $2)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, l.UserID, l.FriendUserID).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "friend_links_pair_unique") {
			return ErrDuplicateFriendLink
		}
		return fmt.Errorf("error creating friend link: %w", err)
	}
	return nil
}

func (r *PostgresFriendRepository) ListByUserID(ctx context.Context, userID int64) ([]friend.Link, error) {
	query := `SELECT id, user_id, friend_user_id, created_at
               FROM friend_links WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing friend links: %w", err)
	}
	defer rows.Close()

	links := make([]friend.Link, 0)
	for rows.Next() {
		var l friend.Link
		if err := rows.Scan(&l.ID, &l.UserID, &l.FriendUserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning friend link: %w", err)
		}
		links = append(links, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend links: %w", err)
	}
	return links, nil
}

func (r *PostgresFriendRepository) Delete(ctx context.Context, userID, friendUserID int64) error {
	query := `DELETE FROM friend_links WHERE user_id = $1 AND friend_user_id = $2`
	res, err := r.db.ExecContext(ctx, query, userID, friendUserID)
	if err != nil {
		return fmt.Errorf("error deleting friend link: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrFriendLinkNotFound
	}
	return nil
}
