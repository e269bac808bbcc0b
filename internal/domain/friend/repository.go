package friend

import "context"

// Repository defines persistence operations for friend links.
type Repository interface {
	Create(ctx context.Context, l *Link) error
	ListByUserID(ctx context.Context, userID int64) ([]Link, error)
	Delete(ctx context.Context, userID, friendUserID int64) error
}
