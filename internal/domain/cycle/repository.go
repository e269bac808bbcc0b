// internal/domain/cycle/repository.go
package cycle

import "context"

// Repository defines persistence operations for Cycle entities.
type Repository interface {
	Create(ctx context.Context, c *Cycle) error
	GetByID(ctx context.Context, id int64) (*Cycle, error)
	// GetActiveByUserID returns the single non-deleted cycle for a user.
	GetActiveByUserID(ctx context.Context, userID int64) (*Cycle, error)
	ListActive(ctx context.Context) ([]*Cycle, error)
	// SoftDelete marks a cycle deleted; the row is kept for history.
	SoftDelete(ctx context.Context, id int64) error
}
