// internal/domain/dose/repository.go
package dose

import (
	"context"
	"time"
)

// Repository defines persistence operations for dose events.
type Repository interface {
	// Create inserts the day's event; a second event for the same cycle and
	// day is rejected by the implementation.
	Create(ctx context.Context, e *Event) error
	GetByCycleAndDay(ctx context.Context, cycleID int64, day time.Time) (*Event, error)
	// ListByCycle returns the cycle's events ordered by day.
	ListByCycle(ctx context.Context, cycleID int64) ([]Event, error)
}
