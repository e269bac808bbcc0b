// internal/domain/reminder/log.go
package reminder

import (
	"context"
	"time"
)

// LogEntry records that a reminder bucket was delivered for a cycle on a
// given day. Corresponds to the 'reminder_log' table; the unique
// (cycle_id, day, bucket) constraint caps every bucket at one delivery per
// day per cycle.
type LogEntry struct {
	ID      int64
	CycleID int64
	Day     time.Time // date only
	Bucket  Bucket
	SentAt  time.Time
}

// LogRepository defines persistence operations for delivered reminders.
type LogRepository interface {
	// Create inserts the delivery record; a repeat for the same cycle, day
	// and bucket is rejected by the implementation.
	Create(ctx context.Context, e *LogEntry) error
	Exists(ctx context.Context, cycleID int64, day time.Time, bucket Bucket) (bool, error)
}
