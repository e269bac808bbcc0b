// internal/domain/dose/event.go
package dose

import (
	"database/sql"
	"time"
)

// Status records what the user did about one day's dose.
type Status string

const (
	StatusTaken   Status = "TAKEN"
	StatusSkipped Status = "SKIPPED"
)

// Event is one recorded taken/skipped action for a specific calendar day.
// Corresponds to the 'dose_events' table; at most one row exists per
// cycle and day (enforced by a unique constraint).
type Event struct {
	ID            int64
	CycleID       int64
	UserID        int64
	DayTaken      time.Time // date only, midnight local
	Status        Status
	HourTaken     sql.NullString // "HH:MM", set for taken doses only
	Complications sql.NullString // optional free-text note
	CreatedAt     time.Time
}
