// internal/domain/cycle/cycle.go
package cycle

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidConfig is returned when a cycle is constructed with day counts
// that violate 0 < ActiveDoseDays <= TotalDays.
var ErrInvalidConfig = errors.New("invalid cycle configuration")

// DefaultBleedingWindowDays is the length of the withdrawal-bleeding window
// inside the rest days. The classic 21/28 template observes spotting on rest
// days 2 through 6, i.e. offsets 22..26.
const DefaultBleedingWindowDays = 5

// Cycle represents one registered pill cycle for a user.
// Corresponds to the 'cycles' table.
type Cycle struct {
	ID             int64
	UserID         int64
	StartDate      time.Time // date of the first active-dose day, midnight local
	TotalDays      int       // full template length, typically 21, 27 or 28
	ActiveDoseDays int       // leading days on which a dose is taken
	TakeHour       string    // scheduled dose time-of-day, "HH:MM" as stored
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New validates the day-count invariants and returns a cycle ready to be
// persisted. Validation happens here, at construction; PhaseOf and Schedule
// assume an already-valid cycle.
func New(userID int64, startDate time.Time, totalDays, activeDoseDays int, takeHour string) (*Cycle, error) {
	if totalDays <= 0 || activeDoseDays <= 0 || activeDoseDays > totalDays {
		return nil, ErrInvalidConfig
	}
	return &Cycle{
		UserID:         userID,
		StartDate:      atMidnight(startDate),
		TotalDays:      totalDays,
		ActiveDoseDays: activeDoseDays,
		TakeHour:       takeHour,
	}, nil
}

// EndDate returns the last day covered by the cycle template.
func (c *Cycle) EndDate() time.Time {
	return c.StartDate.AddDate(0, 0, c.TotalDays-1)
}

// DayOffset returns the zero-based offset of date within the cycle. The
// result may be negative or beyond TotalDays; callers check the range.
// Rounding keeps the offset stable across DST transitions, where a
// midnight-to-midnight span is not exactly 24 hours.
func (c *Cycle) DayOffset(date time.Time) int {
	start := atMidnight(c.StartDate)
	day := atMidnight(date)
	return int(math.Round(day.Sub(start).Hours() / 24))
}

func atMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
