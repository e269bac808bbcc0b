// internal/domain/reminder/timeofday.go
package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// ErrParseTimeOfDay is returned for take-hour strings that are not parseable
// as "HH:MM" or "HH:MM:SS". Callers treat the affected cycle as not eligible
// for reminders instead of propagating the failure.
var ErrParseTimeOfDay = fmt.Errorf("time of day is not in HH:MM format")

// TimeOfDay is a wall-clock time expressed as minutes since midnight,
// in [0, 1439]. Seconds are intentionally dropped: dose schedules and the
// reminder thresholds all operate at minute granularity.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrParseTimeOfDay
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, ErrParseTimeOfDay
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, ErrParseTimeOfDay
	}
	if len(parts) == 3 {
		second, err := strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return 0, ErrParseTimeOfDay
		}
	}
	return TimeOfDay(hour*60 + minute), nil
}

// TimeOfDayFromClock extracts the time-of-day component of t.
func TimeOfDayFromClock(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
