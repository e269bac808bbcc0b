// internal/domain/dose/summary.go
package dose

import (
	"time"

	"pill_control_bot/internal/domain/cycle"
)

// Summary is the adherence picture for one cycle: how many active-dose days
// have a recorded taken dose, out of how many.
type Summary struct {
	Taken      int
	Total      int
	Ratio      float64 // Taken / Total, clamped to [0, 1]
	TakenToday bool
	// Inconsistent is set when more taken events landed on active-dose days
	// than the cycle has — duplicates or out-of-range data. The summary is
	// still usable: the ratio is clamped instead of exceeding 1.
	Inconsistent bool
}

// Summarize computes adherence for a cycle from its recorded events. Only
// Taken events that fall on active-dose days count; rest-day takes are
// excluded. today decides TakenToday and is supplied by the caller so the
// computation stays clock-free.
func Summarize(c *cycle.Cycle, events []Event, today time.Time, bleedingWindowDays int) Summary {
	s := Summary{Total: c.ActiveDoseDays}

	for _, ev := range events {
		if ev.Status != StatusTaken {
			continue
		}
		if sameDay(ev.DayTaken, today) {
			s.TakenToday = true
		}
		phase, ok := cycle.PhaseOf(c, ev.DayTaken, bleedingWindowDays)
		if !ok || phase.Kind != cycle.PhaseActiveDose {
			continue
		}
		s.Taken++
	}

	if s.Taken > s.Total {
		s.Taken = s.Total
		s.Inconsistent = true
	}
	if s.Total > 0 {
		s.Ratio = float64(s.Taken) / float64(s.Total)
	}
	return s
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
