// internal/domain/cycle/phase.go
package cycle

import "time"

// PhaseKind partitions every in-range cycle day into exactly one of two kinds.
type PhaseKind string

const (
	PhaseActiveDose PhaseKind = "ACTIVE_DOSE"
	PhaseRestDay    PhaseKind = "REST_DAY"
)

// Phase is the derived classification of a single cycle day. Bleeding is an
// additional flag on rest days only, marking the expected withdrawal-bleeding
// window; it never co-occurs with an active-dose day.
type Phase struct {
	Kind     PhaseKind
	Bleeding bool
}

// ScheduleDay pairs one calendar date of the cycle with its phase.
type ScheduleDay struct {
	Date  time.Time
	Phase Phase
}

// PhaseOf classifies date within the cycle. The second return value is false
// when date falls before the start or at/after the end of the template; there
// is no wraparound into repeated cycles. The bleeding window spans offsets
// [ActiveDoseDays+1, ActiveDoseDays+bleedingWindowDays], clipped to the last
// template day. With ActiveDoseDays close to TotalDays the window may be
// empty, which is valid.
func PhaseOf(c *Cycle, date time.Time, bleedingWindowDays int) (Phase, bool) {
	offset := c.DayOffset(date)
	return phaseOfOffset(c, offset, bleedingWindowDays)
}

func phaseOfOffset(c *Cycle, offset, bleedingWindowDays int) (Phase, bool) {
	if offset < 0 || offset >= c.TotalDays {
		return Phase{}, false
	}
	if offset < c.ActiveDoseDays {
		return Phase{Kind: PhaseActiveDose}, true
	}

	bleedFrom := c.ActiveDoseDays + 1
	bleedTo := c.ActiveDoseDays + bleedingWindowDays
	if bleedTo > c.TotalDays-1 {
		bleedTo = c.TotalDays - 1
	}
	return Phase{
		Kind:     PhaseRestDay,
		Bleeding: offset >= bleedFrom && offset <= bleedTo,
	}, true
}

// Schedule expands the cycle template into its full per-day phase sequence,
// one entry per offset 0..TotalDays-1. The result depends only on the cycle,
// so identical cycles always render identical calendars.
func Schedule(c *Cycle, bleedingWindowDays int) []ScheduleDay {
	days := make([]ScheduleDay, 0, c.TotalDays)
	for offset := 0; offset < c.TotalDays; offset++ {
		phase, _ := phaseOfOffset(c, offset, bleedingWindowDays)
		days = append(days, ScheduleDay{
			Date:  c.StartDate.AddDate(0, 0, offset),
			Phase: phase,
		})
	}
	return days
}
