// internal/app/dose_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pill_control_bot/internal/domain/cycle"
	"pill_control_bot/internal/domain/dose"
	idb "pill_control_bot/internal/infra/database"
)

// Custom application-level errors for dose recording
var ErrDoseAlreadyRecorded = fmt.Errorf("a dose was already recorded for today")
var ErrNoDoseScheduledToday = fmt.Errorf("today is not an active-dose day of the cycle")

// DoseService records daily dose actions and computes adherence summaries.
type DoseService struct {
	cycleRepo          cycle.Repository
	doseRepo           dose.Repository
	bleedingWindowDays int
	now                func() time.Time
}

func NewDoseService(cr cycle.Repository, dr dose.Repository, bleedingWindowDays int, now func() time.Time) *DoseService {
	return &DoseService{
		cycleRepo:          cr,
		doseRepo:           dr,
		bleedingWindowDays: bleedingWindowDays,
		now:                now,
	}
}

// RecordDose registers today's taken/skipped action for the user's active
// cycle. Exactly one event per cycle and day: a repeat is rejected with
// ErrDoseAlreadyRecorded. Recording is only allowed on active-dose days.
func (s *DoseService) RecordDose(ctx context.Context, userID int64, status dose.Status, complications string) (*dose.Event, error) {
	c, err := s.cycleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if err == idb.ErrCycleNotFound {
			return nil, ErrNoActiveCycle
		}
		return nil, fmt.Errorf("failed to get active cycle: %w", err)
	}

	nowT := s.now()
	today := dateOnly(nowT)

	phase, ok := cycle.PhaseOf(c, today, s.bleedingWindowDays)
	if !ok || phase.Kind != cycle.PhaseActiveDose {
		return nil, ErrNoDoseScheduledToday
	}

	// Cheap pre-check; the unique constraint is the authority.
	if _, err := s.doseRepo.GetByCycleAndDay(ctx, c.ID, today); err == nil {
		return nil, ErrDoseAlreadyRecorded
	} else if err != idb.ErrDoseEventNotFound {
		return nil, fmt.Errorf("failed to check existing dose event: %w", err)
	}

	event := &dose.Event{
		CycleID:  c.ID,
		UserID:   userID,
		DayTaken: today,
		Status:   status,
	}
	if status == dose.StatusTaken {
		event.HourTaken = sql.NullString{String: nowT.Format("15:04"), Valid: true}
	}
	if complications != "" {
		event.Complications = sql.NullString{String: complications, Valid: true}
	}

	if err := s.doseRepo.Create(ctx, event); err != nil {
		if err == idb.ErrDuplicateDoseEvent {
			return nil, ErrDoseAlreadyRecorded
		}
		return nil, fmt.Errorf("failed to create dose event: %w", err)
	}
	return event, nil
}

// Summary computes the adherence picture for the user's active cycle.
func (s *DoseService) Summary(ctx context.Context, userID int64) (*cycle.Cycle, dose.Summary, error) {
	c, err := s.cycleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if err == idb.ErrCycleNotFound {
			return nil, dose.Summary{}, ErrNoActiveCycle
		}
		return nil, dose.Summary{}, fmt.Errorf("failed to get active cycle: %w", err)
	}

	events, err := s.doseRepo.ListByCycle(ctx, c.ID)
	if err != nil {
		return nil, dose.Summary{}, fmt.Errorf("failed to list dose events: %w", err)
	}

	return c, dose.Summarize(c, events, s.now(), s.bleedingWindowDays), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
