// internal/app/cycle_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"pill_control_bot/internal/domain/cycle"
	"pill_control_bot/internal/domain/reminder"
	idb "pill_control_bot/internal/infra/database"
)

// Custom application-level errors for cycle management
var ErrNoActiveCycle = fmt.Errorf("user has no active cycle")

// CycleService manages the lifecycle of pill cycles. Starting a new cycle
// retires the previous one, so at most one non-deleted cycle exists per user.
type CycleService struct {
	cycleRepo          cycle.Repository
	bleedingWindowDays int
}

func NewCycleService(cr cycle.Repository, bleedingWindowDays int) *CycleService {
	return &CycleService{
		cycleRepo:          cr,
		bleedingWindowDays: bleedingWindowDays,
	}
}

// StartCycle validates and registers a new cycle for the user. The take hour
// must parse as HH:MM so the reminder jobs can evaluate it later.
func (s *CycleService) StartCycle(ctx context.Context, userID int64, startDate time.Time, totalDays, activeDoseDays int, takeHour string) (*cycle.Cycle, error) {
	if _, err := reminder.ParseTimeOfDay(takeHour); err != nil {
		return nil, err
	}

	newCycle, err := cycle.New(userID, startDate, totalDays, activeDoseDays, takeHour)
	if err != nil {
		return nil, err
	}

	// Retire the previous active cycle, if any.
	existing, err := s.cycleRepo.GetActiveByUserID(ctx, userID)
	if err != nil && err != idb.ErrCycleNotFound {
		return nil, fmt.Errorf("failed to check existing active cycle: %w", err)
	}
	if existing != nil {
		if err := s.cycleRepo.SoftDelete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to retire previous cycle: %w", err)
		}
	}

	if err := s.cycleRepo.Create(ctx, newCycle); err != nil {
		return nil, fmt.Errorf("failed to create cycle in repository: %w", err)
	}
	return newCycle, nil
}

// ActiveCycle returns the user's current cycle, or ErrNoActiveCycle.
func (s *CycleService) ActiveCycle(ctx context.Context, userID int64) (*cycle.Cycle, error) {
	c, err := s.cycleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if err == idb.ErrCycleNotFound {
			return nil, ErrNoActiveCycle
		}
		return nil, fmt.Errorf("failed to get active cycle: %w", err)
	}
	return c, nil
}

// StopCycle soft-deletes the user's active cycle.
func (s *CycleService) StopCycle(ctx context.Context, userID int64) error {
	c, err := s.ActiveCycle(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.cycleRepo.SoftDelete(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to stop cycle: %w", err)
	}
	return nil
}

// Calendar expands the user's active cycle into its per-day phase sequence.
func (s *CycleService) Calendar(ctx context.Context, userID int64) (*cycle.Cycle, []cycle.ScheduleDay, error) {
	c, err := s.ActiveCycle(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return c, cycle.Schedule(c, s.bleedingWindowDays), nil
}
