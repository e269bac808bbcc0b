package app

import (
	"context"
	"testing"

	"pill_control_bot/internal/domain/cycle"
	"pill_control_bot/internal/domain/dose"
)

func TestRecordDose_HappyPath(t *testing.T) {
	t.Parallel()

	cycleRepo := &fakeCycleRepo{}
	doseRepo := &fakeDoseRepo{}
	now := mustMoment(t, "2024-01-10 20:05")
	service := NewDoseService(cycleRepo, doseRepo, cycle.DefaultBleedingWindowDays, fixedNow(now))
	ctx := context.Background()

	startCycle(t, cycleRepo, 1, "2024-01-01", "20:00")

	event, err := service.RecordDose(ctx, 1, dose.StatusTaken, "")
	if err != nil {
		t.Fatalf("record dose: %v", err)
	}
	if !event.DayTaken.Equal(mustDay(t, "2024-01-10")) {
		t.Fatalf("expected event day 2024-01-10, got %s", event.DayTaken.Format("2006-01-02"))
	}
	if !event.HourTaken.Valid || event.HourTaken.String != "20:05" {
		t.Fatalf("expected hour taken 20:05, got %+v", event.HourTaken)
	}
}

func TestRecordDose_Duplicate(t *testing.T) {
	t.Parallel()

	cycleRepo := &fakeCycleRepo{}
	doseRepo := &fakeDoseRepo{}
	service := NewDoseService(cycleRepo, doseRepo, cycle.DefaultBleedingWindowDays, fixedNow(mustMoment(t, "2024-01-10 20:05")))
	ctx := context.Background()

	startCycle(t, cycleRepo, 1, "2024-01-01", "20:00")

	if _, err := service.RecordDose(ctx, 1, dose.StatusTaken, ""); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := service.RecordDose(ctx, 1, dose.StatusSkipped, ""); err != ErrDoseAlreadyRecorded {
		t.Fatalf("expected ErrDoseAlreadyRecorded, got %v", err)
	}
	if len(doseRepo.events) != 1 {
		t.Fatalf("expected a single stored event, got %d", len(doseRepo.events))
	}
}

func TestRecordDose_RestDayRejected(t *testing.T) {
	t.Parallel()

	cycleRepo := &fakeCycleRepo{}
	// 2024-01-25 is offset 24, inside the rest phase of a 28/21 cycle.
	service := NewDoseService(cycleRepo, &fakeDoseRepo{}, cycle.DefaultBleedingWindowDays, fixedNow(mustMoment(t, "2024-01-25 20:05")))
	ctx := context.Background()

	startCycle(t, cycleRepo, 1, "2024-01-01", "20:00")

	if _, err := service.RecordDose(ctx, 1, dose.StatusTaken, ""); err != ErrNoDoseScheduledToday {
		t.Fatalf("expected ErrNoDoseScheduledToday, got %v", err)
	}
}

func TestRecordDose_NoActiveCycle(t *testing.T) {
	t.Parallel()

	service := NewDoseService(&fakeCycleRepo{}, &fakeDoseRepo{}, cycle.DefaultBleedingWindowDays, fixedNow(mustMoment(t, "2024-01-10 20:05")))

	if _, err := service.RecordDose(context.Background(), 1, dose.StatusTaken, ""); err != ErrNoActiveCycle {
		t.Fatalf("expected ErrNoActiveCycle, got %v", err)
	}
}

func TestRecordDose_Complications(t *testing.T) {
	t.Parallel()

	cycleRepo := &fakeCycleRepo{}
	service := NewDoseService(cycleRepo, &fakeDoseRepo{}, cycle.DefaultBleedingWindowDays, fixedNow(mustMoment(t, "2024-01-10 20:05")))
	ctx := context.Background()

	startCycle(t, cycleRepo, 1, "2024-01-01", "20:00")

	event, err := service.RecordDose(ctx, 1, dose.StatusTaken, "nausea leve")
	if err != nil {
		t.Fatalf("record dose: %v", err)
	}
	if !event.Complications.Valid || event.Complications.String != "nausea leve" {
		t.Fatalf("expected complications to be stored, got %+v", event.Complications)
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	cycleRepo := &fakeCycleRepo{}
	doseRepo := &fakeDoseRepo{}
	service := NewDoseService(cycleRepo, doseRepo, cycle.DefaultBleedingWindowDays, fixedNow(mustMoment(t, "2024-01-03 20:05")))
	ctx := context.Background()

	started := startCycle(t, cycleRepo, 1, "2024-01-01", "20:00")
	for _, day := range []string{"2024-01-01", "2024-01-02"} {
		if err := doseRepo.Create(ctx, &dose.Event{CycleID: started.ID, UserID: 1, DayTaken: mustDay(t, day), Status: dose.StatusTaken}); err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	c, summary, err := service.Summary(ctx, 1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if c.ID != started.ID {
		t.Fatalf("expected summary for cycle %d, got %d", started.ID, c.ID)
	}
	if summary.Taken != 2 || summary.Total != 21 {
		t.Fatalf("expected 2/21 taken, got %d/%d", summary.Taken, summary.Total)
	}
	if summary.TakenToday {
		t.Fatalf("did not expect a dose recorded for today")
	}
}

func startCycle(t *testing.T, repo *fakeCycleRepo, userID int64, start, takeHour string) *cycle.Cycle {
	t.Helper()

	c, err := cycle.New(userID, mustDay(t, start), 28, 21, takeHour)
	if err != nil {
		t.Fatalf("build cycle: %v", err)
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("store cycle: %v", err)
	}
	return c
}
