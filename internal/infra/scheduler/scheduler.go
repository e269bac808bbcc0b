package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DoseReminderProcessor is the slice of the reminder service the scheduler
// drives: one evaluation sweep over all active cycles.
type DoseReminderProcessor interface {
	ProcessDoseReminders(ctx context.Context) error
}

// ReminderScheduler ticks the dose-reminder sweep on a cron spec, normally
// once a minute so bucket boundaries (15/60/120 minutes) are hit promptly.
type ReminderScheduler struct {
	cronEngine        *cron.Cron
	reminderService   DoseReminderProcessor
	logger            *logrus.Entry
	cronSpecDoseCheck string
}

func NewReminderScheduler(
	reminderService DoseReminderProcessor,
	logger *logrus.Entry,
	cronSpecDoseCheck string, // e.g. "* * * * *" (every minute)
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:        cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		reminderService:   reminderService,
		logger:            logger,
		cronSpecDoseCheck: cronSpecDoseCheck,
	}
}

func (s *ReminderScheduler) Start() {
	s.logger.Info("Starting reminder scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecDoseCheck, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute) // Context for the job
		defer cancel()
		if err := s.reminderService.ProcessDoseReminders(ctx); err != nil {
			s.logger.WithError(err).Error("Error during dose reminder sweep")
		}
	})
	if err != nil {
		s.logger.Fatalf("Could not add dose reminder cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started with jobs.")
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
