package scheduler

import (
	"context"
	"fmt"
	"time"

	"reminder_notifier/internal/app" // For ReminderService interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler runs reminder passes on a cron schedule for deployments
// without an external trigger. A pass that is still running when the next
// tick fires makes that tick a no-op, so passes never overlap.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	service    app.ReminderService
	logger     *logrus.Entry
	spec       string
	baseCtx    context.Context
}

func NewReminderScheduler(
	service app.ReminderService,
	logger *logrus.Entry,
	spec string, // e.g., "*/5 * * * *" (every 5 minutes)
	location *time.Location, // Calendar timezone, so specs read in business time
) *ReminderScheduler {
	cronLogger := cron.PrintfLogger(logger.WithField("component", "cron"))
	return &ReminderScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		service: service,
		logger:  logger,
		spec:    spec,
		baseCtx: context.Background(),
	}
}

// Start registers the reminder job and starts the cron engine. Runs receive
// a context derived from ctx.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	s.baseCtx = ctx
	if _, err := s.cronEngine.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("could not add reminder cron job %q: %w", s.spec, err)
	}
	s.cronEngine.Start()
	s.logger.WithField("schedule", s.spec).Info("Reminder scheduler started")
	return nil
}

func (s *ReminderScheduler) runOnce() {
	s.logger.Debug("Cron job triggered for reminder run")
	summary, err := s.service.Run(s.baseCtx)
	if err != nil {
		// In scheduled mode a failed pass is retried on the next tick.
		s.logger.WithError(err).WithField("run_id", summary.RunID).Error("Reminder run failed")
	}
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
