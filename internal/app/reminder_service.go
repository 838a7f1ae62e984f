// internal/app/reminder_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reminder_notifier/internal/calendar"
	"reminder_notifier/internal/domain/reminder"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReminderService runs one notification pass over the due records.
type ReminderService interface {
	Run(ctx context.Context) (RunSummary, error)
}

// Notifier delivers a formatted message to the messaging endpoint.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// RunObserver receives the summary of every finished pass, fatal or not.
type RunObserver interface {
	ObserveRun(ctx context.Context, summary RunSummary)
}

// RunSummary describes one pass. Sent counts delivered messages and
// Rescheduled counts updates written; a record whose update failed after a
// successful send is counted in Sent and Failed.
type RunSummary struct {
	RunID       string
	Now         time.Time
	Duration    time.Duration
	Fetched     int
	Skipped     int
	Sent        int
	Rescheduled int
	Failed      int
	Fatal       bool
}

// ServiceOptions are the per-run knobs taken from configuration.
type ServiceOptions struct {
	PageSize             int
	RequestTimeout       time.Duration
	WeekdayFilterEnabled bool
	Now                  func() time.Time // Defaults to time.Now
}

// ReminderServiceImpl implements the ReminderService interface.
type ReminderServiceImpl struct {
	repo        reminder.Repository
	notifier    Notifier
	cal         *calendar.Calendar
	rescheduler *Rescheduler
	observer    RunObserver
	opts        ServiceOptions
	logger      *logrus.Entry
}

func NewReminderServiceImpl(
	repo reminder.Repository,
	notifier Notifier,
	cal *calendar.Calendar,
	rescheduler *Rescheduler,
	observer RunObserver, // May be nil
	opts ServiceOptions,
	logger *logrus.Entry,
) *ReminderServiceImpl {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReminderServiceImpl{
		repo:        repo,
		notifier:    notifier,
		cal:         cal,
		rescheduler: rescheduler,
		observer:    observer,
		opts:        opts,
		logger:      logger,
	}
}

// Run fetches due records once and processes them one at a time in fetch
// order. A fetch error aborts the pass; send and update errors are logged
// per record and the pass continues.
func (s *ReminderServiceImpl) Run(ctx context.Context) (summary RunSummary, err error) {
	started := time.Now()
	// Captured once: every comparison and write of this pass uses the same instant.
	now := s.opts.Now().UTC()
	summary = RunSummary{RunID: uuid.NewString(), Now: now}
	log := s.logger.WithFields(logrus.Fields{
		"run_id": summary.RunID,
		"now":    now.Format(time.RFC3339),
	})
	defer func() {
		summary.Duration = time.Since(started)
		if s.observer != nil {
			s.observer.ObserveRun(ctx, summary)
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	records, err := s.repo.ListDue(fetchCtx, now, s.opts.PageSize)
	cancel()
	if err != nil {
		summary.Fatal = true
		log.WithError(err).Error("Failed to fetch due reminders")
		return summary, fmt.Errorf("failed to fetch due reminders: %w", err)
	}
	summary.Fetched = len(records)
	if len(records) == 0 {
		log.Info("No reminders due")
		return summary, nil
	}
	log.WithField("count", len(records)).Info("Fetched due reminders")

	today := s.cal.CurrentWeekday(now)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Run interrupted, remaining reminders left for the next run")
			return summary, fmt.Errorf("run interrupted: %w", err)
		}

		recLog := log.WithField("record_id", rec.ID)
		if s.opts.WeekdayFilterEnabled && !rec.FiresOn(today) {
			summary.Skipped++
			recLog.WithFields(logrus.Fields{
				"weekday":     today,
				"notify_days": rec.NotifyDays,
			}).Debug("Skipping reminder, not scheduled for today")
			continue
		}

		sent, update, err := s.process(ctx, rec, now)
		if sent {
			summary.Sent++
		}
		if err != nil {
			summary.Failed++
			if hint := hintFor(err); hint != "" {
				recLog = recLog.WithField("hint", hint)
			}
			recLog.WithError(err).Error("Failed to process reminder")
			continue
		}
		summary.Rescheduled++
		recLog.WithFields(logrus.Fields{
			"notify_flag": update.NotifyFlag,
			"next_notify": nextNotifyField(update),
		}).Info("Reminder sent")
	}

	log.WithFields(logrus.Fields{
		"fetched":     summary.Fetched,
		"skipped":     summary.Skipped,
		"sent":        summary.Sent,
		"rescheduled": summary.Rescheduled,
		"failed":      summary.Failed,
	}).Info("Reminder run finished")
	return summary, nil
}

// process formats, sends and reschedules one record. sent reports whether
// the message was delivered, even when the following update failed; such a
// record stays armed and is notified again on the next run.
func (s *ReminderServiceImpl) process(ctx context.Context, rec *reminder.Record, now time.Time) (sent bool, update reminder.Update, err error) {
	text := FormatMessage(rec, s.cal.Location())

	sendCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	err = s.notifier.Send(sendCtx, text)
	cancel()
	if err != nil {
		return false, update, fmt.Errorf("send: %w", err)
	}

	update = s.rescheduler.Reschedule(rec, now)
	updateCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	err = s.repo.ApplyUpdate(updateCtx, rec.ID, update)
	cancel()
	if err != nil {
		return true, update, fmt.Errorf("reschedule: %w", err)
	}
	return true, update, nil
}

// hintFor returns the operator hint carried by err, if any. Records failing
// for such reasons stay armed and fail again on every run until edited.
func hintFor(err error) string {
	var h interface{ Hint() string }
	if errors.As(err, &h) {
		return h.Hint()
	}
	return ""
}

func nextNotifyField(u reminder.Update) string {
	if !u.NotifyTime.Valid {
		return ""
	}
	return u.NotifyTime.Time.Format(time.RFC3339)
}
