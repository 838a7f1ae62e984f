package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reminder_notifier/internal/app"
	"reminder_notifier/internal/infra/config"
	idb "reminder_notifier/internal/infra/database"
	"reminder_notifier/internal/infra/logger"
	"reminder_notifier/internal/infra/metrics"
	"reminder_notifier/internal/infra/scheduler"
	"reminder_notifier/internal/infra/telegram"

	"github.com/sirupsen/logrus"
)

const connectTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

// run wires the job and returns the process exit code: 0 on a completed
// pass (including nothing to notify), 1 on configuration, startup or fetch errors.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Error("FATAL: Could not load application configuration")
		return 1
	}
	logger.Init(cfg)

	log := logger.Get().WithFields(logrus.Fields{
		"database_id": cfg.RemindersDatabaseID,
		"api_version": cfg.APIVersion,
	})
	log.WithFields(logrus.Fields{
		"environment":     cfg.Environment,
		"driver":          cfg.DatabaseDriver,
		"timezone":        cfg.Timezone.String(),
		"weekend":         cfg.WeekendDays,
		"repeat_aware":    cfg.RepeatAware,
		"weekday_filter":  cfg.WeekdayFilterEnabled,
		"schedule":        cfg.RunSchedule,
		"request_timeout": cfg.RequestTimeout.String(),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Record Store
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	repo, db, err := idb.OpenRepository(connectCtx, cfg)
	cancel()
	if err != nil {
		log.WithError(err).Error("FATAL: Could not connect to record store")
		return 1
	}
	defer db.Close()
	log.Debug("Record store connection established")

	// Initialize Telegram Notifier
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.RequestTimeout)
	if err != nil {
		log.WithError(err).Error("FATAL: Could not create Telegram bot")
		return 1
	}
	notifier := telegram.NewNotifier(telegram.NewTelebotAdapter(bot), cfg.TelegramChatID)

	cal := cfg.Calendar()
	recorder := metrics.NewRecorder(cfg.PushgatewayURL, cfg.RemindersDatabaseID, cfg.APIVersion, log.WithField("component", "metrics"))
	service := app.NewReminderServiceImpl(
		repo,
		notifier,
		cal,
		app.NewRescheduler(cal, cfg.RepeatAware),
		recorder,
		app.ServiceOptions{
			PageSize:             cfg.PageSize,
			RequestTimeout:       cfg.RequestTimeout,
			WeekdayFilterEnabled: cfg.WeekdayFilterEnabled,
		},
		log.WithField("component", "reminder_service"),
	)

	if cfg.RunSchedule == "" {
		if _, err := service.Run(ctx); err != nil {
			log.WithError(err).Error("FATAL: Reminder run aborted")
			return 1
		}
		return 0
	}

	reminderScheduler := scheduler.NewReminderScheduler(service, log.WithField("component", "scheduler"), cfg.RunSchedule, cal.Location())
	if err := reminderScheduler.Start(ctx); err != nil {
		log.WithError(err).Error("FATAL: Could not start reminder scheduler")
		return 1
	}

	<-ctx.Done() // Block until a signal is received
	log.Info("Shutting down reminder scheduler...")
	reminderScheduler.Stop()
	log.Info("Application shut down gracefully.")
	return 0
}
