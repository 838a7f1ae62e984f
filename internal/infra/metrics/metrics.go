package metrics

import (
	"context"
	"time"

	"reminder_notifier/internal/app"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"
)

const (
	namespace   = "reminder_notifier"
	pushJobName = "reminder_notifier"
	pushTimeout = 10 * time.Second
)

// Recorder keeps last-run gauges in a private registry and, when a
// Pushgateway URL is configured, pushes them after every run. A batch job
// lives too briefly to be scraped.
type Recorder struct {
	registry *prometheus.Registry
	pusher   *push.Pusher
	logger   *logrus.Entry

	fetched     prometheus.Gauge
	skipped     prometheus.Gauge
	sent        prometheus.Gauge
	rescheduled prometheus.Gauge
	failed      prometheus.Gauge
	duration    prometheus.Gauge
	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

// NewRecorder builds a Recorder. An empty pushgatewayURL disables pushing.
func NewRecorder(pushgatewayURL, databaseID, apiVersion string, logger *logrus.Entry) *Recorder {
	r := &Recorder{
		registry:    prometheus.NewRegistry(),
		logger:      logger,
		fetched:     gauge("last_run_fetched", "Due reminders fetched by the last run"),
		skipped:     gauge("last_run_skipped", "Reminders skipped by the weekday filter in the last run"),
		sent:        gauge("last_run_sent", "Messages delivered by the last run"),
		rescheduled: gauge("last_run_rescheduled", "Reminders disabled or re-armed by the last run"),
		failed:      gauge("last_run_failed", "Reminders that failed to send or update in the last run"),
		duration:    gauge("last_run_duration_seconds", "Wall time of the last run"),
		lastRun:     gauge("last_run_timestamp_seconds", "Unix time of the last run"),
		lastSuccess: gauge("last_success_timestamp_seconds", "Unix time of the last run without any failure"),
	}
	r.registry.MustRegister(r.fetched, r.skipped, r.sent, r.rescheduled, r.failed, r.duration, r.lastRun, r.lastSuccess)

	if pushgatewayURL != "" {
		r.pusher = push.New(pushgatewayURL, pushJobName).
			Gatherer(r.registry).
			Grouping("database_id", databaseID).
			Grouping("api_version", apiVersion)
	}
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun implements app.RunObserver.
func (r *Recorder) ObserveRun(ctx context.Context, s app.RunSummary) {
	r.fetched.Set(float64(s.Fetched))
	r.skipped.Set(float64(s.Skipped))
	r.sent.Set(float64(s.Sent))
	r.rescheduled.Set(float64(s.Rescheduled))
	r.failed.Set(float64(s.Failed))
	r.duration.Set(s.Duration.Seconds())
	r.lastRun.Set(float64(s.Now.Unix()))
	if !s.Fatal && s.Failed == 0 {
		r.lastSuccess.Set(float64(s.Now.Unix()))
	}

	if r.pusher == nil {
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := r.pusher.PushContext(pushCtx); err != nil {
		r.logger.WithError(err).WithField("run_id", s.RunID).Warn("Failed to push run metrics")
	}
}
