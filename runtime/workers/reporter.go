package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/observability"
)

var _ contract.Worker = (*ReporterWorker)(nil)

// ReporterWorker periodically logs the relay's metrics snapshot.
type ReporterWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	names      func() []string
	interval   time.Duration
}

func NewReporterWorker(
	log *slog.Logger,
	monitoring *observability.MonitoringManager,
	names func() []string,
	interval time.Duration,
) *ReporterWorker {
	return &ReporterWorker{log: log, monitoring: monitoring, names: names, interval: interval}
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report()
			w.log.Debug("Reporter stopped")
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *ReporterWorker) report() {
	stats := w.monitoring.GetLatest()
	w.log.Info("Relay stats",
		"joined", len(w.names()),
		"sessions_opened", stats.SessionsOpened,
		"messages_persisted", stats.MessagesPersisted,
		"persistence_failures", stats.PersistenceFailures,
		"events_delivered", stats.EventsDelivered,
		"events_dropped", stats.EventsDropped,
		"rss_mb", stats.RssMb,
	)
}
