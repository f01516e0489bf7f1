package workers

import (
	"chat-relay/contract"
	"chat-relay/observability"
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// StatsReporter logs the relay counters and the process footprint at a
// fixed interval.
type StatsReporter struct {
	log      *slog.Logger
	source   contract.StatsSource
	interval time.Duration
	sample   func() (observability.ProcessStats, error)
}

func NewStatsReporter(log *slog.Logger, source contract.StatsSource, interval time.Duration) *StatsReporter {
	return &StatsReporter{
		log:      log,
		source:   source,
		interval: interval,
		sample:   observability.ReadProcessStats,
	}
}

func (w *StatsReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping stats reporting")
			return nil
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *StatsReporter) report() {
	stats := w.source.Stats()
	attrs := []any{
		"online", stats.Online,
		"registered", stats.RegisteredUsers,
		"connections", stats.TotalConnections,
		"messages", stats.TotalMessages,
		"failed_logins", stats.FailedLogins,
		"uptime", stats.Uptime(time.Now().UTC()).String(),
	}

	proc, err := w.sample()
	if err != nil {
		w.log.Debug("Unable to sample process", "error", err)
	} else {
		attrs = append(attrs,
			"rss", humanize.IBytes(proc.RSSBytes),
			"cpu_percent", proc.CPUPercent,
			"goroutines", proc.Goroutines,
		)
	}
	w.log.Info("Relay stats", attrs...)
}
