package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/event"
	"github.com/wishly-app/wishly/internal/push"
	"github.com/wishly-app/wishly/internal/state"
)

const defaultStatsInterval = 30 * time.Second

// StatsWatcherOptions configure the aggregate stats refresh.
type StatsWatcherOptions struct {
	// Interval is the polling cadence; zero uses the 30s default.
	Interval time.Duration
	// LandingURL is the aggregate push channel. Empty disables the push
	// fast path and leaves polling as the only refresh.
	LandingURL string
}

// StartStatsWatcher launches a background goroutine that keeps the store's
// aggregate stats fresh. Polling is the reliable fallback; the landing
// channel's stats_updated signal triggers an immediate re-fetch in between
// ticks. It returns immediately.
func StartStatsWatcher(ctx context.Context, store *state.Store, client *api.Client, log *logrus.Logger, opts StatsWatcherOptions) {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultStatsInterval
	}

	var signals <-chan event.Event
	if opts.LandingURL != "" {
		sub := push.Subscribe(ctx, push.Options{URL: opts.LandingURL, Log: log})
		signals = sub.Events()
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refreshStats(ctx, store, client, log)
			if !waitForTrigger(ctx, ticker.C, &signals) {
				return
			}
		}
	}()
}

// waitForTrigger blocks until the next refresh is due, either by tick or by
// a stats_updated push. It returns false when the context is cancelled.
func waitForTrigger(ctx context.Context, tick <-chan time.Time, signals *<-chan event.Event) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-tick:
			return true
		case ev, ok := <-*signals:
			if !ok {
				// Landing channel gone for good; polling carries on.
				*signals = nil
				continue
			}
			if ev.Kind() == event.TypeStatsUpdated {
				return true
			}
		}
	}
}

func refreshStats(ctx context.Context, store *state.Store, client *api.Client, log *logrus.Logger) {
	stats, err := client.Stats(ctx)
	if err != nil {
		store.UpdateStats(nil, err)
		if ctx.Err() == nil {
			log.WithError(err).Warn("stats poll failed")
		}
		return
	}
	store.UpdateStats(stats, nil)
}
