package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/config"
	"github.com/wishly-app/wishly/internal/push"
	"github.com/wishly-app/wishly/internal/session"
	"github.com/wishly-app/wishly/internal/state"
	"github.com/wishly-app/wishly/internal/ui"
)

// Options configure the wishly application.
type Options struct {
	ConfigPath  string
	SessionPath string // empty uses default ~/.config/wishly/session.toml
	Slug        string // public slug of the wishlist to watch
	PollEvery   int    // stats poll seconds; zero uses the config value
}

// Run boots the wishlist view until the context is cancelled or the user
// quits: one REST snapshot, one push subscription, one UI.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, cleanup := newLogger(cfg)
	defer cleanup()

	sess := session.Load(opts.SessionPath)

	client, err := api.NewClient(cfg.APIURL, sess.Token)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	// The baseline snapshot: wishlist summary first, then its gifts. This
	// is the only wishlist fetch; everything after arrives over the push
	// channel.
	wishlist, err := client.Wishlist(ctx, opts.Slug)
	if err != nil {
		return fmt.Errorf("load wishlist %q: %w", opts.Slug, err)
	}
	gifts, err := client.Gifts(ctx, wishlist.ID)
	if err != nil {
		return fmt.Errorf("load gifts: %w", err)
	}

	store := &state.Store{}
	store.SetWishlist(*wishlist, gifts)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := push.Subscribe(runCtx, push.Options{
		URL: cfg.WishlistSocketURL(wishlist.ID),
		Log: logger,
	})
	defer sub.Close()
	go consumeEvents(sub, store)

	pollSeconds := cfg.StatsPollSeconds
	if opts.PollEvery > 0 {
		pollSeconds = opts.PollEvery
	}
	StartStatsWatcher(runCtx, store, client, logger, StatsWatcherOptions{
		Interval:   time.Duration(pollSeconds) * time.Second,
		LandingURL: cfg.LandingSocketURL(),
	})

	logger.WithFields(logrus.Fields{
		"slug":        opts.Slug,
		"wishlist_id": wishlist.ID,
		"gifts":       len(gifts),
	}).Info("wishlist view starting")

	return ui.Run(ui.Options{
		Context:     runCtx,
		Client:      client,
		Store:       store,
		Subscriber:  sub,
		Session:     sess,
		SessionPath: opts.SessionPath,
		IsOwner:     sess.Authenticated() && sess.UserID == wishlist.OwnerID,
	})
}

// consumeEvents drains the subscription into the store. It exits when the
// subscription closes its channel, so nothing is ever applied from a dead
// subscription.
func consumeEvents(sub *push.Subscriber, store *state.Store) {
	for ev := range sub.Events() {
		store.ApplyEvent(ev)
	}
}

// newLogger builds the file-backed logger. The terminal belongs to the TUI,
// so log output never goes to stdout; when the log file cannot be opened
// logging is simply disabled.
func newLogger(cfg config.Config) (*logrus.Logger, func()) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.SetOutput(io.Discard)
		return logger, func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.SetOutput(io.Discard)
		return logger, func() {}
	}
	logger.SetOutput(file)
	return logger, func() { _ = file.Close() }
}
