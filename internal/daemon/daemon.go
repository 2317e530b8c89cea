package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"wsbtracker/internal/market"
	"wsbtracker/internal/metrics"
	"wsbtracker/internal/notify"
	"wsbtracker/internal/provider"
	"wsbtracker/internal/sentiment"
	"wsbtracker/internal/squeeze"
	"wsbtracker/internal/store"
	"wsbtracker/internal/symbols"
	"wsbtracker/pkg/model"
)

// Config holds the control loop settings
type Config struct {
	TopN           int           // tickers kept in the daily selection
	ReportN        int           // rows in the status report
	EmaPeriod      int           // EMA span in market days
	TickInterval   time.Duration // how often the session is re-evaluated
	StatusSchedule string        // cron spec for the status report, empty disables it
	ShutdownGrace  time.Duration // time allowed for the collector flush and goodbye text
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		TopN:           25,
		ReportN:        10,
		EmaPeriod:      10,
		TickInterval:   5 * time.Second,
		StatusSchedule: "@every 1h",
		ShutdownGrace:  30 * time.Second,
	}
}

// Collector is the background comment collection task
type Collector interface {
	Start(ctx context.Context)
	Done() <-chan struct{}
	Err() error
}

// Screener runs the short squeeze screen
type Screener interface {
	Screen(ctx context.Context, symbols []string) (*squeeze.Watchlist, error)
}

// Deps are the collaborators the daemon drives
type Deps struct {
	Calendar  market.Calendar
	Store     *store.Store
	Collector Collector
	Quotes    provider.Provider
	Screener  Screener

	// optional
	Universe  *symbols.Universe // narrows the screen to exchange-listed tickers
	Messenger *notify.Messenger
	Poller    *notify.Poller
	Queue     *notify.Queue
	Metrics   *metrics.Metrics
	Logger    *zap.SugaredLogger
	Clock     func() time.Time
}

// Daemon is the market-hours control loop. It reacts to session
// transitions: the open pass selects and screens the day's tickers, the
// close pass prices them.
type Daemon struct {
	config Config
	deps   Deps
	log    *zap.SugaredLogger
	now    func() time.Time

	statusCh chan struct{}

	// loop state, owned by the Run goroutine
	open       bool
	phase      string
	openWindow market.Window
	lastStatus []model.TickerSentiment

	mu       sync.RWMutex
	snapshot Snapshot
}

// Snapshot is the latest state produced by the scheduled passes
type Snapshot struct {
	Session   market.Session
	Overall   float64
	Ranked    []model.TickerSentiment
	Top       []model.TopTicker
	Ema       *model.EmaPoint
	Signal    sentiment.Signal
	Watchlist *squeeze.Watchlist
	UpdatedAt time.Time
}

// New creates a daemon
func New(cfg Config, deps Deps) *Daemon {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	return &Daemon{
		config:   cfg,
		deps:     deps,
		log:      deps.Logger,
		now:      deps.Clock,
		statusCh: make(chan struct{}, 1),
	}
}

// Snapshot returns a copy of the latest pass results
func (d *Daemon) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

func (d *Daemon) update(fn func(s *Snapshot)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.snapshot)
	d.snapshot.UpdatedAt = d.now()
}

// Run starts the collector and drives the control loop until ctx is
// cancelled or the collector dies. A collector failure is returned.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Info("starting sentiment tracker")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.deps.Collector.Start(ctx)

	if d.deps.Poller != nil {
		go d.deps.Poller.Run(ctx)
	}

	if d.config.StatusSchedule != "" {
		c := cron.New(cron.WithLocation(d.location()))
		if _, err := c.AddFunc(d.config.StatusSchedule, d.requestStatus); err != nil {
			return fmt.Errorf("status schedule %q: %w", d.config.StatusSchedule, err)
		}
		c.Start()
		defer c.Stop()
	}

	if m := d.deps.Messenger; m != nil {
		if err := m.Startup(ctx); err != nil {
			d.log.Warnw("startup message failed", "error", err)
		}
	}

	var commands <-chan struct{}
	if d.deps.Queue != nil {
		commands = d.deps.Queue.Ready()
	}

	ticker := time.NewTicker(d.config.TickInterval)
	defer ticker.Stop()

	d.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return d.shutdown("cancelled", nil)

		case <-d.deps.Collector.Done():
			err := d.deps.Collector.Err()
			return d.shutdown("collector_stopped", err)

		case <-d.statusCh:
			d.statusReport()

		case <-commands:
			d.handleCommands(ctx)

		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Daemon) requestStatus() {
	select {
	case d.statusCh <- struct{}{}:
	default:
	}
}

func (d *Daemon) location() *time.Location {
	if l, ok := d.deps.Calendar.(interface{ Location() *time.Location }); ok {
		return l.Location()
	}
	return market.EasternLocation()
}

// tick flushes buffered comments and runs the pass for any session transition
func (d *Daemon) tick(ctx context.Context) {
	if _, err := d.deps.Store.FlushComments(); err != nil {
		d.log.Warnw("flushing comments", "error", err)
	}

	s := market.SessionAt(d.deps.Calendar, d.now())
	d.update(func(snap *Snapshot) { snap.Session = s })

	if s.Phase != d.phase {
		d.log.Infow("market session", "phase", s.Phase, "time", s.Now.Format("2006-01-02 15:04"))
		if s.IsOpen {
			d.log.Infow("market closes in", "remaining", market.FormatDuration(s.TimeToClose()), "early_close", s.EarlyClose)
		}
		d.phase = s.Phase
	}

	switch {
	case s.IsOpen && !d.open:
		d.open = true
		w := d.deps.Store.Window()
		if d.journal(w).Opened() {
			d.openWindow = w
			d.log.Infow("open pass already ran, resuming", "window", w.Name())
			return
		}
		d.runPass("market_open", func() error { return d.onMarketOpen(ctx) })
	case !s.IsOpen && d.open:
		d.open = false
		d.runPass("market_close", func() error { return d.onMarketClose(ctx) })
	}
}

// runPass isolates a scheduled pass: a failure is logged and the next
// transition runs normally.
func (d *Daemon) runPass(name string, fn func() error) {
	start := d.now()
	d.log.Infow("running pass", "pass", name)

	err := fn()
	d.deps.Metrics.Pass(name, err)
	if err != nil {
		d.log.Errorw("pass failed", "pass", name, "error", err)
		return
	}
	d.log.Infow("pass complete", "pass", name, "took", d.now().Sub(start).Round(time.Millisecond))
}

// shutdown waits for the collector to flush and says goodbye
func (d *Daemon) shutdown(reason string, cause error) error {
	d.log.Infow("shutting down", "reason", reason)

	grace, cancel := context.WithTimeout(context.Background(), d.config.ShutdownGrace)
	defer cancel()

	select {
	case <-d.deps.Collector.Done():
	case <-grace.Done():
		d.log.Warn("collector did not stop in time")
	}

	// catch anything appended after the collector's own flush
	if n, err := d.deps.Store.FlushComments(); err != nil {
		d.log.Errorw("final flush failed", "error", err)
	} else if n > 0 {
		d.log.Infow("flushed comments", "events", n)
	}

	if m := d.deps.Messenger; m != nil {
		if err := m.Shutdown(grace); err != nil {
			d.log.Warnw("shutdown message failed", "error", err)
		}
	}

	if cause != nil && !errors.Is(cause, context.Canceled) {
		return fmt.Errorf("%s: %w", reason, cause)
	}
	return nil
}
