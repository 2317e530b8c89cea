package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wsbtracker/internal/config"
	"wsbtracker/internal/daemon"
	"wsbtracker/internal/logger"
	"wsbtracker/internal/market"
	"wsbtracker/internal/metrics"
	"wsbtracker/internal/notify"
	"wsbtracker/internal/provider"
	"wsbtracker/internal/ratelimit"
	"wsbtracker/internal/source"
	"wsbtracker/internal/squeeze"
	"wsbtracker/internal/store"
)

const probeTimeout = 3 * time.Second

func newCalendar(cfg *config.Config) (*market.NYSECalendar, error) {
	schedule, err := market.NewSchedule(cfg.Market.Timezone, cfg.Market.Open, cfg.Market.Close)
	if err != nil {
		return nil, err
	}
	return market.NewNYSECalendar(schedule), nil
}

func newStore(cfg *config.Config) (*store.Store, error) {
	cal, err := newCalendar(cfg)
	if err != nil {
		return nil, err
	}
	return store.New(cfg.DataDir, cal, store.WithLogger(logger.Named("store"))), nil
}

func newSource(cfg *config.Config) source.PageSource {
	if cfg.Source.Mode == "http" {
		return source.NewHTTPSource(cfg.Source.URL, cfg.Source.Selector, cfg.Source.UserAgent, cfg.Source.Timeout)
	}
	return source.NewBrowserSource(source.BrowserConfig{
		URL:       cfg.Source.URL,
		Selector:  cfg.Source.Selector,
		UserAgent: cfg.Source.UserAgent,
		Headless:  cfg.Source.Headless,
		Timeout:   cfg.Source.Timeout,
	}, logger.Named("source"))
}

// newQuoteProvider returns Yahoo's query1 host with query2 as fallback.
// Both share one limiter since they are the same vendor.
func newQuoteProvider(cfg *config.Config) *provider.FallbackProvider {
	rate := cfg.Provider.RateLimit
	limiter := ratelimit.NewLimiter("yahoo", rate)
	return provider.NewFallbackProvider(
		provider.NewYahooProvider(provider.WithLimiter(limiter, rate)),
		provider.NewYahooProvider(provider.WithBaseURL(provider.YahooQuery2), provider.WithLimiter(limiter, rate)),
	)
}

func newScreener(cfg *config.Config, quotes provider.Provider, m *metrics.Metrics) *squeeze.Screener {
	cached := provider.NewCachingProvider(quotes, cfg.Squeeze.HistoryDays)
	return squeeze.NewScreener(cached, cfg.Squeeze.Workers, cfg.Squeeze.Timeout,
		squeeze.WithHistoryDays(cfg.Squeeze.HistoryDays),
		squeeze.WithLogger(logger.Named("squeeze")),
		squeeze.WithMetrics(m),
	)
}

// wireNotify fills the SMS collaborators of deps when notifications are on
func wireNotify(cfg *config.Config, deps *daemon.Deps) error {
	if !cfg.Notify.Enabled {
		return nil
	}
	n := cfg.Notify

	gateway, err := notify.Gateway(n.PhoneNumber, n.Carrier)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}

	log := logger.Named("notify")
	sender := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     n.SMTPHost,
		Port:     n.SMTPPort,
		Username: n.Email,
		Password: n.Password,
	})
	inbox := notify.NewIMAPInbox(notify.IMAPConfig{
		Host:     n.IMAPHost,
		Port:     n.IMAPPort,
		Username: n.Email,
		Password: n.Password,
		Mailbox:  n.Mailbox,
		Sender:   gateway,
		Delete:   n.DeleteProcessed,
	})

	queue := notify.NewQueue()
	deps.Queue = queue
	deps.Poller = notify.NewPoller(inbox, queue, n.PollInterval, log)
	deps.Messenger = notify.NewMessenger(sender, gateway, n.MessageDelay, log, deps.Metrics)

	log.Infow("sms notifications enabled", "phone", notify.FormatPhone(n.PhoneNumber), "carrier", n.Carrier)
	return nil
}

func daemonConfig(cfg *config.Config) daemon.Config {
	dc := daemon.DefaultConfig()
	dc.TopN = cfg.Sentiment.TopN
	dc.ReportN = cfg.Sentiment.ReportN
	dc.EmaPeriod = cfg.Sentiment.EmaPeriod
	dc.StatusSchedule = cfg.Sentiment.StatusSchedule
	return dc
}

// interruptContext is cancelled on SIGINT or SIGTERM
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nInterrupted. Shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
