package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserConfig configures the headless browser source
type BrowserConfig struct {
	URL       string
	Selector  string
	UserAgent string
	Headless  bool
	Timeout   time.Duration
}

// BrowserSource reads the feed from a live page rendered by Chrome. The
// browser is started lazily and kept open between reads.
type BrowserSource struct {
	cfg BrowserConfig
	log *zap.SugaredLogger

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewBrowserSource creates a browser-backed source
func NewBrowserSource(cfg BrowserConfig, log *zap.SugaredLogger) *BrowserSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &BrowserSource{cfg: cfg, log: log}
}

func (b *BrowserSource) start() error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)
	if b.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	navCtx, cancel := context.WithTimeout(browserCtx, b.cfg.Timeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(b.cfg.URL)); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("opening %s: %w", b.cfg.URL, err)
	}

	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.allocCancel = allocCancel
	b.log.Infow("browser started", "url", b.cfg.URL, "headless", b.cfg.Headless)
	return nil
}

// Text returns the inner text of the configured element
func (b *BrowserSource) Text(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx == nil {
		if err := b.start(); err != nil {
			return "", err
		}
	}

	runCtx, cancel := context.WithTimeout(b.browserCtx, b.cfg.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var text string
	err := chromedp.Run(runCtx, chromedp.Text(b.cfg.Selector, &text, chromedp.ByQuery))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", ErrElementMissing, b.cfg.Selector)
		}
		return "", fmt.Errorf("reading %s: %w", b.cfg.Selector, err)
	}
	return text, nil
}

// Reset shuts the browser down; the next Text relaunches it
func (b *BrowserSource) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shutdown()
}

// Close shuts the browser down
func (b *BrowserSource) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shutdown()
	return nil
}

func (b *BrowserSource) shutdown() {
	if b.browserCtx == nil {
		return
	}
	b.browserCancel()
	b.allocCancel()
	b.browserCtx = nil
	b.log.Info("browser stopped")
}
