package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wsbtracker/internal/metrics"
	"wsbtracker/internal/ratelimit"
	"wsbtracker/pkg/model"
)

// Subjects
const (
	SubjectStartup  = "Email SMS Startup"
	SubjectTickers  = "WSB Tickers"
	SubjectShutdown = "Email SMS Shutdown"
	SubjectMessage  = "Email SMS Message"
	SubjectError    = "Email SMS Error"
)

var separator = strings.Repeat("-", 60)

// Message bodies
var (
	TextStartup    = "SMS is active! Waiting to send WSB Tickers!\n" + separator
	TextTickers    = "Here are the top 10 mentioned WSB Tickers!\n" + separator
	TextConfirm    = "Command Received...Processing Request...\n" + separator
	TextShutdown   = "SMS shutting down...\n" + separator
	TextInvalidCmd = "ERROR: Invalid command entered.\n" + separator
	TextGeneralErr = "ERROR: An unknown error occured.\n" + separator
)

// TickerTextLimit caps the tickers texted at market open
const TickerTextLimit = 10

// Messenger sends the tracker's SMS messages to one phone through a
// Notifier, pacing consecutive messages so carriers don't drop them.
type Messenger struct {
	notifier  Notifier
	recipient string
	limiter   *ratelimit.Limiter
	log       *zap.SugaredLogger
	metrics   *metrics.Metrics
}

// NewMessenger creates a messenger. delay is the minimum gap between
// messages.
func NewMessenger(n Notifier, recipient string, delay time.Duration, log *zap.SugaredLogger, m *metrics.Metrics) *Messenger {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	perMinute := 60
	if delay > 0 {
		perMinute = int(time.Minute / delay)
	}
	return &Messenger{
		notifier:  n,
		recipient: recipient,
		limiter:   ratelimit.NewLimiter("sms", perMinute),
		log:       log,
		metrics:   m,
	}
}

// Recipient returns the gateway address messages go to
func (s *Messenger) Recipient() string {
	return s.recipient
}

func (s *Messenger) send(ctx context.Context, subject, body string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	err := s.notifier.Send(ctx, s.recipient, subject, body)
	s.metrics.Notification(err)
	if err != nil {
		return fmt.Errorf("sending %q: %w", subject, err)
	}
	s.log.Debugw("sent message", "subject", subject)
	return nil
}

// Startup announces the tracker is running
func (s *Messenger) Startup(ctx context.Context) error {
	return s.send(ctx, SubjectStartup, TextStartup)
}

// Shutdown announces the tracker is stopping
func (s *Messenger) Shutdown(ctx context.Context) error {
	return s.send(ctx, SubjectShutdown, TextShutdown)
}

// Message sends free text
func (s *Messenger) Message(ctx context.Context, text string) error {
	return s.send(ctx, SubjectMessage, text)
}

// Confirm acknowledges an operator command
func (s *Messenger) Confirm(ctx context.Context) error {
	return s.send(ctx, SubjectMessage, TextConfirm)
}

// InvalidCommand answers an unknown operator command with the menu
func (s *Messenger) InvalidCommand(ctx context.Context) error {
	if err := s.send(ctx, SubjectError, TextInvalidCmd); err != nil {
		return err
	}
	return s.send(ctx, SubjectMessage, HelpText())
}

// Error reports a failed operator command
func (s *Messenger) Error(ctx context.Context) error {
	return s.send(ctx, SubjectError, TextGeneralErr)
}

// TopTickers texts a header followed by one message per ticker, at most ten
func (s *Messenger) TopTickers(ctx context.Context, top []model.TopTicker) error {
	if err := s.send(ctx, SubjectTickers, TextTickers); err != nil {
		return err
	}
	if len(top) > TickerTextLimit {
		top = top[:TickerTextLimit]
	}
	for _, t := range top {
		if err := s.send(ctx, t.Symbol, fmt.Sprintf("Bull/Bear Ratio: %.2f", t.Ratio)); err != nil {
			return err
		}
	}
	return nil
}
