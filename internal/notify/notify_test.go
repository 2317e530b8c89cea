package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsbtracker/pkg/model"
)

func TestGateway(t *testing.T) {
	addr, err := Gateway("(555) 123-4567", "Verizon")
	require.NoError(t, err)
	assert.Equal(t, "5551234567@vtext.com", addr)

	_, err = Gateway("5551234567", "carrier-pigeon")
	assert.Error(t, err)

	_, err = Gateway("12345", "att")
	assert.Error(t, err)
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "(555) 123-4567", FormatPhone("+1 555.123.4567"))
	assert.Equal(t, "123", FormatPhone("123"))
}

func TestCarrierNamesSorted(t *testing.T) {
	names := CarrierNames()
	assert.Len(t, names, len(Carriers))
	assert.Equal(t, "alltel", names[0])
}

func TestComposeMessageRoundTrip(t *testing.T) {
	date := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	raw, err := ComposeMessage("bot@example.com", "5551234567@vtext.com", "WSB Tickers", "Bull/Bear Ratio: 2.50", date)
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Subject: WSB Tickers")
	assert.Contains(t, s, "To: <5551234567@vtext.com>")
	assert.Contains(t, s, "text/plain")

	text, err := plainText(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Bull/Bear Ratio: 2.50", text)
}

func TestPlainTextJoinsLines(t *testing.T) {
	raw := "From: 5551234567@vtext.com\r\nContent-Type: text/plain\r\n\r\nsta\r\ntus\r\n"
	text, err := plainText(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "status", text)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
		ok   bool
	}{
		{"help", CmdHelp, true},
		{"  STATUS ", CmdStatus, true},
		{"Top please", CmdTop, true},
		{"ema", CmdEma, true},
		{"squeeze", CmdSqueeze, true},
		{"buy GME", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCommand(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Contains(t, HelpText(), "squeeze - latest short squeeze watchlist")
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	_, ok := q.Pop()
	assert.False(t, ok)

	q.Push("help")
	q.Push("top")
	assert.Equal(t, 2, q.Len())

	select {
	case <-q.Ready():
	default:
		t.Fatal("expected ready signal")
	}

	first, _ := q.Pop()
	second, _ := q.Pop()
	assert.Equal(t, "help", first)
	assert.Equal(t, "top", second)
	assert.Equal(t, 0, q.Len())
}

type sent struct {
	recipient, subject, body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (r *recordingNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, sent{recipient, subject, body})
	return nil
}

func TestMessengerTopTickers(t *testing.T) {
	n := &recordingNotifier{}
	m := NewMessenger(n, "5551234567@vtext.com", time.Millisecond, nil, nil)

	var top []model.TopTicker
	for i := 0; i < 12; i++ {
		top = append(top, model.TopTicker{TickerSentiment: model.TickerSentiment{Symbol: "T" + string(rune('A'+i)), Ratio: 2.456}})
	}

	require.NoError(t, m.TopTickers(context.Background(), top))
	require.Len(t, n.msgs, 11)
	assert.Equal(t, SubjectTickers, n.msgs[0].subject)
	assert.Equal(t, "TA", n.msgs[1].subject)
	assert.Equal(t, "Bull/Bear Ratio: 2.46", n.msgs[1].body)
	assert.Equal(t, "5551234567@vtext.com", n.msgs[1].recipient)
}

func TestMessengerInvalidCommandSendsMenu(t *testing.T) {
	n := &recordingNotifier{}
	m := NewMessenger(n, "x@vtext.com", time.Millisecond, nil, nil)

	require.NoError(t, m.InvalidCommand(context.Background()))
	require.Len(t, n.msgs, 2)
	assert.Equal(t, SubjectError, n.msgs[0].subject)
	assert.Equal(t, TextInvalidCmd, n.msgs[0].body)
	assert.Equal(t, HelpText(), n.msgs[1].body)
}

func TestMessengerWrapsSendError(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	m := NewMessenger(n, "x@vtext.com", time.Millisecond, nil, nil)

	err := m.Startup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), SubjectStartup)
}

type scriptedInbox struct {
	mu      sync.Mutex
	replies []string
}

func (s *scriptedInbox) Poll(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		return "", false, nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r == "!" {
		return "", false, errors.New("imap timeout")
	}
	return r, true, nil
}

func TestPollerQueuesReplies(t *testing.T) {
	q := NewQueue()
	p := NewPoller(&scriptedInbox{replies: []string{"help", "!", "top"}}, q, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return q.Len() == 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	first, _ := q.Pop()
	assert.Equal(t, "help", first)
}
