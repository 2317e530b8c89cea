package notify

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// Inbox yields operator replies. ok is false when nothing new arrived.
type Inbox interface {
	Poll(ctx context.Context) (text string, ok bool, err error)
}

// IMAPConfig holds incoming mail server settings
type IMAPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
	Sender   string // only messages from this address are read
	Delete   bool   // delete processed messages instead of leaving them seen
	Timeout  time.Duration
}

// IMAPInbox reads the newest unseen message from the operator over IMAP.
// Each Poll opens its own session.
type IMAPInbox struct {
	cfg IMAPConfig
}

// NewIMAPInbox creates an inbox
func NewIMAPInbox(cfg IMAPConfig) *IMAPInbox {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &IMAPInbox{cfg: cfg}
}

// Poll fetches the most recent unseen message from the sender and returns
// its plain-text body. Older unseen messages are marked processed too.
func (in *IMAPInbox) Poll(ctx context.Context) (string, bool, error) {
	addr := net.JoinHostPort(in.cfg.Host, strconv.Itoa(in.cfg.Port))
	c, err := client.DialWithDialerTLS(&net.Dialer{Timeout: in.cfg.Timeout}, addr, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	c.Timeout = in.cfg.Timeout
	defer c.Logout()

	stop := context.AfterFunc(ctx, func() { c.Terminate() })
	defer stop()

	if err := c.Login(in.cfg.Username, in.cfg.Password); err != nil {
		return "", false, fmt.Errorf("IMAP login failed: %w", err)
	}

	mbox, err := c.Select(in.cfg.Mailbox, false)
	if err != nil {
		return "", false, fmt.Errorf("failed to select %s: %w", in.cfg.Mailbox, err)
	}
	if mbox.Messages == 0 {
		return "", false, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if in.cfg.Sender != "" {
		criteria.Header.Add("From", in.cfg.Sender)
	}

	seqNums, err := c.Search(criteria)
	if err != nil {
		return "", false, fmt.Errorf("failed to search for unseen messages: %w", err)
	}
	if len(seqNums) == 0 {
		return "", false, nil
	}

	latest := new(imap.SeqSet)
	latest.AddNum(seqNums[len(seqNums)-1])

	messages := make(chan *imap.Message, 1)
	section := &imap.BodySectionName{}

	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(latest, []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}, messages)
	}()

	var text string
	var parseErr error
	for msg := range messages {
		if msg == nil {
			continue
		}
		text, parseErr = plainText(msg.GetBody(section))
	}
	if err := <-done; err != nil {
		return "", false, fmt.Errorf("failed to fetch message: %w", err)
	}

	all := new(imap.SeqSet)
	all.AddNum(seqNums...)
	if err := in.markProcessed(c, all); err != nil {
		return "", false, err
	}

	if parseErr != nil {
		return "", false, parseErr
	}
	return text, true, nil
}

func (in *IMAPInbox) markProcessed(c *client.Client, set *imap.SeqSet) error {
	flags := []interface{}{imap.SeenFlag}
	if in.cfg.Delete {
		flags = append(flags, imap.DeletedFlag)
	}

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := c.Store(set, item, flags, nil); err != nil {
		return fmt.Errorf("failed to flag processed messages: %w", err)
	}
	if in.cfg.Delete {
		if err := c.Expunge(nil); err != nil {
			return fmt.Errorf("failed to expunge processed messages: %w", err)
		}
	}
	return nil
}

// plainText extracts the first text/plain part of a message with line
// breaks removed, the way carrier gateways deliver SMS replies.
func plainText(r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no body section")
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to create mail reader: %w", err)
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read next part: %w", err)
		}

		var contentType string
		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ = h.ContentType()
		case *mail.AttachmentHeader:
			// some gateways omit the content type on replies
			contentType, _, _ = h.ContentType()
			if contentType != "" {
				continue
			}
		}
		if contentType != "" && !strings.HasPrefix(contentType, "text/plain") {
			continue
		}
		b, err := io.ReadAll(p.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read body: %w", err)
		}
		return strings.TrimSpace(strings.NewReplacer("\r\n", "", "\n", "").Replace(string(b))), nil
	}
	return "", fmt.Errorf("message has no text/plain part")
}
