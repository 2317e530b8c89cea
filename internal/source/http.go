package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// HTTPSource fetches the page with a plain GET and extracts the feed from the
// static HTML. It serves pages that render the feed server side.
type HTTPSource struct {
	client    *http.Client
	url       string
	selector  string
	userAgent string
}

// NewHTTPSource creates an HTTP source
func NewHTTPSource(url, selector, userAgent string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		client:    &http.Client{Timeout: timeout},
		url:       url,
		selector:  selector,
		userAgent: userAgent,
	}
}

// Text returns the element's text, one line per child element
func (h *HTTPSource) Text(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", h.url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", h.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", h.url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", h.url, err)
	}

	sel := doc.Find(h.selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrElementMissing, h.selector)
	}
	return elementText(sel), nil
}

func elementText(sel *goquery.Selection) string {
	children := sel.Children()
	if children.Length() == 0 {
		return strings.TrimSpace(sel.Text())
	}

	var lines []string
	children.Each(func(_ int, child *goquery.Selection) {
		if line := strings.Join(strings.Fields(child.Text()), " "); line != "" {
			lines = append(lines, line)
		}
	})
	return strings.Join(lines, "\n")
}

// Reset drops idle keep-alive connections
func (h *HTTPSource) Reset() {
	h.client.CloseIdleConnections()
}

// Close releases idle connections
func (h *HTTPSource) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
