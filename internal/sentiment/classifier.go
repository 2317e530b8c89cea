package sentiment

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	"wsbtracker/internal/symbols"
	"wsbtracker/pkg/model"
)

// Classifier turns raw feed lines into attributed sentiment events
type Classifier struct {
	universe *symbols.Universe
	newID    func() string
}

// NewClassifier creates a classifier that resolves tickers against u
func NewClassifier(u *symbols.Universe) *Classifier {
	return &Classifier{universe: u, newID: uuid.NewString}
}

// Classify groups lines into comments and emits one event per mentioned
// ticker, or a single untagged event when none is mentioned.
// Malformed comments are skipped.
func (c *Classifier) Classify(lines []string) []model.CommentEvent {
	var events []model.CommentEvent
	for _, comment := range coalesce(lines) {
		fields := strings.SplitN(comment, " ", 4)
		if len(fields) < 4 {
			continue
		}

		sentiment := model.ParseSentiment(fields[0])
		stamp := stripBrackets(fields[1])
		body := fields[3]
		commentID := c.newID()

		tickers := c.Tickers(body)
		if len(tickers) == 0 {
			events = append(events, model.CommentEvent{
				ID:        c.newID(),
				CommentID: commentID,
				Time:      stamp,
				Sentiment: sentiment,
				Body:      body,
			})
			continue
		}
		for _, t := range tickers {
			events = append(events, model.CommentEvent{
				ID:        c.newID(),
				CommentID: commentID,
				Time:      stamp,
				Sentiment: sentiment,
				Ticker:    t,
				Body:      body,
			})
		}
	}
	return events
}

// Tickers extracts the mentioned tickers of a comment body in first-seen order
func (c *Classifier) Tickers(body string) []string {
	var found []string
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(body) {
		if !isUpper(word) {
			continue
		}
		token := alnum(word)
		if !c.universe.Accepts(token) {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		found = append(found, token)
	}
	return found
}

func isMarker(line string) bool {
	return strings.Contains(line, "bullish") ||
		strings.Contains(line, "bearish") ||
		strings.Contains(line, "none")
}

// coalesce joins each marker line with the continuation lines that follow it
// up to the next marker. Lines after the last marker stay unattached, and
// comments tagged "none" are dropped.
func coalesce(lines []string) []string {
	var idx []int
	for i, line := range lines {
		if isMarker(line) {
			idx = append(idx, i)
		}
	}

	var comments []string
	for i, start := range idx {
		if markerOf(lines[start]) == "none" {
			continue
		}
		if i < len(idx)-1 && idx[i+1]-start > 1 {
			comments = append(comments, strings.Join(lines[start:idx[i+1]], " "))
			continue
		}
		comments = append(comments, lines[start])
	}
	return comments
}

// markerOf returns the sentiment tag leading a marker line
func markerOf(line string) string {
	marker, _, _ := strings.Cut(line, " ")
	return marker
}

func stripBrackets(s string) string {
	if len(s) < 2 {
		return ""
	}
	return s[1 : len(s)-1]
}

// isUpper reports whether s has at least one cased letter and no lower-case one
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
