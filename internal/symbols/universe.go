package symbols

import "strings"

// Universe is the immutable set of tradeable symbols a comment token is
// checked against. It is built once at startup and shared read-only.
type Universe struct {
	listed map[string]struct{}
	ignore map[string]struct{}
}

// NewUniverse creates a universe from listed symbols and an ignore-list.
// Both inputs are upper-cased.
func NewUniverse(listed []string, ignore []string) *Universe {
	u := &Universe{
		listed: make(map[string]struct{}, len(listed)),
		ignore: make(map[string]struct{}, len(ignore)),
	}
	for _, s := range listed {
		if s = normalize(s); s != "" {
			u.listed[s] = struct{}{}
		}
	}
	for _, w := range ignore {
		if w = normalize(w); w != "" {
			u.ignore[w] = struct{}{}
		}
	}
	return u
}

// Len returns the number of listed symbols
func (u *Universe) Len() int {
	return len(u.listed)
}

// IsListed reports whether symbol is a listed company ticker (ETFs excluded)
func (u *Universe) IsListed(symbol string) bool {
	_, ok := u.listed[symbol]
	return ok
}

// IsIgnored reports whether a word is on the ignore-list
func (u *Universe) IsIgnored(word string) bool {
	_, ok := u.ignore[word]
	return ok
}

// Accepts reports whether a cleaned token counts as a ticker mention:
// listed or a known ETF, and not ignored.
func (u *Universe) Accepts(token string) bool {
	if token == "" || u.IsIgnored(token) {
		return false
	}
	return u.IsListed(token) || IsETF(token)
}

// FilterListed keeps only listed symbols, preserving order
func (u *Universe) FilterListed(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if u.IsListed(s) {
			out = append(out, s)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
