package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div id="comment-area">
  <p>bullish [09:31:02] ape   TSLA to the moon</p>
  <p>bearish [09:31:05] bear SPY puts</p>
  <p>   </p>
</div>
</body></html>`

func TestHTTPSourceText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wsb-test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, "#comment-area", "wsb-test", time.Second)
	defer src.Close()

	text, err := src.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bullish [09:31:02] ape TSLA to the moon\nbearish [09:31:05] bear SPY puts", text)
}

func TestHTTPSourceMissingElement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>maintenance</p></body></html>")
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, "#comment-area", "", time.Second).Text(context.Background())
	assert.True(t, errors.Is(err, ErrElementMissing))
}

func TestHTTPSourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, "#comment-area", "", time.Second).Text(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrElementMissing))
}

func TestHTTPSourcePlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div id="feed">  single line  </div>`)
	}))
	defer srv.Close()

	text, err := NewHTTPSource(srv.URL, "#feed", "", time.Second).Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "single line", text)
}
