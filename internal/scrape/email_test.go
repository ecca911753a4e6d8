package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
}

func TestExtract_FindsFirstEmail(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Reach us at info@blueox.example or sales@blueox.example.</p>
	</body></html>`)
	defer srv.Close()

	s := NewEmailScraper()
	assert.Equal(t, "info@blueox.example", s.Extract(context.Background(), srv.URL))
}

func TestExtract_NoEmail(t *testing.T) {
	srv := serveHTML(t, `<html><body><p>Call us today!</p></body></html>`)
	defer srv.Close()

	s := NewEmailScraper()
	assert.Empty(t, s.Extract(context.Background(), srv.URL))
}

func TestExtract_IgnoresScriptAndStyleText(t *testing.T) {
	srv := serveHTML(t, `<html><head>
		<script>var tracking = "bot@tracker.example";</script>
		<style>/* css@not.real.example */</style>
	</head><body><p>Write to contact@blueox.example</p></body></html>`)
	defer srv.Close()

	s := NewEmailScraper()
	assert.Equal(t, "contact@blueox.example", s.Extract(context.Background(), srv.URL))
}

func TestExtract_RequiresTwoLetterTLD(t *testing.T) {
	srv := serveHTML(t, `<html><body><p>bad@host.x but good@host.io</p></body></html>`)
	defer srv.Close()

	s := NewEmailScraper()
	assert.Equal(t, "good@host.io", s.Extract(context.Background(), srv.URL))
}

func TestExtract_ErrorStatusMeansNoEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewEmailScraper()
	assert.Empty(t, s.Extract(context.Background(), srv.URL))
}

func TestExtract_UnreachableHostMeansNoEmail(t *testing.T) {
	s := NewEmailScraper(WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))
	assert.Empty(t, s.Extract(context.Background(), "http://127.0.0.1:1/contact"))
}

func TestExtract_BadURLMeansNoEmail(t *testing.T) {
	s := NewEmailScraper()
	assert.Empty(t, s.Extract(context.Background(), "://not-a-url"))
}

func TestExtract_TimeoutMeansNoEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	s := NewEmailScraper(WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	assert.Empty(t, s.Extract(context.Background(), srv.URL))
}
