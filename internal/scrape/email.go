// Package scrape extracts contact emails from business websites.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// emailRe matches local-part@domain.tld with a tld of at least two letters.
var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// maxBodyBytes caps how much of a page is read before scanning.
const maxBodyBytes = 512 * 1024

// EmailScraper fetches a web page and scans its visible text for the first
// email-looking string. Extraction is best effort: every network, parse, or
// timeout failure is logged and reported as "no email", never as an error.
type EmailScraper struct {
	client *http.Client
}

// Option configures the scraper.
type Option func(*EmailScraper)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *EmailScraper) {
		s.client = hc
	}
}

// NewEmailScraper creates an EmailScraper with a 10-second request timeout.
func NewEmailScraper(opts ...Option) *EmailScraper {
	s := &EmailScraper{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Extract returns the first email found in the visible text of siteURL, or
// "" when none is found or the fetch fails.
func (s *EmailScraper) Extract(ctx context.Context, siteURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		zap.L().Warn("scrape: bad website url", zap.String("url", siteURL), zap.Error(err))
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MapleadsBot/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		zap.L().Warn("scrape: fetch failed", zap.String("url", siteURL), zap.Error(err))
		return ""
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		zap.L().Debug("scrape: error status", zap.String("url", siteURL), zap.Int("status", resp.StatusCode))
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		zap.L().Warn("scrape: parse failed", zap.String("url", siteURL), zap.Error(err))
		return ""
	}

	// Drop non-visible blocks before scanning the text.
	doc.Find("script, style, noscript").Remove()

	email := emailRe.FindString(doc.Text())
	if email == "" {
		zap.L().Debug("scrape: no email found", zap.String("url", siteURL))
		return ""
	}

	zap.L().Info("scrape: email extracted", zap.String("url", siteURL), zap.String("email", email))
	return email
}
