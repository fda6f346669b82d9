// Package webscrape extracts enrichable attributes from a restaurant's own
// website: contact details, social handles, opening hours, cuisine, pricing,
// menu and cover image URLs.
package webscrape

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tastelondon/enrich-cli/internal/resilience"
)

// Options configures the website scraper.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = "Mozilla/5.0 (compatible; enrich-cli/1.0)"
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 2
	}
	return o
}

// Scraper fetches restaurant websites and runs the attribute extractors.
// Each extractor is independent: one failing or finding nothing never
// affects the others.
type Scraper struct {
	opts   Options
	client *http.Client
	retry  resilience.RetryConfig
}

// NewScraper creates a website scraper.
func NewScraper(opts Options) *Scraper {
	opts = opts.withDefaults()
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = opts.MaxRetries
	retry.OnRetry = resilience.RetryLogger("webscrape", "fetch")
	return &Scraper{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		retry:  retry,
	}
}

// Scrape fetches the website and returns every attribute the extractors
// could find, keyed by attribute name.
func (s *Scraper) Scrape(ctx context.Context, websiteURL string) (map[string]string, error) {
	websiteURL = normalizeURL(websiteURL)
	if websiteURL == "" {
		return nil, eris.New("webscrape: website url is empty")
	}

	html, finalURL, err := s.fetch(ctx, websiteURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "webscrape: parse html")
	}

	attrs := Extract(doc, html, finalURL)
	zap.L().Debug("website scraped",
		zap.String("url", websiteURL),
		zap.Int("attributes", len(attrs)),
	)
	return attrs, nil
}

func (s *Scraper) fetch(ctx context.Context, rawURL string) (string, string, error) {
	type page struct {
		html     string
		finalURL string
	}
	p, err := resilience.Do(ctx, s.retry, func(ctx context.Context) (page, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return page{}, eris.Wrap(err, "webscrape: create request")
		}
		req.Header.Set("User-Agent", s.opts.UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return page{}, eris.Wrap(err, "webscrape: request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("webscrape: unexpected status %d from %s", resp.StatusCode, rawURL)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return page{}, resilience.NewTransientError(err, resp.StatusCode)
			}
			return page{}, err
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return page{}, eris.Wrap(err, "webscrape: read body")
		}
		return page{html: string(body), finalURL: resp.Request.URL.String()}, nil
	})
	if err != nil {
		return "", "", err
	}
	return p.html, p.finalURL, nil
}

// normalizeURL defaults bare hostnames to https.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw
}
