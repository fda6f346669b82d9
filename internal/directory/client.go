package directory

import (
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tastelondon/enrich-cli/internal/resilience"
)

// Options configures the directory client.
type Options struct {
	BaseURL           string
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	MaxRetries        int
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = "https://www.tripadvisor.co.uk"
	}
	if o.UserAgent == "" {
		o.UserAgent = "Mozilla/5.0 (compatible; enrich-cli/1.0)"
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 0.5
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	return o
}

// Client talks to a TripAdvisor-style venue directory over HTTP. All
// requests go through a shared rate limiter, directories ban aggressive
// scrapers quickly.
type Client struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

var _ Finder = (*Client)(nil)

// NewClient creates a directory client.
func NewClient(opts Options) *Client {
	opts = opts.withDefaults()
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = opts.MaxRetries
	retry.OnRetry = resilience.RetryLogger("directory", "fetch")
	return &Client{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		retry:   retry,
	}
}

// fetchDoc GETs the URL and parses the body as HTML. 429 and 5xx responses
// surface as transient errors so the retry layer re-attempts them.
func (c *Client) fetchDoc(ctx context.Context, rawURL string) (*goquery.Document, error) {
	return resilience.Do(ctx, c.retry, func(ctx context.Context) (*goquery.Document, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "directory: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "directory: create request")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "directory: request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("directory: unexpected status %d from %s", resp.StatusCode, rawURL)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "directory: parse html")
		}

		zap.L().Debug("directory page fetched", zap.String("url", rawURL))
		return doc, nil
	})
}
