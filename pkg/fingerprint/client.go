// Package fingerprint looks up the technology stack of a website via a
// wappalyzer-style fingerprinting HTTP service.
package fingerprint

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadspider-cli/internal/resilience"
)

// Technology is one detected technology with the categories the service
// assigned to it.
type Technology struct {
	Categories []string `json:"categories"`
}

// Client resolves a page URL to the technologies detected on its site.
type Client interface {
	// Lookup fingerprints the site a page belongs to. The result maps
	// technology name to its categories.
	Lookup(ctx context.Context, pageURL string) (map[string]Technology, error)
}

// Option configures the client.
type Option func(*client)

// WithAPIKey sets the bearer token sent with every lookup.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.key = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for lookups.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetryPolicy overrides the retry behavior for lookups.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *client) {
		c.retry = p
	}
}

// WithCacheSize sets how many hosts the lookup cache remembers.
func WithCacheSize(n int) Option {
	return func(c *client) {
		c.cacheSize = n
	}
}

type client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.Policy
	cacheSize  int
	cache      *lru.Cache[string, map[string]Technology]
}

// New creates a fingerprinting client for the service at baseURL.
// Results are cached per host, so repeated lookups for pages of the same
// site cost one request.
func New(baseURL string, opts ...Option) (Client, error) {
	if baseURL == "" {
		return nil, eris.New("fingerprint: base url required")
	}
	retry := resilience.DefaultPolicy()
	retry.OnRetry = resilience.Logger("fingerprint")
	c := &client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(2, 2),
		retry:      retry,
		cacheSize:  256,
	}
	for _, opt := range opts {
		opt(c)
	}

	cache, err := lru.New[string, map[string]Technology](c.cacheSize)
	if err != nil {
		return nil, eris.Wrap(err, "fingerprint: build cache")
	}
	c.cache = cache
	return c, nil
}

func (c *client) Lookup(ctx context.Context, pageURL string) (map[string]Technology, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return nil, eris.Errorf("fingerprint: invalid page url %q", pageURL)
	}

	if techs, ok := c.cache.Get(parsed.Host); ok {
		return techs, nil
	}

	techs, err := resilience.Do(ctx, c.retry, func(ctx context.Context) (map[string]Technology, error) {
		return c.lookupOnce(ctx, pageURL)
	})
	if err != nil {
		return nil, err
	}

	c.cache.Add(parsed.Host, techs)
	return techs, nil
}

func (c *client) lookupOnce(ctx context.Context, pageURL string) (map[string]Technology, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fingerprint: rate limit")
	}

	endpoint := c.baseURL + "/lookup?url=" + url.QueryEscape(pageURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fingerprint: build request")
	}
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fingerprint: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("fingerprint: service returned status %d", resp.StatusCode)
		if resilience.TransientStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "fingerprint: read body")
	}

	techs := map[string]Technology{}
	if err := json.Unmarshal(body, &techs); err != nil {
		return nil, eris.Wrap(err, "fingerprint: parse response")
	}
	return techs, nil
}

// Stub is a no-op Client for offline runs. Every lookup succeeds with
// no detected technologies.
type Stub struct{}

func (Stub) Lookup(context.Context, string) (map[string]Technology, error) {
	return map[string]Technology{}, nil
}
