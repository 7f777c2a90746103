package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrRateUnavailable is returned when the rate API fails and nothing is cached.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	// ErrUnsupportedCurrency is returned when the API has no rate for a currency.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// DefaultBaseURL is the public exchangerate-api endpoint.
const DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest"

// DefaultCacheTTL is how long a fetched rate is served without refetching.
const DefaultCacheTTL = 30 * time.Minute

type cachedRate struct {
	rate      float64
	fetchedAt time.Time
}

// latestResponse is the payload of GET {base}/{FROM}.
type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Client is a RateSource backed by an exchangerate-api compatible HTTP API.
// Rates are cached per currency pair; when the API fails, a stale cached
// rate is returned instead of an error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	ttl        time.Duration
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedRate

	group singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithCacheTTL sets how long rates stay fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(cl *Client) { cl.ttl = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(cl *Client) { cl.now = now }
}

// NewClient creates a rate client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		ttl:        DefaultCacheTTL,
		now:        time.Now,
		cache:      make(map[string]cachedRate),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ RateSource = (*Client)(nil)

func cacheKey(from, to string) string {
	return from + "_" + to
}

// Rate returns the rate from one currency to another.
func (c *Client) Rate(ctx context.Context, from, to string) (float64, error) {
	from, to = Normalize(from), Normalize(to)
	if from == to {
		return 1, nil
	}

	key := cacheKey(from, to)
	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		return cached.rate, nil
	}

	// One request per base currency fills every pair it covers. The flight
	// is shared, so one caller's cancellation must not fail the others.
	_, err, _ := c.group.Do(from, func() (any, error) {
		return nil, c.fetch(context.WithoutCancel(ctx), from)
	})
	if err != nil {
		if ok {
			slog.Warn("Serving stale exchange rate", "from", from, "to", to, "error", err)
			return cached.rate, nil
		}
		return 0, err
	}

	c.mu.RLock()
	fresh, ok := c.cache[key]
	c.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
	}
	return fresh.rate, nil
}

func (c *Client) fetch(ctx context.Context, base string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+base, nil)
	if err != nil {
		return fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, base)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrRateUnavailable, resp.StatusCode)
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrRateUnavailable, err)
	}

	fetchedAt := c.now()
	c.mu.Lock()
	for code, rate := range payload.Rates {
		if rate > 0 {
			c.cache[cacheKey(base, Normalize(code))] = cachedRate{rate: rate, fetchedAt: fetchedAt}
		}
	}
	c.mu.Unlock()

	slog.Debug("Fetched exchange rates", "base", base, "count", len(payload.Rates))
	return nil
}
