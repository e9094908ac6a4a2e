package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/pkg/config"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

const responseBodyReadLimit int64 = 1024

// cacheStore is the slice of the redis client the rate cache needs.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	RatesKey(base, quote string) string
}

// Client resolves USD to NGN conversion rates with a cache and a static
// fallback so checkout never blocks on the rates provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      cacheStore
	cacheTTL   time.Duration
	fallback   decimal.Decimal
	logg       *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured rates base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the rates client. The cache may be nil, in which case every
// lookup hits the provider.
func NewClient(cfg config.RatesConfig, cache cacheStore, logg *logger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("rates base url is required")
	}
	fallback, err := decimal.NewFromString(cfg.FallbackNGN)
	if err != nil || !fallback.IsPositive() {
		return nil, fmt.Errorf("invalid fallback rate %q", cfg.FallbackNGN)
	}

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
		fallback:   fallback,
		logg:       logg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// USDToNGN returns the current conversion rate. Lookup order is cache,
// provider, then the configured fallback.
func (c *Client) USDToNGN(ctx context.Context) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}

	if cached, ok := c.cachedRate(ctx); ok {
		return cached
	}

	rate, err := c.fetchRate(ctx)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, fmt.Sprintf("rates provider unavailable, using fallback %s: %v", c.fallback, err))
		}
		return c.fallback
	}

	c.storeRate(ctx, rate)
	return rate
}

func (c *Client) cachedRate(ctx context.Context) (decimal.Decimal, bool) {
	if c.cache == nil {
		return decimal.Zero, false
	}
	raw, err := c.cache.Get(ctx, c.cache.RatesKey("USD", "NGN"))
	if err != nil {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

func (c *Client) storeRate(ctx context.Context, rate decimal.Decimal) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cache.Set(ctx, c.cache.RatesKey("USD", "NGN"), rate.String(), c.cacheTTL); err != nil && c.logg != nil {
		c.logg.Warn(ctx, fmt.Sprintf("caching exchange rate failed: %v", err))
	}
}

func (c *Client) fetchRate(ctx context.Context) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/latest/USD", strings.TrimRight(c.baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build rates request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute rates request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "rates request failed")
	}

	var apiResp struct {
		Rates map[string]json.Number `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode rates response")
	}

	raw, ok := apiResp.Rates["NGN"]
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeDependency, "rates response missing NGN")
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("invalid NGN rate %q", raw.String()))
	}

	return rate, nil
}
