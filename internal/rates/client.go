// Package rates fetches exchange rates from the public rate API used to
// quote listings in KRW. The upstream is a free third-party service, so
// calls go through a circuit breaker and recent rates are cached; when the
// breaker is open the cache serves as the fallback.
package rates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/sejin-coding/currex-go/pkg/errors"
	"github.com/sejin-coding/currex-go/pkg/httpclient"
)

// DefaultBaseURL is the public exchange-rate API endpoint.
const DefaultBaseURL = "https://api.exchangerate-api.com"

const defaultTTL = 10 * time.Minute

type ratesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

type cacheEntry struct {
	rates     map[string]float64
	fetchedAt time.Time
}

// Client quotes foreign currency amounts in KRW.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	ttl     time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func New(baseURL string, logger *slog.Logger) *Client {
	base := httpclient.New(httpclient.Config{
		Timeout:      10 * time.Second,
		MaxRetries:   2,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	})
	return &Client{
		http:    httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("exchange-rates"), logger),
		baseURL: baseURL,
		ttl:     defaultTTL,
		logger:  logger,
		cache:   make(map[string]cacheEntry),
	}
}

// KRWRate returns how many KRW one unit of the given currency is worth.
// Fresh cached rates are served without a network call; when the upstream is
// unavailable a stale cached rate is better than no quote at all.
func (c *Client) KRWRate(ctx context.Context, currency string) (float64, error) {
	if currency == "" {
		return 0, apperrors.Validation("currency is required", nil)
	}

	if entry, ok := c.lookup(currency, c.ttl); ok {
		return entry.rates["KRW"], nil
	}

	rates, err := c.fetch(ctx, currency)
	if err != nil {
		return 0, err
	}
	return rates["KRW"], nil
}

// Convert quotes an amount of foreign currency in KRW, rounded to the won.
func (c *Client) Convert(ctx context.Context, currency string, amount float64) (int64, error) {
	if amount <= 0 {
		return 0, apperrors.Validation("amount must be positive", nil)
	}
	rate, err := c.KRWRate(ctx, currency)
	if err != nil {
		return 0, err
	}
	return int64(amount*rate + 0.5), nil
}

func (c *Client) fetch(ctx context.Context, currency string) (map[string]float64, error) {
	// The fallback closes over the currency so an open breaker can serve
	// the last known rates for exactly the currency being asked about.
	cb := c.http.WithFallback(func(ctx context.Context, cause error) (*http.Response, error) {
		entry, ok := c.lookup(currency, 0)
		if !ok {
			return nil, cause
		}
		c.logger.WarnContext(ctx, "serving stale exchange rates",
			slog.String("currency", currency),
			slog.Time("fetched_at", entry.fetchedAt),
		)
		return syntheticResponse(currency, entry.rates)
	})

	resp, err := cb.Get(ctx, fmt.Sprintf("%s/v4/latest/%s", c.baseURL, currency))
	if err != nil {
		return nil, apperrors.Network(fmt.Errorf("fetch rates for %s: %w", currency, err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d for %s", resp.StatusCode, currency)
	}

	var parsed ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode rate feed for %s: %w", currency, err)
	}

	// A response without a KRW entry is useless here; caching it would turn
	// every call within the TTL into a silent zero quote.
	if _, ok := parsed.Rates["KRW"]; !ok {
		return nil, fmt.Errorf("rate feed for %s has no KRW entry", currency)
	}

	c.store(currency, parsed.Rates)
	return parsed.Rates, nil
}

// lookup returns the cached entry for a currency. maxAge 0 accepts entries
// of any age.
func (c *Client) lookup(currency string, maxAge time.Duration) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[currency]
	if !ok {
		return cacheEntry{}, false
	}
	if maxAge > 0 && time.Since(entry.fetchedAt) > maxAge {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *Client) store(currency string, rates map[string]float64) {
	c.mu.Lock()
	c.cache[currency] = cacheEntry{rates: rates, fetchedAt: time.Now()}
	c.mu.Unlock()
}

func syntheticResponse(currency string, rates map[string]float64) (*http.Response, error) {
	body, err := json.Marshal(ratesResponse{Base: currency, Rates: rates})
	if err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}, nil
}
