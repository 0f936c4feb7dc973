package opendota

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/metrics"
)

const (
	// APIBase is the base URL for the OpenDota API
	APIBase = "https://api.opendota.com"

	// Request timeout
	DefaultTimeout = 30 * time.Second

	// Backoff settings
	InitialBackoff = 2 * time.Second
	MaxBackoff     = 60 * time.Second
	BackoffFactor  = 2.0

	// Circuit breaker settings
	DefaultFailureThreshold = 5
	DefaultBreakerTimeout   = 30 * time.Second
)

// Free tier allows 60 requests per minute.
var DefaultRateLimit = rate.Every(1 * time.Second)

// Client provides access to OpenDota match and hero data.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	stats      *ClientStats
	statsMu    sync.RWMutex

	// Backoff tracking
	initialBackoff  time.Duration
	backoff         time.Duration
	lastFailureTime time.Time
	backoffMu       sync.Mutex
}

// ClientOptions configures the OpenDota client.
type ClientOptions struct {
	// BaseURL overrides APIBase (tests point this at httptest servers)
	BaseURL string

	// RateLimit controls request frequency (default: 1 req/second)
	RateLimit rate.Limit

	// Timeout for HTTP requests (default: 30 seconds)
	Timeout time.Duration

	// HTTPClient allows custom HTTP client
	HTTPClient *http.Client

	// InitialBackoff is the pause after the first failure (default: 2 seconds)
	InitialBackoff time.Duration

	// FailureThreshold is the consecutive failure count that opens the breaker
	FailureThreshold uint32

	// BreakerTimeout is how long the breaker stays open before probing
	BreakerTimeout time.Duration
}

// DefaultClientOptions returns conservative default options.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL:          APIBase,
		RateLimit:        DefaultRateLimit,
		Timeout:          DefaultTimeout,
		InitialBackoff:   InitialBackoff,
		FailureThreshold: DefaultFailureThreshold,
		BreakerTimeout:   DefaultBreakerTimeout,
	}
}

// NewClient creates a new OpenDota API client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = APIBase
	}
	if options.RateLimit == 0 {
		options.RateLimit = DefaultRateLimit
	}
	if options.Timeout == 0 {
		options.Timeout = DefaultTimeout
	}
	if options.InitialBackoff == 0 {
		options.InitialBackoff = InitialBackoff
	}
	if options.FailureThreshold == 0 {
		options.FailureThreshold = DefaultFailureThreshold
	}
	if options.BreakerTimeout == 0 {
		options.BreakerTimeout = DefaultBreakerTimeout
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: options.Timeout,
		}
	}

	threshold := options.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "opendota",
		MaxRequests: 1,
		Timeout:     options.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A missing match is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || IsNotFound(err)
		},
	})

	return &Client{
		baseURL:        strings.TrimRight(options.BaseURL, "/"),
		httpClient:     httpClient,
		limiter:        rate.NewLimiter(options.RateLimit, 1),
		breaker:        breaker,
		stats:          &ClientStats{},
		initialBackoff: options.InitialBackoff,
		backoff:        options.InitialBackoff,
	}
}

// GetPublicMatches fetches the most recent public matches.
func (c *Client) GetPublicMatches(ctx context.Context) ([]PublicMatch, error) {
	body, err := c.doRequest(ctx, "public_matches", "/api/publicMatches")
	if err != nil {
		return nil, err
	}

	var matches []PublicMatch
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, &APIError{
			Type:    ErrParseError,
			Message: "failed to parse public matches response",
			Err:     err,
		}
	}

	return matches, nil
}

// GetMatch fetches a single match with its draft.
func (c *Client) GetMatch(ctx context.Context, matchID int64) (*Match, error) {
	if matchID <= 0 {
		return nil, &APIError{
			Type:    ErrInvalidParams,
			Message: fmt.Sprintf("invalid match id %d", matchID),
		}
	}

	body, err := c.doRequest(ctx, "match", fmt.Sprintf("/api/matches/%d", matchID))
	if err != nil {
		return nil, err
	}

	var match Match
	if err := json.Unmarshal(body, &match); err != nil {
		return nil, &APIError{
			Type:    ErrParseError,
			Message: "failed to parse match response",
			Err:     err,
		}
	}

	return &match, nil
}

// GetHeroStats fetches per-hero attributes for every hero.
func (c *Client) GetHeroStats(ctx context.Context) ([]HeroStats, error) {
	body, err := c.doRequest(ctx, "hero_stats", "/api/heroStats")
	if err != nil {
		return nil, err
	}

	var heroes []HeroStats
	if err := json.Unmarshal(body, &heroes); err != nil {
		return nil, &APIError{
			Type:    ErrParseError,
			Message: "failed to parse hero stats response",
			Err:     err,
		}
	}

	return heroes, nil
}

// doRequest performs a GET with backoff, rate limiting, and the circuit breaker.
func (c *Client) doRequest(ctx context.Context, endpoint, path string) ([]byte, error) {
	if err := c.waitBackoff(ctx); err != nil {
		metrics.OpenDotaRequests.WithLabelValues(endpoint, ErrRateLimited).Inc()
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &APIError{
			Type:    ErrRateLimited,
			Message: "rate limiter error",
			Err:     err,
		}
	}

	c.updateStats(func(s *ClientStats) {
		s.TotalRequests++
		s.LastRequestTime = time.Now()
	})

	startTime := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, c.baseURL+path)
	})
	latency := time.Since(startTime)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.OpenDotaRequests.WithLabelValues(endpoint, ErrCircuitOpen).Inc()
			return nil, &APIError{
				Type:    ErrCircuitOpen,
				Message: "circuit breaker open, OpenDota temporarily disabled",
				Err:     err,
			}
		}
		if IsNotFound(err) {
			c.recordSuccess(latency)
			metrics.OpenDotaRequests.WithLabelValues(endpoint, ErrNotFound).Inc()
			return nil, err
		}
		c.recordFailure()
		metrics.OpenDotaRequests.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
		return nil, err
	}

	c.recordSuccess(latency)
	metrics.OpenDotaRequests.WithLabelValues(endpoint, metrics.OutcomeSuccess).Inc()

	return body, nil
}

// fetch executes one HTTP request.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &APIError{
			Type:    ErrInvalidParams,
			Message: "failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("User-Agent", "Dota-Draft-Companion/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			Type:    ErrUnavailable,
			Message: "failed to execute request",
			Err:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		errType := ErrUnavailable
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			errType = ErrRateLimited
		case http.StatusNotFound:
			errType = ErrNotFound
		}
		return nil, &APIError{
			Type:       errType,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status code: %d, body: %s", resp.StatusCode, string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{
			Type:    ErrUnavailable,
			Message: "failed to read response body",
			Err:     err,
		}
	}

	return body, nil
}

// waitBackoff blocks until any active backoff period has elapsed or ctx is done.
func (c *Client) waitBackoff(ctx context.Context) error {
	c.backoffMu.Lock()
	var remaining time.Duration
	if !c.lastFailureTime.IsZero() {
		remaining = c.backoff - time.Since(c.lastFailureTime)
	}
	c.backoffMu.Unlock()

	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return &APIError{
			Type:    ErrRateLimited,
			Message: fmt.Sprintf("in backoff period, %v remaining", remaining),
			Err:     ctx.Err(),
		}
	}
}

// recordFailure records a failed request and increases backoff.
func (c *Client) recordFailure() {
	c.backoffMu.Lock()
	c.lastFailureTime = time.Now()
	c.backoff = time.Duration(float64(c.backoff) * BackoffFactor)
	if c.backoff > MaxBackoff {
		c.backoff = MaxBackoff
	}
	c.backoffMu.Unlock()

	c.updateStats(func(s *ClientStats) {
		s.FailedRequests++
		s.LastFailureTime = time.Now()
		s.ConsecutiveErrors++
	})
}

// recordSuccess records a successful request and resets backoff.
func (c *Client) recordSuccess(latency time.Duration) {
	c.backoffMu.Lock()
	c.backoff = c.initialBackoff
	c.lastFailureTime = time.Time{}
	c.backoffMu.Unlock()

	c.updateStats(func(s *ClientStats) {
		s.LastSuccessTime = time.Now()
		s.ConsecutiveErrors = 0

		if s.AverageLatency == 0 {
			s.AverageLatency = latency
		} else {
			s.AverageLatency = (s.AverageLatency + latency) / 2
		}
	})
}

// updateStats safely updates client statistics.
func (c *Client) updateStats(fn func(*ClientStats)) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	fn(c.stats)
}

// GetStats returns a copy of the current client statistics.
func (c *Client) GetStats() ClientStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return *c.stats
}

// BreakerState returns the circuit breaker state ("closed", "half-open", "open").
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// ResetBackoff manually resets the backoff timer.
func (c *Client) ResetBackoff() {
	c.backoffMu.Lock()
	defer c.backoffMu.Unlock()
	c.backoff = c.initialBackoff
	c.lastFailureTime = time.Time{}
}
