package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the breaker rejects a request without
// sending it.
var ErrCircuitOpen = gobreaker.ErrOpenState

// CircuitBreakerConfig tunes when the breaker trips and how long it stays
// open.
type CircuitBreakerConfig struct {
	Name string // labels metrics and logs; also the service name in parsed errors

	MaxRequests uint32        // probes allowed while half-open; 0 means 1
	Interval    time.Duration // closed-state count reset period; 0 never resets
	Timeout     time.Duration // open duration before probing

	// The breaker trips once MinRequests have been counted and at least
	// FailureRatio of them failed.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultCircuitBreakerConfig returns the settings used for the catalog.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

func (cfg CircuitBreakerConfig) readyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < cfg.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
}

// FallbackFunc replaces the result of a request the breaker refused.
type FallbackFunc func(ctx context.Context, err error) (*http.Response, error)

// ServerError is returned for 5xx responses passing through the breaker.
// Err holds the parsed response body (see ParseResponseError).
type ServerError struct {
	Status int
	Err    error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %v", e.Status, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// CircuitBreakerClient wraps a Client with circuit breaker protection. It
// reports state changes and fallbacks through the wrapped client's Metrics.
type CircuitBreakerClient struct {
	client   *Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	logger   *slog.Logger
	fallback FallbackFunc
	name     string
}

// NewCircuitBreakerClient wraps client with a breaker configured by cfg.
func NewCircuitBreakerClient(client *Client, cfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	metrics := client.metrics
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: cfg.readyToTrip,
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a sign of an unhealthy catalog.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.breakerState(name, to)
		},
	}
	metrics.breakerState(cfg.Name, gobreaker.StateClosed)

	return &CircuitBreakerClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		logger:  logger,
		name:    cfg.Name,
	}
}

// WithFallback returns a copy that answers refused requests with fn instead
// of ErrCircuitOpen.
func (c *CircuitBreakerClient) WithFallback(fn FallbackFunc) *CircuitBreakerClient {
	cpy := *c
	cpy.fallback = fn
	return &cpy
}

// Do executes req through the breaker. 5xx responses count as failures and
// come back as *ServerError with the body already consumed.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &ServerError{Status: resp.StatusCode, Err: ParseResponseError(resp, c.name)}
		}
		return resp, nil
	})
	if err == nil {
		return resp, nil
	}

	refused := errors.Is(err, ErrCircuitOpen) || errors.Is(err, gobreaker.ErrTooManyRequests)
	if refused && c.fallback != nil {
		c.client.metrics.fallbackInvoked(c.name)
		c.logger.WarnContext(ctx, "circuit breaker refused request, using fallback",
			slog.String("breaker", c.name),
			slog.String("url", req.URL.String()),
		)
		return c.fallback(ctx, err)
	}
	return nil, err
}

// Get performs a GET through the breaker.
func (c *CircuitBreakerClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// Post performs a POST through the breaker.
func (c *CircuitBreakerClient) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create POST request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}

// State returns the breaker's current state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
