// Package client talks to the storefront REST backend: orders, products,
// inventory and auth. Every call goes through one circuit breaker and carries
// the bearer credential once one is set.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

const DefaultBaseURL = "http://localhost:8080/api"

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded with status %d", e.StatusCode)
}

func (e *APIError) ResponseBody() []byte {
	return e.Body
}

type Config struct {
	BaseURL string
	// BreakerFailures is the count of consecutive failures that opens the breaker.
	BreakerFailures uint32
	// BreakerCooldown is how long the breaker stays open before probing again.
	BreakerCooldown time.Duration
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	logger  *slog.Logger

	products singleflight.Group

	mu    sync.RWMutex
	token string
}

type response struct {
	statusCode int
	body       []byte
}

func New(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown == 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("url.Parse[%s]: %w", cfg.BaseURL, err)
	}

	logger = logger.With("component", "client")

	breaker := gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:    "storefront-backend",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// caller cancellations say nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: base,
		http:    httpClient,
		breaker: breaker,
		logger:  logger,
	}, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type request struct {
	method  string
	path    string
	query   url.Values
	headers map[string]string
	body    any
}

// do performs the request through the breaker. Server errors and transport
// failures count against the breaker; 4xx answers do not.
func (c *Client) do(ctx context.Context, r request) (response, error) {
	res, err := c.breaker.Execute(func() (response, error) {
		res, err := c.roundTrip(ctx, r)
		if err != nil {
			return response{}, err
		}
		if res.statusCode >= http.StatusInternalServerError {
			return res, &APIError{StatusCode: res.statusCode, Body: res.body}
		}
		return res, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return response{}, fmt.Errorf("%s %s: backend unavailable: %w", r.method, r.path, err)
		}
		return res, err
	}

	if res.statusCode >= http.StatusBadRequest {
		return res, &APIError{StatusCode: res.statusCode, Body: res.body}
	}

	return res, nil
}

func (c *Client) roundTrip(ctx context.Context, r request) (response, error) {
	endpoint := c.baseURL.JoinPath(r.path)
	if len(r.query) > 0 {
		endpoint.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return response{}, fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint.String(), body)
	if err != nil {
		return response{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("io.ReadAll: %w", err)
	}

	return response{statusCode: resp.StatusCode, body: data}, nil
}

func decode[T any](res response) (T, error) {
	var out T
	if err := json.Unmarshal(res.body, &out); err != nil {
		return out, fmt.Errorf("json.Unmarshal: %w", err)
	}
	return out, nil
}
