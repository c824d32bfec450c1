package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sartorproj/moneysupply/timeseries"
)

const (
	// DefaultBaseURL is the public FRED API root.
	DefaultBaseURL = "https://api.stlouisfed.org/fred"
	// DefaultRequestsPerMinute is FRED's documented per-key limit.
	DefaultRequestsPerMinute = 120
)

// ErrNoAPIKey is returned when a Client is used without an API key.
var ErrNoAPIKey = errors.New("fred: api key is required (set FRED_API_KEY)")

// Fetcher retrieves the observations of one series between two dates. A zero
// start or end leaves that side of the range open.
type Fetcher interface {
	Observations(ctx context.Context, seriesID string, start, end time.Time) ([]timeseries.Observation, error)
}

// APIError is a non-2xx answer from FRED.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fred: status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed when repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (e *APIError) Is(target error) bool {
	return target == ErrRateLimit && e.StatusCode == http.StatusTooManyRequests
}

// Client talks to the FRED series/observations endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryOptions
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default 30s-timeout http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outbound requests per minute.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1)
		}
	}
}

// WithRetryOptions replaces the default backoff.
func WithRetryOptions(opts RetryOptions) Option {
	return func(c *Client) { c.retry = opts }
}

// NewClient returns a client for apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(DefaultRequestsPerMinute)/60), 1),
		retry:      DefaultRetryOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

type errorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Observations fetches seriesID from FRED. Missing values (".") come back as
// NaN observations so the row survives alignment.
func (c *Client) Observations(ctx context.Context, seriesID string, start, end time.Time) ([]timeseries.Observation, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	u, err := url.Parse(c.baseURL + "/series/observations")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	if !start.IsZero() {
		q.Set("observation_start", start.Format(time.DateOnly))
	}
	if !end.IsZero() {
		q.Set("observation_end", end.Format(time.DateOnly))
	}
	u.RawQuery = q.Encode()

	var body observationsResponse
	err = WithRetry(ctx, func() error {
		if waitErr := c.limiter.Wait(ctx); waitErr != nil {
			return waitErr
		}
		return c.get(ctx, u.String(), &body)
	}, c.retry)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", seriesID, err)
	}

	out := make([]timeseries.Observation, 0, len(body.Observations))
	for _, o := range body.Observations {
		date, err := time.Parse(time.DateOnly, o.Date)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: bad date %q: %w", seriesID, o.Date, err)
		}
		value, err := timeseries.ParseValue(o.Value)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: bad value on %s: %w", seriesID, o.Date, err)
		}
		out = append(out, timeseries.Observation{Date: date, Value: value})
	}

	slog.Debug("Fetched FRED series", "series_id", seriesID, "observations", len(out))
	return out, nil
}

func (c *Client) get(ctx context.Context, rawURL string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.ErrorMessage != "" {
			msg = e.ErrorMessage
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
