package forecast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/mekedron/airq-cli/internal/domain"
)

const (
	// DefaultAPIBase is used when no api base is configured.
	DefaultAPIBase         = "http://localhost:8000/api"
	defaultUserAgent       = "airq-cli/1.0"
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
)

// HTTPClient is implemented by http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches hourly forecasts from the forecast backend.
type Client struct {
	httpClient      HTTPClient
	apiBase         string
	limiter         *rate.Limiter
	breaker         *gobreaker.CircuitBreaker
	breakerFailures uint32
	breakerCooldown time.Duration
	validate        *validator.Validate
	verboseOutput   io.Writer
	verboseOutputM  sync.RWMutex
}

// Option applies Client options.
type Option func(*Client)

// WithHTTPClient replaces default HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAPIBase sets the backend origin and path prefix.
func WithAPIBase(apiBase string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(apiBase); trimmed != "" {
			c.apiBase = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithRequestMinInterval limits request burst by enforcing minimum delay between backend calls.
func WithRequestMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithBreaker opens the circuit after the given number of consecutive
// transport or 5xx failures and keeps it open for cooldown.
func WithBreaker(failures uint32, cooldown time.Duration) Option {
	return func(c *Client) {
		if failures > 0 {
			c.breakerFailures = failures
		}
		if cooldown > 0 {
			c.breakerCooldown = cooldown
		}
	}
}

// WithVerboseOutput enables per-request trace output.
func WithVerboseOutput(out io.Writer) Option {
	return func(c *Client) {
		c.SetVerboseOutput(out)
	}
}

// NewClient creates a forecast backend client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:      &http.Client{Timeout: 20 * time.Second},
		apiBase:         DefaultAPIBase,
		breakerFailures: defaultBreakerFailures,
		breakerCooldown: defaultBreakerCooldown,
		validate:        validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	failures := c.breakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "forecast-backend",
		Timeout: c.breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A request abandoned by its caller says nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// APIBase returns the configured backend base url.
func (c *Client) APIBase() string {
	return c.apiBase
}

// SetVerboseOutput sets destination for verbose HTTP request trace lines.
func (c *Client) SetVerboseOutput(out io.Writer) {
	c.verboseOutputM.Lock()
	c.verboseOutput = out
	c.verboseOutputM.Unlock()
}

type rawResponse struct {
	statusCode int
	body       []byte
}

// FetchForecast performs GET {apiBase}/forecast/{lat}/{lon}.
func (c *Client) FetchForecast(ctx context.Context, location domain.Location) (domain.ForecastSeries, error) {
	rawURL := c.forecastURL(location)

	if err := c.waitForRequestSlot(ctx); err != nil {
		return domain.ForecastSeries{}, &UpstreamRequestError{
			Kind:   ErrNetwork,
			Method: http.MethodGet,
			URL:    rawURL,
			Cause:  err,
		}
	}

	startedAt := time.Now()
	c.traceRequestStart(http.MethodGet, rawURL)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, rawURL)
	})
	if err != nil {
		var upstreamErr *UpstreamRequestError
		if !errors.As(err, &upstreamErr) {
			// gobreaker.ErrOpenState or ErrTooManyRequests
			upstreamErr = &UpstreamRequestError{
				Kind:   ErrNetwork,
				Method: http.MethodGet,
				URL:    rawURL,
				Cause:  err,
			}
		}
		c.traceRequestDone(http.MethodGet, rawURL, upstreamErr.StatusCode, len(upstreamErr.Body), startedAt, upstreamErr)
		return domain.ForecastSeries{}, upstreamErr
	}

	res := result.(*rawResponse)
	if res.statusCode < 200 || res.statusCode >= 300 {
		upstreamErr := &UpstreamRequestError{
			Kind:       ErrService,
			Method:     http.MethodGet,
			URL:        rawURL,
			StatusCode: res.statusCode,
			Body:       string(res.body),
		}
		c.traceRequestDone(http.MethodGet, rawURL, res.statusCode, len(res.body), startedAt, upstreamErr)
		return domain.ForecastSeries{}, upstreamErr
	}

	payload, err := decodeForecastPayload(res.body, c.validate)
	if err != nil {
		upstreamErr := &UpstreamRequestError{
			Kind:       ErrMalformedResponse,
			Method:     http.MethodGet,
			URL:        rawURL,
			StatusCode: res.statusCode,
			Body:       string(res.body),
			Cause:      err,
		}
		c.traceRequestDone(http.MethodGet, rawURL, res.statusCode, len(res.body), startedAt, upstreamErr)
		return domain.ForecastSeries{}, upstreamErr
	}

	c.traceRequestDone(http.MethodGet, rawURL, res.statusCode, len(res.body), startedAt, nil)
	return payload.toSeries(location), nil
}

// doRequest returns an error for transport failures and 5xx responses. The
// breaker counts them all except caller cancellation.
func (c *Client) doRequest(ctx context.Context, rawURL string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &UpstreamRequestError{
			Kind:   ErrNetwork,
			Method: http.MethodGet,
			URL:    rawURL,
			Cause:  fmt.Errorf("build request: %w", err),
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamRequestError{
			Kind:   ErrNetwork,
			Method: http.MethodGet,
			URL:    rawURL,
			Cause:  withCancellation(ctx, err),
		}
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &UpstreamRequestError{
			Kind:       ErrNetwork,
			Method:     http.MethodGet,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Cause:      fmt.Errorf("read response body: %w", withCancellation(ctx, err)),
		}
	}
	if res.StatusCode >= 500 {
		return nil, &UpstreamRequestError{
			Kind:       ErrService,
			Method:     http.MethodGet,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Body:       string(body),
		}
	}
	return &rawResponse{statusCode: res.StatusCode, body: body}, nil
}

// withCancellation makes err match context.Canceled when the caller gave up
// on the request, whatever shape the transport reported it in.
func withCancellation(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || !errors.Is(ctx.Err(), context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", err, context.Canceled)
}

func (c *Client) forecastURL(location domain.Location) string {
	return c.apiBase + "/forecast/" + formatCoordinate(location.Lat) + "/" + formatCoordinate(location.Lon)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Client) waitForRequestSlot(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for request slot: %w", err)
	}
	return nil
}

func (c *Client) traceRequestStart(method, rawURL string) {
	c.tracef("[http] -> %s %s", method, rawURL)
}

func (c *Client) traceRequestDone(method, rawURL string, statusCode int, responseBytes int, startedAt time.Time, reqErr error) {
	duration := time.Since(startedAt).Round(time.Millisecond)
	if reqErr != nil {
		c.tracef("[http] <- %s %s error=%v duration=%s", method, rawURL, reqErr, duration)
		return
	}
	c.tracef(
		"[http] <- %s %s status=%d duration=%s bytes=%d",
		method,
		rawURL,
		statusCode,
		duration,
		responseBytes,
	)
}

func (c *Client) tracef(format string, args ...any) {
	c.verboseOutputM.RLock()
	out := c.verboseOutput
	c.verboseOutputM.RUnlock()
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, format+"\n", args...)
}
