package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mekedron/airq-cli/internal/domain"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	defaultUserAgent    = "airq-cli/1.0"
	// Nominatim usage policy allows at most one request per second.
	defaultMinInterval = time.Second
)

var (
	// ErrLocationLookup is returned when geocoding fails.
	ErrLocationLookup = errors.New("error when trying to resolve location")
	// ErrNoMatch is returned when the geocoder knows no place for the query.
	ErrNoMatch = errors.New("no place matches the address")
)

// Place is a geocoded address.
type Place struct {
	domain.Location
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// Client resolves addresses to coordinates.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// Option applies Client options.
type Option func(*Client)

// WithHTTPClient replaces default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithBaseURL points the client at another Nominatim-compatible search endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRequestMinInterval overrides the delay enforced between lookups.
// Zero disables throttling.
func WithRequestMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return fmt.Errorf("parse coordinate %q: %w", text, err)
		}
		*c = coordinate(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*c = coordinate(value)
		return nil
	}

	return fmt.Errorf("coordinate must be a string or number")
}

type nominatimResult struct {
	Lat         coordinate `json:"lat"`
	Lon         coordinate `json:"lon"`
	DisplayName string     `json:"display_name"`
}

// NewClient creates a location client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultNominatimURL,
		userAgent:  defaultUserAgent,
		limiter:    rate.NewLimiter(rate.Every(defaultMinInterval), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve geocodes an address using OSM Nominatim and returns the best match.
func (c *Client) Resolve(ctx context.Context, address string) (Place, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Place{}, fmt.Errorf("%w: address is empty", ErrLocationLookup)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Place{}, fmt.Errorf("%w: %v", ErrLocationLookup, err)
		}
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	uri := c.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return Place{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("%w: %v", ErrLocationLookup, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Place{}, fmt.Errorf("%w: status=%d", ErrLocationLookup, res.StatusCode)
	}

	var payload []nominatimResult
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Place{}, fmt.Errorf("%w: %v", ErrLocationLookup, err)
	}
	if len(payload) == 0 {
		return Place{}, fmt.Errorf("%w: %w %q", ErrLocationLookup, ErrNoMatch, address)
	}

	loc, err := domain.NewLocation(float64(payload[0].Lat), float64(payload[0].Lon))
	if err != nil {
		return Place{}, fmt.Errorf("%w: %v", ErrLocationLookup, err)
	}
	return Place{Location: loc, DisplayName: strings.TrimSpace(payload[0].DisplayName)}, nil
}
