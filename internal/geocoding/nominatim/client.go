// Package nominatim provides a geocoding client for the Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/geocoding"
	"github.com/fleetdispatch/fleetdispatch/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public instance).
	BaseURL string

	// UserAgent identifies this application to Nominatim (required by its
	// usage policy).
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim search API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "fleetdispatch/1.0"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search geocodes a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]geocoding.Location, error) {
	params := url.Values{}
	params.Set("q", query)
	return c.search(ctx, params, limit)
}

// StructuredSearch geocodes an address split into components.
func (c *Client) StructuredSearch(ctx context.Context, query geocoding.StructuredQuery, limit int) ([]geocoding.Location, error) {
	params := url.Values{}
	if query.Street != "" {
		params.Set("street", query.Street)
	}
	if query.City != "" {
		params.Set("city", query.City)
	}
	if query.County != "" {
		params.Set("county", query.County)
	}
	if query.State != "" {
		params.Set("state", query.State)
	}
	if query.Country != "" {
		params.Set("country", query.Country)
	}
	if query.PostalCode != "" {
		params.Set("postalcode", query.PostalCode)
	}
	return c.search(ctx, params, limit)
}

func (c *Client) search(ctx context.Context, params url.Values, limit int) ([]geocoding.Location, error) {
	if limit <= 0 {
		limit = geocoding.DefaultLimit
	}
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Nominatim's usage policy requires an identifying User-Agent.
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", reqURL).Msg("requesting geocode from nominatim")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach geocoding provider",
			Err:      geocoding.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode)
	}

	// Nominatim serialises lat/lon as strings.
	var results []nominatimPlace
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	locations := make([]geocoding.Location, 0, len(results))
	for _, place := range results {
		lat, latErr := strconv.ParseFloat(place.Lat, 64)
		lon, lonErr := strconv.ParseFloat(place.Lon, 64)
		if latErr != nil || lonErr != nil {
			c.logger.Warn().
				Str("lat", place.Lat).
				Str("lon", place.Lon).
				Msg("skipping nominatim result with unparseable coordinates")
			continue
		}
		locations = append(locations, geocoding.Location{
			DisplayName: place.DisplayName,
			Lat:         lat,
			Lon:         lon,
		})
	}

	c.logger.Debug().Int("result_count", len(locations)).Msg("received geocode results")
	return locations, nil
}

func (c *Client) handleErrorResponse(statusCode int) error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "geocoding rate limit exceeded, please try again later",
			Err:      geocoding.ErrProviderUnavailable,
		}
	case statusCode >= 500:
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "geocoding provider is temporarily unavailable",
			Err:      geocoding.ErrProviderUnavailable,
		}
	default:
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("geocoding provider returned status %d", statusCode),
			Err:      geocoding.ErrProviderUnavailable,
		}
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
