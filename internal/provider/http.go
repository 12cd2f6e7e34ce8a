package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
)

const (
	// DefaultMaxRetries is the default number of attempts per route request.
	DefaultMaxRetries = 3

	defaultBaseBackoff = 500 * time.Millisecond

	// maxResponseBytes limits the response body to 4 MB.
	maxResponseBytes = 4 << 20
)

// Option configures an HTTPRouteProvider.
type Option func(*HTTPRouteProvider)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *HTTPRouteProvider) {
		p.timeout = d
	}
}

// WithMaxRetries sets the maximum number of attempts.
func WithMaxRetries(n int) Option {
	return func(p *HTTPRouteProvider) {
		p.maxRetries = n
	}
}

// WithBaseBackoff sets the base delay for exponential backoff between retries.
func WithBaseBackoff(d time.Duration) Option {
	return func(p *HTTPRouteProvider) {
		p.baseBackoff = d
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *HTTPRouteProvider) {
		p.client = client
	}
}

// HTTPRouteProvider queries a remote route API over HTTP.
//
// The request is a GET on the base URL with start and end query parameters as
// "lat,lon" and the key sent in the X-API-Key header. The response is
// {"statusCode": "200", "statusMessage": "...", "route": {"distanceInKm": 4.2,
// "durationInMinutes": 12, "geometry": [[lat, lon], ...]}}.
type HTTPRouteProvider struct {
	baseURL     string
	apiKey      string
	timeout     time.Duration
	maxRetries  int
	baseBackoff time.Duration
	client      *http.Client
}

var _ contract.RouteProvider = &HTTPRouteProvider{} // Compile-time check

// NewHTTPRouteProvider creates an HTTP provider for baseURL.
func NewHTTPRouteProvider(baseURL, apiKey string, opts ...Option) *HTTPRouteProvider {
	p := &HTTPRouteProvider{
		baseURL:     baseURL,
		apiKey:      apiKey,
		timeout:     contract.DefaultProviderTimeout,
		maxRetries:  DefaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: p.timeout}
	}
	if p.maxRetries < 1 {
		p.maxRetries = 1
	}
	return p
}

// Name implements the RouteProvider interface.
func (p *HTTPRouteProvider) Name() string {
	return string(schema.HTTPProvider)
}

// routeResponse is the wire format of the remote route API.
type routeResponse struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	Route         *struct {
		DistanceInKm      float64      `json:"distanceInKm"`
		DurationInMinutes int          `json:"durationInMinutes"`
		Geometry          [][2]float64 `json:"geometry"`
	} `json:"route"`
}

// Route fetches a route summary, retrying transient failures with exponential backoff.
func (p *HTTPRouteProvider) Route(ctx context.Context, from, to schema.Coordinate) (schema.RouteSummary, error) {
	if p.baseURL == "" {
		return schema.RouteSummary{}, fmt.Errorf("route: provider URL is empty")
	}
	reqURL, err := p.requestURL(from, to)
	if err != nil {
		return schema.RouteSummary{}, err
	}

	var lastErr error
	for attempt := range p.maxRetries {
		if attempt > 0 {
			backoff := p.baseBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return schema.RouteSummary{}, fmt.Errorf("route: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		body, err := p.doFetch(ctx, reqURL)
		if err != nil {
			lastErr = err
			continue
		}
		// Decode errors are not transient
		return decodeRoute(body, p.Name())
	}

	return schema.RouteSummary{}, fmt.Errorf("route: all %d attempts failed: %w", p.maxRetries, lastErr)
}

func (p *HTTPRouteProvider) requestURL(from, to schema.Coordinate) (string, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return "", fmt.Errorf("route: invalid provider URL: %w", err)
	}
	q := u.Query()
	q.Set("start", formatCoordinate(from))
	q.Set("end", formatCoordinate(to))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func formatCoordinate(c schema.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// doFetch performs a single HTTP GET and returns the response body bytes.
func (p *HTTPRouteProvider) doFetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", p.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP GET %s: status %d", p.baseURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", p.baseURL, err)
	}
	return body, nil
}

func decodeRoute(body []byte, name string) (schema.RouteSummary, error) {
	var resp routeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return schema.RouteSummary{}, fmt.Errorf("route: decoding response: %w", err)
	}
	if resp.StatusCode != "" && resp.StatusCode != "200" {
		return schema.RouteSummary{}, fmt.Errorf("route: provider status %s: %s", resp.StatusCode, resp.StatusMessage)
	}
	if resp.Route == nil {
		return schema.RouteSummary{}, fmt.Errorf("route: response has no route")
	}

	geometry := make([]schema.Coordinate, len(resp.Route.Geometry))
	for i, pt := range resp.Route.Geometry {
		geometry[i] = schema.Coordinate{Lat: pt[0], Lon: pt[1]}
	}
	return schema.RouteSummary{
		Provider:        name,
		DistanceKm:      resp.Route.DistanceInKm,
		DurationMinutes: resp.Route.DurationInMinutes,
		Geometry:        geometry,
		StatusMessage:   resp.StatusMessage,
	}, nil
}
