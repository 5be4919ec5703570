package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrNoData means the provider answered but had nothing for the symbol.
var ErrNoData = errors.New("no data returned")

// APIError is a non-200 answer from a provider.
type APIError struct {
	Source     string
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: status %d, endpoint %s: %s", e.Source, e.StatusCode, e.Endpoint, e.Message)
}

// NewHTTPClient builds a client with a fixed timeout, routed through proxyURL when set.
func NewHTTPClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

// ClientOption configures a provider client.
type ClientOption func(*apiClient)

// WithBaseURL points the client at another host, e.g. a sandbox or test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *apiClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *apiClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit caps requests per second with the given burst.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *apiClient) {
		if perSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *apiClient) {
		c.log = log
	}
}

// apiClient is the transport shared by every provider.
type apiClient struct {
	source     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
	authorize  func(*http.Request)
	userAgent  string
}

func newAPIClient(source, baseURL string, opts []ClientOption) *apiClient {
	c := &apiClient{
		source:     source,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON waits for the limiter, performs a GET and decodes the body into out.
func (c *apiClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit wait: %w", c.source, err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%s build request: %w", c.source, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.authorize != nil {
		c.authorize(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s fetch %s: %w", c.source, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("source", c.source).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("provider request")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			Source:     c.source,
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode %s: %w", c.source, path, err)
	}
	return nil
}
