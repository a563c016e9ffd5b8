package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-wiki/internal/core/domain"
	"github.com/custodia-labs/sercha-wiki/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-wiki/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.WikiClient = (*Client)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Config holds what is needed to reach a Confluence site.
type Config struct {
	// BaseURL is the site root, e.g. https://example.atlassian.net/wiki.
	BaseURL string

	// Username is the account used with basic auth.
	Username string

	// Token is the API token (basic) or personal access token (bearer).
	Token string

	// Auth selects the authentication scheme. Defaults to basic.
	Auth domain.WikiAuth

	// RequestsPerSecond throttles calls. Zero disables throttling.
	RequestsPerSecond float64

	// HTTPClient overrides the base HTTP client. Its transport is wrapped
	// with authentication.
	HTTPClient *http.Client
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s domain.WikiSettings) Config {
	return Config{
		BaseURL:           s.BaseURL,
		Username:          s.Username,
		Token:             s.Token,
		Auth:              s.Auth,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// Client talks to the Confluence REST API.
type Client struct {
	base        *url.URL
	origin      string
	http        *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a Confluence client.
func NewClient(cfg Config) (*Client, error) {
	origin := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if origin == "" {
		return nil, fmt.Errorf("%w: base URL is empty", domain.ErrWikiUnavailable)
	}
	base, err := url.Parse(origin)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", domain.ErrInvalidInput, cfg.BaseURL)
	}

	baseClient := cfg.HTTPClient
	if baseClient == nil {
		baseClient = &http.Client{Timeout: DefaultTimeout}
	}
	transport := baseClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	switch cfg.Auth {
	case domain.WikiAuthBearer:
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   transport,
		}
	case domain.WikiAuthBasic, "":
		if cfg.Username != "" || cfg.Token != "" {
			transport = &basicAuthTransport{username: cfg.Username, token: cfg.Token, base: transport}
		}
	default:
		return nil, fmt.Errorf("%w: unknown auth scheme %q", domain.ErrInvalidInput, cfg.Auth)
	}

	return &Client{
		base:   base,
		origin: origin,
		http: &http.Client{
			Transport:     transport,
			Timeout:       baseClient.Timeout,
			CheckRedirect: baseClient.CheckRedirect,
			Jar:           baseClient.Jar,
		},
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// Origin returns the normalised base URL.
func (c *Client) Origin() string {
	return c.origin
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// getJSON issues a GET for path under the base URL and decodes the reply into out.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)}
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("confluence: GET %s", u.Redacted())
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if rlErr := c.rateLimiter.CheckResponse(resp); rlErr != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: rlErr}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: newAPIError(resp, body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// basicAuthTransport adds HTTP basic credentials to every request.
type basicAuthTransport struct {
	username string
	token    string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.username, t.token)
	return t.base.RoundTrip(clone)
}
