// Package spotify fetches track metadata from the Spotify Web API.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultTimeout bounds every track request.
	DefaultTimeout = 10 * time.Second
)

// TokenSource supplies bearer tokens for Web API requests.
// *auth.TokenProvider satisfies it.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client calls the Spotify Web API on behalf of the application.
type Client struct {
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Web API root, e.g. for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client that authorizes requests with tokens from ts.
func New(ts TokenSource, opts ...Option) *Client {
	c := &Client{
		tokens:     ts,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
