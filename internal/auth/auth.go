package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultTimeout bounds every token request.
	DefaultTimeout = 10 * time.Second

	// expiryMargin is subtracted from expires_in before the token is cached.
	expiryMargin = 60 * time.Second
)

// Credentials is the client ID and secret registered with Spotify.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// TokenProvider obtains and caches an app access token using the
// client-credentials grant.
type TokenProvider struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	cache      *TokenCache
	now        func() time.Time
	logger     *log.Logger
}

// Option configures a TokenProvider.
type Option func(*TokenProvider)

// WithTokenURL overrides the Spotify token endpoint.
func WithTokenURL(url string) Option {
	return func(p *TokenProvider) {
		p.config.TokenURL = url
	}
}

// WithHTTPClient sets the HTTP client used for token requests.
func WithHTTPClient(client *http.Client) Option {
	return func(p *TokenProvider) {
		p.httpClient = client
	}
}

// WithCache injects the cache the provider reads and writes.
func WithCache(cache *TokenCache) Option {
	return func(p *TokenProvider) {
		p.cache = cache
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *TokenProvider) {
		p.now = now
	}
}

// WithLogger sets the logger used for exchange diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(p *TokenProvider) {
		p.logger = logger
	}
}

// NewTokenProvider creates a TokenProvider for the given credentials.
// Empty credentials are accepted so the server can still start; every
// exchange will then fail with ErrInvalidCredentials or ErrAuthFailed.
func NewTokenProvider(creds Credentials, opts ...Option) *TokenProvider {
	p := &TokenProvider{
		config: &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     spotifyauth.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
		cache:      NewTokenCache(),
		now:        time.Now,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cache returns the cache backing this provider.
func (p *TokenProvider) Cache() *TokenCache {
	return p.cache
}

// AccessToken returns a valid access token, exchanging the client
// credentials for a new one when the cached token is missing or expired.
// Failures are returned as *Error.
func (p *TokenProvider) AccessToken(ctx context.Context) (string, error) {
	if token, ok := p.cache.Load(p.now()); ok {
		return token, nil
	}

	p.logger.Debug("requesting new access token", "token_url", p.config.TokenURL)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.Token(ctx)
	if err != nil {
		return "", classify(err)
	}

	expiresIn, err := expiresInSeconds(tok)
	if err != nil {
		return "", newError(ErrUnexpected, fmt.Sprintf("Unexpected error during authentication: %v", err), err)
	}

	expiresAt := p.now().Add(time.Duration(expiresIn)*time.Second - expiryMargin)
	p.cache.Store(tok.AccessToken, expiresAt)

	p.logger.Debug("cached access token", "expires_at", expiresAt.Format(time.RFC3339))
	return tok.AccessToken, nil
}

// classify maps a token request failure onto one of the Error kinds.
func classify(err error) *Error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		if status == http.StatusUnauthorized {
			return newError(ErrInvalidCredentials,
				"Invalid Spotify credentials. Please check your Client ID and Secret.", err)
		}
		detail := fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
		if retrieveErr.ErrorCode != "" {
			detail += ": " + retrieveErr.ErrorCode
		}
		return newError(ErrAuthFailed, "Spotify authentication failed: "+detail, err)
	}

	switch {
	case isTimeout(err):
		return newError(ErrTimeout,
			"Request to Spotify authentication server timed out. Please try again.", err)
	case isConnection(err):
		return newError(ErrConnection,
			"Could not connect to Spotify. Please check your internet connection.", err)
	default:
		return newError(ErrUnexpected, fmt.Sprintf("Unexpected error during authentication: %v", err), err)
	}
}

// expiresInSeconds reads expires_in from the raw token response.
func expiresInSeconds(tok *oauth2.Token) (int64, error) {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		if v == "" {
			break
		}
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, errors.New("missing expires_in")
}
