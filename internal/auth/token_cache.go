// Package auth provides Spotify client-credentials authentication with token caching.
package auth

import (
	"sync"
	"time"
)

// TokenCache holds the single access token for one set of client credentials.
// The zero value is an empty cache ready for use.
type TokenCache struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewTokenCache creates an empty TokenCache.
func NewTokenCache() *TokenCache {
	return &TokenCache{}
}

// Load returns the cached token if one is present and now is strictly before
// its expiry. The stored expiry already has the safety margin applied.
func (c *TokenCache) Load(now time.Time) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" || !now.Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

// Store overwrites the cached token and its expiry.
func (c *TokenCache) Store(token string, expiresAt time.Time) {
	c.mu.Lock()
	c.token = token
	c.expiresAt = expiresAt
	c.mu.Unlock()
}

// ExpiresAt returns the expiry of the cached token, or the zero time when empty.
func (c *TokenCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

// Clear empties the cache.
func (c *TokenCache) Clear() {
	c.Store("", time.Time{})
}
