package qpay

import (
	"sync"
	"time"
)

// Tokens are expired a safety margin early so a token returned by the cache
// is never about to lapse mid-request.
const expiryMargin = 60 * time.Second

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// TokenCache holds the current access and refresh tokens in memory.
// Races on it are benign: any caller may re-authenticate and overwrite the
// cache with an equally valid token, so no coordination beyond the mutex
// is needed.
type TokenCache struct {
	mu      sync.Mutex
	access  cachedToken
	refresh cachedToken
	now     func() time.Time
}

// NewTokenCache creates an empty cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{now: time.Now}
}

// Access returns the cached access token if it has not expired.
func (c *TokenCache) Access() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access.get(c.now())
}

// StoreAccess caches the access token for ttl minus the expiry margin.
func (c *TokenCache) StoreAccess(value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = newCachedToken(value, ttl, c.now())
}

// Refresh returns the cached refresh token if it has not expired.
// The token is stored for completeness only: QPay documents no refresh
// exchange, so re-authentication always re-runs the credential exchange.
func (c *TokenCache) Refresh() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh.get(c.now())
}

// StoreRefresh caches the refresh token for ttl minus the expiry margin.
func (c *TokenCache) StoreRefresh(value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh = newCachedToken(value, ttl, c.now())
}

func newCachedToken(value string, ttl time.Duration, now time.Time) cachedToken {
	ttl -= expiryMargin
	if ttl < 0 {
		ttl = 0
	}
	return cachedToken{value: value, expiresAt: now.Add(ttl)}
}

func (t cachedToken) get(now time.Time) (string, bool) {
	if t.value == "" || !now.Before(t.expiresAt) {
		return "", false
	}
	return t.value, true
}
