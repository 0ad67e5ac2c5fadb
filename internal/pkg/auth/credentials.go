// internal/pkg/auth/credentials.go
package auth

import "sync"

// Credentials holds the bearer token attached to outgoing API requests for one
// owner. The session writes it, the API client reads it.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

// NewCredentials creates an empty holder
func NewCredentials() *Credentials {
	return &Credentials{}
}

// Set replaces the token
func (c *Credentials) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Get returns the current token, or "" when signed out
func (c *Credentials) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Clear drops the token
func (c *Credentials) Clear() {
	c.Set("")
}
