// internal/infrastructure/storage/storage.go
package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get when the key has no value
var ErrNotFound = errors.New("storage: key not found")

// Store is durable string key/value storage for client state
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Namespaced prefixes every key so several owners can share one backend
type Namespaced struct {
	inner  Store
	prefix string
}

// NewNamespaced scopes store to namespace; keys become "<namespace>:<key>"
func NewNamespaced(store Store, namespace string) *Namespaced {
	return &Namespaced{inner: store, prefix: namespace + ":"}
}

func (n *Namespaced) key(k string) string {
	return n.prefix + k
}

// Get reads a key inside the namespace
func (n *Namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.key(key))
}

// Set writes a key inside the namespace
func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.key(key), value)
}

// Delete removes keys inside the namespace
func (n *Namespaced) Delete(ctx context.Context, keys ...string) error {
	scoped := make([]string, len(keys))
	for i, k := range keys {
		scoped[i] = n.key(k)
	}
	return n.inner.Delete(ctx, scoped...)
}

// Memory is a process-local Store
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value for key
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

// Delete removes keys; missing keys are ignored
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.values, k)
	}
	m.mu.Unlock()
	return nil
}

// Keys returns the stored keys with the given prefix
func (m *Memory) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}
