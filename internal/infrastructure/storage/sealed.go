// internal/infrastructure/storage/sealed.go
package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrUnseal is returned when a stored value cannot be opened with the secret
var ErrUnseal = errors.New("storage: sealed value cannot be opened")

// Sealed encrypts values with NaCl secretbox before handing them to the inner store
type Sealed struct {
	inner Store
	key   [32]byte
}

// NewSealed derives a secretbox key from secret
func NewSealed(store Store, secret string) *Sealed {
	return &Sealed{inner: store, key: sha256.Sum256([]byte(secret))}
}

// Get opens the stored value
func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	box, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(box) < nonceSize {
		return "", ErrUnseal
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnseal
	}
	return string(plain), nil
}

// Set seals value with a fresh nonce
func (s *Sealed) Set(ctx context.Context, key, value string) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(box))
}

// Delete removes keys from the inner store
func (s *Sealed) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}
