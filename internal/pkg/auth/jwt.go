// internal/pkg/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSubject is returned when a token carries no usable user id
var ErrNoSubject = errors.New("token has no subject")

// Claims is what the storefront can learn from an access token. The client
// never holds the signing key, so claims are read, not verified.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp has passed at now
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

var parser = jwt.NewParser()

// ParseClaims decodes the payload of tokenString without checking the signature
func ParseClaims(tokenString string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	out := &Claims{
		UserID: firstString(claims, "sub", "userId", "user_id", "id"),
		Email:  firstString(claims, "email"),
		Role:   strings.ToUpper(firstString(claims, "role")),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if out.UserID == "" {
		return out, ErrNoSubject
	}
	return out, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
