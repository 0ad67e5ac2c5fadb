// internal/domain/session/service.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/infrastructure/storage"
	"github.com/your-org/storefront/internal/pkg/auth"
)

// Storage keys for the persisted session
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserData     = "userData"
)

var allKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUserData}

// ErrMissingIdentity is returned when neither the auth response nor the access
// token says who signed in
var ErrMissingIdentity = errors.New("sign-in response does not identify the user")

// State of the session
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// PersistError reports that the session changed in memory but storage did not follow
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("session changed but could not be saved: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Authenticator is the part of the API client the session needs
type Authenticator interface {
	Login(ctx context.Context, req user.LoginRequest) (*user.AuthTokens, error)
	Register(ctx context.Context, req user.RegisterRequest) (*user.AuthTokens, error)
}

// Service is the authentication session for one owner
type Service struct {
	mu      sync.RWMutex
	api     Authenticator
	creds   *auth.Credentials
	storage storage.Store
	log     logrus.FieldLogger

	state        State
	user         *user.User
	refreshToken string
}

// NewService creates a session in the Loading state
func NewService(api Authenticator, creds *auth.Credentials, st storage.Store, log logrus.FieldLogger) *Service {
	return &Service{
		api:     api,
		creds:   creds,
		storage: st,
		log:     log,
		state:   StateLoading,
	}
}

// Login signs in with email and password
func (s *Service) Login(ctx context.Context, req user.LoginRequest) (*user.User, error) {
	tokens, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, tokens, identityHint{Email: req.Email})
}

// Register creates an account and signs it in
func (s *Service) Register(ctx context.Context, req user.RegisterRequest) (*user.User, error) {
	tokens, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, tokens, identityHint{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
}

// identityHint fills user fields the backend may leave out
type identityHint struct {
	Email     string
	FirstName string
	LastName  string
	Role      user.Role
}

func (s *Service) establish(ctx context.Context, tokens *user.AuthTokens, hint identityHint) (*user.User, error) {
	u := tokens.User
	if u == nil {
		built, err := userFromToken(tokens.AccessToken, hint)
		if err != nil {
			// A rejected sign-in leaves any current session in place
			s.log.WithError(err).Warn("Sign-in returned no usable identity")
			return nil, err
		}
		u = built
	}

	s.mu.Lock()
	s.creds.Set(tokens.AccessToken)
	s.user = u
	s.refreshToken = tokens.RefreshToken
	s.state = StateAuthenticated
	s.mu.Unlock()

	s.log.WithField("user_id", u.ID).Info("Session established")

	if err := s.persist(ctx, tokens.AccessToken, tokens.RefreshToken, u); err != nil {
		return u, err
	}
	return u, nil
}

// userFromToken builds the user record from access-token claims when the
// backend did not send one. No id is ever invented.
func userFromToken(accessToken string, hint identityHint) (*user.User, error) {
	claims, err := auth.ParseClaims(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingIdentity, err)
	}

	u := &user.User{
		ID:        claims.UserID,
		Email:     claims.Email,
		FirstName: hint.FirstName,
		LastName:  hint.LastName,
		Role:      user.Role(claims.Role),
		IsActive:  true,
	}
	if u.Email == "" {
		u.Email = hint.Email
	}
	if u.Role != user.RoleAdmin && u.Role != user.RoleUser {
		u.Role = hint.Role
	}
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	return u, nil
}

func (s *Service) persist(ctx context.Context, access, refresh string, u *user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return &PersistError{Err: err}
	}
	for _, kv := range [][2]string{
		{KeyAccessToken, access},
		{KeyRefreshToken, refresh},
		{KeyUserData, string(data)},
	} {
		if err := s.storage.Set(ctx, kv[0], kv[1]); err != nil {
			return &PersistError{Err: err}
		}
	}
	return nil
}

// Rehydrate restores the session from storage. All three keys must be present;
// a missing key ends Unauthenticated and leaves storage alone, while an
// unreadable value discards every session key.
func (s *Service) Rehydrate(ctx context.Context) error {
	values := make(map[string]string, len(allKeys))
	for _, key := range allKeys {
		v, err := s.storage.Get(ctx, key)
		switch {
		case err == nil:
			values[key] = v
		case errors.Is(err, storage.ErrNotFound):
			s.signedOut()
			return nil
		case errors.Is(err, storage.ErrUnseal):
			return s.discard(ctx, fmt.Errorf("%s: %w", key, err))
		default:
			s.signedOut()
			return fmt.Errorf("failed to load session: %w", err)
		}
	}

	var u user.User
	if err := json.Unmarshal([]byte(values[KeyUserData]), &u); err != nil {
		return s.discard(ctx, err)
	}
	if u.ID == "" {
		return s.discard(ctx, errors.New("stored user has no id"))
	}
	if values[KeyAccessToken] == "" || values[KeyRefreshToken] == "" {
		return s.discard(ctx, errors.New("stored token is empty"))
	}

	s.mu.Lock()
	s.creds.Set(values[KeyAccessToken])
	s.user = &u
	s.refreshToken = values[KeyRefreshToken]
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

// discard clears every session key after detecting corruption
func (s *Service) discard(ctx context.Context, cause error) error {
	s.log.WithError(cause).Warn("Discarding corrupted session")
	s.signedOut()
	if err := s.storage.Delete(ctx, allKeys...); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

func (s *Service) signedOut() {
	s.mu.Lock()
	s.creds.Clear()
	s.user = nil
	s.refreshToken = ""
	s.state = StateUnauthenticated
	s.mu.Unlock()
}

// Logout forgets the token and the persisted session
func (s *Service) Logout(ctx context.Context) error {
	s.signedOut()
	if err := s.storage.Delete(ctx, allKeys...); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// UpdateUser replaces the stored user record after a profile change
func (s *Service) UpdateUser(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return nil
	}
	s.user = u
	s.mu.Unlock()

	data, err := json.Marshal(u)
	if err != nil {
		return &PersistError{Err: err}
	}
	if err := s.storage.Set(ctx, KeyUserData, string(data)); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// User returns a copy of the signed-in user, or nil
func (s *Service) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// RefreshToken returns the held refresh token
func (s *Service) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// State returns the current state
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a user is signed in
func (s *Service) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// IsLoading reports whether rehydration has not finished yet
func (s *Service) IsLoading() bool {
	return s.State() == StateLoading
}
