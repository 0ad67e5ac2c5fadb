package session

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/infrastructure/storage"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/logger"
)

type fakeAuth struct {
	tokens *user.AuthTokens
	err    error
	calls  int
}

func (f *fakeAuth) Login(context.Context, user.LoginRequest) (*user.AuthTokens, error) {
	f.calls++
	return f.tokens, f.err
}

func (f *fakeAuth) Register(context.Context, user.RegisterRequest) (*user.AuthTokens, error) {
	f.calls++
	return f.tokens, f.err
}

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func setup(api Authenticator) (*Service, *auth.Credentials, *storage.Memory) {
	creds := auth.NewCredentials()
	mem := storage.NewMemory()
	return NewService(api, creds, mem, logger.Discard()), creds, mem
}

var alice = &user.User{ID: "u1", Email: "alice@example.com", FirstName: "Alice", Role: user.RoleUser, IsActive: true}

func TestService_InitialStateIsLoading(t *testing.T) {
	s, _, _ := setup(&fakeAuth{})
	assert.Equal(t, StateLoading, s.State())
	assert.True(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())
}

func TestService_LoginPersistsAndAttachesToken(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuth{tokens: &user.AuthTokens{AccessToken: "acc", RefreshToken: "ref", User: alice}}
	s, creds, mem := setup(api)

	u, err := s.Login(ctx, user.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "acc", creds.Get())
	assert.Equal(t, "ref", s.RefreshToken())

	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUserData} {
		_, err := mem.Get(ctx, key)
		assert.NoError(t, err, key)
	}
}

func TestService_LoginFailureLeavesStateAlone(t *testing.T) {
	s, creds, _ := setup(&fakeAuth{err: errors.New("invalid credentials")})
	require.NoError(t, s.Rehydrate(context.Background()))

	_, err := s.Login(context.Background(), user.LoginRequest{})
	assert.EqualError(t, err, "invalid credentials")
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, creds.Get())
}

func TestService_LoginWithoutUserUsesTokenClaims(t *testing.T) {
	access := token(t, jwt.MapClaims{"sub": "u-77", "role": "ADMIN"})
	api := &fakeAuth{tokens: &user.AuthTokens{AccessToken: access, RefreshToken: "ref"}}
	s, _, _ := setup(api)

	u, err := s.Login(context.Background(), user.LoginRequest{Email: "boss@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u-77", u.ID)
	assert.Equal(t, "boss@example.com", u.Email)
	assert.Equal(t, user.RoleAdmin, u.Role)
}

func TestService_RegisterWithoutUserUsesRequestNames(t *testing.T) {
	access := token(t, jwt.MapClaims{"userId": "u-5", "email": "new@example.com"})
	api := &fakeAuth{tokens: &user.AuthTokens{AccessToken: access, RefreshToken: "ref"}}
	s, _, _ := setup(api)

	u, err := s.Register(context.Background(), user.RegisterRequest{
		Email: "new@example.com", Password: "secret1", FirstName: "New", LastName: "Person",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-5", u.ID)
	assert.Equal(t, "New Person", u.GetFullName())
	assert.Equal(t, user.RoleUser, u.Role)
}

func TestService_LoginWithoutIdentityFails(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuth{tokens: &user.AuthTokens{AccessToken: "opaque-token", RefreshToken: "ref"}}
	s, creds, mem := setup(api)
	require.NoError(t, s.Rehydrate(ctx))

	_, err := s.Login(ctx, user.LoginRequest{Email: "a@b.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, creds.Get())
	assert.Empty(t, mem.Keys(""))
}

func TestService_FailedReloginKeepsSession(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuth{tokens: &user.AuthTokens{AccessToken: "acc", RefreshToken: "ref", User: alice}}
	s, creds, mem := setup(api)

	_, err := s.Login(ctx, user.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	api.tokens = &user.AuthTokens{AccessToken: "not-a-jwt", RefreshToken: "ref2"}
	_, err = s.Login(ctx, user.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrMissingIdentity)

	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "u1", s.User().ID)
	assert.Equal(t, "acc", creds.Get())

	reloaded := NewService(api, auth.NewCredentials(), mem, logger.Discard())
	require.NoError(t, reloaded.Rehydrate(ctx))
	assert.Equal(t, StateAuthenticated, reloaded.State())
	assert.Equal(t, "u1", reloaded.User().ID)
	assert.Equal(t, "ref", reloaded.RefreshToken())
}

func TestService_RehydrateRoundTrip(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuth{tokens: &user.AuthTokens{AccessToken: "acc", RefreshToken: "ref", User: alice}}
	first, _, mem := setup(api)
	_, err := first.Login(ctx, user.LoginRequest{})
	require.NoError(t, err)

	creds := auth.NewCredentials()
	second := NewService(api, creds, mem, logger.Discard())
	require.NoError(t, second.Rehydrate(ctx))

	assert.Equal(t, StateAuthenticated, second.State())
	assert.Equal(t, "acc", creds.Get())
	assert.Equal(t, alice.Email, second.User().Email)
}

func TestService_RehydrateMissingKeyKeepsStorage(t *testing.T) {
	ctx := context.Background()
	s, creds, mem := setup(&fakeAuth{})
	require.NoError(t, mem.Set(ctx, KeyRefreshToken, "ref"))

	require.NoError(t, s.Rehydrate(ctx))
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, creds.Get())

	v, err := mem.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ref", v)
}

func TestService_RehydrateCorruptedUserClearsAllKeys(t *testing.T) {
	ctx := context.Background()
	s, creds, mem := setup(&fakeAuth{})
	require.NoError(t, mem.Set(ctx, KeyAccessToken, "acc"))
	require.NoError(t, mem.Set(ctx, KeyRefreshToken, "ref"))
	require.NoError(t, mem.Set(ctx, KeyUserData, "{not-json"))

	require.NoError(t, s.Rehydrate(ctx))
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Nil(t, s.User())
	assert.Empty(t, creds.Get())
	assert.Empty(t, mem.Keys(""))
}

func TestService_RehydrateUnsealFailureClearsAllKeys(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	sealed := storage.NewSealed(mem, "0123456789abcdef0123456789abcdef")
	s := NewService(&fakeAuth{}, auth.NewCredentials(), sealed, logger.Discard())

	require.NoError(t, mem.Set(ctx, KeyAccessToken, "written-without-seal"))
	require.NoError(t, sealed.Set(ctx, KeyRefreshToken, "ref"))
	require.NoError(t, sealed.Set(ctx, KeyUserData, `{"id":"u1","role":"USER"}`))

	require.NoError(t, s.Rehydrate(ctx))
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, mem.Keys(""))
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuth{tokens: &user.AuthTokens{AccessToken: "acc", RefreshToken: "ref", User: alice}}
	s, creds, mem := setup(api)
	_, err := s.Login(ctx, user.LoginRequest{})
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, creds.Get())
	assert.Nil(t, s.User())
	assert.Empty(t, mem.Keys(""))
}

func TestService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuth{tokens: &user.AuthTokens{AccessToken: "acc", RefreshToken: "ref", User: alice}}
	s, _, mem := setup(api)

	renamed := *alice
	renamed.FirstName = "Alicia"
	require.NoError(t, s.UpdateUser(ctx, &renamed))
	assert.Nil(t, s.User())

	_, err := s.Login(ctx, user.LoginRequest{})
	require.NoError(t, err)
	require.NoError(t, s.UpdateUser(ctx, &renamed))
	assert.Equal(t, "Alicia", s.User().FirstName)

	raw, err := mem.Get(ctx, KeyUserData)
	require.NoError(t, err)
	assert.Contains(t, raw, "Alicia")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
}
