package sessionauth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raama-app/raama/internal/sessionauth"
	"github.com/raama-app/raama/internal/token"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubUserSource struct {
	identities map[string]*sessionauth.Identity
}

func (s *stubUserSource) IdentityByID(ctx context.Context, id string) (*sessionauth.Identity, error) {
	identity, ok := s.identities[id]
	if !ok {
		return nil, sessionauth.ErrUserNotFound
	}
	copied := *identity
	return &copied, nil
}

func newAuthority(t *testing.T, clock *fakeClock, users *stubUserSource) (*sessionauth.Authority, *token.Service) {
	t.Helper()
	tokens, err := token.NewService("test-secret", token.WithClock(clock.Now))
	require.NoError(t, err)
	return sessionauth.NewAuthority(tokens, users), tokens
}

func TestResolveIdentity(t *testing.T) {
	clock := newFakeClock()
	users := &stubUserSource{identities: map[string]*sessionauth.Identity{
		"u1": {ID: "u1", Role: sessionauth.RoleWriter, Username: "mirza"},
	}}
	authority, tokens := newAuthority(t, clock, users)

	raw, err := tokens.Issue("u1")
	require.NoError(t, err)

	identity, err := authority.ResolveIdentity(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, sessionauth.RoleWriter, identity.Role)
}

func TestStaleSessionAfterRoleChange(t *testing.T) {
	clock := newFakeClock()
	user := &sessionauth.Identity{ID: "u1", Role: sessionauth.RoleReader}
	users := &stubUserSource{identities: map[string]*sessionauth.Identity{"u1": user}}
	authority, tokens := newAuthority(t, clock, users)

	raw, err := tokens.Issue("u1")
	require.NoError(t, err)

	// Role promoted after issuance: every outstanding token goes stale.
	clock.Advance(time.Hour)
	changedAt := clock.Now()
	user.Role = sessionauth.RoleWriter
	user.RoleChangedAt = &changedAt

	_, err = authority.ResolveIdentity(context.Background(), raw)
	assert.ErrorIs(t, err, sessionauth.ErrSessionStale)
}

func TestRoleChangeBeforeIssuanceIsFine(t *testing.T) {
	clock := newFakeClock()
	changedAt := clock.Now().Add(-time.Hour)
	users := &stubUserSource{identities: map[string]*sessionauth.Identity{
		"u1": {ID: "u1", Role: sessionauth.RoleWriter, RoleChangedAt: &changedAt},
	}}
	authority, tokens := newAuthority(t, clock, users)

	raw, err := tokens.Issue("u1")
	require.NoError(t, err)

	_, err = authority.ResolveIdentity(context.Background(), raw)
	assert.NoError(t, err)
}

func TestExpiredTokenBeatsRoleChangeState(t *testing.T) {
	clock := newFakeClock()
	users := &stubUserSource{identities: map[string]*sessionauth.Identity{
		"u1": {ID: "u1", Role: sessionauth.RoleReader},
	}}
	authority, tokens := newAuthority(t, clock, users)

	raw, err := tokens.Issue("u1")
	require.NoError(t, err)

	clock.Advance(31 * 24 * time.Hour)
	_, err = authority.ResolveIdentity(context.Background(), raw)
	assert.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestUnknownSubject(t *testing.T) {
	clock := newFakeClock()
	authority, tokens := newAuthority(t, clock, &stubUserSource{identities: map[string]*sessionauth.Identity{}})

	raw, err := tokens.Issue("ghost")
	require.NoError(t, err)

	_, err = authority.ResolveIdentity(context.Background(), raw)
	assert.ErrorIs(t, err, sessionauth.ErrUserNotFound)
}

func TestRequireRole(t *testing.T) {
	writer := &sessionauth.Identity{ID: "u1", Role: sessionauth.RoleWriter}
	assert.NoError(t, sessionauth.RequireRole(writer, sessionauth.RoleWriter))
	assert.ErrorIs(t, sessionauth.RequireRole(writer, sessionauth.RoleAdmin), sessionauth.ErrForbidden)
	assert.ErrorIs(t, sessionauth.RequireRole(nil, sessionauth.RoleAdmin), sessionauth.ErrForbidden)
}

func TestAuthenticatorMiddleware(t *testing.T) {
	clock := newFakeClock()
	users := &stubUserSource{identities: map[string]*sessionauth.Identity{
		"u1": {ID: "u1", Role: sessionauth.RoleAdmin},
	}}
	authority, tokens := newAuthority(t, clock, users)
	mw := sessionauth.Middleware{Authority: authority}

	var seen *sessionauth.Identity
	handler := mw.Authenticator(mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = sessionauth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("missing header", func(t *testing.T) {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Basic abc")
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("valid admin token", func(t *testing.T) {
		raw, err := tokens.Issue("u1")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u1", seen.ID)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		users.identities["u2"] = &sessionauth.Identity{ID: "u2", Role: sessionauth.RoleReader}
		raw, err := tokens.Issue("u2")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		assert.Equal(t, http.StatusForbidden, res.Code)
	})
}
