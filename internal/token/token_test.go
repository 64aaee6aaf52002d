package token

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	clock := newFakeClock()
	svc, err := NewService("test-secret", WithClock(clock.Now))
	require.NoError(t, err)

	raw, err := svc.Issue("user-123")
	require.NoError(t, err)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.SubjectID)
	assert.True(t, claims.IssuedAt.Equal(clock.Now().Truncate(time.Second)))
}

func TestVerifyExpired(t *testing.T) {
	clock := newFakeClock()
	svc, err := NewService("test-secret", WithClock(clock.Now))
	require.NoError(t, err)

	raw, err := svc.Issue("user-123")
	require.NoError(t, err)

	clock.Advance(30*24*time.Hour + time.Minute)
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, err := NewService("secret-a")
	require.NoError(t, err)
	verifier, err := NewService("secret-b")
	require.NoError(t, err)

	raw, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyGarbage(t *testing.T) {
	svc, err := NewService("test-secret")
	require.NoError(t, err)

	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService("")
	assert.Error(t, err)
}

func TestCustomLifetime(t *testing.T) {
	clock := newFakeClock()
	svc, err := NewService("test-secret", WithClock(clock.Now), WithLifetime(time.Hour))
	require.NoError(t, err)

	raw, err := svc.Issue("user-123")
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = svc.Verify(raw)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
