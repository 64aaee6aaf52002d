// Package token issues and verifies the signed bearer tokens used for API
// sessions. Tokens are self-contained; validity never depends on server
// side storage.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// DefaultLifetime is the fixed token lifetime.
const DefaultLifetime = 30 * 24 * time.Hour

var (
	// ErrTokenExpired indicates the token is past its expiry claim.
	ErrTokenExpired = errors.New("token: expired")
	// ErrTokenInvalid indicates a bad signature or missing claims.
	ErrTokenInvalid = errors.New("token: invalid")
)

// Claims are the verified contents of a session token.
type Claims struct {
	SubjectID string
	IssuedAt  time.Time
}

// Service signs and verifies session tokens with a symmetric secret.
type Service struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// Option customizes Service construction.
type Option func(*Service)

// WithLifetime overrides the token lifetime.
func WithLifetime(d time.Duration) Option {
	return func(s *Service) { s.lifetime = d }
}

// WithClock overrides the time source for issuance and verification.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a Service. The secret must be non-empty and must
// match between issuance and verification.
func NewService(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token: secret must be provided")
	}
	s := &Service{
		secret:   []byte(secret),
		lifetime: DefaultLifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue creates a signed token for the given subject.
func (s *Service) Issue(subjectID string) (string, error) {
	now := s.now().UTC().Truncate(time.Second)
	tok, err := jwt.NewBuilder().
		Subject(subjectID).
		IssuedAt(now).
		Expiration(now.Add(s.lifetime)).
		Build()
	if err != nil {
		return "", fmt.Errorf("token: build: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return string(signed), nil
}

// Verify checks signature and expiry and returns the embedded claims.
func (s *Service) Verify(raw string) (Claims, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok.Subject() == "" || tok.IssuedAt().IsZero() {
		return Claims{}, ErrTokenInvalid
	}
	return Claims{SubjectID: tok.Subject(), IssuedAt: tok.IssuedAt()}, nil
}
