// Package sessionauth resolves bearer tokens to live user identities and
// enforces the role-change invalidation contract: any role mutation moves
// the subject's roleChangedAt forward and invalidates every token issued
// before it. There is no per-token revocation list.
package sessionauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raama-app/raama/internal/token"
)

// Role tags carried by an identity.
const (
	RoleReader = "reader"
	RoleWriter = "writer"
	RoleAdmin  = "admin"
)

var (
	// ErrUserNotFound indicates the token subject no longer exists.
	ErrUserNotFound = errors.New("sessionauth: user not found")
	// ErrSessionStale indicates the subject's role changed after the token
	// was issued; the caller must re-authenticate.
	ErrSessionStale = errors.New("sessionauth: session stale")
	// ErrForbidden indicates the identity lacks the required role.
	ErrForbidden = errors.New("sessionauth: forbidden")
)

// Identity is the authorization-relevant view of a user record.
type Identity struct {
	ID            string
	Email         string
	Username      string
	DisplayName   string
	Role          string
	RoleChangedAt *time.Time
}

// UserSource looks up identities by subject id. Implementations return
// ErrUserNotFound when the subject is absent.
type UserSource interface {
	IdentityByID(ctx context.Context, id string) (*Identity, error)
}

// Authority resolves tokens against live user records.
type Authority struct {
	tokens *token.Service
	users  UserSource
}

// NewAuthority constructs an Authority.
func NewAuthority(tokens *token.Service, users UserSource) *Authority {
	return &Authority{tokens: tokens, users: users}
}

// ResolveIdentity verifies the token, loads the subject, and rejects
// tokens issued before the subject's last role change.
func (a *Authority) ResolveIdentity(ctx context.Context, raw string) (*Identity, error) {
	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	identity, err := a.users.IdentityByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("sessionauth: lookup subject: %w", err)
	}

	if identity.RoleChangedAt != nil && identity.RoleChangedAt.After(claims.IssuedAt) {
		return nil, ErrSessionStale
	}
	return identity, nil
}

// RequireRole fails with ErrForbidden unless the identity carries the role.
func RequireRole(identity *Identity, role string) error {
	if identity == nil || identity.Role != role {
		return ErrForbidden
	}
	return nil
}
