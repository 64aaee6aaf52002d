package users

import (
	"context"
	"errors"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// IdentitySource adapts the user repository to the session authority's
// lookup contract.
type IdentitySource struct {
	repo RepositoryPort
}

// NewIdentitySource constructs an IdentitySource.
func NewIdentitySource(repo RepositoryPort) *IdentitySource {
	return &IdentitySource{repo: repo}
}

// IdentityByID fetches the authorization-relevant view of a user.
func (s *IdentitySource) IdentityByID(ctx context.Context, id string) (*sessionauth.Identity, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, sessionauth.ErrUserNotFound
		}
		return nil, err
	}
	return user.Identity(), nil
}

// DisplayName resolves a user id to their full name. The not-found error
// from the repository passes through unchanged.
func (s *IdentitySource) DisplayName(ctx context.Context, id string) (string, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.FullName(), nil
}

var _ sessionauth.UserSource = (*IdentitySource)(nil)
