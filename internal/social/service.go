package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raama-app/raama/internal/notifications"
	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// RepositoryPort defines data access methods for the follower graph.
type RepositoryPort interface {
	Insert(ctx context.Context, followerID, followingID string, at time.Time) error
	Delete(ctx context.Context, followerID, followingID string) error
	Followers(ctx context.Context, userID string) ([]FollowProfile, error)
	Following(ctx context.Context, userID string) ([]FollowProfile, error)
	FollowCounts(ctx context.Context, userID string) (int, int, error)
}

// Directory resolves user ids to display names. Absent users yield a
// wrapped httpx.ErrNotFound.
type Directory interface {
	DisplayName(ctx context.Context, id string) (string, error)
}

// Notifier raises in-app notifications.
type Notifier interface {
	Push(ctx context.Context, input notifications.CreateInput)
}

// Service handles follower graph business logic.
type Service struct {
	repo      RepositoryPort
	directory Directory
	notifier  Notifier
	now       func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, directory Directory, notifier Notifier) *Service {
	return &Service{repo: repo, directory: directory, notifier: notifier, now: time.Now}
}

// Follow records a follow edge and notifies the followed user.
func (s *Service) Follow(ctx context.Context, follower *sessionauth.Identity, targetID string) error {
	if follower.ID == targetID {
		return fmt.Errorf("%w: cannot follow yourself", httpx.ErrValidation)
	}
	if _, err := s.directory.DisplayName(ctx, targetID); err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return fmt.Errorf("%w: user", httpx.ErrNotFound)
		}
		return err
	}
	if err := s.repo.Insert(ctx, follower.ID, targetID, s.now().UTC()); err != nil {
		return err
	}

	s.notifier.Push(ctx, notifications.CreateInput{
		UserID:     targetID,
		SenderID:   follower.ID,
		SenderName: follower.DisplayName,
		Message:    fmt.Sprintf("%s started following you", follower.DisplayName),
		Type:       notifications.TypeFollow,
	})
	return nil
}

// Unfollow removes a follow edge.
func (s *Service) Unfollow(ctx context.Context, followerID, targetID string) error {
	return s.repo.Delete(ctx, followerID, targetID)
}

// Followers lists who follows the user.
func (s *Service) Followers(ctx context.Context, userID string) ([]FollowProfile, error) {
	return s.repo.Followers(ctx, userID)
}

// Following lists who the user follows.
func (s *Service) Following(ctx context.Context, userID string) ([]FollowProfile, error) {
	return s.repo.Following(ctx, userID)
}

// FollowCounts returns follower and following totals.
func (s *Service) FollowCounts(ctx context.Context, userID string) (int, int, error) {
	return s.repo.FollowCounts(ctx, userID)
}
