package social

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raama-app/raama/internal/notifications"
	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

type edge struct{ follower, following string }

type memoryFollowRepo struct {
	edges map[edge]time.Time
}

func newMemoryFollowRepo() *memoryFollowRepo {
	return &memoryFollowRepo{edges: map[edge]time.Time{}}
}

func (m *memoryFollowRepo) Insert(_ context.Context, followerID, followingID string, at time.Time) error {
	e := edge{followerID, followingID}
	if _, ok := m.edges[e]; ok {
		return fmt.Errorf("%w: already following", httpx.ErrDuplicate)
	}
	m.edges[e] = at
	return nil
}

func (m *memoryFollowRepo) Delete(_ context.Context, followerID, followingID string) error {
	e := edge{followerID, followingID}
	if _, ok := m.edges[e]; !ok {
		return fmt.Errorf("%w: not following", httpx.ErrNotFound)
	}
	delete(m.edges, e)
	return nil
}

func (m *memoryFollowRepo) Followers(_ context.Context, userID string) ([]FollowProfile, error) {
	var out []FollowProfile
	for e, at := range m.edges {
		if e.following == userID {
			out = append(out, FollowProfile{ID: e.follower, FollowedAt: at})
		}
	}
	return out, nil
}

func (m *memoryFollowRepo) Following(_ context.Context, userID string) ([]FollowProfile, error) {
	var out []FollowProfile
	for e, at := range m.edges {
		if e.follower == userID {
			out = append(out, FollowProfile{ID: e.following, FollowedAt: at})
		}
	}
	return out, nil
}

func (m *memoryFollowRepo) FollowCounts(_ context.Context, userID string) (int, int, error) {
	followers, following := 0, 0
	for e := range m.edges {
		if e.following == userID {
			followers++
		}
		if e.follower == userID {
			following++
		}
	}
	return followers, following, nil
}

type stubDirectory struct {
	names map[string]string
}

func (s *stubDirectory) DisplayName(_ context.Context, id string) (string, error) {
	name, ok := s.names[id]
	if !ok {
		return "", fmt.Errorf("%w: user %s", httpx.ErrNotFound, id)
	}
	return name, nil
}

type recordingNotifier struct {
	pushed []notifications.CreateInput
}

func (r *recordingNotifier) Push(_ context.Context, input notifications.CreateInput) {
	r.pushed = append(r.pushed, input)
}

func newSocialTestService() (*Service, *recordingNotifier) {
	directory := &stubDirectory{names: map[string]string{
		"mira":  "Mira Rao",
		"arjun": "Arjun Syal",
	}}
	notifier := &recordingNotifier{}
	return NewService(newMemoryFollowRepo(), directory, notifier), notifier
}

func follower() *sessionauth.Identity {
	return &sessionauth.Identity{ID: "arjun", DisplayName: "Arjun Syal", Role: sessionauth.RoleReader}
}

func TestFollowNotifiesTarget(t *testing.T) {
	svc, notifier := newSocialTestService()

	require.NoError(t, svc.Follow(context.Background(), follower(), "mira"))

	require.Len(t, notifier.pushed, 1)
	assert.Equal(t, "mira", notifier.pushed[0].UserID)
	assert.Equal(t, "arjun", notifier.pushed[0].SenderID)
	assert.Equal(t, notifications.TypeFollow, notifier.pushed[0].Type)

	followers, following, err := svc.FollowCounts(context.Background(), "mira")
	require.NoError(t, err)
	assert.Equal(t, 1, followers)
	assert.Equal(t, 0, following)
}

func TestFollowRejectsSelfAndUnknown(t *testing.T) {
	svc, notifier := newSocialTestService()

	err := svc.Follow(context.Background(), follower(), "arjun")
	assert.ErrorIs(t, err, httpx.ErrValidation)

	err = svc.Follow(context.Background(), follower(), "ghost")
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	assert.Empty(t, notifier.pushed)
}

func TestFollowTwiceConflicts(t *testing.T) {
	svc, _ := newSocialTestService()

	require.NoError(t, svc.Follow(context.Background(), follower(), "mira"))
	err := svc.Follow(context.Background(), follower(), "mira")
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUnfollow(t *testing.T) {
	svc, _ := newSocialTestService()

	err := svc.Unfollow(context.Background(), "arjun", "mira")
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	require.NoError(t, svc.Follow(context.Background(), follower(), "mira"))
	require.NoError(t, svc.Unfollow(context.Background(), "arjun", "mira"))

	followers, _, err := svc.FollowCounts(context.Background(), "mira")
	require.NoError(t, err)
	assert.Zero(t, followers)
}
