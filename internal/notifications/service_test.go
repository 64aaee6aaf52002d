package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryNotificationRepo struct {
	items      []Notification
	insertErr  error
	markedRead []string
}

func (m *memoryNotificationRepo) Insert(ctx context.Context, n Notification) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.items = append(m.items, n)
	return nil
}

func (m *memoryNotificationRepo) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	var out []Notification
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memoryNotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memoryNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	for i, n := range m.items {
		if n.ID == id && n.UserID == userID {
			m.items[i].IsRead = true
			m.markedRead = append(m.markedRead, id)
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memoryNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	for i, n := range m.items {
		if n.UserID == userID {
			m.items[i].IsRead = true
		}
	}
	return nil
}

func (m *memoryNotificationRepo) Delete(ctx context.Context, id, userID string) error {
	for i, n := range m.items {
		if n.ID == id && n.UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreatePersistsAndPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &memoryNotificationRepo{}
	svc := NewService(repo, client, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, StreamChannel("reader-1"))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	created, err := svc.Create(ctx, CreateInput{
		UserID:     "reader-1",
		SenderID:   "writer-1",
		SenderName: "Mirza",
		Message:    "Mirza liked your shayari",
		Type:       TypeLike,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.IsRead)
	require.NotNil(t, created.SenderID)
	assert.Equal(t, "writer-1", *created.SenderID)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, created.ID)

	require.Len(t, repo.items, 1)
}

func TestCreateWithoutRedisStillPersists(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := NewService(repo, nil, testLogger())

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:  "reader-1",
		Message: "Welcome to Raama",
		Type:    TypeWelcome,
	})
	require.NoError(t, err)
	require.Len(t, repo.items, 1)
}

func TestPushSwallowsRepositoryFailure(t *testing.T) {
	repo := &memoryNotificationRepo{insertErr: errors.New("connection refused")}
	svc := NewService(repo, nil, testLogger())

	svc.Push(context.Background(), CreateInput{
		UserID:  "reader-1",
		Message: "should not panic",
		Type:    TypeLike,
	})
	assert.Empty(t, repo.items)
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	repo := &memoryNotificationRepo{}
	svc := NewService(repo, nil, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateInput{UserID: "reader-1", Message: "hi", Type: TypeFollow})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateInput{UserID: "reader-2", Message: "hi", Type: TypeFollow})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, "reader-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.MarkAllRead(ctx, "reader-1"))

	count, err = svc.UnreadCount(ctx, "reader-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = svc.UnreadCount(ctx, "reader-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTitleFor(t *testing.T) {
	assert.Equal(t, "New Like", TitleFor(TypeLike))
	assert.Equal(t, "Announcement", TitleFor(TypeBroadcast))
	assert.Equal(t, "Notification", TitleFor("unknown"))
}
