package bookmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/shayaris"
)

type key struct{ user, shayari string }

type memoryBookmarkRepo struct {
	items map[key]Bookmark
}

func newMemoryBookmarkRepo() *memoryBookmarkRepo {
	return &memoryBookmarkRepo{items: map[key]Bookmark{}}
}

func (m *memoryBookmarkRepo) Insert(_ context.Context, b Bookmark) error {
	m.items[key{b.UserID, b.ShayariID}] = b
	return nil
}

func (m *memoryBookmarkRepo) ListByUser(_ context.Context, userID string) ([]Bookmark, error) {
	var out []Bookmark
	for k, b := range m.items {
		if k.user == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryBookmarkRepo) Delete(_ context.Context, userID, shayariID string) error {
	k := key{userID, shayariID}
	if _, ok := m.items[k]; !ok {
		return fmt.Errorf("%w: bookmark", httpx.ErrNotFound)
	}
	delete(m.items, k)
	return nil
}

func (m *memoryBookmarkRepo) Exists(_ context.Context, userID, shayariID string) (bool, error) {
	_, ok := m.items[key{userID, shayariID}]
	return ok, nil
}

type stubCatalog struct {
	items map[string]*shayaris.Shayari
}

func (s *stubCatalog) Get(_ context.Context, id string) (*shayaris.Shayari, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: shayari", httpx.ErrNotFound)
	}
	return item, nil
}

func newBookmarkTestService() *Service {
	catalog := &stubCatalog{items: map[string]*shayaris.Shayari{
		"sh-1": {ID: "sh-1", Title: "Shaam", Content: "dil ki baat", AuthorName: "Mira Rao"},
	}}
	return NewService(newMemoryBookmarkRepo(), catalog)
}

func TestBookmarkSnapshotsShayari(t *testing.T) {
	svc := newBookmarkTestService()

	bookmark, err := svc.Create(context.Background(), "arjun", "sh-1")
	require.NoError(t, err)
	assert.Equal(t, "Shaam", bookmark.Title)
	assert.Equal(t, "Mira Rao", bookmark.AuthorName)

	bookmarked, err := svc.IsBookmarked(context.Background(), "arjun", "sh-1")
	require.NoError(t, err)
	assert.True(t, bookmarked)

	_, err = svc.Create(context.Background(), "arjun", "sh-1")
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestBookmarkUnknownShayari(t *testing.T) {
	svc := newBookmarkTestService()
	_, err := svc.Create(context.Background(), "arjun", "ghost")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestRemoveBookmark(t *testing.T) {
	svc := newBookmarkTestService()

	err := svc.Remove(context.Background(), "arjun", "sh-1")
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Create(context.Background(), "arjun", "sh-1")
	require.NoError(t, err)
	require.NoError(t, svc.Remove(context.Background(), "arjun", "sh-1"))

	list, err := svc.List(context.Background(), "arjun")
	require.NoError(t, err)
	assert.Empty(t, list)
}
