package collections

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
	"github.com/raama-app/raama/internal/shayaris"
)

type memoryCollectionRepo struct {
	items map[string]*Collection
}

func newMemoryCollectionRepo() *memoryCollectionRepo {
	return &memoryCollectionRepo{items: map[string]*Collection{}}
}

func (m *memoryCollectionRepo) Insert(_ context.Context, c Collection) error {
	m.items[c.ID] = &c
	return nil
}

func (m *memoryCollectionRepo) Get(_ context.Context, id string) (*Collection, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: collection", httpx.ErrNotFound)
	}
	copied := *c
	return &copied, nil
}

func (m *memoryCollectionRepo) ListPublic(_ context.Context) ([]Collection, error) {
	var out []Collection
	for _, c := range m.items {
		if c.IsPublic {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memoryCollectionRepo) ListByCreator(_ context.Context, creatorID string) ([]Collection, error) {
	var out []Collection
	for _, c := range m.items {
		if c.CreatorID == creatorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memoryCollectionRepo) AddShayari(_ context.Context, collectionID, shayariID string) error {
	c, ok := m.items[collectionID]
	if !ok {
		return fmt.Errorf("%w: collection", httpx.ErrNotFound)
	}
	if c.Contains(shayariID) {
		return fmt.Errorf("%w: shayari already in collection", httpx.ErrDuplicate)
	}
	c.ShayariIDs = append(c.ShayariIDs, shayariID)
	return nil
}

func (m *memoryCollectionRepo) RemoveShayari(_ context.Context, collectionID, shayariID string) error {
	c, ok := m.items[collectionID]
	if !ok {
		return fmt.Errorf("%w: collection", httpx.ErrNotFound)
	}
	if !c.Contains(shayariID) {
		return fmt.Errorf("%w: shayari not in collection", httpx.ErrNotFound)
	}
	kept := c.ShayariIDs[:0]
	for _, id := range c.ShayariIDs {
		if id != shayariID {
			kept = append(kept, id)
		}
	}
	c.ShayariIDs = kept
	return nil
}

type stubCatalog struct {
	known map[string]bool
}

func (s *stubCatalog) Get(_ context.Context, id string) (*shayaris.Shayari, error) {
	if !s.known[id] {
		return nil, fmt.Errorf("%w: shayari", httpx.ErrNotFound)
	}
	return &shayaris.Shayari{ID: id}, nil
}

func creator() *sessionauth.Identity {
	return &sessionauth.Identity{ID: "mira", DisplayName: "Mira Rao", Role: sessionauth.RoleWriter}
}

func newCollectionTestService(known ...string) *Service {
	catalog := &stubCatalog{known: map[string]bool{}}
	for _, id := range known {
		catalog.known[id] = true
	}
	return NewService(newMemoryCollectionRepo(), catalog)
}

func TestCreateAndListVisibility(t *testing.T) {
	svc := newCollectionTestService()

	public, err := svc.Create(context.Background(), creator(), CreateInput{Name: "Sham-e-Ghazal", IsPublic: true})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), creator(), CreateInput{Name: "Drafts"})
	require.NoError(t, err)

	listed, err := svc.ListPublic(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, public.ID, listed[0].ID)

	mine, err := svc.Mine(context.Background(), "mira")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestCreateRequiresName(t *testing.T) {
	svc := newCollectionTestService()
	_, err := svc.Create(context.Background(), creator(), CreateInput{Name: "  "})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestAddShayariChecksExistenceAndOwnership(t *testing.T) {
	svc := newCollectionTestService("sh-1")

	collection, err := svc.Create(context.Background(), creator(), CreateInput{Name: "Favourites"})
	require.NoError(t, err)

	err = svc.AddShayari(context.Background(), collection.ID, "ghost", creator())
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	stranger := &sessionauth.Identity{ID: "arjun", Role: sessionauth.RoleReader}
	err = svc.AddShayari(context.Background(), collection.ID, "sh-1", stranger)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	require.NoError(t, svc.AddShayari(context.Background(), collection.ID, "sh-1", creator()))

	err = svc.AddShayari(context.Background(), collection.ID, "sh-1", creator())
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestRemoveShayari(t *testing.T) {
	svc := newCollectionTestService("sh-1")

	collection, err := svc.Create(context.Background(), creator(), CreateInput{Name: "Favourites"})
	require.NoError(t, err)
	require.NoError(t, svc.AddShayari(context.Background(), collection.ID, "sh-1", creator()))

	require.NoError(t, svc.RemoveShayari(context.Background(), collection.ID, "sh-1", creator()))

	err = svc.RemoveShayari(context.Background(), collection.ID, "sh-1", creator())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
