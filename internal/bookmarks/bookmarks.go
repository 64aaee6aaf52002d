// Package bookmarks stores per-user saved shayaris. The snapshot is
// denormalized so a bookmark survives edits and deletions of the source.
package bookmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/shayaris"
)

// Bookmark is a user's saved copy of a shayari.
type Bookmark struct {
	UserID     string    `json:"-"`
	ShayariID  string    `json:"shayariId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RepositoryPort defines data access methods for bookmarks.
type RepositoryPort interface {
	Insert(ctx context.Context, b Bookmark) error
	ListByUser(ctx context.Context, userID string) ([]Bookmark, error)
	Delete(ctx context.Context, userID, shayariID string) error
	Exists(ctx context.Context, userID, shayariID string) (bool, error)
}

// Catalog resolves the shayari being bookmarked.
type Catalog interface {
	Get(ctx context.Context, id string) (*shayaris.Shayari, error)
}

// Service handles bookmark business logic.
type Service struct {
	repo    RepositoryPort
	catalog Catalog
	now     func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

// Create snapshots the shayari into the user's bookmarks.
func (s *Service) Create(ctx context.Context, userID, shayariID string) (*Bookmark, error) {
	exists, err := s.repo.Exists(ctx, userID, shayariID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: already bookmarked", httpx.ErrDuplicate)
	}

	shayari, err := s.catalog.Get(ctx, shayariID)
	if err != nil {
		return nil, err
	}

	bookmark := Bookmark{
		UserID:     userID,
		ShayariID:  shayari.ID,
		Title:      shayari.Title,
		Content:    shayari.Content,
		AuthorName: shayari.AuthorName,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, bookmark); err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// List returns the user's bookmarks, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Bookmark, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Remove deletes a bookmark by the source shayari id.
func (s *Service) Remove(ctx context.Context, userID, shayariID string) error {
	return s.repo.Delete(ctx, userID, shayariID)
}

// IsBookmarked reports whether the user has saved the shayari.
func (s *Service) IsBookmarked(ctx context.Context, userID, shayariID string) (bool, error) {
	return s.repo.Exists(ctx, userID, shayariID)
}
