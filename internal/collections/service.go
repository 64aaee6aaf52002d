package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/secgate"
	"github.com/raama-app/raama/internal/sessionauth"
	"github.com/raama-app/raama/internal/shayaris"
)

// RepositoryPort defines data access methods for collections.
type RepositoryPort interface {
	Insert(ctx context.Context, c Collection) error
	Get(ctx context.Context, id string) (*Collection, error)
	ListPublic(ctx context.Context) ([]Collection, error)
	ListByCreator(ctx context.Context, creatorID string) ([]Collection, error)
	AddShayari(ctx context.Context, collectionID, shayariID string) error
	RemoveShayari(ctx context.Context, collectionID, shayariID string) error
}

// Catalog verifies shayaris exist before they join a collection.
type Catalog interface {
	Get(ctx context.Context, id string) (*shayaris.Shayari, error)
}

// Service handles collection business logic.
type Service struct {
	repo    RepositoryPort
	catalog Catalog
	now     func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

// Create stores a new collection for the caller.
func (s *Service) Create(ctx context.Context, creator *sessionauth.Identity, input CreateInput) (*Collection, error) {
	name := secgate.SanitizeText(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", httpx.ErrValidation)
	}

	collection := Collection{
		ID:          uuid.NewString(),
		Name:        name,
		Description: secgate.SanitizeText(input.Description),
		CreatorID:   creator.ID,
		CreatorName: creator.DisplayName,
		IsPublic:    input.IsPublic,
		ShayariIDs:  []string{},
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListPublic returns public collections.
func (s *Service) ListPublic(ctx context.Context) ([]Collection, error) {
	return s.repo.ListPublic(ctx)
}

// Mine returns the caller's collections.
func (s *Service) Mine(ctx context.Context, creatorID string) ([]Collection, error) {
	return s.repo.ListByCreator(ctx, creatorID)
}

// AddShayari adds an existing shayari to a collection the caller owns.
func (s *Service) AddShayari(ctx context.Context, collectionID, shayariID string, caller *sessionauth.Identity) error {
	collection, err := s.repo.Get(ctx, collectionID)
	if err != nil {
		return err
	}
	if collection.CreatorID != caller.ID {
		return fmt.Errorf("%w: only the creator can modify this collection", httpx.ErrForbidden)
	}
	if _, err := s.catalog.Get(ctx, shayariID); err != nil {
		return err
	}
	return s.repo.AddShayari(ctx, collectionID, shayariID)
}

// RemoveShayari drops a shayari from a collection the caller owns.
func (s *Service) RemoveShayari(ctx context.Context, collectionID, shayariID string, caller *sessionauth.Identity) error {
	collection, err := s.repo.Get(ctx, collectionID)
	if err != nil {
		return err
	}
	if collection.CreatorID != caller.ID {
		return fmt.Errorf("%w: only the creator can modify this collection", httpx.ErrForbidden)
	}
	return s.repo.RemoveShayari(ctx, collectionID, shayariID)
}
