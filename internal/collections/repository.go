package collections

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raama-app/raama/internal/platform/httpx"
)

// Repository persists collections in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const collectionColumns = `id, name, description, creator_id, creator_name, is_public, shayari_ids, created_at`

func scanCollection(row pgx.Row) (*Collection, error) {
	var c Collection
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatorID, &c.CreatorName,
		&c.IsPublic, &c.ShayariIDs, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("collections: scan: %w", err)
	}
	return &c, nil
}

// Insert stores a new collection.
func (r *Repository) Insert(ctx context.Context, c Collection) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO collections (id, name, description, creator_id, creator_name,
			is_public, shayari_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, '{}', $7)`,
		c.ID, c.Name, c.Description, c.CreatorID, c.CreatorName, c.IsPublic, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("collections: insert: %w", err)
	}
	return nil
}

// Get fetches a collection by id.
func (r *Repository) Get(ctx context.Context, id string) (*Collection, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = $1`, id)
	return scanCollection(row)
}

// ListPublic returns public collections, newest first.
func (r *Repository) ListPublic(ctx context.Context) ([]Collection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE is_public ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("collections: list public: %w", err)
	}
	return collect(rows)
}

// ListByCreator returns one user's collections, newest first.
func (r *Repository) ListByCreator(ctx context.Context, creatorID string) ([]Collection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE creator_id = $1 ORDER BY created_at DESC`,
		creatorID)
	if err != nil {
		return nil, fmt.Errorf("collections: list by creator: %w", err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Collection, error) {
	defer rows.Close()
	var out []Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// AddShayari appends a shayari once.
func (r *Repository) AddShayari(ctx context.Context, collectionID, shayariID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE collections
		SET shayari_ids = array_append(shayari_ids, $2)
		WHERE id = $1 AND NOT ($2 = ANY(shayari_ids))`,
		collectionID, shayariID)
	if err != nil {
		return fmt.Errorf("collections: add shayari: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shayari already in collection", httpx.ErrDuplicate)
	}
	return nil
}

// RemoveShayari drops a shayari from the set.
func (r *Repository) RemoveShayari(ctx context.Context, collectionID, shayariID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE collections
		SET shayari_ids = array_remove(shayari_ids, $2)
		WHERE id = $1 AND $2 = ANY(shayari_ids)`,
		collectionID, shayariID)
	if err != nil {
		return fmt.Errorf("collections: remove shayari: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shayari not in collection", httpx.ErrNotFound)
	}
	return nil
}
