package bookmarks

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raama-app/raama/internal/platform/httpx"
)

// Repository persists bookmarks in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a bookmark snapshot.
func (r *Repository) Insert(ctx context.Context, b Bookmark) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bookmarks (user_id, shayari_id, title, content, author_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		b.UserID, b.ShayariID, b.Title, b.Content, b.AuthorName, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("bookmarks: insert: %w", err)
	}
	return nil
}

// ListByUser returns a user's bookmarks, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Bookmark, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, shayari_id, title, content, author_name, created_at
		FROM bookmarks WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("bookmarks: list: %w", err)
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.UserID, &b.ShayariID, &b.Title, &b.Content, &b.AuthorName, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("bookmarks: scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes a bookmark by its source shayari.
func (r *Repository) Delete(ctx context.Context, userID, shayariID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_id = $1 AND shayari_id = $2`, userID, shayariID)
	if err != nil {
		return fmt.Errorf("bookmarks: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: bookmark", httpx.ErrNotFound)
	}
	return nil
}

// Exists reports whether the user bookmarked the shayari.
func (r *Repository) Exists(ctx context.Context, userID, shayariID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND shayari_id = $2)`,
		userID, shayariID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("bookmarks: exists: %w", err)
	}
	return exists, nil
}
