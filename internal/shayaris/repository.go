package shayaris

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raama-app/raama/internal/platform/httpx"
)

// Repository persists shayaris in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const shayariColumns = `id, title, content, author_id, author_name, author_username,
	tags, likes, liked_by, shares, views, featured, ai_processed, quality_score,
	analysis, created_at`

func scanShayari(row pgx.Row) (*Shayari, error) {
	var s Shayari
	err := row.Scan(
		&s.ID, &s.Title, &s.Content, &s.AuthorID, &s.AuthorName, &s.AuthorUsername,
		&s.Tags, &s.Likes, &s.LikedBy, &s.Shares, &s.Views, &s.Featured,
		&s.AIProcessed, &s.QualityScore, &s.Analysis, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: shayari", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("shayaris: scan: %w", err)
	}
	return &s, nil
}

func collectShayaris(rows pgx.Rows) ([]Shayari, error) {
	defer rows.Close()
	var out []Shayari
	for rows.Next() {
		s, err := scanShayari(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Insert stores a new shayari.
func (r *Repository) Insert(ctx context.Context, s Shayari) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shayaris (id, title, content, author_id, author_name,
			author_username, tags, likes, liked_by, shares, views, featured,
			ai_processed, quality_score, analysis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, '{}', 0, 0, false, $8, $9, $10, $11)`,
		s.ID, s.Title, s.Content, s.AuthorID, s.AuthorName, s.AuthorUsername,
		s.Tags, s.AIProcessed, s.QualityScore, s.Analysis, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("shayaris: insert: %w", err)
	}
	return nil
}

// Get fetches a shayari by id.
func (r *Repository) Get(ctx context.Context, id string) (*Shayari, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+shayariColumns+` FROM shayaris WHERE id = $1`, id)
	return scanShayari(row)
}

// ListAll returns the newest shayaris, capped.
func (r *Repository) ListAll(ctx context.Context, limit int) ([]Shayari, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+shayariColumns+` FROM shayaris ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("shayaris: list: %w", err)
	}
	return collectShayaris(rows)
}

// ListByAuthor returns one author's shayaris, newest first.
func (r *Repository) ListByAuthor(ctx context.Context, authorID string) ([]Shayari, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+shayariColumns+` FROM shayaris WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("shayaris: list by author: %w", err)
	}
	return collectShayaris(rows)
}

// Delete removes a shayari.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shayaris WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("shayaris: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shayari", httpx.ErrNotFound)
	}
	return nil
}

// AddLike records a like once per user.
func (r *Repository) AddLike(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shayaris
		SET likes = likes + 1, liked_by = array_append(liked_by, $2)
		WHERE id = $1 AND NOT ($2 = ANY(liked_by))`,
		id, userID)
	if err != nil {
		return fmt.Errorf("shayaris: add like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: already liked", httpx.ErrDuplicate)
	}
	return nil
}

// RemoveLike undoes a like.
func (r *Repository) RemoveLike(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shayaris
		SET likes = likes - 1, liked_by = array_remove(liked_by, $2)
		WHERE id = $1 AND $2 = ANY(liked_by)`,
		id, userID)
	if err != nil {
		return fmt.Errorf("shayaris: remove like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: not liked yet", httpx.ErrValidation)
	}
	return nil
}

// IncrementShares bumps the share counter and returns the new value.
func (r *Repository) IncrementShares(ctx context.Context, id string) (int, error) {
	var shares int
	err := r.pool.QueryRow(ctx,
		`UPDATE shayaris SET shares = shares + 1 WHERE id = $1 RETURNING shares`, id).Scan(&shares)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: shayari", httpx.ErrNotFound)
		}
		return 0, fmt.Errorf("shayaris: increment shares: %w", err)
	}
	return shares, nil
}

// IncrementViews bumps the view counter and returns the new value.
func (r *Repository) IncrementViews(ctx context.Context, id string) (int, error) {
	var views int
	err := r.pool.QueryRow(ctx,
		`UPDATE shayaris SET views = views + 1 WHERE id = $1 RETURNING views`, id).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: shayari", httpx.ErrNotFound)
		}
		return 0, fmt.Errorf("shayaris: increment views: %w", err)
	}
	return views, nil
}

// SetFeatured toggles the curated flag.
func (r *Repository) SetFeatured(ctx context.Context, id string, featured bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shayaris SET featured = $2 WHERE id = $1`, id, featured)
	if err != nil {
		return fmt.Errorf("shayaris: set featured: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shayari", httpx.ErrNotFound)
	}
	return nil
}

// ListFeatured returns curated shayaris, newest first.
func (r *Repository) ListFeatured(ctx context.Context) ([]Shayari, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+shayariColumns+` FROM shayaris WHERE featured ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("shayaris: list featured: %w", err)
	}
	return collectShayaris(rows)
}

// Trending ranks recent shayaris by weighted engagement.
func (r *Repository) Trending(ctx context.Context, since time.Time, limit int) ([]Shayari, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+shayariColumns+`
		FROM shayaris
		WHERE created_at > $1
		ORDER BY likes * 3 + shares * 5 + views DESC, created_at DESC
		LIMIT $2`,
		since, limit)
	if err != nil {
		return nil, fmt.Errorf("shayaris: trending: %w", err)
	}
	return collectShayaris(rows)
}

// Random picks a single shayari at random.
func (r *Repository) Random(ctx context.Context) (*Shayari, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+shayariColumns+` FROM shayaris ORDER BY random() LIMIT 1`)
	return scanShayari(row)
}

// SetAnalysis stores the AI enrichment result.
func (r *Repository) SetAnalysis(ctx context.Context, id string, tags []string, score *float64, analysis json.RawMessage, processed bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shayaris
		SET tags = $2, quality_score = $3, analysis = $4, ai_processed = $5
		WHERE id = $1`,
		id, tags, score, analysis, processed)
	if err != nil {
		return fmt.Errorf("shayaris: set analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shayari", httpx.ErrNotFound)
	}
	return nil
}

// AuthorStats returns how many shayaris an author published and the total
// likes they received.
func (r *Repository) AuthorStats(ctx context.Context, authorID string) (int, int, error) {
	var count, likes int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(likes), 0) FROM shayaris WHERE author_id = $1`,
		authorID).Scan(&count, &likes)
	if err != nil {
		return 0, 0, fmt.Errorf("shayaris: author stats: %w", err)
	}
	return count, likes, nil
}

// CountShayaris returns the catalog size.
func (r *Repository) CountShayaris(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM shayaris`).Scan(&count); err != nil {
		return 0, fmt.Errorf("shayaris: count: %w", err)
	}
	return count, nil
}
