// Package search implements catalog search with per-user history and
// query suggestions.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raama-app/raama/internal/shayaris"
)

// Repository runs search queries against Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SearchShayaris matches the query against title, content, tags and
// author, with optional author and tag filters.
func (r *Repository) SearchShayaris(ctx context.Context, query, author, tag string, limit int) ([]shayaris.Shayari, error) {
	pattern := "%" + query + "%"
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, content, author_id, author_name, author_username,
			tags, likes, liked_by, shares, views, featured, ai_processed,
			quality_score, analysis, created_at
		FROM shayaris
		WHERE (title ILIKE $1 OR content ILIKE $1 OR author_name ILIKE $1
			OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $1))
		AND ($2 = '' OR author_username = $2)
		AND ($3 = '' OR $3 = ANY(tags))
		ORDER BY created_at DESC
		LIMIT $4`,
		pattern, author, tag, limit)
	if err != nil {
		return nil, fmt.Errorf("search: query shayaris: %w", err)
	}
	defer rows.Close()

	var out []shayaris.Shayari
	for rows.Next() {
		var s shayaris.Shayari
		err := rows.Scan(&s.ID, &s.Title, &s.Content, &s.AuthorID, &s.AuthorName,
			&s.AuthorUsername, &s.Tags, &s.Likes, &s.LikedBy, &s.Shares, &s.Views,
			&s.Featured, &s.AIProcessed, &s.QualityScore, &s.Analysis, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("search: scan shayari: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecordQuery appends to the user's search history.
func (r *Repository) RecordQuery(ctx context.Context, userID, query string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO search_history (user_id, query, created_at)
		VALUES ($1, $2, $3)`,
		userID, query, at)
	if err != nil {
		return fmt.Errorf("search: record query: %w", err)
	}
	return nil
}

// History returns the user's most recent queries.
func (r *Repository) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT query, created_at FROM search_history
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("search: history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Query, &e.SearchedAt); err != nil {
			return nil, fmt.Errorf("search: scan history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ClearHistory removes the user's search history.
func (r *Repository) ClearHistory(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM search_history WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("search: clear history: %w", err)
	}
	return nil
}

// PopularQueries returns the most frequent recent queries across users.
func (r *Repository) PopularQueries(ctx context.Context, since time.Time, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT query FROM search_history
		WHERE created_at > $1
		GROUP BY query ORDER BY COUNT(*) DESC LIMIT $2`,
		since, limit)
	if err != nil {
		return nil, fmt.Errorf("search: popular queries: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("search: scan query: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// PopularTags returns the most used tags in the catalog.
func (r *Repository) PopularTags(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t FROM shayaris, unnest(tags) t
		GROUP BY t ORDER BY COUNT(*) DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("search: popular tags: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("search: scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
