package social

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raama-app/raama/internal/platform/httpx"
)

// Repository persists the follower graph in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert records a follow edge. Following twice is a conflict.
func (r *Repository) Insert(ctx context.Context, followerID, followingID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followingID, at)
	if err != nil {
		return fmt.Errorf("social: insert follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: already following", httpx.ErrDuplicate)
	}
	return nil
}

// Delete removes a follow edge.
func (r *Repository) Delete(ctx context.Context, followerID, followingID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID)
	if err != nil {
		return fmt.Errorf("social: delete follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: not following", httpx.ErrNotFound)
	}
	return nil
}

const followProfileQuery = `
	SELECT u.id, u.username, u.first_name || ' ' || u.last_name, u.profile_picture, f.created_at
	FROM follows f
	JOIN users u ON u.id = %s
	WHERE %s = $1
	ORDER BY f.created_at DESC`

// Followers lists the users following the given user.
func (r *Repository) Followers(ctx context.Context, userID string) ([]FollowProfile, error) {
	return r.queryProfiles(ctx,
		fmt.Sprintf(followProfileQuery, "f.follower_id", "f.following_id"), userID)
}

// Following lists the users the given user follows.
func (r *Repository) Following(ctx context.Context, userID string) ([]FollowProfile, error) {
	return r.queryProfiles(ctx,
		fmt.Sprintf(followProfileQuery, "f.following_id", "f.follower_id"), userID)
}

func (r *Repository) queryProfiles(ctx context.Context, query, userID string) ([]FollowProfile, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("social: query profiles: %w", err)
	}
	defer rows.Close()

	var out []FollowProfile
	for rows.Next() {
		var p FollowProfile
		if err := rows.Scan(&p.ID, &p.Username, &p.FullName, &p.ProfilePicture, &p.FollowedAt); err != nil {
			return nil, fmt.Errorf("social: scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FollowerIDs returns just the ids of a user's followers, for fanout.
func (r *Repository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT follower_id FROM follows WHERE following_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("social: follower ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("social: scan follower id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// FollowCounts returns follower and following totals for a user.
func (r *Repository) FollowCounts(ctx context.Context, userID string) (int, int, error) {
	var followers, following int
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE following_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)`,
		userID).Scan(&followers, &following)
	if err != nil {
		return 0, 0, fmt.Errorf("social: follow counts: %w", err)
	}
	return followers, following, nil
}
