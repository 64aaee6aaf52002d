package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raama-app/raama/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for notifications.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new notification.
func (r *Repository) Insert(ctx context.Context, n Notification) error {
	query := `
		INSERT INTO notifications (
			id, user_id, sender_id, sender_name, message, type,
			shayari_id, shayari_title, title, view_count, is_read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.pool.Exec(ctx, query,
		n.ID, n.UserID, n.SenderID, n.SenderName, n.Message, n.Type,
		n.ShayariID, n.ShayariTitle, n.Title, n.ViewCount, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("notifications: insert: %w", err)
	}
	return nil
}

// ListByUser returns the user's newest notifications, capped at 50.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	query := `
		SELECT id, user_id, sender_id, sender_name, message, type,
		       shayari_id, shayari_title, title, view_count, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 50`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		var viewCount pgtype.Int4
		if err := rows.Scan(&n.ID, &n.UserID, &n.SenderID, &n.SenderName, &n.Message, &n.Type,
			&n.ShayariID, &n.ShayariTitle, &n.Title, &viewCount, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if viewCount.Valid {
			v := int(viewCount.Int32)
			n.ViewCount = &v
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// UnreadCount reports how many notifications the user has not read.
func (r *Repository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID,
	).Scan(&count)
	return count, err
}

// MarkRead flags one notification as read. Ownership is part of the match.
func (r *Repository) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification", httpx.ErrNotFound)
	}
	return nil
}

// MarkAllRead flags every notification of the user as read.
func (r *Repository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	return err
}

// Delete removes one notification owned by the user.
func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: notification", httpx.ErrNotFound)
	}
	return nil
}

// Get fetches one notification by id.
func (r *Repository) Get(ctx context.Context, id string) (*Notification, error) {
	query := `
		SELECT id, user_id, sender_id, sender_name, message, type,
		       shayari_id, shayari_title, title, view_count, is_read, created_at
		FROM notifications WHERE id = $1`
	var n Notification
	var viewCount pgtype.Int4
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.SenderID, &n.SenderName, &n.Message, &n.Type,
		&n.ShayariID, &n.ShayariTitle, &n.Title, &viewCount, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: notification", httpx.ErrNotFound)
		}
		return nil, err
	}
	if viewCount.Valid {
		v := int(viewCount.Int32)
		n.ViewCount = &v
	}
	return &n, nil
}
