package writerreq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raama-app/raama/internal/platform/httpx"
)

// Repository persists writer requests in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `id, user_id, user_name, user_email, reason, status, created_at, reviewed_at, reviewed_by`

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.UserID, &req.UserName, &req.UserEmail, &req.Reason,
		&req.Status, &req.CreatedAt, &req.ReviewedAt, &req.ReviewedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: writer request", httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("writerreq: scan: %w", err)
	}
	return &req, nil
}

// Insert stores a new request.
func (r *Repository) Insert(ctx context.Context, req Request) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO writer_requests (id, user_id, user_name, user_email, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.UserID, req.UserName, req.UserEmail, req.Reason, req.Status, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("writerreq: insert: %w", err)
	}
	return nil
}

// Get fetches a request by id.
func (r *Repository) Get(ctx context.Context, id string) (*Request, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM writer_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// PendingByUser returns the user's open request, if any.
func (r *Repository) PendingByUser(ctx context.Context, userID string) (*Request, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM writer_requests WHERE user_id = $1 AND status = $2`,
		userID, StatusPending)
	return scanRequest(row)
}

// List returns requests, optionally filtered by status, newest first.
func (r *Repository) List(ctx context.Context, status string) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM writer_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`,
		status)
	if err != nil {
		return nil, fmt.Errorf("writerreq: list: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// SetStatus reviews a pending request. Reviewing twice is a conflict.
func (r *Repository) SetStatus(ctx context.Context, id, status, reviewerID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE writer_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1 AND status = $5`,
		id, status, reviewerID, at, StatusPending)
	if err != nil {
		return fmt.Errorf("writerreq: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request already reviewed or missing", httpx.ErrDuplicate)
	}
	return nil
}

// CountPending returns the number of open requests.
func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM writer_requests WHERE status = $1`, StatusPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("writerreq: count pending: %w", err)
	}
	return count, nil
}
