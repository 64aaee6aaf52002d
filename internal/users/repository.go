package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raama-app/raama/internal/platform/db"
	"github.com/raama-app/raama/internal/platform/httpx"
)

const userColumns = `id, email, first_name, last_name, username, role, password_hash,
	email_verified, email_otp, otp_expires_at, profile_picture,
	admin_secret_hash, role_changed_at, blocked, created_at`

// Repository provides PostgreSQL backed persistence for user accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Username, &u.Role,
		&u.PasswordHash, &u.EmailVerified, &u.EmailOTP, &u.OTPExpiresAt, &u.ProfilePicture,
		&u.AdminSecretHash, &u.RoleChangedAt, &u.Blocked, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

// Insert stores a new user account.
func (r *Repository) Insert(ctx context.Context, u User) error {
	query := `
		INSERT INTO users (
			id, email, first_name, last_name, username, role, password_hash,
			email_verified, email_otp, otp_expires_at, profile_picture,
			admin_secret_hash, role_changed_at, blocked, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.Username, u.Role, u.PasswordHash,
		u.EmailVerified, u.EmailOTP, u.OTPExpiresAt, u.ProfilePicture,
		u.AdminSecretHash, u.RoleChangedAt, u.Blocked, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	return nil
}

// GetByID fetches a user by id.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail fetches a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByUsername fetches a user by pen name.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// ListByRole returns users carrying the given role, newest first, cap 100.
func (r *Repository) ListByRole(ctx context.Context, role string) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at DESC LIMIT 100`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	return result, rows.Err()
}

// ListIDs returns every user id; the broadcast fanout walks it.
func (r *Repository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetOTP updates the pending verification code.
func (r *Repository) SetOTP(ctx context.Context, id, otp string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET email_otp = $2, otp_expires_at = $3 WHERE id = $1`, id, otp, expiresAt)
	return err
}

// MarkVerified flags the email as verified and clears the pending code.
func (r *Repository) MarkVerified(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, email_otp = NULL, otp_expires_at = NULL WHERE id = $1`, id)
	return err
}

// UpdatePassword replaces the password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	return err
}

// UpdateRole changes the role and records the change timestamp. Moving
// role_changed_at forward is what invalidates outstanding tokens.
func (r *Repository) UpdateRole(ctx context.Context, id, role string, changedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, role_changed_at = $3 WHERE id = $1`, id, role, changedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", httpx.ErrNotFound)
	}
	return nil
}

// SetBlocked toggles the account block flag.
func (r *Repository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET blocked = $2 WHERE id = $1`, id, blocked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", httpx.ErrNotFound)
	}
	return nil
}

// UpdateProfilePicture stores or clears the profile picture.
func (r *Repository) UpdateProfilePicture(ctx context.Context, id string, picture *string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET profile_picture = $2 WHERE id = $1`, id, picture)
	return err
}

// Delete removes a user account together with everything it owns.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		owned := []string{
			`DELETE FROM shayaris WHERE author_id = $1`,
			`DELETE FROM follows WHERE follower_id = $1 OR following_id = $1`,
			`DELETE FROM bookmarks WHERE user_id = $1`,
			`DELETE FROM collections WHERE creator_id = $1`,
			`DELETE FROM writer_requests WHERE user_id = $1`,
			`DELETE FROM notifications WHERE user_id = $1`,
			`DELETE FROM search_history WHERE user_id = $1`,
		}
		for _, query := range owned {
			if _, err := tx.Exec(ctx, query, id); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: user", httpx.ErrNotFound)
		}
		return nil
	})
}

// CountByRole returns the number of users per role.
func (r *Repository) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}
