package users

import (
	"time"

	"github.com/raama-app/raama/internal/sessionauth"
)

// User is an account on the platform. The password hash and per-admin
// secret hash never leave this package.
type User struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	Username        string
	Role            string
	PasswordHash    string
	EmailVerified   bool
	EmailOTP        *string
	OTPExpiresAt    *time.Time
	ProfilePicture  *string
	AdminSecretHash *string
	RoleChangedAt   *time.Time
	Blocked         bool
	CreatedAt       time.Time
}

// FullName is the display name shown alongside content.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Identity converts the record into its authorization-relevant view.
func (u *User) Identity() *sessionauth.Identity {
	return &sessionauth.Identity{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		DisplayName:   u.FullName(),
		Role:          u.Role,
		RoleChangedAt: u.RoleChangedAt,
	}
}

// Profile is the public JSON shape of a user.
type Profile struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Username       string     `json:"username"`
	Role           string     `json:"role"`
	EmailVerified  bool       `json:"emailVerified"`
	ProfilePicture *string    `json:"profilePicture,omitempty"`
	RoleChangedAt  *time.Time `json:"roleChangedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Public strips the credential fields from the record.
func (u *User) Public() Profile {
	return Profile{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Username:       u.Username,
		Role:           u.Role,
		EmailVerified:  u.EmailVerified,
		ProfilePicture: u.ProfilePicture,
		RoleChangedAt:  u.RoleChangedAt,
		CreatedAt:      u.CreatedAt,
	}
}
