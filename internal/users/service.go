package users

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/raama-app/raama/internal/notifications"
	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/secgate"
	"github.com/raama-app/raama/internal/sessionauth"
	"github.com/raama-app/raama/internal/token"
)

const otpLifetime = 10 * time.Minute

// ErrInvalidCredentials is returned for any login failure that must not
// reveal whether the account exists.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)

// ErrEmailNotVerified blocks login until the OTP flow completes.
var ErrEmailNotVerified = fmt.Errorf("%w: please verify your email address before logging in", httpx.ErrForbidden)

// RepositoryPort defines data access methods for user accounts.
type RepositoryPort interface {
	Insert(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	SetOTP(ctx context.Context, id, otp string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id, role string, changedAt time.Time) error
	SetBlocked(ctx context.Context, id string, blocked bool) error
	UpdateProfilePicture(ctx context.Context, id string, picture *string) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context) (map[string]int, error)
}

// Mailer queues verification mail for background delivery.
type Mailer interface {
	EnqueueOTPEmail(ctx context.Context, to, name, otp string) error
}

// Notifier raises in-app notifications.
type Notifier interface {
	Push(ctx context.Context, input notifications.CreateInput)
}

// Service handles account business logic.
type Service struct {
	repo     RepositoryPort
	tokens   *token.Service
	mailer   Mailer
	notifier Notifier
	now      func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, tokens *token.Service, mailer Mailer, notifier Notifier) *Service {
	return &Service{repo: repo, tokens: tokens, mailer: mailer, notifier: notifier, now: time.Now}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Username  string
}

// Register creates an unverified account and queues the OTP mail.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if ok, reason := secgate.ValidateUsername(input.Username); !ok {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, reason)
	}
	if ok, reason := secgate.ValidatePasswordStrength(input.Password); !ok {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, reason)
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		return nil, fmt.Errorf("%w: username already taken", httpx.ErrDuplicate)
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}
	otpExpiry := s.now().UTC().Add(otpLifetime)

	user := User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		FirstName:    secgate.SanitizeText(input.FirstName),
		LastName:     secgate.SanitizeText(input.LastName),
		Username:     input.Username,
		Role:         sessionauth.RoleReader,
		PasswordHash: string(hash),
		EmailOTP:     &otp,
		OTPExpiresAt: &otpExpiry,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mailer.EnqueueOTPEmail(ctx, user.Email, user.FirstName, otp); err != nil {
		return nil, fmt.Errorf("users: queue otp mail: %w", err)
	}
	return &user, nil
}

// VerifyOTP completes registration and issues the first session token.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (*User, string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user.EmailVerified {
		return nil, "", fmt.Errorf("%w: email already verified", httpx.ErrValidation)
	}
	if user.EmailOTP == nil {
		return nil, "", fmt.Errorf("%w: no OTP found, please request a new one", httpx.ErrValidation)
	}
	if user.OTPExpiresAt != nil && s.now().After(*user.OTPExpiresAt) {
		return nil, "", fmt.Errorf("%w: OTP has expired, please request a new one", httpx.ErrValidation)
	}
	if *user.EmailOTP != otp {
		return nil, "", fmt.Errorf("%w: invalid OTP", httpx.ErrValidation)
	}

	if err := s.repo.MarkVerified(ctx, user.ID); err != nil {
		return nil, "", err
	}
	user.EmailVerified = true
	user.EmailOTP = nil
	user.OTPExpiresAt = nil

	s.notifier.Push(ctx, notifications.CreateInput{
		UserID:  user.ID,
		Message: fmt.Sprintf("Welcome to Raama, %s! Your email has been verified successfully.", user.FirstName),
		Type:    notifications.TypeWelcome,
	})

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// ResendOTP regenerates and re-mails the verification code.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return fmt.Errorf("%w: email already verified", httpx.ErrValidation)
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.repo.SetOTP(ctx, user.ID, otp, s.now().UTC().Add(otpLifetime)); err != nil {
		return err
	}
	return s.mailer.EnqueueOTPEmail(ctx, user.Email, user.FirstName, otp)
}

// Login validates credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.Blocked {
		return nil, "", fmt.Errorf("%w: account is blocked", httpx.ErrForbidden)
	}
	if !user.EmailVerified {
		return nil, "", ErrEmailNotVerified
	}

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// AdminLogin additionally verifies the caller's individual admin secret.
func (s *Service) AdminLogin(ctx context.Context, email, password, adminSecret string) (*User, string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if user.Role != sessionauth.RoleAdmin {
		return nil, "", fmt.Errorf("%w: admin access required", httpx.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.AdminSecretHash == nil {
		return nil, "", fmt.Errorf("%w: admin secret not configured", httpx.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.AdminSecretHash), []byte(adminSecret)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid admin secret", httpx.ErrUnauthorized)
	}

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// ChangePassword rotates the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", httpx.ErrUnauthorized)
	}
	if ok, reason := secgate.ValidatePasswordStrength(newPassword); !ok {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, reason)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

// UsernameAvailable checks format rules and uniqueness.
func (s *Service) UsernameAvailable(ctx context.Context, username string) (bool, string, error) {
	if ok, reason := secgate.ValidateUsername(username); !ok {
		return false, reason, nil
	}
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, "Username already taken", nil
	}
	if errors.Is(err, httpx.ErrNotFound) {
		return true, "", nil
	}
	return false, "", err
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByRole lists users carrying the given role.
func (s *Service) ListByRole(ctx context.Context, role string) ([]User, error) {
	return s.repo.ListByRole(ctx, role)
}

// ChangeRole updates the role and moves role_changed_at forward, which
// invalidates every token issued to the user before this moment.
func (s *Service) ChangeRole(ctx context.Context, userID, newRole string) error {
	if !validRole(newRole) {
		return fmt.Errorf("%w: invalid role", httpx.ErrValidation)
	}
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.UpdateRole(ctx, userID, newRole, s.now().UTC()); err != nil {
		return err
	}
	s.notifier.Push(ctx, notifications.CreateInput{
		UserID:  userID,
		Message: fmt.Sprintf("Your role has been changed to %s by admin. Please log out and log back in to access new features.", newRole),
		Type:    notifications.TypeRoleChange,
	})
	return nil
}

// SetBlocked toggles the account block flag.
func (s *Service) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	return s.repo.SetBlocked(ctx, userID, blocked)
}

// CreateAdminInput carries the admin provisioning request.
type CreateAdminInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Username    string
	AdminSecret string
}

// CreateAdmin provisions a verified admin account with an individual
// secret. Only reachable behind the admin role gate.
func (s *Service) CreateAdmin(ctx context.Context, input CreateAdminInput) (*User, error) {
	if ok, reason := secgate.ValidatePasswordStrength(input.Password); !ok {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, reason)
	}
	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	secretHash, err := bcrypt.GenerateFromPassword([]byte(input.AdminSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash admin secret: %w", err)
	}
	secretHashStr := string(secretHash)

	user := User{
		ID:              uuid.NewString(),
		Email:           input.Email,
		FirstName:       secgate.SanitizeText(input.FirstName),
		LastName:        secgate.SanitizeText(input.LastName),
		Username:        input.Username,
		Role:            sessionauth.RoleAdmin,
		PasswordHash:    string(passwordHash),
		EmailVerified:   true,
		AdminSecretHash: &secretHashStr,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user account.
func (s *Service) Delete(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

// UpdateProfilePicture stores or clears the profile picture.
func (s *Service) UpdateProfilePicture(ctx context.Context, userID string, picture *string) error {
	return s.repo.UpdateProfilePicture(ctx, userID, picture)
}

// RoleCounts reports the number of users per role.
func (s *Service) RoleCounts(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByRole(ctx)
}

func validRole(role string) bool {
	switch role {
	case sessionauth.RoleReader, sessionauth.RoleWriter, sessionauth.RoleAdmin:
		return true
	}
	return false
}

func generateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("users: generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
