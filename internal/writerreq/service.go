package writerreq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raama-app/raama/internal/notifications"
	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/secgate"
	"github.com/raama-app/raama/internal/sessionauth"
)

// RepositoryPort defines data access methods for writer requests.
type RepositoryPort interface {
	Insert(ctx context.Context, req Request) error
	Get(ctx context.Context, id string) (*Request, error)
	PendingByUser(ctx context.Context, userID string) (*Request, error)
	List(ctx context.Context, status string) ([]Request, error)
	SetStatus(ctx context.Context, id, status, reviewerID string, at time.Time) error
	CountPending(ctx context.Context) (int, error)
}

// RoleChanger promotes a user. The implementation stamps role_changed_at,
// which invalidates the user's outstanding tokens.
type RoleChanger interface {
	ChangeRole(ctx context.Context, userID, newRole string) error
}

// Notifier raises in-app notifications.
type Notifier interface {
	Push(ctx context.Context, input notifications.CreateInput)
}

// Service handles writer request business logic.
type Service struct {
	repo     RepositoryPort
	roles    RoleChanger
	notifier Notifier
	now      func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, roles RoleChanger, notifier Notifier) *Service {
	return &Service{repo: repo, roles: roles, notifier: notifier, now: time.Now}
}

// Create opens a request. Only readers apply, and only one pending
// request per user is allowed.
func (s *Service) Create(ctx context.Context, applicant *sessionauth.Identity, reason string) (*Request, error) {
	if applicant.Role != sessionauth.RoleReader {
		return nil, fmt.Errorf("%w: only readers can request the writer role", httpx.ErrValidation)
	}
	reason = secgate.SanitizeText(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required", httpx.ErrValidation)
	}

	if _, err := s.repo.PendingByUser(ctx, applicant.ID); err == nil {
		return nil, fmt.Errorf("%w: you already have a pending request", httpx.ErrDuplicate)
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return nil, err
	}

	request := Request{
		ID:        uuid.NewString(),
		UserID:    applicant.ID,
		UserName:  applicant.DisplayName,
		UserEmail: applicant.Email,
		Reason:    reason,
		Status:    StatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, request); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns requests for admin review.
func (s *Service) List(ctx context.Context, status string) ([]Request, error) {
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, fmt.Errorf("%w: unknown status filter", httpx.ErrValidation)
	}
	return s.repo.List(ctx, status)
}

// Approve promotes the requester to writer and notifies them.
func (s *Service) Approve(ctx context.Context, requestID string, reviewer *sessionauth.Identity) error {
	request, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, requestID, StatusApproved, reviewer.ID, s.now().UTC()); err != nil {
		return err
	}
	if err := s.roles.ChangeRole(ctx, request.UserID, sessionauth.RoleWriter); err != nil {
		return err
	}

	s.notifier.Push(ctx, notifications.CreateInput{
		UserID:  request.UserID,
		Message: "Congratulations! Your writer request has been approved. Log in again to start publishing.",
		Type:    notifications.TypeWriterRequest,
	})
	return nil
}

// Reject closes the request and notifies the requester.
func (s *Service) Reject(ctx context.Context, requestID string, reviewer *sessionauth.Identity) error {
	request, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, requestID, StatusRejected, reviewer.ID, s.now().UTC()); err != nil {
		return err
	}

	s.notifier.Push(ctx, notifications.CreateInput{
		UserID:  request.UserID,
		Message: "Your writer request was not approved this time. You can apply again later.",
		Type:    notifications.TypeWriterRequest,
	})
	return nil
}

// MyRequest returns the caller's pending request, if any.
func (s *Service) MyRequest(ctx context.Context, userID string) (*Request, error) {
	return s.repo.PendingByUser(ctx, userID)
}

// CountPending reports the admin dashboard counter.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}
