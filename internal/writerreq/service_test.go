package writerreq

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raama-app/raama/internal/notifications"
	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

type memoryRequestRepo struct {
	items map[string]*Request
}

func newMemoryRequestRepo() *memoryRequestRepo {
	return &memoryRequestRepo{items: map[string]*Request{}}
}

func (m *memoryRequestRepo) Insert(_ context.Context, req Request) error {
	m.items[req.ID] = &req
	return nil
}

func (m *memoryRequestRepo) Get(_ context.Context, id string) (*Request, error) {
	req, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: writer request", httpx.ErrNotFound)
	}
	copied := *req
	return &copied, nil
}

func (m *memoryRequestRepo) PendingByUser(_ context.Context, userID string) (*Request, error) {
	for _, req := range m.items {
		if req.UserID == userID && req.Status == StatusPending {
			copied := *req
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: writer request", httpx.ErrNotFound)
}

func (m *memoryRequestRepo) List(_ context.Context, status string) ([]Request, error) {
	var out []Request
	for _, req := range m.items {
		if status == "" || req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memoryRequestRepo) SetStatus(_ context.Context, id, status, reviewerID string, at time.Time) error {
	req, ok := m.items[id]
	if !ok || req.Status != StatusPending {
		return fmt.Errorf("%w: request already reviewed or missing", httpx.ErrDuplicate)
	}
	req.Status = status
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &at
	return nil
}

func (m *memoryRequestRepo) CountPending(_ context.Context) (int, error) {
	count := 0
	for _, req := range m.items {
		if req.Status == StatusPending {
			count++
		}
	}
	return count, nil
}

type recordingRoleChanger struct {
	changes map[string]string
}

func (r *recordingRoleChanger) ChangeRole(_ context.Context, userID, newRole string) error {
	r.changes[userID] = newRole
	return nil
}

type recordingNotifier struct {
	pushed []notifications.CreateInput
}

func (r *recordingNotifier) Push(_ context.Context, input notifications.CreateInput) {
	r.pushed = append(r.pushed, input)
}

func reader() *sessionauth.Identity {
	return &sessionauth.Identity{
		ID:          "arjun",
		Email:       "arjun@example.com",
		DisplayName: "Arjun Syal",
		Role:        sessionauth.RoleReader,
	}
}

func admin() *sessionauth.Identity {
	return &sessionauth.Identity{ID: "root", Role: sessionauth.RoleAdmin}
}

func newWriterReqTestService() (*Service, *recordingRoleChanger, *recordingNotifier) {
	roles := &recordingRoleChanger{changes: map[string]string{}}
	notifier := &recordingNotifier{}
	return NewService(newMemoryRequestRepo(), roles, notifier), roles, notifier
}

func TestCreateOnePendingPerUser(t *testing.T) {
	svc, _, _ := newWriterReqTestService()

	request, err := svc.Create(context.Background(), reader(), "I write ghazals")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, request.Status)

	_, err = svc.Create(context.Background(), reader(), "again")
	assert.ErrorIs(t, err, httpx.ErrDuplicate)

	pending, err := svc.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestCreateRejectsNonReaders(t *testing.T) {
	svc, _, _ := newWriterReqTestService()

	writer := reader()
	writer.Role = sessionauth.RoleWriter
	_, err := svc.Create(context.Background(), writer, "promote me more")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestApprovePromotesAndNotifies(t *testing.T) {
	svc, roles, notifier := newWriterReqTestService()

	request, err := svc.Create(context.Background(), reader(), "I write ghazals")
	require.NoError(t, err)

	require.NoError(t, svc.Approve(context.Background(), request.ID, admin()))

	assert.Equal(t, sessionauth.RoleWriter, roles.changes["arjun"])
	require.Len(t, notifier.pushed, 1)
	assert.Equal(t, notifications.TypeWriterRequest, notifier.pushed[0].Type)
	assert.Equal(t, "arjun", notifier.pushed[0].UserID)

	// A reviewed request cannot be approved again.
	err = svc.Approve(context.Background(), request.ID, admin())
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestRejectLeavesRoleUntouched(t *testing.T) {
	svc, roles, notifier := newWriterReqTestService()

	request, err := svc.Create(context.Background(), reader(), "I write ghazals")
	require.NoError(t, err)

	require.NoError(t, svc.Reject(context.Background(), request.ID, admin()))

	assert.Empty(t, roles.changes)
	require.Len(t, notifier.pushed, 1)

	pending, err := svc.CountPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pending)
}
