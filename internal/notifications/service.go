package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RepositoryPort defines data access methods for notifications.
type RepositoryPort interface {
	Insert(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
}

// Service handles notification creation and delivery. New notifications
// are persisted and published to the user's live stream channel.
type Service struct {
	repo   RepositoryPort
	redis  *redis.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service instance. The redis client may be nil, in
// which case live streaming is skipped.
func NewService(repo RepositoryPort, redisClient *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, redis: redisClient, logger: logger, now: time.Now}
}

// StreamChannel names the pub/sub channel for one user's live stream.
func StreamChannel(userID string) string {
	return "notify:user:" + userID
}

// Create persists a notification and publishes it to the live stream.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Notification, error) {
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Message:   input.Message,
		Type:      input.Type,
		CreatedAt: s.now().UTC(),
	}
	if input.SenderID != "" {
		n.SenderID = &input.SenderID
	}
	if input.SenderName != "" {
		n.SenderName = &input.SenderName
	}
	if input.ShayariID != "" {
		n.ShayariID = &input.ShayariID
	}
	if input.ShayariTitle != "" {
		n.ShayariTitle = &input.ShayariTitle
	}
	if input.Title != "" {
		n.Title = &input.Title
	}
	if input.ViewCount > 0 {
		n.ViewCount = &input.ViewCount
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, err
	}
	s.publish(ctx, n)
	return &n, nil
}

// Push is the best-effort variant used by side-effect producers: a failed
// notification never fails the operation that triggered it.
func (s *Service) Push(ctx context.Context, input CreateInput) {
	if _, err := s.Create(ctx, input); err != nil && s.logger != nil {
		s.logger.Error("create notification",
			slog.String("type", input.Type),
			slog.String("user", input.UserID),
			slog.Any("error", err))
	}
}

func (s *Service) publish(ctx context.Context, n Notification) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := s.redis.Publish(ctx, StreamChannel(n.UserID), payload).Err(); err != nil && s.logger != nil {
		s.logger.Warn("publish notification", slog.Any("error", err))
	}
}

// List returns the user's newest notifications.
func (s *Service) List(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

// UnreadCount reports the user's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one of the user's notifications.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

// TitleFor maps a notification type to its display title.
func TitleFor(notificationType string) string {
	switch notificationType {
	case TypeLike:
		return "New Like"
	case TypeFollow:
		return "New Follower"
	case TypeNewShayari:
		return "New Shayari"
	case TypeFeature:
		return "Shayari Featured"
	case TypeViewMilestone:
		return "View Milestone"
	case TypeRoleChange:
		return "Role Updated"
	case TypeWriterRequest:
		return "Writer Request"
	case TypeBroadcast:
		return "Announcement"
	default:
		return "Notification"
	}
}
