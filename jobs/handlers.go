package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/raama-app/raama/internal/mail"
	"github.com/raama-app/raama/internal/notifications"
)

// FollowerSource resolves the followers for a fanout.
type FollowerSource interface {
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// UserSource lists recipients for a broadcast.
type UserSource interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// Inbox creates notifications. Failures bubble so Asynq retries.
type Inbox interface {
	Create(ctx context.Context, input notifications.CreateInput) (*notifications.Notification, error)
}

// SendEmailJob delivers queued mail over SMTP.
type SendEmailJob struct {
	Sender *mail.Sender
	Logger *slog.Logger
}

// Handle processes TaskTypeSendEmail tasks.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sender == nil {
		return errors.New("send email: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := j.Sender.Send(payload.To, payload.Subject, payload.Body); err != nil {
		j.Logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	j.Logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}

// NotifyFanoutJob notifies every follower of a freshly published shayari.
type NotifyFanoutJob struct {
	Followers FollowerSource
	Inbox     Inbox
	Logger    *slog.Logger
}

// Handle processes TaskTypeNotifyFanout tasks.
func (j *NotifyFanoutJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Followers == nil || j.Inbox == nil {
		return errors.New("notify fanout: handler not configured")
	}
	var payload NotifyFanoutPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	followerIDs, err := j.Followers.FollowerIDs(ctx, payload.AuthorID)
	if err != nil {
		return fmt.Errorf("fanout followers: %w", err)
	}

	failed := 0
	for _, followerID := range followerIDs {
		_, err := j.Inbox.Create(ctx, notifications.CreateInput{
			UserID:       followerID,
			SenderID:     payload.AuthorID,
			SenderName:   payload.AuthorName,
			Message:      fmt.Sprintf("%s published a new shayari: \"%s\"", payload.AuthorName, payload.Title),
			Type:         notifications.TypeNewShayari,
			ShayariID:    payload.ShayariID,
			ShayariTitle: payload.Title,
		})
		if err != nil {
			failed++
			j.Logger.Error("fanout notification", slog.String("follower", followerID), slog.Any("error", err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("fanout: %d of %d notifications failed", failed, len(followerIDs))
	}
	j.Logger.Info("fanout complete",
		slog.String("shayari", payload.ShayariID),
		slog.Int("followers", len(followerIDs)))
	return nil
}

// BroadcastJob delivers an admin announcement to every user.
type BroadcastJob struct {
	Users  UserSource
	Inbox  Inbox
	Logger *slog.Logger
}

// Handle processes TaskTypeBroadcast tasks.
func (j *BroadcastJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Users == nil || j.Inbox == nil {
		return errors.New("broadcast: handler not configured")
	}
	var payload BroadcastPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	userIDs, err := j.Users.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("broadcast recipients: %w", err)
	}

	failed := 0
	for _, userID := range userIDs {
		_, err := j.Inbox.Create(ctx, notifications.CreateInput{
			UserID:  userID,
			Message: payload.Message,
			Type:    notifications.TypeBroadcast,
			Title:   payload.Title,
		})
		if err != nil {
			failed++
			j.Logger.Error("broadcast notification", slog.String("user", userID), slog.Any("error", err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("broadcast: %d of %d notifications failed", failed, len(userIDs))
	}
	j.Logger.Info("broadcast complete", slog.Int("recipients", len(userIDs)))
	return nil
}
