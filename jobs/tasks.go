package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeSendEmail delivers transactional mail over SMTP.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeNotifyFanout fans a new-shayari notification out to the
	// author's followers.
	TaskTypeNotifyFanout = "notify:fanout"
	// TaskTypeBroadcast delivers an admin announcement to every user.
	TaskTypeBroadcast = "notify:broadcast"
)

// SendEmailPayload describes one outbound mail.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NotifyFanoutPayload identifies the publish that triggers the fanout.
type NotifyFanoutPayload struct {
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	ShayariID  string `json:"shayariId"`
	Title      string `json:"title"`
}

// NewNotifyFanoutTask constructs an Asynq task.
func NewNotifyFanoutTask(payload NotifyFanoutPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNotifyFanout, data), nil
}

// BroadcastPayload carries an admin announcement.
type BroadcastPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewBroadcastTask constructs an Asynq task.
func NewBroadcastTask(payload BroadcastPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeBroadcast, data), nil
}
