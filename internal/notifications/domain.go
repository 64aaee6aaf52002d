package notifications

import "time"

// Known notification types. The column is free-form text; these constants
// cover every producer in this codebase.
const (
	TypeWelcome       = "welcome"
	TypeVerification  = "verification"
	TypeRoleChange    = "role_change"
	TypeLike          = "like"
	TypeFollow        = "follow"
	TypeNewShayari    = "new_shayari"
	TypeFeature       = "feature"
	TypeViewMilestone = "view_milestone"
	TypeWriterRequest = "writer_request"
	TypeBroadcast     = "broadcast"
)

// Notification is a message delivered to one user's inbox.
type Notification struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	SenderID     *string    `json:"senderId,omitempty"`
	SenderName   *string    `json:"senderName,omitempty"`
	Message      string     `json:"message"`
	Type         string     `json:"type"`
	ShayariID    *string    `json:"shayariId,omitempty"`
	ShayariTitle *string    `json:"shayariTitle,omitempty"`
	Title        *string    `json:"title,omitempty"`
	ViewCount    *int       `json:"viewCount,omitempty"`
	IsRead       bool       `json:"isRead"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// CreateInput carries the fields producers set when raising a notification.
type CreateInput struct {
	UserID       string
	SenderID     string
	SenderName   string
	Message      string
	Type         string
	ShayariID    string
	ShayariTitle string
	Title        string
	ViewCount    int
}
