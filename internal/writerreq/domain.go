// Package writerreq processes reader requests for the writer role.
// Approval flows through the users service so the role change stamps
// role_changed_at and invalidates outstanding sessions.
package writerreq

import "time"

// Request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is one reader's application for the writer role.
type Request struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	UserName   string     `json:"userName"`
	UserEmail  string     `json:"userEmail"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy *string    `json:"reviewedBy,omitempty"`
}
