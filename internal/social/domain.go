// Package social maintains the follower graph.
package social

import "time"

// FollowProfile is the public view of a user on follower lists.
type FollowProfile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	FollowedAt     time.Time `json:"followedAt"`
}
