// Package collections lets users curate named sets of shayaris.
package collections

import "time"

// Collection is a user-curated set of shayaris.
type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatorID   string    `json:"creatorId"`
	CreatorName string    `json:"creatorName"`
	IsPublic    bool      `json:"isPublic"`
	ShayariIDs  []string  `json:"shayariIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Contains reports membership of a shayari.
func (c *Collection) Contains(shayariID string) bool {
	for _, id := range c.ShayariIDs {
		if id == shayariID {
			return true
		}
	}
	return false
}

// CreateInput carries a new collection request.
type CreateInput struct {
	Name        string
	Description string
	IsPublic    bool
}
