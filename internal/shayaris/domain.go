// Package shayaris manages the published poetry catalog: creation with AI
// enrichment, engagement counters, curation and discovery.
package shayaris

import (
	"encoding/json"
	"time"
)

// Shayari is a published piece with denormalized author info and
// engagement counters.
type Shayari struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	AuthorID       string          `json:"authorId"`
	AuthorName     string          `json:"authorName"`
	AuthorUsername string          `json:"authorUsername"`
	Tags           []string        `json:"tags"`
	Likes          int             `json:"likes"`
	LikedBy        []string        `json:"likedBy,omitempty"`
	Shares         int             `json:"shares"`
	Views          int             `json:"views"`
	Featured       bool            `json:"featured"`
	AIProcessed    bool            `json:"aiProcessed"`
	QualityScore   *float64        `json:"qualityScore,omitempty"`
	Analysis       json.RawMessage `json:"analysis,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// LikedByUser reports whether the given user already liked this shayari.
func (s *Shayari) LikedByUser(userID string) bool {
	for _, id := range s.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// CreateInput carries a new shayari submission.
type CreateInput struct {
	Title   string
	Content string
	Tags    []string
}

// TrendingScore weights engagement the way the discovery feed ranks it.
func (s *Shayari) TrendingScore() int {
	return s.Likes*3 + s.Shares*5 + s.Views
}

// View milestones that raise a notification for the author.
var viewMilestones = []int{100, 500, 1000}

// CrossedMilestone returns the milestone hit at exactly this view count,
// or zero.
func CrossedMilestone(views int) int {
	for _, m := range viewMilestones {
		if views == m {
			return m
		}
	}
	return 0
}
