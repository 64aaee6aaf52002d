package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/secgate"
	"github.com/raama-app/raama/internal/shayaris"
)

const (
	resultCap        = 50
	historyCap       = 20
	suggestionCap    = 5
	suggestionWindow = 7 * 24 * time.Hour
)

// HistoryEntry is one recorded search.
type HistoryEntry struct {
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searchedAt"`
}

// Suggestions groups the suggestion feeds.
type Suggestions struct {
	PopularQueries []string `json:"popularQueries"`
	PopularTags    []string `json:"popularTags"`
}

// RepositoryPort defines data access methods for search.
type RepositoryPort interface {
	SearchShayaris(ctx context.Context, query, author, tag string, limit int) ([]shayaris.Shayari, error)
	RecordQuery(ctx context.Context, userID, query string, at time.Time) error
	History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error)
	ClearHistory(ctx context.Context, userID string) error
	PopularQueries(ctx context.Context, since time.Time, limit int) ([]string, error)
	PopularTags(ctx context.Context, limit int) ([]string, error)
}

// Service handles search business logic.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	now    func() time.Time
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort) *Service {
	return &Service{logger: logger, repo: repo, now: time.Now}
}

// Search runs the query and records it in the caller's history. A history
// write failure never fails the search.
func (s *Service) Search(ctx context.Context, userID, query, author, tag string) ([]shayaris.Shayari, error) {
	query = strings.TrimSpace(secgate.SanitizeText(query))
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", httpx.ErrValidation)
	}

	results, err := s.repo.SearchShayaris(ctx, query, author, tag, resultCap)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RecordQuery(ctx, userID, query, s.now().UTC()); err != nil {
		s.logger.Warn("record search query", slog.String("user", userID), slog.Any("error", err))
	}
	return results, nil
}

// History returns the caller's recent queries.
func (s *Service) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	return s.repo.History(ctx, userID, historyCap)
}

// ClearHistory wipes the caller's search history.
func (s *Service) ClearHistory(ctx context.Context, userID string) error {
	return s.repo.ClearHistory(ctx, userID)
}

// Suggest returns popular recent queries and catalog tags.
func (s *Service) Suggest(ctx context.Context) (*Suggestions, error) {
	queries, err := s.repo.PopularQueries(ctx, s.now().Add(-suggestionWindow), suggestionCap)
	if err != nil {
		return nil, err
	}
	tags, err := s.repo.PopularTags(ctx, suggestionCap)
	if err != nil {
		return nil, err
	}
	if queries == nil {
		queries = []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	return &Suggestions{PopularQueries: queries, PopularTags: tags}, nil
}
