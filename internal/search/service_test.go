package search

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/shayaris"
)

type memorySearchRepo struct {
	catalog []shayaris.Shayari
	history map[string][]HistoryEntry
}

func newMemorySearchRepo(catalog ...shayaris.Shayari) *memorySearchRepo {
	return &memorySearchRepo{catalog: catalog, history: map[string][]HistoryEntry{}}
}

func (m *memorySearchRepo) SearchShayaris(_ context.Context, query, author, tag string, limit int) ([]shayaris.Shayari, error) {
	q := strings.ToLower(query)
	var out []shayaris.Shayari
	for _, s := range m.catalog {
		if author != "" && s.AuthorUsername != author {
			continue
		}
		if tag != "" && !contains(s.Tags, tag) {
			continue
		}
		if strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(s.Content), q) ||
			strings.Contains(strings.ToLower(s.AuthorName), q) {
			out = append(out, s)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func (m *memorySearchRepo) RecordQuery(_ context.Context, userID, query string, at time.Time) error {
	m.history[userID] = append([]HistoryEntry{{Query: query, SearchedAt: at}}, m.history[userID]...)
	return nil
}

func (m *memorySearchRepo) History(_ context.Context, userID string, limit int) ([]HistoryEntry, error) {
	entries := m.history[userID]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *memorySearchRepo) ClearHistory(_ context.Context, userID string) error {
	delete(m.history, userID)
	return nil
}

func (m *memorySearchRepo) PopularQueries(_ context.Context, _ time.Time, limit int) ([]string, error) {
	counts := map[string]int{}
	for _, entries := range m.history {
		for _, e := range entries {
			counts[e.Query]++
		}
	}
	var out []string
	for q := range counts {
		out = append(out, q)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memorySearchRepo) PopularTags(_ context.Context, limit int) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range m.catalog {
		for _, t := range s.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func newSearchTestService() *Service {
	repo := newMemorySearchRepo(
		shayaris.Shayari{ID: "1", Title: "Shaam ka manzar", Content: "dhalti shaam", AuthorUsername: "mira_rao", Tags: []string{"shaam"}},
		shayaris.Shayari{ID: "2", Title: "Subah", Content: "nayi subah", AuthorUsername: "arjun_s", Tags: []string{"umeed"}},
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo)
}

func TestSearchRecordsHistory(t *testing.T) {
	svc := newSearchTestService()

	results, err := svc.Search(context.Background(), "arjun", "shaam", "", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)

	history, err := svc.History(context.Background(), "arjun")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "shaam", history[0].Query)

	require.NoError(t, svc.ClearHistory(context.Background(), "arjun"))
	history, err = svc.History(context.Background(), "arjun")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSearchFilters(t *testing.T) {
	svc := newSearchTestService()

	results, err := svc.Search(context.Background(), "arjun", "a", "mira_rao", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mira_rao", results[0].AuthorUsername)

	results, err = svc.Search(context.Background(), "arjun", "a", "", "umeed")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].ID)
}

func TestSearchRequiresQuery(t *testing.T) {
	svc := newSearchTestService()
	_, err := svc.Search(context.Background(), "arjun", "   ", "", "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSuggestions(t *testing.T) {
	svc := newSearchTestService()

	_, err := svc.Search(context.Background(), "arjun", "shaam", "", "")
	require.NoError(t, err)

	suggestions, err := svc.Suggest(context.Background())
	require.NoError(t, err)
	assert.Contains(t, suggestions.PopularQueries, "shaam")
	assert.Contains(t, suggestions.PopularTags, "shaam")
}
