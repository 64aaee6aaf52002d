package shayaris

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/raama-app/raama/internal/ai"
	"github.com/raama-app/raama/internal/notifications"
	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/secgate"
	"github.com/raama-app/raama/internal/sessionauth"
)

const (
	listCap          = 100
	trendingCap      = 10
	trendingWindow   = 7 * 24 * time.Hour
	trendingCacheKey = "cache:trending"
	trendingCacheTTL = 5 * time.Minute
)

// RepositoryPort defines data access methods for shayaris.
type RepositoryPort interface {
	Insert(ctx context.Context, s Shayari) error
	Get(ctx context.Context, id string) (*Shayari, error)
	ListAll(ctx context.Context, limit int) ([]Shayari, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Shayari, error)
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, id, userID string) error
	RemoveLike(ctx context.Context, id, userID string) error
	IncrementShares(ctx context.Context, id string) (int, error)
	IncrementViews(ctx context.Context, id string) (int, error)
	SetFeatured(ctx context.Context, id string, featured bool) error
	ListFeatured(ctx context.Context) ([]Shayari, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]Shayari, error)
	Random(ctx context.Context) (*Shayari, error)
	SetAnalysis(ctx context.Context, id string, tags []string, score *float64, analysis json.RawMessage, processed bool) error
}

// Enricher is the AI collaborator used for analysis and translation.
type Enricher interface {
	Enabled() bool
	AnalyzeShayari(ctx context.Context, title, content string) (*ai.Analysis, error)
	Translate(ctx context.Context, content, targetLang string) (string, error)
}

// Notifier raises in-app notifications.
type Notifier interface {
	Push(ctx context.Context, input notifications.CreateInput)
}

// Fanout queues the follower fanout after a publish.
type Fanout interface {
	EnqueueNewShayariFanout(ctx context.Context, authorID, authorName, shayariID, title string) error
}

// Service handles catalog business logic.
type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	redis    *redis.Client
	enricher Enricher
	notifier Notifier
	fanout   Fanout
	now      func() time.Time

	trendingGroup singleflight.Group
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, repo RepositoryPort, rdb *redis.Client, enricher Enricher, notifier Notifier, fanout Fanout) *Service {
	return &Service{
		logger:   logger,
		repo:     repo,
		redis:    rdb,
		enricher: enricher,
		notifier: notifier,
		fanout:   fanout,
		now:      time.Now,
	}
}

// Create publishes a new shayari for the author. AI enrichment runs inline
// but its failure never fails the publish.
func (s *Service) Create(ctx context.Context, author *sessionauth.Identity, input CreateInput) (*Shayari, error) {
	title := secgate.SanitizeText(input.Title)
	content := secgate.SanitizeText(input.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", httpx.ErrValidation)
	}

	shayari := Shayari{
		ID:             uuid.NewString(),
		Title:          title,
		Content:        content,
		AuthorID:       author.ID,
		AuthorName:     author.DisplayName,
		AuthorUsername: author.Username,
		Tags:           normalizeTags(input.Tags),
		CreatedAt:      s.now().UTC(),
	}

	if s.enricher != nil && s.enricher.Enabled() {
		analysis, err := s.enricher.AnalyzeShayari(ctx, title, content)
		if err != nil {
			s.logger.Warn("ai analysis failed, publishing without enrichment",
				slog.String("author", author.ID), slog.Any("error", err))
		} else {
			s.applyAnalysis(&shayari, analysis)
		}
	}

	if err := s.repo.Insert(ctx, shayari); err != nil {
		return nil, err
	}

	if s.fanout != nil {
		if err := s.fanout.EnqueueNewShayariFanout(ctx, author.ID, author.DisplayName, shayari.ID, shayari.Title); err != nil {
			s.logger.Error("queue follower fanout", slog.String("shayari", shayari.ID), slog.Any("error", err))
		}
	}
	return &shayari, nil
}

func (s *Service) applyAnalysis(shayari *Shayari, analysis *ai.Analysis) {
	raw, err := json.Marshal(analysis)
	if err != nil {
		s.logger.Error("encode analysis", slog.Any("error", err))
		return
	}
	shayari.Tags = mergeTags(shayari.Tags, analysis.Tags)
	score := analysis.QualityScore
	shayari.QualityScore = &score
	shayari.Analysis = raw
	shayari.AIProcessed = true
}

// List returns the newest shayaris.
func (s *Service) List(ctx context.Context) ([]Shayari, error) {
	return s.repo.ListAll(ctx, listCap)
}

// ByAuthor returns one author's shayaris.
func (s *Service) ByAuthor(ctx context.Context, authorID string) ([]Shayari, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

// Get fetches a shayari by id.
func (s *Service) Get(ctx context.Context, id string) (*Shayari, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a shayari. Only the author or an admin may delete.
func (s *Service) Delete(ctx context.Context, id string, requester *sessionauth.Identity) error {
	shayari, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if shayari.AuthorID != requester.ID && requester.Role != sessionauth.RoleAdmin {
		return fmt.Errorf("%w: only the author can delete this shayari", httpx.ErrForbidden)
	}
	return s.repo.Delete(ctx, id)
}

// Like records a like and notifies the author.
func (s *Service) Like(ctx context.Context, id string, liker *sessionauth.Identity) error {
	shayari, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.AddLike(ctx, id, liker.ID); err != nil {
		return err
	}
	if shayari.AuthorID != liker.ID {
		s.notifier.Push(ctx, notifications.CreateInput{
			UserID:       shayari.AuthorID,
			SenderID:     liker.ID,
			SenderName:   liker.DisplayName,
			Message:      fmt.Sprintf("%s liked your shayari \"%s\"", liker.DisplayName, shayari.Title),
			Type:         notifications.TypeLike,
			ShayariID:    shayari.ID,
			ShayariTitle: shayari.Title,
		})
	}
	return nil
}

// Unlike removes a like.
func (s *Service) Unlike(ctx context.Context, id string, userID string) error {
	return s.repo.RemoveLike(ctx, id, userID)
}

// Share bumps the share counter and notifies the author.
func (s *Service) Share(ctx context.Context, id string, sharer *sessionauth.Identity) (int, error) {
	shayari, err := s.repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	shares, err := s.repo.IncrementShares(ctx, id)
	if err != nil {
		return 0, err
	}
	if shayari.AuthorID != sharer.ID {
		s.notifier.Push(ctx, notifications.CreateInput{
			UserID:       shayari.AuthorID,
			SenderID:     sharer.ID,
			SenderName:   sharer.DisplayName,
			Message:      fmt.Sprintf("%s shared your shayari \"%s\"", sharer.DisplayName, shayari.Title),
			Type:         notifications.TypeNewShayari,
			ShayariID:    shayari.ID,
			ShayariTitle: shayari.Title,
		})
	}
	return shares, nil
}

// View bumps the view counter. Crossing a milestone notifies the author.
func (s *Service) View(ctx context.Context, id string) (int, error) {
	views, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return 0, err
	}
	if milestone := CrossedMilestone(views); milestone > 0 {
		shayari, err := s.repo.Get(ctx, id)
		if err != nil {
			s.logger.Error("load shayari for milestone", slog.String("shayari", id), slog.Any("error", err))
			return views, nil
		}
		s.notifier.Push(ctx, notifications.CreateInput{
			UserID:       shayari.AuthorID,
			Message:      fmt.Sprintf("Your shayari \"%s\" reached %d views!", shayari.Title, milestone),
			Type:         notifications.TypeViewMilestone,
			ShayariID:    shayari.ID,
			ShayariTitle: shayari.Title,
			ViewCount:    views,
		})
	}
	return views, nil
}

// Featured returns curated shayaris.
func (s *Service) Featured(ctx context.Context) ([]Shayari, error) {
	return s.repo.ListFeatured(ctx)
}

// Trending returns the weighted engagement ranking over the last week.
// The result is cached in redis for a few minutes.
func (s *Service) Trending(ctx context.Context) ([]Shayari, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, trendingCacheKey).Bytes()
		if err == nil {
			var list []Shayari
			if err := json.Unmarshal(cached, &list); err == nil {
				return list, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("trending cache read", slog.Any("error", err))
		}
	}

	// Collapse concurrent rebuilds into one repository query.
	result, err, _ := s.trendingGroup.Do(trendingCacheKey, func() (any, error) {
		list, err := s.repo.Trending(ctx, s.now().Add(-trendingWindow), trendingCap)
		if err != nil {
			return nil, err
		}
		if s.redis != nil {
			if raw, err := json.Marshal(list); err == nil {
				if err := s.redis.Set(ctx, trendingCacheKey, raw, trendingCacheTTL).Err(); err != nil {
					s.logger.Warn("trending cache write", slog.Any("error", err))
				}
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Shayari), nil
}

// Random picks one shayari for the discovery widget.
func (s *Service) Random(ctx context.Context) (*Shayari, error) {
	return s.repo.Random(ctx)
}

// SetFeatured toggles curation. Featuring notifies the author.
func (s *Service) SetFeatured(ctx context.Context, id string, featured bool) error {
	shayari, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetFeatured(ctx, id, featured); err != nil {
		return err
	}
	if featured {
		s.notifier.Push(ctx, notifications.CreateInput{
			UserID:       shayari.AuthorID,
			Message:      fmt.Sprintf("Your shayari \"%s\" has been featured!", shayari.Title),
			Type:         notifications.TypeFeature,
			ShayariID:    shayari.ID,
			ShayariTitle: shayari.Title,
		})
	}
	return nil
}

// Analyze re-runs AI enrichment on an existing shayari.
func (s *Service) Analyze(ctx context.Context, id string, requester *sessionauth.Identity) (*ai.Analysis, error) {
	shayari, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if shayari.AuthorID != requester.ID && requester.Role != sessionauth.RoleAdmin {
		return nil, fmt.Errorf("%w: only the author can analyze this shayari", httpx.ErrForbidden)
	}
	if s.enricher == nil || !s.enricher.Enabled() {
		return nil, fmt.Errorf("%w: AI analysis is not available", httpx.ErrValidation)
	}

	analysis, err := s.enricher.AnalyzeShayari(ctx, shayari.Title, shayari.Content)
	if err != nil {
		return nil, fmt.Errorf("shayaris: analyze: %w", err)
	}

	raw, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("shayaris: encode analysis: %w", err)
	}
	tags := mergeTags(shayari.Tags, analysis.Tags)
	score := analysis.QualityScore
	if err := s.repo.SetAnalysis(ctx, id, tags, &score, raw, true); err != nil {
		return nil, err
	}
	return analysis, nil
}

// StoredAnalysis returns the enrichment saved at publish or analyze time.
func (s *Service) StoredAnalysis(ctx context.Context, id string) (json.RawMessage, error) {
	shayari, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if shayari.Analysis == nil {
		return nil, fmt.Errorf("%w: no analysis available", httpx.ErrNotFound)
	}
	return shayari.Analysis, nil
}

// Translate renders the shayari in the target language via the AI
// collaborator. Nothing is persisted.
func (s *Service) Translate(ctx context.Context, id, targetLang string) (string, error) {
	if s.enricher == nil || !s.enricher.Enabled() {
		return "", fmt.Errorf("%w: translation is not available", httpx.ErrValidation)
	}
	shayari, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	translated, err := s.enricher.Translate(ctx, shayari.Content, targetLang)
	if err != nil {
		return "", fmt.Errorf("shayaris: translate: %w", err)
	}
	return translated, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(secgate.SanitizeText(tag)))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func mergeTags(own, suggested []string) []string {
	return normalizeTags(append(append([]string{}, own...), suggested...))
}
