// Package ai wraps the Gemini API for shayari enrichment. All calls go
// through a shared rate limiter so bursts of create or translate requests
// stay inside the provider quota.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("ai: client disabled")

// Analysis is the structured enrichment produced for a shayari.
type Analysis struct {
	Tags         []string          `json:"tags"`
	Themes       []string          `json:"themes"`
	Mood         string            `json:"mood"`
	Language     string            `json:"language"`
	QualityScore float64           `json:"qualityScore"`
	Summary      string            `json:"summary,omitempty"`
	Translations map[string]string `json:"translations,omitempty"`
}

// Config carries the Gemini connection settings.
type Config struct {
	APIKey string
	Model  string
	// RequestsPerMinute bounds outbound calls. Zero means 30.
	RequestsPerMinute int
}

// Client talks to Gemini. A nil *Client is a valid disabled client, which
// lets callers skip enrichment without nil checks at every site.
type Client struct {
	inner   *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewClient builds a Gemini client. An empty API key yields a disabled
// client and no error, so local setups run without credentials.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}

	inner, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("ai: create gemini client: %w", err)
	}
	return &Client{
		inner:   inner,
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
	}, nil
}

// Enabled reports whether the client can make calls.
func (c *Client) Enabled() bool { return c != nil && c.inner != nil }

const analyzePrompt = `You are a literary analyst for Hindi and Urdu poetry.
Analyze the following shayari and respond with ONLY a JSON object shaped as:
{"tags":["..."],"themes":["..."],"mood":"...","language":"hindi|urdu|english|mixed","qualityScore":0.0,"summary":"..."}
qualityScore is between 0 and 10. Tags are lowercase single words.

Title: %s
Content:
%s`

// AnalyzeShayari asks Gemini for tags, themes, mood and a quality score.
func (c *Client) AnalyzeShayari(ctx context.Context, title, content string) (*Analysis, error) {
	raw, err := c.generateJSON(ctx, fmt.Sprintf(analyzePrompt, title, content))
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("ai: decode analysis: %w", err)
	}
	if analysis.QualityScore < 0 {
		analysis.QualityScore = 0
	}
	if analysis.QualityScore > 10 {
		analysis.QualityScore = 10
	}
	return &analysis, nil
}

const translatePrompt = `Translate the following shayari into %s. Preserve the
poetic meter and imagery as closely as possible. Respond with ONLY a JSON
object shaped as {"translation":"..."}.

%s`

// Translate renders the shayari in the target language.
func (c *Client) Translate(ctx context.Context, content, targetLang string) (string, error) {
	raw, err := c.generateJSON(ctx, fmt.Sprintf(translatePrompt, targetLang, content))
	if err != nil {
		return "", err
	}

	var out struct {
		Translation string `json:"translation"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("ai: decode translation: %w", err)
	}
	if out.Translation == "" {
		return "", errors.New("ai: empty translation")
	}
	return out.Translation, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ai: rate limit wait: %w", err)
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(float32(0.2)),
	}

	resp, err := c.inner.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("ai: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("ai: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return []byte(strings.TrimSpace(text)), nil
}
