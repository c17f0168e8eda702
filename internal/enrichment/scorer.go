// Package enrichment scores leads with an LLM, falling back to a
// deterministic heuristic when the model is unavailable or returns
// garbage.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"leadflow-api/internal/domain"
)

// CompletionClient is the subset of the OpenAI client the scorer needs.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LeadInsight is the scoring result returned to callers.
type LeadInsight struct {
	Score       int    `json:"score"`
	Temperature string `json:"temperature"`
	Reasoning   string `json:"reasoning"`
	NextAction  string `json:"nextAction"`

	// Source is "model" when the insight came from the completion API,
	// "fallback" when derived from the engagement heuristic.
	Source string `json:"source"`
}

// Config holds scorer settings.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultConfig returns settings tuned for short factual scoring calls.
func DefaultConfig(model string) Config {
	if model == "" {
		model = openai.GPT4oMini
	}
	return Config{
		Model:       model,
		Temperature: 0.2,
		MaxTokens:   500,
		Timeout:     30 * time.Second,
	}
}

// LeadScorer scores leads via chat completions. A nil client disables
// the integration and every call takes the fallback path.
type LeadScorer struct {
	client CompletionClient
	config Config
}

// NewLeadScorer creates a scorer. client may be nil.
func NewLeadScorer(client CompletionClient, config Config) *LeadScorer {
	return &LeadScorer{client: client, config: config}
}

// ScoreLead asks the model for an insight and falls back to the
// engagement heuristic on any failure. The returned error is only
// non-nil when even the fallback cannot be built, which never happens
// today; callers can rely on a usable insight.
func (s *LeadScorer) ScoreLead(ctx context.Context, lead *domain.Lead, engagement domain.EngagementScore, activities []domain.Activity) (*LeadInsight, error) {
	if s.client == nil {
		return s.fallback(engagement), nil
	}

	apiCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: scoringSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildScoringPrompt(lead, engagement, activities),
			},
		},
	})
	if err != nil {
		return s.fallback(engagement), nil
	}
	if len(resp.Choices) == 0 {
		return s.fallback(engagement), nil
	}

	insight, err := parseInsight(resp.Choices[0].Message.Content)
	if err != nil {
		return s.fallback(engagement), nil
	}
	insight.Source = "model"
	return insight, nil
}

// parseInsight validates the model output against the expected contract.
func parseInsight(raw string) (*LeadInsight, error) {
	var insight LeadInsight
	if err := json.Unmarshal([]byte(raw), &insight); err != nil {
		return nil, fmt.Errorf("failed to parse insight JSON: %w", err)
	}
	if insight.Score < 0 || insight.Score > 100 {
		return nil, fmt.Errorf("insight score %d out of range", insight.Score)
	}
	switch strings.ToLower(insight.Temperature) {
	case "hot", "warm", "cold":
		insight.Temperature = strings.ToLower(insight.Temperature)
	default:
		return nil, fmt.Errorf("invalid temperature %q", insight.Temperature)
	}
	return &insight, nil
}

// fallback derives an insight directly from the engagement score.
func (s *LeadScorer) fallback(engagement domain.EngagementScore) *LeadInsight {
	next := "Log a first activity to start building engagement."
	switch {
	case engagement.ScoreLevel == domain.ScoreLevelHot:
		next = "Strike while hot: schedule a meeting or send a proposal."
	case engagement.ScoreLevel == domain.ScoreLevelWarm:
		next = "Follow up within the next two days to keep momentum."
	case engagement.TotalPoints > 0:
		next = "Re-engage with a fresh touchpoint; the lead has gone quiet."
	}

	return &LeadInsight{
		Score:       int(math.Round(engagement.ConversionProbability)),
		Temperature: string(engagement.ScoreLevel),
		Reasoning: fmt.Sprintf(
			"Heuristic estimate from engagement history: %d points in the last 30 days, %d days since last activity, %.0f%% response rate.",
			engagement.RecentPoints, engagement.DaysSinceLastActivity, engagement.ResponseRate),
		NextAction: next,
		Source:     "fallback",
	}
}
