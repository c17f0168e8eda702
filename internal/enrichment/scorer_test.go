package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow-api/internal/domain"
)

func testEngagement() domain.EngagementScore {
	return domain.EngagementScore{
		LeadID:                "lead-1",
		TotalPoints:           25,
		RecentPoints:          15,
		ScoreLevel:            domain.ScoreLevelWarm,
		DaysSinceLastActivity: 2,
		ResponseRate:          50,
		ConversionProbability: 73,
	}
}

func testScoringLead() *domain.Lead {
	company := "Acme Corp"
	return &domain.Lead{
		ID:       "lead-1",
		FullName: "Maria Santos",
		Company:  &company,
		Status:   domain.LeadStatusQualified,
		Source:   domain.LeadSourceWebhook,
	}
}

func TestScoreLead_ModelResponse(t *testing.T) {
	mock := &MockCompletionClient{
		Response: `{"score": 82, "temperature": "hot", "reasoning": "High recent engagement.", "nextAction": "Book a demo."}`,
	}
	scorer := NewLeadScorer(mock, DefaultConfig(""))

	insight, err := scorer.ScoreLead(context.Background(), testScoringLead(), testEngagement(), nil)

	require.NoError(t, err)
	assert.Equal(t, 82, insight.Score)
	assert.Equal(t, "hot", insight.Temperature)
	assert.Equal(t, "model", insight.Source)
	require.Len(t, mock.Requests, 1)
	assert.Len(t, mock.Requests[0].Messages, 2)
}

func TestScoreLead_FallbackOnMalformedJSON(t *testing.T) {
	mock := &MockCompletionClient{Response: "Sure! Here is my analysis: the lead looks promising."}
	scorer := NewLeadScorer(mock, DefaultConfig(""))

	insight, err := scorer.ScoreLead(context.Background(), testScoringLead(), testEngagement(), nil)

	require.NoError(t, err)
	assert.Equal(t, "fallback", insight.Source)
	assert.Equal(t, 73, insight.Score)
	assert.Equal(t, "warm", insight.Temperature)
}

func TestScoreLead_FallbackOnAPIError(t *testing.T) {
	mock := &MockCompletionClient{Err: errors.New("rate limited")}
	scorer := NewLeadScorer(mock, DefaultConfig(""))

	insight, err := scorer.ScoreLead(context.Background(), testScoringLead(), testEngagement(), nil)

	require.NoError(t, err)
	assert.Equal(t, "fallback", insight.Source)
}

func TestScoreLead_FallbackWhenDisabled(t *testing.T) {
	scorer := NewLeadScorer(nil, DefaultConfig(""))

	insight, err := scorer.ScoreLead(context.Background(), testScoringLead(), testEngagement(), nil)

	require.NoError(t, err)
	assert.Equal(t, "fallback", insight.Source)
	assert.NotEmpty(t, insight.NextAction)
}

func TestParseInsight_Validation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"score": 50, "temperature": "warm", "reasoning": "ok", "nextAction": "call"}`, false},
		{"uppercase temperature normalized", `{"score": 10, "temperature": "COLD"}`, false},
		{"score too high", `{"score": 150, "temperature": "hot"}`, true},
		{"negative score", `{"score": -5, "temperature": "cold"}`, true},
		{"bad temperature", `{"score": 50, "temperature": "lukewarm"}`, true},
		{"not json", `hello`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insight, err := parseInsight(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, []string{"hot", "warm", "cold"}, insight.Temperature)
		})
	}
}

func TestBuildScoringPrompt_IncludesRecentActivities(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	outcome := domain.OutcomeInterested
	activities := []domain.Activity{
		{
			Type:      domain.ActivityTypeCall,
			Title:     "Discovery call",
			Outcome:   &outcome,
			CreatedAt: now,
		},
	}

	prompt := buildScoringPrompt(testScoringLead(), testEngagement(), activities)

	assert.Contains(t, prompt, "Maria Santos")
	assert.Contains(t, prompt, "Acme Corp")
	assert.Contains(t, prompt, "Discovery call")
	assert.Contains(t, prompt, "interested")
	assert.Contains(t, prompt, "2025-06-15")
}
