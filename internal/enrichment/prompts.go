package enrichment

import (
	"fmt"
	"strings"

	"leadflow-api/internal/domain"
)

const scoringSystemPrompt = `You are a sales lead scoring system. You must respond with ONLY valid JSON.
Structure: {"score": 0-100, "temperature": "hot|warm|cold", "reasoning": "...", "nextAction": "..."}`

// buildScoringPrompt assembles the lead summary the model scores. Only
// the most recent activities are included to bound the prompt size.
func buildScoringPrompt(lead *domain.Lead, score domain.EngagementScore, activities []domain.Activity) string {
	var b strings.Builder

	b.WriteString("Score this sales lead's conversion potential.\n\nLEAD\n")
	fmt.Fprintf(&b, "- name: %s\n", lead.FullName)
	if lead.Company != nil {
		fmt.Fprintf(&b, "- company: %s\n", *lead.Company)
	}
	fmt.Fprintf(&b, "- status: %s\n", lead.Status)
	fmt.Fprintf(&b, "- source: %s\n", lead.Source)
	if len(lead.Tags) > 0 {
		fmt.Fprintf(&b, "- tags: %s\n", strings.Join(lead.Tags, ", "))
	}

	b.WriteString("\nENGAGEMENT\n")
	fmt.Fprintf(&b, "- total points: %d\n", score.TotalPoints)
	fmt.Fprintf(&b, "- points last 30 days: %d\n", score.RecentPoints)
	fmt.Fprintf(&b, "- level: %s\n", score.ScoreLevel)
	fmt.Fprintf(&b, "- days since last activity: %d\n", score.DaysSinceLastActivity)
	fmt.Fprintf(&b, "- activities per week: %.1f\n", score.ActivityFrequency)
	fmt.Fprintf(&b, "- response rate: %.0f%%\n", score.ResponseRate)

	b.WriteString("\nRECENT ACTIVITIES\n")
	if len(activities) == 0 {
		b.WriteString("- none\n")
	}
	limit := len(activities)
	if limit > 10 {
		limit = 10
	}
	for _, a := range activities[:limit] {
		outcome := "-"
		if a.Outcome != nil {
			outcome = string(*a.Outcome)
		}
		fmt.Fprintf(&b, "- %s | %s | outcome: %s | %s\n",
			a.CreatedAt.Format("2006-01-02"), a.Type, outcome, a.Title)
	}

	b.WriteString("\nRespond with JSON only.")
	return b.String()
}
