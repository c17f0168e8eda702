package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadflow-api/internal/domain"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(DefaultCatalog())
}

func makeActivity(leadID string, t domain.ActivityType, points int, createdAt time.Time) domain.Activity {
	return domain.Activity{
		ID:               "act-" + string(t) + "-" + createdAt.Format("20060102150405.000"),
		WorkspaceID:      "ws-1",
		LeadID:           leadID,
		UserID:           "user-1",
		Type:             t,
		Title:            string(t),
		EngagementPoints: points,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func TestScoreNoActivities(t *testing.T) {
	e := newTestEngine()

	score := e.Score("lead-empty", nil, testNow)

	assert.Equal(t, "lead-empty", score.LeadID)
	assert.Equal(t, 0, score.TotalPoints)
	assert.Equal(t, 0, score.RecentPoints)
	assert.Equal(t, domain.ScoreLevelCold, score.ScoreLevel)
	assert.Nil(t, score.LastActivity)
	assert.Equal(t, 999, score.DaysSinceLastActivity)
	assert.Zero(t, score.ActivityFrequency)
	assert.Zero(t, score.ResponseRate)
	assert.Zero(t, score.ConversionProbability)
}

func TestScoreIgnoresOtherLeads(t *testing.T) {
	e := newTestEngine()
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow),
		makeActivity("lead-2", domain.ActivityTypeMeeting, 15, testNow),
	}

	score := e.Score("lead-1", activities, testNow)

	assert.Equal(t, 10, score.TotalPoints)
	assert.Equal(t, 10, score.RecentPoints)
}

func TestScoreWarmScenario(t *testing.T) {
	e := newTestEngine()
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow),
		makeActivity("lead-1", domain.ActivityTypeEmail, 5, testNow.AddDate(0, 0, -40)),
	}

	score := e.Score("lead-1", activities, testNow)

	assert.Equal(t, 15, score.TotalPoints)
	assert.Equal(t, 10, score.RecentPoints)
	assert.Equal(t, 0, score.DaysSinceLastActivity)
	assert.Equal(t, domain.ScoreLevelWarm, score.ScoreLevel)
	require.NotNil(t, score.LastActivity)
	assert.True(t, score.LastActivity.Equal(testNow))
}

func TestScoreHotScenario(t *testing.T) {
	e := newTestEngine()
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeMeeting, 15, testNow),
		makeActivity("lead-1", domain.ActivityTypeMeeting, 15, testNow),
		makeActivity("lead-1", domain.ActivityTypeMeeting, 15, testNow),
	}

	score := e.Score("lead-1", activities, testNow)

	assert.Equal(t, 45, score.RecentPoints)
	assert.Equal(t, 0, score.DaysSinceLastActivity)
	assert.Equal(t, domain.ScoreLevelHot, score.ScoreLevel)
}

func TestScoreRecentWindowBoundary(t *testing.T) {
	e := newTestEngine()

	excluded := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow.Add(-30*24*time.Hour-time.Millisecond)),
	}
	score := e.Score("lead-1", excluded, testNow)
	assert.Equal(t, 10, score.TotalPoints)
	assert.Equal(t, 0, score.RecentPoints, "activity older than 30 days must not count as recent")

	included := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow.Add(-29*24*time.Hour)),
	}
	score = e.Score("lead-1", included, testNow)
	assert.Equal(t, 10, score.RecentPoints)
}

func TestScoreExactWindowEdgeExcluded(t *testing.T) {
	e := newTestEngine()
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow.Add(-30*24*time.Hour)),
	}

	score := e.Score("lead-1", activities, testNow)

	assert.Equal(t, 0, score.RecentPoints, "the bound is open: exactly 30 days ago is not recent")
}

func TestScoreIdempotent(t *testing.T) {
	e := newTestEngine()
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow.AddDate(0, 0, -2)),
		makeActivity("lead-1", domain.ActivityTypeNote, 2, testNow.AddDate(0, 0, -10)),
	}

	first := e.Score("lead-1", activities, testNow)
	second := e.Score("lead-1", activities, testNow)

	assert.Equal(t, first, second)
}

func TestScoreRemovalMonotonic(t *testing.T) {
	e := newTestEngine()
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow.AddDate(0, 0, -1)),
		makeActivity("lead-1", domain.ActivityTypeEmail, 5, testNow.AddDate(0, 0, -2)),
	}

	before := e.Score("lead-1", activities, testNow)
	after := e.Score("lead-1", activities[:1], testNow)
	assert.Less(t, after.TotalPoints, before.TotalPoints)

	restored := e.Score("lead-1", activities, testNow)
	assert.Equal(t, before.TotalPoints, restored.TotalPoints)
}

func TestScoreResponseRate(t *testing.T) {
	e := newTestEngine()

	answered := makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow)
	answered.Metadata = domain.CallMetadata{ResponseReceived: true}

	unanswered := makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow)

	successful := makeActivity("lead-1", domain.ActivityTypeEmail, 5, testNow)
	outcome := domain.OutcomeSuccessful
	successful.Outcome = &outcome

	automated := makeActivity("lead-1", domain.ActivityTypeEmail, 5, testNow)
	automated.IsAutomated = true

	score := e.Score("lead-1", []domain.Activity{answered, unanswered, successful, automated}, testNow)

	// Three manual outbound activities, two with responses.
	assert.InDelta(t, 100.0*2/3, score.ResponseRate, 1e-9)
}

func TestScoreResponseRateZeroWithoutOutbound(t *testing.T) {
	e := newTestEngine()
	note := makeActivity("lead-1", domain.ActivityTypeNote, 2, testNow)
	outcome := domain.OutcomeSuccessful
	note.Outcome = &outcome

	score := e.Score("lead-1", []domain.Activity{note}, testNow)

	assert.Zero(t, score.ResponseRate)
}

func TestScoreConversionProbability(t *testing.T) {
	e := newTestEngine()

	// One call yesterday: recent 10, no responses, 1 day since last.
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow.AddDate(0, 0, -1)),
	}
	score := e.Score("lead-1", activities, testNow)
	assert.InDelta(t, 10*2+0+19, score.ConversionProbability, 1e-9)

	// Pile on meetings today so the raw sum exceeds the cap.
	for i := 0; i < 5; i++ {
		activities = append(activities, makeActivity("lead-1", domain.ActivityTypeMeeting, 15, testNow))
	}
	score = e.Score("lead-1", activities, testNow)
	assert.Equal(t, 100.0, score.ConversionProbability)
}

func TestScoreActivityFrequency(t *testing.T) {
	e := newTestEngine()

	// Last activity 14 days ago: horizon is 2 weeks, 4 activities.
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeNote, 2, testNow.AddDate(0, 0, -14)),
		makeActivity("lead-1", domain.ActivityTypeNote, 2, testNow.AddDate(0, 0, -20)),
		makeActivity("lead-1", domain.ActivityTypeNote, 2, testNow.AddDate(0, 0, -25)),
		makeActivity("lead-1", domain.ActivityTypeNote, 2, testNow.AddDate(0, 0, -30)),
	}

	score := e.Score("lead-1", activities, testNow)

	assert.InDelta(t, 2.0, score.ActivityFrequency, 1e-9)
}

func TestStatsTypeCardinality(t *testing.T) {
	e := newTestEngine()

	stats := e.Stats(nil, testNow)

	assert.Len(t, stats.ActivitiesByType, e.Catalog().Len())
	for _, typ := range e.Catalog().Types() {
		count, ok := stats.ActivitiesByType[typ]
		assert.True(t, ok, "type %s missing from stats", typ)
		assert.Zero(t, count)
	}
}

func TestStatsOutcomesSparse(t *testing.T) {
	e := newTestEngine()

	converted := makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow)
	oc := domain.OutcomeConverted
	converted.Outcome = &oc

	stats := e.Stats([]domain.Activity{
		converted,
		makeActivity("lead-1", domain.ActivityTypeNote, 2, testNow),
	}, testNow)

	assert.Equal(t, 2, stats.TotalActivities)
	assert.Equal(t, map[domain.Outcome]int{domain.OutcomeConverted: 1}, stats.ActivitiesByOutcome)
}

func TestStatsTrendWindow(t *testing.T) {
	e := newTestEngine()

	stats := e.Stats(nil, testNow)

	require.Len(t, stats.EngagementTrend, 7)
	for i, point := range stats.EngagementTrend {
		want := testNow.AddDate(0, 0, -(6 - i)).Format("2006-01-02")
		assert.Equal(t, want, point.Date)
	}
	assert.Equal(t, testNow.Format("2006-01-02"), stats.EngagementTrend[6].Date)
}

func TestStatsAverageResponseTimeEstimate(t *testing.T) {
	e := newTestEngine()

	stats := e.Stats(nil, testNow)

	assert.Equal(t, averageResponseTimeHours, stats.AverageResponseTime)
}

func TestStatsTopPerformingTypes(t *testing.T) {
	e := newTestEngine()

	oc := domain.OutcomeConverted
	call := makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow)
	call.Outcome = &oc

	activities := []domain.Activity{
		call,
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow),
		makeActivity("lead-1", domain.ActivityTypeEmail, 5, testNow),
		makeActivity("lead-1", domain.ActivityTypeNote, 2, testNow),
	}

	stats := e.Stats(activities, testNow)

	require.NotEmpty(t, stats.TopPerformingTypes)
	assert.LessOrEqual(t, len(stats.TopPerformingTypes), 5)

	top := stats.TopPerformingTypes[0]
	assert.Equal(t, domain.ActivityTypeCall, top.Type)
	assert.InDelta(t, 50.0, top.ConversionRate, 1e-9)
	assert.InDelta(t, 10.0, top.AverageEngagement, 1e-9)
}

func TestTrendSingleActivityBucket(t *testing.T) {
	e := newTestEngine()
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeEmail, 5, testNow.AddDate(0, 0, -3)),
	}

	trend := e.Trend(activities, 7, testNow)

	require.Len(t, trend, 7)
	for i, point := range trend {
		if i == 3 {
			assert.Equal(t, 5, point.Points)
			assert.Equal(t, 1, point.Activities)
			continue
		}
		assert.Zero(t, point.Points, "bucket %d (%s)", i, point.Date)
		assert.Zero(t, point.Activities, "bucket %d (%s)", i, point.Date)
	}
}

func TestTrendArbitraryWindow(t *testing.T) {
	e := newTestEngine()
	activities := []domain.Activity{
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow.AddDate(0, 0, -13)),
		makeActivity("lead-1", domain.ActivityTypeCall, 10, testNow),
	}

	trend := e.Trend(activities, 14, testNow)

	require.Len(t, trend, 14)
	assert.Equal(t, 10, trend[0].Points)
	assert.Equal(t, 10, trend[13].Points)
	assert.Equal(t, testNow.Format("2006-01-02"), trend[13].Date)
}

func TestTrendDatesChronological(t *testing.T) {
	e := newTestEngine()

	trend := e.Trend(nil, 30, testNow)

	require.Len(t, trend, 30)
	for i := 1; i < len(trend); i++ {
		assert.Less(t, trend[i-1].Date, trend[i].Date)
	}
}
