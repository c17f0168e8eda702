package engagement

import (
	"math"
	"sort"
	"time"

	"leadflow-api/internal/domain"
)

const (
	recentWindow = 30 * 24 * time.Hour

	// noActivitySentinel marks a lead with no history at all.
	noActivitySentinel = 999

	// averageResponseTimeHours is a documented estimate. The data model
	// has no responded-at timestamp to compute a real value from, so
	// stats report this constant until one exists.
	averageResponseTimeHours = 24.0

	statsTrendDays     = 7
	topPerformingLimit = 5
)

// Engine computes engagement scores, activity stats and trend series
// over activity snapshots. All methods are pure: they take the activity
// list and the evaluation time as input and touch no shared state.
type Engine struct {
	catalog *Catalog
}

// NewEngine builds an engine over the given type catalog.
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog exposes the engine's type catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Score computes the engagement snapshot for one lead from its activity
// list. Activities for other leads are filtered out, so callers may pass
// either a pre-scoped or a mixed slice. Degenerate input yields zero and
// sentinel defaults, never an error.
func (e *Engine) Score(leadID string, activities []domain.Activity, now time.Time) domain.EngagementScore {
	score := domain.EngagementScore{
		LeadID:                leadID,
		ScoreLevel:            domain.ScoreLevelCold,
		DaysSinceLastActivity: noActivitySentinel,
	}

	recentCutoff := now.Add(-recentWindow)

	var (
		matches   int
		last      time.Time
		outbound  int
		responses int
	)
	for i := range activities {
		a := &activities[i]
		if a.LeadID != leadID {
			continue
		}
		matches++
		score.TotalPoints += a.EngagementPoints

		// Recency bound is open: an activity created exactly 30 days ago
		// does not count as recent.
		if a.CreatedAt.After(recentCutoff) {
			score.RecentPoints += a.EngagementPoints
		}
		if a.CreatedAt.After(last) {
			last = a.CreatedAt
		}
		if a.Type.IsOutboundChannel() && !a.IsAutomated {
			outbound++
		}
		if a.ResponseReceived() {
			responses++
		}
	}

	if matches > 0 {
		lastCopy := last
		score.LastActivity = &lastCopy

		days := int(now.Sub(last).Hours() / 24)
		if days < 0 {
			days = 0
		}
		score.DaysSinceLastActivity = days

		// Frequency uses the recency horizon as denominator rather than
		// the full history span. Kept for compatibility with existing
		// score consumers.
		score.ActivityFrequency = float64(matches) / math.Max(1, float64(days)/7)
	}

	if outbound > 0 {
		score.ResponseRate = 100 * float64(responses) / float64(outbound)
	}

	d := float64(score.DaysSinceLastActivity)
	switch {
	case score.RecentPoints >= 20 && d <= 3:
		score.ScoreLevel = domain.ScoreLevelHot
	case score.RecentPoints >= 10 && d <= 7:
		score.ScoreLevel = domain.ScoreLevelWarm
	}

	score.ConversionProbability = math.Min(100,
		float64(score.RecentPoints)*2+score.ResponseRate/2+math.Max(0, 20-d))

	return score
}

// Stats aggregates an activity slice into counts, outcome breakdown, a
// fixed seven-day trend and a type performance ranking. Callers scope
// the slice themselves (one lead or the whole workspace).
func (e *Engine) Stats(activities []domain.Activity, now time.Time) domain.ActivityStats {
	stats := domain.ActivityStats{
		TotalActivities:     len(activities),
		ActivitiesByType:    make(map[domain.ActivityType]int, e.catalog.Len()),
		ActivitiesByOutcome: make(map[domain.Outcome]int),
		AverageResponseTime: averageResponseTimeHours,
	}

	// Every catalog type appears, zero counts included. Outcomes are
	// sparse: only outcomes that occur get a key.
	for _, t := range e.catalog.Types() {
		stats.ActivitiesByType[t] = 0
	}

	converted := make(map[domain.ActivityType]int)
	for i := range activities {
		a := &activities[i]
		stats.ActivitiesByType[a.Type]++
		if a.Outcome != nil {
			stats.ActivitiesByOutcome[*a.Outcome]++
			if *a.Outcome == domain.OutcomeConverted {
				converted[a.Type]++
			}
		}
	}

	stats.EngagementTrend = e.trend(activities, statsTrendDays, now)

	perf := make([]domain.TypePerformance, 0, e.catalog.Len())
	for _, t := range e.catalog.Types() {
		count := stats.ActivitiesByType[t]
		p := domain.TypePerformance{Type: t}
		if count > 0 {
			p.ConversionRate = 100 * float64(converted[t]) / float64(count)
			p.AverageEngagement = float64(e.catalog.Points(t))
		}
		perf = append(perf, p)
	}
	sort.SliceStable(perf, func(i, j int) bool {
		if perf[i].ConversionRate != perf[j].ConversionRate {
			return perf[i].ConversionRate > perf[j].ConversionRate
		}
		ci, cj := stats.ActivitiesByType[perf[i].Type], stats.ActivitiesByType[perf[j].Type]
		if ci != cj {
			return ci > cj
		}
		return perf[i].Type < perf[j].Type
	})
	if len(perf) > topPerformingLimit {
		perf = perf[:topPerformingLimit]
	}
	stats.TopPerformingTypes = perf

	return stats
}

// Trend buckets activities into exactly days daily buckets ending today,
// oldest first. Each bucket sums engagement points and counts activities
// created on that calendar day.
func (e *Engine) Trend(activities []domain.Activity, days int, now time.Time) []domain.TrendPoint {
	if days < 1 {
		days = 1
	}
	return e.trend(activities, days, now)
}

func (e *Engine) trend(activities []domain.Activity, days int, now time.Time) []domain.TrendPoint {
	points := make([]domain.TrendPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -(days - 1 - i)).Format("2006-01-02")
		points[i] = domain.TrendPoint{Date: date}
		index[date] = i
	}
	for i := range activities {
		a := &activities[i]
		if bucket, ok := index[a.CreatedAt.Format("2006-01-02")]; ok {
			points[bucket].Points += a.EngagementPoints
			points[bucket].Activities++
		}
	}
	return points
}
