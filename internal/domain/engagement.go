package domain

import "time"

// ScoreLevel buckets a lead's recent engagement into a temperature.
type ScoreLevel string

const (
	ScoreLevelHot  ScoreLevel = "hot"
	ScoreLevelWarm ScoreLevel = "warm"
	ScoreLevelCold ScoreLevel = "cold"
)

// EngagementScore is the computed engagement snapshot for a single lead.
type EngagementScore struct {
	LeadID       string     `json:"leadId"`
	TotalPoints  int        `json:"totalPoints"`
	RecentPoints int        `json:"recentPoints"`
	ScoreLevel   ScoreLevel `json:"scoreLevel"`

	LastActivity *time.Time `json:"lastActivity"`

	// DaysSinceLastActivity is 999 when the lead has no activity at all.
	DaysSinceLastActivity int `json:"daysSinceLastActivity"`

	// ActivityFrequency is activities per week over the lead's history.
	ActivityFrequency float64 `json:"activityFrequency"`

	// ResponseRate is a percentage over outbound channel activities.
	ResponseRate float64 `json:"responseRate"`

	// ConversionProbability is a 0-100 heuristic estimate.
	ConversionProbability float64 `json:"conversionProbability"`
}

// TrendPoint is one daily bucket of an engagement trend.
type TrendPoint struct {
	Date       string `json:"date"`
	Points     int    `json:"points"`
	Activities int    `json:"activities"`
}

// TypePerformance ranks an activity type by its conversion outcomes.
type TypePerformance struct {
	Type              ActivityType `json:"type"`
	ConversionRate    float64      `json:"conversionRate"`
	AverageEngagement float64      `json:"averageEngagement"`
}

// ActivityStats aggregates a workspace's (or lead's) activity history.
type ActivityStats struct {
	TotalActivities     int                  `json:"totalActivities"`
	ActivitiesByType    map[ActivityType]int `json:"activitiesByType"`
	ActivitiesByOutcome map[Outcome]int      `json:"activitiesByOutcome"`
	AverageResponseTime float64              `json:"averageResponseTime"`
	EngagementTrend     []TrendPoint         `json:"engagementTrend"`
	TopPerformingTypes  []TypePerformance    `json:"topPerformingTypes"`
}
