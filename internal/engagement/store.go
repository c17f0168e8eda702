package engagement

import (
	"sync"
	"time"

	"leadflow-api/internal/domain"
)

// ScoreStore caches computed engagement scores per lead. Entries are
// replaced wholesale on recompute, never patched, so a cached score is
// always one consistent snapshot. The store is injected wherever scores
// are read or invalidated.
type ScoreStore struct {
	engine *Engine

	mu     sync.RWMutex
	scores map[string]domain.EngagementScore
}

// NewScoreStore builds an empty store backed by the given engine.
func NewScoreStore(engine *Engine) *ScoreStore {
	return &ScoreStore{
		engine: engine,
		scores: make(map[string]domain.EngagementScore),
	}
}

// Get returns the cached score for a lead, if one exists.
func (s *ScoreStore) Get(leadID string) (domain.EngagementScore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[leadID]
	return score, ok
}

// GetOrCompute returns the cached score, falling back to a direct
// computation on a cache miss. The fallback result is cached so the next
// read hits.
func (s *ScoreStore) GetOrCompute(leadID string, activities []domain.Activity, now time.Time) domain.EngagementScore {
	if score, ok := s.Get(leadID); ok {
		return score
	}
	return s.Recompute(leadID, activities, now)
}

// Recompute replaces the cached score for a lead with a fresh
// computation over the given activity snapshot. Callers invoke this
// after every activity add or delete for the lead.
func (s *ScoreStore) Recompute(leadID string, activities []domain.Activity, now time.Time) domain.EngagementScore {
	score := s.engine.Score(leadID, activities, now)
	s.mu.Lock()
	s.scores[leadID] = score
	s.mu.Unlock()
	return score
}

// Delete drops the cached score for a lead, typically when the lead
// itself is removed.
func (s *ScoreStore) Delete(leadID string) {
	s.mu.Lock()
	delete(s.scores, leadID)
	s.mu.Unlock()
}

// Seed computes and caches a score for every distinct lead present in
// the activity list. Run once at startup so first reads hit the cache.
func (s *ScoreStore) Seed(activities []domain.Activity, now time.Time) {
	byLead := make(map[string][]domain.Activity)
	for _, a := range activities {
		byLead[a.LeadID] = append(byLead[a.LeadID], a)
	}
	for leadID, acts := range byLead {
		s.Recompute(leadID, acts, now)
	}
}

// Len returns the number of cached scores.
func (s *ScoreStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores)
}
