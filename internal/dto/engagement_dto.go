package dto

import "time"

// EngagementScoreRequest asks for one indicator evaluation. UserID zero means
// "any user"; ModuleID zero widens the scope to every module of the kind
// active in the window.
type EngagementScoreRequest struct {
	CourseID  uint      `json:"course_id" validate:"required"`
	Kind      string    `json:"kind" validate:"required"`
	Indicator string    `json:"indicator" validate:"required,oneof=cognitive_depth social_breadth"`
	UserID    uint      `json:"user_id"`
	ModuleID  uint      `json:"module_id"`
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required,gtfield=Start"`
}

// EngagementScoreResponse carries one bounded score. Score is null when the
// sample had no relevant activities; Applicable distinguishes that from a
// legitimate numeric result.
type EngagementScoreResponse struct {
	CourseID   uint      `json:"course_id"`
	Kind       string    `json:"kind"`
	Indicator  string    `json:"indicator"`
	UserID     uint      `json:"user_id,omitempty"`
	ModuleID   uint      `json:"module_id,omitempty"`
	Applicable bool      `json:"applicable"`
	Score      *float64  `json:"score"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ComputedAt time.Time `json:"computed_at"`
	CacheHit   bool      `json:"cache_hit,omitempty"`
}

// KindEngagement is one activity kind's slice of a course summary. Nil scores
// mean the indicator was not applicable for the window.
type KindEngagement struct {
	Kind           string   `json:"kind"`
	CognitiveDepth *float64 `json:"cognitive_depth"`
	SocialBreadth  *float64 `json:"social_breadth"`
}

// CourseEngagementSummary evaluates both indicators for every registered
// activity kind for one user.
type CourseEngagementSummary struct {
	CourseID   uint             `json:"course_id"`
	UserID     uint             `json:"user_id"`
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
	Kinds      []KindEngagement `json:"kinds"`
	ComputedAt time.Time        `json:"computed_at"`
}
