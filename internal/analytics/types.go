package analytics

import "time"

// Indicator selects which engagement dimension an engine evaluates.
type Indicator string

const (
	// IndicatorCognitiveDepth measures how deeply a learner worked with an
	// activity, from merely opening it up to resubmitting after feedback.
	IndicatorCognitiveDepth Indicator = "cognitive_depth"
	// IndicatorSocialBreadth measures how far a learner's interaction reached
	// beyond themselves.
	IndicatorSocialBreadth Indicator = "social_breadth"
)

// Score bounds. Every returned score is clamped into this range.
const (
	MinScore = -1.0
	MaxScore = 1.0
)

// Rubric level bounds. A resolver reporting a potential level outside this
// range is a configuration defect, never silently corrected.
const (
	MinLevel = 1
	MaxLevel = 5
)

// Window delimits an analysis period. Start is exclusive, End inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	return ts.After(w.Start) && !ts.After(w.End)
}

// Sample is one evaluation request. A zero UserID means "any user"; a zero
// ModuleID widens the scope from a single activity instance to every module
// of the engine's kind active in the window.
type Sample struct {
	UserID   uint
	ModuleID uint
	Window   Window
}

// Result is either a bounded score or the explicit not-applicable outcome a
// sample with no relevant activities produces. Not applicable is distinct
// from a score of zero and callers must treat it that way.
type Result struct {
	Applicable bool
	Value      float64
}

func applicable(value float64) Result {
	return Result{Applicable: true, Value: value}
}
