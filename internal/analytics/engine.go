package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/edulens/engagement-api/internal/models"
)

// ModuleSource lists the activity instances in scope for a sample.
type ModuleSource interface {
	GetByID(ctx context.Context, id uint) (models.CourseModule, error)
	ListActiveInWindow(ctx context.Context, courseID uint, kind string, start, end time.Time) ([]models.CourseModule, error)
}

// Engine evaluates engagement indicators for one course and one activity
// kind. Instantiate one engine per course scope and reuse it serially across
// samples so the log cache is built once.
type Engine struct {
	courseID uint
	resolver ModuleResolver
	modules  ModuleSource
	cache    *LogCache
	logger   zerolog.Logger
}

// NewEngine builds an engine bound to a course scope.
func NewEngine(courseID uint, resolver ModuleResolver, modules ModuleSource, events EventSource, grades GradeSource, logger zerolog.Logger) *Engine {
	kind := ""
	if resolver != nil {
		kind = resolver.Kind()
	}
	return &Engine{
		courseID: courseID,
		resolver: resolver,
		modules:  modules,
		cache:    NewLogCache(events, grades),
		logger: logger.With().
			Str("component", "score_engine").
			Str("kind", kind).
			Uint("course_id", courseID).
			Logger(),
	}
}

// Score evaluates the requested indicator for the sample. An unknown
// indicator is a configuration defect.
func (e *Engine) Score(ctx context.Context, indicator Indicator, sample Sample) (Result, error) {
	switch indicator {
	case IndicatorCognitiveDepth:
		return e.CognitiveScore(ctx, sample)
	case IndicatorSocialBreadth:
		return e.SocialScore(ctx, sample)
	default:
		return Result{}, Configf("unknown engagement indicator %q", indicator)
	}
}

// CognitiveScore walks the sample's activities and aggregates the cognitive
// depth contributions into one bounded score. A sample with no relevant
// activities yields the not-applicable result.
func (e *Engine) CognitiveScore(ctx context.Context, sample Sample) (Result, error) {
	modules, err := e.prepare(ctx, sample)
	if err != nil {
		return Result{}, err
	}
	if len(modules) == 0 {
		return Result{}, nil
	}

	perActivity := (MaxScore - MinScore) / float64(len(modules))
	score := MinScore
	for _, module := range modules {
		potential := e.resolver.CognitiveDepthLevel(module)
		if potential < MinLevel || potential > MaxLevel {
			return Result{}, Configf("activity kind %q reports cognitive depth level %d for module %d, want %d..%d",
				e.resolver.Kind(), potential, module.ID, MinLevel, MaxLevel)
		}

		reached, err := e.cognitiveLevelReached(module, sample.UserID, potential)
		if err != nil {
			return Result{}, err
		}

		perLevel := perActivity / float64(potential)
		score += perLevel * float64(reached)

		e.logger.Debug().
			Uint("module_id", module.ID).
			Int("potential_level", potential).
			Int("reached_level", reached).
			Msg("cognitive depth contribution")
	}

	return applicable(clamp(score)), nil
}

// cognitiveLevelReached finds the highest level at or below potential whose
// predicate holds, checking top-down so a missed top bar still earns the
// lower bars.
func (e *Engine) cognitiveLevelReached(module models.CourseModule, userID uint, potential int) (int, error) {
	for level := potential; level >= MinLevel; level-- {
		ok, err := e.levelPredicate(level, module, userID)
		if err != nil {
			return 0, err
		}
		if ok {
			return level, nil
		}
	}
	return 0, nil
}

func (e *Engine) levelPredicate(level int, module models.CourseModule, userID uint) (bool, error) {
	switch level {
	case 5:
		return e.AnyFeedback(FeedbackSubmitted, module, userID)
	case 4:
		return e.AnyFeedback(FeedbackReplied, module, userID)
	case 3:
		return e.AnyFeedback(FeedbackViewed, module, userID)
	case 2:
		return e.cache.AnyWriteLog(module.ContextID, userID), nil
	case 1:
		return e.cache.AnyLog(module.ContextID, userID), nil
	}
	return false, Configf("level %d is outside the scoring ladder", level)
}

// SocialScore mirrors the cognitive aggregation but with the current social
// rubric: potential levels 2 through 5 all resolve through the single
// viewed-feedback check and are scored as level 2, with any logged activity
// as the level 1 fallback. The wider ladder is intentionally not defined yet.
func (e *Engine) SocialScore(ctx context.Context, sample Sample) (Result, error) {
	modules, err := e.prepare(ctx, sample)
	if err != nil {
		return Result{}, err
	}
	if len(modules) == 0 {
		return Result{}, nil
	}

	perActivity := (MaxScore - MinScore) / float64(len(modules))
	score := MinScore
	for _, module := range modules {
		potential := e.resolver.SocialBreadthLevel(module)
		if potential < MinLevel || potential > MaxLevel {
			return Result{}, Configf("activity kind %q reports social breadth level %d for module %d, want %d..%d",
				e.resolver.Kind(), potential, module.ID, MinLevel, MaxLevel)
		}

		reached := 0
		if potential >= 2 {
			viewed, err := e.AnyFeedback(FeedbackViewed, module, sample.UserID)
			if err != nil {
				return Result{}, err
			}
			if viewed {
				reached = 2
			}
		}
		if reached == 0 && e.cache.AnyLog(module.ContextID, sample.UserID) {
			reached = 1
		}

		perLevel := perActivity / float64(potential)
		score += perLevel * float64(reached)

		e.logger.Debug().
			Uint("module_id", module.ID).
			Int("potential_level", potential).
			Int("reached_level", reached).
			Msg("social breadth contribution")
	}

	return applicable(clamp(score)), nil
}

// AnyFeedback reports whether the user (any user when zero) acted on feedback
// for the module: viewed it, replied to it, or submitted work after it.
func (e *Engine) AnyFeedback(action FeedbackAction, module models.CourseModule, userID uint) (bool, error) {
	names := e.resolver.FeedbackEvents(action)
	if len(names) == 0 {
		return false, Configf("activity kind %q claims a feedback level but maps no events for action %q",
			e.resolver.Kind(), action)
	}

	requireGrades := e.resolver.FeedbackRequiresGrades()
	if requireGrades && !e.cache.HasGrades(module.ContextID) {
		// nothing was graded, so there is no feedback to act on
		return false, nil
	}

	if userID != 0 {
		return e.feedbackPostAction(module.ContextID, userID, names, requireGrades), nil
	}

	var users []uint
	if requireGrades {
		users = e.cache.GradedUsers(module.ContextID)
	} else {
		users = e.cache.EventUsers(module.ContextID)
	}
	for _, uid := range users {
		if e.feedbackPostAction(module.ContextID, uid, names, requireGrades) {
			return true, nil
		}
	}
	return false, nil
}

// feedbackPostAction checks for any of the named events strictly after the
// user's graded date. Without grade checking no time filter applies; with it,
// a user who was never graded cannot have acted on feedback.
func (e *Engine) feedbackPostAction(contextID, userID uint, names []string, requireGrades bool) bool {
	var after time.Time
	if requireGrades {
		gradedAt, ok := e.cache.GradedDate(contextID, userID, false)
		if !ok {
			return false
		}
		after = gradedAt
	}
	return e.cache.AnyEventAfter(contextID, userID, names, after)
}

// prepare resolves the sample's module scope and builds the log cache over
// those contexts.
func (e *Engine) prepare(ctx context.Context, sample Sample) ([]models.CourseModule, error) {
	if e.resolver == nil {
		return nil, Configf("engine has no module resolver")
	}
	if e.modules == nil {
		return nil, Configf("engine has no module source")
	}

	modules, err := e.scopeModules(ctx, sample)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, nil
	}

	contextIDs := make([]uint, 0, len(modules))
	for _, module := range modules {
		contextIDs = append(contextIDs, module.ContextID)
	}
	if err := e.cache.Build(ctx, contextIDs, sample.Window); err != nil {
		return nil, err
	}
	return modules, nil
}

func (e *Engine) scopeModules(ctx context.Context, sample Sample) ([]models.CourseModule, error) {
	if sample.ModuleID != 0 {
		module, err := e.modules.GetByID(ctx, sample.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("load module %d: %w", sample.ModuleID, err)
		}
		if module.CourseID != e.courseID {
			return nil, Configf("module %d belongs to course %d, engine scores course %d",
				module.ID, module.CourseID, e.courseID)
		}
		if module.Kind != e.resolver.Kind() {
			return nil, Configf("module %d is of kind %q, engine scores kind %q",
				module.ID, module.Kind, e.resolver.Kind())
		}
		if !module.ActiveInWindow(sample.Window.Start, sample.Window.End) {
			return nil, nil
		}
		return []models.CourseModule{module}, nil
	}

	return e.modules.ListActiveInWindow(ctx, e.courseID, e.resolver.Kind(), sample.Window.Start, sample.Window.End)
}

func clamp(value float64) float64 {
	return math.Min(MaxScore, math.Max(MinScore, value))
}
