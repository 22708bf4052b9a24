package analytics

import (
	"sort"

	"github.com/edulens/engagement-api/internal/models"
)

// FeedbackAction names the ways a learner can act on teacher feedback.
type FeedbackAction string

const (
	FeedbackViewed    FeedbackAction = "viewed"
	FeedbackReplied   FeedbackAction = "replied"
	FeedbackSubmitted FeedbackAction = "submitted"
)

// ModuleResolver supplies the scoring rubric for one activity kind: the
// potential engagement levels an instance can reach and the event names that
// realise each feedback action.
type ModuleResolver interface {
	Kind() string

	// CognitiveDepthLevel and SocialBreadthLevel report the maximum level an
	// instance can attain, in [MinLevel, MaxLevel]. Levels may depend on the
	// instance settings (e.g. feedback switched off lowers the ceiling).
	CognitiveDepthLevel(module models.CourseModule) int
	SocialBreadthLevel(module models.CourseModule) int

	// FeedbackEvents maps an action to the event names that realise it for
	// this kind. A nil or empty slice means the action is not part of the
	// kind's ladder.
	FeedbackEvents(action FeedbackAction) []string

	// FeedbackRequiresGrades reports whether feedback predicates demand grade
	// rows for a context before inspecting logs.
	FeedbackRequiresGrades() bool
}

// Registry holds the resolver for each activity kind the scorer understands.
type Registry struct {
	resolvers map[string]ModuleResolver
}

// NewRegistry returns an empty resolver registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: map[string]ModuleResolver{}}
}

// Register adds a resolver, rejecting incoherent feedback ladders at
// composition time: a kind that maps the submitted action must also map
// replied and viewed, because the cognitive ladder falls through them.
func (r *Registry) Register(resolver ModuleResolver) error {
	if resolver == nil {
		return Configf("cannot register a nil module resolver")
	}

	kind := resolver.Kind()
	if kind == "" {
		return Configf("module resolver reports an empty activity kind")
	}

	if _, exists := r.resolvers[kind]; exists {
		return Configf("resolver for activity kind %q already registered", kind)
	}

	submitted := resolver.FeedbackEvents(FeedbackSubmitted)
	replied := resolver.FeedbackEvents(FeedbackReplied)
	viewed := resolver.FeedbackEvents(FeedbackViewed)

	if len(submitted) > 0 && (len(replied) == 0 || len(viewed) == 0) {
		return Configf("activity kind %q maps the submitted feedback action but not replied and viewed", kind)
	}
	if len(replied) > 0 && len(viewed) == 0 {
		return Configf("activity kind %q maps the replied feedback action but not viewed", kind)
	}

	r.resolvers[kind] = resolver
	return nil
}

// Resolve returns the resolver for kind. An unregistered kind yields an
// UnknownKindError so callers can blame the request rather than the scorer.
func (r *Registry) Resolve(kind string) (ModuleResolver, error) {
	resolver, ok := r.resolvers[kind]
	if !ok {
		return nil, &UnknownKindError{Kind: kind}
	}
	return resolver, nil
}

// Kinds lists the registered activity kinds in stable order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.resolvers))
	for kind := range r.resolvers {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// DefaultRegistry wires the resolvers for the activity kinds the platform
// currently exports.
func DefaultRegistry() (*Registry, error) {
	registry := NewRegistry()
	for _, resolver := range []ModuleResolver{
		assignResolver{},
		forumResolver{},
		quizResolver{},
		resourceResolver{},
	} {
		if err := registry.Register(resolver); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
