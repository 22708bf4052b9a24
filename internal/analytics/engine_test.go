package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edulens/engagement-api/internal/models"
)

type stubModuleSource struct {
	modules []models.CourseModule
}

func (s stubModuleSource) GetByID(_ context.Context, id uint) (models.CourseModule, error) {
	for _, module := range s.modules {
		if module.ID == id {
			return module, nil
		}
	}
	return models.CourseModule{}, fmt.Errorf("module %d not found", id)
}

func (s stubModuleSource) ListActiveInWindow(_ context.Context, courseID uint, kind string, start, end time.Time) ([]models.CourseModule, error) {
	var out []models.CourseModule
	for _, module := range s.modules {
		if module.CourseID == courseID && module.Kind == kind && module.ActiveInWindow(start, end) {
			out = append(out, module)
		}
	}
	return out, nil
}

type stubEventSource struct {
	events []models.LogEvent
}

func (s stubEventSource) QueryWindow(context.Context, []uint, time.Time, time.Time) ([]models.LogEvent, error) {
	return s.events, nil
}

type stubGradeSource struct {
	items []models.GradeItem
}

func (s stubGradeSource) ForContexts(context.Context, []uint) ([]models.GradeItem, error) {
	return s.items, nil
}

type testResolver struct {
	kind      string
	cognitive int
	social    int
	feedback  map[FeedbackAction][]string
	grades    bool
}

func (r testResolver) Kind() string                                { return r.kind }
func (r testResolver) CognitiveDepthLevel(models.CourseModule) int { return r.cognitive }
func (r testResolver) SocialBreadthLevel(models.CourseModule) int  { return r.social }
func (r testResolver) FeedbackEvents(a FeedbackAction) []string    { return r.feedback[a] }
func (r testResolver) FeedbackRequiresGrades() bool                { return r.grades }

var (
	windowStart = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = windowStart.Add(14 * 24 * time.Hour)
	gradedAt    = windowStart.Add(3 * 24 * time.Hour)
)

func testWindow() Window {
	return Window{Start: windowStart, End: windowEnd}
}

func assignModule() models.CourseModule {
	return models.CourseModule{ID: 1, CourseID: 1, ContextID: 101, Kind: "assign", Name: "Essay"}
}

func newTestEngine(resolver ModuleResolver, modules []models.CourseModule, events []models.LogEvent, grades []models.GradeItem) *Engine {
	return NewEngine(1, resolver, stubModuleSource{modules: modules},
		stubEventSource{events: events}, stubGradeSource{items: grades}, zerolog.Nop())
}

func gradeRow(contextID, userID uint) models.GradeItem {
	grade := 80.0
	at := gradedAt
	return models.GradeItem{ContextID: contextID, UserID: userID, Grade: &grade, GradedAt: &at}
}

func TestCognitiveScoreReachesTopLevel(t *testing.T) {
	module := assignModule()
	events := []models.LogEvent{
		{ContextID: 101, UserID: 7, EventName: "assign.submission_updated", CRUD: models.CRUDUpdate, OccurredAt: gradedAt.Add(2 * time.Hour)},
	}
	engine := newTestEngine(assignResolver{}, []models.CourseModule{module}, events, []models.GradeItem{gradeRow(101, 7)})

	result, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.True(t, result.Applicable)
	// single activity, potential 5, reached 5: min + perActivity
	require.InDelta(t, 1.0, result.Value, 1e-9)
}

func TestCognitiveScoreFallsThroughToViewed(t *testing.T) {
	module := assignModule()
	events := []models.LogEvent{
		{ContextID: 101, UserID: 7, EventName: "assign.feedback_viewed", CRUD: models.CRUDRead, OccurredAt: gradedAt.Add(time.Hour)},
	}
	engine := newTestEngine(assignResolver{}, []models.CourseModule{module}, events, []models.GradeItem{gradeRow(101, 7)})

	result, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.True(t, result.Applicable)
	// reached 3 of 5: -1 + (2/5)*3
	require.InDelta(t, 0.2, result.Value, 1e-9)
}

func TestCognitiveScoreWriteWithoutGrades(t *testing.T) {
	module := assignModule()
	events := []models.LogEvent{
		{ContextID: 101, UserID: 7, EventName: "assign.submission_created", CRUD: models.CRUDCreate, OccurredAt: windowStart.Add(time.Hour)},
	}
	// no grade rows: the feedback levels short-circuit to false and the
	// write predicate wins at level 2
	engine := newTestEngine(assignResolver{}, []models.CourseModule{module}, events, nil)

	result, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.True(t, result.Applicable)
	require.InDelta(t, -0.2, result.Value, 1e-9)
}

func TestCognitiveScoreReadOnly(t *testing.T) {
	module := assignModule()
	events := []models.LogEvent{
		{ContextID: 101, UserID: 7, EventName: "assign.course_module_viewed", CRUD: models.CRUDRead, OccurredAt: windowStart.Add(time.Hour)},
	}
	engine := newTestEngine(assignResolver{}, []models.CourseModule{module}, events, nil)

	result, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.InDelta(t, -0.6, result.Value, 1e-9)
}

func TestCognitiveScoreNoActivityAtAll(t *testing.T) {
	engine := newTestEngine(assignResolver{}, []models.CourseModule{assignModule()}, nil, nil)

	result, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.True(t, result.Applicable)
	require.InDelta(t, MinScore, result.Value, 1e-9)
}

func TestCognitiveScoreNotApplicableWithoutModules(t *testing.T) {
	engine := newTestEngine(assignResolver{}, nil, nil, nil)

	result, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.False(t, result.Applicable)
}

func TestCognitiveScoreApportionsRangeAcrossModules(t *testing.T) {
	modules := []models.CourseModule{
		{ID: 1, CourseID: 1, ContextID: 301, Kind: "resource", Name: "Slides"},
		{ID: 2, CourseID: 1, ContextID: 302, Kind: "resource", Name: "Reader"},
	}
	events := []models.LogEvent{
		{ContextID: 301, UserID: 7, EventName: "resource.viewed", CRUD: models.CRUDRead, OccurredAt: windowStart.Add(time.Hour)},
	}
	engine := newTestEngine(resourceResolver{}, modules, events, nil)

	// two activities share the [-1, 1] range equally: one fully reached, one
	// untouched lands exactly in the middle
	result, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.InDelta(t, 0.0, result.Value, 1e-9)
}

func TestCognitiveScoreSaturatesAtMax(t *testing.T) {
	var modules []models.CourseModule
	var events []models.LogEvent
	for i := uint(1); i <= 4; i++ {
		modules = append(modules, models.CourseModule{ID: i, CourseID: 1, ContextID: 300 + i, Kind: "resource"})
		events = append(events, models.LogEvent{ContextID: 300 + i, UserID: 7, EventName: "resource.viewed", CRUD: models.CRUDRead, OccurredAt: windowStart.Add(time.Hour)})
	}
	engine := newTestEngine(resourceResolver{}, modules, events, nil)

	result, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.InDelta(t, MaxScore, result.Value, 1e-9)
	require.LessOrEqual(t, result.Value, MaxScore)
}

func TestCognitiveScoreSingleModuleSample(t *testing.T) {
	modules := []models.CourseModule{
		assignModule(),
		{ID: 2, CourseID: 1, ContextID: 102, Kind: "assign", Name: "Report"},
	}
	events := []models.LogEvent{
		{ContextID: 101, UserID: 7, EventName: "assign.submission_updated", CRUD: models.CRUDUpdate, OccurredAt: gradedAt.Add(2 * time.Hour)},
	}
	engine := newTestEngine(assignResolver{}, modules, events, []models.GradeItem{gradeRow(101, 7)})

	// scoped to module 1 only, the second assignment does not dilute the score
	result, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, ModuleID: 1, Window: testWindow()})
	require.NoError(t, err)
	require.InDelta(t, 1.0, result.Value, 1e-9)
}

func TestCognitiveScoreAnyUserSample(t *testing.T) {
	module := assignModule()
	events := []models.LogEvent{
		{ContextID: 101, UserID: 8, EventName: "assign.feedback_viewed", CRUD: models.CRUDRead, OccurredAt: gradedAt.Add(time.Hour)},
	}
	engine := newTestEngine(assignResolver{}, []models.CourseModule{module}, events, []models.GradeItem{gradeRow(101, 8)})

	result, err := engine.CognitiveScore(context.Background(), Sample{Window: testWindow()})
	require.NoError(t, err)
	require.InDelta(t, 0.2, result.Value, 1e-9)
}

func TestCognitiveScoreRejectsOutOfRangeLevel(t *testing.T) {
	resolver := testResolver{kind: "assign", cognitive: 7, social: 2}
	engine := newTestEngine(resolver, []models.CourseModule{assignModule()}, nil, nil)

	_, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.Error(t, err)
	require.True(t, IsConfigError(err))
}

func TestCognitiveScoreRejectsMissingFeedbackMapping(t *testing.T) {
	resolver := testResolver{kind: "assign", cognitive: 5, social: 2, grades: true}
	events := []models.LogEvent{
		{ContextID: 101, UserID: 7, EventName: "assign.course_module_viewed", CRUD: models.CRUDRead, OccurredAt: windowStart.Add(time.Hour)},
	}
	engine := newTestEngine(resolver, []models.CourseModule{assignModule()}, events, []models.GradeItem{gradeRow(101, 7)})

	_, err := engine.CognitiveScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.Error(t, err)
	require.True(t, IsConfigError(err))
}

func TestScoreDispatchRejectsUnknownIndicator(t *testing.T) {
	engine := newTestEngine(assignResolver{}, []models.CourseModule{assignModule()}, nil, nil)

	_, err := engine.Score(context.Background(), Indicator("bogus"), Sample{Window: testWindow()})
	require.Error(t, err)
	require.True(t, IsConfigError(err))
}

func forumModule() models.CourseModule {
	return models.CourseModule{ID: 3, CourseID: 1, ContextID: 202, Kind: "forum", Name: "Q&A"}
}

func TestSocialScoreCapsHighPotentialAtTierTwo(t *testing.T) {
	events := []models.LogEvent{
		{ContextID: 202, UserID: 7, EventName: "forum.discussion_viewed", CRUD: models.CRUDRead, OccurredAt: windowStart.Add(time.Hour)},
		{ContextID: 202, UserID: 7, EventName: "forum.post_created", CRUD: models.CRUDCreate, OccurredAt: windowStart.Add(2 * time.Hour)},
	}
	engine := newTestEngine(forumResolver{}, []models.CourseModule{forumModule()}, events, nil)

	result, err := engine.SocialScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.True(t, result.Applicable)
	// potential 5 scored as tier 2: -1 + (2/5)*2, never the full share
	require.InDelta(t, -0.2, result.Value, 1e-9)
}

func TestSocialScoreFallsBackToAnyLog(t *testing.T) {
	events := []models.LogEvent{
		{ContextID: 202, UserID: 7, EventName: "forum.search_performed", CRUD: models.CRUDRead, OccurredAt: windowStart.Add(time.Hour)},
	}
	engine := newTestEngine(forumResolver{}, []models.CourseModule{forumModule()}, events, nil)

	result, err := engine.SocialScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.InDelta(t, -0.6, result.Value, 1e-9)
}

func TestSocialScoreNotApplicableWithoutModules(t *testing.T) {
	engine := newTestEngine(forumResolver{}, nil, nil, nil)

	result, err := engine.SocialScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.False(t, result.Applicable)
}

func TestSocialScorePotentialOneSkipsFeedbackCheck(t *testing.T) {
	modules := []models.CourseModule{{ID: 5, CourseID: 1, ContextID: 305, Kind: "resource"}}
	events := []models.LogEvent{
		{ContextID: 305, UserID: 7, EventName: "resource.viewed", CRUD: models.CRUDRead, OccurredAt: windowStart.Add(time.Hour)},
	}
	engine := newTestEngine(resourceResolver{}, modules, events, nil)

	// resource maps no feedback events; potential 1 must not consult them
	result, err := engine.SocialScore(context.Background(), Sample{UserID: 7, Window: testWindow()})
	require.NoError(t, err)
	require.InDelta(t, 1.0, result.Value, 1e-9)
}

func TestPerActivityShareSumsToRange(t *testing.T) {
	for _, count := range []int{1, 2, 3, 5, 7, 12} {
		perActivity := (MaxScore - MinScore) / float64(count)
		require.InDelta(t, MaxScore-MinScore, perActivity*float64(count), 1e-9, "count=%d", count)
	}
}

func TestClampBoundsOvershoot(t *testing.T) {
	require.Equal(t, MaxScore, clamp(MaxScore+1e-7))
	require.Equal(t, MinScore, clamp(MinScore-0.5))
	require.InDelta(t, 0.25, clamp(0.25), 1e-12)
}
