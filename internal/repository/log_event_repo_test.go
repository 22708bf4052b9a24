package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edulens/engagement-api/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Course{}, &models.CourseModule{}, &models.User{}, &models.LogEvent{}, &models.GradeItem{}))
	return db
}

func TestLogEventQueryWindowBoundsAndOrdering(t *testing.T) {
	db := openTestDB(t)
	repo := NewLogEventRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)

	seed := []models.LogEvent{
		{ContextID: 9101, UserID: 1, EventName: "assign.course_module_viewed", CRUD: models.CRUDRead, OccurredAt: start},                  // at start: excluded
		{ContextID: 9101, UserID: 1, EventName: "assign.submission_created", CRUD: models.CRUDCreate, OccurredAt: start.Add(2 * time.Hour)},
		{ContextID: 9101, UserID: 1, EventName: "assign.feedback_viewed", CRUD: models.CRUDRead, OccurredAt: start.Add(time.Hour)},
		{ContextID: 9101, UserID: 1, EventName: "assign.grade_viewed", CRUD: models.CRUDRead, OccurredAt: end},                            // at end: included
		{ContextID: 9101, UserID: 1, EventName: "assign.grade_viewed", CRUD: models.CRUDRead, OccurredAt: end.Add(time.Minute)},           // excluded
		{ContextID: 9999, UserID: 1, EventName: "assign.course_module_viewed", CRUD: models.CRUDRead, OccurredAt: start.Add(time.Hour)},   // other context
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	events, err := repo.QueryWindow(ctx, []uint{9101}, start, end)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, "assign.feedback_viewed", events[0].EventName)
	require.Equal(t, "assign.submission_created", events[1].EventName)
	require.Equal(t, "assign.grade_viewed", events[2].EventName)
}

func TestLogEventQueryWindowEmptyContexts(t *testing.T) {
	db := openTestDB(t)
	repo := NewLogEventRepository(db)

	events, err := repo.QueryWindow(context.Background(), nil, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	require.Empty(t, events)
}
