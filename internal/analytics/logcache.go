package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/edulens/engagement-api/internal/models"
)

// EventSource reads raw activity events for a set of contexts within a time
// window, ordered by timestamp ascending.
type EventSource interface {
	QueryWindow(ctx context.Context, contextIDs []uint, start, end time.Time) ([]models.LogEvent, error)
}

// GradeSource reads grade rows for a set of contexts.
type GradeSource interface {
	ForContexts(ctx context.Context, contextIDs []uint) ([]models.GradeItem, error)
}

// eventSeries keeps one normalized representative event per (context, user,
// event name) plus every occurrence timestamp, newest first. Newest first
// lets "anything after X" checks stop at the head of the slice.
type eventSeries struct {
	first      models.LogEvent
	timestamps []time.Time
}

// LogCache indexes one scorer scope's events and grades:
// context -> user -> event name -> occurrences. It is built lazily once per
// scope and never mutated afterwards; a second Build call is a no-op.
// Instances are not safe for concurrent use, matching the
// one-scorer-per-scope contract.
type LogCache struct {
	events EventSource
	grades GradeSource
	index  map[uint]map[uint]map[string]*eventSeries
	items  map[uint]map[uint][]models.GradeItem
	built  bool
}

// NewLogCache wires a cache to its backing sources.
func NewLogCache(events EventSource, grades GradeSource) *LogCache {
	return &LogCache{events: events, grades: grades}
}

// Build populates the index for the given contexts and window. The window
// start is exclusive and the end inclusive; events outside it are discarded
// even if the source returns them.
func (c *LogCache) Build(ctx context.Context, contextIDs []uint, window Window) error {
	if c.built {
		return nil
	}
	if c.events == nil {
		return Configf("no event log source wired into the scorer")
	}

	raw, err := c.events.QueryWindow(ctx, contextIDs, window.Start, window.End)
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}

	c.index = map[uint]map[uint]map[string]*eventSeries{}
	for _, event := range raw {
		if !window.Contains(event.OccurredAt) {
			continue
		}

		users, ok := c.index[event.ContextID]
		if !ok {
			users = map[uint]map[string]*eventSeries{}
			c.index[event.ContextID] = users
		}
		byName, ok := users[event.UserID]
		if !ok {
			byName = map[string]*eventSeries{}
			users[event.UserID] = byName
		}

		series, ok := byName[event.EventName]
		if !ok {
			normalized := event
			normalized.ID = 0
			normalized.Metadata = nil
			series = &eventSeries{first: normalized}
			byName[event.EventName] = series
		}
		series.timestamps = append(series.timestamps, event.OccurredAt)
	}

	// the source orders ascending; flip each series so the newest sits first
	for _, users := range c.index {
		for _, byName := range users {
			for _, series := range byName {
				for i, j := 0, len(series.timestamps)-1; i < j; i, j = i+1, j-1 {
					series.timestamps[i], series.timestamps[j] = series.timestamps[j], series.timestamps[i]
				}
			}
		}
	}

	c.items = map[uint]map[uint][]models.GradeItem{}
	if c.grades != nil {
		rows, err := c.grades.ForContexts(ctx, contextIDs)
		if err != nil {
			return fmt.Errorf("query grades: %w", err)
		}
		for _, row := range rows {
			users, ok := c.items[row.ContextID]
			if !ok {
				users = map[uint][]models.GradeItem{}
				c.items[row.ContextID] = users
			}
			users[row.UserID] = append(users[row.UserID], row)
		}
	}

	c.built = true
	return nil
}

// AnyLog reports whether any event exists for the context. A zero userID
// matches any user.
func (c *LogCache) AnyLog(contextID, userID uint) bool {
	users := c.index[contextID]
	if userID != 0 {
		return len(users[userID]) > 0
	}
	for _, byName := range users {
		if len(byName) > 0 {
			return true
		}
	}
	return false
}

// AnyWriteLog reports whether any matched event created or updated state.
func (c *LogCache) AnyWriteLog(contextID, userID uint) bool {
	for uid, byName := range c.index[contextID] {
		if userID != 0 && uid != userID {
			continue
		}
		for _, series := range byName {
			if series.first.IsWrite() {
				return true
			}
		}
	}
	return false
}

// AnyEventAfter reports whether any of the named events occurred strictly
// after the reference time for (context, user). A zero reference disables the
// time filter and any occurrence counts.
func (c *LogCache) AnyEventAfter(contextID, userID uint, names []string, after time.Time) bool {
	byName := c.index[contextID][userID]
	for _, name := range names {
		series, ok := byName[name]
		if !ok || len(series.timestamps) == 0 {
			continue
		}
		if after.IsZero() {
			return true
		}
		if series.timestamps[0].After(after) {
			return true
		}
	}
	return false
}

// HasGrades reports whether any grade rows were loaded for the context.
func (c *LogCache) HasGrades(contextID uint) bool {
	return len(c.items[contextID]) > 0
}

// GradedDate returns the earliest graded date among the user's rows carrying
// feedback or a grade. With gradeOnly set, rows qualify on grade presence
// alone. The second return is false when no qualifying row exists.
func (c *LogCache) GradedDate(contextID, userID uint, gradeOnly bool) (time.Time, bool) {
	var earliest time.Time
	var found bool
	for _, item := range c.items[contextID][userID] {
		if item.GradedAt == nil {
			continue
		}
		qualifies := item.HasGrade()
		if !gradeOnly {
			qualifies = qualifies || item.HasFeedback()
		}
		if !qualifies {
			continue
		}
		if !found || item.GradedAt.Before(earliest) {
			earliest = *item.GradedAt
			found = true
		}
	}
	return earliest, found
}

// EventUsers lists the users with at least one event in the context.
func (c *LogCache) EventUsers(contextID uint) []uint {
	users := make([]uint, 0, len(c.index[contextID]))
	for uid := range c.index[contextID] {
		users = append(users, uid)
	}
	return users
}

// GradedUsers lists the users with at least one grade row in the context.
func (c *LogCache) GradedUsers(contextID uint) []uint {
	users := make([]uint, 0, len(c.items[contextID]))
	for uid := range c.items[contextID] {
		users = append(users, uid)
	}
	return users
}
