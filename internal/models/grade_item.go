package models

import "time"

// GradeItem is one grading record for a user within an activity context.
// Several rows may exist per (context, user); grade, feedback and the graded
// date are all optional until a teacher acts.
type GradeItem struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ContextID uint       `gorm:"not null;index:idx_grade_items_context_user" json:"context_id"`
	UserID    uint       `gorm:"not null;index:idx_grade_items_context_user" json:"user_id"`
	Grade     *float64   `json:"grade"`
	Feedback  *string    `gorm:"type:text" json:"feedback"`
	GradedAt  *time.Time `json:"graded_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasGrade reports whether a numeric grade has been recorded.
func (g GradeItem) HasGrade() bool {
	return g.Grade != nil
}

// HasFeedback reports whether written feedback has been recorded.
func (g GradeItem) HasFeedback() bool {
	return g.Feedback != nil && *g.Feedback != ""
}
