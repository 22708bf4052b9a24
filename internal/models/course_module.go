package models

import (
	"time"

	"gorm.io/datatypes"
)

// CourseModule is a concrete activity instance inside a course (an assignment,
// a forum, a quiz, ...). ContextID is the identifier events and grades are
// keyed by on the platform side.
type CourseModule struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	CourseID  uint              `gorm:"not null;index" json:"course_id"`
	ContextID uint              `gorm:"not null;uniqueIndex" json:"context_id"`
	Kind      string            `gorm:"size:32;not null;index" json:"kind"`
	Name      string            `gorm:"size:255;not null" json:"name"`
	OpensAt   *time.Time        `json:"opens_at"`
	ClosesAt  *time.Time        `json:"closes_at"`
	Settings  datatypes.JSONMap `gorm:"type:json" json:"settings"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Course    Course            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ActiveInWindow reports whether the module overlaps the [start, end] window.
func (m CourseModule) ActiveInWindow(start, end time.Time) bool {
	if m.OpensAt != nil && m.OpensAt.After(end) {
		return false
	}
	if m.ClosesAt != nil && !m.ClosesAt.After(start) {
		return false
	}
	return true
}

// SettingBool reads a boolean flag from the module settings blob, returning
// the fallback when the key is absent or not a bool.
func (m CourseModule) SettingBool(key string, fallback bool) bool {
	if m.Settings == nil {
		return fallback
	}
	if value, ok := m.Settings[key]; ok {
		if flag, ok := value.(bool); ok {
			return flag
		}
	}
	return fallback
}
