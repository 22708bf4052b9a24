package models

import "time"

// Course mirrors the host platform's course record. Courses are the analysable
// unit for engagement scoring: one scorer scope covers one course.
type Course struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ShortName string     `gorm:"size:255;uniqueIndex;not null" json:"short_name"`
	FullName  string     `gorm:"size:255;not null" json:"full_name"`
	StartsAt  time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
