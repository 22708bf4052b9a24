package models

import (
	"time"

	"gorm.io/datatypes"
)

// CRUD classifiers attached to every logged event.
const (
	CRUDCreate = "c"
	CRUDRead   = "r"
	CRUDUpdate = "u"
	CRUDDelete = "d"
)

// LogEvent is one occurrence from the platform's activity log. Rows are
// immutable once written; the ingestion pipeline only appends.
type LogEvent struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ContextID  uint              `gorm:"not null;index:idx_log_events_context_time" json:"context_id"`
	UserID     uint              `gorm:"not null;index" json:"user_id"`
	EventName  string            `gorm:"size:255;not null" json:"event_name"`
	CRUD       string            `gorm:"size:1;not null" json:"crud"`
	OccurredAt time.Time         `gorm:"not null;index:idx_log_events_context_time" json:"occurred_at"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

// IsWrite reports whether the event mutated state.
func (e LogEvent) IsWrite() bool {
	return e.CRUD == CRUDCreate || e.CRUD == CRUDUpdate
}
