package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edulens/engagement-api/internal/models"
)

// LogEventRepository persists and reads the append-only activity event log.
type LogEventRepository interface {
	Create(ctx context.Context, event *models.LogEvent) error
	// QueryWindow returns events for the given contexts with start exclusive
	// and end inclusive, ordered by occurrence time ascending.
	QueryWindow(ctx context.Context, contextIDs []uint, start, end time.Time) ([]models.LogEvent, error)
}

type logEventRepository struct {
	db *gorm.DB
}

// NewLogEventRepository instantiates the repository.
func NewLogEventRepository(db *gorm.DB) LogEventRepository {
	return &logEventRepository{db: db}
}

func (r *logEventRepository) Create(ctx context.Context, event *models.LogEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *logEventRepository) QueryWindow(ctx context.Context, contextIDs []uint, start, end time.Time) ([]models.LogEvent, error) {
	if len(contextIDs) == 0 {
		return nil, nil
	}

	var events []models.LogEvent
	err := r.db.WithContext(ctx).
		Where("context_id IN ?", contextIDs).
		Where("occurred_at > ?", start).
		Where("occurred_at <= ?", end).
		Order("occurred_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
