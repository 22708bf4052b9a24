package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edulens/engagement-api/internal/models"
)

// GradeItemRepository reads grading records mirrored from the host platform.
type GradeItemRepository interface {
	ForContexts(ctx context.Context, contextIDs []uint) ([]models.GradeItem, error)
}

type gradeItemRepository struct {
	db *gorm.DB
}

// NewGradeItemRepository instantiates the repository.
func NewGradeItemRepository(db *gorm.DB) GradeItemRepository {
	return &gradeItemRepository{db: db}
}

func (r *gradeItemRepository) ForContexts(ctx context.Context, contextIDs []uint) ([]models.GradeItem, error) {
	if len(contextIDs) == 0 {
		return nil, nil
	}

	var items []models.GradeItem
	err := r.db.WithContext(ctx).
		Where("context_id IN ?", contextIDs).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
