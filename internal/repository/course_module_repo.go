package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edulens/engagement-api/internal/models"
)

// CourseModuleRepository reads the activity instances mirrored from the host
// platform.
type CourseModuleRepository interface {
	GetByID(ctx context.Context, id uint) (models.CourseModule, error)
	ListActiveInWindow(ctx context.Context, courseID uint, kind string, start, end time.Time) ([]models.CourseModule, error)
}

type courseModuleRepository struct {
	db *gorm.DB
}

// NewCourseModuleRepository instantiates the repository.
func NewCourseModuleRepository(db *gorm.DB) CourseModuleRepository {
	return &courseModuleRepository{db: db}
}

func (r *courseModuleRepository) GetByID(ctx context.Context, id uint) (models.CourseModule, error) {
	var module models.CourseModule
	if err := r.db.WithContext(ctx).First(&module, id).Error; err != nil {
		return models.CourseModule{}, err
	}
	return module, nil
}

func (r *courseModuleRepository) ListActiveInWindow(ctx context.Context, courseID uint, kind string, start, end time.Time) ([]models.CourseModule, error) {
	var modules []models.CourseModule
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Where("kind = ?", kind).
		Where("(opens_at IS NULL OR opens_at <= ?)", end).
		Where("(closes_at IS NULL OR closes_at > ?)", start).
		Order("id ASC").
		Find(&modules).Error
	if err != nil {
		return nil, err
	}
	return modules, nil
}
