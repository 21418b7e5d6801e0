package repositories

import (
	"context"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Course, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	List(ctx context.Context, tx *gorm.DB) ([]models.Course, error)
}
