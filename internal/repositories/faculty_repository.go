package repositories

import (
	"context"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"gorm.io/gorm"
)

type FacultyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, faculty *models.Faculty) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Faculty, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Faculty, error)
	GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*models.Faculty, error)
	// GetByNameAndDepartment matches case-insensitively.
	GetByNameAndDepartment(ctx context.Context, tx *gorm.DB, name, department string) (*models.Faculty, error)
	Update(ctx context.Context, tx *gorm.DB, faculty *models.Faculty) error
	List(ctx context.Context, tx *gorm.DB) ([]models.Faculty, error)
}
