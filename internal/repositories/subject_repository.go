package repositories

import (
	"context"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"gorm.io/gorm"
)

type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Subject, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Subject, error)
	// GetByKey finds the subject named name (case-insensitive) in a course term.
	GetByKey(ctx context.Context, tx *gorm.DB, courseID string, year, semester int, name string) (*models.Subject, error)
	Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, year, semester int) ([]models.Subject, error)
}
