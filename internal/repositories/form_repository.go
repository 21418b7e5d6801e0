package repositories

import (
	"context"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"gorm.io/gorm"
)

type FormRepository interface {
	Create(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error)
	// GetForUpdate locks the form row for the rest of tx.
	GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error)
	Update(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error
	List(ctx context.Context, tx *gorm.DB, filters FormFilters) ([]*models.FeedbackForm, int64, error)
}
