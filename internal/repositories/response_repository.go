package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	// Create returns ErrDuplicateResponse when the student already responded
	// for the same course term and activation period.
	Create(ctx context.Context, tx *gorm.DB, response *models.Response) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Response, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// ListByForm loads every response of a form matching filters, ignoring pagination.
	ListByForm(ctx context.Context, tx *gorm.DB, formID string, filters ResponseFilters) ([]models.Response, error)
	// StreamByForm hands matching responses to fn in batches of batchSize.
	StreamByForm(ctx context.Context, tx *gorm.DB, formID string, filters ResponseFilters, batchSize int, fn func(batch []models.Response) error) error
	// List is the paginated raw listing.
	List(ctx context.Context, tx *gorm.DB, formID string, filters ResponseFilters) ([]*models.Response, int64, error)

	ExistsForStudent(ctx context.Context, tx *gorm.DB, rollNumber, courseID string, year, semester int, periodStart time.Time) (bool, error)
}
