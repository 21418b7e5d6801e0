package postgres

import (
	"context"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FormPostgreSQL struct {
	db *gorm.DB
}

func NewFormPostgreSQL(db *gorm.DB) repositories.FormRepository {
	return &FormPostgreSQL{db: db}
}

func (f *FormPostgreSQL) Create(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error {
	return getDB(f.db, tx).WithContext(ctx).Create(form).Error
}

func (f *FormPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error) {
	var form models.FeedbackForm
	if err := getDB(f.db, tx).WithContext(ctx).Where("id = ?", id).First(&form).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (f *FormPostgreSQL) GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error) {
	var form models.FeedbackForm
	err := getDB(f.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (f *FormPostgreSQL) Update(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error {
	return getDB(f.db, tx).WithContext(ctx).Save(form).Error
}

func (f *FormPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.FormFilters) ([]*models.FeedbackForm, int64, error) {
	query := getDB(f.db, tx).WithContext(ctx).Model(&models.FeedbackForm{})
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != "" {
		query = query.Where("name ILIKE ?", likePattern(filters.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var forms []*models.FeedbackForm
	if err := query.Order("created_at DESC").Find(&forms).Error; err != nil {
		return nil, 0, err
	}
	return forms, total, nil
}
