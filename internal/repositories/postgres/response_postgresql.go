package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

// Create inserts the response. The idx_response_submission unique index backs
// the duplicate check done by callers before insert.
func (r *ResponsePostgreSQL) Create(ctx context.Context, tx *gorm.DB, response *models.Response) error {
	err := getDB(r.db, tx).WithContext(ctx).Create(response).Error
	return translateDuplicate(err, repositories.ErrDuplicateResponse)
}

func (r *ResponsePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Response, error) {
	var response models.Response
	if err := getDB(r.db, tx).WithContext(ctx).Where("id = ?", id).First(&response).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *ResponsePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := getDB(r.db, tx).WithContext(ctx).Where("id = ?", id).Delete(&models.Response{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ResponsePostgreSQL) ListByForm(ctx context.Context, tx *gorm.DB, formID string, filters repositories.ResponseFilters) ([]models.Response, error) {
	var responses []models.Response
	query := r.filtered(ctx, tx, formID, filters).Order("submitted_at ASC, id ASC")
	if err := query.Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

// StreamByForm pages through responses with a (submitted_at, id) keyset so
// memory stays bounded by batchSize regardless of the result size.
func (r *ResponsePostgreSQL) StreamByForm(ctx context.Context, tx *gorm.DB, formID string, filters repositories.ResponseFilters, batchSize int, fn func(batch []models.Response) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	var (
		lastAt time.Time
		lastID string
	)
	for {
		query := r.filtered(ctx, tx, formID, filters)
		if lastID != "" {
			query = query.Where("(submitted_at, id) > (?, ?)", lastAt, lastID)
		}

		var batch []models.Response
		if err := query.Order("submitted_at ASC, id ASC").Limit(batchSize).Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}

		last := batch[len(batch)-1]
		lastAt, lastID = last.SubmittedAt, last.ID
	}
}

func (r *ResponsePostgreSQL) List(ctx context.Context, tx *gorm.DB, formID string, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	query := r.filtered(ctx, tx, formID, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "submitted_at DESC"
	if filters.SortOrder == "asc" {
		order = "submitted_at ASC"
	}
	query = query.Order(order)
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var responses []*models.Response
	if err := query.Find(&responses).Error; err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

func (r *ResponsePostgreSQL) ExistsForStudent(ctx context.Context, tx *gorm.DB, rollNumber, courseID string, year, semester int, periodStart time.Time) (bool, error) {
	var count int64
	err := getDB(r.db, tx).WithContext(ctx).
		Model(&models.Response{}).
		Where("roll_number = ? AND course_id = ? AND year = ? AND semester = ? AND period_start = ?",
			rollNumber, courseID, year, semester, periodStart).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// filtered pushes the response-level filters into SQL. The subject filter uses
// jsonb containment on subject_responses.
func (r *ResponsePostgreSQL) filtered(ctx context.Context, tx *gorm.DB, formID string, f repositories.ResponseFilters) *gorm.DB {
	query := getDB(r.db, tx).WithContext(ctx).Model(&models.Response{})
	if formID != "" {
		query = query.Where("form_id = ?", formID)
	}
	if f.CourseID != "" {
		query = query.Where("course_id = ?", f.CourseID)
	}
	if f.Year > 0 {
		query = query.Where("year = ?", f.Year)
	}
	if f.Semester > 0 {
		query = query.Where("semester = ?", f.Semester)
	}
	if f.SectionID != "" {
		query = query.Where("section_id = ?", f.SectionID)
	}
	if f.PeriodStart != nil {
		query = query.Where("submitted_at >= ?", *f.PeriodStart)
		if f.PeriodEnd != nil {
			query = query.Where("submitted_at <= ?", *f.PeriodEnd)
		}
	}
	if f.StudentName != "" {
		query = query.Where("student_name ILIKE ?", likePattern(f.StudentName))
	}
	if f.RollNumber != "" {
		query = query.Where("roll_number ILIKE ?", likePattern(f.RollNumber))
	}
	if f.SubjectID != "" {
		containment, _ := json.Marshal([]map[string]string{{"subject_id": f.SubjectID}})
		query = query.Where("subject_responses @> ?::jsonb", string(containment))
	}
	return query
}
