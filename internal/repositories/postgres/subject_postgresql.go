package postgres

import (
	"context"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"gorm.io/gorm"
)

type SubjectPostgreSQL struct {
	db *gorm.DB
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &SubjectPostgreSQL{db: db}
}

func (s *SubjectPostgreSQL) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	err := getDB(s.db, tx).WithContext(ctx).Create(subject).Error
	return translateDuplicate(err, repositories.ErrDuplicateKey)
}

func (s *SubjectPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := getDB(s.db, tx).WithContext(ctx).Where("id = ?", id).First(&subject).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Subject, error) {
	var subjects []models.Subject
	if len(ids) == 0 {
		return subjects, nil
	}
	if err := getDB(s.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (s *SubjectPostgreSQL) GetByKey(ctx context.Context, tx *gorm.DB, courseID string, year, semester int, name string) (*models.Subject, error) {
	var subject models.Subject
	err := getDB(s.db, tx).WithContext(ctx).
		Where("course_id = ? AND year = ? AND semester = ? AND LOWER(name) = LOWER(?)", courseID, year, semester, name).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	err := getDB(s.db, tx).WithContext(ctx).Save(subject).Error
	return translateDuplicate(err, repositories.ErrDuplicateKey)
}

func (s *SubjectPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, year, semester int) ([]models.Subject, error) {
	var subjects []models.Subject
	query := getDB(s.db, tx).WithContext(ctx).Where("course_id = ?", courseID)
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	if semester > 0 {
		query = query.Where("semester = ?", semester)
	}
	if err := query.Order("year ASC, semester ASC, name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}
