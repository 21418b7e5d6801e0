package postgres

import (
	"context"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	err := getDB(c.db, tx).WithContext(ctx).Create(course).Error
	return translateDuplicate(err, repositories.ErrDuplicateKey)
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	if err := getDB(c.db, tx).WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Course, error) {
	var courses []models.Course
	if len(ids) == 0 {
		return courses, nil
	}
	if err := getDB(c.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *CoursePostgreSQL) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error) {
	var course models.Course
	if err := getDB(c.db, tx).WithContext(ctx).Where("LOWER(code) = LOWER(?)", code).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	err := getDB(c.db, tx).WithContext(ctx).Save(course).Error
	return translateDuplicate(err, repositories.ErrDuplicateKey)
}

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]models.Course, error) {
	var courses []models.Course
	if err := getDB(c.db, tx).WithContext(ctx).Order("name ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
