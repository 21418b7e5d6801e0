package postgres

import (
	"context"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"gorm.io/gorm"
)

type FacultyPostgreSQL struct {
	db *gorm.DB
}

func NewFacultyPostgreSQL(db *gorm.DB) repositories.FacultyRepository {
	return &FacultyPostgreSQL{db: db}
}

func (f *FacultyPostgreSQL) Create(ctx context.Context, tx *gorm.DB, faculty *models.Faculty) error {
	err := getDB(f.db, tx).WithContext(ctx).Create(faculty).Error
	return translateDuplicate(err, repositories.ErrDuplicateKey)
}

func (f *FacultyPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Faculty, error) {
	var faculty models.Faculty
	if err := getDB(f.db, tx).WithContext(ctx).Where("id = ?", id).First(&faculty).Error; err != nil {
		return nil, err
	}
	return &faculty, nil
}

func (f *FacultyPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Faculty, error) {
	var faculty []models.Faculty
	if len(ids) == 0 {
		return faculty, nil
	}
	if err := getDB(f.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&faculty).Error; err != nil {
		return nil, err
	}
	return faculty, nil
}

func (f *FacultyPostgreSQL) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*models.Faculty, error) {
	var faculty models.Faculty
	if err := getDB(f.db, tx).WithContext(ctx).Where("phone = ?", phone).First(&faculty).Error; err != nil {
		return nil, err
	}
	return &faculty, nil
}

func (f *FacultyPostgreSQL) GetByNameAndDepartment(ctx context.Context, tx *gorm.DB, name, department string) (*models.Faculty, error) {
	var faculty models.Faculty
	err := getDB(f.db, tx).WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND LOWER(department) = LOWER(?)", name, department).
		First(&faculty).Error
	if err != nil {
		return nil, err
	}
	return &faculty, nil
}

func (f *FacultyPostgreSQL) Update(ctx context.Context, tx *gorm.DB, faculty *models.Faculty) error {
	err := getDB(f.db, tx).WithContext(ctx).Save(faculty).Error
	return translateDuplicate(err, repositories.ErrDuplicateKey)
}

func (f *FacultyPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]models.Faculty, error) {
	var faculty []models.Faculty
	if err := getDB(f.db, tx).WithContext(ctx).Order("name ASC").Find(&faculty).Error; err != nil {
		return nil, err
	}
	return faculty, nil
}
