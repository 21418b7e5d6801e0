package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db       *gorm.DB
	course   repositories.CourseRepository
	faculty  repositories.FacultyRepository
	subject  repositories.SubjectRepository
	form     repositories.FormRepository
	response repositories.ResponseRepository
}

// NewRepository wires every gorm-backed repository around one connection pool.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		course:   NewCoursePostgreSQL(db),
		faculty:  NewFacultyPostgreSQL(db),
		subject:  NewSubjectPostgreSQL(db),
		form:     NewFormPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
	}
}

func (r *repository) Course() repositories.CourseRepository     { return r.course }
func (r *repository) Faculty() repositories.FacultyRepository   { return r.faculty }
func (r *repository) Subject() repositories.SubjectRepository   { return r.subject }
func (r *repository) Form() repositories.FormRepository         { return r.form }
func (r *repository) Response() repositories.ResponseRepository { return r.response }

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
