package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrDuplicateResponse is returned when a submission violates the
	// one-response-per-student-and-period constraint.
	ErrDuplicateResponse = errors.New("duplicate response")
	// ErrDuplicateKey is returned for any other unique constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")
)

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type ResponseFilters struct {
	CourseID    string     `json:"course_id"`
	Year        int        `json:"year"`
	Semester    int        `json:"semester"`
	SectionID   string     `json:"section_id"`
	SubjectID   string     `json:"subject_id"`
	PeriodStart *time.Time `json:"period_start"`
	PeriodEnd   *time.Time `json:"period_end"` // nil with PeriodStart set means an open period
	StudentName string     `json:"student_name"`
	RollNumber  string     `json:"roll_number"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
	SortOrder   string     `json:"sort_order"` // "asc", "desc" on submitted_at
}

type FormFilters struct {
	IsActive *bool  `json:"is_active"`
	Search   string `json:"search"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// ===== REPOSITORY MANAGER =====

// Repository gives access to every repository and to transactions spanning them.
type Repository interface {
	Course() CourseRepository
	Faculty() FacultyRepository
	Subject() SubjectRepository
	Form() FormRepository
	Response() ResponseRepository

	// Transaction runs fn in a database transaction; pass tx to repository calls.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
}
