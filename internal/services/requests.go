package services

import (
	"strings"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/analytics"
	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
)

// PeriodLayout is the accepted format for activation period references.
const PeriodLayout = time.RFC3339

// ===== ANALYTICS & EXPORT =====

// AnalyticsQuery selects the responses an analytics run, export or raw listing covers.
type AnalyticsQuery struct {
	FormID      string `json:"form_id" form:"-" validate:"required,uuid"`
	CourseID    string `json:"course_id" form:"course_id" validate:"omitempty,uuid"`
	Year        int    `json:"year" form:"year" validate:"omitempty,min=1,max=6"`
	Semester    int    `json:"semester" form:"semester" validate:"omitempty,min=1,max=2"`
	SectionID   string `json:"section_id" form:"section_id" validate:"omitempty,uuid"`
	SubjectID   string `json:"subject_id" form:"subject_id" validate:"omitempty,uuid"`
	FacultyID   string `json:"faculty_id" form:"faculty_id" validate:"omitempty,max=36"`
	PeriodStart string `json:"activation_period_start" form:"activation_period_start" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	StudentName string `json:"student_name" form:"student_name" validate:"max=100"`
	RollNumber  string `json:"roll_number" form:"roll_number" validate:"max=50"`
}

func (q AnalyticsQuery) filters(period *models.ActivationPeriod) analytics.Filters {
	return analytics.Filters{
		CourseID:    q.CourseID,
		Year:        q.Year,
		Semester:    q.Semester,
		SectionID:   q.SectionID,
		SubjectID:   q.SubjectID,
		FacultyID:   q.FacultyID,
		Period:      period,
		StudentName: strings.TrimSpace(q.StudentName),
		RollNumber:  strings.TrimSpace(q.RollNumber),
	}
}

// responseFilters pushes everything but the faculty constraint down to storage.
func (q AnalyticsQuery) responseFilters(period *models.ActivationPeriod) repositories.ResponseFilters {
	f := repositories.ResponseFilters{
		CourseID:    q.CourseID,
		Year:        q.Year,
		Semester:    q.Semester,
		SectionID:   q.SectionID,
		SubjectID:   q.SubjectID,
		StudentName: strings.TrimSpace(q.StudentName),
		RollNumber:  strings.TrimSpace(q.RollNumber),
	}
	if period != nil {
		start := period.Start
		f.PeriodStart = &start
		f.PeriodEnd = period.End
	}
	return f
}

// ComparisonQuery compares the same filters across activation periods.
// An empty Periods list compares every period of the form.
type ComparisonQuery struct {
	AnalyticsQuery
	Periods []string `json:"periods" form:"periods" validate:"omitempty,max=24,dive,datetime=2006-01-02T15:04:05Z07:00"`
}

type ListResponsesQuery struct {
	AnalyticsQuery
	Page      int    `json:"page" form:"page" validate:"omitempty,min=1"`
	Limit     int    `json:"limit" form:"limit" validate:"omitempty,min=1,max=200"`
	SortOrder string `json:"sort_order" form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type ListResponsesResult struct {
	Responses []*models.Response `json:"responses"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
}

// ===== RESPONSES =====

type SubmitResponseRequest struct {
	FormID       string     `json:"form_id" validate:"required,uuid"`
	StudentName  string     `json:"student_name" validate:"required,min=1,max=100"`
	StudentPhone string     `json:"student_phone" validate:"omitempty,min=5,max=20"`
	RollNumber   string     `json:"roll_number" validate:"required,min=1,max=50"`
	CourseID     string     `json:"course_id" validate:"required,uuid"`
	Year         int        `json:"year" validate:"required,min=1,max=6"`
	Semester     int        `json:"semester" validate:"required,min=1,max=2"`
	SectionID    string     `json:"section_id" validate:"omitempty,uuid"`
	StartedAt    *time.Time `json:"started_at"`
	// Global forms take a single entry without a subject.
	Subjects []SubjectAnswers `json:"subjects" validate:"required,min=1,max=30,dive"`
}

type SubjectAnswers struct {
	SubjectID string             `json:"subject_id" validate:"omitempty,uuid"`
	Answers   []models.RawAnswer `json:"answers" validate:"max=200"`
}

// ===== FORMS =====

type CreateFormRequest struct {
	Name               string                      `json:"name" validate:"required,min=1,max=200"`
	Description        string                      `json:"description" validate:"max=2000"`
	Questions          []models.QuestionDefinition `json:"questions" validate:"required,min=1,max=100,dive"`
	Kind               models.FormKind             `json:"kind" validate:"omitempty,form_kind"`
	TrainingName       *string                     `json:"training_name"`
	AssignedFacultyIDs []string                    `json:"assigned_faculty_ids" validate:"omitempty,dive,uuid"`
}

type ListFormsQuery struct {
	IsActive *bool  `json:"is_active" form:"is_active"`
	Search   string `json:"search" form:"search" validate:"max=200"`
	Page     int    `json:"page" form:"page" validate:"omitempty,min=1"`
	Limit    int    `json:"limit" form:"limit" validate:"omitempty,min=1,max=100"`
}

type ListFormsResult struct {
	Forms []*models.FeedbackForm `json:"forms"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

// ===== IMPORTS =====

type ImportOptions struct {
	// Merge keeps a subject's default faculty and section assignments side by
	// side instead of letting the imported row replace the other kind.
	Merge bool `json:"merge" form:"merge"`
}

func pageOffset(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * limit
}
