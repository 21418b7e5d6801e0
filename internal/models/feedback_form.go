package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionTextarea       QuestionType = "textarea"
	QuestionScale          QuestionType = "scale"
	QuestionYesNo          QuestionType = "yesno"
	QuestionMultipleChoice QuestionType = "multiplechoice"
)

func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionScale, QuestionYesNo, QuestionMultipleChoice:
		return true
	}
	return false
}

func (t QuestionType) IsText() bool {
	return t == QuestionText || t == QuestionTextarea
}

const (
	DefaultScaleMin = 1
	DefaultScaleMax = 5
)

// QuestionDefinition is the admin-owned, editable question attached to a live form.
type QuestionDefinition struct {
	ID       string       `json:"id"`
	Text     string       `json:"text" validate:"required,min=1,max=1000"`
	Type     QuestionType `json:"type" validate:"required,question_type"`
	Required bool         `json:"required"`
	Options  []string     `json:"options,omitempty" validate:"required_if=Type multiplechoice,dive,required"`
	ScaleMin *int         `json:"scale_min,omitempty"`
	ScaleMax *int         `json:"scale_max,omitempty"`
}

// ActivationPeriod is an interval during which a form accepts submissions.
// A nil End marks the currently open period.
type ActivationPeriod struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

func (p ActivationPeriod) IsOpen() bool {
	return p.End == nil
}

// Contains reports whether t falls in [Start, End], or [Start, +inf) for an open period.
func (p ActivationPeriod) Contains(t time.Time) bool {
	if t.Before(p.Start) {
		return false
	}
	return p.End == nil || !t.After(*p.End)
}

// Key identifies the period; periods are addressed by their start instant.
func (p ActivationPeriod) Key() string {
	return p.Start.UTC().Format(time.RFC3339Nano)
}

type FormKind string

const (
	FormStandard FormKind = "standard"
	FormGlobal   FormKind = "global"
)

type FeedbackForm struct {
	ID                string                                `json:"id" gorm:"primaryKey;size:36"`
	Name              string                                `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description       string                                `json:"description" gorm:"type:text" validate:"max=2000"`
	Questions         datatypes.JSONSlice[QuestionDefinition] `json:"questions" gorm:"type:jsonb" validate:"required,min=1,dive"`
	IsActive          bool                                  `json:"is_active" gorm:"default:false;index"`
	ActivationPeriods datatypes.JSONSlice[ActivationPeriod]   `json:"activation_periods" gorm:"type:jsonb"`

	Kind               FormKind                   `json:"kind" gorm:"size:20;default:standard" validate:"omitempty,form_kind"`
	TrainingName       *string                    `json:"training_name,omitempty" gorm:"size:200"`
	AssignedFacultyIDs datatypes.JSONSlice[string] `json:"assigned_faculty_ids,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (FeedbackForm) TableName() string {
	return "feedback_forms"
}

func (f *FeedbackForm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	for i := range f.Questions {
		if f.Questions[i].ID == "" {
			f.Questions[i].ID = uuid.NewString()
		}
	}
	if f.Kind == "" {
		f.Kind = FormStandard
	}
	return nil
}

// FormVariant is either StandardForm or GlobalForm.
type FormVariant interface {
	formVariant()
}

// StandardForm collects feedback per curriculum subject; faculty come from subject assignment.
type StandardForm struct{}

// GlobalForm collects feedback for a named training with its own faculty list.
type GlobalForm struct {
	TrainingName       string
	AssignedFacultyIDs []string
}

func (StandardForm) formVariant() {}
func (GlobalForm) formVariant()   {}

func (f *FeedbackForm) Variant() FormVariant {
	if f.Kind != FormGlobal {
		return StandardForm{}
	}
	g := GlobalForm{AssignedFacultyIDs: append([]string(nil), f.AssignedFacultyIDs...)}
	if f.TrainingName != nil {
		g.TrainingName = *f.TrainingName
	}
	return g
}

func (f *FeedbackForm) IsGlobal() bool {
	_, ok := f.Variant().(GlobalForm)
	return ok
}

// CurrentPeriod returns the open activation period, if any.
func (f *FeedbackForm) CurrentPeriod() (ActivationPeriod, bool) {
	for _, p := range f.ActivationPeriods {
		if p.IsOpen() {
			return p, true
		}
	}
	return ActivationPeriod{}, false
}

// PeriodStartingAt finds the period whose start equals start.
func (f *FeedbackForm) PeriodStartingAt(start time.Time) (ActivationPeriod, bool) {
	for _, p := range f.ActivationPeriods {
		if p.Start.Equal(start) {
			return p, true
		}
	}
	return ActivationPeriod{}, false
}

// OpenPeriod closes any open period at now and appends a new open one.
func (f *FeedbackForm) OpenPeriod(now time.Time) ActivationPeriod {
	f.ClosePeriod(now)
	p := ActivationPeriod{Start: now}
	f.ActivationPeriods = append(f.ActivationPeriods, p)
	f.IsActive = true
	return p
}

// ClosePeriod ends the open period at now. It reports whether one was open.
func (f *FeedbackForm) ClosePeriod(now time.Time) bool {
	closed := false
	for i := range f.ActivationPeriods {
		if f.ActivationPeriods[i].End == nil {
			end := now
			f.ActivationPeriods[i].End = &end
			closed = true
		}
	}
	return closed
}

// AcceptsSubmissions reports whether the form is active with an open period.
func (f *FeedbackForm) AcceptsSubmissions() bool {
	_, open := f.CurrentPeriod()
	return f.IsActive && open
}
