package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/feedback-service/internal/models"
)

// FormValidator checks the parts of a feedback form that depend on each other:
// question ids, option lists, scale bounds and the global-form fields.
type FormValidator struct{}

func NewFormValidator() *FormValidator {
	return &FormValidator{}
}

// ValidateForm returns every problem found, or nil.
func (v *FormValidator) ValidateForm(form *models.FeedbackForm) ValidationErrors {
	var errs ValidationErrors

	if form.Kind == models.FormGlobal {
		if form.TrainingName == nil || strings.TrimSpace(*form.TrainingName) == "" {
			errs = append(errs, ValidationError{Field: "training_name", Message: "is required for global forms", Rule: "required"})
		}
	} else if form.TrainingName != nil || len(form.AssignedFacultyIDs) > 0 {
		errs = append(errs, ValidationError{Field: "kind", Message: "training fields are only allowed on global forms", Value: form.Kind, Rule: "form_kind"})
	}

	return append(errs, v.ValidateQuestions(form.Questions)...)
}

// ValidateQuestions checks question definitions in order.
func (v *FormValidator) ValidateQuestions(questions []models.QuestionDefinition) ValidationErrors {
	var errs ValidationErrors
	if len(questions) == 0 {
		return append(errs, ValidationError{Field: "questions", Message: "must contain at least one question", Rule: "min"})
	}

	ids := make(map[string]int, len(questions))
	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)

		if q.ID != "" {
			if first, dup := ids[q.ID]; dup {
				errs = append(errs, ValidationError{
					Field:   field + ".id",
					Message: fmt.Sprintf("duplicates questions[%d].id", first),
					Value:   q.ID,
					Rule:    "unique",
				})
			} else {
				ids[q.ID] = i
			}
		}

		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, ValidationError{Field: field + ".text", Message: "is required", Rule: "required"})
		}

		switch q.Type {
		case models.QuestionMultipleChoice:
			errs = append(errs, v.validateOptions(field, q.Options)...)
		case models.QuestionScale:
			errs = append(errs, v.validateScale(field, q)...)
		case models.QuestionText, models.QuestionTextarea, models.QuestionYesNo:
			if len(q.Options) > 0 {
				errs = append(errs, ValidationError{Field: field + ".options", Message: "only multiple-choice questions take options", Rule: "excluded"})
			}
		default:
			errs = append(errs, ValidationError{Field: field + ".type", Message: "must be a valid question type (text, textarea, scale, yesno, multiplechoice)", Value: q.Type, Rule: "question_type"})
		}
	}
	return errs
}

func (v *FormValidator) validateOptions(field string, options []string) ValidationErrors {
	var errs ValidationErrors
	if len(options) < 2 {
		errs = append(errs, ValidationError{Field: field + ".options", Message: "must have at least 2 options", Rule: "min"})
	}
	seen := make(map[string]bool, len(options))
	for j, opt := range options {
		key := strings.ToLower(strings.TrimSpace(opt))
		if key == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s.options[%d]", field, j), Message: "must not be empty", Rule: "required"})
			continue
		}
		if seen[key] {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s.options[%d]", field, j), Message: "duplicates another option", Value: opt, Rule: "unique"})
		}
		seen[key] = true
	}
	return errs
}

func (v *FormValidator) validateScale(field string, q models.QuestionDefinition) ValidationErrors {
	lo, hi := models.DefaultScaleMin, models.DefaultScaleMax
	if q.ScaleMin != nil {
		lo = *q.ScaleMin
	}
	if q.ScaleMax != nil {
		hi = *q.ScaleMax
	}
	if lo >= hi {
		return ValidationErrors{{Field: field + ".scale_max", Message: "must be greater than scale_min", Value: hi, Rule: "gtfield"}}
	}
	if hi-lo > 100 {
		return ValidationErrors{{Field: field + ".scale_max", Message: "scale may span at most 100 steps", Value: hi, Rule: "max"}}
	}
	return nil
}
