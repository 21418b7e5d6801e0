package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation with the form-level rules tags cannot express
type Validator struct {
	structValidator *validator.Validate
	formValidator   *FormValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		formValidator:   NewFormValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures into ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Form returns the form validator
func (v *Validator) Form() *FormValidator {
	return v.formValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("form_kind", validateFormKind)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateFormKind(fl validator.FieldLevel) bool {
	switch models.FormKind(fl.Field().String()) {
	case models.FormStandard, models.FormGlobal:
		return true
	}
	return false
}
