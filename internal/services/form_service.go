package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/cache"
	"github.com/SAP-F-2025/feedback-service/internal/events"
	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"github.com/SAP-F-2025/feedback-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FormService manages feedback forms and their activation history
type FormService interface {
	Create(ctx context.Context, req *CreateFormRequest) (*models.FeedbackForm, error)
	GetByID(ctx context.Context, id string) (*models.FeedbackForm, error)
	List(ctx context.Context, query ListFormsQuery) (*ListFormsResult, error)

	// Activate closes any open period and opens a new one.
	Activate(ctx context.Context, id string) (*models.FeedbackForm, error)
	Deactivate(ctx context.Context, id string) (*models.FeedbackForm, error)
	ListPeriods(ctx context.Context, id string) ([]models.ActivationPeriod, error)
}

type formService struct {
	repo           repositories.Repository
	cache          cache.CacheService
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	ops            *ServiceLogger
	validator      *validator.Validator
	now            func() time.Time
}

func NewFormService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) FormService {
	return &formService{
		repo:           repo,
		cache:          cacheService,
		eventPublisher: eventPublisher,
		logger:         logger,
		ops:            NewServiceLogger(logger, "forms"),
		validator:      validator,
		now:            time.Now,
	}
}

func (s *formService) Create(ctx context.Context, req *CreateFormRequest) (form *models.FeedbackForm, err error) {
	op := s.ops.WithOperation(ctx, "create_form")
	defer func() {
		id := ""
		if form != nil {
			id = form.ID
		}
		op.LogResult(id, "feedback_form", err)
	}()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = models.FormStandard
	}
	candidate := &models.FeedbackForm{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Questions:    datatypes.JSONSlice[models.QuestionDefinition](req.Questions),
		Kind:         kind,
		TrainingName: req.TrainingName,
	}
	if len(req.AssignedFacultyIDs) > 0 {
		candidate.AssignedFacultyIDs = datatypes.JSONSlice[string](req.AssignedFacultyIDs)
	}

	if errs := s.validator.Form().ValidateForm(candidate); len(errs) > 0 {
		return nil, errs
	}

	if len(candidate.AssignedFacultyIDs) > 0 {
		if err = s.checkFacultyExist(ctx, candidate.AssignedFacultyIDs); err != nil {
			return nil, err
		}
	}

	if err = s.repo.Form().Create(ctx, nil, candidate); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}
	return candidate, nil
}

func (s *formService) checkFacultyExist(ctx context.Context, ids []string) error {
	found, err := s.repo.Faculty().GetByIDs(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("failed to get faculty: %w", err)
	}
	known := make(map[string]struct{}, len(found))
	for _, f := range found {
		known[f.ID] = struct{}{}
	}

	var errs ValidationErrors
	for i, id := range ids {
		if _, ok := known[id]; !ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("assigned_faculty_ids[%d]", i),
				Message: "does not reference an existing faculty",
				Value:   id,
				Rule:    "exists",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *formService) GetByID(ctx context.Context, id string) (*models.FeedbackForm, error) {
	form, err := s.repo.Form().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return form, nil
}

func (s *formService) List(ctx context.Context, query ListFormsQuery) (*ListFormsResult, error) {
	if err := s.validator.Validate(query); err != nil {
		return nil, err
	}
	if query.Limit == 0 {
		query.Limit = 20
	}
	page, offset := pageOffset(query.Page, query.Limit)

	forms, total, err := s.repo.Form().List(ctx, nil, repositories.FormFilters{
		IsActive: query.IsActive,
		Search:   strings.TrimSpace(query.Search),
		Limit:    query.Limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return &ListFormsResult{Forms: forms, Total: total, Page: page, Limit: query.Limit}, nil
}

func (s *formService) Activate(ctx context.Context, id string) (form *models.FeedbackForm, err error) {
	op := s.ops.WithOperation(ctx, "activate_form")
	defer func() { op.LogResult(id, "feedback_form", err) }()

	var opened models.ActivationPeriod
	form, err = s.updateLocked(ctx, id, func(f *models.FeedbackForm) error {
		opened = f.OpenPeriod(s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateFormAnalytics(ctx, s.cache, s.logger, form.ID)
	publishEvent(ctx, s.eventPublisher, s.logger, events.NewFormActivationEvent(events.EventFormActivated, events.FormActivationEvent{
		FormID:      form.ID,
		FormName:    form.Name,
		PeriodStart: opened.Start,
	}))
	return form, nil
}

func (s *formService) Deactivate(ctx context.Context, id string) (form *models.FeedbackForm, err error) {
	op := s.ops.WithOperation(ctx, "deactivate_form")
	defer func() { op.LogResult(id, "feedback_form", err) }()

	var closed models.ActivationPeriod
	form, err = s.updateLocked(ctx, id, func(f *models.FeedbackForm) error {
		current, open := f.CurrentPeriod()
		if !f.IsActive && !open {
			return businessRule(ErrFormInactive, "form_active", map[string]interface{}{"form_id": f.ID})
		}
		f.ClosePeriod(s.now())
		f.IsActive = false
		if open {
			closed, _ = f.PeriodStartingAt(current.Start)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateFormAnalytics(ctx, s.cache, s.logger, form.ID)
	publishEvent(ctx, s.eventPublisher, s.logger, events.NewFormActivationEvent(events.EventFormDeactivated, events.FormActivationEvent{
		FormID:      form.ID,
		FormName:    form.Name,
		PeriodStart: closed.Start,
		PeriodEnd:   closed.End,
	}))
	return form, nil
}

func (s *formService) ListPeriods(ctx context.Context, id string) ([]models.ActivationPeriod, error) {
	form, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	periods := make([]models.ActivationPeriod, len(form.ActivationPeriods))
	copy(periods, form.ActivationPeriods)
	return periods, nil
}

// updateLocked applies mutate to the form under a row lock, so concurrent
// activations cannot leave two open periods behind.
func (s *formService) updateLocked(ctx context.Context, id string, mutate func(*models.FeedbackForm) error) (*models.FeedbackForm, error) {
	var form *models.FeedbackForm
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		form, err = s.repo.Form().GetForUpdate(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrFormNotFound
			}
			return fmt.Errorf("failed to get form: %w", err)
		}
		if err := mutate(form); err != nil {
			return err
		}
		if err := s.repo.Form().Update(ctx, tx, form); err != nil {
			return fmt.Errorf("failed to update form: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return form, nil
}
