package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/analytics"
	"github.com/SAP-F-2025/feedback-service/internal/cache"
	"github.com/SAP-F-2025/feedback-service/internal/events"
	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"github.com/SAP-F-2025/feedback-service/internal/validator"
)

// ResponseService accepts student submissions and serves the raw response records
type ResponseService interface {
	Submit(ctx context.Context, req *SubmitResponseRequest) (*models.Response, error)
	GetByID(ctx context.Context, id string) (*models.Response, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query ListResponsesQuery) (*ListResponsesResult, error)
}

type responseService struct {
	repo           repositories.Repository
	cache          cache.CacheService
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	ops            *ServiceLogger
	validator      *validator.Validator
	now            func() time.Time
}

func NewResponseService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) ResponseService {
	return &responseService{
		repo:           repo,
		cache:          cacheService,
		eventPublisher: eventPublisher,
		logger:         logger,
		ops:            NewServiceLogger(logger, "responses"),
		validator:      validator,
		now:            time.Now,
	}
}

// Submit records one student's feedback for the form's open activation period.
func (s *responseService) Submit(ctx context.Context, req *SubmitResponseRequest) (response *models.Response, err error) {
	op := s.ops.WithOperation(ctx, "submit_response")
	defer func() {
		id := ""
		if response != nil {
			id = response.ID
		}
		op.LogResult(id, "response", err)
	}()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	form, err := s.repo.Form().GetByID(ctx, nil, req.FormID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	if !form.IsActive {
		return nil, businessRule(ErrFormInactive, "form_active", map[string]interface{}{"form_id": form.ID})
	}
	period, open := form.CurrentPeriod()
	if !open {
		return nil, businessRule(ErrNoActivePeriod, "form_open_period", map[string]interface{}{"form_id": form.ID})
	}

	course, err := s.repo.Course().GetByID(ctx, nil, req.CourseID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if req.SectionID != "" {
		if _, ok := course.FindSection(req.SectionID); !ok {
			return nil, newFieldError("section_id", "does not belong to the course", "section", req.SectionID)
		}
	}

	rollNumber := normalizeRollNumber(req.RollNumber)
	exists, err := s.repo.Response().ExistsForStudent(ctx, nil, rollNumber, course.ID, req.Year, req.Semester, period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to check previous submissions: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSubmission
	}

	subjectResponses, err := s.buildSubjectResponses(ctx, form, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	response = &models.Response{
		StudentName:      strings.TrimSpace(req.StudentName),
		StudentPhone:     strings.TrimSpace(req.StudentPhone),
		RollNumber:       rollNumber,
		FormID:           form.ID,
		CourseID:         course.ID,
		Year:             req.Year,
		Semester:         req.Semester,
		SectionID:        req.SectionID,
		PeriodStart:      period.Start,
		PeriodEnd:        period.End,
		SubmittedAt:      now,
		SubjectResponses: subjectResponses,
	}
	// CreatedAt marks when the student opened the form; completion time is measured from it.
	if req.StartedAt != nil && req.StartedAt.Before(now) {
		response.CreatedAt = *req.StartedAt
	}

	if err = s.repo.Response().Create(ctx, nil, response); err != nil {
		if errors.Is(err, repositories.ErrDuplicateResponse) {
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	invalidateFormAnalytics(ctx, s.cache, s.logger, form.ID)
	s.publish(ctx, events.NewResponseSubmittedEvent(events.ResponseSubmittedEvent{
		ResponseID:  response.ID,
		FormID:      form.ID,
		CourseID:    course.ID,
		Year:        response.Year,
		Semester:    response.Semester,
		SectionID:   response.SectionID,
		SubjectIDs:  subjectIDsOf(subjectResponses),
		PeriodStart: period.Start,
		SubmittedAt: now,
	}))

	return response, nil
}

// buildSubjectResponses snapshots the form's questions per subject and aligns
// the submitted answers to them by position.
func (s *responseService) buildSubjectResponses(ctx context.Context, form *models.FeedbackForm, req *SubmitResponseRequest) ([]models.SubjectResponse, error) {
	if form.IsGlobal() {
		if len(req.Subjects) != 1 {
			return nil, newFieldError("subjects", "global forms take exactly one answer set", "len", len(req.Subjects))
		}
		sr, errs := snapshotAnswers(form, nil, 0, req.Subjects[0])
		if len(errs) > 0 {
			return nil, errs
		}
		return []models.SubjectResponse{sr}, nil
	}

	ids := make([]string, 0, len(req.Subjects))
	seen := make(map[string]int, len(req.Subjects))
	var errs ValidationErrors
	for i, sa := range req.Subjects {
		field := fmt.Sprintf("subjects[%d].subject_id", i)
		if sa.SubjectID == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required", Rule: "required"})
			continue
		}
		if first, dup := seen[sa.SubjectID]; dup {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("duplicates subjects[%d]", first), Value: sa.SubjectID, Rule: "unique"})
			continue
		}
		seen[sa.SubjectID] = i
		ids = append(ids, sa.SubjectID)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	subjects, err := s.repo.Subject().GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get subjects: %w", err)
	}
	byID := make(map[string]*models.Subject, len(subjects))
	for i := range subjects {
		byID[subjects[i].ID] = &subjects[i]
	}

	out := make([]models.SubjectResponse, 0, len(req.Subjects))
	for i, sa := range req.Subjects {
		subject, ok := byID[sa.SubjectID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSubjectNotFound, sa.SubjectID)
		}
		if subject.CourseID != req.CourseID || subject.Year != req.Year || subject.Semester != req.Semester {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("subjects[%d].subject_id", i),
				Message: "is not taught in the selected course term",
				Value:   sa.SubjectID,
				Rule:    "subject_term",
			})
			continue
		}
		sr, subjectErrs := snapshotAnswers(form, subject, i, sa)
		errs = append(errs, subjectErrs...)
		out = append(out, sr)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// snapshotAnswers copies the live questions into an immutable snapshot. Lab
// subjects collect free text where the form asks a multiple-choice question.
func snapshotAnswers(form *models.FeedbackForm, subject *models.Subject, index int, sa SubjectAnswers) (models.SubjectResponse, ValidationErrors) {
	sr := models.SubjectResponse{
		SubjectID: sa.SubjectID,
		FormID:    form.ID,
		Questions: make([]models.QuestionSnapshot, len(form.Questions)),
		Answers:   make([]models.RawAnswer, len(form.Questions)),
	}
	if subject == nil {
		sr.SubjectID = ""
	}

	var errs ValidationErrors
	for i, def := range form.Questions {
		snap := models.SnapshotOf(def)
		if subject != nil && subject.IsLab && snap.Type == models.QuestionMultipleChoice {
			snap.Type = models.QuestionText
			snap.Options = nil
		}
		sr.Questions[i] = snap

		answer := models.RawAnswer("null")
		if i < len(sa.Answers) && len(sa.Answers[i]) > 0 {
			answer = sa.Answers[i]
		}
		sr.Answers[i] = answer

		field := fmt.Sprintf("subjects[%d].answers[%d]", index, i)
		if answer.IsEmpty() {
			if snap.Required {
				errs = append(errs, ValidationError{Field: field, Message: "answers a required question", Rule: "required"})
			}
			continue
		}
		if snap.Type == models.QuestionScale {
			lo, hi := snap.ScaleBounds()
			if a := analytics.Decode(snap, answer).(analytics.ScaleAnswer); !a.Valid || a.Value < lo || a.Value > hi {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("must be a whole number between %d and %d", lo, hi),
					Value:   string(answer),
					Rule:    "scale_range",
				})
			}
		}
	}
	return sr, errs
}

func (s *responseService) GetByID(ctx context.Context, id string) (*models.Response, error) {
	response, err := s.repo.Response().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return response, nil
}

func (s *responseService) Delete(ctx context.Context, id string) (err error) {
	op := s.ops.WithOperation(ctx, "delete_response")
	defer func() { op.LogResult(id, "response", err) }()

	response, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Response().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFound(err) {
			return ErrResponseNotFound
		}
		return fmt.Errorf("failed to delete response: %w", err)
	}

	invalidateFormAnalytics(ctx, s.cache, s.logger, response.FormID)
	s.publish(ctx, events.NewResponseDeletedEvent(response.ID, response.FormID))
	return nil
}

func (s *responseService) List(ctx context.Context, query ListResponsesQuery) (*ListResponsesResult, error) {
	if err := s.validator.Validate(query); err != nil {
		return nil, err
	}
	if query.Limit == 0 {
		query.Limit = 20
	}

	var period *models.ActivationPeriod
	if query.PeriodStart != "" {
		form, err := s.repo.Form().GetByID(ctx, nil, query.FormID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return nil, ErrFormNotFound
			}
			return nil, fmt.Errorf("failed to get form: %w", err)
		}
		p, err := findPeriod(form, "activation_period_start", query.PeriodStart)
		if err != nil {
			return nil, err
		}
		period = &p
	}

	page, offset := pageOffset(query.Page, query.Limit)
	filters := query.responseFilters(period)
	filters.Limit = query.Limit
	filters.Offset = offset
	filters.SortOrder = query.SortOrder

	responses, total, err := s.repo.Response().List(ctx, nil, query.FormID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	return &ListResponsesResult{
		Responses: responses,
		Total:     total,
		Page:      page,
		Limit:     query.Limit,
	}, nil
}

// publish never fails the calling operation; consumers are notified best effort.
func (s *responseService) publish(ctx context.Context, event *events.FeedbackEvent) {
	publishEvent(ctx, s.eventPublisher, s.logger, event)
}

func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.FeedbackEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}

func normalizeRollNumber(roll string) string {
	return strings.ToUpper(strings.TrimSpace(roll))
}

func subjectIDsOf(srs []models.SubjectResponse) []string {
	ids := make([]string, 0, len(srs))
	for _, sr := range srs {
		if sr.SubjectID != "" {
			ids = append(ids, sr.SubjectID)
		}
	}
	return ids
}
