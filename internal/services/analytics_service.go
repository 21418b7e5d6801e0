package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/analytics"
	"github.com/SAP-F-2025/feedback-service/internal/cache"
	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"github.com/SAP-F-2025/feedback-service/internal/validator"
)

// AnalyticsService builds faculty-scoped analytics for feedback forms
type AnalyticsService interface {
	GetFormAnalytics(ctx context.Context, query AnalyticsQuery) (*analytics.Result, error)
	ComparePeriods(ctx context.Context, query ComparisonQuery) (*analytics.Comparison, error)
}

type analyticsService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	builder   *analytics.Builder
	cacheTTL  time.Duration
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
}

func NewAnalyticsService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	builder *analytics.Builder,
	cacheTTL time.Duration,
	logger *slog.Logger,
	validator *validator.Validator,
) AnalyticsService {
	return &analyticsService{
		repo:      repo,
		cache:     cacheService,
		builder:   builder,
		cacheTTL:  cacheTTL,
		logger:    logger,
		ops:       NewServiceLogger(logger, "analytics"),
		validator: validator,
	}
}

func (s *analyticsService) GetFormAnalytics(ctx context.Context, query AnalyticsQuery) (result *analytics.Result, err error) {
	op := s.ops.WithOperation(ctx, "get_form_analytics")
	defer func() { op.LogResult(query.FormID, "feedback_form", err) }()

	if err = s.validator.Validate(query); err != nil {
		return nil, err
	}

	form, period, err := s.resolveScope(ctx, query)
	if err != nil {
		return nil, err
	}

	key := analyticsCacheKey(form.ID, "analytics", query)
	var cached analytics.Result
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	responses, catalog, err := loadResponsesAndCatalog(ctx, s.repo, form.ID, query.responseFilters(period))
	if err != nil {
		return nil, err
	}

	result = s.builder.Build(form, responses, catalog, query.filters(period))
	s.cacheSet(ctx, key, result)
	return result, nil
}

func (s *analyticsService) ComparePeriods(ctx context.Context, query ComparisonQuery) (comparison *analytics.Comparison, err error) {
	op := s.ops.WithOperation(ctx, "compare_periods")
	defer func() { op.LogResult(query.FormID, "feedback_form", err) }()

	if err = s.validator.Validate(query); err != nil {
		return nil, err
	}
	// Each period brings its own window; a single-period filter makes no sense here.
	query.PeriodStart = ""

	form, _, err := s.resolveScope(ctx, query.AnalyticsQuery)
	if err != nil {
		return nil, err
	}

	periods, err := selectPeriods(form, query.Periods)
	if err != nil {
		return nil, err
	}

	key := analyticsCacheKey(form.ID, "compare", query)
	var cached analytics.Comparison
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	responses, catalog, err := loadResponsesAndCatalog(ctx, s.repo, form.ID, query.responseFilters(nil))
	if err != nil {
		return nil, err
	}

	comparison = s.builder.Compare(form, responses, catalog, periods, query.filters(nil))
	s.cacheSet(ctx, key, comparison)
	return comparison, nil
}

// resolveScope loads the form and checks the references in query before any
// aggregation starts.
func (s *analyticsService) resolveScope(ctx context.Context, query AnalyticsQuery) (*models.FeedbackForm, *models.ActivationPeriod, error) {
	form, err := s.repo.Form().GetByID(ctx, nil, query.FormID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil, ErrFormNotFound
		}
		return nil, nil, fmt.Errorf("failed to get form: %w", err)
	}

	if query.CourseID != "" {
		if _, err := s.repo.Course().GetByID(ctx, nil, query.CourseID); err != nil {
			if repositories.IsNotFound(err) {
				return nil, nil, ErrCourseNotFound
			}
			return nil, nil, fmt.Errorf("failed to get course: %w", err)
		}
	}

	if query.PeriodStart == "" {
		return form, nil, nil
	}
	period, err := findPeriod(form, "activation_period_start", query.PeriodStart)
	if err != nil {
		return nil, nil, err
	}
	return form, &period, nil
}

// findPeriod parses ref and looks up the form period starting at that instant.
func findPeriod(form *models.FeedbackForm, field, ref string) (models.ActivationPeriod, error) {
	start, err := time.Parse(PeriodLayout, ref)
	if err != nil {
		return models.ActivationPeriod{}, newFieldError(field, "must be an RFC 3339 timestamp", "datetime", ref)
	}
	period, ok := form.PeriodStartingAt(start)
	if !ok {
		return models.ActivationPeriod{}, errors.Join(ErrPeriodNotFound,
			newFieldError(field, "does not match any activation period of the form", "period", ref))
	}
	return period, nil
}

func selectPeriods(form *models.FeedbackForm, refs []string) ([]models.ActivationPeriod, error) {
	if len(refs) == 0 {
		return append([]models.ActivationPeriod(nil), form.ActivationPeriods...), nil
	}
	periods := make([]models.ActivationPeriod, 0, len(refs))
	for i, ref := range refs {
		p, err := findPeriod(form, fmt.Sprintf("periods[%d]", i), ref)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// ===== CACHE =====

// analyticsCachePattern matches every cached result of a form.
func analyticsCachePattern(formID string) string {
	return fmt.Sprintf("analytics:form:%s:*", formID)
}

func analyticsCacheKey(formID, kind string, query interface{}) string {
	payload, _ := json.Marshal(query)
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("analytics:form:%s:%s:%s", formID, kind, hex.EncodeToString(sum[:12]))
}

func (s *analyticsService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		s.logger.Debug("Analytics cache hit", "key", key)
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Analytics cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *analyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("Analytics cache write failed", "key", key, "error", err)
	}
}

// invalidateFormAnalytics drops cached results after the form's data changed.
func invalidateFormAnalytics(ctx context.Context, c cache.CacheService, logger *slog.Logger, formID string) {
	if c == nil {
		return
	}
	if err := c.DeletePattern(ctx, analyticsCachePattern(formID)); err != nil {
		logger.Warn("Failed to invalidate analytics cache", "form_id", formID, "error", err)
	}
}
