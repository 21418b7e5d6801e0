package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/analytics"
	"github.com/SAP-F-2025/feedback-service/internal/cache"
	"github.com/SAP-F-2025/feedback-service/internal/events"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"github.com/SAP-F-2025/feedback-service/internal/validator"
)

// ServiceManager gives handlers access to every service
type ServiceManager interface {
	Form() FormService
	Response() ResponseService
	Analytics() AnalyticsService
	Export() ExportService
	Import() ImportService
}

type Options struct {
	AnalyticsCacheTTL time.Duration
	ExportTopGroups   int
	Analytics         analytics.Options
}

type serviceManager struct {
	form      FormService
	response  ResponseService
	analytics AnalyticsService
	export    ExportService
	imports   ImportService
}

// NewServiceManager wires the services. cacheService may be nil, which
// disables analytics caching.
func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	opts Options,
) ServiceManager {
	builder := analytics.NewBuilder(opts.Analytics)
	return &serviceManager{
		form:      NewFormService(repo, cacheService, eventPublisher, logger, validator),
		response:  NewResponseService(repo, cacheService, eventPublisher, logger, validator),
		analytics: NewAnalyticsService(repo, cacheService, builder, opts.AnalyticsCacheTTL, logger, validator),
		export:    NewExportService(repo, eventPublisher, logger, validator, opts.Analytics, opts.ExportTopGroups),
		imports:   NewImportService(repo, eventPublisher, logger),
	}
}

func (m *serviceManager) Form() FormService           { return m.form }
func (m *serviceManager) Response() ResponseService   { return m.response }
func (m *serviceManager) Analytics() AnalyticsService { return m.analytics }
func (m *serviceManager) Export() ExportService       { return m.export }
func (m *serviceManager) Import() ImportService       { return m.imports }
