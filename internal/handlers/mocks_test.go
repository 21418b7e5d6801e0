package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/feedback-service/internal/analytics"
	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/services"
	"github.com/SAP-F-2025/feedback-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

const (
	testFormID     = "11111111-1111-4111-8111-111111111111"
	testResponseID = "66666666-6666-4666-8666-666666666666"
)

// ===== SERVICE MOCKS =====

type MockFormService struct {
	mock.Mock
}

func (m *MockFormService) Create(ctx context.Context, req *services.CreateFormRequest) (*models.FeedbackForm, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*models.FeedbackForm), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormService) GetByID(ctx context.Context, id string) (*models.FeedbackForm, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.FeedbackForm), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormService) List(ctx context.Context, query services.ListFormsQuery) (*services.ListFormsResult, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.(*services.ListFormsResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormService) Activate(ctx context.Context, id string) (*models.FeedbackForm, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.FeedbackForm), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormService) Deactivate(ctx context.Context, id string) (*models.FeedbackForm, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.FeedbackForm), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormService) ListPeriods(ctx context.Context, id string) ([]models.ActivationPeriod, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]models.ActivationPeriod), args.Error(1)
}

type MockResponseService struct {
	mock.Mock
}

func (m *MockResponseService) Submit(ctx context.Context, req *services.SubmitResponseRequest) (*models.Response, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResponseService) GetByID(ctx context.Context, id string) (*models.Response, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResponseService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResponseService) List(ctx context.Context, query services.ListResponsesQuery) (*services.ListResponsesResult, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.(*services.ListResponsesResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetFormAnalytics(ctx context.Context, query services.AnalyticsQuery) (*analytics.Result, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.(*analytics.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsService) ComparePeriods(ctx context.Context, query services.ComparisonQuery) (*analytics.Comparison, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.(*analytics.Comparison), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockExportService writes Body to the destination before returning the configured error.
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) WriteCSV(ctx context.Context, query services.AnalyticsQuery, w io.Writer) error {
	args := m.Called(ctx, query)
	if body := args.String(0); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(1)
}

func (m *MockExportService) WriteWorkbook(ctx context.Context, query services.AnalyticsQuery, w io.Writer) error {
	args := m.Called(ctx, query)
	if body := args.String(0); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(1)
}

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportFacultySubjects(ctx context.Context, reader io.Reader, filename string, opts services.ImportOptions) (*models.ImportSummary, error) {
	data, _ := io.ReadAll(reader)
	args := m.Called(ctx, string(data), filename, opts)
	if v := args.Get(0); v != nil {
		return v.(*models.ImportSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockServiceManager struct {
	form      *MockFormService
	response  *MockResponseService
	analytics *MockAnalyticsService
	export    *MockExportService
	imports   *MockImportService
}

func newMockServiceManager() *mockServiceManager {
	return &mockServiceManager{
		form:      &MockFormService{},
		response:  &MockResponseService{},
		analytics: &MockAnalyticsService{},
		export:    &MockExportService{},
		imports:   &MockImportService{},
	}
}

func (m *mockServiceManager) Form() services.FormService           { return m.form }
func (m *mockServiceManager) Response() services.ResponseService   { return m.response }
func (m *mockServiceManager) Analytics() services.AnalyticsService { return m.analytics }
func (m *mockServiceManager) Export() services.ExportService       { return m.export }
func (m *mockServiceManager) Import() services.ImportService       { return m.imports }

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func setupRouter(sm services.ServiceManager, health Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.ContextLogger(logger))

	NewHandlerManager(sm, health, logger).SetupRoutes(router)
	return router
}
