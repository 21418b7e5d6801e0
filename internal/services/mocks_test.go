package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/cache"
	"github.com/SAP-F-2025/feedback-service/internal/events"
	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"github.com/SAP-F-2025/feedback-service/internal/validator"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

const (
	testFormID        = "11111111-1111-4111-8111-111111111111"
	testCourseID      = "22222222-2222-4222-8222-222222222222"
	testSectionA      = "33333333-3333-4333-8333-333333333331"
	testSectionB      = "33333333-3333-4333-8333-333333333332"
	testSubjectTheory = "44444444-4444-4444-8444-444444444441"
	testSubjectLab    = "44444444-4444-4444-8444-444444444442"
	testFacultyAlice  = "55555555-5555-4555-8555-555555555551"
	testFacultyBob    = "55555555-5555-4555-8555-555555555552"
)

// ===== REPOSITORY MOCKS =====

type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	args := m.Called(ctx, tx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Course, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Course, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).([]models.Course), args.Error(1)
}

func (m *MockCourseRepository) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Course, error) {
	args := m.Called(ctx, tx, code)
	if v := args.Get(0); v != nil {
		return v.(*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	args := m.Called(ctx, tx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) List(ctx context.Context, tx *gorm.DB) ([]models.Course, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).([]models.Course), args.Error(1)
}

type MockFacultyRepository struct {
	mock.Mock
}

func (m *MockFacultyRepository) Create(ctx context.Context, tx *gorm.DB, faculty *models.Faculty) error {
	args := m.Called(ctx, tx, faculty)
	return args.Error(0)
}

func (m *MockFacultyRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Faculty, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Faculty), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFacultyRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Faculty, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).([]models.Faculty), args.Error(1)
}

func (m *MockFacultyRepository) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*models.Faculty, error) {
	args := m.Called(ctx, tx, phone)
	if v := args.Get(0); v != nil {
		return v.(*models.Faculty), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFacultyRepository) GetByNameAndDepartment(ctx context.Context, tx *gorm.DB, name, department string) (*models.Faculty, error) {
	args := m.Called(ctx, tx, name, department)
	if v := args.Get(0); v != nil {
		return v.(*models.Faculty), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFacultyRepository) Update(ctx context.Context, tx *gorm.DB, faculty *models.Faculty) error {
	args := m.Called(ctx, tx, faculty)
	return args.Error(0)
}

func (m *MockFacultyRepository) List(ctx context.Context, tx *gorm.DB) ([]models.Faculty, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).([]models.Faculty), args.Error(1)
}

type MockSubjectRepository struct {
	mock.Mock
}

func (m *MockSubjectRepository) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	args := m.Called(ctx, tx, subject)
	return args.Error(0)
}

func (m *MockSubjectRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Subject, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Subject), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSubjectRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]models.Subject, error) {
	args := m.Called(ctx, tx, ids)
	return args.Get(0).([]models.Subject), args.Error(1)
}

func (m *MockSubjectRepository) GetByKey(ctx context.Context, tx *gorm.DB, courseID string, year, semester int, name string) (*models.Subject, error) {
	args := m.Called(ctx, tx, courseID, year, semester, name)
	if v := args.Get(0); v != nil {
		return v.(*models.Subject), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSubjectRepository) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	args := m.Called(ctx, tx, subject)
	return args.Error(0)
}

func (m *MockSubjectRepository) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string, year, semester int) ([]models.Subject, error) {
	args := m.Called(ctx, tx, courseID, year, semester)
	return args.Get(0).([]models.Subject), args.Error(1)
}

type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error {
	args := m.Called(ctx, tx, form)
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.FeedbackForm), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.FeedbackForm, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.FeedbackForm), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormRepository) Update(ctx context.Context, tx *gorm.DB, form *models.FeedbackForm) error {
	args := m.Called(ctx, tx, form)
	return args.Error(0)
}

func (m *MockFormRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.FormFilters) ([]*models.FeedbackForm, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.FeedbackForm), args.Get(1).(int64), args.Error(2)
}

type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, tx *gorm.DB, response *models.Response) error {
	args := m.Called(ctx, tx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Response, error) {
	args := m.Called(ctx, tx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResponseRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockResponseRepository) ListByForm(ctx context.Context, tx *gorm.DB, formID string, filters repositories.ResponseFilters) ([]models.Response, error) {
	args := m.Called(ctx, tx, formID, filters)
	return args.Get(0).([]models.Response), args.Error(1)
}

// StreamByForm hands the configured responses to fn in batches of batchSize.
func (m *MockResponseRepository) StreamByForm(ctx context.Context, tx *gorm.DB, formID string, filters repositories.ResponseFilters, batchSize int, fn func(batch []models.Response) error) error {
	args := m.Called(ctx, tx, formID, filters, batchSize)
	if err := args.Error(1); err != nil {
		return err
	}
	all := args.Get(0).([]models.Response)
	for start := 0; start < len(all); start += batchSize {
		end := min(start+batchSize, len(all))
		if err := fn(all[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockResponseRepository) List(ctx context.Context, tx *gorm.DB, formID string, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	args := m.Called(ctx, tx, formID, filters)
	return args.Get(0).([]*models.Response), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) ExistsForStudent(ctx context.Context, tx *gorm.DB, rollNumber, courseID string, year, semester int, periodStart time.Time) (bool, error) {
	args := m.Called(ctx, tx, rollNumber, courseID, year, semester, periodStart)
	return args.Bool(0), args.Error(1)
}

// MockRepository bundles the repository mocks. Transactions run fn with a nil tx.
type MockRepository struct {
	course   *MockCourseRepository
	faculty  *MockFacultyRepository
	subject  *MockSubjectRepository
	form     *MockFormRepository
	response *MockResponseRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		course:   &MockCourseRepository{},
		faculty:  &MockFacultyRepository{},
		subject:  &MockSubjectRepository{},
		form:     &MockFormRepository{},
		response: &MockResponseRepository{},
	}
}

func (m *MockRepository) Course() repositories.CourseRepository     { return m.course }
func (m *MockRepository) Faculty() repositories.FacultyRepository   { return m.faculty }
func (m *MockRepository) Subject() repositories.SubjectRepository   { return m.subject }
func (m *MockRepository) Form() repositories.FormRepository         { return m.form }
func (m *MockRepository) Response() repositories.ResponseRepository { return m.response }

func (m *MockRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return nil
}

// ===== CACHE MOCK =====

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

// cacheOrNil keeps a nil mock from becoming a non-nil interface.
func cacheOrNil(c *MockCacheService) cache.CacheService {
	if c == nil {
		return nil
	}
	return c
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDeps() (*MockRepository, *events.MockEventPublisher, *validator.Validator) {
	logger := testLogger()
	return newMockRepository(), events.NewMockEventPublisher(logger), validator.New()
}

func intPtr(v int) *int { return &v }

func testCourse() *models.Course {
	return &models.Course{
		ID:   testCourseID,
		Name: "B.Tech CSE",
		Code: "CSE",
		YearSemesters: []models.YearSemester{{
			Year:     2,
			Semester: 1,
			Sections: []models.Section{
				{ID: testSectionA, Name: "A"},
				{ID: testSectionB, Name: "B"},
			},
		}},
		IsActive: true,
	}
}

func testFaculty() []models.Faculty {
	return []models.Faculty{
		{ID: testFacultyAlice, Name: "Alice", Phone: "9000000001", Department: "CSE", IsActive: true},
		{ID: testFacultyBob, Name: "Bob", Phone: "9000000002", Department: "CSE", IsActive: true},
	}
}

func testSubjects() []models.Subject {
	alice := testFacultyAlice
	return []models.Subject{
		{
			ID: testSubjectTheory, Name: "Algorithms", CourseID: testCourseID, Year: 2, Semester: 1,
			DefaultFacultyID: &alice,
			SectionFaculties: []models.SectionFaculty{{SectionID: testSectionB, FacultyID: testFacultyBob}},
		},
		{ID: testSubjectLab, Name: "Algorithms Lab", CourseID: testCourseID, Year: 2, Semester: 1, IsLab: true},
	}
}

// testForm is an active standard form whose current period opened on Jan 1.
func testForm() *models.FeedbackForm {
	return &models.FeedbackForm{
		ID:   testFormID,
		Name: "Mid-term feedback",
		Kind: models.FormStandard,
		Questions: []models.QuestionDefinition{
			{ID: "q-scale", Text: "Rate the teaching", Type: models.QuestionScale, Required: true, ScaleMin: intPtr(1), ScaleMax: intPtr(5)},
			{ID: "q-pace", Text: "Pace", Type: models.QuestionMultipleChoice, Options: []string{"Slow", "Right", "Fast"}},
			{ID: "q-text", Text: "Comments", Type: models.QuestionTextarea},
		},
		IsActive: true,
		ActivationPeriods: []models.ActivationPeriod{
			{Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}
