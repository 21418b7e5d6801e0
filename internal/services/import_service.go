package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/events"
	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportService loads faculty and their subject assignments from spreadsheets
type ImportService interface {
	ImportFacultySubjects(ctx context.Context, reader io.Reader, filename string, opts ImportOptions) (*models.ImportSummary, error)
}

type importService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	ops            *ServiceLogger
}

func NewImportService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger) ImportService {
	return &importService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		ops:            NewServiceLogger(logger, "imports"),
	}
}

// errRowRejected rolls back a row that failed a data check.
var errRowRejected = errors.New("import row rejected")

var requiredImportColumns = []string{"faculty_name", "phone", "course_code", "year", "semester", "subject"}

type importRow struct {
	line        int
	facultyName string
	phone       string
	designation string
	department  string
	courseCode  string
	year        int
	semester    int
	subject     string
	section     string
	isLab       bool
}

// rowOutcome counts what one committed row changed.
type rowOutcome struct {
	createdFaculty  bool
	updatedFaculty  bool
	createdSubject  bool
	createdSections int
}

func (s *importService) ImportFacultySubjects(ctx context.Context, reader io.Reader, filename string, opts ImportOptions) (summary *models.ImportSummary, err error) {
	op := s.ops.WithOperation(ctx, "import_faculty_subjects")
	defer func() { op.LogResult(filename, "import", err) }()

	start := time.Now()
	records, err := readImportRecords(reader, filename)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, newFieldError("file", "must have a header row and at least one data row", "min", len(records))
	}

	headerMap := make(map[string]int)
	for i, header := range records[0] {
		name := strings.ToLower(strings.TrimSpace(header))
		headerMap[strings.ReplaceAll(name, " ", "_")] = i
	}
	var missing ValidationErrors
	for _, col := range requiredImportColumns {
		if _, ok := headerMap[col]; !ok {
			missing = append(missing, ValidationError{Field: "headers", Message: fmt.Sprintf("missing required column: %s", col), Value: col, Rule: "required"})
		}
	}
	if len(missing) > 0 {
		return nil, missing
	}

	summary = &models.ImportSummary{
		FileName:  filename,
		Status:    models.ImportProcessing,
		TotalRows: len(records) - 1,
		Errors:    []models.ImportValidationError{},
	}

	for i, record := range records[1:] {
		if isBlankRecord(record) {
			summary.TotalRows--
			continue
		}
		summary.ProcessedRows++

		row, rowErrs := parseImportRow(record, headerMap, i+2)
		if len(rowErrs) > 0 {
			summary.Errors = append(summary.Errors, rowErrs...)
			summary.ErrorCount++
			continue
		}

		outcome, rowErr, err := s.applyRow(ctx, row, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to import row %d: %w", row.line, err)
		}
		if rowErr != nil {
			summary.Errors = append(summary.Errors, *rowErr)
			summary.ErrorCount++
			continue
		}

		summary.SuccessCount++
		summary.CreatedSections += outcome.createdSections
		if outcome.createdFaculty {
			summary.CreatedFaculty++
		} else if outcome.updatedFaculty {
			summary.UpdatedFaculty++
		}
		if outcome.createdSubject {
			summary.CreatedSubjects++
		}
	}

	switch {
	case summary.SuccessCount == 0 && summary.ErrorCount > 0:
		summary.Status = models.ImportFailed
	default:
		summary.Status = models.ImportCompleted
	}
	summary.ProcessingTime = time.Since(start)

	s.logger.Info("Faculty import completed",
		"file_name", filename,
		"total_rows", summary.TotalRows,
		"success_count", summary.SuccessCount,
		"error_count", summary.ErrorCount)

	publishEvent(ctx, s.eventPublisher, s.logger, events.NewImportCompletedEvent(events.ImportCompletedEvent{
		FileName:        filename,
		Status:          string(summary.Status),
		TotalRows:       summary.TotalRows,
		SuccessCount:    summary.SuccessCount,
		ErrorCount:      summary.ErrorCount,
		CreatedFaculty:  summary.CreatedFaculty,
		CreatedSubjects: summary.CreatedSubjects,
	}))
	return summary, nil
}

// applyRow upserts the faculty and subject of one row in its own transaction,
// so a bad row never rolls back the rows before it.
func (s *importService) applyRow(ctx context.Context, row importRow, opts ImportOptions) (rowOutcome, *models.ImportValidationError, error) {
	var (
		outcome rowOutcome
		rowErr  *models.ImportValidationError
	)

	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		outcome = rowOutcome{}

		course, err := s.repo.Course().GetByCode(ctx, tx, row.courseCode)
		if err != nil {
			if repositories.IsNotFound(err) {
				rowErr = &models.ImportValidationError{Row: row.line, Column: "course_code", Message: "unknown course", Value: row.courseCode, Code: "not_found"}
				return errRowRejected
			}
			return err
		}

		faculty, err := s.upsertFaculty(ctx, tx, row, &outcome)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				rowErr = &models.ImportValidationError{Row: row.line, Column: "phone", Message: "phone already belongs to another faculty", Value: row.phone, Code: "duplicate"}
				return errRowRejected
			}
			return err
		}

		subject, err := s.repo.Subject().GetByKey(ctx, tx, course.ID, row.year, row.semester, row.subject)
		switch {
		case repositories.IsNotFound(err):
			subject = &models.Subject{
				Name:     row.subject,
				CourseID: course.ID,
				Year:     row.year,
				Semester: row.semester,
				IsLab:    row.isLab,
			}
			if err := s.repo.Subject().Create(ctx, tx, subject); err != nil {
				return err
			}
			outcome.createdSubject = true
		case err != nil:
			return err
		}
		if row.isLab {
			subject.IsLab = true
		}

		previous := subject.FacultyIDs()
		if row.section == "" {
			subject.DefaultFacultyID = &faculty.ID
			if !opts.Merge {
				subject.SectionFaculties = nil
			}
		} else {
			section, created := course.EnsureSection(row.year, row.semester, row.section)
			if created {
				if err := s.repo.Course().Update(ctx, tx, course); err != nil {
					return err
				}
				outcome.createdSections++
			}
			subject.AssignSection(section.ID, faculty.ID)
			if !opts.Merge {
				subject.DefaultFacultyID = nil
			}
		}
		if err := s.repo.Subject().Update(ctx, tx, subject); err != nil {
			return err
		}

		return s.syncFacultySubjects(ctx, tx, subject, faculty, previous)
	})
	if errors.Is(err, errRowRejected) {
		return outcome, rowErr, nil
	}
	return outcome, rowErr, err
}

// upsertFaculty matches on phone first, then on name and department.
func (s *importService) upsertFaculty(ctx context.Context, tx *gorm.DB, row importRow, outcome *rowOutcome) (*models.Faculty, error) {
	faculty, err := s.repo.Faculty().GetByPhone(ctx, tx, row.phone)
	if repositories.IsNotFound(err) {
		faculty, err = s.repo.Faculty().GetByNameAndDepartment(ctx, tx, row.facultyName, row.department)
	}
	if repositories.IsNotFound(err) {
		faculty = &models.Faculty{
			Name:        row.facultyName,
			Phone:       row.phone,
			Designation: row.designation,
			Department:  row.department,
			IsActive:    true,
		}
		if err := s.repo.Faculty().Create(ctx, tx, faculty); err != nil {
			return nil, err
		}
		outcome.createdFaculty = true
		return faculty, nil
	}
	if err != nil {
		return nil, err
	}

	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&faculty.Name, row.facultyName)
	set(&faculty.Phone, row.phone)
	set(&faculty.Designation, row.designation)
	set(&faculty.Department, row.department)
	if !faculty.IsActive {
		faculty.IsActive = true
		changed = true
	}
	if changed {
		if err := s.repo.Faculty().Update(ctx, tx, faculty); err != nil {
			return nil, err
		}
		outcome.updatedFaculty = true
	}
	return faculty, nil
}

// syncFacultySubjects keeps Faculty.SubjectIDs consistent with the subject's
// assignments after they changed from previous.
func (s *importService) syncFacultySubjects(ctx context.Context, tx *gorm.DB, subject *models.Subject, assigned *models.Faculty, previous []string) error {
	if assigned.AddSubject(subject.ID) {
		if err := s.repo.Faculty().Update(ctx, tx, assigned); err != nil {
			return err
		}
	}

	current := subject.FacultyIDs()
	for _, id := range previous {
		if id == assigned.ID || slices.Contains(current, id) {
			continue
		}
		dropped, err := s.repo.Faculty().GetByID(ctx, tx, id)
		if repositories.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if dropped.RemoveSubject(subject.ID) {
			if err := s.repo.Faculty().Update(ctx, tx, dropped); err != nil {
				return err
			}
		}
	}
	return nil
}

// ===== PARSING =====

func readImportRecords(reader io.Reader, filename string) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		csvReader := csv.NewReader(reader)
		csvReader.TrimLeadingSpace = true
		csvReader.FieldsPerRecord = -1
		records, err := csvReader.ReadAll()
		if err != nil {
			return nil, newFieldError("file", fmt.Sprintf("failed to read CSV: %v", err), "format", filename)
		}
		return records, nil
	case ".xlsx":
		f, err := excelize.OpenReader(reader)
		if err != nil {
			return nil, newFieldError("file", fmt.Sprintf("failed to open Excel file: %v", err), "format", filename)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, newFieldError("file", "Excel file has no sheets", "format", filename)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
		return rows, nil
	default:
		return nil, newFieldError("file", "unsupported file format", "format", ext)
	}
}

func parseImportRow(record []string, headerMap map[string]int, line int) (importRow, []models.ImportValidationError) {
	get := func(col string) string {
		idx, ok := headerMap[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var errs []models.ImportValidationError
	required := func(col string) string {
		v := get(col)
		if v == "" {
			errs = append(errs, models.ImportValidationError{Row: line, Column: col, Message: "is required", Code: "required"})
		}
		return v
	}
	number := func(col string, lo, hi int) int {
		raw := required(col)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < lo || n > hi {
			errs = append(errs, models.ImportValidationError{
				Row: line, Column: col, Value: raw, Code: "invalid",
				Message: fmt.Sprintf("must be a whole number between %d and %d", lo, hi),
			})
		}
		return n
	}

	row := importRow{
		line:        line,
		facultyName: required("faculty_name"),
		phone:       required("phone"),
		designation: get("designation"),
		department:  get("department"),
		courseCode:  required("course_code"),
		year:        number("year", 1, 6),
		semester:    number("semester", 1, 2),
		subject:     required("subject"),
		section:     get("section"),
	}

	if raw := get("is_lab"); raw != "" {
		lab, err := parseYesNo(raw)
		if err != nil {
			errs = append(errs, models.ImportValidationError{Row: line, Column: "is_lab", Message: "must be yes or no", Value: raw, Code: "invalid"})
		}
		row.isLab = lab
	}
	return row, errs
}

func parseYesNo(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "y", "lab":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
