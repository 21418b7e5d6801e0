package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/feedback-service/internal/analytics"
	"github.com/SAP-F-2025/feedback-service/internal/events"
	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"github.com/SAP-F-2025/feedback-service/internal/validator"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

const (
	exportBatchSize     = 500
	exportTimeLayout    = "2006-01-02 15:04:05"
	responsesSheetName  = "Responses"
	summarySheetName    = "Summary"
	defaultTopTextCount = 3
)

// ExportService writes response reports without holding the full result set in memory
type ExportService interface {
	// WriteCSV writes one row per subject-response.
	WriteCSV(ctx context.Context, query AnalyticsQuery, w io.Writer) error
	// WriteWorkbook writes the same rows plus a grouped summary sheet.
	WriteWorkbook(ctx context.Context, query AnalyticsQuery, w io.Writer) error
}

type exportService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	ops            *ServiceLogger
	validator      *validator.Validator
	opts           analytics.Options
	topGroups      int
}

func NewExportService(
	repo repositories.Repository,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	opts analytics.Options,
	topGroups int,
) ExportService {
	if topGroups <= 0 {
		topGroups = defaultTopTextCount
	}
	opts.ClusterText = true
	return &exportService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		ops:            NewServiceLogger(logger, "exports"),
		validator:      validator,
		opts:           opts,
		topGroups:      topGroups,
	}
}

// exportRow is one subject-response with its references resolved.
type exportRow struct {
	response *models.Response
	sr       *models.SubjectResponse
	course   string
	section  string
	subject  string
	faculty  models.Faculty
}

func (s *exportService) WriteCSV(ctx context.Context, query AnalyticsQuery, w io.Writer) (err error) {
	op := s.ops.WithOperation(ctx, "export_csv")
	defer func() { op.LogResult(query.FormID, "feedback_form", err) }()

	form, period, err := s.scope(ctx, query)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err = writer.Write(exportHeaders(form)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	rows := 0
	err = s.eachRow(ctx, form, query, period, func(row exportRow) error {
		rows++
		if err := writer.Write(row.values(form)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.NewReportExportedEvent(form.ID, string(models.ExportCSV), rows))
	return nil
}

func (s *exportService) WriteWorkbook(ctx context.Context, query AnalyticsQuery, w io.Writer) (err error) {
	op := s.ops.WithOperation(ctx, "export_workbook")
	defer func() { op.LogResult(query.FormID, "feedback_form", err) }()

	form, period, err := s.scope(ctx, query)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err = f.SetSheetName("Sheet1", responsesSheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if _, err = f.NewSheet(summarySheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create Excel style: %w", err)
	}

	sw, err := f.NewStreamWriter(responsesSheetName)
	if err != nil {
		return fmt.Errorf("failed to open Excel stream: %w", err)
	}
	if err = setStreamRow(sw, 1, styledRow(exportHeaders(form), headerStyle)); err != nil {
		return err
	}

	summary := newSummaryBuilder(form)
	rowNum := 1
	err = s.eachRow(ctx, form, query, period, func(row exportRow) error {
		rowNum++
		summary.add(row)
		return setStreamRow(sw, rowNum, row.cells(form))
	})
	if err != nil {
		return err
	}
	if err = sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush Excel stream: %w", err)
	}

	if err = s.writeSummary(f, summary, headerStyle); err != nil {
		return err
	}

	if err = f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.NewReportExportedEvent(form.ID, string(models.ExportXLSX), rowNum-1))
	return nil
}

func (s *exportService) writeSummary(f *excelize.File, summary *summaryBuilder, headerStyle int) error {
	sw, err := f.NewStreamWriter(summarySheetName)
	if err != nil {
		return fmt.Errorf("failed to open Excel stream: %w", err)
	}

	header := []string{"Year", "Course", "Semester", "Section", "Subject", "Faculty", "Responses"}
	for _, q := range summary.form.Questions {
		header = append(header, q.Text)
	}
	if err := setStreamRow(sw, 1, styledRow(header, headerStyle)); err != nil {
		return err
	}

	for i, g := range summary.sorted() {
		row := []interface{}{g.key.year, g.course, g.key.semester, g.section, g.subject, g.faculty.Name, g.responses}
		for _, q := range summary.form.Questions {
			row = append(row, s.summaryCell(g, q))
		}
		if err := setStreamRow(sw, i+2, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush Excel stream: %w", err)
	}
	return nil
}

// summaryCell renders one question of one group: scale average, yes share,
// most picked option or the largest clusters of similar text answers.
func (s *exportService) summaryCell(g *summaryGroup, def models.QuestionDefinition) string {
	snap, ok := g.snapshots[def.ID]
	if !ok {
		return ""
	}
	qa := analytics.Aggregate(snap, g.answers[def.ID], g.responses, s.opts)
	if qa.TotalResponses == 0 {
		return ""
	}

	switch {
	case qa.ScaleSummary != nil:
		return fmt.Sprintf("%.2f (n=%d)", qa.Average, qa.TotalResponses)
	case qa.YesNoSummary != nil:
		return fmt.Sprintf("Yes %.2f%% / No %.2f%%", qa.YesPercentage, qa.NoPercentage)
	case qa.ChoiceSummary != nil:
		return topChoice(def.Options, qa.ChoiceCounts)
	case qa.TextSummary != nil:
		groups := qa.ResponseGroups
		if len(groups) > s.topGroups {
			groups = groups[:s.topGroups]
		}
		parts := make([]string, 0, len(groups))
		for _, rg := range groups {
			parts = append(parts, fmt.Sprintf("%s (%d)", rg.Representative, rg.Count))
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func topChoice(options []string, counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	rank := make(map[string]int, len(options))
	for i, o := range options {
		rank[o] = i
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		ra, aok := rank[a]
		rb, bok := rank[b]
		if aok != bok {
			return aok
		}
		if ra != rb {
			return ra < rb
		}
		return a < b
	})
	if len(names) == 0 || counts[names[0]] == 0 {
		return ""
	}
	return fmt.Sprintf("%s (%d)", names[0], counts[names[0]])
}

// ===== ROW ITERATION =====

func (s *exportService) scope(ctx context.Context, query AnalyticsQuery) (*models.FeedbackForm, *models.ActivationPeriod, error) {
	if err := s.validator.Validate(query); err != nil {
		return nil, nil, err
	}

	form, err := s.repo.Form().GetByID(ctx, nil, query.FormID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil, ErrFormNotFound
		}
		return nil, nil, fmt.Errorf("failed to get form: %w", err)
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

// eachRow streams the form's responses in batches and calls fn for every
// subject-response that passes the filters, in submission order.
func (s *exportService) eachRow(ctx context.Context, form *models.FeedbackForm, query AnalyticsQuery, period *models.ActivationPeriod, fn func(exportRow) error) error {
	var (
		courses []models.Course
		faculty []models.Faculty
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = s.repo.Course().List(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		faculty, err = s.repo.Faculty().List(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	catalog := analytics.NewCatalog(courses, nil, faculty)
	filters := query.filters(period)
	isGlobal := form.IsGlobal()
	overall := analytics.OverallFaculty(form)

	return s.repo.Response().StreamByForm(ctx, nil, form.ID, query.responseFilters(period), exportBatchSize, func(batch []models.Response) error {
		if err := s.loadSubjects(ctx, catalog, batch); err != nil {
			return err
		}

		for i := range batch {
			r := &batch[i]
			if !filters.MatchResponse(r) {
				continue
			}
			course := catalog.Courses[r.CourseID]

			for j := range r.SubjectResponses {
				sr := &r.SubjectResponses[j]
				if sr.FormID != "" && sr.FormID != form.ID {
					continue
				}
				if filters.SubjectID != "" && sr.SubjectID != filters.SubjectID {
					continue
				}

				row := exportRow{
					response: r,
					sr:       sr,
					course:   course.Name,
					section:  course.SectionName(r.SectionID),
					faculty:  overall,
				}
				if subject, ok := catalog.Subjects[sr.SubjectID]; ok {
					row.subject = subject.Name
					if !isGlobal {
						row.faculty = analytics.ResolveFaculty(&subject, r.SectionID, catalog.Faculty)
					}
				} else if !isGlobal {
					row.subject = "Unknown Subject"
					row.faculty = models.NotAssignedFaculty()
				}
				if filters.FacultyID != "" && !isGlobal && row.faculty.ID != filters.FacultyID {
					continue
				}

				if err := fn(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// loadSubjects fetches subjects referenced by batch that are not yet known.
func (s *exportService) loadSubjects(ctx context.Context, catalog analytics.Catalog, batch []models.Response) error {
	var missing []string
	for _, id := range referencedSubjectIDs(batch) {
		if _, ok := catalog.Subjects[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	subjects, err := s.repo.Subject().GetByIDs(ctx, nil, missing)
	if err != nil {
		return fmt.Errorf("failed to load subjects: %w", err)
	}
	for _, subject := range subjects {
		catalog.Subjects[subject.ID] = subject
	}
	return nil
}

func exportHeaders(form *models.FeedbackForm) []string {
	headers := []string{
		"Student Name", "Roll Number", "Phone", "Course", "Year", "Semester",
		"Section", "Subject", "Faculty", "Submitted At",
	}
	for _, q := range form.Questions {
		headers = append(headers, q.Text)
	}
	return headers
}

func (row exportRow) values(form *models.FeedbackForm) []string {
	r := row.response
	values := []string{
		r.StudentName,
		r.RollNumber,
		r.StudentPhone,
		row.course,
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Semester),
		row.section,
		row.subject,
		row.faculty.Name,
		r.SubmittedAt.UTC().Format(exportTimeLayout),
	}
	for _, q := range form.Questions {
		answer, ok := row.sr.AnswerFor(q.ID)
		if !ok {
			values = append(values, "")
			continue
		}
		values = append(values, analytics.DisplayText(answer))
	}
	return values
}

func (row exportRow) cells(form *models.FeedbackForm) []interface{} {
	values := row.values(form)
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	// Numeric columns stay numeric in the workbook.
	cells[4] = row.response.Year
	cells[5] = row.response.Semester
	return cells
}

func styledRow(values []string, styleID int) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = excelize.Cell{StyleID: styleID, Value: v}
	}
	return row
}

func setStreamRow(sw *excelize.StreamWriter, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write Excel row %d: %w", row, err)
	}
	return nil
}

// ===== SUMMARY GROUPING =====

type summaryKey struct {
	year     int
	course   string
	semester int
	section  string
	subject  string
	faculty  string
}

type summaryGroup struct {
	key       summaryKey
	course    string
	section   string
	subject   string
	faculty   models.Faculty
	responses int
	answers   map[string][]models.RawAnswer
	snapshots map[string]models.QuestionSnapshot
}

// summaryBuilder keeps only the answers of each group, not whole responses.
type summaryBuilder struct {
	form   *models.FeedbackForm
	groups map[summaryKey]*summaryGroup
}

func newSummaryBuilder(form *models.FeedbackForm) *summaryBuilder {
	return &summaryBuilder{form: form, groups: make(map[summaryKey]*summaryGroup)}
}

func (b *summaryBuilder) add(row exportRow) {
	key := summaryKey{
		year:     row.response.Year,
		course:   row.response.CourseID,
		semester: row.response.Semester,
		section:  row.response.SectionID,
		subject:  row.sr.SubjectID,
		faculty:  row.faculty.ID,
	}
	g, ok := b.groups[key]
	if !ok {
		g = &summaryGroup{
			key:       key,
			course:    row.course,
			section:   row.section,
			subject:   row.subject,
			faculty:   row.faculty,
			answers:   make(map[string][]models.RawAnswer),
			snapshots: make(map[string]models.QuestionSnapshot),
		}
		b.groups[key] = g
	}
	g.responses++

	for i, q := range row.sr.Questions {
		if _, seen := g.snapshots[q.ID]; !seen {
			g.snapshots[q.ID] = q
		}
		if i < len(row.sr.Answers) && !row.sr.Answers[i].IsEmpty() {
			g.answers[q.ID] = append(g.answers[q.ID], row.sr.Answers[i])
		}
	}
}

// sorted orders groups Year, Course, Semester, Section, Subject, Faculty.
func (b *summaryBuilder) sorted() []*summaryGroup {
	groups := make([]*summaryGroup, 0, len(b.groups))
	for _, g := range b.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		a, c := groups[i], groups[j]
		switch {
		case a.key.year != c.key.year:
			return a.key.year < c.key.year
		case a.course != c.course:
			return a.course < c.course
		case a.key.semester != c.key.semester:
			return a.key.semester < c.key.semester
		case a.section != c.section:
			return a.section < c.section
		case a.subject != c.subject:
			return a.subject < c.subject
		case a.faculty.ID != c.faculty.ID:
			return analytics.FacultyLess(a.faculty, c.faculty)
		}
		if a.key.course != c.key.course {
			return a.key.course < c.key.course
		}
		if a.key.section != c.key.section {
			return a.key.section < c.key.section
		}
		return a.key.subject < c.key.subject
	})
	return groups
}
