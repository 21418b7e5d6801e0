package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/SAP-F-2025/feedback-service/internal/models"
)

// OverallFacultyID identifies the single synthetic group of a global form.
const OverallFacultyID = "overall"

const unknownSubjectName = "Unknown Subject"

// Catalog is the reference data a build resolves IDs against.
type Catalog struct {
	Courses  map[string]models.Course
	Subjects map[string]models.Subject
	Faculty  FacultyDirectory
}

func NewCatalog(courses []models.Course, subjects []models.Subject, faculty []models.Faculty) Catalog {
	c := Catalog{
		Courses:  make(map[string]models.Course, len(courses)),
		Subjects: make(map[string]models.Subject, len(subjects)),
		Faculty:  NewFacultyDirectory(faculty),
	}
	for _, course := range courses {
		c.Courses[course.ID] = course
	}
	for _, s := range subjects {
		c.Subjects[s.ID] = s
	}
	return c
}

func (c Catalog) subject(id string) (*models.Subject, bool) {
	s, ok := c.Subjects[id]
	if !ok {
		return nil, false
	}
	return &s, true
}

func (c Catalog) subjectName(id string) string {
	if s, ok := c.Subjects[id]; ok {
		return s.Name
	}
	return unknownSubjectName
}

type FormSummary struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	TotalQuestions int          `json:"total_questions"`
	IsGlobal       bool         `json:"is_global"`
	TrainingName   string       `json:"training_name,omitempty"`
	Faculty        []FacultyRef `json:"assigned_faculty,omitempty"`
}

type FormStats struct {
	TotalResponses          int     `json:"total_responses"`
	UniqueStudents          int     `json:"unique_students"`
	Subjects                int     `json:"subjects"`
	Courses                 int     `json:"courses"`
	AverageCompletionTimeMs float64 `json:"average_completion_time_ms"`
}

type FacultyRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
}

func refOf(f models.Faculty) FacultyRef {
	return FacultyRef{ID: f.ID, Name: f.Name, Designation: f.Designation, Department: f.Department}
}

type FacultyAnalytics struct {
	Faculty           FacultyRef          `json:"faculty"`
	Subjects          []string            `json:"subjects"`
	TotalResponses    int                 `json:"total_responses"`
	QuestionAnalytics []QuestionAnalytics `json:"question_analytics"`
}

// Result is the output of one analytics run over a form.
type Result struct {
	Form              FormSummary         `json:"form"`
	FormStats         FormStats           `json:"form_stats"`
	QuestionAnalytics []QuestionAnalytics `json:"question_analytics"`
	FacultyAnalytics  []FacultyAnalytics  `json:"faculty_analytics"`
}

// Builder turns a form's responses into per-question and per-faculty analytics.
// It holds no state between runs.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// entry is one subject-response together with the response that carries it.
type entry struct {
	response *models.Response
	sr       *models.SubjectResponse
}

type bucket struct {
	faculty  models.Faculty
	subjects []string
	seen     map[string]struct{}
	entries  []entry
}

func (b *bucket) add(e entry, subjectName string) {
	b.entries = append(b.entries, e)
	if _, ok := b.seen[subjectName]; ok {
		return
	}
	b.seen[subjectName] = struct{}{}
	b.subjects = append(b.subjects, subjectName)
}

// Build runs the full pipeline: filter, partition by faculty (or into the
// single Overall group for global forms), aggregate and compute form stats.
// An empty selection yields a fully shaped, zero-valued result.
func (b *Builder) Build(form *models.FeedbackForm, responses []models.Response, catalog Catalog, filters Filters) *Result {
	global, isGlobal := form.Variant().(models.GlobalForm)

	var (
		entries  []entry
		included []*models.Response
		buckets  = make(map[string]*bucket)
		order    []string
	)
	bucketFor := func(f models.Faculty) *bucket {
		bk, ok := buckets[f.ID]
		if !ok {
			bk = &bucket{faculty: f, seen: make(map[string]struct{})}
			buckets[f.ID] = bk
			order = append(order, f.ID)
		}
		return bk
	}

	for i := range responses {
		r := &responses[i]
		if !filters.MatchResponse(r) {
			continue
		}

		kept := 0
		for j := range r.SubjectResponses {
			sr := &r.SubjectResponses[j]
			if sr.FormID != "" && sr.FormID != form.ID {
				continue
			}
			if filters.SubjectID != "" && sr.SubjectID != filters.SubjectID {
				continue
			}

			var faculty models.Faculty
			if isGlobal {
				faculty = overallFaculty(form, global)
			} else {
				subject, _ := catalog.subject(sr.SubjectID)
				faculty = ResolveFaculty(subject, r.SectionID, catalog.Faculty)
			}
			if filters.FacultyID != "" && !isGlobal && faculty.ID != filters.FacultyID {
				continue
			}

			e := entry{response: r, sr: sr}
			entries = append(entries, e)
			bucketFor(faculty).add(e, catalog.subjectName(sr.SubjectID))
			kept++
		}

		if kept > 0 || !filters.scopesSubjectResponses() {
			included = append(included, r)
		}
	}

	if isGlobal && len(buckets) == 0 {
		bucketFor(overallFaculty(form, global))
	}

	questions := newQuestionSet(form)
	for _, e := range entries {
		for _, q := range e.sr.Questions {
			questions.observe(q)
		}
	}

	result := &Result{
		Form:              summarize(form, global, isGlobal, catalog),
		FormStats:         formStats(included, entries, isGlobal),
		QuestionAnalytics: questions.aggregate(entries, b.opts),
		FacultyAnalytics:  make([]FacultyAnalytics, 0, len(buckets)),
	}

	for _, id := range order {
		bk := buckets[id]
		sort.Strings(bk.subjects)
		subjects := bk.subjects
		if subjects == nil {
			subjects = []string{}
		}
		result.FacultyAnalytics = append(result.FacultyAnalytics, FacultyAnalytics{
			Faculty:           refOf(bk.faculty),
			Subjects:          subjects,
			TotalResponses:    len(bk.entries),
			QuestionAnalytics: questions.aggregate(bk.entries, b.opts),
		})
	}
	sortFacultyAnalytics(result.FacultyAnalytics)

	return result
}

// OverallFaculty is the synthetic group every subject-response of a global form
// falls into.
func OverallFaculty(form *models.FeedbackForm) models.Faculty {
	g, _ := form.Variant().(models.GlobalForm)
	return overallFaculty(form, g)
}

func overallFaculty(form *models.FeedbackForm, g models.GlobalForm) models.Faculty {
	name := g.TrainingName
	if name == "" {
		name = form.Name
	}
	return models.Faculty{ID: OverallFacultyID, Name: name, Designation: "Overall", IsActive: true}
}

func summarize(form *models.FeedbackForm, g models.GlobalForm, isGlobal bool, catalog Catalog) FormSummary {
	s := FormSummary{
		ID:             form.ID,
		Name:           form.Name,
		Description:    form.Description,
		TotalQuestions: len(form.Questions),
		IsGlobal:       isGlobal,
	}
	if !isGlobal {
		return s
	}
	s.TrainingName = g.TrainingName
	for _, id := range g.AssignedFacultyIDs {
		if f, ok := catalog.Faculty.lookup(id); ok {
			s.Faculty = append(s.Faculty, refOf(f))
		}
	}
	return s
}

func formStats(included []*models.Response, entries []entry, isGlobal bool) FormStats {
	stats := FormStats{TotalResponses: len(included)}

	rolls := make(map[string]struct{})
	courses := make(map[string]struct{})
	var elapsed float64
	timed := 0
	for _, r := range included {
		if roll := strings.ToLower(strings.TrimSpace(r.RollNumber)); roll != "" {
			rolls[roll] = struct{}{}
		}
		if r.CourseID != "" {
			courses[r.CourseID] = struct{}{}
		}
		if r.SubmittedAt.IsZero() || r.CreatedAt.IsZero() {
			continue
		}
		elapsed += math.Abs(float64(r.SubmittedAt.Sub(r.CreatedAt).Milliseconds()))
		timed++
	}
	stats.UniqueStudents = len(rolls)
	stats.Courses = len(courses)
	if timed > 0 {
		stats.AverageCompletionTimeMs = math.Round(elapsed / float64(timed))
	}

	subjects := make(map[string]struct{})
	for _, e := range entries {
		subjects[e.sr.SubjectID] = struct{}{}
	}
	stats.Subjects = len(subjects)
	if isGlobal && len(entries) > 0 {
		stats.Subjects = 1
	}
	return stats
}

// sortFacultyAnalytics orders groups by faculty name with Not Assigned last.
func sortFacultyAnalytics(groups []FacultyAnalytics) {
	sort.SliceStable(groups, func(i, j int) bool {
		return facultyLess(groups[i].Faculty, groups[j].Faculty)
	})
}

// FacultyLess reports whether a sorts before b in reports.
func FacultyLess(a, b models.Faculty) bool {
	return facultyLess(refOf(a), refOf(b))
}

func facultyLess(a, b FacultyRef) bool {
	if (a.ID == models.NotAssignedFacultyID) != (b.ID == models.NotAssignedFacultyID) {
		return b.ID == models.NotAssignedFacultyID
	}
	if an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name); an != bn {
		return an < bn
	}
	return a.ID < b.ID
}

// questionKey separates variants of one question that were snapshotted with
// different types, e.g. a multiple-choice question captured as text for a lab
// subject.
type questionKey struct {
	id  string
	typ models.QuestionType
}

// questionSet is the ordered catalogue of questions a run reports on: the live
// form's questions first, then variants only found in snapshots. The first
// snapshot seen for a key supplies its text, options and scale bounds.
type questionSet struct {
	keys        []questionKey
	defs        map[questionKey]models.QuestionSnapshot
	live        map[questionKey]bool
	snapshotted map[questionKey]bool
}

func newQuestionSet(form *models.FeedbackForm) *questionSet {
	s := &questionSet{
		defs:        make(map[questionKey]models.QuestionSnapshot),
		live:        make(map[questionKey]bool),
		snapshotted: make(map[questionKey]bool),
	}
	for _, def := range form.Questions {
		k := questionKey{id: def.ID, typ: def.Type}
		if _, ok := s.defs[k]; ok {
			continue
		}
		s.keys = append(s.keys, k)
		s.defs[k] = models.SnapshotOf(def)
		s.live[k] = true
	}
	return s
}

func (s *questionSet) observe(q models.QuestionSnapshot) {
	k := questionKey{id: q.ID, typ: q.Type}
	if s.snapshotted[k] {
		return
	}
	if _, ok := s.defs[k]; !ok {
		s.keys = append(s.keys, k)
	}
	s.defs[k] = q
	s.snapshotted[k] = true
}

// aggregate summarises every live question plus any snapshot variant present
// in entries, using len(entries) as the response-rate denominator.
func (s *questionSet) aggregate(entries []entry, opts Options) []QuestionAnalytics {
	answers := make(map[questionKey][]models.RawAnswer)
	present := make(map[questionKey]bool)
	for _, e := range entries {
		seen := make(map[questionKey]bool, len(e.sr.Questions))
		for i, q := range e.sr.Questions {
			k := questionKey{id: q.ID, typ: q.Type}
			if seen[k] {
				continue
			}
			seen[k] = true
			present[k] = true
			if i < len(e.sr.Answers) && !e.sr.Answers[i].IsEmpty() {
				answers[k] = append(answers[k], e.sr.Answers[i])
			}
		}
	}

	out := make([]QuestionAnalytics, 0, len(s.keys))
	for _, k := range s.keys {
		if !s.live[k] && !present[k] {
			continue
		}
		out = append(out, Aggregate(s.defs[k], answers[k], len(entries), opts))
	}
	return out
}
