package analytics

import (
	"strings"

	"github.com/SAP-F-2025/feedback-service/internal/models"
)

// Filters narrows the response set an analytics run covers. Zero values mean
// "no constraint".
type Filters struct {
	CourseID    string
	Year        int
	Semester    int
	SectionID   string
	SubjectID   string
	FacultyID   string
	Period      *models.ActivationPeriod
	StudentName string
	RollNumber  string
}

// WithPeriod returns a copy of f restricted to p.
func (f Filters) WithPeriod(p models.ActivationPeriod) Filters {
	f.Period = &p
	return f
}

// MatchResponse applies the response-level constraints. Subject and faculty
// constraints apply per subject-response and are handled by the builder.
func (f Filters) MatchResponse(r *models.Response) bool {
	if f.CourseID != "" && r.CourseID != f.CourseID {
		return false
	}
	if f.Year != 0 && r.Year != f.Year {
		return false
	}
	if f.Semester != 0 && r.Semester != f.Semester {
		return false
	}
	if f.SectionID != "" && r.SectionID != f.SectionID {
		return false
	}
	if f.Period != nil && !f.Period.Contains(r.SubmittedAt) {
		return false
	}
	if f.StudentName != "" && !containsFold(r.StudentName, f.StudentName) {
		return false
	}
	if f.RollNumber != "" && !containsFold(r.RollNumber, f.RollNumber) {
		return false
	}
	return true
}

func (f Filters) scopesSubjectResponses() bool {
	return f.SubjectID != "" || f.FacultyID != ""
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}
