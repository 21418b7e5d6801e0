package analytics

import "github.com/SAP-F-2025/feedback-service/internal/models"

// FacultyDirectory indexes the faculty available for resolution by ID.
type FacultyDirectory map[string]models.Faculty

func NewFacultyDirectory(faculty []models.Faculty) FacultyDirectory {
	dir := make(FacultyDirectory, len(faculty))
	for _, f := range faculty {
		dir[f.ID] = f
	}
	return dir
}

func (d FacultyDirectory) lookup(id string) (models.Faculty, bool) {
	if id == "" || id == models.NotAssignedFacultyID {
		return models.Faculty{}, false
	}
	f, ok := d[id]
	if !ok || !f.IsActive {
		return models.Faculty{}, false
	}
	return f, true
}

// ResolveFaculty decides who is accountable for a subject-response submitted
// from sectionID. A section override wins when it names a known faculty, then
// the subject's default faculty, otherwise the Not Assigned placeholder. It
// never fails: missing subjects and deleted or deactivated faculty all fall
// through to the next rule.
func ResolveFaculty(subject *models.Subject, sectionID string, dir FacultyDirectory) models.Faculty {
	if subject == nil {
		return models.NotAssignedFaculty()
	}

	if sectionID != "" {
		for _, sf := range subject.SectionFaculties {
			if sf.SectionID != sectionID {
				continue
			}
			if f, ok := dir.lookup(sf.FacultyID); ok {
				return f
			}
			break
		}
	}

	if subject.DefaultFacultyID != nil {
		if f, ok := dir.lookup(*subject.DefaultFacultyID); ok {
			return f
		}
	}

	return models.NotAssignedFaculty()
}
