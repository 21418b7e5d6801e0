package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SectionFaculty overrides the default faculty of a subject for one section.
type SectionFaculty struct {
	SectionID string `json:"section_id"`
	FacultyID string `json:"faculty_id"`
}

type Subject struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	Name     string `json:"name" gorm:"not null;size:200;uniqueIndex:idx_subject_key" validate:"required,min=1,max=200"`
	CourseID string `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_subject_key" validate:"required,uuid"`
	Year     int    `json:"year" gorm:"not null;uniqueIndex:idx_subject_key" validate:"required,min=1,max=6"`
	Semester int    `json:"semester" gorm:"not null;uniqueIndex:idx_subject_key" validate:"required,min=1,max=2"`
	IsLab    bool   `json:"is_lab" gorm:"default:false"`

	// Faculty assignment: a default for every student, per-section overrides, or neither.
	DefaultFacultyID *string                            `json:"default_faculty_id" gorm:"size:36;index"`
	SectionFaculties datatypes.JSONSlice[SectionFaculty] `json:"section_faculties" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Subject) TableName() string {
	return "subjects"
}

func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// HasSectionFaculties reports whether any per-section override exists.
func (s *Subject) HasSectionFaculties() bool {
	return len(s.SectionFaculties) > 0
}

// AssignSection sets (or replaces) the faculty for sectionID and returns the
// faculty ID it replaced, if any.
func (s *Subject) AssignSection(sectionID, facultyID string) (previous string) {
	for i := range s.SectionFaculties {
		if s.SectionFaculties[i].SectionID == sectionID {
			previous = s.SectionFaculties[i].FacultyID
			s.SectionFaculties[i].FacultyID = facultyID
			return previous
		}
	}
	s.SectionFaculties = append(s.SectionFaculties, SectionFaculty{SectionID: sectionID, FacultyID: facultyID})
	return ""
}

// FacultyIDs lists every faculty referenced by the subject, default first.
func (s *Subject) FacultyIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if s.DefaultFacultyID != nil {
		add(*s.DefaultFacultyID)
	}
	for _, sf := range s.SectionFaculties {
		add(sf.FacultyID)
	}
	return ids
}
