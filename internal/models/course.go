package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Section is a named group of students inside one (year, semester) of a course.
// Sections are referenced by ID from subjects and responses, never copied.
type Section struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StudentCount *int   `json:"student_count,omitempty"`
}

type YearSemester struct {
	Year     int       `json:"year"`
	Semester int       `json:"semester"`
	Sections []Section `json:"sections"`
}

type Course struct {
	ID            string                           `json:"id" gorm:"primaryKey;size:36"`
	Name          string                           `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Code          string                           `json:"code" gorm:"not null;size:50;uniqueIndex" validate:"required,min=1,max=50"`
	YearSemesters datatypes.JSONSlice[YearSemester] `json:"year_semesters" gorm:"type:jsonb"`
	IsActive      bool                             `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// FindSection looks a section up by ID across every (year, semester) entry.
func (c *Course) FindSection(sectionID string) (*Section, bool) {
	for i := range c.YearSemesters {
		for j := range c.YearSemesters[i].Sections {
			if c.YearSemesters[i].Sections[j].ID == sectionID {
				return &c.YearSemesters[i].Sections[j], true
			}
		}
	}
	return nil, false
}

// SectionByName returns the section called name within (year, semester).
// Names are compared case-insensitively.
func (c *Course) SectionByName(year, semester int, name string) (*Section, bool) {
	ys := c.yearSemester(year, semester)
	if ys == nil {
		return nil, false
	}
	for i := range ys.Sections {
		if strings.EqualFold(ys.Sections[i].Name, strings.TrimSpace(name)) {
			return &ys.Sections[i], true
		}
	}
	return nil, false
}

// EnsureSection returns the section called name within (year, semester),
// creating the (year, semester) entry and the section when they are missing.
// The boolean reports whether the course was modified.
func (c *Course) EnsureSection(year, semester int, name string) (Section, bool) {
	if s, ok := c.SectionByName(year, semester, name); ok {
		return *s, false
	}

	section := Section{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if ys := c.yearSemester(year, semester); ys != nil {
		ys.Sections = append(ys.Sections, section)
		return section, true
	}

	c.YearSemesters = append(c.YearSemesters, YearSemester{
		Year:     year,
		Semester: semester,
		Sections: []Section{section},
	})
	return section, true
}

// SectionName returns the display name for sectionID, or "" when unknown.
func (c *Course) SectionName(sectionID string) string {
	if s, ok := c.FindSection(sectionID); ok {
		return s.Name
	}
	return ""
}

func (c *Course) yearSemester(year, semester int) *YearSemester {
	for i := range c.YearSemesters {
		if c.YearSemesters[i].Year == year && c.YearSemesters[i].Semester == semester {
			return &c.YearSemesters[i]
		}
	}
	return nil
}
