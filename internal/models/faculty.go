package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotAssignedFacultyID is the reserved ID of the placeholder faculty used when
// a subject has no accountable faculty for a student.
const NotAssignedFacultyID = "not-assigned"

type Faculty struct {
	ID          string                     `json:"id" gorm:"primaryKey;size:36"`
	Name        string                     `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Phone       string                     `json:"phone" gorm:"not null;size:20;uniqueIndex" validate:"required,min=5,max=20"`
	Designation string                     `json:"designation" gorm:"size:100"`
	Department  string                     `json:"department" gorm:"size:100;index"`
	IsActive    bool                       `json:"is_active" gorm:"default:true"`
	SubjectIDs  datatypes.JSONSlice[string] `json:"subject_ids" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Faculty) TableName() string {
	return "faculty"
}

func (f *Faculty) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// NotAssignedFaculty returns the placeholder that unassigned subject-responses
// are grouped under. It is never persisted.
func NotAssignedFaculty() Faculty {
	return Faculty{
		ID:          NotAssignedFacultyID,
		Name:        "Not Assigned",
		Designation: "",
		Department:  "",
		IsActive:    true,
	}
}

func (f Faculty) IsPlaceholder() bool {
	return f.ID == NotAssignedFacultyID
}

// AddSubject records subjectID in the back-reference set. It reports whether
// the set changed.
func (f *Faculty) AddSubject(subjectID string) bool {
	if slices.Contains(f.SubjectIDs, subjectID) {
		return false
	}
	f.SubjectIDs = append(f.SubjectIDs, subjectID)
	return true
}

func (f *Faculty) RemoveSubject(subjectID string) bool {
	idx := slices.Index(f.SubjectIDs, subjectID)
	if idx < 0 {
		return false
	}
	f.SubjectIDs = slices.Delete(f.SubjectIDs, idx, idx+1)
	return true
}
