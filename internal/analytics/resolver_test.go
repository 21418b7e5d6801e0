package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/feedback-service/internal/models"
)

func strPtr(s string) *string { return &s }

func TestResolveFaculty(t *testing.T) {
	alice := models.Faculty{ID: "f-alice", Name: "Alice", IsActive: true}
	bob := models.Faculty{ID: "f-bob", Name: "Bob", IsActive: true}
	retired := models.Faculty{ID: "f-retired", Name: "Retired", IsActive: false}
	dir := NewFacultyDirectory([]models.Faculty{alice, bob, retired})

	withOverride := &models.Subject{
		ID:               "sub-1",
		DefaultFacultyID: strPtr(alice.ID),
		SectionFaculties: []models.SectionFaculty{{SectionID: "sec-b", FacultyID: bob.ID}},
	}

	tests := []struct {
		name      string
		subject   *models.Subject
		sectionID string
		want      string
	}{
		{"section override wins", withOverride, "sec-b", bob.ID},
		{"section without override uses default", withOverride, "sec-a", alice.ID},
		{"no section uses default", withOverride, "", alice.ID},
		{
			"deleted override falls back to default",
			&models.Subject{DefaultFacultyID: strPtr(alice.ID), SectionFaculties: []models.SectionFaculty{{SectionID: "sec-b", FacultyID: "f-gone"}}},
			"sec-b",
			alice.ID,
		},
		{
			"override without default",
			&models.Subject{SectionFaculties: []models.SectionFaculty{{SectionID: "sec-b", FacultyID: bob.ID}}},
			"sec-b",
			bob.ID,
		},
		{"no assignment at all", &models.Subject{}, "sec-a", models.NotAssignedFacultyID},
		{"deactivated default", &models.Subject{DefaultFacultyID: strPtr(retired.ID)}, "", models.NotAssignedFacultyID},
		{"unknown default", &models.Subject{DefaultFacultyID: strPtr("f-gone")}, "", models.NotAssignedFacultyID},
		{"missing subject", nil, "sec-a", models.NotAssignedFacultyID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFaculty(tt.subject, tt.sectionID, dir)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestResolveFaculty_Placeholder(t *testing.T) {
	got := ResolveFaculty(&models.Subject{}, "", FacultyDirectory{})

	assert.True(t, got.IsPlaceholder())
	assert.Equal(t, "Not Assigned", got.Name)
}
