package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events the feedback service emits
type EventType string

const (
	// Response events
	EventResponseSubmitted EventType = "response.submitted"
	EventResponseDeleted   EventType = "response.deleted"

	// Form events
	EventFormActivated   EventType = "form.activated"
	EventFormDeactivated EventType = "form.deactivated"

	// Reporting events
	EventReportExported EventType = "report.exported"
	EventImportFinished EventType = "import.completed"
)

const (
	eventSource  = "feedback-service"
	eventVersion = "1.0"
)

// FeedbackEvent is the envelope every published event shares
type FeedbackEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ResponseSubmittedEvent struct {
	ResponseID  string    `json:"response_id"`
	FormID      string    `json:"form_id"`
	CourseID    string    `json:"course_id"`
	Year        int       `json:"year"`
	Semester    int       `json:"semester"`
	SectionID   string    `json:"section_id,omitempty"`
	SubjectIDs  []string  `json:"subject_ids"`
	PeriodStart time.Time `json:"period_start"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ResponseDeletedEvent struct {
	ResponseID string    `json:"response_id"`
	FormID     string    `json:"form_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}

type FormActivationEvent struct {
	FormID      string     `json:"form_id"`
	FormName    string     `json:"form_name"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
}

type ReportExportedEvent struct {
	FormID     string    `json:"form_id"`
	Format     string    `json:"format"`
	Rows       int       `json:"rows"`
	ExportedAt time.Time `json:"exported_at"`
}

type ImportCompletedEvent struct {
	FileName        string `json:"file_name"`
	Status          string `json:"status"`
	TotalRows       int    `json:"total_rows"`
	SuccessCount    int    `json:"success_count"`
	ErrorCount      int    `json:"error_count"`
	CreatedFaculty  int    `json:"created_faculty"`
	CreatedSubjects int    `json:"created_subjects"`
}

// NewEvent wraps payload in an envelope of the given type
func NewEvent(eventType EventType, payload interface{}) *FeedbackEvent {
	return &FeedbackEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      payload,
	}
}

func NewResponseSubmittedEvent(payload ResponseSubmittedEvent) *FeedbackEvent {
	return NewEvent(EventResponseSubmitted, payload)
}

func NewResponseDeletedEvent(responseID, formID string) *FeedbackEvent {
	return NewEvent(EventResponseDeleted, ResponseDeletedEvent{
		ResponseID: responseID,
		FormID:     formID,
		DeletedAt:  time.Now(),
	})
}

func NewFormActivationEvent(eventType EventType, payload FormActivationEvent) *FeedbackEvent {
	return NewEvent(eventType, payload)
}

func NewReportExportedEvent(formID, format string, rows int) *FeedbackEvent {
	return NewEvent(EventReportExported, ReportExportedEvent{
		FormID:     formID,
		Format:     format,
		Rows:       rows,
		ExportedAt: time.Now(),
	})
}

func NewImportCompletedEvent(payload ImportCompletedEvent) *FeedbackEvent {
	return NewEvent(EventImportFinished, payload)
}

// GenerateEventID returns a new unique event id
func GenerateEventID() string {
	return uuid.NewString()
}
