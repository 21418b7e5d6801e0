package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionSnapshot is the immutable copy of a question embedded in a response
// at submission time. It is deliberately a separate type from QuestionDefinition
// so that analytics never re-join answers to the live, editable form.
type QuestionSnapshot struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  []string     `json:"options,omitempty"`
	ScaleMin *int         `json:"scale_min,omitempty"`
	ScaleMax *int         `json:"scale_max,omitempty"`
}

func SnapshotOf(def QuestionDefinition) QuestionSnapshot {
	snap := QuestionSnapshot{
		ID:       def.ID,
		Text:     def.Text,
		Type:     def.Type,
		Required: def.Required,
		Options:  append([]string(nil), def.Options...),
	}
	if def.ScaleMin != nil {
		v := *def.ScaleMin
		snap.ScaleMin = &v
	}
	if def.ScaleMax != nil {
		v := *def.ScaleMax
		snap.ScaleMax = &v
	}
	return snap
}

// ScaleBounds returns the declared [min, max] of a scale question, falling back
// to 1..5 and normalising reversed bounds.
func (q QuestionSnapshot) ScaleBounds() (int, int) {
	lo, hi := DefaultScaleMin, DefaultScaleMax
	if q.ScaleMin != nil {
		lo = *q.ScaleMin
	}
	if q.ScaleMax != nil {
		hi = *q.ScaleMax
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// RawAnswer holds an answer exactly as submitted: a JSON string, number,
// boolean, array or null. Interpretation is left to the analytics package.
type RawAnswer json.RawMessage

func (a RawAnswer) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return a, nil
}

func (a *RawAnswer) UnmarshalJSON(data []byte) error {
	*a = append((*a)[0:0], data...)
	return nil
}

// IsEmpty reports whether the answer is missing: null, blank string or empty array.
func (a RawAnswer) IsEmpty() bool {
	trimmed := bytes.TrimSpace(a)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return true
		}
		return strings.TrimSpace(s) == ""
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return true
		}
		return len(items) == 0
	}
	return false
}

func StringAnswer(s string) RawAnswer {
	b, _ := json.Marshal(s)
	return RawAnswer(b)
}

func ListAnswer(values ...string) RawAnswer {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return RawAnswer(b)
}

func BoolAnswer(v bool) RawAnswer {
	b, _ := json.Marshal(v)
	return RawAnswer(b)
}

func NumberAnswer(v float64) RawAnswer {
	b, _ := json.Marshal(v)
	return RawAnswer(b)
}

// SubjectResponse is the part of a submission that concerns one subject.
// Answers[i] answers Questions[i].
type SubjectResponse struct {
	SubjectID string             `json:"subject_id"`
	FormID    string             `json:"form_id"`
	Questions []QuestionSnapshot `json:"questions"`
	Answers   []RawAnswer        `json:"answers"`
}

// AnswerFor returns the answer given to questionID. Indices past the end of
// either slice count as unanswered.
func (sr SubjectResponse) AnswerFor(questionID string) (RawAnswer, bool) {
	for i, q := range sr.Questions {
		if q.ID != questionID {
			continue
		}
		if i >= len(sr.Answers) || sr.Answers[i].IsEmpty() {
			return nil, false
		}
		return sr.Answers[i], true
	}
	return nil, false
}

type Response struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	StudentName  string `json:"student_name" gorm:"not null;size:100"`
	StudentPhone string `json:"student_phone" gorm:"size:20"`
	RollNumber   string `json:"roll_number" gorm:"not null;size:50;uniqueIndex:idx_response_submission"`

	FormID    string `json:"form_id" gorm:"not null;size:36;index"`
	CourseID  string `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_response_submission;index"`
	Year      int    `json:"year" gorm:"not null;uniqueIndex:idx_response_submission"`
	Semester  int    `json:"semester" gorm:"not null;uniqueIndex:idx_response_submission"`
	SectionID string `json:"section_id" gorm:"size:36;index"`

	// Activation period captured by value at submission time.
	PeriodStart time.Time  `json:"period_start" gorm:"not null;uniqueIndex:idx_response_submission"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`

	SubmittedAt      time.Time                            `json:"submitted_at" gorm:"not null;index"`
	SubjectResponses datatypes.JSONSlice[SubjectResponse] `json:"subject_responses" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

func (Response) TableName() string {
	return "responses"
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *Response) Period() ActivationPeriod {
	return ActivationPeriod{Start: r.PeriodStart, End: r.PeriodEnd}
}
