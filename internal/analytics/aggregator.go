package analytics

import (
	"math"

	"github.com/SAP-F-2025/feedback-service/internal/models"
)

// Options tunes the text summaries produced by Aggregate.
type Options struct {
	TopWords         int
	SampleSize       int
	ClusterText      bool
	ClusterThreshold int
}

func DefaultOptions() Options {
	return Options{
		TopWords:         5,
		SampleSize:       5,
		ClusterText:      true,
		ClusterThreshold: 80,
	}
}

type ScaleSummary struct {
	Min          int         `json:"min"`
	Max          int         `json:"max"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

type YesNoSummary struct {
	YesCount      int     `json:"yes_count"`
	NoCount       int     `json:"no_count"`
	YesPercentage float64 `json:"yes_percentage"`
	NoPercentage  float64 `json:"no_percentage"`
}

type ChoiceSummary struct {
	ChoiceCounts map[string]int `json:"choice_counts"`
}

type TextSummary struct {
	FrequentWords   []WordCount     `json:"frequent_words"`
	SampleResponses []string        `json:"sample_responses"`
	ResponseGroups  []ResponseGroup `json:"response_groups,omitempty"`
}

// QuestionAnalytics summarises the answers to one question. Exactly one of the
// embedded summaries is set, chosen by QuestionType.
type QuestionAnalytics struct {
	QuestionID     string              `json:"question_id"`
	QuestionText   string              `json:"question_text"`
	QuestionType   models.QuestionType `json:"question_type"`
	TotalResponses int                 `json:"total_responses"`
	ResponseRate   float64             `json:"response_rate"`

	*ScaleSummary
	*YesNoSummary
	*ChoiceSummary
	*TextSummary
}

// Aggregate summarises answers to q. setSize is the number of subject-responses
// in scope and is the denominator of ResponseRate; answers holds only the
// non-empty answers given. The result depends only on its inputs.
func Aggregate(q models.QuestionSnapshot, answers []models.RawAnswer, setSize int, opts Options) QuestionAnalytics {
	qa := QuestionAnalytics{
		QuestionID:     q.ID,
		QuestionText:   q.Text,
		QuestionType:   q.Type,
		TotalResponses: len(answers),
	}

	switch q.Type {
	case models.QuestionScale:
		qa.ScaleSummary, qa.TotalResponses = summarizeScale(q, answers)
	case models.QuestionYesNo:
		qa.YesNoSummary = summarizeYesNo(q, answers)
	case models.QuestionMultipleChoice:
		qa.ChoiceSummary = summarizeChoices(q, answers)
	default:
		qa.TextSummary = summarizeText(q, answers, opts)
	}
	qa.ResponseRate = responseRate(qa.TotalResponses, setSize)
	return qa
}

func responseRate(answered, setSize int) float64 {
	if setSize <= 0 {
		return 0
	}
	rate := float64(answered) / float64(setSize) * 100
	return round2(math.Max(0, math.Min(100, rate)))
}

// summarizeScale returns the summary and the number of answers that parsed as
// integers within the question's bounds; any other answer is excluded from
// every statistic, so the distribution keeps exactly hi-lo+1 keys.
func summarizeScale(q models.QuestionSnapshot, answers []models.RawAnswer) (*ScaleSummary, int) {
	lo, hi := q.ScaleBounds()
	s := &ScaleSummary{Distribution: make(map[int]int, hi-lo+1)}
	for v := lo; v <= hi; v++ {
		s.Distribution[v] = 0
	}

	parsed, sum := 0, 0
	for _, raw := range answers {
		a := Decode(q, raw).(ScaleAnswer)
		if !a.Valid || a.Value < lo || a.Value > hi {
			continue
		}
		parsed++
		sum += a.Value
		s.Distribution[a.Value]++
		if parsed == 1 || a.Value < s.Min {
			s.Min = a.Value
		}
		if parsed == 1 || a.Value > s.Max {
			s.Max = a.Value
		}
	}
	if parsed > 0 {
		s.Average = round2(float64(sum) / float64(parsed))
	}
	return s, parsed
}

func summarizeYesNo(q models.QuestionSnapshot, answers []models.RawAnswer) *YesNoSummary {
	s := &YesNoSummary{}
	for _, raw := range answers {
		a := Decode(q, raw).(YesNoAnswer)
		switch {
		case !a.Valid:
		case a.Yes:
			s.YesCount++
		default:
			s.NoCount++
		}
	}
	if total := s.YesCount + s.NoCount; total > 0 {
		s.YesPercentage = round2(float64(s.YesCount) / float64(total) * 100)
		s.NoPercentage = 100 - s.YesPercentage
	}
	return s
}

func summarizeChoices(q models.QuestionSnapshot, answers []models.RawAnswer) *ChoiceSummary {
	s := &ChoiceSummary{ChoiceCounts: make(map[string]int, len(q.Options))}
	for _, opt := range q.Options {
		s.ChoiceCounts[opt] = 0
	}
	for _, raw := range answers {
		for _, choice := range Decode(q, raw).(ChoiceAnswer).Choices {
			s.ChoiceCounts[choice]++
		}
	}
	return s
}

func summarizeText(q models.QuestionSnapshot, answers []models.RawAnswer, opts Options) *TextSummary {
	texts := make([]string, 0, len(answers))
	for _, raw := range answers {
		if t := Decode(q, raw).(TextAnswer).Text; t != "" {
			texts = append(texts, t)
		}
	}

	s := &TextSummary{
		FrequentWords:   FrequentWords(texts, opts.TopWords),
		SampleResponses: make([]string, 0, min(len(texts), opts.SampleSize)),
	}
	for _, t := range texts {
		if len(s.SampleResponses) >= opts.SampleSize {
			break
		}
		s.SampleResponses = append(s.SampleResponses, t)
	}
	if opts.ClusterText {
		s.ResponseGroups = ClusterResponses(texts, opts.ClusterThreshold)
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
