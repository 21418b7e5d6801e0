package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/feedback-service/internal/models"
)

func intPtr(v int) *int { return &v }

func scaleQuestion(id string, lo, hi int) models.QuestionSnapshot {
	return models.QuestionSnapshot{ID: id, Text: "Rate the course", Type: models.QuestionScale, ScaleMin: intPtr(lo), ScaleMax: intPtr(hi)}
}

func TestAggregate_Scale(t *testing.T) {
	q := scaleQuestion("q1", 1, 5)
	answers := []models.RawAnswer{
		models.StringAnswer("4"),
		models.StringAnswer("5"),
		models.StringAnswer("x"),
		models.StringAnswer("3"),
	}

	qa := Aggregate(q, answers, 4, DefaultOptions())

	require.NotNil(t, qa.ScaleSummary)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 1, 5: 1}, qa.Distribution)
	assert.Equal(t, 4.0, qa.Average)
	assert.Equal(t, 3, qa.TotalResponses)
	assert.Equal(t, 3, qa.Min)
	assert.Equal(t, 5, qa.Max)
	assert.Equal(t, 75.0, qa.ResponseRate)
	assert.Nil(t, qa.YesNoSummary)
	assert.Nil(t, qa.TextSummary)
}

func TestAggregate_ScaleDistributionCompleteness(t *testing.T) {
	t.Run("custom bounds", func(t *testing.T) {
		qa := Aggregate(scaleQuestion("q1", 0, 10), []models.RawAnswer{models.NumberAnswer(7)}, 1, DefaultOptions())
		assert.Len(t, qa.Distribution, 11)
		assert.Equal(t, 1, qa.Distribution[7])
	})

	t.Run("default bounds when unset", func(t *testing.T) {
		q := models.QuestionSnapshot{ID: "q1", Type: models.QuestionScale}
		qa := Aggregate(q, nil, 0, DefaultOptions())
		assert.Len(t, qa.Distribution, 5)
		assert.Equal(t, 0.0, qa.Average)
		assert.Equal(t, 0, qa.TotalResponses)
		assert.Equal(t, 0.0, qa.ResponseRate)
	})

	t.Run("out of range values are ignored", func(t *testing.T) {
		answers := []models.RawAnswer{models.StringAnswer("9"), models.StringAnswer("0"), models.StringAnswer("3")}
		qa := Aggregate(scaleQuestion("q1", 1, 5), answers, 3, DefaultOptions())

		assert.Len(t, qa.Distribution, 5)
		assert.NotContains(t, qa.Distribution, 9)
		assert.NotContains(t, qa.Distribution, 0)
		assert.Equal(t, 1, qa.Distribution[3])
		assert.Equal(t, 3, qa.Min)
		assert.Equal(t, 3, qa.Max)
		assert.Equal(t, 3.0, qa.Average)
		assert.Equal(t, 1, qa.TotalResponses)
	})
}

func TestAggregate_YesNo(t *testing.T) {
	q := models.QuestionSnapshot{ID: "q2", Type: models.QuestionYesNo}
	answers := []models.RawAnswer{
		models.StringAnswer("yes"),
		models.StringAnswer("No"),
		models.BoolAnswer(true),
		models.StringAnswer("maybe"),
	}

	qa := Aggregate(q, answers, 4, DefaultOptions())

	require.NotNil(t, qa.YesNoSummary)
	assert.Equal(t, 2, qa.YesCount)
	assert.Equal(t, 1, qa.NoCount)
	assert.InDelta(t, 66.67, qa.YesPercentage, 0.001)
	assert.InDelta(t, 33.33, qa.NoPercentage, 0.001)
	assert.InDelta(t, 100.0, qa.YesPercentage+qa.NoPercentage, 1e-9)
	assert.Equal(t, 4, qa.TotalResponses)
	assert.Equal(t, 100.0, qa.ResponseRate)

	t.Run("no recognized answers", func(t *testing.T) {
		qa := Aggregate(q, []models.RawAnswer{models.StringAnswer("perhaps")}, 1, DefaultOptions())
		assert.Equal(t, 0.0, qa.YesPercentage)
		assert.Equal(t, 0.0, qa.NoPercentage)
	})
}

func TestAggregate_MultipleChoice(t *testing.T) {
	q := models.QuestionSnapshot{ID: "q3", Type: models.QuestionMultipleChoice, Options: []string{"A", "B", "C", "D"}}
	answers := []models.RawAnswer{
		models.StringAnswer("A"),
		models.ListAnswer("A", "B"),
		models.ListAnswer("C", "Z"),
	}

	qa := Aggregate(q, answers, 3, DefaultOptions())

	require.NotNil(t, qa.ChoiceSummary)
	assert.Equal(t, map[string]int{"A": 2, "B": 1, "C": 1, "D": 0, "Z": 1}, qa.ChoiceCounts)
	assert.Equal(t, 3, qa.TotalResponses)
}

func TestAggregate_Text(t *testing.T) {
	q := models.QuestionSnapshot{ID: "q4", Type: models.QuestionTextarea}
	answers := []models.RawAnswer{
		models.StringAnswer("Great teacher"),
		models.StringAnswer("great teacher!"),
		models.StringAnswer("Needs improvement"),
	}

	qa := Aggregate(q, answers, 6, DefaultOptions())

	require.NotNil(t, qa.TextSummary)
	assert.Equal(t, 50.0, qa.ResponseRate)
	assert.Equal(t, []string{"Great teacher", "great teacher!", "Needs improvement"}, qa.SampleResponses)
	require.Len(t, qa.ResponseGroups, 2)
	assert.Equal(t, "Great teacher", qa.ResponseGroups[0].Representative)
	assert.Equal(t, 2, qa.ResponseGroups[0].Count)
	assert.Equal(t, "Needs improvement", qa.ResponseGroups[1].Representative)
	assert.Equal(t, 1, qa.ResponseGroups[1].Count)

	t.Run("clustering disabled", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ClusterText = false
		qa := Aggregate(q, answers, 3, opts)
		assert.Nil(t, qa.ResponseGroups)
	})
}

func TestAggregate_ResponseRateIsBounded(t *testing.T) {
	q := models.QuestionSnapshot{ID: "q5", Type: models.QuestionText}
	answers := []models.RawAnswer{models.StringAnswer("a"), models.StringAnswer("b"), models.StringAnswer("c")}

	assert.Equal(t, 100.0, Aggregate(q, answers, 2, DefaultOptions()).ResponseRate)
	assert.Equal(t, 0.0, Aggregate(q, answers, 0, DefaultOptions()).ResponseRate)
}

func TestAggregate_JSONShape(t *testing.T) {
	qa := Aggregate(scaleQuestion("q1", 1, 3), []models.RawAnswer{models.StringAnswer("2")}, 1, DefaultOptions())

	data, err := json.Marshal(qa)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Contains(t, fields, "distribution")
	assert.Contains(t, fields, "average")
	assert.NotContains(t, fields, "yes_percentage")
	assert.NotContains(t, fields, "frequent_words")
}

func TestDecode(t *testing.T) {
	scale := scaleQuestion("q1", 1, 5)

	assert.Equal(t, ScaleAnswer{Value: 4, Valid: true}, Decode(scale, models.StringAnswer(" 4 ")))
	assert.Equal(t, ScaleAnswer{Value: 3, Valid: true}, Decode(scale, models.NumberAnswer(3)))
	assert.Equal(t, ScaleAnswer{}, Decode(scale, models.NumberAnswer(3.5)))
	assert.Equal(t, ScaleAnswer{}, Decode(scale, models.ListAnswer("1", "2")))

	yesno := models.QuestionSnapshot{Type: models.QuestionYesNo}
	assert.Equal(t, YesNoAnswer{Yes: true, Valid: true}, Decode(yesno, models.StringAnswer("TRUE")))
	assert.Equal(t, YesNoAnswer{Yes: false, Valid: true}, Decode(yesno, models.BoolAnswer(false)))

	text := models.QuestionSnapshot{Type: models.QuestionText}
	assert.Equal(t, TextAnswer{Text: "a; b"}, Decode(text, models.ListAnswer("a", "b")))

	assert.Equal(t, "x; y", DisplayText(models.ListAnswer("x", "y")))
	assert.Equal(t, "", DisplayText(nil))
}
