package analytics

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/feedback-service/internal/models"
)

// Answer is a RawAnswer decoded according to the type of the question it
// answers. Every consumer goes through Decode so there is exactly one parsing
// policy for scale integers, yes/no tokens and multi-select arrays.
type Answer interface {
	answer()
}

type ScaleAnswer struct {
	Value int
	Valid bool
}

type YesNoAnswer struct {
	Yes   bool
	Valid bool
}

type ChoiceAnswer struct {
	Choices []string
}

type TextAnswer struct {
	Text string
}

func (ScaleAnswer) answer()  {}
func (YesNoAnswer) answer()  {}
func (ChoiceAnswer) answer() {}
func (TextAnswer) answer()   {}

// Decode interprets raw for question q.
func Decode(q models.QuestionSnapshot, raw models.RawAnswer) Answer {
	tokens := Tokens(raw)

	switch q.Type {
	case models.QuestionScale:
		if len(tokens) != 1 {
			return ScaleAnswer{}
		}
		v, err := strconv.Atoi(strings.TrimSpace(tokens[0]))
		if err != nil {
			return ScaleAnswer{}
		}
		return ScaleAnswer{Value: v, Valid: true}

	case models.QuestionYesNo:
		if len(tokens) != 1 {
			return YesNoAnswer{}
		}
		switch strings.ToLower(strings.TrimSpace(tokens[0])) {
		case "yes", "true":
			return YesNoAnswer{Yes: true, Valid: true}
		case "no", "false":
			return YesNoAnswer{Yes: false, Valid: true}
		}
		return YesNoAnswer{}

	case models.QuestionMultipleChoice:
		choices := make([]string, 0, len(tokens))
		for _, t := range tokens {
			if t = strings.TrimSpace(t); t != "" {
				choices = append(choices, t)
			}
		}
		return ChoiceAnswer{Choices: choices}

	default:
		return TextAnswer{Text: strings.TrimSpace(strings.Join(tokens, "; "))}
	}
}

// Tokens flattens a raw answer into its string parts: a scalar yields one
// token, an array one token per element. null and objects yield nothing.
func Tokens(raw models.RawAnswer) []string {
	if raw.IsEmpty() {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return appendTokens(nil, v, true)
}

func appendTokens(dst []string, v any, top bool) []string {
	switch t := v.(type) {
	case string:
		return append(dst, t)
	case float64:
		return append(dst, strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		return append(dst, strconv.FormatBool(t))
	case []any:
		if !top {
			return dst
		}
		for _, item := range t {
			dst = appendTokens(dst, item, false)
		}
	}
	return dst
}

// DisplayText renders a raw answer for tabular export; multi-select values are
// joined with "; ".
func DisplayText(raw models.RawAnswer) string {
	return strings.Join(Tokens(raw), "; ")
}
