package rcgen

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EssayRC/internal/domain"
)

func validRCJSON(t *testing.T, questions int) string {
	t.Helper()

	type option struct {
		Text      string `json:"text"`
		IsCorrect bool   `json:"isCorrect"`
	}
	type question struct {
		QuestionText string   `json:"questionText"`
		QuestionType string   `json:"questionType"`
		Options      []option `json:"options"`
		Explanation  string   `json:"explanation"`
	}

	qs := make([]question, questions)
	for i := range qs {
		qs[i] = question{
			QuestionText: fmt.Sprintf("Question %d?", i+1),
			QuestionType: "inference",
			Options: []option{
				{Text: "A"}, {Text: "B", IsCorrect: true}, {Text: "C"}, {Text: "D"},
			},
			Explanation: "B follows from the second paragraph.",
		}
	}

	payload := map[string]any{
		"summary":   "The passage examines how institutions adapt to change.",
		"category":  "Philosophy",
		"questions": qs,
		"metadata":  map[string]any{"wordCount": 9999},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(raw)
}

func TestParseBareJSON(t *testing.T) {
	t.Parallel()

	draft, err := Parse(validRCJSON(t, 5))
	require.NoError(t, err)

	assert.Len(t, draft.Questions, 5)
	assert.Equal(t, "Philosophy", draft.Category)
	assert.False(t, draft.Repaired)
}

func TestParseFencedJSON(t *testing.T) {
	t.Parallel()

	raw := "Here is the content:\n```json\n" + validRCJSON(t, 5) + "\n```\nDone."
	fenced, err := Parse(raw)
	require.NoError(t, err)

	bare, err := Parse(validRCJSON(t, 5))
	require.NoError(t, err)

	assert.Equal(t, bare, fenced, "fenced and bare responses must parse identically")
}

func TestParseRecomputesWordCount(t *testing.T) {
	t.Parallel()

	draft, err := Parse(validRCJSON(t, 5))
	require.NoError(t, err)

	// the model reported 9999; the real count wins
	assert.Equal(t, domain.CountWords(draft.Summary), draft.Metadata.WordCount)
	assert.NotEqual(t, 9999, draft.Metadata.WordCount)
}

func TestParseWrongQuestionCount(t *testing.T) {
	t.Parallel()

	_, err := Parse(validRCJSON(t, 4))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violation, "expected 5 questions, got 4")
}

func TestParseOptionInvariants(t *testing.T) {
	t.Parallel()

	raw := validRCJSON(t, 5)

	noCorrect := strings.Replace(raw, `"isCorrect":true`, `"isCorrect":false`, 1)
	_, err := Parse(noCorrect)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violation, "correct options")
}

func TestParseUnknownCategory(t *testing.T) {
	t.Parallel()

	raw := strings.Replace(validRCJSON(t, 5), "Philosophy", "Astrology", 1)
	_, err := Parse(raw)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violation, "Astrology")
}

func TestParseEmptySummary(t *testing.T) {
	t.Parallel()

	raw := strings.Replace(validRCJSON(t, 5),
		"The passage examines how institutions adapt to change.", "  ", 1)
	_, err := Parse(raw)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violation, "summary")
}

func TestParseFallbackExtraction(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("The passage discusses the ethics of memory and forgetting in public life.\n\n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "Q%d. What does the passage imply about memory #%d?\n", i, i)
		b.WriteString("A) It is unreliable\n")
		b.WriteString("B) It is contested (correct)\n")
		b.WriteString("C) It is fixed\n")
		b.WriteString("D) It is private\n")
		b.WriteString("The second option matches the thesis.\n")
	}

	draft, err := Parse(b.String())
	require.NoError(t, err)

	assert.True(t, draft.Repaired, "heuristic recovery must be flagged")
	require.Len(t, draft.Questions, 5)
	for _, q := range draft.Questions {
		require.Len(t, q.Options, 4)
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
				assert.NotContains(t, o.Text, "correct", "marker must be stripped")
			}
		}
		assert.Equal(t, 1, correct)
	}
}

func TestParseGarbage(t *testing.T) {
	t.Parallel()

	_, err := Parse("I'm sorry, I cannot help with that request.")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestParseCoercesUnknownQuestionType(t *testing.T) {
	t.Parallel()

	raw := strings.ReplaceAll(validRCJSON(t, 5), `"inference"`, `"trick-question"`)
	draft, err := Parse(raw)
	require.NoError(t, err)
	for _, q := range draft.Questions {
		assert.Equal(t, "other", q.QuestionType)
	}
}
