package rcgen

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"EssayRC/internal/domain"
)

// Draft is the parsed-but-not-yet-persisted artifact content. Repaired
// marks structure recovered by the fallback extractor rather than a
// clean JSON parse, so callers can tell guessed structure from
// model-confirmed structure.
type Draft struct {
	Summary   string            `json:"summary"`
	Category  string            `json:"category"`
	Questions []domain.Question `json:"questions"`
	Metadata  struct {
		WordCount int `json:"wordCount"`
	} `json:"metadata"`
	Repaired bool `json:"-"`
}

var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Parse extracts an RC draft from raw model output. It tries, in order:
// a fenced code block, the whole text as JSON, and finally a structural
// extraction heuristic. The draft's word count is always recomputed from
// the actual summary text; the model's self-reported count is ignored.
func Parse(raw string) (Draft, error) {
	var draft Draft

	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &draft); err == nil {
			return finish(draft)
		}
	} else if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &draft); err == nil {
		return finish(draft)
	}

	repaired, ok := extractStructured(raw)
	if !ok {
		return Draft{}, &domain.ValidationError{Violation: "no JSON or recoverable structure in response"}
	}
	repaired.Repaired = true
	return finish(repaired)
}

func finish(draft Draft) (Draft, error) {
	if err := validate(draft); err != nil {
		return Draft{}, err
	}

	draft.Metadata.WordCount = domain.CountWords(draft.Summary)

	for i := range draft.Questions {
		if _, ok := questionTypeSet[draft.Questions[i].QuestionType]; !ok {
			draft.Questions[i].QuestionType = "other"
		}
	}

	return draft, nil
}

func validate(draft Draft) error {
	if strings.TrimSpace(draft.Summary) == "" {
		return &domain.ValidationError{Violation: "summary is missing or empty"}
	}

	if len(draft.Questions) != domain.QuestionCount {
		return &domain.ValidationError{
			Violation: fmt.Sprintf("expected %d questions, got %d", domain.QuestionCount, len(draft.Questions)),
		}
	}

	for i, q := range draft.Questions {
		if len(q.Options) != domain.OptionCount {
			return &domain.ValidationError{
				Violation: fmt.Sprintf("question %d has %d options, expected %d", i+1, len(q.Options), domain.OptionCount),
			}
		}

		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return &domain.ValidationError{
				Violation: fmt.Sprintf("question %d has %d correct options, expected exactly 1", i+1, correct),
			}
		}
	}

	if draft.Category != "" && !domain.ValidCategory(draft.Category) {
		return &domain.ValidationError{
			Violation: fmt.Sprintf("category %q is not one of the standard labels", draft.Category),
		}
	}

	return nil
}

var (
	questionLine = regexp.MustCompile(`^\s*(?:Q(?:uestion)?\s*)?(\d+)\s*[.):]\s*(.+)$`)
	optionLine   = regexp.MustCompile(`^\s*\(?([A-Da-d])[.):]\s*(.+)$`)
	correctMark  = regexp.MustCompile(`(?i)\s*[\[(](?:correct|answer|\*)[\])]\s*$`)
)

// extractStructured is the last-resort recovery path for responses that
// are neither fenced nor bare JSON: it walks the text line by line,
// treating numbered lines as question boundaries and lettered lines as
// options. Everything before the first question becomes the summary.
func extractStructured(raw string) (Draft, bool) {
	var draft Draft
	var summary []string
	var current *domain.Question

	flush := func() {
		if current != nil {
			draft.Questions = append(draft.Questions, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if m := questionLine.FindStringSubmatch(line); m != nil {
			flush()
			current = &domain.Question{QuestionText: strings.TrimSpace(m[2]), QuestionType: "other"}
			continue
		}

		if current != nil {
			if m := optionLine.FindStringSubmatch(line); m != nil {
				text := strings.TrimSpace(m[2])
				isCorrect := correctMark.MatchString(text) || strings.HasSuffix(text, "*")
				text = strings.TrimSuffix(correctMark.ReplaceAllString(text, ""), "*")
				current.Options = append(current.Options, domain.Option{
					Text:      strings.TrimSpace(text),
					IsCorrect: isCorrect,
				})
				continue
			}
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				// trailing prose inside a question block is treated as explanation
				if current.Explanation != "" {
					current.Explanation += " "
				}
				current.Explanation += trimmed
			}
			continue
		}

		if trimmed := strings.TrimSpace(line); trimmed != "" {
			summary = append(summary, trimmed)
		}
	}
	flush()

	draft.Summary = strings.Join(summary, "\n")
	if draft.Summary == "" || len(draft.Questions) == 0 {
		return Draft{}, false
	}

	return draft, true
}
