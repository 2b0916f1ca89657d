package rcgen

import (
	"fmt"
	"strings"

	"EssayRC/internal/domain"
)

// PromptID names the prompt family recorded in artifact metadata.
const PromptID = "cat-rc-v1"

// SchemaHint is embedded in the system instruction so the model answers
// with raw JSON matching the RC schema.
const SchemaHint = `You are an expert CAT (Common Admission Test) content creator.
IMPORTANT: Respond ONLY with raw JSON data without any markdown formatting (no ` + "```json" + ` tags).
The passage must be 450-550 words exactly.
Classify the content into exactly ONE category from: Philosophy, Science, Psychology, Technology, Social Sciences, History, Culture, Ethics, Politics, Education.
Questions must be genuinely challenging with very plausible distractors.
The JSON must follow this schema:
{
  "summary": "450-550 word passage",
  "category": "one of the ten categories",
  "questions": [
    {
      "questionText": "...",
      "questionType": "one of: main-idea, inference, tone-style, fact-detail, strengthen-weaken, detail, vocabulary, other",
      "options": [
        {"text": "...", "isCorrect": false},
        {"text": "...", "isCorrect": true},
        {"text": "...", "isCorrect": false},
        {"text": "...", "isCorrect": false}
      ],
      "explanation": "why the correct option is right and each distractor wrong"
    }
  ],
  "metadata": {"wordCount": 0}
}
Exactly 5 questions, each with exactly 4 options and exactly one correct option.`

// RCPrompt builds the full generation prompt for one essay (or for the
// combined partial summaries of a long essay).
func RCPrompt(title, category, content string) string {
	var b strings.Builder
	b.WriteString("Convert the following essay into a CAT Reading Comprehension passage with questions.\n\n")
	fmt.Fprintf(&b, "ESSAY TITLE: %s\nCATEGORY: %s\n\n", title, category)
	b.WriteString(`INSTRUCTIONS:
1. Create a standalone academic passage of EXACTLY 450-550 words. Do not reference "the author" or "the article". Preserve the arguments, nuance and logical flow of the original, in a formal tone with 3-4 paragraphs.
2. Generate exactly 5 questions, one each of: main-idea, inference, fact-detail, tone-style, strengthen-weaken.
3. Each question has exactly 4 options with exactly one correct. Distractors must be highly plausible: partially true, thematically relevant, reusing attractive keywords from the passage.
4. Explain, for every question, why the correct option is right and why each distractor is wrong.
5. Assign the passage to exactly one of the ten standard categories.

ESSAY CONTENT:
`)
	b.WriteString(content)
	return b.String()
}

// PartialPrompt asks for a condensed prose treatment of one chunk of a
// long essay. The partials are later merged by CombinePrompt.
func PartialPrompt(title string, index, total int, chunk string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The essay %q is being processed in %d parts; this is part %d.\n", title, total, index)
	b.WriteString("Condense this part into a dense prose summary of at most 300 words that preserves its arguments and key details. Respond with plain prose only, no JSON, no headings.\n\nPART CONTENT:\n")
	b.WriteString(chunk)
	return b.String()
}

// CombinePrompt merges per-chunk partial summaries into the input of a
// final RC generation pass.
func CombinePrompt(title, category string, partials []string) string {
	merged := strings.Join(partials, "\n\n")
	return RCPrompt(title, category, merged)
}

// questionTypeSet mirrors domain.QuestionTypes for validation lookups.
var questionTypeSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(domain.QuestionTypes))
	for _, t := range domain.QuestionTypes {
		set[t] = struct{}{}
	}
	return set
}()
