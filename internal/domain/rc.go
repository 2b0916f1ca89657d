package domain

import "time"

// RCArtifact is one generated reading-comprehension unit: a shortened
// passage plus five questions. It belongs to exactly one Essay and is
// immutable once created.
type RCArtifact struct {
	ID        int64
	EssayID   int64
	Summary   string
	Category  string
	Questions []Question
	Metadata  Metadata
	CreatedAt time.Time
}

// Question is a single multiple-choice question over the passage.
type Question struct {
	QuestionText string   `json:"questionText"`
	QuestionType string   `json:"questionType"`
	Options      []Option `json:"options"`
	Explanation  string   `json:"explanation"`
}

// Option is one answer choice; exactly one option per question is correct.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Metadata records how an artifact was produced.
type Metadata struct {
	GeneratedAt       time.Time `json:"generatedAt"`
	Model             string    `json:"aiModel"`
	Prompt            string    `json:"promptUsed"`
	WordCount         int       `json:"wordCount"`
	OriginalWordCount int       `json:"originalWordCount,omitempty"`
	Chunks            int       `json:"chunks,omitempty"`
	ProcessingMillis  int64     `json:"processingTime,omitempty"`
	Repaired          bool      `json:"repaired,omitempty"`
}

const (
	QuestionCount = 5
	OptionCount   = 4

	// SummaryMinWords and SummaryMaxWords bound the generated passage length.
	SummaryMinWords = 450
	SummaryMaxWords = 550
)

// Categories is the closed set of subject labels an artifact may carry.
var Categories = []string{
	"Philosophy",
	"Science",
	"Psychology",
	"Technology",
	"Social Sciences",
	"History",
	"Culture",
	"Ethics",
	"Politics",
	"Education",
}

// QuestionTypes lists the accepted questionType values.
var QuestionTypes = []string{
	"main-idea",
	"inference",
	"tone-style",
	"fact-detail",
	"strengthen-weaken",
	"detail",
	"vocabulary",
	"other",
}

// ValidCategory reports whether label is one of the ten subject labels.
func ValidCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}
