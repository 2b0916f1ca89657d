package domain

import (
	"fmt"
	"strings"
	"time"
)

// Essay is a core entity describing one long-form article captured from the source site.
type Essay struct {
	ID               int64
	Title            string
	URL              string
	Category         string
	Content          string
	PublishedDate    string
	ScrapedDate      time.Time
	WordCount        int
	Processed        bool
	ProcessingStatus Status
	ProcessingError  string
	ProcessedAt      *time.Time
}

// Status enumerates the per-essay RC generation lifecycle.
type Status string

const (
	StatusUnprocessed Status = "unprocessed"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// legal transitions; completed is terminal and retries are only
// allowed from unprocessed or failed.
var transitions = map[Status][]Status{
	StatusUnprocessed: {StatusProcessing},
	StatusFailed:      {StatusProcessing},
	StatusProcessing:  {StatusCompleted, StatusFailed},
}

// Transition validates a status change and returns the target status.
func Transition(from, to Status) (Status, error) {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return to, nil
		}
	}
	return from, fmt.Errorf("illegal status transition %s -> %s", from, to)
}

// CanGenerate reports whether RC generation may start for the current status.
func (s Status) CanGenerate() bool {
	return s == StatusUnprocessed || s == StatusFailed
}

// CountWords splits trimmed text on whitespace runs. Empty input counts as zero.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
