package rcgen

import "strings"

// Chunk splits text on whitespace into words and groups them into
// contiguous runs of at most maxWords, each run rejoined with single
// spaces. It produces exactly ceil(words/maxWords) chunks and collapses
// to a single chunk when the text already fits. Pure function.
func Chunk(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxWords <= 0 || len(words) <= maxWords {
		return []string{strings.Join(words, " ")}
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
