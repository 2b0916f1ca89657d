package domain

import "fmt"

// FetchError signals a network or HTTP failure reaching the source site
// or the generative API. Crawl and ingest isolate it per item; for a
// single generation attempt it is terminal.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RateLimitError is the throttling subtype of FetchError. It is surfaced
// to the caller rather than retried.
type RateLimitError struct {
	FetchError
}

// Unwrap exposes the embedded FetchError so errors.As treats throttling
// as a fetch failure.
func (e *RateLimitError) Unwrap() error { return &e.FetchError }

// DuplicateError signals a title or url collision with a stored essay.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate essay %s: %q", e.Field, e.Value)
}

// ValidationError names the specific schema invariant the model output violated.
type ValidationError struct {
	Violation string
}

func (e *ValidationError) Error() string {
	return "invalid rc content: " + e.Violation
}

// GenerationError signals a transport failure or non-success status from
// the generative API.
type GenerationError struct {
	Status int
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation failed: status %d", e.Status)
	}
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
