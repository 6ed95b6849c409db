package ai

import (
	"errors"
	"fmt"
)

// ErrNotConfigured indicates a live engine was invoked without its backend
// configured. Always fatal for the run; never a silent fallback to mock.
var ErrNotConfigured = errors.New("ai engine not configured")

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ExtractionError: the source file is unreadable or the extraction backend
// rejected it.
type ExtractionError struct {
	UploadID string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for upload %s: %v", e.UploadID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// InterpretationError: the aggregation stage failed.
type InterpretationError struct {
	Err error
}

func (e *InterpretationError) Error() string {
	return fmt.Sprintf("interpretation failed: %v", e.Err)
}

func (e *InterpretationError) Unwrap() error { return e.Err }
