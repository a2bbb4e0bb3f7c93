package manifestxml

import (
	"errors"
	"fmt"

	"mpkg/internal/manifest"
)

// ElementError identifies the first element node that failed a decode.
type ElementError struct {
	Kind manifest.Kind
	// Index is the zero-based position of the node within its group.
	Index     int
	ElementID string
	Err       error
}

func (e *ElementError) Error() string {
	if e == nil {
		return ""
	}
	label := fmt.Sprintf("%s #%d", e.Kind, e.Index+1)
	if e.ElementID != "" {
		label += fmt.Sprintf(" (%s)", e.ElementID)
	}
	if e.Err == nil {
		return "decode " + label
	}
	return fmt.Sprintf("decode %s: %v", label, e.Err)
}

func (e *ElementError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorKind classifies the failure for callers that branch on it.
func (e *ElementError) ErrorKind() string {
	if e == nil {
		return ""
	}
	if errors.Is(e.Err, manifest.ErrMissingElementFile) {
		return "not_found"
	}
	return "validation"
}
