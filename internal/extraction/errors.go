package extraction

import (
	"fmt"

	"github.com/m3rciful/insurancebot/internal/domain"
)

// Reason classifies why an extraction failed.
type Reason string

const (
	ReasonRead        Reason = "read"
	ReasonUnsupported Reason = "unsupported"
	ReasonTimeout     Reason = "timeout"
	ReasonProvider    Reason = "provider"
	ReasonEmpty       Reason = "empty"
)

// Error reports a failed extraction for one document kind.
type Error struct {
	Kind   domain.DocumentKind
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extract %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("extract %s: %s: %v", e.Kind, e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code is the machine readable failure class used in logs.
func (e *Error) Code() string { return "extraction_" + string(e.Reason) }

// Cause is a short description of the failure that is safe to show to the user.
func (e *Error) Cause() string {
	switch e.Reason {
	case ReasonRead:
		return "the photo could not be read"
	case ReasonUnsupported:
		return "the file is not a supported image"
	case ReasonTimeout:
		return "the recognition service did not answer in time"
	case ReasonProvider:
		return "the recognition service could not process the image"
	case ReasonEmpty:
		return "no text was recognised"
	}
	return "unknown error"
}
