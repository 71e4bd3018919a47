package serrors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error is a coded error with an optional user-facing fix hint. Codes are
// stable identifiers consumed by API clients and the CSV error export.
type Error struct {
	Code         string
	Message      string
	SuggestedFix string
}

func NewError(code, message, suggestedFix string) *Error {
	return &Error{Code: code, Message: message, SuggestedFix: suggestedFix}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy carrying a more specific message under the same code.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{
		Code:         e.Code,
		Message:      fmt.Sprintf(format, args...),
		SuggestedFix: e.SuggestedFix,
	}
}

var (
	ErrUnsupportedVersion = NewError("UNSUPPORTED_VERSION", "unsupported GEDCOM version", "Export the file as GEDCOM 5.5 or 5.5.1")
	ErrParse              = NewError("PARSE_ERROR", "failed to parse GEDCOM input", "Check the file for malformed lines")
	ErrValidation         = NewError("VALIDATION_ERROR", "record failed validation", "Correct the record and re-import")
	ErrValidationWarning  = NewError("VALIDATION_WARNING", "record imported with warnings", "")
	ErrConstraint         = NewError("CONSTRAINT_VIOLATION", "operation violates a storage constraint", "Retry after resolving the conflicting record")
	ErrTimeout            = NewError("TIMEOUT_ERROR", "operation timed out", "Retry with a smaller file or later")
	ErrNetwork            = NewError("NETWORK_ERROR", "network failure", "Check connectivity and retry")
	ErrUnknown            = NewError("UNKNOWN_ERROR", "unexpected error", "")
)

// Classify buckets an arbitrary error into the coded taxonomy. Coded errors
// pass through unchanged; a caller-imposed deadline becomes TIMEOUT_ERROR,
// transport failures NETWORK_ERROR, everything else UNKNOWN_ERROR.
func Classify(err error) *Error {
	var coded *Error
	if errors.As(err, &coded) {
		return coded
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetwork
	}
	return ErrUnknown
}
