package service

import (
	"errors"
	"fmt"
)

// ErrIDRequired is returned when a material or task identifier is empty.
var ErrIDRequired = errors.New("id is required")

// NotFoundError reports that a material, a requested property, or a stored
// object does not exist. The message always names the missing property and
// the offending identifier so callers can diagnose without logs.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func notFoundf(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// MalformedDocumentError reports a document whose nesting violates the
// stored-data invariants (e.g. a dos summary with a total bucket but no
// spin channel entry). It is never downgraded to a missing-data result.
type MalformedDocumentError struct {
	MaterialID string
	Field      string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document for %s: %s", e.MaterialID, e.Field)
}
