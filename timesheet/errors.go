package timesheet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEntryNotFound is returned when no entry carries the requested identifier.
var ErrEntryNotFound = errors.New("entry not found")

// ErrInvalidIndex indicates a positional lookup outside the sheet bounds.
var ErrInvalidIndex = errors.New("entry index out of range")

// ErrInvalidField is returned for unknown field names or day slots outside Mon–Fri.
var ErrInvalidField = errors.New("invalid entry field")

// ErrInvalidHours marks an hour slot that is neither empty nor a number.
var ErrInvalidHours = errors.New("invalid hours")

// ErrDraftNotFound is returned by Store.Load when no draft exists for the week.
var ErrDraftNotFound = errors.New("draft not found")

func invalidField(name string) error {
	return fmt.Errorf("%w: %q", ErrInvalidField, name)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
