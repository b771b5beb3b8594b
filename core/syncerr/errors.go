// Package syncerr defines the failure classes shared by the vendor clients and the sync engine.
package syncerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthentication: source or target login rejected. Aborts the whole pass.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound: SKU or record absent. Aborts only the affected dependency branch.
	ErrNotFound = errors.New("not found")
	// ErrTransientIO: timeout, connection reset or 5xx. The only retried class.
	ErrTransientIO = errors.New("transient i/o failure")
	// ErrValidation: target rejected the payload. The vendor message is kept verbatim.
	ErrValidation = errors.New("validation failed")
	// ErrCycle: a BOM component references one of its ancestors.
	ErrCycle = errors.New("bom cycle detected")
	// ErrMissingField: a required field was absent from a source record.
	ErrMissingField = errors.New("missing required field")
)

// Validation wraps a vendor rejection message.
func Validation(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// MissingField reports which field of which record was absent.
func MissingField(record, field string) error {
	return fmt.Errorf("%w: %s.%s", ErrMissingField, record, field)
}

// Cycle formats the resolution path that closed on itself.
func Cycle(path []string, sku string) error {
	return fmt.Errorf("%w: %s -> %s", ErrCycle, strings.Join(path, " -> "), sku)
}

// Classify returns a short tag for outcome details and API responses.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTransientIO):
		return "transient"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrCycle):
		return "cycle"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	default:
		return "error"
	}
}
