package shared

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every domain package. Services wrap these with
// fmt.Errorf("...: %w") so handlers can map them with errors.Is.
var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed input or a failed business rule.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientStock indicates a tracked product would go negative.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict indicates a uniqueness violation (SKU, invoice number, slug, username).
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition indicates a forbidden state transition.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrStoreUnavailable indicates the persistence layer failed mid-request.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
