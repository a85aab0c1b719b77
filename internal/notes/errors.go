package notes

import (
	"errors"
	"fmt"
)

var (
	ErrNoteNotFound     = errors.New("note not found")
	ErrInvalidID        = errors.New("invalid note ID format")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a single rejected input field. It is returned
// before anything touches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
