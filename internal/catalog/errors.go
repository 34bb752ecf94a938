package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced vehicle/place/item/document id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique vehicle name collided on create or rename.
	ErrConflict = errors.New("name already exists")
)

// ValidationError reports a rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
