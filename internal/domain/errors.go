package domain

import (
	"errors"
	"fmt"
)

var (
	ErrReportNotFound   = errors.New("report not found")
	ErrAlreadyConfirmed = errors.New("report already confirmed by this user")
	ErrInvalidStatus    = errors.New("invalid moderation status")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("insufficient permissions")
)

// ValidationError is a user-visible rejection of input. Analysis does not proceed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
