package types

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every configuration error.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError represents a rejected configuration value
type ArgumentError struct {
	Field   string
	Message string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidArgument) match any ArgumentError.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// InvalidArgument builds an ArgumentError with a formatted message.
func InvalidArgument(field, format string, args ...any) error {
	return &ArgumentError{Field: field, Message: fmt.Sprintf(format, args...)}
}
