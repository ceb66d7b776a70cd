package guest

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the guest service.
var (
	ErrNotFound     = errors.New("guest not found")
	ErrInvalidInput = errors.New("invalid guest input")

	ErrMissingFirstName = fmt.Errorf("%w: first name is required", ErrInvalidInput)
	ErrMissingLastName  = fmt.Errorf("%w: last name is required", ErrInvalidInput)

	ErrInvalidServiceConfig = errors.New("invalid guest service config")
)
