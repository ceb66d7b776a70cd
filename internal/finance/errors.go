package finance

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the finance service.
var (
	ErrNotFound     = errors.New("finance record not found")
	ErrInvalidInput = errors.New("invalid finance input")

	ErrNegativeAmountPayed = fmt.Errorf("%w: amount payed must not be negative", ErrInvalidInput)
	ErrNegativeAmountTotal = fmt.Errorf("%w: amount total must not be negative", ErrInvalidInput)
	ErrPayedExceedsTotal   = fmt.Errorf("%w: amount payed exceeds amount total", ErrInvalidInput)
	ErrMissingDescription  = fmt.Errorf("%w: description is required", ErrInvalidInput)

	// ErrCorruptRecord signals a stored record whose derived amount due is
	// negative, which a validated write path can never produce.
	ErrCorruptRecord = errors.New("stored finance record yields negative amount due")

	ErrInvalidServiceConfig = errors.New("invalid finance service config")
)
