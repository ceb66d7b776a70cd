package gormstore

import "fmt"

// StoreError wraps a persistence failure with a stable operation code so
// callers can log a category without leaking driver internals.
type StoreError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (storeError StoreError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", storeError.operation, storeError.subject, storeError.code, storeError.err)
}

// Unwrap returns the underlying error.
func (storeError StoreError) Unwrap() error {
	return storeError.err
}

// Code returns the stable error code segment.
func (storeError StoreError) Code() string {
	return storeError.code
}

func wrapStoreError(subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return StoreError{
		operation: errorOperationStore,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
