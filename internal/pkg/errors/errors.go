package errors

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	ErrConflict = errors.New("conflict")
	ErrInternal = errors.New("internal")

	// ErrExtraction is the only pipeline failure that propagates to the
	// caller: the document was empty, unreadable, or over the size ceiling.
	// Every other degraded condition is reflected in the data instead.
	ErrExtraction = errors.New("extraction failed")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsExtraction(err error) bool {
	return errors.Is(err, ErrExtraction)
}
