package errors

import "fmt"

// New creates a new TranslatedError with the given kind, operation, and message.
// The classification is determined by the kind using default mappings.
//
// Example:
//
//	err := errors.New(errors.KindInvalidArgument, "retrieveSection", "section name is empty")
func New(kind ErrorKind, operation, message string) TranslatedError {
	return &translatedError{
		kind:           kind,
		operation:      operation,
		classification: getDefaultClassification(kind),
		message:        message,
	}
}

// Newf creates a new TranslatedError with a formatted message.
//
// Example:
//
//	err := errors.Newf(errors.KindInvalidArgument, "retrieveSection", "section name %q escapes the store", name)
func Newf(kind ErrorKind, operation, format string, args ...interface{}) TranslatedError {
	return New(kind, operation, fmt.Sprintf(format, args...))
}
