package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with a kind, operation, and message while preserving the
// original error. The wrapped error is accessible via Unwrap() and compatible
// with errors.Is and errors.As.
//
// If the wrapped error is a TranslatedError, its classification is preserved.
// Otherwise, the default classification for the kind is used.
//
// Returns nil if err is nil.
//
// Example:
//
//	if err := conn.Close(); err != nil {
//	    return errors.Wrap(err, errors.KindDeviceUnavailable, "close", "failed to release port")
//	}
func Wrap(err error, kind ErrorKind, operation, message string) TranslatedError {
	if err == nil {
		return nil
	}

	return &translatedError{
		kind:           kind,
		operation:      operation,
		classification: inheritClassification(err, kind),
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps an error with a formatted message while preserving the original error.
//
// Returns nil if err is nil.
func Wrapf(err error, kind ErrorKind, operation, format string, args ...interface{}) TranslatedError {
	if err == nil {
		return nil
	}

	return Wrap(err, kind, operation, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps an error and attaches context metadata in a single operation.
// The context map is copied to prevent external mutation.
//
// Returns nil if err is nil.
//
// Example:
//
//	return errors.WrapWithContext(err, errors.KindStorageFailure, "storeSection", "write failed", map[string]interface{}{
//	    "section": name,
//	    "bytes":   len(data),
//	})
func WrapWithContext(err error, kind ErrorKind, operation, message string, ctx map[string]interface{}) TranslatedError {
	if err == nil {
		return nil
	}

	return &translatedError{
		kind:           kind,
		operation:      operation,
		classification: inheritClassification(err, kind),
		message:        message,
		context:        copyContext(ctx),
		cause:          err,
	}
}

// inheritClassification returns the classification of the first TranslatedError
// in err's chain, or the default classification for kind.
func inheritClassification(err error, kind ErrorKind) ErrorClassification {
	var translated TranslatedError
	if errors.As(err, &translated) {
		return translated.Classification()
	}
	return getDefaultClassification(kind)
}
