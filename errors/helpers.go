package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard library errors.As.
//
// Example:
//
//	var translated errors.TranslatedError
//	if errors.As(err, &translated) {
//	    kind := translated.Kind()
//	}
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetKind extracts the ErrorKind from an error.
// Returns KindUnknown if the error is nil or not a TranslatedError.
//
// The kind is taken from the outermost TranslatedError in the chain.
//
// Example:
//
//	if errors.GetKind(err) == errors.KindNotFound {
//	    // Handle not found
//	}
func GetKind(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var translated TranslatedError
	if stderrors.As(err, &translated) {
		return translated.Kind()
	}

	return KindUnknown
}

// IsKind reports whether err is a TranslatedError of the given kind.
// Returns false for nil errors.
func IsKind(err error, kind ErrorKind) bool {
	if err == nil {
		return false
	}
	return GetKind(err) == kind
}

// GetOperation extracts the operation name from an error.
// Returns an empty string if the error is nil or not a TranslatedError.
func GetOperation(err error) string {
	if err == nil {
		return ""
	}

	var translated TranslatedError
	if stderrors.As(err, &translated) {
		return translated.Operation()
	}

	return ""
}

// GetClassification extracts the ErrorClassification from an error.
// Returns ClassificationPermanent if the error is nil or not a TranslatedError.
// This is a safe default that prevents inappropriate retry attempts.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}

	var translated TranslatedError
	if stderrors.As(err, &translated) {
		return translated.Classification()
	}

	return ClassificationPermanent
}

// IsRetryable returns true if the error is classified as retryable.
// Returns false if the error is nil or not a TranslatedError (safe default).
//
// Example:
//
//	if errors.IsRetryable(err) {
//	    time.Sleep(backoff)
//	    return retry(operation)
//	}
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}
