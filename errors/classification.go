package errors

// ErrorClassification indicates whether an error is worth retrying.
// Callers use it to decide on a recovery action; boundaries never retry themselves.
type ErrorClassification string

const (
	// ClassificationRetryable indicates temporary failures that may succeed on retry.
	// Examples: device busy, storage throttling, deadlines.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent indicates failures that will not succeed on retry.
	// Examples: invalid arguments, permission denials, missing targets.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification indicates retry should be attempted.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// defaultClassifications maps error kinds to their default classification.
var defaultClassifications = map[ErrorKind]ErrorClassification{
	// Retryable errors (temporary failures)
	KindDeviceUnavailable: ClassificationRetryable,
	KindStorageFailure:    ClassificationRetryable,
	KindTimeout:           ClassificationRetryable,

	// Permanent errors (will not succeed on retry)
	KindInvalidArgument:  ClassificationPermanent,
	KindNotFound:         ClassificationPermanent,
	KindPermissionDenied: ClassificationPermanent,
	KindCancelled:        ClassificationPermanent,

	// Unrecognized failures are never retried automatically
	KindUnknown:  ClassificationPermanent,
	KindInternal: ClassificationPermanent,
}

// getDefaultClassification returns the default classification for an error kind.
// Returns ClassificationPermanent if the kind is not in the map.
func getDefaultClassification(kind ErrorKind) ErrorClassification {
	if class, ok := defaultClassifications[kind]; ok {
		return class
	}
	return ClassificationPermanent
}
