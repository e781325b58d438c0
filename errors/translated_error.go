package errors

// TranslatedError is the normalized failure produced at a translation boundary.
//
// A TranslatedError carries the ErrorKind callers branch on, the name of the
// logical operation that failed, a human-readable message, and optionally the
// original collaborator failure. The cause is reachable through Unwrap for
// logging and errors.Is/errors.As, but recovery decisions must only look at
// Kind.
type TranslatedError interface {
	error

	// Kind returns the caller-facing classification of the failure.
	Kind() ErrorKind

	// Operation returns the name of the logical operation attempted
	// (e.g. "retrieveSection"). It may be empty for errors created outside a boundary.
	Operation() string

	// Message returns the human-readable error message.
	Message() string

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Context returns attached metadata as a read-only map.
	// Returns nil if no context has been attached.
	Context() map[string]interface{}

	// Unwrap returns the original collaborator failure, if any.
	// Returns nil if this error does not wrap another error.
	Unwrap() error
}
