package errors

import (
	"encoding/json"
)

// ErrorResponse is the flat, serializable representation of a TranslatedError
// handed to diagnostics sinks and API responses.
//
// The wrapped cause is intentionally excluded: collaborator failures often
// contain file paths, endpoints, or credentials.
type ErrorResponse struct {
	// Kind is the caller-facing error kind.
	Kind string `json:"kind"`

	// Operation is the name of the failed operation.
	// Omitted from JSON if empty.
	Operation string `json:"operation,omitempty"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Classification indicates whether the error is retryable or permanent.
	Classification string `json:"classification"`

	// Context contains optional metadata about the error.
	// Omitted from JSON if empty.
	Context map[string]interface{} `json:"context,omitempty"`
}

// ToJSON converts any error to an ErrorResponse suitable for JSON serialization.
// Returns nil if err is nil.
//
// For TranslatedError instances, extracts kind, operation, message,
// classification, and context. For other errors, uses KindUnknown,
// ClassificationPermanent, and the error message.
func ToJSON(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	var translated TranslatedError
	if !As(err, &translated) {
		return &ErrorResponse{
			Kind:           string(KindUnknown),
			Message:        err.Error(),
			Classification: string(ClassificationPermanent),
		}
	}

	return &ErrorResponse{
		Kind:           string(translated.Kind()),
		Operation:      translated.Operation(),
		Message:        translated.Message(),
		Classification: string(translated.Classification()),
		Context:        translated.Context(),
	}
}

// MarshalJSON implements json.Marshaler for translatedError.
//
// Example:
//
//	err := errors.New(errors.KindNotFound, "retrieveSection", "section does not exist")
//	data, _ := json.Marshal(err)
//	// {"kind":"NOT_FOUND","operation":"retrieveSection","message":"section does not exist","classification":"PERMANENT"}
func (e *translatedError) MarshalJSON() ([]byte, error) {
	response := &ErrorResponse{
		Kind:           string(e.kind),
		Operation:      e.operation,
		Message:        e.message,
		Classification: string(e.classification),
		Context:        e.context,
	}
	data, err := json.Marshal(response)
	if err != nil {
		return nil, &translatedError{
			kind:           KindInternal,
			operation:      "marshal",
			classification: ClassificationPermanent,
			message:        "failed to marshal error response",
			cause:          err,
		}
	}
	return data, nil
}
