package errors

import (
	"fmt"
	"strings"
)

// translatedError is the concrete implementation of TranslatedError.
// It is private to enforce construction through package functions.
type translatedError struct {
	kind           ErrorKind
	operation      string
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

// Error returns the string representation of the error.
// Format: "[KIND] operation: message: cause", omitting empty parts.
func (e *translatedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.kind)
	if e.operation != "" {
		b.WriteString(e.operation)
		b.WriteString(": ")
	}
	b.WriteString(e.message)
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

// Kind returns the error kind.
func (e *translatedError) Kind() ErrorKind {
	return e.kind
}

// Operation returns the name of the failed operation.
func (e *translatedError) Operation() string {
	return e.operation
}

// Classification returns the error classification.
func (e *translatedError) Classification() ErrorClassification {
	return e.classification
}

// Message returns the error message.
func (e *translatedError) Message() string {
	return e.message
}

// Context returns a copy of the context map.
// Returns nil if no context has been attached.
func (e *translatedError) Context() map[string]interface{} {
	return copyContext(e.context)
}

// Unwrap returns the wrapped error for standard library compatibility.
func (e *translatedError) Unwrap() error {
	return e.cause
}

// copyContext returns a shallow copy of ctx, or nil if ctx is empty.
func copyContext(ctx map[string]interface{}) map[string]interface{} {
	if len(ctx) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
