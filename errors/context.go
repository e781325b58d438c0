package errors

import "errors"

// WithContext adds a single context field to an error.
// Returns a new TranslatedError with the context field added.
// Existing context fields are preserved.
//
// If err is not a TranslatedError, it is converted to one with KindUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	err := errors.New(errors.KindNotFound, "retrieveSection", "section does not exist")
//	err = errors.WithContext(err, "section", name)
func WithContext(err error, key string, value interface{}) TranslatedError {
	if err == nil {
		return nil
	}

	translated := asTranslated(err)

	newContext := make(map[string]interface{})
	for k, v := range translated.Context() {
		newContext[k] = v
	}
	newContext[key] = value

	return &translatedError{
		kind:           translated.Kind(),
		operation:      translated.Operation(),
		classification: translated.Classification(),
		message:        translated.Message(),
		context:        newContext,
		cause:          translated.Unwrap(),
	}
}

// WithContextMap adds multiple context fields to an error.
// Existing context fields are preserved; new fields override existing ones with the same key.
//
// If err is not a TranslatedError, it is converted to one with KindUnknown.
// Returns nil if err is nil.
func WithContextMap(err error, ctx map[string]interface{}) TranslatedError {
	if err == nil {
		return nil
	}

	translated := asTranslated(err)

	newContext := make(map[string]interface{})
	for k, v := range translated.Context() {
		newContext[k] = v
	}
	for k, v := range ctx {
		newContext[k] = v
	}

	return &translatedError{
		kind:           translated.Kind(),
		operation:      translated.Operation(),
		classification: translated.Classification(),
		message:        translated.Message(),
		context:        copyContext(newContext),
		cause:          translated.Unwrap(),
	}
}

// WithClassification overrides the classification of an error.
//
// If err is not a TranslatedError, it is converted to one with KindUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	// A storage failure caused by a full disk will not clear up on its own.
//	err = errors.WithClassification(err, errors.ClassificationPermanent)
func WithClassification(err error, classification ErrorClassification) TranslatedError {
	if err == nil {
		return nil
	}

	translated := asTranslated(err)

	return &translatedError{
		kind:           translated.Kind(),
		operation:      translated.Operation(),
		classification: classification,
		message:        translated.Message(),
		context:        translated.Context(),
		cause:          translated.Unwrap(),
	}
}

// withOperation returns a copy of err stamped with operation.
func withOperation(err TranslatedError, operation string) TranslatedError {
	return &translatedError{
		kind:           err.Kind(),
		operation:      operation,
		classification: err.Classification(),
		message:        err.Message(),
		context:        err.Context(),
		cause:          err.Unwrap(),
	}
}

// asTranslated returns the first TranslatedError in err's chain, or converts
// err into one with KindUnknown.
func asTranslated(err error) TranslatedError {
	var translated TranslatedError
	if errors.As(err, &translated) {
		return translated
	}
	return &translatedError{
		kind:           KindUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}
