package errors

import (
	"context"
	"errors"
)

// Rule maps one family of collaborator failures to an ErrorKind.
//
// Rules are built with Match, MatchType, or MatchFunc and grouped into a
// Translator. A rule with an empty Message uses the kind's default description.
type Rule struct {
	// Kind is the ErrorKind produced when the rule matches.
	Kind ErrorKind

	// Message is the human-readable message attached to the translated error.
	Message string

	match func(error) bool
}

// Matches reports whether the rule applies to err.
func (r Rule) Matches(err error) bool {
	if r.match == nil || err == nil {
		return false
	}
	return r.match(err)
}

// message returns the rule's message or the kind's default description.
func (r Rule) message() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Kind.Describe()
}

// Match returns a rule that applies when errors.Is(err, target) is true.
//
// Example:
//
//	errors.Match(fs.ErrNotExist, errors.KindNotFound, "section does not exist")
func Match(target error, kind ErrorKind, message string) Rule {
	return Rule{
		Kind:    kind,
		Message: message,
		match: func(err error) bool {
			return errors.Is(err, target)
		},
	}
}

// MatchType returns a rule that applies when err's chain contains an error of
// type T.
//
// Example:
//
//	errors.MatchType[*sim.UnlockedError](errors.KindDeviceUnavailable, "device is not locked")
func MatchType[T error](kind ErrorKind, message string) Rule {
	return Rule{
		Kind:    kind,
		Message: message,
		match: func(err error) bool {
			var target T
			return errors.As(err, &target)
		},
	}
}

// MatchFunc returns a rule that applies when pred(err) returns true.
// The predicate receives the untranslated collaborator failure.
func MatchFunc(pred func(error) bool, kind ErrorKind, message string) Rule {
	return Rule{
		Kind:    kind,
		Message: message,
		match:   pred,
	}
}

// Rules is an ordered failure table. The first matching rule wins.
type Rules []Rule

// Lookup returns the first rule matching err.
func (rs Rules) Lookup(err error) (Rule, bool) {
	for _, r := range rs {
		if r.Matches(err) {
			return r, true
		}
	}
	return Rule{}, false
}

// Kinds returns the distinct kinds the table can produce, in rule order.
func (rs Rules) Kinds() []ErrorKind {
	seen := make(map[ErrorKind]bool, len(rs))
	out := make([]ErrorKind, 0, len(rs))
	for _, r := range rs {
		if !seen[r.Kind] {
			seen[r.Kind] = true
			out = append(out, r.Kind)
		}
	}
	return out
}

// Translator maps arbitrary collaborator failures to TranslatedErrors.
//
// A Translator is immutable after construction and safe for concurrent use.
// Translation is total: every non-nil input produces exactly one
// TranslatedError, falling back to KindUnknown when no rule matches.
type Translator struct {
	rules Rules
}

// NewTranslator creates a Translator that tries rules in order.
func NewTranslator(rules ...Rule) *Translator {
	copied := make(Rules, len(rules))
	copy(copied, rules)
	return &Translator{rules: copied}
}

// With returns a new Translator whose rules are tried before t's rules.
func (t *Translator) With(rules ...Rule) *Translator {
	combined := make(Rules, 0, len(rules)+len(t.rules))
	combined = append(combined, rules...)
	combined = append(combined, t.rules...)
	return &Translator{rules: combined}
}

// Rules returns a copy of the translator's failure table.
func (t *Translator) Rules() Rules {
	out := make(Rules, len(t.rules))
	copy(out, t.rules)
	return out
}

// Translate converts err into a TranslatedError for the named operation.
//
// Translation order:
//  1. nil returns nil.
//  2. An error that already carries a TranslatedError is returned unchanged,
//     stamped with operation if it has none.
//  3. context.Canceled and context.DeadlineExceeded become KindCancelled and
//     KindTimeout.
//  4. The first matching rule decides the kind and message.
//  5. Anything else becomes KindUnknown.
//
// The original failure is always kept as the cause.
func (t *Translator) Translate(operation string, err error) TranslatedError {
	if err == nil {
		return nil
	}

	var translated TranslatedError
	if errors.As(err, &translated) {
		if translated.Operation() == "" {
			return withOperation(translated, operation)
		}
		return translated
	}

	switch {
	case errors.Is(err, context.Canceled):
		return Wrap(err, KindCancelled, operation, KindCancelled.Describe())
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, KindTimeout, operation, KindTimeout.Describe())
	}

	if rule, ok := t.rules.Lookup(err); ok {
		return Wrap(err, rule.Kind, operation, rule.message())
	}

	return Wrap(err, KindUnknown, operation, KindUnknown.Describe())
}

// Translate converts err using a one-off translator built from rules.
// Returns nil if err is nil.
func Translate(operation string, err error, rules ...Rule) TranslatedError {
	return NewTranslator(rules...).Translate(operation, err)
}
