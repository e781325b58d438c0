// Package special provides neutral substitutes for absent results.
//
// A special-case value satisfies the same contract as a real result: an empty
// slice can be ranged over and measured, an empty map can be read from. It
// signals "valid input, nothing to return" and carries no error information.
// Boundaries apply these substitutions explicitly for outcomes they consider
// expected absence; failures are always reported as errors instead.
package special

// Slice returns s, or a non-nil empty slice if s is nil.
func Slice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Empty returns a non-nil empty slice of T.
func Empty[T any]() []T {
	return []T{}
}

// Map returns m, or a non-nil empty map if m is nil.
func Map[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}

// Value dereferences p, returning the zero value of T if p is nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Or returns v unless it is the zero value of T, in which case it returns fallback.
func Or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}
