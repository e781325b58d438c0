// Package scope binds resource release to the lifetime of a single operation.
//
// A resource acquired inside a scope is released on every exit path of the
// operation: success, a translated failure, or an unexpected collaborator
// failure. Release happens exactly once, in reverse order of acquisition.
package scope

import (
	"errors"
	"io"
	"sync"
)

// Use acquires a resource, passes it to use, and closes it when use returns.
//
// If acquire fails, use is not called and nothing is released. If use fails,
// its error is returned and any release error is dropped. A release error is
// returned only when use itself succeeded.
//
// Example:
//
//	err := scope.Use(func() (io.ReadCloser, error) {
//	    return backend.Open(ctx, name)
//	}, func(r io.ReadCloser) error {
//	    data, err = io.ReadAll(r)
//	    return err
//	})
func Use[T io.Closer](acquire func() (T, error), use func(T) error) error {
	_, err := UseValue(acquire, func(res T) (struct{}, error) {
		return struct{}{}, use(res)
	})
	return err
}

// UseValue is like Use but returns the value produced by use.
func UseValue[T io.Closer, R any](acquire func() (T, error), use func(T) (R, error)) (result R, err error) {
	res, err := acquire()
	if err != nil {
		return result, err
	}

	defer func() {
		if closeErr := res.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return use(res)
}

// Scope records release functions and runs them in LIFO order exactly once.
//
// The zero value is ready to use. A Scope is safe for concurrent use, but it is
// intended to be owned by a single operation.
type Scope struct {
	mu       sync.Mutex
	releases []func() error
	closed   bool
}

// Defer registers fn to run when the scope is closed.
// If the scope is already closed, fn runs immediately.
func (s *Scope) Defer(fn func() error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = fn()
		return
	}
	s.releases = append(s.releases, fn)
	s.mu.Unlock()
}

// DeferClose registers c.Close to run when the scope is closed.
func (s *Scope) DeferClose(c io.Closer) {
	s.Defer(c.Close)
}

// Close runs every registered release function in reverse order of
// registration and returns their joined errors. Subsequent calls return nil.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	releases := s.releases
	s.releases = nil
	s.mu.Unlock()

	var errs []error
	for i := len(releases) - 1; i >= 0; i-- {
		if err := releases[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Finish closes the scope and merges release errors into *errp.
// A release error replaces *errp only when *errp is nil.
//
// It is meant to be deferred with a named error result:
//
//	func op() (err error) {
//	    var s scope.Scope
//	    defer s.Finish(&err)
//	    ...
//	}
func (s *Scope) Finish(errp *error) {
	if closeErr := s.Close(); closeErr != nil && *errp == nil {
		*errp = closeErr
	}
}
