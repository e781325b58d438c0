package section

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"syscall"

	"github.com/jmgilman/go/boundary/errors"
)

// Operation names attached to translated errors.
const (
	OpRetrieveSection  = "retrieveSection"
	OpRetrieveSections = "retrieveSections"
	OpListSections     = "listSections"
	OpStoreSection     = "storeSection"
	OpRemoveSection    = "removeSection"
)

// ErrReadOnly is returned by backends that cannot be written to.
var ErrReadOnly = stderrors.New("section store is read-only")

// ErrNoSections is returned by Backend.List when the location sections live
// in has not been created yet. The Store lists it as an empty store. Any
// other failure, including a NOT_FOUND one, is reported as a failure.
var ErrNoSections = stderrors.New("section store location does not exist yet")

// Section is a named blob of text.
type Section struct {
	Name    string
	Content []byte
}

// Text returns the section content as a string.
func (s Section) Text() string {
	return string(s.Content)
}

// Backend is the collaborator a Store reads sections from.
//
// Backends return their collaborator's failures unchanged; the Store
// translates them. Open returns a handle the Store closes on every path.
// List returns the names of every section, in any order, or ErrNoSections
// when the store's location is absent.
type Backend interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context) ([]string, error)
}

// Writer is implemented by backends that can store and remove sections.
// Remove must fail with an error matching NOT_FOUND in the backend's rules
// when the section does not exist.
type Writer interface {
	Write(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
}

// Classifier is implemented by backends that supply their own failure table.
// Backend rules are tried before FileRules.
type Classifier interface {
	Rules() errors.Rules
}

// FileRules is the failure table shared by every filesystem-like backend.
var FileRules = errors.Rules{
	errors.Match(ErrReadOnly, errors.KindPermissionDenied, "section store is read-only"),
	errors.Match(fs.ErrNotExist, errors.KindNotFound, "section does not exist"),
	errors.Match(fs.ErrPermission, errors.KindPermissionDenied, "access to section denied"),
	errors.Match(fs.ErrExist, errors.KindStorageFailure, "section path is occupied"),
	errors.Match(fs.ErrClosed, errors.KindStorageFailure, "section handle already closed"),
	errors.Match(io.ErrUnexpectedEOF, errors.KindStorageFailure, "section truncated while reading"),
	errors.Match(syscall.ENOSPC, errors.KindStorageFailure, "no space left for section"),
	errors.Match(syscall.EIO, errors.KindStorageFailure, "i/o error on section store"),
}
