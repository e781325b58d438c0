// Package git provides a read-only section backend over a git tree.
//
// Sections are the files of the tree at a revision (HEAD by default),
// optionally below a subdirectory. The backend reads committed content only;
// the worktree is never consulted. It does not implement section.Writer, so
// storing or removing sections through a Store fails with PERMISSION_DENIED.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	perrors "github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/section"
)

const defaultRevision = "HEAD"

// Backend reads sections from a git repository.
type Backend struct {
	repo     *gogit.Repository
	revision string
	dir      string
}

// Option configures a Backend.
type Option func(*Backend)

// WithRevision selects the revision sections are read from.
// Any revision go-git can resolve is accepted ("main", "v1.2.0", a hash).
func WithRevision(rev string) Option {
	return func(b *Backend) {
		if rev != "" {
			b.revision = rev
		}
	}
}

// WithDir restricts sections to the files below dir.
func WithDir(dir string) Option {
	return func(b *Backend) {
		b.dir = strings.Trim(path.Clean("/"+dir), "/")
	}
}

// New creates a backend over an open repository.
func New(repo *gogit.Repository, opts ...Option) *Backend {
	b := &Backend{repo: repo, revision: defaultRevision}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open opens the repository at path and creates a backend over it.
// Failures are translated with Rules.
func Open(repoPath string, opts ...Option) (*Backend, error) {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return nil, perrors.Translate("openRepository", err, Rules...)
	}
	return New(repo, opts...), nil
}

// Unwrap returns the underlying go-git repository.
func (b *Backend) Unwrap() *gogit.Repository {
	return b.repo
}

// tree resolves the configured revision and directory to a tree.
func (b *Backend) tree(ctx context.Context) (*object.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := b.repo.ResolveRevision(plumbing.Revision(b.revision))
	if err != nil {
		return nil, err
	}
	commit, err := b.repo.CommitObject(*hash)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	if b.dir == "" {
		return tree, nil
	}
	return tree.Tree(b.dir)
}

// Open returns a reader over the named file's blob.
func (b *Backend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	tree, err := b.tree(ctx)
	if err != nil {
		return nil, err
	}
	f, err := tree.File(name)
	if err != nil {
		return nil, err
	}
	return f.Reader()
}

// List returns the path of every file in the tree.
//
// An unborn HEAD, when no revision was configured, and a configured
// directory missing from the tree are section.ErrNoSections. A configured
// revision that does not resolve is a failure.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	tree, err := b.tree(ctx)
	if err != nil {
		if b.absent(err) {
			return nil, fmt.Errorf("%w: %w", section.ErrNoSections, err)
		}
		return nil, err
	}

	var names []string
	err = tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		names = append(names, f.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// absent reports whether a tree lookup failure means nothing has been
// committed where sections live yet.
func (b *Backend) absent(err error) bool {
	switch {
	case b.dir != "" && errors.Is(err, object.ErrDirectoryNotFound):
		return true
	case b.revision == defaultRevision && errors.Is(err, plumbing.ErrReferenceNotFound):
		_, headErr := b.repo.Head()
		return errors.Is(headErr, plumbing.ErrReferenceNotFound)
	default:
		return false
	}
}

// Rules maps go-git failures to error kinds.
func (b *Backend) Rules() perrors.Rules {
	return Rules
}

// Rules is the go-git failure table.
var Rules = perrors.Rules{
	perrors.Match(object.ErrFileNotFound, perrors.KindNotFound, "section does not exist at revision"),
	perrors.Match(object.ErrDirectoryNotFound, perrors.KindNotFound, "section directory does not exist at revision"),
	perrors.Match(plumbing.ErrReferenceNotFound, perrors.KindNotFound, "revision does not exist"),
	perrors.Match(plumbing.ErrObjectNotFound, perrors.KindStorageFailure, "repository object missing"),
	perrors.Match(gogit.ErrRepositoryNotExists, perrors.KindStorageFailure, "repository does not exist"),
}
