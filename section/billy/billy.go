package billy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	perrors "github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/section"
)

const filePerm = 0o644

// Backend stores sections as files in a billy.Filesystem.
type Backend struct {
	bfs billy.Filesystem
}

// New creates a backend over an existing billy.Filesystem.
func New(bfs billy.Filesystem) *Backend {
	return &Backend{bfs: bfs}
}

// NewLocal creates a backend rooted at dir on the local filesystem.
// The directory does not need to exist until the first write.
func NewLocal(dir string) *Backend {
	return &Backend{bfs: osfs.New(dir)}
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Backend {
	return &Backend{bfs: memfs.New()}
}

// Unwrap returns the underlying billy.Filesystem for go-git integration.
func (b *Backend) Unwrap() billy.Filesystem {
	return b.bfs
}

// normalize converts names to use forward slashes consistently.
func normalize(name string) string {
	return filepath.ToSlash(filepath.Clean(name))
}

// Open opens the named section for reading. Directories are reported as
// missing sections.
func (b *Backend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = normalize(name)
	info, err := b.bfs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return b.bfs.Open(name)
}

// List returns the path of every regular file below the root.
// A root directory that does not exist yet is section.ErrNoSections.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := b.bfs.Stat("."); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", section.ErrNoSections, err)
	}

	var names []string
	err := b.walk(ctx, ".", func(name string) {
		names = append(names, name)
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (b *Backend) walk(ctx context.Context, dir string, visit func(name string)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := b.bfs.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		p := path.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if err := b.walk(ctx, p, visit); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			visit(p)
		}
	}
	return nil
}

// Write stores data under name, creating parent directories as needed and
// replacing any existing content.
func (b *Backend) Write(ctx context.Context, name string, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	name = normalize(name)
	if dir := path.Dir(name); dir != "." {
		if err := b.bfs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := b.bfs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = f.Write(data)
	return err
}

// Remove deletes the named section. Missing sections and directories fail
// with fs.ErrNotExist.
func (b *Backend) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name = normalize(name)
	info, err := b.bfs.Stat(name)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	return b.bfs.Remove(name)
}

// Rules maps go-billy's own sentinel failures. Standard filesystem errors are
// covered by section.FileRules.
func (b *Backend) Rules() perrors.Rules {
	return perrors.Rules{
		perrors.Match(billy.ErrReadOnly, perrors.KindPermissionDenied, "filesystem is read-only"),
		perrors.Match(billy.ErrCrossedBoundary, perrors.KindPermissionDenied, "section path leaves the store root"),
	}
}
