// Package github provides a read-only section backend over the GitHub
// contents API.
//
// Sections are the files of a repository at a ref, optionally below a
// directory. The backend wraps github.com/google/go-github and maps HTTP
// failures to error kinds by status code.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/google/go-github/v67/github"
	perrors "github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/section"
)

// Backend reads sections from a GitHub repository.
type Backend struct {
	client *github.Client
	owner  string
	repo   string
	ref    string
	dir    string
}

// config holds configuration for Backend.
type config struct {
	client *github.Client
	token  string
	ref    string
	dir    string
}

// Option configures the GitHub backend.
type Option func(*config) error

// WithToken sets the authentication token.
func WithToken(token string) Option {
	return func(cfg *config) error {
		if token == "" {
			err := perrors.New(perrors.KindInvalidArgument, "newBackend", "token cannot be empty")
			return perrors.WithContext(err, "field", "token")
		}
		cfg.token = token
		return nil
	}
}

// WithClient sets a custom GitHub client. This allows full control over the
// HTTP client configuration, authentication, and base URL.
func WithClient(client *github.Client) Option {
	return func(cfg *config) error {
		if client == nil {
			err := perrors.New(perrors.KindInvalidArgument, "newBackend", "client cannot be nil")
			return perrors.WithContext(err, "field", "client")
		}
		cfg.client = client
		return nil
	}
}

// WithRef selects the branch, tag, or commit sections are read from.
// The repository's default branch is used if unset.
func WithRef(ref string) Option {
	return func(cfg *config) error {
		cfg.ref = ref
		return nil
	}
}

// WithDir restricts sections to the files below dir.
func WithDir(dir string) Option {
	return func(cfg *config) error {
		cfg.dir = strings.Trim(path.Clean("/"+dir), "/")
		return nil
	}
}

// New creates a backend for owner/repo.
//
// Without WithClient or WithToken an unauthenticated client is used, which is
// subject to GitHub's low anonymous rate limits.
func New(owner, repo string, opts ...Option) (*Backend, error) {
	if owner == "" || repo == "" {
		err := perrors.New(perrors.KindInvalidArgument, "newBackend", "owner and repository are required")
		return nil, perrors.WithContextMap(err, map[string]interface{}{"owner": owner, "repo": repo})
	}

	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.client == nil {
		cfg.client = github.NewClient(nil)
		if cfg.token != "" {
			cfg.client = cfg.client.WithAuthToken(cfg.token)
		}
	}

	return &Backend{
		client: cfg.client,
		owner:  owner,
		repo:   repo,
		ref:    cfg.ref,
		dir:    cfg.dir,
	}, nil
}

func (b *Backend) contentPath(name string) string {
	if b.dir == "" {
		return name
	}
	return path.Join(b.dir, name)
}

func (b *Backend) options() *github.RepositoryContentGetOptions {
	return &github.RepositoryContentGetOptions{Ref: b.ref}
}

// Open fetches the named file. Directories are reported as missing sections.
func (b *Backend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	file, _, _, err := b.client.Repositories.GetContents(ctx, b.owner, b.repo, b.contentPath(name), b.options())
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

// List walks the directory tree and returns the path of every file,
// relative to the configured directory.
//
// A configured directory missing from an existing repository and ref is
// section.ErrNoSections. A missing repository or ref is a failure.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	var names []string
	err := b.walk(ctx, "", func(name string) { names = append(names, name) })
	if err == nil {
		return names, nil
	}

	if b.dir != "" && statusCode(err) == http.StatusNotFound {
		_, _, _, rootErr := b.client.Repositories.GetContents(ctx, b.owner, b.repo, "", b.options())
		if rootErr != nil {
			return nil, rootErr
		}
		return nil, fmt.Errorf("%w: %w", section.ErrNoSections, err)
	}
	return nil, err
}

func (b *Backend) walk(ctx context.Context, rel string, visit func(string)) error {
	file, entries, _, err := b.client.Repositories.GetContents(ctx, b.owner, b.repo, b.contentPath(rel), b.options())
	if err != nil {
		return err
	}
	if file != nil {
		// The configured directory is a file.
		return &fs.PathError{Op: "readdir", Path: b.dir, Err: fs.ErrNotExist}
	}

	for _, entry := range entries {
		child := path.Join(rel, entry.GetName())
		switch entry.GetType() {
		case "file":
			visit(child)
		case "dir":
			if err := b.walk(ctx, child, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rules maps GitHub API failures to error kinds.
func (b *Backend) Rules() perrors.Rules {
	return Rules
}

// Rules is the GitHub failure table. Rate limit errors are matched before
// status codes because GitHub reports them as 403.
var Rules = perrors.Rules{
	perrors.MatchType[*github.RateLimitError](perrors.KindStorageFailure, "github rate limit exceeded"),
	perrors.MatchType[*github.AbuseRateLimitError](perrors.KindStorageFailure, "github secondary rate limit exceeded"),
	perrors.MatchFunc(hasStatus(http.StatusNotFound), perrors.KindNotFound, "section does not exist in repository"),
	perrors.MatchFunc(hasStatus(http.StatusUnauthorized, http.StatusForbidden), perrors.KindPermissionDenied, "access to repository denied"),
	perrors.MatchFunc(hasStatus(http.StatusTooManyRequests), perrors.KindStorageFailure, "github rate limit exceeded"),
	perrors.MatchFunc(isServerError, perrors.KindStorageFailure, "github unavailable"),
}

func statusCode(err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}

// hasStatus returns a predicate matching GitHub error responses with one of codes.
func hasStatus(codes ...int) func(error) bool {
	return func(err error) bool {
		got := statusCode(err)
		for _, c := range codes {
			if got == c {
				return true
			}
		}
		return false
	}
}

func isServerError(err error) bool {
	return statusCode(err) >= http.StatusInternalServerError
}
