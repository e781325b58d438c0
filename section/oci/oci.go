// Package oci stores sections as the layers of an OCI artifact.
//
// Each section is one layer whose org.opencontainers.image.title annotation is
// the section name. The artifact lives at a single tag; writes repack the
// manifest and move the tag. Any oras.Target works: a remote registry
// repository or an in-memory store.
package oci

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sort"
	"sync"

	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/section"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/errcode"
)

const (
	// ArtifactType identifies a section artifact manifest.
	ArtifactType = "application/vnd.jmgilman.sections.v1"

	// MediaTypeSection is the media type of a section layer.
	MediaTypeSection = "application/vnd.jmgilman.section.v1"
)

// ErrInvalidManifest is returned when the tagged manifest cannot be decoded.
var ErrInvalidManifest = stderrors.New("artifact manifest is not valid JSON")

// Backend reads and writes sections in the artifact tagged tag.
//
// Writes from one Backend are serialized. Concurrent writers in other
// processes can overwrite each other's changes.
type Backend struct {
	target oras.Target
	tag    string
	mu     sync.Mutex
}

var (
	_ section.Backend    = (*Backend)(nil)
	_ section.Writer     = (*Backend)(nil)
	_ section.Classifier = (*Backend)(nil)
)

// New creates a backend over target using the artifact at tag.
func New(target oras.Target, tag string) *Backend {
	return &Backend{target: target, tag: tag}
}

// NewMemory creates a backend over an empty in-memory store.
func NewMemory(tag string) *Backend {
	return New(memory.New(), tag)
}

// Open implements section.Backend. Content is verified against the layer
// digest and size before it is returned.
func (b *Backend) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	m, err := b.manifest(ctx)
	if err != nil {
		return nil, err
	}

	layer, ok := find(m.Layers, name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	data, err := content.FetchAll(ctx, b.target, layer)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// List implements section.Backend.
//
// An artifact tag that does not exist yet in an existing repository is
// section.ErrNoSections. A repository the registry does not know is a
// failure.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	m, err := b.manifest(ctx)
	if errors.Is(err, errdef.ErrNotFound) {
		if lerr := b.repositoryExists(ctx); lerr != nil {
			return nil, lerr
		}
		return nil, fmt.Errorf("%w: %w", section.ErrNoSections, err)
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(m.Layers))
	for _, layer := range m.Layers {
		if title := layer.Annotations[ocispec.AnnotationTitle]; title != "" {
			names = append(names, title)
		}
	}
	sort.Strings(names)
	return names, nil
}

// repositoryExists lists tags to confirm the repository is known to the
// registry. Targets that cannot list tags are local and always exist.
func (b *Backend) repositoryExists(ctx context.Context) error {
	lister, ok := b.target.(registry.TagLister)
	if !ok {
		return nil
	}
	return lister.Tags(ctx, "", func([]string) error { return nil })
}

// Write implements section.Writer.
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	layers, err := b.layers(ctx)
	if err != nil {
		return err
	}

	blob := content.NewDescriptorFromBytes(MediaTypeSection, data)
	exists, err := b.target.Exists(ctx, blob)
	if err != nil {
		return err
	}
	if !exists {
		if err := b.target.Push(ctx, blob, bytes.NewReader(data)); err != nil && !errors.Is(err, errdef.ErrAlreadyExists) {
			return err
		}
	}
	blob.Annotations = map[string]string{ocispec.AnnotationTitle: name}

	replaced := false
	for i, layer := range layers {
		if layer.Annotations[ocispec.AnnotationTitle] == name {
			layers[i] = blob
			replaced = true
		}
	}
	if !replaced {
		layers = append(layers, blob)
	}

	return b.publish(ctx, layers)
}

// Remove implements section.Writer. The layer's blob stays in the store.
func (b *Backend) Remove(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	layers, err := b.layers(ctx)
	if err != nil {
		return err
	}

	kept := layers[:0]
	for _, layer := range layers {
		if layer.Annotations[ocispec.AnnotationTitle] != name {
			kept = append(kept, layer)
		}
	}
	if len(kept) == len(layers) {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}

	return b.publish(ctx, kept)
}

// Rules implements section.Classifier.
func (b *Backend) Rules() errors.Rules {
	return Rules
}

// Rules maps ORAS and registry failures to error kinds.
var Rules = errors.Rules{
	errors.Match(errdef.ErrNotFound, errors.KindNotFound, "artifact or section does not exist"),
	errors.Match(auth.ErrBasicCredentialNotFound, errors.KindPermissionDenied, "registry credentials not found"),
	errors.MatchFunc(hasStatus(http.StatusNotFound), errors.KindNotFound, "artifact or section does not exist"),
	errors.MatchFunc(hasStatus(http.StatusUnauthorized, http.StatusForbidden), errors.KindPermissionDenied, "registry access denied"),
	errors.MatchFunc(hasStatus(http.StatusTooManyRequests), errors.KindStorageFailure, "registry rate limit exceeded"),
	errors.MatchFunc(isServerError, errors.KindStorageFailure, "registry unavailable"),
	errors.Match(content.ErrMismatchedDigest, errors.KindStorageFailure, "section content is corrupt"),
	errors.Match(content.ErrTrailingData, errors.KindStorageFailure, "section content is corrupt"),
	errors.Match(ErrInvalidManifest, errors.KindStorageFailure, "artifact manifest is corrupt"),
	errors.Match(errdef.ErrUnsupported, errors.KindStorageFailure, "registry does not support the operation"),
}

func hasStatus(codes ...int) func(error) bool {
	return func(err error) bool {
		var resp *errcode.ErrorResponse
		if !errors.As(err, &resp) {
			return false
		}
		for _, code := range codes {
			if resp.StatusCode == code {
				return true
			}
		}
		return false
	}
}

func isServerError(err error) bool {
	var resp *errcode.ErrorResponse
	return errors.As(err, &resp) && resp.StatusCode >= http.StatusInternalServerError
}

func (b *Backend) manifest(ctx context.Context) (ocispec.Manifest, error) {
	var m ocispec.Manifest

	_, data, err := oras.FetchBytes(ctx, b.target, b.tag, oras.DefaultFetchBytesOptions)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return m, nil
}

// layers returns the current section layers, or none if the tag does not exist yet.
func (b *Backend) layers(ctx context.Context) ([]ocispec.Descriptor, error) {
	m, err := b.manifest(ctx)
	if errors.Is(err, errdef.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	layers := make([]ocispec.Descriptor, 0, len(m.Layers))
	for _, layer := range m.Layers {
		if layer.Annotations[ocispec.AnnotationTitle] != "" {
			layers = append(layers, layer)
		}
	}
	return layers, nil
}

func (b *Backend) publish(ctx context.Context, layers []ocispec.Descriptor) error {
	desc, err := oras.PackManifest(ctx, b.target, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers: layers,
	})
	if err != nil {
		return err
	}
	return b.target.Tag(ctx, desc, b.tag)
}

func find(layers []ocispec.Descriptor, name string) (ocispec.Descriptor, bool) {
	for _, layer := range layers {
		if layer.Annotations[ocispec.AnnotationTitle] == name {
			return layer, true
		}
	}
	return ocispec.Descriptor{}, false
}

// Digest returns the digest of the layer holding name.
func (b *Backend) Digest(ctx context.Context, name string) (digest.Digest, error) {
	m, err := b.manifest(ctx)
	if err != nil {
		return "", err
	}
	layer, ok := find(m.Layers, name)
	if !ok {
		return "", &fs.PathError{Op: "digest", Path: name, Err: fs.ErrNotExist}
	}
	return layer.Digest, nil
}
