package oci

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/report"
	"github.com/jmgilman/go/boundary/section"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote/errcode"
)

func TestBackend_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := section.New(NewMemory("v1"))

	names, err := store.ListSections(ctx)
	require.NoError(t, err)
	require.NotNil(t, names)
	assert.Empty(t, names)

	require.NoError(t, store.StoreSection(ctx, section.Section{Name: "intro", Content: []byte("hello")}))
	require.NoError(t, store.StoreSection(ctx, section.Section{Name: "chapters/one", Content: []byte("once upon")}))
	require.NoError(t, store.StoreSection(ctx, section.Section{Name: "intro", Content: []byte("hello again")}))

	names, err = store.ListSections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"chapters/one", "intro"}, names)

	sec, err := store.RetrieveSection(ctx, "intro")
	require.NoError(t, err)
	assert.Equal(t, "hello again", sec.Text())

	require.NoError(t, store.RemoveSection(ctx, "intro"))

	_, err = store.RetrieveSection(ctx, "intro")
	require.True(t, errors.IsKind(err, errors.KindNotFound))

	err = store.RemoveSection(ctx, "intro")
	require.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestBackend_SharedContent(t *testing.T) {
	ctx := context.Background()
	b := NewMemory("latest")

	require.NoError(t, b.Write(ctx, "a", []byte("same")))
	require.NoError(t, b.Write(ctx, "b", []byte("same")))

	da, err := b.Digest(ctx, "a")
	require.NoError(t, err)
	db, err := b.Digest(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, da, db)

	require.NoError(t, b.Remove(ctx, "a"))
	names, err := b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestBackend_MissingArtifact(t *testing.T) {
	store := section.New(NewMemory("absent"))

	_, err := store.RetrieveSection(context.Background(), "intro")
	require.True(t, errors.IsKind(err, errors.KindNotFound))
	assert.ErrorIs(t, err, errdef.ErrNotFound)
}

// tamperedTarget rewrites section blobs as they are fetched.
type tamperedTarget struct {
	oras.Target
	rewrite func([]byte) []byte
}

func (t *tamperedTarget) Fetch(ctx context.Context, desc ocispec.Descriptor) (io.ReadCloser, error) {
	rc, err := t.Target.Fetch(ctx, desc)
	if err != nil || desc.MediaType != MediaTypeSection {
		return rc, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(t.rewrite(data))), nil
}

func TestBackend_CorruptContent(t *testing.T) {
	tests := []struct {
		name    string
		rewrite func([]byte) []byte
		cause   error
	}{
		{
			name:    "altered byte",
			rewrite: func(b []byte) []byte { b[0] ^= 0xff; return b },
			cause:   content.ErrMismatchedDigest,
		},
		{
			name:    "trailing data",
			rewrite: func(b []byte) []byte { return append(b, "extra"...) },
			cause:   content.ErrTrailingData,
		},
		{
			name:    "truncated",
			rewrite: func(b []byte) []byte { return b[:len(b)-1] },
			cause:   io.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			target := &tamperedTarget{Target: memory.New(), rewrite: tt.rewrite}
			b := New(target, "v1")
			require.NoError(t, b.Write(ctx, "intro", []byte("hello")))

			_, err := section.New(b).RetrieveSection(ctx, "intro")
			require.True(t, errors.IsKind(err, errors.KindStorageFailure), "got %v", err)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

// registryServer answers the distribution API for one repository without
// any manifests. known controls whether the repository exists.
func registryServer(t *testing.T, known bool) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if known && r.URL.Path == "/v2/sections/tags/list" {
			_, _ = io.WriteString(w, `{"name":"sections","tags":[]}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		if known {
			_, _ = io.WriteString(w, `{"errors":[{"code":"MANIFEST_UNKNOWN","message":"manifest unknown"}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"errors":[{"code":"NAME_UNKNOWN","message":"repository name not known to registry"}]}`)
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestRemote_ListSections(t *testing.T) {
	ctx := context.Background()

	t.Run("untagged artifact lists empty", func(t *testing.T) {
		b, err := NewRemote(Config{Reference: registryServer(t, true) + "/sections:v1", PlainHTTP: true})
		require.NoError(t, err)

		names, err := section.New(b).ListSections(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{}, names)
	})

	t.Run("unknown repository fails", func(t *testing.T) {
		b, err := NewRemote(Config{Reference: registryServer(t, false) + "/sections:v1", PlainHTTP: true})
		require.NoError(t, err)

		var reported atomic.Int32
		sink := report.SinkFunc(func(context.Context, errors.TranslatedError) { reported.Add(1) })

		names, err := section.New(b, section.WithSink(sink)).ListSections(ctx)
		require.Nil(t, names)
		require.True(t, errors.IsKind(err, errors.KindNotFound), "got %v", err)
		require.Equal(t, section.OpListSections, errors.GetOperation(err))

		var resp *errcode.ErrorResponse
		require.True(t, errors.As(err, &resp))
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, int32(1), reported.Load())
	})
}

func TestRules(t *testing.T) {
	tests := []struct {
		status int
		kind   errors.ErrorKind
	}{
		{status: http.StatusNotFound, kind: errors.KindNotFound},
		{status: http.StatusUnauthorized, kind: errors.KindPermissionDenied},
		{status: http.StatusForbidden, kind: errors.KindPermissionDenied},
		{status: http.StatusTooManyRequests, kind: errors.KindStorageFailure},
		{status: http.StatusBadGateway, kind: errors.KindStorageFailure},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := fmt.Errorf("fetch manifest: %w", &errcode.ErrorResponse{Method: http.MethodGet, StatusCode: tt.status})
			got := errors.Translate(section.OpRetrieveSection, err, Rules...)
			assert.Equal(t, tt.kind, got.Kind())
		})
	}
}

func TestSplitReference(t *testing.T) {
	tests := []struct {
		ref, repo, tag string
	}{
		{ref: "ghcr.io/org/sections:v1", repo: "ghcr.io/org/sections", tag: "v1"},
		{ref: "localhost:5000/sections", repo: "localhost:5000/sections", tag: "latest"},
		{ref: "localhost:5000/sections:dev", repo: "localhost:5000/sections", tag: "dev"},
		{ref: "ghcr.io/org/sections@sha256:abcd", repo: "ghcr.io/org/sections", tag: "sha256:abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			repo, tag := splitReference(tt.ref)
			assert.Equal(t, tt.repo, repo)
			assert.Equal(t, tt.tag, tag)
		})
	}
}

func TestNewRemote(t *testing.T) {
	b, err := NewRemote(Config{Reference: "localhost:5000/sections:v1", PlainHTTP: true, Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "v1", b.tag)

	_, err = NewRemote(Config{})
	require.True(t, errors.IsKind(err, errors.KindInvalidArgument))

	_, err = NewRemote(Config{Reference: "localhost:5000/sections", Username: "u"})
	require.True(t, errors.IsKind(err, errors.KindInvalidArgument))

	_, err = NewRemote(Config{Reference: "not a reference"})
	require.True(t, errors.IsKind(err, errors.KindInvalidArgument))
}
