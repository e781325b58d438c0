package section

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"syscall"
	"testing"

	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingSink struct {
	mu   sync.Mutex
	errs []errors.TranslatedError
}

func (c *collectingSink) Report(_ context.Context, err errors.TranslatedError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *collectingSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

func TestRetrieveSection(t *testing.T) {
	backend := newFakeBackend(map[string]string{"chapters/intro": "hello"})
	store := New(backend)

	sec, err := store.RetrieveSection(context.Background(), "chapters/intro")
	require.NoError(t, err)
	assert.Equal(t, "chapters/intro", sec.Name)
	assert.Equal(t, "hello", sec.Text())
	assert.Equal(t, int32(1), backend.closed.Load())
}

func TestRetrieveSection_EmptyContentIsNotNil(t *testing.T) {
	store := New(newFakeBackend(map[string]string{"empty": ""}))

	sec, err := store.RetrieveSection(context.Background(), "empty")
	require.NoError(t, err)
	require.NotNil(t, sec.Content)
	require.Empty(t, sec.Content)
}

func TestRetrieveSection_MissingFile(t *testing.T) {
	sink := &collectingSink{}
	store := New(newFakeBackend(nil), WithSink(sink))

	_, err := store.RetrieveSection(context.Background(), "invalid - file")
	require.Error(t, err)

	var translated errors.TranslatedError
	require.True(t, errors.As(err, &translated))
	assert.Equal(t, errors.KindNotFound, translated.Kind())
	assert.Equal(t, OpRetrieveSection, translated.Operation())
	assert.Equal(t, "invalid - file", translated.Context()["section"])

	var pathErr *fs.PathError
	require.True(t, errors.As(translated.Unwrap(), &pathErr))
	assert.Equal(t, "invalid - file", pathErr.Path)

	require.Equal(t, 1, sink.count())
}

func TestRetrieveSection_InvalidNamesMakeNoBackendCall(t *testing.T) {
	names := []string{"", "/etc/passwd", "../secrets", "a/../../b", "dir/", "bad\x00name"}

	for _, name := range names {
		t.Run(fmt.Sprintf("%q", name), func(t *testing.T) {
			backend := newFakeBackend(nil)
			store := New(backend)

			_, err := store.RetrieveSection(context.Background(), name)
			require.True(t, errors.IsKind(err, errors.KindInvalidArgument))
			require.Equal(t, OpRetrieveSection, errors.GetOperation(err))
			require.Zero(t, backend.calls.Load())
		})
	}
}

func TestRetrieveSection_ReleasesHandleOnAllPaths(t *testing.T) {
	errWeird := stderrors.New("controller exploded")

	tests := []struct {
		name     string
		readErr  error
		closeErr error
		wantKind errors.ErrorKind
	}{
		{name: "success"},
		{name: "read fails with mapped error", readErr: io.ErrUnexpectedEOF, wantKind: errors.KindStorageFailure},
		{name: "read fails with unmapped error", readErr: errWeird, wantKind: errors.KindUnknown},
		{name: "close fails", closeErr: syscall.EIO, wantKind: errors.KindStorageFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend(map[string]string{"s": "data"})
			if tt.readErr != nil {
				backend.readErr["s"] = tt.readErr
			}
			if tt.closeErr != nil {
				backend.closeErr["s"] = tt.closeErr
			}

			_, err := New(backend).RetrieveSection(context.Background(), "s")
			if tt.wantKind == "" {
				require.NoError(t, err)
			} else {
				require.True(t, errors.IsKind(err, tt.wantKind), "got %v", err)
			}
			require.Equal(t, backend.opened.Load(), backend.closed.Load())
			require.Equal(t, int32(1), backend.closed.Load())
		})
	}
}

func TestRetrieveSection_NoUntranslatedLeakage(t *testing.T) {
	failures := []error{
		&fs.PathError{Op: "open", Path: "s", Err: fs.ErrNotExist},
		&fs.PathError{Op: "open", Path: "s", Err: fs.ErrPermission},
		fs.ErrExist,
		fs.ErrClosed,
		syscall.ENOSPC,
		ErrReadOnly,
		stderrors.New("something nobody anticipated"),
		context.DeadlineExceeded,
	}

	for _, failure := range failures {
		t.Run(failure.Error(), func(t *testing.T) {
			backend := newFakeBackend(nil)
			backend.openErr["s"] = failure

			_, err := New(backend).RetrieveSection(context.Background(), "s")

			translated, ok := err.(errors.TranslatedError)
			require.True(t, ok, "expected TranslatedError, got %T", err)
			require.Contains(t, errors.Kinds(), translated.Kind())
			require.Equal(t, OpRetrieveSection, translated.Operation())
		})
	}
}

func TestRetrieveSection_Cancelled(t *testing.T) {
	backend := newFakeBackend(map[string]string{"s": "data"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(backend).RetrieveSection(ctx, "s")
	require.True(t, errors.IsKind(err, errors.KindCancelled))
	require.Zero(t, backend.opened.Load())
}

func TestListSections(t *testing.T) {
	store := New(newFakeBackend(map[string]string{"b": "", "a": "", "c/d": ""}))

	names, err := store.ListSections(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c/d"}, names)
}

func TestListSections_EmptyStore(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
	}{
		{"no sections", newFakeBackend(nil)},
		{"backend returns nil", func() *fakeBackend { b := newFakeBackend(nil); b.listNil = true; return b }()},
		{"store location absent", func() *fakeBackend {
			b := newFakeBackend(nil)
			b.listErr = fmt.Errorf("readdir sections: %w", ErrNoSections)
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &collectingSink{}
			names, err := New(tt.backend, WithSink(sink)).ListSections(context.Background())

			require.NoError(t, err)
			require.NotNil(t, names)
			require.Empty(t, names)
			require.Zero(t, sink.count())
		})
	}
}

func TestListSections_Failure(t *testing.T) {
	backend := newFakeBackend(nil)
	backend.listErr = &fs.PathError{Op: "readdir", Path: "sections", Err: fs.ErrPermission}

	names, err := New(backend).ListSections(context.Background())
	require.Nil(t, names)
	require.True(t, errors.IsKind(err, errors.KindPermissionDenied))
	require.Equal(t, OpListSections, errors.GetOperation(err))
}

func TestListSections_NotFoundIsAFailure(t *testing.T) {
	sink := &collectingSink{}
	backend := newFakeBackend(nil)
	backend.listErr = &fs.PathError{Op: "readdir", Path: "sections", Err: fs.ErrNotExist}

	names, err := New(backend, WithSink(sink)).ListSections(context.Background())
	require.Nil(t, names)
	require.True(t, errors.IsKind(err, errors.KindNotFound))
	require.Equal(t, OpListSections, errors.GetOperation(err))
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.Equal(t, 1, sink.count())
}

func TestRetrieveSections(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5"})
	store := New(backend, WithConcurrency(2))

	secs, err := store.RetrieveSections(context.Background(), "e", "a", "c", "b", "d")
	require.NoError(t, err)

	got := make([]string, 0, len(secs))
	for _, s := range secs {
		got = append(got, s.Name+"="+s.Text())
	}
	require.Equal(t, []string{"e=5", "a=1", "c=3", "b=2", "d=4"}, got)
	require.Equal(t, int32(5), backend.closed.Load())
}

func TestRetrieveSections_NoNames(t *testing.T) {
	secs, err := New(newFakeBackend(nil)).RetrieveSections(context.Background())
	require.NoError(t, err)
	require.NotNil(t, secs)
	require.Empty(t, secs)
}

func TestRetrieveSections_ValidatesBeforeReading(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a": "1"})

	_, err := New(backend).RetrieveSections(context.Background(), "a", "../b")
	require.True(t, errors.IsKind(err, errors.KindInvalidArgument))
	require.Equal(t, OpRetrieveSections, errors.GetOperation(err))
	require.Zero(t, backend.calls.Load())
}

func TestRetrieveSections_Failure(t *testing.T) {
	backend := newFakeBackend(map[string]string{"a": "1"})

	secs, err := New(backend).RetrieveSections(context.Background(), "a", "missing")
	require.Nil(t, secs)
	require.True(t, errors.IsKind(err, errors.KindNotFound))
	require.Equal(t, OpRetrieveSections, errors.GetOperation(err))
	require.Equal(t, "missing", errors.ToJSON(err).Context["section"])
	require.Equal(t, backend.opened.Load(), backend.closed.Load())
}

func TestStoreSection(t *testing.T) {
	backend := &writableBackend{fakeBackend: newFakeBackend(nil)}
	store := New(backend)

	require.NoError(t, store.StoreSection(context.Background(), Section{Name: "notes/one", Content: []byte("x")}))

	sec, err := store.RetrieveSection(context.Background(), "notes/one")
	require.NoError(t, err)
	require.Equal(t, "x", sec.Text())
}

func TestStoreSection_ReadOnly(t *testing.T) {
	backend := newFakeBackend(nil)

	err := New(backend).StoreSection(context.Background(), Section{Name: "a", Content: []byte("x")})
	require.True(t, errors.IsKind(err, errors.KindPermissionDenied))
	require.Equal(t, OpStoreSection, errors.GetOperation(err))
	require.True(t, errors.Is(err, ErrReadOnly))
}

func TestStoreSection_WriteFailure(t *testing.T) {
	backend := &writableBackend{fakeBackend: newFakeBackend(nil), writeErr: syscall.ENOSPC}

	err := New(backend).StoreSection(context.Background(), Section{Name: "a"})
	require.True(t, errors.IsKind(err, errors.KindStorageFailure))
	require.True(t, errors.IsRetryable(err))
}

func TestStoreSection_InvalidName(t *testing.T) {
	backend := &writableBackend{fakeBackend: newFakeBackend(nil)}

	err := New(backend).StoreSection(context.Background(), Section{Name: "/abs"})
	require.True(t, errors.IsKind(err, errors.KindInvalidArgument))
	require.Zero(t, backend.calls.Load())
}

func TestRemoveSection(t *testing.T) {
	backend := &writableBackend{fakeBackend: newFakeBackend(map[string]string{"a": "1"})}
	store := New(backend)

	require.NoError(t, store.RemoveSection(context.Background(), "a"))

	err := store.RemoveSection(context.Background(), "a")
	require.True(t, errors.IsKind(err, errors.KindNotFound))
	require.Equal(t, OpRemoveSection, errors.GetOperation(err))
}

func TestRemoveSection_ReadOnly(t *testing.T) {
	err := New(newFakeBackend(nil)).RemoveSection(context.Background(), "a")
	require.True(t, errors.IsKind(err, errors.KindPermissionDenied))
}

type classifiedBackend struct {
	*fakeBackend
}

var errThrottled = stderrors.New("throttled")

func (classifiedBackend) Rules() errors.Rules {
	return errors.Rules{
		errors.Match(errThrottled, errors.KindStorageFailure, "backend throttled"),
	}
}

func TestNew_RulePrecedence(t *testing.T) {
	backend := classifiedBackend{newFakeBackend(nil)}
	backend.openErr["a"] = errThrottled
	backend.openErr["b"] = fs.ErrNotExist

	store := New(backend)
	_, err := store.RetrieveSection(context.Background(), "a")
	require.True(t, errors.IsKind(err, errors.KindStorageFailure))

	// Caller rules override backend and file rules.
	store = New(backend, WithRules(errors.Match(fs.ErrNotExist, errors.KindStorageFailure, "index out of sync")))
	_, err = store.RetrieveSection(context.Background(), "b")
	require.True(t, errors.IsKind(err, errors.KindStorageFailure))
	require.Equal(t, "index out of sync", err.(errors.TranslatedError).Message())

	require.Len(t, store.Rules(), 1+1+len(FileRules))
}

func TestStore_ReportsEveryFailure(t *testing.T) {
	sink := &collectingSink{}
	store := New(newFakeBackend(nil), WithSink(report.Multi(sink, report.Discard)))

	_, _ = store.RetrieveSection(context.Background(), "")
	_, _ = store.RetrieveSection(context.Background(), "missing")
	_ = store.StoreSection(context.Background(), Section{Name: "a"})
	_, _ = store.ListSections(context.Background())

	require.Equal(t, 3, sink.count())
}

func TestStore_ConcurrentUse(t *testing.T) {
	store := New(newFakeBackend(map[string]string{"a": "1", "b": "2"}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.RetrieveSection(context.Background(), "a")
			assert.NoError(t, err)
			_, err = store.RetrieveSection(context.Background(), "zzz")
			assert.True(t, errors.IsKind(err, errors.KindNotFound))
		}()
	}
	wg.Wait()
}
