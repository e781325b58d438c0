package section

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"sync"
	"sync/atomic"
)

// fakeBackend is an in-memory Backend that records every call and can inject
// failures per section.
type fakeBackend struct {
	mu       sync.Mutex
	sections map[string][]byte

	openErr  map[string]error
	readErr  map[string]error
	closeErr map[string]error
	listErr  error
	listNil  bool

	calls  atomic.Int32
	opened atomic.Int32
	closed atomic.Int32
}

func newFakeBackend(sections map[string]string) *fakeBackend {
	f := &fakeBackend{
		sections: make(map[string][]byte),
		openErr:  make(map[string]error),
		readErr:  make(map[string]error),
		closeErr: make(map[string]error),
	}
	for k, v := range sections {
		f.sections[k] = []byte(v)
	}
	return f
}

func (f *fakeBackend) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.openErr[name]; err != nil {
		return nil, err
	}
	data, ok := f.sections[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	f.opened.Add(1)
	return &fakeHandle{
		r:        bytes.NewReader(data),
		readErr:  f.readErr[name],
		closeErr: f.closeErr[name],
		closed:   &f.closed,
	}, nil
}

func (f *fakeBackend) List(_ context.Context) ([]string, error) {
	f.calls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listNil {
		return nil, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.sections))
	for k := range f.sections {
		names = append(names, k)
	}
	return names, nil
}

type fakeHandle struct {
	r        io.Reader
	readErr  error
	closeErr error
	closed   *atomic.Int32
}

func (h *fakeHandle) Read(p []byte) (int, error) {
	if h.readErr != nil {
		return 0, h.readErr
	}
	return h.r.Read(p)
}

func (h *fakeHandle) Close() error {
	h.closed.Add(1)
	return h.closeErr
}

// writableBackend adds Writer to fakeBackend.
type writableBackend struct {
	*fakeBackend
	writeErr error
}

func (w *writableBackend) Write(_ context.Context, name string, data []byte) error {
	w.calls.Add(1)
	if w.writeErr != nil {
		return w.writeErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sections[name] = append([]byte(nil), data...)
	return nil
}

func (w *writableBackend) Remove(_ context.Context, name string) error {
	w.calls.Add(1)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.sections[name]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(w.sections, name)
	return nil
}
