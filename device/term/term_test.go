package term

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/jmgilman/go/boundary/device"
	"github.com/jmgilman/go/boundary/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ttyUSB1", "ttyUSB0", "ttyACM0", "console"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	d := New(WithPatterns(filepath.Join(dir, "ttyUSB*"), filepath.Join(dir, "ttyACM*"), filepath.Join(dir, "tty*")))

	addrs, err := d.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "ttyACM0"),
		filepath.Join(dir, "ttyUSB0"),
		filepath.Join(dir, "ttyUSB1"),
	}, addrs)
}

func TestDiscover_NoDevicesThroughPort(t *testing.T) {
	port := device.NewPort(New(WithPatterns(filepath.Join(t.TempDir(), "ttyUSB*"))), "/dev/ttyUSB0")

	addrs, err := port.Discover(context.Background())
	require.NoError(t, err)
	require.NotNil(t, addrs)
	assert.Empty(t, addrs)
}

func TestDiscover_BadPattern(t *testing.T) {
	port := device.NewPort(New(WithPatterns("[")), "/dev/ttyUSB0")

	_, err := port.Discover(context.Background())
	require.True(t, errors.IsKind(err, errors.KindInvalidArgument))
}

func TestOpen_MissingDevice(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "ttyUSB9")
	port := device.NewPort(New(), missing)

	_, err := port.Exchange(context.Background(), []byte("PING"))
	require.True(t, errors.IsKind(err, errors.KindDeviceUnavailable))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRules(t *testing.T) {
	tests := []struct {
		err  error
		kind errors.ErrorKind
	}{
		{err: ErrNoResponse, kind: errors.KindDeviceUnavailable},
		{err: &fs.PathError{Op: "open", Path: "/dev/ttyUSB0", Err: syscall.ENOENT}, kind: errors.KindDeviceUnavailable},
		{err: &fs.PathError{Op: "open", Path: "/dev/ttyUSB0", Err: syscall.EBUSY}, kind: errors.KindDeviceUnavailable},
		{err: &fs.PathError{Op: "read", Path: "/dev/ttyUSB0", Err: syscall.EIO}, kind: errors.KindDeviceUnavailable},
		{err: &fs.PathError{Op: "open", Path: "/dev/ttyUSB0", Err: syscall.EACCES}, kind: errors.KindPermissionDenied},
		{err: syscall.EPERM, kind: errors.KindPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.err), func(t *testing.T) {
			got := errors.Translate(device.OpOpen, tt.err, New().Rules()...)
			assert.Equal(t, tt.kind, got.Kind())
		})
	}
}
