// Package term is a device.Driver for serial ports and terminal devices.
//
// Ports are opened in raw mode at a fixed baud rate with a read timeout; a
// read that times out without data fails with ErrNoResponse.
package term

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/jmgilman/go/boundary/device"
	"github.com/jmgilman/go/boundary/errors"
	"github.com/pkg/term"
)

// ErrNoResponse is returned by Read when the device stays silent for the
// whole read timeout.
var ErrNoResponse = stderrors.New("device did not respond")

// DefaultPatterns are the glob patterns Discover searches when none are set.
var DefaultPatterns = []string{"/dev/ttyUSB*", "/dev/ttyACM*", "/dev/tty.usbserial*", "/dev/tty.usbmodem*"}

const (
	defaultBaud        = 9600
	defaultReadTimeout = 2 * time.Second
)

// Driver opens serial devices by path.
type Driver struct {
	baud        int
	readTimeout time.Duration
	patterns    []string
}

// Option configures a Driver.
type Option func(*Driver)

// WithBaud sets the line speed.
func WithBaud(baud int) Option {
	return func(d *Driver) {
		d.baud = baud
	}
}

// WithReadTimeout sets how long a read waits for the first byte.
func WithReadTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.readTimeout = timeout
	}
}

// WithPatterns replaces the glob patterns used by Discover.
func WithPatterns(patterns ...string) Option {
	return func(d *Driver) {
		d.patterns = patterns
	}
}

// New creates a serial driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		baud:        defaultBaud,
		readTimeout: defaultReadTimeout,
		patterns:    DefaultPatterns,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var (
	_ device.Driver     = (*Driver)(nil)
	_ device.Classifier = (*Driver)(nil)
)

// Open implements device.Driver. Stale input is discarded before returning.
func (d *Driver) Open(ctx context.Context, address string) (device.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := term.Open(address, term.Speed(d.baud), term.RawMode, term.ReadTimeout(d.readTimeout))
	if err != nil {
		return nil, err
	}
	if err := t.Flush(); err != nil {
		_ = t.Close()
		return nil, err
	}
	return &conn{t: t}, nil
}

// Discover implements device.Driver by globbing the driver's patterns.
func (d *Driver) Discover(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var addrs []string

	for _, pattern := range d.patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			addrs = append(addrs, m)
		}
	}

	sort.Strings(addrs)
	return addrs, nil
}

// Rules implements device.Classifier.
func (d *Driver) Rules() errors.Rules {
	return Rules
}

// Rules classifies serial port failures.
var Rules = errors.Rules{
	errors.Match(ErrNoResponse, errors.KindDeviceUnavailable, "device did not respond"),
	errors.MatchFunc(errnoIn(syscall.EACCES, syscall.EPERM), errors.KindPermissionDenied, "no permission to open the device"),
	errors.MatchFunc(errnoIn(syscall.ENOENT, syscall.ENODEV, syscall.ENXIO), errors.KindDeviceUnavailable, "device is not connected"),
	errors.MatchFunc(errnoIn(syscall.EBUSY, syscall.EAGAIN), errors.KindDeviceUnavailable, "device is busy"),
	errors.MatchFunc(errnoIn(syscall.EIO), errors.KindDeviceUnavailable, "device i/o failed"),
	errors.Match(filepath.ErrBadPattern, errors.KindInvalidArgument, "invalid discovery pattern"),
}

func errnoIn(codes ...syscall.Errno) func(error) bool {
	return func(err error) bool {
		for _, code := range codes {
			if stderrors.Is(err, code) {
				return true
			}
		}
		return false
	}
}

type conn struct {
	t *term.Term
}

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.t.Read(p)
	if n == 0 && stderrors.Is(err, io.EOF) {
		return 0, ErrNoResponse
	}
	return n, err
}

func (c *conn) Write(p []byte) (int, error) {
	return c.t.Write(p)
}

func (c *conn) Close() error {
	restoreErr := c.t.Restore()
	return stderrors.Join(restoreErr, c.t.Close())
}
