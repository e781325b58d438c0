// Package device provides a translation boundary over request/response
// devices such as serial instruments, card readers, and simulated hardware.
//
// A Port names one device reachable through a Driver. Callers open a Session,
// send requests, and receive responses; every failure the driver produces is
// translated into exactly one ErrorKind. The many ways a device can fail to
// answer (no response, not unlocked, a reported fault, a busy or vanished
// port) all collapse to KindDeviceUnavailable, so adding a driver or a new
// device failure never adds a caller branch.
//
// Port.Exchange performs a complete open/send/receive/close cycle and is the
// usual entry point:
//
//	port := device.NewPort(sim.New(), "sim://scale", device.WithSink(sink))
//	resp, err := port.Exchange(ctx, []byte("WEIGH\r\n"))
//	if errors.IsKind(err, errors.KindDeviceUnavailable) {
//	    // try the standby device
//	}
package device

import (
	"context"
	"io"
	"os"

	"github.com/jmgilman/go/boundary/errors"
)

// Operation names attached to translated errors.
const (
	OpOpen     = "open"
	OpSend     = "send"
	OpReceive  = "receive"
	OpClose    = "close"
	OpExchange = "exchange"
	OpDiscover = "discover"
)

// Conn is an open connection to a device.
//
// If a Conn also implements SetDeadline(time.Time) error, the deadline of the
// caller's context is applied to every Send and Receive.
type Conn interface {
	io.ReadWriteCloser
}

// Driver is the collaborator that reaches devices.
//
// Drivers return their own failures unchanged; the Port translates them.
type Driver interface {
	// Open connects to the device at address.
	Open(ctx context.Context, address string) (Conn, error)

	// Discover returns the addresses of the devices currently reachable.
	Discover(ctx context.Context) ([]string, error)
}

// Classifier is implemented by drivers that supply their own failure table.
// Driver rules are tried before Rules.
type Classifier interface {
	Rules() errors.Rules
}

// Rules is the failure table shared by every driver.
var Rules = errors.Rules{
	errors.Match(os.ErrDeadlineExceeded, errors.KindTimeout, "device did not answer before the deadline"),
	errors.Match(io.ErrShortWrite, errors.KindDeviceUnavailable, "device accepted a partial request"),
	errors.Match(io.ErrClosedPipe, errors.KindDeviceUnavailable, "device connection closed"),
	errors.Match(os.ErrClosed, errors.KindDeviceUnavailable, "device connection closed"),
	errors.Match(io.EOF, errors.KindDeviceUnavailable, "device closed the connection"),
	errors.Match(io.ErrUnexpectedEOF, errors.KindDeviceUnavailable, "device closed the connection"),
}
