// Package sim provides a scriptable in-memory device driver.
//
// A Driver holds a set of Devices keyed by address. Each Device answers
// requests through a Responder and can be scripted to fail on open, send, or
// receive with the failure types real instruments produce. It is used to
// exercise device.Port without hardware and as the "sim" driver of sectionctl.
package sim

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmgilman/go/boundary/device"
	"github.com/jmgilman/go/boundary/errors"
)

// ErrNoSuchDevice is returned when no device is attached at an address.
var ErrNoSuchDevice = stderrors.New("no such device")

// ResponseTimeoutError reports that a device did not answer in time.
type ResponseTimeoutError struct {
	Address string
	After   time.Duration
}

func (e *ResponseTimeoutError) Error() string {
	return fmt.Sprintf("device %s did not respond after %s", e.Address, e.After)
}

// UnlockedError reports that a device refused a request because it has not
// been unlocked.
type UnlockedError struct {
	Address string
}

func (e *UnlockedError) Error() string {
	return fmt.Sprintf("device %s is not unlocked", e.Address)
}

// DeviceError is a fault reported by the device itself.
type DeviceError struct {
	Address string
	Code    int
	Reason  string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s reported error %d: %s", e.Address, e.Code, e.Reason)
}

// Responder computes a device's answer to a request. A nil response with a
// nil error means the device stays silent.
type Responder func(request []byte) ([]byte, error)

// Echo answers every request with the request itself.
func Echo() Responder {
	return func(request []byte) ([]byte, error) {
		return append([]byte(nil), request...), nil
	}
}

// Fixed answers every request with response.
func Fixed(response []byte) Responder {
	return func([]byte) ([]byte, error) {
		return append([]byte(nil), response...), nil
	}
}

// Driver is an in-memory device.Driver.
type Driver struct {
	mu      sync.Mutex
	devices map[string]*Device
	timeout time.Duration
}

// New creates a driver with no devices attached.
func New() *Driver {
	return &Driver{
		devices: make(map[string]*Device),
		timeout: time.Second,
	}
}

// Attach makes dev reachable at address, replacing any existing device.
func (d *Driver) Attach(address string, dev *Device) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()

	dev.address = address
	dev.timeout = d.timeout
	d.devices[address] = dev
	return dev
}

// Detach removes the device at address.
func (d *Driver) Detach(address string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.devices, address)
}

// Open implements device.Driver.
func (d *Driver) Open(ctx context.Context, address string) (device.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	dev, ok := d.devices[address]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("open %s: %w", address, ErrNoSuchDevice)
	}

	conn, err := dev.open()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Discover implements device.Driver.
func (d *Driver) Discover(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	addrs := make([]string, 0, len(d.devices))
	for addr := range d.devices {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs, nil
}

var (
	_ device.Driver     = (*Driver)(nil)
	_ device.Classifier = (*Driver)(nil)
)

// Rules implements device.Classifier.
func (d *Driver) Rules() errors.Rules {
	return Rules
}

// Rules classifies the failures produced by simulated devices.
var Rules = errors.Rules{
	errors.MatchType[*ResponseTimeoutError](errors.KindDeviceUnavailable, "device did not respond"),
	errors.MatchType[*UnlockedError](errors.KindDeviceUnavailable, "device is locked"),
	errors.MatchType[*DeviceError](errors.KindDeviceUnavailable, "device reported a fault"),
	errors.Match(ErrNoSuchDevice, errors.KindNotFound, "device does not exist"),
}
