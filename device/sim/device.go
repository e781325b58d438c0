package sim

import (
	"io"
	"sync"
	"time"
)

// Device is a simulated device. Its zero value is not usable; create one with
// NewDevice.
type Device struct {
	mu       sync.Mutex
	address  string
	timeout  time.Duration
	respond  Responder
	pending  [][]byte
	openErr  error
	sendErr  error
	recvErr  error
	opens    int
	closes   int
	requests [][]byte
}

// NewDevice creates a device answering with respond.
func NewDevice(respond Responder) *Device {
	return &Device{respond: respond}
}

// FailOpen makes every subsequent open fail with err. A nil err clears it.
func (d *Device) FailOpen(err error) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openErr = err
	return d
}

// FailSend makes every subsequent write fail with err.
func (d *Device) FailSend(err error) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendErr = err
	return d
}

// FailReceive makes every subsequent read fail with err.
func (d *Device) FailReceive(err error) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recvErr = err
	return d
}

// Opens returns how many connections have been opened.
func (d *Device) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

// Closes returns how many connections have been closed.
func (d *Device) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// Requests returns a copy of every request the device accepted.
func (d *Device) Requests() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.requests))
	copy(out, d.requests)
	return out
}

func (d *Device) open() (*Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opens++
	return &Conn{dev: d}, nil
}

// Conn is a connection to a simulated device.
type Conn struct {
	dev    *Device
	mu     sync.Mutex
	closed bool
}

// Write hands a request to the device's Responder and queues its answer.
func (c *Conn) Write(p []byte) (int, error) {
	if c.isClosed() {
		return 0, io.ErrClosedPipe
	}

	d := c.dev
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sendErr != nil {
		return 0, d.sendErr
	}

	req := append([]byte(nil), p...)
	d.requests = append(d.requests, req)

	if d.respond == nil {
		return len(p), nil
	}
	resp, err := d.respond(req)
	if err != nil {
		return 0, err
	}
	if resp != nil {
		d.pending = append(d.pending, resp)
	}
	return len(p), nil
}

// Read returns the oldest queued answer. A silent device fails with
// *ResponseTimeoutError.
func (c *Conn) Read(p []byte) (int, error) {
	if c.isClosed() {
		return 0, io.ErrClosedPipe
	}

	d := c.dev
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.recvErr != nil {
		return 0, d.recvErr
	}
	if len(d.pending) == 0 {
		return 0, &ResponseTimeoutError{Address: d.address, After: d.timeout}
	}

	next := d.pending[0]
	n := copy(p, next)
	if n < len(next) {
		d.pending[0] = next[n:]
	} else {
		d.pending = d.pending[1:]
	}
	return n, nil
}

// Close releases the connection. Closing twice returns io.ErrClosedPipe.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return io.ErrClosedPipe
	}
	c.closed = true
	c.mu.Unlock()

	c.dev.mu.Lock()
	c.dev.closes++
	c.dev.mu.Unlock()
	return nil
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
