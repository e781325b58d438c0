package device

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/special"
)

// Session is an open connection to a device obtained from Port.Open.
// A Session must be closed. It is not safe for concurrent use.
type Session struct {
	port *Port
	conn Conn

	closeOnce  sync.Once
	closeErr   error
	reportOnce sync.Once
	translated error
	closed     bool
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Send writes data to the device. Empty data fails with KindInvalidArgument
// without touching the device.
func (s *Session) Send(ctx context.Context, data []byte) error {
	if err := s.send(ctx, OpSend, data); err != nil {
		return s.port.fail(ctx, OpSend, err)
	}
	return nil
}

// Receive reads one response from the device, at most the port's read size.
func (s *Session) Receive(ctx context.Context) ([]byte, error) {
	data, err := s.receive(ctx)
	if err != nil {
		return nil, s.port.fail(ctx, OpReceive, err)
	}
	return data, nil
}

// Close releases the connection. Only the first call has any effect; later
// calls return the first call's result.
func (s *Session) Close() error {
	err := s.close()
	if err == nil {
		return nil
	}
	s.reportOnce.Do(func() {
		s.translated = s.port.fail(context.Background(), OpClose, err)
	})
	return s.translated
}

func (s *Session) close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *Session) send(ctx context.Context, op string, data []byte) error {
	if len(data) == 0 {
		return errors.New(errors.KindInvalidArgument, op, "request is empty")
	}
	if s.closed {
		return errors.New(errors.KindInvalidArgument, op, "session is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	defer s.withDeadline(ctx)()

	n, err := s.conn.Write(data)
	if err != nil {
		return err
	}
	if n < len(data) {
		return io.ErrShortWrite
	}
	return nil
}

func (s *Session) receive(ctx context.Context) ([]byte, error) {
	if s.closed {
		return nil, errors.New(errors.KindInvalidArgument, OpReceive, "session is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer s.withDeadline(ctx)()

	buf := make([]byte, s.port.readSize)
	n, err := s.conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err != nil {
		return nil, err
	}
	return special.Empty[byte](), nil
}

// withDeadline applies ctx's deadline to the connection if it supports one
// and returns a function clearing it.
func (s *Session) withDeadline(ctx context.Context) func() {
	d, ok := s.conn.(deadliner)
	if !ok {
		return func() {}
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return func() {}
	}
	_ = d.SetDeadline(deadline)
	return func() { _ = d.SetDeadline(time.Time{}) }
}
