package device

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	bouerrors "github.com/jmgilman/go/boundary/errors"
	"github.com/jmgilman/go/boundary/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConn records deadlines and writes at most limit bytes.
type stubConn struct {
	limit     int
	readErr   error
	closeErr  error
	deadlines []time.Time
	closes    int
}

func (c *stubConn) Read([]byte) (int, error) { return 0, c.readErr }

func (c *stubConn) Write(p []byte) (int, error) {
	if c.limit > 0 && len(p) > c.limit {
		return c.limit, nil
	}
	return len(p), nil
}

func (c *stubConn) Close() error {
	c.closes++
	return c.closeErr
}

func (c *stubConn) SetDeadline(t time.Time) error {
	c.deadlines = append(c.deadlines, t)
	return nil
}

type stubDriver struct {
	conn *stubConn
	err  error
}

func (d *stubDriver) Open(context.Context, string) (Conn, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func (d *stubDriver) Discover(context.Context) ([]string, error) { return nil, d.err }

func TestSession_AppliesContextDeadline(t *testing.T) {
	conn := &stubConn{}
	port := NewPort(&stubDriver{conn: conn}, "stub")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	deadline, _ := ctx.Deadline()

	s, err := port.Open(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Send(ctx, []byte("x")))

	require.Len(t, conn.deadlines, 2)
	assert.Equal(t, deadline, conn.deadlines[0])
	assert.True(t, conn.deadlines[1].IsZero())
}

func TestSession_ShortWrite(t *testing.T) {
	port := NewPort(&stubDriver{conn: &stubConn{limit: 2}}, "stub")

	s, err := port.Open(context.Background())
	require.NoError(t, err)

	err = s.Send(context.Background(), []byte("longer"))
	require.True(t, bouerrors.IsKind(err, bouerrors.KindDeviceUnavailable))
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestSession_ReadDeadlineIsTimeout(t *testing.T) {
	port := NewPort(&stubDriver{conn: &stubConn{readErr: os.ErrDeadlineExceeded}}, "stub")

	s, err := port.Open(context.Background())
	require.NoError(t, err)

	_, err = s.Receive(context.Background())
	require.True(t, bouerrors.IsKind(err, bouerrors.KindTimeout))
}

func TestSession_CloseFailureReportedOnce(t *testing.T) {
	var reports int
	sink := report.SinkFunc(func(context.Context, bouerrors.TranslatedError) { reports++ })
	conn := &stubConn{closeErr: os.ErrClosed}
	port := NewPort(&stubDriver{conn: conn}, "stub", WithSink(sink))

	s, err := port.Open(context.Background())
	require.NoError(t, err)

	first := s.Close()
	second := s.Close()
	require.True(t, bouerrors.IsKind(first, bouerrors.KindDeviceUnavailable))
	assert.Equal(t, OpClose, bouerrors.GetOperation(first))
	assert.Same(t, first, second)
	assert.Equal(t, 1, conn.closes)
	assert.Equal(t, 1, reports)
}

func TestExchange_CloseFailure(t *testing.T) {
	var reports int
	sink := report.SinkFunc(func(context.Context, bouerrors.TranslatedError) { reports++ })
	conn := &stubConn{closeErr: errors.New("port jammed")}
	port := NewPort(&stubDriver{conn: conn}, "stub", WithSink(sink))

	_, err := port.Exchange(context.Background(), []byte("x"))
	require.True(t, bouerrors.IsKind(err, bouerrors.KindUnknown))
	assert.Equal(t, OpExchange, bouerrors.GetOperation(err))
	assert.Equal(t, 1, conn.closes)
	assert.Equal(t, 1, reports)
}
