package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

// UnixSocket connects to a Unix domain socket at a filesystem path.
type UnixSocket struct {
	mu   sync.Mutex
	path string
	conn net.Conn
}

// NewUnixSocket constructs a driver bound to path; Connect performs
// the actual dial.
func NewUnixSocket(path string) *UnixSocket {
	return &UnixSocket{path: path}
}

func (u *UnixSocket) Kind() Kind { return KindUnixSocket }

func (u *UnixSocket) Connect(ctx context.Context, address string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	path := address
	if path == "" {
		path = u.path
	}

	dialer := net.Dialer{}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return newError(KindUnixSocket, classifyDialErr(err), "connect failed", err)
	}
	u.conn = conn
	u.path = path
	return nil
}

func (u *UnixSocket) Disconnect() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return nil
	}
	err := u.conn.Close()
	u.conn = nil
	if err != nil {
		return newError(KindUnixSocket, ErrIO, "close failed", err)
	}
	return nil
}

func (u *UnixSocket) Read(buf []byte) (int, error) {
	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		return 0, newError(KindUnixSocket, ErrConnectionClosed, "read on disconnected socket", nil)
	}
	n, err := conn.Read(buf)
	if err != nil {
		return n, classifyReadErr(KindUnixSocket, err)
	}
	return n, nil
}

func (u *UnixSocket) Write(data []byte) error {
	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		return newError(KindUnixSocket, ErrConnectionClosed, "write on disconnected socket", nil)
	}
	return writeFull(KindUnixSocket, conn, data)
}

func (u *UnixSocket) IsConnected() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.conn != nil
}

func (u *UnixSocket) SetDeadline(t time.Time) error {
	u.mu.Lock()
	conn := u.conn
	u.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.SetDeadline(t)
}

// writeFull writes data to conn in full, retrying on short writes,
// matching the §4.2 contract that Write never returns a partial
// result to callers.
func writeFull(kind Kind, conn net.Conn, data []byte) error {
	total := 0
	for total < len(data) {
		n, err := conn.Write(data[total:])
		if err != nil {
			return classifyWriteErr(kind, err)
		}
		total += n
	}
	return nil
}

func classifyDialErr(err error) ErrorCode {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrIO
}

func classifyReadErr(kind Kind, err error) error {
	if errors.Is(err, net.ErrClosed) {
		return newError(kind, ErrConnectionClosed, "connection closed", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(kind, ErrTimeout, "read deadline exceeded", err)
	}
	return newError(kind, ErrConnectionClosed, "read failed", err)
}

func classifyWriteErr(kind Kind, err error) error {
	if errors.Is(err, net.ErrClosed) {
		return newError(kind, ErrBrokenPipe, "connection closed", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(kind, ErrTimeout, "write deadline exceeded", err)
	}
	return newError(kind, ErrBrokenPipe, "write failed", err)
}
