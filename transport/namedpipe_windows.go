//go:build windows

package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/Microsoft/go-winio"
)

// NamedPipe connects to a Windows named pipe at \\.\pipe\name, built
// on go-winio the same way moby and docker-compose's client
// transports open named pipes with deadline support — winio.DialPipe
// already implements the wait-then-open semantics this driver needs.
type NamedPipe struct {
	mu   sync.Mutex
	path string
	conn net.Conn
}

func newPathDriver(path string) Driver {
	return NewNamedPipe(path)
}

// NewNamedPipe constructs a driver bound to a \\.\pipe\name path.
func NewNamedPipe(path string) *NamedPipe {
	return &NamedPipe{path: path}
}

func (n *NamedPipe) Kind() Kind { return KindNamedPipe }

func (n *NamedPipe) Connect(ctx context.Context, address string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	path := address
	if path == "" {
		path = n.path
	}

	var timeout *time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		d := time.Until(deadline)
		timeout = &d
	}

	conn, err := winio.DialPipe(path, timeout)
	if err != nil {
		return newError(KindNamedPipe, ErrIO, "connect failed", err)
	}
	n.conn = conn
	n.path = path
	return nil
}

func (n *NamedPipe) Disconnect() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	if err != nil {
		return newError(KindNamedPipe, ErrIO, "close failed", err)
	}
	return nil
}

func (n *NamedPipe) Read(buf []byte) (int, error) {
	n.mu.Lock()
	conn := n.conn
	n.mu.Unlock()
	if conn == nil {
		return 0, newError(KindNamedPipe, ErrConnectionClosed, "read on disconnected pipe", nil)
	}
	nRead, err := conn.Read(buf)
	if err != nil {
		return nRead, newError(KindNamedPipe, ErrConnectionClosed, "read failed", err)
	}
	return nRead, nil
}

func (n *NamedPipe) Write(data []byte) error {
	n.mu.Lock()
	conn := n.conn
	n.mu.Unlock()
	if conn == nil {
		return newError(KindNamedPipe, ErrConnectionClosed, "write on disconnected pipe", nil)
	}
	total := 0
	for total < len(data) {
		written, err := conn.Write(data[total:])
		if err != nil {
			return newError(KindNamedPipe, ErrBrokenPipe, "write failed", err)
		}
		total += written
	}
	return nil
}

func (n *NamedPipe) IsConnected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conn != nil
}

func (n *NamedPipe) SetDeadline(t time.Time) error {
	n.mu.Lock()
	conn := n.conn
	n.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.SetDeadline(t)
}
