//go:build !windows

package transport

import (
	"context"
	"time"
)

// NamedPipe is unavailable on non-Windows builds; every method fails
// with ErrUnsupported. Constructing one is never attempted by Select
// on POSIX (newPathDriver in path_driver_other.go resolves socket_path
// to UnixSocket instead), but the type still exists so cross-platform
// callers can reference transport.NamedPipe in portable code.
type NamedPipe struct {
	path string
}

// NewNamedPipe constructs a stub driver that always fails to connect.
func NewNamedPipe(path string) *NamedPipe {
	return &NamedPipe{path: path}
}

func (n *NamedPipe) Kind() Kind { return KindNamedPipe }

func (n *NamedPipe) Connect(ctx context.Context, address string) error {
	return newError(KindNamedPipe, ErrUnsupported, "named pipes are only available on windows", nil)
}

func (n *NamedPipe) Disconnect() error { return nil }

func (n *NamedPipe) Read(buf []byte) (int, error) {
	return 0, newError(KindNamedPipe, ErrUnsupported, "named pipes are only available on windows", nil)
}

func (n *NamedPipe) Write(data []byte) error {
	return newError(KindNamedPipe, ErrUnsupported, "named pipes are only available on windows", nil)
}

func (n *NamedPipe) IsConnected() bool { return false }

func (n *NamedPipe) SetDeadline(t time.Time) error { return nil }
