// Package transport provides the byte-stream abstraction the RPC layer
// is built on: a single capability set implemented by five concrete
// drivers (Unix domain socket, TCP, Windows named pipe, stdio, and a
// spawned child process), selected at Client construction time from a
// small set of connection options.
//
// A Driver is a tagged sum in spirit: each concrete driver is a small
// struct behind the narrow Driver interface, with Kind reporting which
// one a value is, rather than a class hierarchy.
package transport

import (
	"context"
	"time"
)

// Kind identifies which concrete driver a Driver value is.
type Kind int

const (
	KindUnixSocket Kind = iota
	KindTCPSocket
	KindNamedPipe
	KindStdio
	KindChildProcess
)

func (k Kind) String() string {
	switch k {
	case KindUnixSocket:
		return "unix"
	case KindTCPSocket:
		return "tcp"
	case KindNamedPipe:
		return "namedpipe"
	case KindStdio:
		return "stdio"
	case KindChildProcess:
		return "childprocess"
	default:
		return "unknown"
	}
}

// Driver is the uniform byte-stream contract every concrete transport
// implements. The RPC and client layers depend only on this interface
// and never on a concrete driver type.
//
// The Client calls Connect under its own lock, but calls Disconnect
// after releasing it, while the read loop may be blocked in Read and
// another goroutine in Write; every driver in this package therefore
// guards its own state with a mutex.
type Driver interface {
	// Kind reports which concrete driver this is.
	Kind() Kind

	// Connect establishes the stream. address is interpreted
	// per-driver. On error the driver must remain disconnected —
	// a failed Connect never leaves partially-open resources behind.
	Connect(ctx context.Context, address string) error

	// Disconnect releases the stream. Idempotent: safe before Connect,
	// after a failed Connect, and any number of times after success.
	Disconnect() error

	// Read performs one blocking read of between 1 and len(buf) bytes.
	// A zero-length read or ErrConnectionClosed both signal EOF.
	Read(buf []byte) (int, error)

	// Write writes the entire slice or fails; short writes are
	// retried internally and never observed by the caller.
	Write(data []byte) error

	// IsConnected is a cheap status query and must not perform I/O.
	IsConnected() bool

	// SetDeadline applies a per-read/write deadline where the
	// underlying carrier supports one. Drivers without deadline
	// support (Stdio) treat this as a no-op.
	SetDeadline(t time.Time) error
}

// Options selects and configures exactly one Driver, mirroring the
// Client's ConnectionOptions. Fields are mutually exclusive in the
// sense that only the highest-priority one present is used; Select
// never combines two.
type Options struct {
	// SpawnProcess, if true, launches NvimPath in embedded mode and
	// wires a ChildProcess driver to it. Highest priority.
	SpawnProcess bool
	NvimPath     string // default "nvim"

	// UseStdio wraps the process's own stdin/stdout. Second priority.
	UseStdio bool

	// TCPAddress + TCPPort select a TCP driver. Third priority;
	// TCPPort == 0 is accepted here but rejected at Connect.
	TCPAddress string
	TCPPort    int

	// SocketPath selects UnixSocket on POSIX or NamedPipe on Windows.
	// Lowest priority among the explicit options.
	SocketPath string
}

// Select resolves opts to exactly one Driver per the fixed priority
// order: SpawnProcess > UseStdio > TCPAddress > SocketPath. If none of
// the options are present, Select fails with ErrUnsupported.
func Select(opts Options) (Driver, error) {
	switch {
	case opts.SpawnProcess:
		path := opts.NvimPath
		if path == "" {
			path = "nvim"
		}
		return NewChildProcess(path), nil
	case opts.UseStdio:
		return NewStdio(), nil
	case opts.TCPAddress != "":
		return NewTCPSocket(opts.TCPAddress, opts.TCPPort), nil
	case opts.SocketPath != "":
		return newPathDriver(opts.SocketPath), nil
	default:
		return nil, newError(KindUnixSocket, ErrUnsupported, "no transport option present in ConnectionOptions", nil)
	}
}
