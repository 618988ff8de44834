package transport

import (
	"context"
	"io"
	"sync"
	"time"
)

// Stdio wraps a pair of byte streams — by default the process's own
// stdin/stdout, or injected handles for testing and for the
// ChildProcess driver, which embeds a Stdio bound to the spawned
// process's pipes. Ownership of the handles is configurable: a Stdio
// that does not own its handles never closes them on Disconnect,
// since os.Stdin/os.Stdout must outlive any single driver.
type Stdio struct {
	mu         sync.Mutex
	reader     io.Reader
	writer     io.Writer
	closer     io.Closer // optional; only set when this driver owns the handles
	ownsHandle bool
	connected  bool
}

// NewStdio wraps the process's own stdin/stdout. It does not own
// those handles and Disconnect never closes them.
func NewStdio() *Stdio {
	return &Stdio{reader: stdinReader(), writer: stdoutWriter()}
}

// NewStdioFrom wraps injected reader/writer handles, used by tests and
// by ChildProcess to bind to a spawned process's pipes. If closer is
// non-nil, the driver owns it and closes it on Disconnect.
func NewStdioFrom(r io.Reader, w io.Writer, closer io.Closer) *Stdio {
	return &Stdio{reader: r, writer: w, closer: closer, ownsHandle: closer != nil}
}

func (s *Stdio) Kind() Kind { return KindStdio }

func (s *Stdio) Connect(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *Stdio) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	s.connected = false
	if s.ownsHandle && s.closer != nil {
		if err := s.closer.Close(); err != nil {
			return newError(KindStdio, ErrIO, "close failed", err)
		}
	}
	return nil
}

func (s *Stdio) Read(buf []byte) (int, error) {
	s.mu.Lock()
	connected := s.connected
	reader := s.reader
	s.mu.Unlock()
	if !connected {
		return 0, newError(KindStdio, ErrConnectionClosed, "read on disconnected stdio", nil)
	}
	n, err := reader.Read(buf)
	if err != nil {
		if err == io.EOF {
			return n, newError(KindStdio, ErrConnectionClosed, "eof", err)
		}
		return n, newError(KindStdio, ErrIO, "read failed", err)
	}
	return n, nil
}

func (s *Stdio) Write(data []byte) error {
	s.mu.Lock()
	connected := s.connected
	writer := s.writer
	s.mu.Unlock()
	if !connected {
		return newError(KindStdio, ErrConnectionClosed, "write on disconnected stdio", nil)
	}
	total := 0
	for total < len(data) {
		n, err := writer.Write(data[total:])
		if err != nil {
			return newError(KindStdio, ErrBrokenPipe, "write failed", err)
		}
		total += n
	}
	return nil
}

func (s *Stdio) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// SetDeadline is a no-op: plain file/pipe handles wrapped by Stdio
// carry no portable deadline API in the standard library.
func (s *Stdio) SetDeadline(t time.Time) error { return nil }
