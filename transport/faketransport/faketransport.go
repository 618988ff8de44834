// Package faketransport provides an in-process transport.Driver backed
// by in-memory pipes, so client tests can drive both ends of a
// connection deterministically without a real socket or editor
// process. This mirrors a fake-backend pattern for exercising a
// consumer against a controllable peer instead of the real thing.
package faketransport

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/nvim-rpc/go-client/transport"
)

// Fake is a transport.Driver whose Read/Write are served by an
// in-memory pipe pair. Peer returns the other end, which a test uses
// to play the role of the remote editor: read what the client wrote,
// write back a crafted response.
type Fake struct {
	mu        sync.Mutex
	connected bool
	closed    bool

	clientReader *io.PipeReader
	clientWriter *io.PipeWriter
	peerReader   *io.PipeReader
	peerWriter   *io.PipeWriter
}

// New returns a Fake driver, not yet connected (call Connect), paired
// with a Peer for the test to drive from the other side.
func New() (*Fake, *Peer) {
	clientR, peerW := io.Pipe()
	peerR, clientW := io.Pipe()

	f := &Fake{
		clientReader: clientR,
		clientWriter: clientW,
		peerReader:   peerR,
		peerWriter:   peerW,
	}
	p := &Peer{reader: peerR, writer: peerW}
	return f, p
}

func (f *Fake) Kind() transport.Kind { return transport.KindStdio }

func (f *Fake) Connect(ctx context.Context, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return &transport.Error{Code: transport.ErrConnectionClosed, Kind: f.Kind(), Detail: "fake transport already closed"}
	}
	f.connected = true
	return nil
}

func (f *Fake) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.connected = false
	_ = f.clientReader.Close()
	_ = f.clientWriter.Close()
	return nil
}

func (f *Fake) Read(buf []byte) (int, error) {
	f.mu.Lock()
	connected := f.connected
	f.mu.Unlock()
	if !connected {
		return 0, &transport.Error{Code: transport.ErrConnectionClosed, Kind: f.Kind(), Detail: "read before connect"}
	}
	n, err := f.clientReader.Read(buf)
	if err != nil {
		return n, &transport.Error{Code: transport.ErrConnectionClosed, Kind: f.Kind(), Detail: "peer closed", Cause: err}
	}
	return n, nil
}

func (f *Fake) Write(data []byte) error {
	f.mu.Lock()
	connected := f.connected
	f.mu.Unlock()
	if !connected {
		return &transport.Error{Code: transport.ErrConnectionClosed, Kind: f.Kind(), Detail: "write before connect"}
	}
	total := 0
	for total < len(data) {
		n, err := f.clientWriter.Write(data[total:])
		if err != nil {
			return &transport.Error{Code: transport.ErrBrokenPipe, Kind: f.Kind(), Detail: "peer closed", Cause: err}
		}
		total += n
	}
	return nil
}

func (f *Fake) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *Fake) SetDeadline(t time.Time) error { return nil }

// Peer is the test-controlled end of a Fake driver: Write sends bytes
// the Fake's Read will observe; Read observes bytes the Fake's Write
// sent. Closing Peer signals EOF to the Fake's next Read, simulating
// the remote process hanging up.
type Peer struct {
	reader *io.PipeReader
	writer *io.PipeWriter
}

func (p *Peer) Read(buf []byte) (int, error)  { return p.reader.Read(buf) }
func (p *Peer) Write(data []byte) (int, error) { return p.writer.Write(data) }
func (p *Peer) Close() error {
	_ = p.reader.Close()
	return p.writer.Close()
}
