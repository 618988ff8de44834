package transport

import (
	"context"
	"os/exec"
	"sync"
	"time"
)

// ChildProcess launches an editor binary in embedded mode and wires
// its stdin/stdout into an embedded Stdio driver, following a "fresh
// subprocess, own stdio, reap unconditionally on teardown" discipline:
// Connect spawns the process with no startup deadline of its own, and
// Disconnect kills and reaps it however the connection ended.
type ChildProcess struct {
	mu    sync.Mutex
	path  string
	cmd   *exec.Cmd
	stdio *Stdio
}

// NewChildProcess constructs a driver that will spawn path (default
// "nvim" is the caller's responsibility) with "--embed" on Connect.
func NewChildProcess(path string) *ChildProcess {
	return &ChildProcess{path: path}
}

func (c *ChildProcess) Kind() Kind { return KindChildProcess }

func (c *ChildProcess) Connect(ctx context.Context, address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Deliberately exec.Command, not exec.CommandContext: ctx here is the
	// short-lived connect-phase deadline (see client.Connect), which is
	// canceled as soon as the handshake finishes. exec.CommandContext
	// kills the process for the rest of its life whenever that context is
	// done, which would reap the child moments after a successful
	// connect. The spawned process's lifetime is instead tied explicitly
	// to Disconnect, which kills and reaps it unconditionally.
	cmd := exec.Command(c.path, "--embed")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return newError(KindChildProcess, ErrIO, "failed to open child stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return newError(KindChildProcess, ErrIO, "failed to open child stdout", err)
	}
	if err := cmd.Start(); err != nil {
		return newError(KindChildProcess, ErrIO, "failed to start "+c.path, err)
	}

	c.cmd = cmd
	c.stdio = NewStdioFrom(stdout, stdin, stdin)
	return c.stdio.Connect(ctx, "")
}

func (c *ChildProcess) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil {
		return nil
	}
	if c.stdio != nil {
		_ = c.stdio.Disconnect()
	}
	_ = c.cmd.Process.Kill()
	_ = c.cmd.Wait()
	c.cmd = nil
	c.stdio = nil
	return nil
}

func (c *ChildProcess) Read(buf []byte) (int, error) {
	c.mu.Lock()
	stdio := c.stdio
	c.mu.Unlock()
	if stdio == nil {
		return 0, newError(KindChildProcess, ErrConnectionClosed, "read before connect", nil)
	}
	n, err := stdio.Read(buf)
	if err != nil {
		return n, rewriteKind(err, KindChildProcess)
	}
	return n, nil
}

func (c *ChildProcess) Write(data []byte) error {
	c.mu.Lock()
	stdio := c.stdio
	c.mu.Unlock()
	if stdio == nil {
		return newError(KindChildProcess, ErrConnectionClosed, "write before connect", nil)
	}
	if err := stdio.Write(data); err != nil {
		return rewriteKind(err, KindChildProcess)
	}
	return nil
}

func (c *ChildProcess) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stdio != nil && c.stdio.IsConnected()
}

// SetDeadline is a no-op: the embedded Stdio carries no deadline API.
func (c *ChildProcess) SetDeadline(t time.Time) error { return nil }

func rewriteKind(err error, kind Kind) error {
	if te, ok := err.(*Error); ok {
		rewritten := *te
		rewritten.Kind = kind
		return &rewritten
	}
	return err
}
