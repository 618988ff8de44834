// Package client implements the Neovim MessagePack-RPC client state
// machine: connection lifecycle over a transport.Driver, correlated
// request/response dispatch, and notification delivery.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nvim-rpc/go-client/client/internal/metrics"
	"github.com/nvim-rpc/go-client/client/internal/telemetry"
	"github.com/nvim-rpc/go-client/internal/logger"
	"github.com/nvim-rpc/go-client/msgpack"
	"github.com/nvim-rpc/go-client/rpc"
	"github.com/nvim-rpc/go-client/transport"
)

// EventHandler receives every inbound Notification. It runs on the
// Client's read loop goroutine; handlers that need to call back into
// the Client (Request/Notify) must do so from a separate goroutine,
// since the read loop cannot service a response while a handler blocks
// it.
type EventHandler func(method string, params msgpack.Value)

const readChunkSize = 4096

// Client is a single connection to a Neovim instance (or any peer
// speaking MessagePack-RPC). A Client is safe for concurrent use:
// Request and Notify may be called from multiple goroutines, and the
// read loop dispatches responses and notifications independently.
//
// A Client is constructed with Init, connected with Connect, and torn
// down with Disconnect; it may be reconnected after Disconnect, with
// next_msgid continuing from where it left off (see Disconnect).
type Client struct {
	mu sync.Mutex

	// writeMu serializes Write calls on driver independently of mu, so
	// a Write blocked on a slow or unresponsive peer never holds up
	// state changes like Disconnect or a concurrent Request's
	// bookkeeping.
	writeMu sync.Mutex

	driver    transport.Driver
	opts      ConnectionOptions
	connected bool

	nextMsgID atomic.Uint32

	pending *pendingTable
	readBuf []byte

	apiInfo *APIInfo

	eventHandler EventHandler

	metrics *metrics.Metrics
	tracer  *telemetry.Tracer

	wg       sync.WaitGroup
	shutdown chan struct{}
}

// Init selects a transport per opts (no I/O is performed) and applies
// functional options. The returned Client is Disconnected until
// Connect succeeds.
func Init(opts ConnectionOptions, options ...Option) (*Client, error) {
	driver, err := transport.Select(transport.Options{
		SpawnProcess: opts.SpawnProcess,
		NvimPath:     opts.nvimPath(),
		UseStdio:     opts.UseStdio,
		TCPAddress:   opts.TCPAddress,
		TCPPort:      opts.TCPPort,
		SocketPath:   opts.SocketPath,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		driver:  driver,
		opts:    opts,
		pending: newPendingTable(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// SetEventHandler installs (or replaces) the callback invoked for
// every inbound Notification. Safe to call before or after Connect.
func (c *Client) SetEventHandler(fn EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventHandler = fn
}

// IsConnected reports whether the Client currently holds an open
// connection.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// GetAPIInfo returns the result of the nvim_get_api_info handshake
// performed during Connect. Returns (APIInfo{}, false) if Connect was
// called with SkipAPIInfo, or has not succeeded yet.
func (c *Client) GetAPIInfo() (APIInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.apiInfo == nil {
		return APIInfo{}, false
	}
	return *c.apiInfo, true
}

// FindAPIFunction looks up one function by name in the cached
// handshake metadata. Returns (APIFunction{}, false) if no handshake
// has completed, or the name is unknown.
func (c *Client) FindAPIFunction(name string) (APIFunction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.apiInfo == nil {
		return APIFunction{}, false
	}
	for _, fn := range c.apiInfo.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return APIFunction{}, false
}

// Connect opens the underlying transport and, unless
// opts.SkipAPIInfo was set at Init, performs the synchronous
// nvim_get_api_info handshake before returning.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return newClientError(ErrAlreadyConnected, "Connect called while already connected")
	}

	ctx, span := c.tracer.StartSpan(ctx, "nvim_rpc.connect")
	defer span.End()

	deadline := time.Now().Add(c.opts.timeout())
	connectCtx := ctx
	if _, has := ctx.Deadline(); !has {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	if err := c.driver.Connect(connectCtx, ""); err != nil {
		c.mu.Unlock()
		telemetry.RecordError(ctx, err)
		c.metrics.ObserveConnect("error")
		return err
	}

	c.connected = true
	c.readBuf = c.readBuf[:0]
	c.shutdown = make(chan struct{})
	c.wg.Add(1)
	go c.readLoop()
	c.mu.Unlock()

	c.metrics.ObserveConnect("ok")
	logger.Info("nvim-rpc client connected", "kind", c.driver.Kind().String())

	if c.opts.SkipAPIInfo {
		return nil
	}

	result, err := c.Request(ctx, "nvim_get_api_info", msgpack.Array(nil))
	if err != nil {
		telemetry.RecordError(ctx, err)
		_ = c.Disconnect()
		return err
	}
	info, err := parseAPIInfo(result)
	if err != nil {
		telemetry.RecordError(ctx, err)
		_ = c.Disconnect()
		return err
	}

	c.mu.Lock()
	c.apiInfo = &info
	c.mu.Unlock()
	return nil
}

// Disconnect closes the transport and fails every pending request
// with a connection-closed error. Idempotent. next_msgid is not
// reset, so a subsequent Connect continues the sequence rather than
// risking msgid reuse against a peer that may still be draining the
// old connection's final bytes.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = false
	c.apiInfo = nil
	close(c.shutdown)
	c.pending.failAll(newClientError(ErrConnectionClosed, "connection closed"))
	c.mu.Unlock()

	err := c.driver.Disconnect()
	c.wg.Wait()
	c.metrics.ObserveDisconnect()
	logger.Info("nvim-rpc client disconnected")
	return err
}

// NextMessageID returns the msgid that the next Request will use,
// without allocating it.
func (c *Client) NextMessageID() uint32 {
	return c.nextMsgID.Load()
}

// Request sends method(params) and blocks until the peer responds, ctx
// is done, or the connection's configured timeout elapses. A non-nil
// response error field surfaces as *NvimError; the connection remains
// usable afterward.
func (c *Client) Request(ctx context.Context, method string, params msgpack.Value) (msgpack.Value, error) {
	start := time.Now()
	ctx, span := c.tracer.StartSpan(ctx, "nvim_rpc.request."+method)
	defer span.End()

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return msgpack.Value{}, newClientError(ErrNotConnected, "Request called before Connect or after Disconnect")
	}

	msgid := c.nextMsgID.Add(1) - 1
	slot := newPendingSlot()
	c.pending.insert(msgid, slot)
	c.metrics.SetPending(len(c.pending.slots))
	c.mu.Unlock()

	frame := rpc.EncodeRequest(msgid, method, params)
	c.writeMu.Lock()
	err := c.driver.Write(frame)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		c.pending.remove(msgid)
		c.mu.Unlock()
		c.metrics.ObserveRequest(method, "transport_error", time.Since(start))
		telemetry.RecordError(ctx, err)
		return msgpack.Value{}, err
	}

	var timeoutCh <-chan time.Time
	if _, has := ctx.Deadline(); !has {
		timer := time.NewTimer(c.opts.timeout())
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-slot.done:
		if slot.err != nil {
			c.metrics.ObserveRequest(method, "transport_error", time.Since(start))
			telemetry.RecordError(ctx, slot.err)
			return msgpack.Value{}, slot.err
		}
		if slot.errVal.Kind() != msgpack.KindNil {
			c.metrics.ObserveRequest(method, "nvim_error", time.Since(start))
			nerr := &NvimError{Value: slot.errVal}
			telemetry.RecordError(ctx, nerr)
			return msgpack.Value{}, nerr
		}
		c.metrics.ObserveRequest(method, "ok", time.Since(start))
		return slot.result, nil
	case <-ctx.Done():
		c.mu.Lock()
		c.pending.remove(msgid)
		c.mu.Unlock()
		c.metrics.ObserveRequest(method, "transport_error", time.Since(start))
		return msgpack.Value{}, ctx.Err()
	case <-timeoutCh:
		c.mu.Lock()
		c.pending.remove(msgid)
		c.mu.Unlock()
		err := newClientError(ErrTimeout, "request %q timed out after %s", method, c.opts.timeout())
		c.metrics.ObserveRequest(method, "transport_error", time.Since(start))
		return msgpack.Value{}, err
	}
}

// Notify sends a fire-and-forget notification; it does not wait for
// any acknowledgement and never returns a *NvimError.
func (c *Client) Notify(ctx context.Context, method string, params msgpack.Value) error {
	_, span := c.tracer.StartSpan(ctx, "nvim_rpc.notify."+method)
	defer span.End()

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return newClientError(ErrNotConnected, "Notify called before Connect or after Disconnect")
	}
	c.mu.Unlock()

	frame := rpc.EncodeNotification(method, params)
	c.writeMu.Lock()
	err := c.driver.Write(frame)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}
	c.metrics.ObserveNotification(method)
	return nil
}

// readLoop pulls bytes from the driver, decodes frames from the
// growable read buffer, and dispatches each to its pending slot or
// the event handler. It exits when the driver reports EOF/error or
// Disconnect closes c.shutdown.
func (c *Client) readLoop() {
	defer c.wg.Done()
	chunk := make([]byte, readChunkSize)

	for {
		select {
		case <-c.shutdown:
			return
		default:
		}

		n, err := c.driver.Read(chunk)
		if err != nil {
			c.onReadError(err)
			return
		}
		if n == 0 {
			c.onReadError(&transport.Error{Code: transport.ErrConnectionClosed, Kind: c.driver.Kind(), Detail: "zero-length read"})
			return
		}

		c.mu.Lock()
		c.readBuf = append(c.readBuf, chunk[:n]...)
		c.drainFrames()
		c.mu.Unlock()
	}
}

// drainFrames decodes as many complete frames as c.readBuf currently
// holds, dispatching each, then compacts the buffer down to whatever
// bytes remain of a partial frame. Called with c.mu held.
func (c *Client) drainFrames() {
	for {
		msg, n, err := rpc.Decode(c.readBuf)
		if err == msgpack.ErrNeedMoreData {
			return
		}
		if err != nil {
			logger.Warn("nvim-rpc client: dropping malformed frame", "error", err)
			c.readBuf = c.readBuf[:0]
			return
		}

		c.readBuf = c.readBuf[n:]
		c.dispatch(msg)
	}
}

// dispatch routes one decoded Message. Called with c.mu held.
func (c *Client) dispatch(msg rpc.Message) {
	switch {
	case msg.Response != nil:
		slot, ok := c.pending.take(msg.Response.MsgID)
		if !ok {
			logger.Debug("nvim-rpc client: response for unknown msgid", "msgid", msg.Response.MsgID)
			return
		}
		c.metrics.SetPending(len(c.pending.slots))
		slot.completeWithResponse(msg.Response.Error, msg.Response.Result)
	case msg.Notification != nil:
		handler := c.eventHandler
		if handler == nil {
			return
		}
		handler(msg.Notification.Method, msg.Notification.Params)
	case msg.Request != nil:
		logger.Debug("nvim-rpc client: dropping inbound request, server role not implemented", "method", msg.Request.Method)
	}
}

func (c *Client) onReadError(err error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	c.pending.failAll(fmt.Errorf("nvim-rpc client: %w: %w", newClientError(ErrConnectionClosed, "connection lost"), err))
	c.mu.Unlock()
	logger.Warn("nvim-rpc client: read loop exiting", "error", err)
}
