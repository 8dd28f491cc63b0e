package http11

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"sync/atomic"
	"time"
)

// ConnectionState is the lock-free lifecycle state of a Connection,
// ported from shockwave/pkg/shockwave/http11/connection.go.
type ConnectionState int

const (
	StateNew ConnectionState = iota
	StateActive
	StateIdle
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateActive:
		return "active"
	case StateIdle:
		return "idle"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handler processes one request/response cycle. Returning an error closes
// the connection after the response is flushed.
type Handler func(*Request, *ResponseWriter) error

// Connection is the reactor for one accepted TCP connection (spec §4.C):
// a single goroutine calls Serve, which owns the parser, the
// request/response pool checkouts, and the handler dispatch for every
// request on this connection, with no mutable state shared with any
// other connection's goroutine. Go's netpoller is the process-wide event
// loop underneath conn.Read/Write; Serve's loop body is this connection's
// share of that loop.
type Connection struct {
	state    atomic.Int32
	lastUse  atomic.Int64
	requests atomic.Int32

	conn net.Conn

	reader *bufio.Reader
	writer *bufio.Writer

	parser    *Parser
	callbacks ParserCallbacks

	handler Handler

	keepAliveTimeout time.Duration
	maxRequests      int32

	// pipelined holds bytes read past the end of one header-only
	// request's header block that belong to the next pipelined
	// request (RFC 7230 §6.3 persistent-connection pipelining).
	pipelined []byte

	closeCh chan struct{}
	closed  atomic.Bool
}

// ConnectionConfig configures a Connection.
type ConnectionConfig struct {
	KeepAliveTimeout time.Duration
	MaxRequests      int
	ReadBufferSize   int
	WriteBufferSize  int
}

// DefaultConnectionConfig returns a 60s keep-alive, unlimited requests,
// and 4KiB buffers.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		KeepAliveTimeout: 60 * time.Second,
		ReadBufferSize:   DefaultBufferSize,
		WriteBufferSize:  DefaultBufferSize,
	}
}

// NewConnection wraps conn, installing cb as the parser's incremental
// callbacks for every request this connection handles.
func NewConnection(conn net.Conn, config ConnectionConfig, handler Handler, cb ParserCallbacks) *Connection {
	c := &Connection{
		conn:             conn,
		handler:          handler,
		callbacks:        cb,
		keepAliveTimeout: config.KeepAliveTimeout,
		maxRequests:      int32(config.MaxRequests),
		closeCh:          make(chan struct{}),
	}
	c.state.Store(int32(StateNew))
	c.lastUse.Store(time.Now().UnixNano())

	if config.ReadBufferSize == DefaultBufferSize {
		c.reader = GetBufioReader(conn)
	} else {
		c.reader = bufio.NewReaderSize(conn, config.ReadBufferSize)
	}
	if config.WriteBufferSize == DefaultBufferSize {
		c.writer = GetBufioWriter(conn)
	} else {
		c.writer = bufio.NewWriterSize(conn, config.WriteBufferSize)
	}

	c.parser = GetParser()
	c.parser.SetCallbacks(cb)

	return c
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

func (c *Connection) setState(state ConnectionState) {
	c.state.Store(int32(state))
	c.lastUse.Store(time.Now().UnixNano())
}

// Serve runs the request/response loop until the connection closes,
// keep-alive expires, or the peer disconnects. Each request is parsed
// incrementally via Parser.Execute, dispatched to handler, and its
// response flushed before the next request is read — satisfying spec
// §5's "requests on the same connection are dispatched strictly in order
// of on_message_complete".
func (c *Connection) Serve() error {
	defer c.cleanup()

	for {
		if c.shouldClose() {
			return nil
		}
		if err := c.setDeadline(); err != nil {
			return err
		}

		c.setState(StateActive)
		req, err := c.readRequest()
		if err != nil {
			if err == io.EOF || err == ErrUnexpectedEOF || c.closed.Load() {
				return nil
			}
			return err
		}

		requestNum := c.requests.Add(1)
		rw := GetResponseWriter(c.writer)

		willCloseAfterThis := c.maxRequests > 0 && requestNum >= c.maxRequests
		if willCloseAfterThis {
			rw.Header().Set(headerConnection, headerClose)
		}

		// spec §4.C on_message_complete: a body-bearing POST/PUT/PATCH
		// with an unclassified Content-Type is rejected before dispatch
		// ever runs, not by the handler.
		if req.IsUnsupportedMediaType() {
			rw.WriteError(415, "Unsupported Media Type")
			PutResponseWriter(rw)
			PutRequest(req)
			c.parser.Reset()
			return nil
		}

		handlerErr := c.handler(req, rw)

		if err := rw.Flush(); err != nil {
			PutResponseWriter(rw)
			PutRequest(req)
			return err
		}

		shouldClose := c.shouldCloseAfterRequest(req, rw, handlerErr, willCloseAfterThis)

		PutResponseWriter(rw)
		PutRequest(req)
		c.parser.Reset()

		if shouldClose {
			return handlerErr
		}
		c.setState(StateIdle)
	}
}

// readRequest drives Parser.Execute with bytes from c.pipelined (left
// over from the previous, body-less request) and then c.reader, until
// headers are complete, then attaches the body reader.
func (c *Connection) readRequest() (*Request, error) {
	if len(c.pipelined) > 0 {
		data := c.pipelined
		c.pipelined = nil
		done, err := c.parser.Execute(data)
		if err != nil {
			return nil, err
		}
		if done {
			return c.finishHeaders()
		}
	}

	buf := make([]byte, DefaultBufferSize)
	for {
		n, err := c.reader.Read(buf)
		if n > 0 {
			done, perr := c.parser.Execute(buf[:n])
			if perr != nil {
				return nil, perr
			}
			if done {
				return c.finishHeaders()
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}
	}
}

// finishHeaders attaches req.Body per Content-Length/Transfer-Encoding,
// wrapping it so OnBody/OnMessageComplete still fire as it's drained, and
// stashes any trailing pipelined bytes for the next body-less request.
func (c *Connection) finishHeaders() (*Request, error) {
	req := c.parser.Request()
	trailing := c.parser.Trailing()

	if req.ContentLength == 0 && len(req.TransferEncoding) == 0 {
		req.Body = nil
		if len(trailing) > 0 {
			c.pipelined = trailing
		}
		if c.callbacks.OnMessageComplete != nil {
			if err := c.callbacks.OnMessageComplete(); err != nil {
				return nil, err
			}
		}
		return req, nil
	}

	var base io.Reader = c.reader
	if len(trailing) > 0 {
		base = io.MultiReader(bytes.NewReader(trailing), c.reader)
	}

	switch {
	case req.ContentLength > 0:
		req.Body = &bodyCallbackReader{r: io.LimitReader(base, req.ContentLength), cb: c.callbacks}
	case req.IsChunked():
		req.Body = &bodyCallbackReader{r: NewChunkedReader(base), cb: c.callbacks}
	default:
		req.Body = nil
	}

	return req, nil
}

// bodyCallbackReader wraps a request body reader so draining it still
// fires ParserCallbacks.OnBody per read and OnMessageComplete once on
// EOF, matching spec §4.C's named callback sequence even though body
// bytes no longer flow through Parser.Execute (see parser.go's doc
// comment for why).
type bodyCallbackReader struct {
	r    io.Reader
	cb   ParserCallbacks
	done bool
}

func (b *bodyCallbackReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if n > 0 && b.cb.OnBody != nil {
		if cbErr := b.cb.OnBody(p[:n]); cbErr != nil {
			return n, cbErr
		}
	}
	if err == io.EOF && !b.done {
		b.done = true
		if b.cb.OnMessageComplete != nil {
			if cbErr := b.cb.OnMessageComplete(); cbErr != nil {
				return n, cbErr
			}
		}
	}
	return n, err
}

func (c *Connection) shouldClose() bool {
	if c.closed.Load() {
		return true
	}
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

func (c *Connection) shouldCloseAfterRequest(req *Request, rw *ResponseWriter, handlerErr error, willClose bool) bool {
	if handlerErr != nil {
		return true
	}
	if req.Close {
		return true
	}
	if bytesEqualCaseInsensitive(rw.Header().Get(headerConnection), headerClose) {
		return true
	}
	if willClose {
		return true
	}
	if req.ProtoMajor == 1 && req.ProtoMinor == 0 {
		if !bytesEqualCaseInsensitive(req.Header.Get(headerConnection), []byte("keep-alive")) {
			return true
		}
	}
	return false
}

func (c *Connection) setDeadline() error {
	if c.keepAliveTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.keepAliveTimeout))
	}
	return nil
}

// Close closes the connection and signals Serve to stop.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.closeCh)
	c.setState(StateClosed)
	return c.conn.Close()
}

func (c *Connection) cleanup() {
	if c.parser != nil {
		PutParser(c.parser)
		c.parser = nil
	}
	if c.reader != nil {
		PutBufioReader(c.reader)
		c.reader = nil
	}
	if c.writer != nil {
		PutBufioWriter(c.writer)
		c.writer = nil
	}
}

// RemoteAddr returns the peer's network address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// LocalAddr returns the local network address.
func (c *Connection) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RequestCount returns how many requests this connection has served.
func (c *Connection) RequestCount() int {
	return int(c.requests.Load())
}
