package httpwire

import (
	"bufio"
	"io"
	"net"
	"sync/atomic"
	"time"
)

// ConnectionState is the lifecycle state of an HTTP/1.1 connection.
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

// Handler processes one decoded Request against a ResponseWriter.
// Returning an error closes the connection after the response is flushed.
type Handler func(*Request, *ResponseWriter) error

// Connection drives the request/response loop for one accepted socket:
// parse a request, call the handler, flush the response, decide whether
// to keep the connection alive, repeat.
//
// Both the Request (owned by the connection's Parser) and the
// ResponseWriter (embedded directly in Connection) are arena storage
// reused across every request on this connection — there is no
// per-request allocation and no reach into a global object pool for
// either. State transitions are lock-free atomics so a stats reporter
// can read State()/RequestCount()/IdleTime() from another goroutine
// without contending with the request loop.
type Connection struct {
	state    atomic.Int32
	lastUse  atomic.Int64
	requests atomic.Int32

	conn net.Conn

	reader *bufio.Reader
	writer *bufio.Writer

	parser *Parser
	rw     ResponseWriter

	handler Handler

	keepAliveTimeout time.Duration
	maxRequests      int32
	idleTimer        *time.Timer

	closeCh chan struct{}
	closed  atomic.Bool
}

// ConnectionConfig configures a Connection's keep-alive and buffering behavior.
type ConnectionConfig struct {
	// KeepAliveTimeout bounds how long an idle connection is kept open.
	KeepAliveTimeout time.Duration

	// MaxRequests caps requests served per connection; 0 is unlimited.
	MaxRequests int

	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultConnectionConfig returns sane defaults: 60s keep-alive, no
// request cap, 4KB read/write buffers.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		KeepAliveTimeout: 60 * time.Second,
		MaxRequests:      0,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}
}

// NewConnection wraps conn for HTTP/1.1 service. handler is stored once
// rather than captured per-request, so dispatch never allocates a closure.
func NewConnection(conn net.Conn, config ConnectionConfig, handler Handler) *Connection {
	c := &Connection{
		conn:             conn,
		handler:          handler,
		keepAliveTimeout: config.KeepAliveTimeout,
		maxRequests:      int32(config.MaxRequests),
		closeCh:          make(chan struct{}),
	}

	c.state.Store(int32(StateNew))
	c.lastUse.Store(time.Now().UnixNano())
	c.requests.Store(0)

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

	return c
}

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

func (c *Connection) setState(state ConnectionState) {
	c.state.Store(int32(state))
	c.lastUse.Store(time.Now().UnixNano())
}

// Serve runs the request loop until the connection closes, an error
// occurs, or the keep-alive/request-count limits say it's time to stop.
//
// The handler is expected not to panic: a panic here would skip the
// response-writer cleanup below and force the connection closed on the
// next iteration's error path. Callers that need panic recovery (e.g. to
// turn a handler panic into a clean error response) should wrap handler
// before passing it to NewConnection — see httpserver's use of recover()
// around its own handler adapter.
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
		req, err := c.parser.Parse(c.reader)
		if err != nil {
			if err == io.EOF || err == ErrUnexpectedEOF {
				return nil
			}
			return err
		}

		requestNum := c.requests.Add(1)
		c.rw.Reset(c.writer)

		willCloseAfterThis := c.maxRequests > 0 && requestNum >= c.maxRequests
		if willCloseAfterThis {
			c.rw.Header().Set(headerConnection, headerClose)
		}

		handlerErr := c.handler(req, &c.rw)

		if err := c.rw.Flush(); err != nil {
			return err
		}

		shouldClose := c.shouldCloseAfterRequest(req, &c.rw, int(requestNum), handlerErr, willCloseAfterThis)
		if shouldClose {
			return handlerErr
		}

		c.setState(StateIdle)
	}
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

func (c *Connection) shouldCloseAfterRequest(req *Request, rw *ResponseWriter, requestNum int, handlerErr error, willClose bool) bool {
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
		if !bytesEqualCaseInsensitive(req.Header.Get(headerConnection), headerKeepAlive) {
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

// Close marks the connection closed and closes the underlying socket.
// Safe to call more than once.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.closeCh)
	c.setState(StateClosed)
	return c.conn.Close()
}

// cleanup returns the connection's pooled I/O resources.
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

// RequestCount returns the number of requests served on this connection.
func (c *Connection) RequestCount() int {
	return int(c.requests.Load())
}

// IdleTime returns how long the connection has sat idle; 0 while active.
func (c *Connection) IdleTime() time.Duration {
	if c.State() == StateActive {
		return 0
	}
	return time.Since(time.Unix(0, c.lastUse.Load()))
}
