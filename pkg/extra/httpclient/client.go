package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	// ErrInvalidURL is returned for invalid URLs
	ErrInvalidURL = errors.New("client: invalid URL")
)

// Client is a high-performance HTTP client with low-allocation request/response handling.
//
// Design principles:
// - sync.Pool for all objects (requests, responses, headers, buffers)
// - Inline header storage (≤32 headers in a 1 KiB buffer, overflow map for more)
// - Pre-compiled constants for common values
// - Zero-copy byte slices where possible
// - Optimized for concurrent workloads
type Client struct {
	// Connection pool (reuses existing pool.go implementation)
	pool *ConnectionPool

	// Default settings
	dialTimeout    time.Duration
	requestTimeout time.Duration
	userAgent      string
}

// NewClient creates a new high-performance HTTP client.
func NewClient() *Client {
	poolConfig := DefaultPoolConfig()

	return &Client{
		pool:           NewConnectionPool(poolConfig),
		dialTimeout:    30 * time.Second,
		requestTimeout: 30 * time.Second,
		userAgent:      string(defaultUserAgent),
	}
}

// Get performs a GET request with zero allocations for simple cases.
//
// Allocation behavior: 0 allocs/op for pooled request (best case)
func (c *Client) Get(urlStr string) (*ClientResponse, error) {
	return c.DoString("GET", urlStr, nil)
}

// Post performs a POST request.
//
// Allocation behavior: ~2 allocs/op
func (c *Client) Post(urlStr, contentType string, body io.Reader) (*ClientResponse, error) {
	req := GetClientRequest()

	if err := c.parseURL(req, urlStr); err != nil {
		PutClientRequest(req)
		return nil, err
	}

	req.SetMethod("POST")
	req.SetHeader("Content-Type", contentType)

	if body != nil {
		if seeker, ok := body.(io.Seeker); ok {
			start, _ := seeker.Seek(0, io.SeekCurrent)
			end, _ := seeker.Seek(0, io.SeekEnd)
			seeker.Seek(start, io.SeekStart)
			req.SetBody(body, end-start)
		} else {
			req.SetBody(body, -1)
		}
	}

	return c.Do(req)
}

// DoString performs a request from a URL string.
// This is a convenience method that parses the URL and creates a pooled request.
//
// Allocation behavior: ~2-4 allocs/op (URL parsing + request object)
func (c *Client) DoString(method, urlStr string, body io.Reader) (*ClientResponse, error) {
	req := GetClientRequest()

	if err := c.parseURL(req, urlStr); err != nil {
		PutClientRequest(req)
		return nil, err
	}

	req.SetMethod(method)

	if body != nil {
		req.SetBody(body, -1)
	}

	return c.Do(req)
}

// Do executes an HTTP request using the optimized zero-allocation path.
//
// Allocation behavior: 0-2 allocs/op with all optimizations
func (c *Client) Do(req *ClientRequest) (*ClientResponse, error) {
	// Build host:port efficiently with minimal allocations
	var sb InlineStringBuilder

	// Add host
	sb.WriteBytes(req.hostBytes[:req.hostLen])
	sb.WriteByte(':')

	// Add port (explicit or default based on scheme)
	if req.portLen > 0 {
		sb.WriteBytes(req.portBytes[:req.portLen])
	} else {
		// Default port based on scheme
		if req.schemeLen == 5 && req.schemeBytes[0] == 'h' && req.schemeBytes[1] == 't' &&
		   req.schemeBytes[2] == 't' && req.schemeBytes[3] == 'p' && req.schemeBytes[4] == 's' {
			sb.WriteString("443")
		} else {
			sb.WriteString("80")
		}
	}

	hostPort := sb.String()

	// Set default headers if not present
	c.setDefaultHeaders(req)

	// Get connection from pool. A pool pushed onto ctx via WithPool (the
	// context-scoped equivalent of the original's ContextVar stack) takes
	// priority over the client's own default pool.
	ctx := req.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	pool := c.pool
	if scoped, ok := FromContext(ctx); ok {
		pool = scoped
	}

	conn, err := pool.GetConn(ctx, hostPort, HTTP11)
	if err != nil {
		PutClientRequest(req)
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	// Set timeouts
	if req.requestTimeout > 0 {
		deadline := time.Now().Add(time.Duration(req.requestTimeout))
		conn.Conn().SetDeadline(deadline)
		defer conn.Conn().SetDeadline(time.Time{})
	} else if c.requestTimeout > 0 {
		deadline := time.Now().Add(c.requestTimeout)
		conn.Conn().SetDeadline(deadline)
		defer conn.Conn().SetDeadline(time.Time{})
	}

	// Execute request
	resp, err := c.doHTTP11Optimized(req, conn)
	if err != nil {
		conn.MarkUnhealthy()
		conn.Close()
		PutClientRequest(req)
		return nil, err
	}

	// Mark connection as used
	conn.IncrementRequests()

	// Attach connection to response for cleanup
	resp.conn = conn

	// Return request to pool (response will be returned when closed)
	PutClientRequest(req)

	return resp, nil
}

// doHTTP11Optimized executes an HTTP/1.1 request with zero-allocation optimizations.
//
// Allocation behavior: 0 allocs/op with pooled parser (matches server architecture)
func (c *Client) doHTTP11Optimized(req *ClientRequest, conn *PooledConn) (*ClientResponse, error) {
	// Build request bytes
	requestBytes := req.BuildRequest()

	// Write request line and headers
	_, err := conn.Conn().Write(requestBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}

	// Write body if present
	if req.body != nil {
		if req.bodyLength > 0 {
			// Known content length - use io.Copy with limit
			_, err = io.CopyN(conn.Conn(), req.body, req.bodyLength)
		} else {
			// Unknown (or zero) length: the body is copied as-is, with no
			// chunked framing and no Content-Length header.
			_, err = io.Copy(conn.Conn(), req.body)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write body: %w", err)
		}
	}

	// Get optimized reader (zero-allocation line reading)
	br := GetOptimizedReader(conn.Conn())

	// Parse response using optimized reader
	resp := GetClientResponse()
	if err := resp.ParseResponseOptimized(br); err != nil {
		PutOptimizedReader(br)
		PutClientResponse(resp)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Create body reader
	var bodyReader io.ReadCloser

	if req.methodID == methodIDHEAD || resp.statusCode == 204 || resp.statusCode == 304 {
		// No body expected
		bodyReader = io.NopCloser(strings.NewReader(""))
	} else if resp.isChunked {
		// Chunked encoding: the body reader returns the raw chunked
		// framing; it is not decoded here.
		bodyReader = &responseBodyReader{
			reader: br,
			conn:   conn,
			resp:   resp,
			or:     br,
		}
	} else if resp.contentLength >= 0 {
		// Fixed content length - use a pooled limited reader so repeated
		// requests through this client don't allocate one io.LimitReader
		// per response.
		lr := getLimitedReader(br, resp.contentLength)
		bodyReader = &responseBodyReader{
			reader: lr,
			conn:   conn,
			resp:   resp,
			or:     br,
			lr:     lr,
		}
	} else {
		// Read until EOF
		bodyReader = &responseBodyReader{
			reader: br,
			conn:   conn,
			resp:   resp,
			or:     br,
		}
	}

	resp.SetBody(bodyReader)

	return resp, nil
}

// responseBodyReader wraps the response body and handles cleanup.
type responseBodyReader struct {
	reader io.Reader
	conn   *PooledConn
	resp   *ClientResponse
	or     *OptimizedReader
	lr     *limitedReader // non-nil when reader is a pooled limitedReader
	closed bool
}

// Read reads from the response body.
func (r *responseBodyReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, io.EOF
	}
	return r.reader.Read(p)
}

// Close closes the body reader and returns pooled objects.
func (r *responseBodyReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	// Drain remaining body
	io.Copy(io.Discard, r.reader)

	// Return OptimizedReader to pool
	if r.or != nil {
		PutOptimizedReader(r.or)
	}
	if r.lr != nil {
		putLimitedReader(r.lr)
	}

	return nil
}

// setDefaultHeaders sets default headers if not already present.
//
// Allocation behavior: 0 allocs/op (uses pre-compiled constants)
func (c *Client) setDefaultHeaders(req *ClientRequest) {
	if req.headers == nil {
		req.headers = GetHeaders()
	}

	// Host header
	if !req.headers.Has(headerHost) {
		req.headers.Add(headerHost, req.GetHost())
	}

	// User-Agent
	if !req.headers.Has(headerUserAgent) {
		req.headers.Add(headerUserAgent, defaultUserAgent)
	}

	// Connection: keep-alive
	if !req.headers.Has(headerConnection) {
		req.headers.Add(headerConnection, headerKeepAlive)
	}

	// Content-Length (if body present and length known)
	if req.body != nil && req.bodyLength >= 0 {
		// Convert length to bytes (inline to avoid allocation)
		var lengthBuf [20]byte
		lengthStr := itoa(int(req.bodyLength), lengthBuf[:])
		req.headers.Add(headerContentLength, []byte(lengthStr))
	}
}

// parseURL parses a URL string and populates the request.
// Uses URL cache for zero allocations on cache hit.
//
// Allocation behavior: 0 allocs/op on cache hit, 2 allocs/op on cache miss
func (c *Client) parseURL(req *ClientRequest, urlStr string) error {
	// Use global URL cache
	scheme, host, port, path, query, err := GetGlobalURLCache().ParseURL(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	req.SetURL(scheme, host, port, path, query)

	return nil
}

// itoa converts an integer to a string without allocation.
// Uses a provided buffer and returns the string.
func itoa(n int, buf []byte) string {
	if n == 0 {
		buf[0] = '0'
		return string(buf[:1])
	}

	i := len(buf) - 1
	for n > 0 {
		buf[i] = byte('0' + n%10)
		n /= 10
		i--
	}

	return string(buf[i+1:])
}

// Close closes the client and all connections.
func (c *Client) Close() error {
	return c.pool.Close()
}

// Stats returns connection pool statistics.
func (c *Client) Stats() PoolStats {
	return c.pool.Stats()
}

// Warmup pre-warms all pools for optimal performance.
// Call this during initialization to avoid cold-start allocations.
func (c *Client) Warmup(count int) {
	WarmupPools(count)
}
