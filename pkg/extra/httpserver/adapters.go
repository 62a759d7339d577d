package httpserver

import (
	"io"
	"net"
	"strconv"

	"github.com/sebastien/extra/pkg/extra/httpbody"
	"github.com/sebastien/extra/pkg/extra/httpwire"
)

// requestAdapter adapts httpwire.Request to server.Request interface
type requestAdapter struct {
	req *httpwire.Request
}

func (r *requestAdapter) Method() string { return r.req.Method() }
func (r *requestAdapter) Path() string   { return r.req.Path() }
func (r *requestAdapter) Proto() string  { return r.req.Proto }

func (r *requestAdapter) Header() Header {
	h := headerAdapterPool.Get().(*headerAdapter)
	h.h = &r.req.Header
	return h
}

func (r *requestAdapter) Body() io.Reader { return r.req.Body }
func (r *requestAdapter) Close() bool     { return r.req.Close }

// responseWriterAdapter adapts httpwire.ResponseWriter to server.ResponseWriter interface
type responseWriterAdapter struct {
	rw *httpwire.ResponseWriter
}

func (w *responseWriterAdapter) Header() Header {
	// Return header adapter (allocates only if Header() is called)
	h := headerAdapterPool.Get().(*headerAdapter)
	h.h = w.rw.Header()
	return h
}

func (w *responseWriterAdapter) WriteHeader(statusCode int) {
	w.rw.WriteHeader(statusCode)
}

func (w *responseWriterAdapter) Write(data []byte) (int, error) {
	return w.rw.Write(data)
}

func (w *responseWriterAdapter) WriteString(s string) (int, error) {
	// Try to use WriteString if available (zero-copy)
	if ws, ok := interface{}(w.rw).(interface{ WriteString(string) (int, error) }); ok {
		return ws.WriteString(s)
	}
	// Fallback: this will allocate, but only if WriteString isn't available
	return w.rw.Write([]byte(s))
}

func (w *responseWriterAdapter) WriteJSON(statusCode int, data []byte) error {
	return w.rw.WriteJSON(statusCode, data)
}

func (w *responseWriterAdapter) Flush() error {
	return w.rw.Flush()
}

// ServeBody writes statusCode and body's headers through rw, flushes them
// onto netConn, then drains body onto netConn directly via Body.WriteTo —
// the sendfile(2) fast path for a File body bypasses rw's buffered Write
// entirely, which is why this takes the raw net.Conn rather than going
// through ResponseWriter.Write for the payload itself.
func ServeBody(netConn net.Conn, rw *httpwire.ResponseWriter, statusCode int, body *httpbody.Body) error {
	if ct := body.ContentType(); ct != "" {
		rw.Header().Set([]byte("Content-Type"), []byte(ct))
	}
	if n := body.Length(); n >= 0 {
		rw.Header().Set([]byte("Content-Length"), []byte(strconv.FormatInt(n, 10)))
	}
	rw.WriteHeader(statusCode)
	if err := rw.Flush(); err != nil {
		return err
	}
	_, err := body.WriteTo(netConn)
	return err
}

// headerAdapter adapts httpwire.Header to server.Header interface
type headerAdapter struct {
	h *httpwire.Header
}

func (h *headerAdapter) Get(key string) string {
	return h.h.GetString([]byte(key))
}

func (h *headerAdapter) Set(key, value string) {
	h.h.Set([]byte(key), []byte(value))
}

func (h *headerAdapter) Add(key, value string) {
	h.h.Add([]byte(key), []byte(value))
}

func (h *headerAdapter) Del(key string) {
	h.h.Del([]byte(key))
}

func (h *headerAdapter) Clone() Header {
	cloned := &httpwire.Header{}
	h.h.VisitAll(func(name, value []byte) bool {
		cloned.Set(name, value)
		return true
	})
	return &headerAdapter{h: cloned}
}
