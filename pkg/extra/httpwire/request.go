package httpwire

import (
	"io"
	"net/url"
)

// RequestLine is the first atom a Parser yields: the immutable
// method/target/protocol triple off the wire, before any header has been
// seen. Kept as its own value type (rather than loose fields on Request)
// because the atom sequence yields it as a distinct, already-complete
// unit — a caller consuming atoms one at a time sees RequestLine before
// Header ever exists.
type RequestLine struct {
	MethodID uint8
	Path     []byte // zero-copy, valid only until the parser buffer is reused
	Query    []byte // zero-copy, without the leading '?'
	Proto    []byte // zero-copy, e.g. "HTTP/1.1"
}

// Method returns the line's HTTP method as a string.
func (l RequestLine) Method() string { return MethodString(l.MethodID) }

// Request is a decoded HTTP/1.1 request. Request values are arena-owned:
// a Connection's Parser keeps one Request as scratch space and hands out
// a pointer to it that is only valid until the next Parse call, rather
// than fetching instances from a class-level free list. Handlers that
// need a Request to outlive that window must call Clone.
type Request struct {
	// Line is the request-line atom (method, path, query, protocol).
	Line RequestLine

	// pathParsed lazily caches ParsedURL(); nil until first use.
	pathParsed *url.URL

	// Header holds the request's header fields, stored canonicalized
	// to Kebab-Case (see NormalizeHeaderName).
	Header Header

	// Body streams the request payload. Its concrete type depends on
	// Mode: nil (BodyModeNone), io.LimitReader (BodyModeLength),
	// a ChunkedReader (BodyModeChunked), or the raw connection reader
	// (BodyModeEOS).
	Body io.Reader

	// Mode records which RFC 7230 framing rule produced Body.
	Mode BodyMode

	Proto      string
	ProtoMajor int
	ProtoMinor int

	ContentLength int64

	// TransferEncoding holds the parsed Transfer-Encoding tokens, in
	// wire order. nil for identity encoding.
	TransferEncoding []string

	// Close is true when the request carries "Connection: close". The
	// HTTP/1.0 close-by-default rule is applied by the connection loop
	// and is not recorded here.
	Close bool

	RemoteAddr string

	// buf anchors the zero-copy slices referenced by Line to the
	// parser's internal buffer, so the buffer isn't collected out from
	// under them while the Request is in use. Header holds copies.
	buf []byte
}

// MethodID returns the numeric method ID parsed from the request line.
func (r *Request) MethodID() uint8 { return r.Line.MethodID }

// Method returns the HTTP method as a string.
func (r *Request) Method() string {
	return MethodString(r.Line.MethodID)
}

// MethodBytes returns the HTTP method as a zero-copy byte slice, valid
// only until the parser buffer is reused.
func (r *Request) MethodBytes() []byte {
	return MethodBytes(r.Line.MethodID)
}

// Path returns the request path as a freshly allocated string.
func (r *Request) Path() string {
	return string(r.Line.Path)
}

// PathBytes returns the request path as a zero-copy byte slice.
func (r *Request) PathBytes() []byte {
	return r.Line.Path
}

// Query returns the query string (without '?') as a freshly allocated string.
func (r *Request) Query() string {
	return string(r.Line.Query)
}

// QueryBytes returns the query string as a zero-copy byte slice.
func (r *Request) QueryBytes() []byte {
	return r.Line.Query
}

// ParsedURL lazily builds and caches a *url.URL from path+query.
func (r *Request) ParsedURL() (*url.URL, error) {
	if r.pathParsed == nil {
		var raw string
		if len(r.Line.Query) > 0 {
			raw = string(r.Line.Path) + "?" + string(r.Line.Query)
		} else {
			raw = string(r.Line.Path)
		}
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		r.pathParsed = parsed
	}
	return r.pathParsed, nil
}

// GetHeader retrieves a header value by name (case-insensitive, any casing).
func (r *Request) GetHeader(name []byte) []byte {
	return r.Header.Get(name)
}

// GetHeaderString retrieves a header value as a string.
func (r *Request) GetHeaderString(name string) string {
	return r.Header.GetString([]byte(name))
}

// HasHeader reports whether a header is present.
func (r *Request) HasHeader(name []byte) bool {
	return r.Header.Has(name)
}

func (r *Request) IsGET() bool     { return r.Line.MethodID == MethodGET }
func (r *Request) IsPOST() bool    { return r.Line.MethodID == MethodPOST }
func (r *Request) IsPUT() bool     { return r.Line.MethodID == MethodPUT }
func (r *Request) IsDELETE() bool  { return r.Line.MethodID == MethodDELETE }
func (r *Request) IsPATCH() bool   { return r.Line.MethodID == MethodPATCH }
func (r *Request) IsHEAD() bool    { return r.Line.MethodID == MethodHEAD }
func (r *Request) IsOPTIONS() bool { return r.Line.MethodID == MethodOPTIONS }

// HasBody reports whether the request carries a body under any framing.
func (r *Request) HasBody() bool {
	return r.Mode != BodyModeNone
}

// IsChunked reports whether the body uses chunked transfer encoding.
func (r *Request) IsChunked() bool {
	return r.Mode == BodyModeChunked
}

// ShouldClose reports whether the connection should close after this request.
func (r *Request) ShouldClose() bool {
	return r.Close
}

// Reset clears the request to its zero value so a Parser can reuse it as
// scratch space for the next Parse call.
func (r *Request) Reset() {
	r.Line = RequestLine{}
	r.pathParsed = nil
	r.Header.Reset()
	r.Body = nil
	r.Mode = BodyModeNone
	r.Proto = ""
	r.ProtoMajor = 0
	r.ProtoMinor = 0
	r.ContentLength = 0
	r.TransferEncoding = nil
	r.Close = false
	r.RemoteAddr = ""
	r.buf = nil
}

// Clone makes an independent copy of the request whose zero-copy slices
// have been promoted to owned string-backed storage, so it remains valid
// after the originating Parser reuses its scratch Request and buffer.
// Body is deliberately not cloned: read it (or tee it) before cloning.
func (r *Request) Clone() *Request {
	clone := &Request{
		Line: RequestLine{
			MethodID: r.Line.MethodID,
			Path:     []byte(r.Path()),
			Query:    []byte(r.Query()),
			Proto:    []byte(r.Proto),
		},
		Mode:             r.Mode,
		Proto:            r.Proto,
		ProtoMajor:       r.ProtoMajor,
		ProtoMinor:       r.ProtoMinor,
		ContentLength:    r.ContentLength,
		TransferEncoding: append([]string(nil), r.TransferEncoding...),
		Close:            r.Close,
		RemoteAddr:       r.RemoteAddr,
	}

	r.Header.VisitAll(func(name, value []byte) bool {
		clone.Header.Add(name, value)
		return true
	})

	if r.pathParsed != nil {
		clone.pathParsed = &url.URL{
			Scheme:   r.pathParsed.Scheme,
			Host:     r.pathParsed.Host,
			Path:     r.pathParsed.Path,
			RawQuery: r.pathParsed.RawQuery,
		}
	}

	return clone
}
