package httpwire

import (
	"bytes"
	"io"
	"sync"
)

// tmpBufPool holds scratch buffers used while scanning for the end of
// the header block, so a 4KB read buffer isn't allocated per request.
var tmpBufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 4096)
		return &buf
	},
}

// ParserOptions configures behavior the RFC leaves to implementations.
type ParserOptions struct {
	// AllowEOSBody lets a request body with neither Content-Length nor
	// Transfer-Encoding run until the connection closes (BodyModeEOS).
	// Off by default: such a request then has no body (BodyModeNone).
	// An EOS body defeats keep-alive reuse, so callers must opt in
	// explicitly.
	AllowEOSBody bool
}

// Parser decodes HTTP/1.1 messages as a sequence of atoms: a RequestLine,
// a Headers block, zero or more BodyBlob chunks, and a final Complete
// marker. Parse drives that sequence to completion and returns the
// decoded Request; ParseAtoms exposes the atoms one at a time for
// callers that want to react before the body has been read.
//
// Parser owns a single scratch Request, reused across calls rather than
// drawn from a class-level free list: a Connection keeps exactly one
// Parser per connection, so the Request it returns is already
// connection-scoped, arena-style storage. The returned *Request (and any
// zero-copy slices on it) is valid only until the next Parse/ParseAtoms
// call on the same Parser.
type Parser struct {
	buf       []byte
	unreadBuf []byte

	state ParserState
	opts  ParserOptions

	req Request
}

// NewParser creates a Parser with default options.
func NewParser() *Parser {
	return NewParserWithOptions(ParserOptions{})
}

// NewParserWithOptions creates a Parser with explicit options.
func NewParserWithOptions(opts ParserOptions) *Parser {
	return &Parser{
		buf:   make([]byte, 0, MaxRequestLineSize+MaxHeadersSize),
		state: ParserAwaitingRequestLine,
		opts:  opts,
	}
}

// Atom is one element of the lazy sequence Parse assembles internally
// and ParseAtoms yields externally. Exactly one of Line/Blob is set,
// matching Kind.
type Atom struct {
	Kind AtomKind
	Line RequestLine
	Blob []byte
}

// Parse decodes one full request, including setting up Body for the
// caller to stream. It is the common-case entry point used by
// Connection.Serve; ParseAtoms is for callers that need the intermediate
// atoms (e.g. rejecting a request on its Headers atom before reading any
// body).
func (p *Parser) Parse(r io.Reader) (*Request, error) {
	req, bodyReader, err := p.parseHead(r)
	if err != nil {
		return nil, err
	}
	if err := p.setupBodyReader(req, bodyReader); err != nil {
		return nil, err
	}
	p.state = ParserComplete
	return req, nil
}

// ParseAtoms decodes one request and invokes visit once per atom, in
// order: AtomRequestLine, AtomHeaders, then zero or more AtomBodyBlob (as
// the body is drained from the reader returned to the caller via the
// final Request), then AtomComplete. Returning a non-nil error from visit
// aborts parsing immediately.
func (p *Parser) ParseAtoms(r io.Reader, visit func(Atom) error) (*Request, error) {
	req, bodyReader, err := p.parseHead(r)
	if err != nil {
		return nil, err
	}

	if err := visit(Atom{Kind: AtomRequestLine, Line: req.Line}); err != nil {
		return nil, err
	}
	if err := visit(Atom{Kind: AtomHeaders}); err != nil {
		return nil, err
	}

	if err := p.setupBodyReader(req, bodyReader); err != nil {
		return nil, err
	}

	if req.Body != nil {
		req.Body = &atomReportingReader{r: req.Body, visit: visit}
	} else {
		if err := visit(Atom{Kind: AtomComplete}); err != nil {
			return nil, err
		}
	}

	p.state = ParserComplete
	return req, nil
}

// atomReportingReader wraps a request body so each successful Read also
// surfaces an AtomBodyBlob, and EOF surfaces the final AtomComplete.
type atomReportingReader struct {
	r     io.Reader
	visit func(Atom) error
	done  bool
}

func (a *atomReportingReader) Read(p []byte) (int, error) {
	n, err := a.r.Read(p)
	if n > 0 {
		if verr := a.visit(Atom{Kind: AtomBodyBlob, Blob: p[:n]}); verr != nil {
			return n, verr
		}
	}
	if err == io.EOF && !a.done {
		a.done = true
		if verr := a.visit(Atom{Kind: AtomComplete}); verr != nil {
			return n, verr
		}
	}
	return n, err
}

// parseHead reads and decodes the request line and headers, returning
// the scratch Request and the reader the body (if any) should come from.
func (p *Parser) parseHead(r io.Reader) (*Request, io.Reader, error) {
	p.buf = p.buf[:0]
	p.state = ParserAwaitingRequestLine

	var reader io.Reader
	if len(p.unreadBuf) > 0 {
		reader = io.MultiReader(bytes.NewReader(p.unreadBuf), r)
		p.unreadBuf = nil
	} else {
		reader = r
	}

	if err := p.readUntilHeadersEnd(reader); err != nil {
		return nil, nil, err
	}

	req := &p.req
	req.Reset()
	req.Proto = http11Proto
	req.ProtoMajor = ProtoHTTP11Major
	req.ProtoMinor = ProtoHTTP11Minor
	req.buf = p.buf

	pos, err := p.parseRequestLine(req, p.buf)
	if err != nil {
		return nil, nil, err
	}
	p.state = ParserAwaitingHeaders

	if err := p.parseHeaders(req, p.buf[pos:]); err != nil {
		return nil, nil, err
	}

	bodyReader := r
	if len(p.unreadBuf) > 0 {
		bodyReader = io.MultiReader(bytes.NewReader(p.unreadBuf), r)
		p.unreadBuf = nil
	}

	return req, bodyReader, nil
}

// readUntilHeadersEnd reads from r until the blank line terminating the
// header block (\r\n\r\n), carrying any bytes read past that point over
// to unreadBuf for the next Parse call (HTTP pipelining).
func (p *Parser) readUntilHeadersEnd(r io.Reader) error {
	tmpBufPtr := tmpBufPool.Get().(*[]byte)
	defer tmpBufPool.Put(tmpBufPtr)
	tmpBuf := *tmpBufPtr

	foundEnd := false

	for !foundEnd {
		n, err := r.Read(tmpBuf)
		if err != nil && err != io.EOF {
			return err
		}
		if n == 0 {
			if err == io.EOF {
				return ErrUnexpectedEOF
			}
			continue
		}

		p.buf = append(p.buf, tmpBuf[:n]...)

		if len(p.buf) >= 4 {
			searchStart := len(p.buf) - n - 3
			if searchStart < 0 {
				searchStart = 0
			}

			idx := bytes.Index(p.buf[searchStart:], crlfcrlf)
			if idx != -1 {
				foundEnd = true
				actualIdx := searchStart + idx + 4

				if actualIdx < len(p.buf) {
					excessLen := len(p.buf) - actualIdx
					p.unreadBuf = make([]byte, excessLen)
					copy(p.unreadBuf, p.buf[actualIdx:])
				}

				p.buf = p.buf[:actualIdx]
			}
		}

		if len(p.buf) > MaxRequestLineSize+MaxHeadersSize {
			return ErrHeadersTooLarge
		}

		if err == io.EOF {
			break
		}
	}

	if !foundEnd {
		return ErrUnexpectedEOF
	}

	return nil
}

var crlfcrlf = []byte("\r\n\r\n")

// parseRequestLine decodes "METHOD SP Request-URI SP HTTP-Version CRLF"
// and returns the offset of the byte following it.
func (p *Parser) parseRequestLine(req *Request, buf []byte) (int, error) {
	lineEnd := bytes.Index(buf, crlfBytes)
	if lineEnd == -1 {
		return 0, ErrInvalidRequestLine
	}

	line := buf[:lineEnd]
	if len(line) > MaxRequestLineSize {
		return 0, ErrRequestLineTooLarge
	}

	spaceIdx := bytes.IndexByte(line, ' ')
	if spaceIdx == -1 {
		return 0, ErrInvalidRequestLine
	}

	methodBytes := line[:spaceIdx]
	req.Line.MethodID = ParseMethodID(methodBytes)
	if req.Line.MethodID == MethodUnknown {
		return 0, ErrInvalidMethod
	}

	line = line[spaceIdx+1:]
	spaceIdx = bytes.IndexByte(line, ' ')
	if spaceIdx == -1 {
		return 0, ErrInvalidRequestLine
	}

	uriBytes := line[:spaceIdx]
	if len(uriBytes) > MaxURILength {
		return 0, ErrURITooLong
	}

	if queryIdx := bytes.IndexByte(uriBytes, '?'); queryIdx != -1 {
		req.Line.Path = uriBytes[:queryIdx]
		req.Line.Query = uriBytes[queryIdx+1:]
	} else {
		req.Line.Path = uriBytes
		req.Line.Query = nil
	}

	if len(req.Line.Path) == 0 {
		return 0, ErrInvalidPath
	}
	if req.Line.Path[0] != '/' && req.Line.Path[0] != '*' {
		return 0, ErrInvalidPath
	}

	line = line[spaceIdx+1:]
	req.Line.Proto = line

	if !bytes.Equal(line, http11Bytes) {
		return 0, ErrInvalidProtocol
	}

	return lineEnd + 2, nil
}

// parseHeaders decodes the header block up to (not including) the blank
// line that terminates it, rejecting the RFC 7230 §3.3.3 smuggling
// patterns (Content-Length + Transfer-Encoding together, conflicting
// duplicate Content-Length values) along the way.
func (p *Parser) parseHeaders(req *Request, buf []byte) error {
	pos := 0

	var hasContentLength, hasTransferEncoding, hasHost bool
	var contentLengthValue int64 = -1

	for {
		if pos >= len(buf) {
			break
		}
		if pos+1 < len(buf) && buf[pos] == '\r' && buf[pos+1] == '\n' {
			break
		}

		lineEnd := bytes.Index(buf[pos:], crlfBytes)
		if lineEnd == -1 {
			return ErrInvalidHeader
		}
		lineEnd += pos

		line := buf[pos:lineEnd]

		colonIdx := bytes.IndexByte(line, ':')
		if colonIdx == -1 {
			return ErrInvalidHeader
		}

		name := line[:colonIdx]
		value := line[colonIdx+1:]

		// RFC 7230 §3.2: no whitespace is allowed between the field
		// name and the colon.
		if colonIdx > 0 && (line[colonIdx-1] == ' ' || line[colonIdx-1] == '\t') {
			return ErrInvalidHeader
		}

		value = trimLeadingSpace(value)
		value = trimTrailingSpace(value)

		if bytes.IndexByte(name, ' ') != -1 || bytes.IndexByte(name, '\t') != -1 {
			return ErrInvalidHeader
		}

		if err := req.Header.Add(name, value); err != nil {
			return err
		}

		if err := p.processSpecialHeader(req, name, value, &hasContentLength, &hasTransferEncoding, &contentLengthValue, &hasHost); err != nil {
			return err
		}

		pos = lineEnd + 2
	}

	if hasContentLength && hasTransferEncoding {
		return ErrContentLengthWithTransferEncoding
	}

	return nil
}

// processSpecialHeader updates Request state for headers the parser
// itself needs to act on (Content-Length, Transfer-Encoding, Connection,
// Host), enforcing RFC 7230 §3.3.3 and §5.4 along the way.
func (p *Parser) processSpecialHeader(req *Request, name, value []byte,
	hasContentLength, hasTransferEncoding *bool, contentLengthValue *int64, hasHost *bool) error {

	switch {
	case bytesEqualCaseInsensitive(name, headerContentLength):
		contentLength, err := parseContentLength(value)
		if err != nil {
			return ErrInvalidContentLength
		}

		if *hasContentLength {
			if *contentLengthValue != contentLength {
				return ErrDuplicateContentLength
			}
			return nil
		}

		*hasContentLength = true
		*contentLengthValue = contentLength
		req.ContentLength = contentLength

	case bytesEqualCaseInsensitive(name, headerTransferEncoding):
		*hasTransferEncoding = true
		if bytesEqualCaseInsensitive(value, headerChunked) {
			req.TransferEncoding = []string{"chunked"}
		}

	case bytesEqualCaseInsensitive(name, headerConnection):
		if bytesEqualCaseInsensitive(value, headerClose) {
			req.Close = true
		}

	case bytesEqualCaseInsensitive(name, headerHost):
		// RFC 7230 §5.4: a second Host header is rejected; a request
		// without Host is not rejected here.
		if *hasHost {
			return ErrInvalidHeader
		}
		*hasHost = true
	}

	return nil
}

// setupBodyReader picks the body framing (none, length, chunked, or —
// opt-in only — end-of-stream) and wraps r accordingly.
func (p *Parser) setupBodyReader(req *Request, r io.Reader) error {
	switch {
	case req.ContentLength == 0 && len(req.TransferEncoding) == 0:
		req.Mode = BodyModeNone
		req.Body = nil
		p.state = ParserComplete

	case req.ContentLength > 0:
		req.Mode = BodyModeLength
		req.Body = io.LimitReader(r, req.ContentLength)
		p.state = ParserAwaitingBodyLength

	case len(req.TransferEncoding) > 0 && req.TransferEncoding[len(req.TransferEncoding)-1] == "chunked":
		req.Mode = BodyModeChunked
		req.Body = NewChunkedReader(r)
		p.state = ParserAwaitingBodyChunked

	case p.opts.AllowEOSBody:
		req.Mode = BodyModeEOS
		req.Body = r
		p.state = ParserAwaitingBodyEOS

	default:
		req.Mode = BodyModeNone
		req.Body = nil
		p.state = ParserComplete
	}

	return nil
}

func parseContentLength(b []byte) (int64, error) {
	if len(b) == 0 {
		return -1, ErrInvalidContentLength
	}

	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return -1, ErrInvalidContentLength
		}
		n = n*10 + int64(c-'0')
		if n < 0 {
			return -1, ErrInvalidContentLength
		}
	}
	return n, nil
}

func trimLeadingSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	return b
}

func trimTrailingSpace(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}
