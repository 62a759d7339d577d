// Package httpwire implements the wire-level HTTP/1.1 engine: the C1 line
// tokenizer, the C3 message parser (request-line/headers/body as a lazy
// sequence of atoms), and the C2 codec pipeline built on top of it.
// Grounded on the teacher's http11 engine; restructured here around an
// explicit atom sequence and an opt-in end-of-stream body mode that the
// teacher's engine never implemented.
package httpwire

// HTTP Method IDs for O(1) switching
const (
	MethodUnknown uint8 = 0
	MethodGET     uint8 = 1
	MethodPOST    uint8 = 2
	MethodPUT     uint8 = 3
	MethodDELETE  uint8 = 4
	MethodPATCH   uint8 = 5
	MethodHEAD    uint8 = 6
	MethodOPTIONS uint8 = 7
	MethodCONNECT uint8 = 8
	MethodTRACE   uint8 = 9
)

// Method byte/string tables, pre-compiled so ParseMethodID/MethodString
// never allocate on the hot path.
var (
	methodGETBytes     = []byte("GET")
	methodPOSTBytes    = []byte("POST")
	methodPUTBytes     = []byte("PUT")
	methodDELETEBytes  = []byte("DELETE")
	methodPATCHBytes   = []byte("PATCH")
	methodHEADBytes    = []byte("HEAD")
	methodOPTIONSBytes = []byte("OPTIONS")
	methodCONNECTBytes = []byte("CONNECT")
	methodTRACEBytes   = []byte("TRACE")
)

const (
	methodGETString     = "GET"
	methodPOSTString    = "POST"
	methodPUTString     = "PUT"
	methodDELETEString  = "DELETE"
	methodPATCHString   = "PATCH"
	methodHEADString    = "HEAD"
	methodOPTIONSString = "OPTIONS"
	methodCONNECTString = "CONNECT"
	methodTRACEString   = "TRACE"
)

// ParserState names where a Parser sits in the request atom sequence:
// RequestLine -> Headers -> Body(length|chunked|eos) -> Complete.
type ParserState uint8

const (
	ParserAwaitingRequestLine ParserState = iota
	ParserAwaitingHeaders
	ParserAwaitingBodyLength
	ParserAwaitingBodyChunked
	ParserAwaitingBodyEOS
	ParserComplete
)

func (s ParserState) String() string {
	switch s {
	case ParserAwaitingRequestLine:
		return "awaiting-request-line"
	case ParserAwaitingHeaders:
		return "awaiting-headers"
	case ParserAwaitingBodyLength:
		return "awaiting-body-length"
	case ParserAwaitingBodyChunked:
		return "awaiting-body-chunked"
	case ParserAwaitingBodyEOS:
		return "awaiting-body-eos"
	case ParserComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// AtomKind identifies one element of the lazy atom sequence a Parser
// yields while decoding a message: a request line, the header block, zero
// or more body blobs, and a final completion marker.
type AtomKind uint8

const (
	AtomRequestLine AtomKind = iota
	AtomHeaders
	AtomBodyBlob
	AtomComplete
)

func (k AtomKind) String() string {
	switch k {
	case AtomRequestLine:
		return "request-line"
	case AtomHeaders:
		return "headers"
	case AtomBodyBlob:
		return "body-blob"
	case AtomComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// BodyMode records which RFC 7230 body-framing rule a request's body was
// decoded under.
type BodyMode uint8

const (
	// BodyModeNone means the message carries no body.
	BodyModeNone BodyMode = iota
	// BodyModeLength means the body is framed by Content-Length.
	BodyModeLength
	// BodyModeChunked means the body uses Transfer-Encoding: chunked.
	BodyModeChunked
	// BodyModeEOS means the body runs until the peer closes the
	// connection. Only honored when ParserOptions.AllowEOSBody is set;
	// disabled by default because it makes keep-alive reuse impossible
	// and can only be framed correctly on connection close.
	BodyModeEOS
)

func (m BodyMode) String() string {
	switch m {
	case BodyModeNone:
		return "none"
	case BodyModeLength:
		return "length"
	case BodyModeChunked:
		return "chunked"
	case BodyModeEOS:
		return "eos"
	default:
		return "unknown"
	}
}

// HTTP Status Lines - Pre-compiled with CRLF for zero-allocation writes.
var (
	status100Bytes = []byte("HTTP/1.1 100 Continue\r\n")
	status101Bytes = []byte("HTTP/1.1 101 Switching Protocols\r\n")

	status200Bytes = []byte("HTTP/1.1 200 OK\r\n")
	status201Bytes = []byte("HTTP/1.1 201 Created\r\n")
	status202Bytes = []byte("HTTP/1.1 202 Accepted\r\n")
	status203Bytes = []byte("HTTP/1.1 203 Non-Authoritative Information\r\n")
	status204Bytes = []byte("HTTP/1.1 204 No Content\r\n")
	status205Bytes = []byte("HTTP/1.1 205 Reset Content\r\n")
	status206Bytes = []byte("HTTP/1.1 206 Partial Content\r\n")

	status300Bytes = []byte("HTTP/1.1 300 Multiple Choices\r\n")
	status301Bytes = []byte("HTTP/1.1 301 Moved Permanently\r\n")
	status302Bytes = []byte("HTTP/1.1 302 Found\r\n")
	status303Bytes = []byte("HTTP/1.1 303 See Other\r\n")
	status304Bytes = []byte("HTTP/1.1 304 Not Modified\r\n")
	status307Bytes = []byte("HTTP/1.1 307 Temporary Redirect\r\n")
	status308Bytes = []byte("HTTP/1.1 308 Permanent Redirect\r\n")

	status400Bytes = []byte("HTTP/1.1 400 Bad Request\r\n")
	status401Bytes = []byte("HTTP/1.1 401 Unauthorized\r\n")
	status403Bytes = []byte("HTTP/1.1 403 Forbidden\r\n")
	status404Bytes = []byte("HTTP/1.1 404 Not Found\r\n")
	status405Bytes = []byte("HTTP/1.1 405 Method Not Allowed\r\n")
	status406Bytes = []byte("HTTP/1.1 406 Not Acceptable\r\n")
	status408Bytes = []byte("HTTP/1.1 408 Request Timeout\r\n")
	status409Bytes = []byte("HTTP/1.1 409 Conflict\r\n")
	status410Bytes = []byte("HTTP/1.1 410 Gone\r\n")
	status411Bytes = []byte("HTTP/1.1 411 Length Required\r\n")
	status412Bytes = []byte("HTTP/1.1 412 Precondition Failed\r\n")
	status413Bytes = []byte("HTTP/1.1 413 Payload Too Large\r\n")
	status414Bytes = []byte("HTTP/1.1 414 URI Too Long\r\n")
	status415Bytes = []byte("HTTP/1.1 415 Unsupported Media Type\r\n")
	status429Bytes = []byte("HTTP/1.1 429 Too Many Requests\r\n")

	status500Bytes = []byte("HTTP/1.1 500 Internal Server Error\r\n")
	status501Bytes = []byte("HTTP/1.1 501 Not Implemented\r\n")
	status502Bytes = []byte("HTTP/1.1 502 Bad Gateway\r\n")
	status503Bytes = []byte("HTTP/1.1 503 Service Unavailable\r\n")
	status504Bytes = []byte("HTTP/1.1 504 Gateway Timeout\r\n")
)

// Common HTTP Headers - canonical Kebab-Case, byte slices for zero-copy compares.
var (
	headerContentLength    = []byte("Content-Length")
	headerContentType      = []byte("Content-Type")
	headerConnection       = []byte("Connection")
	headerKeepAlive        = []byte("keep-alive")
	headerClose            = []byte("close")
	headerTransferEncoding = []byte("Transfer-Encoding")
	headerChunked          = []byte("chunked")
	headerHost             = []byte("Host")
	headerUserAgent        = []byte("User-Agent")
	headerAccept           = []byte("Accept")
	headerAcceptEncoding   = []byte("Accept-Encoding")
	headerAcceptLanguage   = []byte("Accept-Language")
	headerCacheControl     = []byte("Cache-Control")
	headerCookie           = []byte("Cookie")
	headerSetCookie        = []byte("Set-Cookie")
	headerAuthorization    = []byte("Authorization")
	headerLocation         = []byte("Location")
	headerServer           = []byte("Server")
	headerDate             = []byte("Date")
	headerExpires          = []byte("Expires")
	headerETag             = []byte("ETag")
	headerLastModified     = []byte("Last-Modified")
	headerIfModifiedSince  = []byte("If-Modified-Since")
	headerIfNoneMatch      = []byte("If-None-Match")
	headerRange            = []byte("Range")
	headerContentRange     = []byte("Content-Range")
	headerUpgrade          = []byte("Upgrade")
	headerOrigin           = []byte("Origin")
	headerReferer          = []byte("Referer")
)

// Common Content-Type values - pre-compiled for zero-allocation writes.
var (
	contentTypeJSON     = []byte("application/json")
	contentTypeJSONUTF8 = []byte("application/json; charset=utf-8")
	contentTypeHTML     = []byte("text/html; charset=utf-8")
	contentTypePlain    = []byte("text/plain; charset=utf-8")
	contentTypeXML      = []byte("application/xml")
	contentTypePDF      = []byte("application/pdf")
	contentTypeMarkdown = []byte("text/markdown; charset=utf-8")

	contentTypeForm       = []byte("application/x-www-form-urlencoded")
	contentTypeMultipart  = []byte("multipart/form-data")
	contentTypeJavaScript = []byte("application/javascript")
	contentTypeCSS        = []byte("text/css")
	contentTypeWasm       = []byte("application/wasm")

	contentTypeJSONAPI  = []byte("application/vnd.api+json")
	contentTypeJSONLD   = []byte("application/ld+json")
	contentTypeProtobuf = []byte("application/x-protobuf")
	contentTypeMsgPack  = []byte("application/msgpack")
	contentTypeYAML     = []byte("application/x-yaml")
	contentTypeTOML     = []byte("application/toml")

	contentTypePNG  = []byte("image/png")
	contentTypeJPEG = []byte("image/jpeg")
	contentTypeGIF  = []byte("image/gif")
	contentTypeWebP = []byte("image/webp")
	contentTypeAVIF = []byte("image/avif")
	contentTypeBMP  = []byte("image/bmp")
	contentTypeICO  = []byte("image/x-icon")

	contentTypeSVG = []byte("image/svg+xml")

	contentTypeMP3  = []byte("audio/mpeg")
	contentTypeOGG  = []byte("audio/ogg")
	contentTypeWAV  = []byte("audio/wav")
	contentTypeAAC  = []byte("audio/aac")
	contentTypeFLAC = []byte("audio/flac")
	contentTypeOpus = []byte("audio/opus")

	contentTypeMP4  = []byte("video/mp4")
	contentTypeWebM = []byte("video/webm")
	contentTypeOGV  = []byte("video/ogg")
	contentTypeMOV  = []byte("video/quicktime")
	contentTypeAVI  = []byte("video/x-msvideo")

	contentTypeWOFF  = []byte("font/woff")
	contentTypeWOFF2 = []byte("font/woff2")
	contentTypeTTF   = []byte("font/ttf")
	contentTypeOTF   = []byte("font/otf")
	contentTypeEOT   = []byte("application/vnd.ms-fontobject")

	contentTypeZIP   = []byte("application/zip")
	contentTypeGZIP  = []byte("application/gzip")
	contentTypeTAR   = []byte("application/x-tar")
	contentTypeBZIP2 = []byte("application/x-bzip2")
	contentType7Z    = []byte("application/x-7z-compressed")

	contentTypeEventStream = []byte("text/event-stream")
	contentTypeM3U8        = []byte("application/vnd.apple.mpegurl")
	contentTypeMPD         = []byte("application/dash+xml")

	contentTypeOctetStream = []byte("application/octet-stream")
)

// Protocol constants
var (
	http11Bytes = []byte("HTTP/1.1")
	http10Bytes = []byte("HTTP/1.0")
	crlfBytes   = []byte("\r\n")
	colonSpace  = []byte(": ")
	http11Proto = "HTTP/1.1"
)

// HTTP/1.1 protocol version
const (
	ProtoHTTP11Major = 1
	ProtoHTTP11Minor = 1
)

// Header and request limits (RFC 7230 plus this engine's own DoS ceilings).
const (
	// MaxHeaders is the number of headers stored inline before falling
	// back to the overflow map.
	MaxHeaders = 32

	// MaxHeaderName is the maximum length of a canonicalized header name.
	MaxHeaderName = 64

	// MaxHeaderValue is the maximum length of a header value kept inline;
	// larger values (e.g. big cookies) spill into overflow storage.
	MaxHeaderValue = 128

	// MaxRequestLineSize bounds the request line (RFC 7230 recommends
	// servers support at least 8000 octets of Request-URI).
	MaxRequestLineSize = 8192

	// MaxURILength bounds the Request-URI specifically, independent of
	// the method/protocol tokens around it.
	MaxURILength = 8192

	// MaxHeadersSize bounds the total size of the header block.
	MaxHeadersSize = 8192
)

// Common JSON responses - pre-compiled for zero-allocation writes.
var (
	jsonOK               = []byte(`{"status":"ok"}`)
	jsonError            = []byte(`{"status":"error"}`)
	jsonNotFound         = []byte(`{"status":"error","message":"not found"}`)
	jsonBadRequest       = []byte(`{"status":"error","message":"bad request"}`)
	jsonInternalError    = []byte(`{"status":"error","message":"internal server error"}`)
	jsonUnauthorized     = []byte(`{"status":"error","message":"unauthorized"}`)
	jsonForbidden        = []byte(`{"status":"error","message":"forbidden"}`)
	jsonMethodNotAllowed = []byte(`{"status":"error","message":"method not allowed"}`)
)
