// Package httpbody implements the body I/O model shared by the server and
// the client: a small sum type describing where response/request payload
// bytes live (in memory, on disk, produced by a synchronous generator, or
// produced by an asynchronous producer) plus a pull-based Reader view used
// to drain any of them onto the wire.
//
// Grounded on extra's own http/model.py: HTTPBodyBlob, HTTPBodyFile,
// HTTPBodyStream, HTTPBodyAsyncStream, HTTPBodyIO.
package httpbody

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"

	"github.com/sebastien/extra/pkg/extra/httpbody/memory"
	"github.com/sebastien/extra/pkg/extra/httpserver/socket"
)

// Kind identifies which Body variant is populated.
type Kind uint8

const (
	// KindBlob is an in-memory payload of known length.
	KindBlob Kind = iota
	// KindFile streams a file from disk, optionally via sendfile(2).
	KindFile
	// KindSyncStream is fed by a synchronous producer function.
	KindSyncStream
	// KindAsyncStream is fed by a producer goroutine over a channel.
	KindAsyncStream
)

// SpoolThreshold is the in-memory/on-disk cutoff used when building a Body
// from an unbounded source (e.g. an incoming request of unknown length):
// payloads at or under this size stay in memory, larger ones spool to a
// temp file. Matches the original's default multipart spool size order of
// magnitude, scaled up for general bodies.
const SpoolThreshold = 8 * 1024 * 1024

// Producer yields the next chunk of a synchronous stream body. It returns
// io.EOF (with a possibly non-empty final chunk) when exhausted.
type Producer func() ([]byte, error)

// Body is the sum type backing request/response payloads. Exactly one of
// the variant-specific fields is meaningful, selected by Kind.
type Body struct {
	Kind Kind

	// Blob
	payload []byte

	// File
	path   string
	file   *os.File
	offset int64

	// SyncStream
	produce Producer

	// AsyncStream
	ctx    context.Context
	cancel context.CancelFunc
	ch     <-chan asyncChunk

	length    int64 // -1 if unknown
	contentType string
}

type asyncChunk struct {
	data []byte
	err  error
}

// NewBlob builds a Body holding data in memory.
func NewBlob(data []byte, contentType string) Body {
	return Body{Kind: KindBlob, payload: data, length: int64(len(data)), contentType: contentType}
}

// NewFile builds a Body that streams the file at path. length is the number
// of bytes to serve starting at offset (use -1 to mean "to EOF").
func NewFile(path string, offset, length int64, contentType string) Body {
	return Body{Kind: KindFile, path: path, offset: offset, length: length, contentType: contentType}
}

// NewSyncStream builds a Body fed by a Producer called synchronously by the
// reader. length is -1 when unknown (forces chunked framing).
func NewSyncStream(produce Producer, contentType string) Body {
	return Body{Kind: KindSyncStream, produce: produce, length: -1, contentType: contentType}
}

// NewAsyncStream builds a Body fed by a producer goroutine. feed is called
// once in its own goroutine with a push function that hands one chunk to
// the reader; the channel behind push is closed when feed returns. feed
// must stop promptly if ctx is cancelled (the consumer closed the response
// early), which push reports by returning ctx.Err().
func NewAsyncStream(ctx context.Context, contentType string, feed func(ctx context.Context, push func([]byte) error)) Body {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan asyncChunk, 1)
	go func() {
		defer close(ch)
		push := func(b []byte) error {
			select {
			case ch <- asyncChunk{data: b}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		feed(ctx, push)
	}()
	return Body{Kind: KindAsyncStream, ctx: ctx, cancel: cancel, ch: ch, length: -1, contentType: contentType}
}

// Length reports the byte length if known, or -1.
func (b Body) Length() int64 {
	if b.Kind == KindFile && b.length < 0 {
		if fi, err := os.Stat(b.path); err == nil {
			return fi.Size() - b.offset
		}
		return -1
	}
	return b.length
}

// ContentType reports the declared content type, if any.
func (b Body) ContentType() string { return b.contentType }

// Reader returns a pull-based io.ReadCloser over the body's bytes,
// regardless of which variant it is. Close must be called exactly once;
// for KindAsyncStream it cancels the producer if not yet drained.
func (b *Body) Reader() (io.ReadCloser, error) {
	switch b.Kind {
	case KindBlob:
		return io.NopCloser(newSliceReader(b.payload)), nil
	case KindFile:
		f := b.file
		if f == nil {
			var err error
			f, err = os.Open(b.path)
			if err != nil {
				return nil, err
			}
			b.file = f
		}
		if _, err := f.Seek(b.offset, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
		var r io.Reader = f
		if n := b.Length(); n >= 0 {
			r = io.LimitReader(f, n)
		}
		return &fileReadCloser{r: r, f: f}, nil
	case KindSyncStream:
		return io.NopCloser(&producerReader{produce: b.produce}), nil
	case KindAsyncStream:
		return &asyncReadCloser{body: b}, nil
	default:
		return io.NopCloser(newSliceReader(nil)), nil
	}
}

// WriteTo drains the body onto conn by the fastest means available: the
// sendfile(2) fast path for a File body on a TCP connection, falling back
// to a buffered copy through Reader for every other Kind (or when the
// sendfile fast path isn't usable for this conn).
func (b *Body) WriteTo(conn net.Conn) (int64, error) {
	if b.Kind == KindFile && socket.CanUseSendFile(conn) {
		f := b.file
		if f == nil {
			var err error
			f, err = os.Open(b.path)
			if err != nil {
				return 0, err
			}
			b.file = f
		}
		if n := b.Length(); n >= 0 {
			return socket.SendFile(conn, f, b.offset, n)
		}
		return socket.SendFileAll(conn, f)
	}

	r, err := b.Reader()
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return io.Copy(conn, r)
}

func newSliceReader(b []byte) io.Reader {
	return bufio.NewReader(&byteSliceReader{b: b})
}

type byteSliceReader struct{ b []byte }

func (r *byteSliceReader) Read(p []byte) (int, error) {
	if len(r.b) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.b)
	r.b = r.b[n:]
	return n, nil
}

type fileReadCloser struct {
	r io.Reader
	f *os.File
}

func (f *fileReadCloser) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *fileReadCloser) Close() error                { return f.f.Close() }

// producerReader adapts a Producer to io.Reader, buffering the trailing
// unread portion of the last chunk between calls (mirrors HTTPBodyIO's
// "serve existing bytes before reading more" behavior in model.py).
type producerReader struct {
	produce Producer
	pending []byte
	done    bool
}

func (p *producerReader) Read(out []byte) (int, error) {
	for len(p.pending) == 0 {
		if p.done {
			return 0, io.EOF
		}
		chunk, err := p.produce()
		if len(chunk) > 0 {
			p.pending = chunk
		}
		if err != nil {
			p.done = true
			if len(chunk) == 0 {
				if err == io.EOF {
					return 0, io.EOF
				}
				return 0, err
			}
		}
	}
	n := copy(out, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

type asyncReadCloser struct {
	body    *Body
	pending []byte
	done    bool
}

func (a *asyncReadCloser) Read(out []byte) (int, error) {
	for len(a.pending) == 0 {
		if a.done {
			return 0, io.EOF
		}
		chunk, ok := <-a.body.ch
		if !ok {
			a.done = true
			continue
		}
		if chunk.err != nil {
			a.done = true
			return 0, chunk.err
		}
		a.pending = chunk.data
	}
	n := copy(out, a.pending)
	a.pending = a.pending[n:]
	return n, nil
}

func (a *asyncReadCloser) Close() error {
	if a.body.cancel != nil {
		a.body.cancel()
	}
	return nil
}

// Load drains the body fully into memory, spooling to a temp file and
// switching to KindFile if it exceeds SpoolThreshold. arena is used to
// coalesce small reads without extra allocations; pass nil to allocate
// normally.
func Load(b *Body, arena *memory.Arena) ([]byte, error) {
	if b.Kind == KindBlob {
		return b.payload, nil
	}
	r, err := b.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var buf []byte
	if arena != nil {
		buf = arena.MakeSlice(0)
	}
	limit := int64(SpoolThreshold)
	lr := io.LimitReader(r, limit+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) <= limit {
		return append(buf, data...), nil
	}

	// Spooled: too large for memory, write to a temp file and re-expose it
	// as a KindFile body for any subsequent reads.
	tmp, err := os.CreateTemp("", "extra-body-*")
	if err != nil {
		return nil, err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, err
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()
	*b = NewFile(tmp.Name(), 0, info.Size(), b.contentType)
	return nil, errSpooled
}

var errSpooled = spoolErr{}

type spoolErr struct{}

func (spoolErr) Error() string { return "body spooled to disk, re-read via Reader()" }

// IsSpooled reports whether err is the sentinel Load returns when it had to
// spool the body to disk instead of returning an in-memory slice.
func IsSpooled(err error) bool {
	_, ok := err.(spoolErr)
	return ok
}
