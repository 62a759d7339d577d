package httpwire

import (
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Transform is a streaming bytes transform: feed chunks in, get encoded or
// decoded chunks out, flush at the end. Grounded on extra's own
// utils/codec.py BytesTransform: GZipEncoder/GZipDecoder/ChunkedEncoder/
// ChunkedDecoder. ChunkedReader/Writer live in chunked.go since they also
// double as io.Reader/io.Writer; this file covers the content-coding layer
// (gzip, brotli) that sits above or below chunked framing.
type Transform interface {
	// Feed transforms chunk and returns any output ready to emit.
	Feed(chunk []byte) ([]byte, error)
	// Flush finalizes the transform, returning any buffered output.
	Flush() ([]byte, error)
}

// GzipDecoder decodes a gzip-framed stream as it is fed. It uses
// klauspost/compress's Reader, configured for multi-member streams to match
// the original's zlib.MAX_WBITS|32 auto-detection behavior.
type GzipDecoder struct {
	pr *io.PipeReader
	pw *io.PipeWriter
	gr *gzip.Reader
	// buffered output from the background unzip goroutine
	out  chan []byte
	errc chan error
}

// NewGzipDecoder returns a decoder ready to accept Feed calls.
func NewGzipDecoder() *GzipDecoder {
	pr, pw := io.Pipe()
	d := &GzipDecoder{pr: pr, pw: pw, out: make(chan []byte), errc: make(chan error, 1)}
	go d.run()
	return d
}

func (d *GzipDecoder) run() {
	gr, err := gzip.NewReader(d.pr)
	if err != nil {
		d.errc <- err
		close(d.out)
		return
	}
	gr.Multistream(true)
	d.gr = gr
	buf := make([]byte, 32*1024)
	for {
		n, err := gr.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			d.out <- chunk
		}
		if err != nil {
			if err != io.EOF {
				d.errc <- err
			}
			close(d.out)
			return
		}
	}
}

// Feed writes chunk into the decompressor and drains whatever it produced.
func (d *GzipDecoder) Feed(chunk []byte) ([]byte, error) {
	if len(chunk) > 0 {
		if _, err := d.pw.Write(chunk); err != nil {
			return nil, err
		}
	}
	var out []byte
	select {
	case b, ok := <-d.out:
		if !ok {
			select {
			case err := <-d.errc:
				return nil, err
			default:
				return nil, nil
			}
		}
		out = b
	default:
	}
	return out, nil
}

// Flush closes the input side and drains any remaining decompressed bytes.
func (d *GzipDecoder) Flush() ([]byte, error) {
	d.pw.Close()
	var all []byte
	for b := range d.out {
		all = append(all, b...)
	}
	select {
	case err := <-d.errc:
		return all, err
	default:
		return all, nil
	}
}

// GzipEncoder compresses fed chunks with klauspost/compress/gzip at the
// given compression level (matches zlib.compressobj(level=6) default).
type GzipEncoder struct {
	buf *growBuffer
	gw  *gzip.Writer
}

// NewGzipEncoder returns an encoder at the given compression level.
func NewGzipEncoder(level int) (*GzipEncoder, error) {
	buf := newGrowBuffer()
	gw, err := gzip.NewWriterLevel(buf, level)
	if err != nil {
		return nil, fmt.Errorf("httpwire: gzip encoder: %w", err)
	}
	return &GzipEncoder{buf: buf, gw: gw}, nil
}

// Feed compresses chunk and returns whatever compressed bytes are ready.
func (e *GzipEncoder) Feed(chunk []byte) ([]byte, error) {
	if len(chunk) > 0 {
		if _, err := e.gw.Write(chunk); err != nil {
			return nil, err
		}
	}
	return e.buf.takeAll(), nil
}

// Flush finalizes the gzip stream (writes its trailer) and returns the rest.
func (e *GzipEncoder) Flush() ([]byte, error) {
	if err := e.gw.Close(); err != nil {
		return nil, err
	}
	return e.buf.takeAll(), nil
}

// BrotliEncoder compresses fed chunks with brotli. Offered as a second
// content-coding alongside gzip; the wire codec pipeline treats it
// identically to GzipEncoder.
type BrotliEncoder struct {
	buf *growBuffer
	bw  *brotli.Writer
}

// NewBrotliEncoder returns a brotli encoder at the given quality (0-11).
func NewBrotliEncoder(quality int) *BrotliEncoder {
	buf := newGrowBuffer()
	return &BrotliEncoder{buf: buf, bw: brotli.NewWriterLevel(buf, quality)}
}

func (e *BrotliEncoder) Feed(chunk []byte) ([]byte, error) {
	if len(chunk) > 0 {
		if _, err := e.bw.Write(chunk); err != nil {
			return nil, err
		}
	}
	return e.buf.takeAll(), nil
}

func (e *BrotliEncoder) Flush() ([]byte, error) {
	if err := e.bw.Close(); err != nil {
		return nil, err
	}
	return e.buf.takeAll(), nil
}

// growBuffer is a minimal io.Writer sink that lets encoders write into a
// plain byte buffer; takeAll drains and resets it.
type growBuffer struct{ b []byte }

func newGrowBuffer() *growBuffer { return &growBuffer{} }

func (g *growBuffer) Write(p []byte) (int, error) {
	g.b = append(g.b, p...)
	return len(p), nil
}

func (g *growBuffer) takeAll() []byte {
	if len(g.b) == 0 {
		return nil
	}
	out := g.b
	g.b = nil
	return out
}
