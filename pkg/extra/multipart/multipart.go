// Package multipart decodes multipart/form-data and multipart/mixed bodies.
//
// extra's own processor for this (http/processors.py's Multipart) was never
// finished upstream: accepts()/start() extract the boundary and reset a
// line tokenizer onto it, but feed() is a stub that always returns EOS. This
// package implements the missing feed loop, generalizing the same
// accumulate-and-search-with-an-offset-hint technique extra's LineParser
// uses for CRLF (utils/io.py) to an arbitrary boundary delimiter.
package multipart

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// ErrMalformed is returned when the stream does not look like a valid
// multipart body (missing opening boundary, unterminated headers, etc).
var ErrMalformed = errors.New("multipart: malformed body")

// Part is one section of a multipart body: its headers and a reader over
// its body, valid only until the next call to Reader.NextPart.
type Part struct {
	Header map[string]string
	body   io.Reader
}

// Read reads the part's body, stopping at the next boundary.
func (p *Part) Read(b []byte) (int, error) { return p.body.Read(b) }

// FormName returns the "name" parameter of Content-Disposition, if present.
func (p *Part) FormName() string { return dispositionParam(p.Header["Content-Disposition"], "name") }

// FileName returns the "filename" parameter of Content-Disposition, if present.
func (p *Part) FileName() string {
	return dispositionParam(p.Header["Content-Disposition"], "filename")
}

// Accepts reports whether contentType names a multipart body this package
// can decode, matching processors.py's Multipart.accepts().
func Accepts(contentType string) bool {
	return strings.Contains(contentType, "multipart/form-data") ||
		strings.Contains(contentType, "multipart/mixed")
}

// BoundaryFromContentType extracts the boundary= parameter, matching
// processors.py's Multipart.start().
func BoundaryFromContentType(contentType string) (string, bool) {
	idx := strings.Index(contentType, "boundary=")
	if idx < 0 {
		return "", false
	}
	b := contentType[idx+len("boundary="):]
	if semi := strings.IndexByte(b, ';'); semi >= 0 {
		b = b[:semi]
	}
	b = strings.Trim(strings.TrimSpace(b), `"`)
	if b == "" {
		return "", false
	}
	return b, true
}

// Reader incrementally decodes a multipart body fed by an underlying
// io.Reader. It accumulates unconsumed bytes in a single growing buffer and
// re-searches for the boundary from an offset hint on every read, the same
// technique extra's LineParser uses for CRLF scanning: never rescan bytes
// already known not to contain (a prefix of) the delimiter.
type Reader struct {
	r   io.Reader
	buf []byte
	off int // search resumes here; buf[:off] is known delimiter-free

	dash    []byte // "--boundary"
	closing []byte // "--boundary--"

	started bool
	done    bool
}

// NewReader returns a Reader that scans r for parts delimited by boundary.
func NewReader(r io.Reader, boundary string) *Reader {
	return &Reader{
		r:       r,
		dash:    []byte("--" + boundary),
		closing: []byte("--" + boundary + "--"),
	}
}

func (mr *Reader) fill() error {
	tmp := make([]byte, 32*1024)
	n, err := mr.r.Read(tmp)
	if n > 0 {
		mr.buf = append(mr.buf, tmp[:n]...)
	}
	if n == 0 && err == nil {
		err = io.ErrNoProgress
	}
	return err
}

// consume drops the first n bytes of buf, adjusting the search offset.
func (mr *Reader) consume(n int) {
	mr.buf = mr.buf[n:]
	mr.off -= n
	if mr.off < 0 {
		mr.off = 0
	}
}

// readLine pulls one CRLF- or LF-terminated line out of buf, filling from
// the underlying reader as needed. The returned slice excludes the EOL.
func (mr *Reader) readLine() ([]byte, error) {
	for {
		if i := bytes.IndexByte(mr.buf[mr.off:], '\n'); i >= 0 {
			end := mr.off + i
			line := mr.buf[:end]
			line = bytes.TrimSuffix(line, []byte("\r"))
			out := append([]byte(nil), line...)
			mr.consume(end + 1)
			return out, nil
		}
		mr.off = len(mr.buf)
		if err := mr.fill(); err != nil {
			if len(mr.buf) > 0 {
				out := append([]byte(nil), mr.buf...)
				mr.buf = nil
				mr.off = 0
				return out, nil
			}
			return nil, err
		}
	}
}

// NextPart advances to the next part, discarding the remainder of the
// current one if it was not fully read. Returns io.EOF once the closing
// boundary has been consumed.
func (mr *Reader) NextPart() (*Part, error) {
	if mr.done {
		return nil, io.EOF
	}

	for {
		line, err := mr.readLine()
		if err != nil {
			return nil, err
		}
		if !mr.started {
			if !bytes.Equal(line, mr.dash) {
				continue // preamble, discard until the first boundary
			}
			mr.started = true
			break
		}
		if bytes.Equal(line, mr.closing) {
			mr.done = true
			return nil, io.EOF
		}
		if bytes.Equal(line, mr.dash) {
			break
		}
		return nil, ErrMalformed
	}

	header, err := mr.readHeader()
	if err != nil {
		return nil, err
	}
	return &Part{Header: header, body: &partReader{mr: mr}}, nil
}

func (mr *Reader) readHeader() (map[string]string, error) {
	header := make(map[string]string)
	for {
		line, err := mr.readLine()
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			return header, nil
		}
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return nil, ErrMalformed
		}
		name := strings.TrimSpace(string(line[:colon]))
		value := strings.TrimSpace(string(line[colon+1:]))
		header[name] = value
	}
}

// partReader streams one part's body, stopping just before the CRLF that
// precedes the next boundary line (left in place for NextPart to consume).
type partReader struct {
	mr   *Reader
	done bool
}

func (pr *partReader) Read(out []byte) (int, error) {
	if pr.done {
		return 0, io.EOF
	}
	mr := pr.mr
	marker := append([]byte("\r\n"), mr.dash...)

	for {
		if idx := bytes.Index(mr.buf, marker); idx >= 0 {
			n := copy(out, mr.buf[:idx])
			if n == idx {
				// Drop the emitted body bytes and the CRLF; the boundary
				// line itself stays in buf for NextPart to read.
				mr.buf = mr.buf[idx+2:]
				mr.off = 0
				pr.done = true
			} else {
				mr.buf = mr.buf[n:]
				mr.off = 0
			}
			return n, nil
		}
		// No full marker yet: emit everything except a trailing window
		// that could be the start of one, so a split marker is never missed.
		safe := len(mr.buf) - (len(marker) - 1)
		if safe > 0 {
			n := copy(out, mr.buf[:safe])
			mr.buf = mr.buf[n:]
			mr.off = 0
			return n, nil
		}
		if err := mr.fill(); err != nil {
			if err == io.EOF {
				return 0, ErrMalformed
			}
			return 0, err
		}
	}
}
