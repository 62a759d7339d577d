//go:build !linux && !darwin
// +build !linux,!darwin

package socket

import (
	"io"
	"net"
	"os"
)

// SendFile copies count bytes of file starting at offset onto conn. On
// platforms without a kernel fast path this is plain io.Copy; httpbody's
// Body.WriteTo calls it the same way regardless of platform.
func SendFile(conn net.Conn, file *os.File, offset int64, count int64) (written int64, err error) {
	return io.Copy(conn, io.NewSectionReader(file, offset, count))
}

// SendFileAll sends an entire file.
func SendFileAll(conn net.Conn, file *os.File) (written int64, err error) {
	stat, err := file.Stat()
	if err != nil {
		return 0, err
	}
	return SendFile(conn, file, 0, stat.Size())
}

// SendFileRange sends the inclusive byte range [start, end] of file, the
// shape an HTTP Range request needs.
func SendFileRange(conn net.Conn, file *os.File, start, end int64) (written int64, err error) {
	if end < start {
		return 0, io.EOF
	}
	return SendFile(conn, file, start, end-start+1)
}

// CanUseSendFile reports whether SendFile has a zero-copy path for conn.
// Always false here, so httpbody's Body.WriteTo takes its plain-copy path
// without a build-tag switch of its own.
func CanUseSendFile(conn net.Conn) bool {
	return false
}
