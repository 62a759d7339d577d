//go:build linux
// +build linux

package socket

import (
	"io"
	"net"
	"os"
	"syscall"
)

// SendFile transmits count bytes of file starting at offset onto conn using
// the sendfile(2) syscall when conn is a *net.TCPConn, avoiding a userspace
// copy for the common case of serving a httpbody.Body in KindFile form.
// Falls back to io.Copy for non-TCP connections or if sendfile itself fails.
func SendFile(conn net.Conn, file *os.File, offset int64, count int64) (written int64, err error) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return io.Copy(conn, io.NewSectionReader(file, offset, count))
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return io.Copy(conn, io.NewSectionReader(file, offset, count))
	}

	srcFd := int(file.Fd())
	var totalWritten int64
	var sendfileErr error

	ctrlErr := rawConn.Write(func(dstFd uintptr) bool {
		currentOffset := offset
		remaining := count

		for remaining > 0 {
			// A single sendfile(2) call caps out well under the full
			// transfer for large files, so chunk at 1GB and loop.
			chunkSize := remaining
			if chunkSize > 1<<30 {
				chunkSize = 1 << 30
			}

			n, err := syscall.Sendfile(int(dstFd), srcFd, &currentOffset, int(chunkSize))
			if err != nil {
				if err == syscall.EAGAIN || err == syscall.EINTR {
					continue
				}
				sendfileErr = err
				return false
			}
			if n == 0 {
				break
			}

			totalWritten += int64(n)
			remaining -= int64(n)
		}

		return true
	})

	if ctrlErr != nil {
		return io.Copy(conn, io.NewSectionReader(file, offset, count))
	}

	if sendfileErr != nil {
		if totalWritten > 0 {
			remaining := count - totalWritten
			if remaining > 0 {
				n, err := io.Copy(conn, io.NewSectionReader(file, offset+totalWritten, remaining))
				totalWritten += n
				if err != nil {
					return totalWritten, err
				}
			}
			return totalWritten, nil
		}
		return io.Copy(conn, io.NewSectionReader(file, offset, count))
	}

	return totalWritten, nil
}

// SendFileAll sends an entire file via sendfile.
func SendFileAll(conn net.Conn, file *os.File) (written int64, err error) {
	stat, err := file.Stat()
	if err != nil {
		return 0, err
	}
	return SendFile(conn, file, 0, stat.Size())
}

// SendFileRange sends the inclusive byte range [start, end] of file via
// sendfile, the shape an HTTP Range request needs.
func SendFileRange(conn net.Conn, file *os.File, start, end int64) (written int64, err error) {
	if end < start {
		return 0, io.EOF
	}
	return SendFile(conn, file, start, end-start+1)
}

// CanUseSendFile reports whether conn is a TCP connection, the only
// transport the sendfile(2) fast path supports.
func CanUseSendFile(conn net.Conn) bool {
	_, ok := conn.(*net.TCPConn)
	return ok
}
