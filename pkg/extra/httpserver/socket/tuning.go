// Package socket applies cross-platform TCP tuning to the listener and
// accepted connections the server loop hands it, and provides a sendfile(2)
// fast path for serving on-disk Body payloads. Platform-specific syscalls
// live in tuning_linux.go/tuning_darwin.go/tuning_other.go and
// sendfile_linux.go/sendfile.go behind build tags.
package socket

import (
	"net"
	"syscall"
)

// Config is the set of socket options applied to a connection or listener.
// Zero values mean "leave the system default alone".
type Config struct {
	// NoDelay disables Nagle's algorithm (TCP_NODELAY). HTTP/1.1 request/
	// response traffic is latency-sensitive and small, so this is on by
	// default in every profile below.
	NoDelay bool

	// RecvBuffer/SendBuffer set SO_RCVBUF/SO_SNDBUF in bytes. 0 leaves the
	// kernel default in place.
	RecvBuffer int
	SendBuffer int

	// QuickAck requests immediate ACKs instead of delayed ACKs (Linux only).
	QuickAck bool

	// DeferAccept avoids waking the accept loop until request bytes have
	// actually arrived (Linux only; mitigates empty-connection SYN floods).
	DeferAccept bool

	// FastOpen enables TCP Fast Open on the listener (Linux 3.7+/Darwin 10.11+).
	FastOpen bool

	// KeepAlive enables SO_KEEPALIVE for long-lived keep-alive connections.
	KeepAlive bool
}

// DefaultConfig balances latency and throughput. The server applies
// ProfileForBufferSizes, which starts from this profile and substitutes the
// server's read/write buffer sizes; Apply and ApplyListener fall back to it
// when given a nil Config.
func DefaultConfig() *Config {
	return &Config{
		NoDelay:     true,
		RecvBuffer:  256 * 1024,
		SendBuffer:  256 * 1024,
		QuickAck:    true,
		DeferAccept: true,
		FastOpen:    true,
		KeepAlive:   true,
	}
}

// HighThroughputConfig favors large buffers and delayed ACKs for bulk
// transfer (e.g. a server that serves mostly large File bodies).
func HighThroughputConfig() *Config {
	return &Config{
		NoDelay:     true,
		RecvBuffer:  1024 * 1024,
		SendBuffer:  1024 * 1024,
		QuickAck:    false,
		DeferAccept: true,
		FastOpen:    true,
		KeepAlive:   true,
	}
}

// LowLatencyConfig favors small buffers and immediate ACKs for short
// request/response exchanges.
func LowLatencyConfig() *Config {
	return &Config{
		NoDelay:     true,
		RecvBuffer:  128 * 1024,
		SendBuffer:  128 * 1024,
		QuickAck:    true,
		DeferAccept: false,
		FastOpen:    true,
		KeepAlive:   true,
	}
}

// ProfileForBufferSizes picks DefaultConfig, but substitutes the server's
// configured read/write buffer sizes when the caller has set either away
// from the httpserver.Config zero value, so a server tuned for large
// buffers elsewhere doesn't fight itself with a mismatched socket profile.
func ProfileForBufferSizes(readBufferSize, writeBufferSize int) *Config {
	cfg := DefaultConfig()
	if readBufferSize > 0 {
		cfg.RecvBuffer = readBufferSize
	}
	if writeBufferSize > 0 {
		cfg.SendBuffer = writeBufferSize
	}
	return cfg
}

// Apply sets cfg's options on an already-accepted connection. Call this
// immediately after Accept, before the first read. Non-TCP connections are
// left untouched (not an error — this lets callers pass arbitrary net.Conn
// implementations, such as the in-process test harness, through the same
// code path).
func Apply(conn net.Conn, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return err
	}

	var lastErr error
	err = rawConn.Control(func(fd uintptr) {
		if cfg.NoDelay {
			if err := syscall.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1); err != nil {
				lastErr = err
				return
			}
		}
		if cfg.RecvBuffer > 0 {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_RCVBUF, cfg.RecvBuffer)
		}
		if cfg.SendBuffer > 0 {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_SNDBUF, cfg.SendBuffer)
		}
		if cfg.KeepAlive {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, 1)
		}
		applyPlatformOptions(int(fd), cfg)
	})
	if err != nil {
		return err
	}
	return lastErr
}

// ApplyListener sets listener-level options (TCP_DEFER_ACCEPT, TCP_FASTOPEN)
// that must be configured before Accept is ever called.
func ApplyListener(listener net.Listener, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tcpListener, ok := listener.(*net.TCPListener)
	if !ok {
		return nil
	}

	file, err := tcpListener.File()
	if err != nil {
		return err
	}
	defer file.Close()

	return applyListenerOptions(int(file.Fd()), cfg)
}
