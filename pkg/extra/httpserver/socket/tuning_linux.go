//go:build linux
// +build linux

package socket

import (
	"syscall"
)

// Socket option constants missing from older Go syscall packages.
const (
	tcpQuickAck     = 12
	tcpDeferAccept  = 9
	tcpFastOpen     = 23
	tcpUserTimeout  = 18
	tcpKeepIdle     = 4
	tcpKeepInterval = 5
	tcpKeepCount    = 6
)

// applyPlatformOptions applies Linux-specific per-connection options.
func applyPlatformOptions(fd int, cfg *Config) {
	if cfg.QuickAck {
		// TCP_QUICKACK is not sticky: the kernel clears it after the next
		// ACK, so this is a best-effort nudge, not a lasting switch.
		_ = syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpQuickAck, 1)
	}

	// Reap half-open connections faster than the kernel default.
	_ = syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpUserTimeout, 10000)

	if cfg.KeepAlive {
		_ = syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpKeepIdle, 60)
		_ = syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpKeepInterval, 10)
		_ = syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpKeepCount, 3)
	}
}

// applyListenerOptions applies Linux-specific listener options.
func applyListenerOptions(fd int, cfg *Config) error {
	var lastErr error

	if cfg.DeferAccept {
		// Don't wake the accept loop until request bytes are actually
		// pending; incidentally blunts empty-connection SYN floods.
		if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpDeferAccept, 5); err != nil {
			lastErr = err
		}
	}

	if cfg.FastOpen {
		if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpFastOpen, 256); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// SetQuickAck re-asserts TCP_QUICKACK on fd. The kernel clears the flag on
// its own next ACK, and QuickAck in Config only sets it once at accept
// time. Nothing in this module calls SetQuickAck.
func SetQuickAck(fd int) error {
	return syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpQuickAck, 1)
}
