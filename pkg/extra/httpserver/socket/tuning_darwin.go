//go:build darwin
// +build darwin

package socket

import (
	"syscall"
)

// Darwin-specific socket option constants.
const (
	tcpFastOpen  = 0x105
	tcpKeepAlive = 0x10
	soNoSigPipe  = 0x1022
)

// applyPlatformOptions applies Darwin-specific per-connection options.
func applyPlatformOptions(fd int, cfg *Config) {
	// Without this, writing to a peer that already closed its side raises
	// SIGPIPE instead of returning EPIPE (Linux gets the same effect via
	// MSG_NOSIGNAL on send, which isn't available here).
	_ = syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, soNoSigPipe, 1)

	if cfg.KeepAlive {
		_ = syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpKeepAlive, 60)
	}
}

// applyListenerOptions applies Darwin-specific listener options. macOS has
// no TCP_DEFER_ACCEPT equivalent, so cfg.DeferAccept is ignored here.
func applyListenerOptions(fd int, cfg *Config) error {
	if cfg.FastOpen {
		if err := syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, tcpFastOpen, 256); err != nil {
			return err
		}
	}
	return nil
}

// SetQuickAck is a no-op on Darwin: there's no TCP_QUICKACK equivalent. It
// keeps the same function available on every platform.
func SetQuickAck(fd int) error {
	return nil
}
