//go:build !linux && !darwin
// +build !linux,!darwin

package socket

// applyPlatformOptions is a no-op: this platform has no tunables Apply
// knows how to set beyond the cross-platform options in tuning.go.
func applyPlatformOptions(fd int, cfg *Config) {}

// applyListenerOptions is a no-op for the same reason.
func applyListenerOptions(fd int, cfg *Config) error {
	return nil
}

// SetQuickAck is a no-op: this platform has no TCP_QUICKACK equivalent.
func SetQuickAck(fd int) error {
	return nil
}
