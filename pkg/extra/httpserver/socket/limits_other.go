//go:build !linux && !darwin

package socket

// RaiseFileLimit is a no-op on platforms without an rlimit concept.
func RaiseFileLimit(want uint64) (uint64, error) {
	return want, nil
}
