//go:build linux || darwin

package socket

import "golang.org/x/sys/unix"

// RaiseFileLimit attempts to raise the process's open-file soft limit to
// at least want (capped at the hard limit), returning the limit actually in
// effect afterward. The server does not call it; a process whose
// connection count exceeds the shell's default ulimit sees Accept fail
// with "too many open files" unless the limit is raised.
func RaiseFileLimit(want uint64) (uint64, error) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return 0, err
	}
	if rl.Cur >= want {
		return rl.Cur, nil
	}
	target := want
	if rl.Max > 0 && target > rl.Max {
		target = rl.Max
	}
	rl.Cur = target
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return rl.Cur, err
	}
	return target, nil
}
