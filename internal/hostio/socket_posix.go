//go:build !windows

package hostio

import "golang.org/x/sys/unix"

// rawShutdown issues a real shutdown(2) against sc's underlying file
// descriptor. how is one of ShutdownRead/ShutdownWrite/ShutdownBoth,
// whose ordinals (0/1/2) match unix.SHUT_RD/SHUT_WR/SHUT_RDWR exactly.
func rawShutdown(sc syscallConner, how int) error {
	rc, err := sc.SyscallConn()
	if err != nil {
		return err
	}
	var shutErr error
	if err := rc.Control(func(fd uintptr) {
		shutErr = unix.Shutdown(int(fd), how)
	}); err != nil {
		return err
	}
	return shutErr
}
