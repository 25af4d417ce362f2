package hostio

import "golang.org/x/sys/windows"

// rawShutdown is socket_posix.go's counterpart for WinSock, whose
// SD_RECEIVE/SD_SEND/SD_BOTH constants share the same 0/1/2 ordinals as
// ShutdownRead/ShutdownWrite/ShutdownBoth.
func rawShutdown(sc syscallConner, how int) error {
	rc, err := sc.SyscallConn()
	if err != nil {
		return err
	}
	var shutErr error
	if err := rc.Control(func(fd uintptr) {
		shutErr = windows.Shutdown(windows.Handle(fd), how)
	}); err != nil {
		return err
	}
	return shutErr
}
