package hostio

import (
	"net"
	"sync"
	"syscall"

	"github.com/pkg/errors"
)

// SocketState is one state of the per-FD socket machine in spec.md §4.4.
type SocketState int

const (
	SocketCreated SocketState = iota
	SocketBound
	SocketListening
	SocketConnected
	SocketClosed
)

// ErrInvalidTransition is returned for any socket operation not legal in
// the handle's current state (spec.md P8).
var ErrInvalidTransition = errors.New("invalid socket state transition")

// SocketHandle is reference-counted so it can be reached from both the
// FD table and an accept-produced child FD (spec.md §5); each handle
// carries its own lock.
type SocketHandle struct {
	mu       sync.Mutex
	refCount int

	state    SocketState
	network  string // "tcp" or "udp"
	conn     net.Conn
	listener net.Listener
	laddr    string
}

// NewSocketHandle creates a socket in the Created state for network,
// which selects "tcp" vs "udp".
func NewSocketHandle(network string) *SocketHandle {
	return &SocketHandle{state: SocketCreated, network: network, refCount: 1}
}

func (h *SocketHandle) retain() {
	h.mu.Lock()
	h.refCount++
	h.mu.Unlock()
}

// Bind transitions Created→Bound.
func (h *SocketHandle) Bind(addr string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != SocketCreated {
		return ErrInvalidTransition
	}
	h.laddr = addr
	h.state = SocketBound
	return nil
}

// Listen transitions Bound→Listening (stream sockets only).
func (h *SocketHandle) Listen(backlog int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != SocketBound || h.network != "tcp" {
		return ErrInvalidTransition
	}
	l, err := net.Listen("tcp", h.laddr)
	if err != nil {
		return err
	}
	h.listener = l
	h.state = SocketListening
	return nil
}

// Accept blocks until a connection arrives, returning a new, already
// Connected handle for it (spec.md: "Accepts produce a new FD in state
// Connected").
func (h *SocketHandle) Accept() (*SocketHandle, error) {
	h.mu.Lock()
	if h.state != SocketListening {
		h.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	l := h.listener
	h.mu.Unlock()

	conn, err := l.Accept()
	if err != nil {
		return nil, err
	}
	return &SocketHandle{state: SocketConnected, network: h.network, conn: conn, refCount: 1}, nil
}

// Connect transitions Created→Connected for either stream or datagram
// sockets.
func (h *SocketHandle) Connect(addr string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != SocketCreated {
		return ErrInvalidTransition
	}
	conn, err := net.Dial(h.network, addr)
	if err != nil {
		return err
	}
	h.conn = conn
	h.state = SocketConnected
	return nil
}

// Recv reads up to len(buf) bytes; only legal once Connected.
func (h *SocketHandle) Recv(buf []byte) (int, error) {
	h.mu.Lock()
	conn := h.conn
	state := h.state
	h.mu.Unlock()
	if state != SocketConnected {
		return 0, ErrInvalidTransition
	}
	return conn.Read(buf)
}

// Send writes buf; only legal once Connected.
func (h *SocketHandle) Send(buf []byte) (int, error) {
	h.mu.Lock()
	conn := h.conn
	state := h.state
	h.mu.Unlock()
	if state != SocketConnected {
		return 0, ErrInvalidTransition
	}
	return conn.Write(buf)
}

// ShutdownMode selects which half of a connection Shutdown closes.
type ShutdownMode int

const (
	ShutdownRead ShutdownMode = iota
	ShutdownWrite
	ShutdownBoth
)

// Shutdown half-closes a connected socket by issuing a real shutdown(2)
// (or WinSock's equivalent) against the connection's raw descriptor via
// rawShutdown, which has a platform-specific implementation in
// socket_posix.go/socket_windows.go. Falls back to a full Close for
// connection kinds with no syscall-level descriptor to reach (e.g. an
// in-memory net.Conn used in tests).
func (h *SocketHandle) Shutdown(mode ShutdownMode) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != SocketConnected {
		return ErrInvalidTransition
	}
	sc, ok := h.conn.(syscallConner)
	if !ok {
		return h.conn.Close()
	}
	if err := rawShutdown(sc, int(mode)); err != nil {
		return err
	}
	if mode == ShutdownBoth {
		return h.conn.Close()
	}
	return nil
}

// syscallConner is satisfied by *net.TCPConn/*net.UDPConn: any net.Conn
// whose underlying fd rawShutdown can reach directly.
type syscallConner interface {
	SyscallConn() (syscall.RawConn, error)
}

// Close transitions any state to Closed.
func (h *SocketHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == SocketClosed {
		return nil
	}
	h.refCount--
	prevState := h.state
	h.state = SocketClosed
	if h.refCount > 0 {
		return nil
	}
	if h.listener != nil {
		_ = h.listener.Close()
	}
	if h.conn != nil && prevState == SocketConnected {
		return h.conn.Close()
	}
	return nil
}
