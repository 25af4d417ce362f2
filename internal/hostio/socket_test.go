package hostio

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSocket_ServerStateMachine exercises P8: Created -> Bound ->
// Listening -> Accept produces a Connected child.
func TestSocket_ServerStateMachine(t *testing.T) {
	h := NewSocketHandle("tcp")
	require.Equal(t, SocketCreated, h.state)

	require.NoError(t, h.Bind("127.0.0.1:0"))
	require.Equal(t, SocketBound, h.state)

	require.NoError(t, h.Listen(1))
	require.Equal(t, SocketListening, h.state)

	addr := h.listener.Addr().String()
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		_ = conn.Close()
	}()

	child, err := h.Accept()
	require.NoError(t, err)
	require.Equal(t, SocketConnected, child.state)
	<-done

	require.NoError(t, h.Close())
	require.Equal(t, SocketClosed, h.state)
}

// TestSocket_InvalidTransitions exercises P8's rejection side: calling
// an operation out of sequence returns ErrInvalidTransition rather than
// silently succeeding.
func TestSocket_InvalidTransitions(t *testing.T) {
	h := NewSocketHandle("tcp")

	require.ErrorIs(t, h.Listen(1), ErrInvalidTransition)

	_, err := h.Recv(make([]byte, 1))
	require.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, h.Bind("127.0.0.1:0"))
	require.ErrorIs(t, h.Bind("127.0.0.1:0"), ErrInvalidTransition)

	require.NoError(t, h.Close())
	require.ErrorIs(t, h.Listen(1), ErrInvalidTransition)
}

func TestSocket_CloseIsIdempotent(t *testing.T) {
	h := NewSocketHandle("udp")
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}

// TestSocket_ShutdownWriteThenRead exercises Shutdown's rawShutdown path
// against a real TCP connection: shutting down the write half lets the
// peer observe EOF while the socket itself stays Connected.
func TestSocket_ShutdownWriteThenRead(t *testing.T) {
	server := NewSocketHandle("tcp")
	require.NoError(t, server.Bind("127.0.0.1:0"))
	require.NoError(t, server.Listen(1))
	addr := server.listener.Addr().String()

	clientDone := make(chan error, 1)
	go func() {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			clientDone <- err
			return
		}
		defer conn.Close()
		buf := make([]byte, 1)
		_, err = conn.Read(buf) // expect EOF once the peer shuts down its write half
		clientDone <- err
	}()

	child, err := server.Accept()
	require.NoError(t, err)
	require.NoError(t, child.Shutdown(ShutdownWrite))
	require.Equal(t, SocketConnected, child.state) // half-close doesn't transition to Closed

	require.Error(t, <-clientDone) // io.EOF, wrapped or not
	require.NoError(t, server.Close())
}

// TestSocket_ShutdownBothClosesConnection exercises the ShutdownBoth
// case, which additionally closes the connection (unlike a half-close).
func TestSocket_ShutdownBothClosesConnection(t *testing.T) {
	server := NewSocketHandle("tcp")
	require.NoError(t, server.Bind("127.0.0.1:0"))
	require.NoError(t, server.Listen(1))
	addr := server.listener.Addr().String()

	clientDone := make(chan error, 1)
	go func() {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			clientDone <- err
			return
		}
		defer conn.Close()
		buf := make([]byte, 1)
		_, err = conn.Read(buf)
		clientDone <- err
	}()

	child, err := server.Accept()
	require.NoError(t, err)
	require.NoError(t, child.Shutdown(ShutdownBoth))

	require.Error(t, <-clientDone)
	require.NoError(t, server.Close())
}

// TestSocket_ShutdownReadThenWrite exercises the ShutdownRead case: the
// local read half is closed but writes to the peer still succeed.
func TestSocket_ShutdownReadThenWrite(t *testing.T) {
	server := NewSocketHandle("tcp")
	require.NoError(t, server.Bind("127.0.0.1:0"))
	require.NoError(t, server.Listen(1))
	addr := server.listener.Addr().String()

	clientDone := make(chan error, 1)
	go func() {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			clientDone <- err
			return
		}
		defer conn.Close()
		_, err = conn.Write([]byte("x"))
		clientDone <- err
	}()

	child, err := server.Accept()
	require.NoError(t, err)
	require.NoError(t, child.Shutdown(ShutdownRead))
	require.Equal(t, SocketConnected, child.state)

	require.NoError(t, <-clientDone) // the peer's write still succeeds
	require.NoError(t, server.Close())
}

func TestFDTable_BadFDOperations(t *testing.T) {
	tbl := NewFDTable()

	_, err := tbl.Get(7)
	require.ErrorIs(t, err, ErrBadFD)

	require.ErrorIs(t, tbl.Close(7), ErrBadFD)

	sock := NewSocketHandle("tcp")
	fd := tbl.Insert(&Descriptor{Kind: DescriptorSocket, Socket: sock})
	require.Equal(t, 3, fd)

	_, err = tbl.File(fd)
	require.ErrorIs(t, err, ErrNotAFile)

	got, err := tbl.SocketOf(fd)
	require.NoError(t, err)
	require.Same(t, sock, got)

	require.NoError(t, tbl.Close(fd))
	_, err = tbl.Get(fd)
	require.ErrorIs(t, err, ErrBadFD)
}
