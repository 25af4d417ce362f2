package host

import (
	"fmt"
	"net"

	"github.com/wasmforge/wasmforge/internal/hostio"
)

func (g *Generic) sockOpen(proc *hostio.Process, args []Arg) Result {
	network := "tcp"
	if len(args) > 1 && args[1].Kind == ArgNumber && args[1].Num == 1 {
		network = "udp"
	}
	h := hostio.NewSocketHandle(network)
	fd := proc.FDs.Insert(&hostio.Descriptor{Kind: hostio.DescriptorSocket, Socket: h})
	return Success(Number(int64(fd)))
}

func (g *Generic) sockBind(proc *hostio.Process, args []Arg) Result {
	h, res := g.socketArg(proc, args, 0)
	if res != nil {
		return *res
	}
	if len(args) < 3 || args[1].Kind != ArgString || args[2].Kind != ArgNumber {
		return ErrorResult("sock_bind: expected (fd, ip, port)")
	}
	addr := fmt.Sprintf("%s:%d", args[1].Str, args[2].Num)
	if err := h.Bind(addr); err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(0))
}

func (g *Generic) sockListen(proc *hostio.Process, args []Arg) Result {
	h, res := g.socketArg(proc, args, 0)
	if res != nil {
		return *res
	}
	backlog := int64(1)
	if len(args) > 1 && args[1].Kind == ArgNumber {
		backlog = args[1].Num
	}
	if err := h.Listen(int(backlog)); err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(0))
}

func (g *Generic) sockAccept(proc *hostio.Process, args []Arg) Result {
	h, res := g.socketArg(proc, args, 0)
	if res != nil {
		return *res
	}
	child, err := h.Accept()
	if err != nil {
		return ErrorResult("%s", err)
	}
	fd := proc.FDs.Insert(&hostio.Descriptor{Kind: hostio.DescriptorSocket, Socket: child})
	return Success(Number(int64(fd)))
}

func (g *Generic) sockConnect(proc *hostio.Process, args []Arg) Result {
	h, res := g.socketArg(proc, args, 0)
	if res != nil {
		return *res
	}
	if len(args) < 3 || args[1].Kind != ArgString || args[2].Kind != ArgNumber {
		return ErrorResult("sock_connect: expected (fd, ip, port)")
	}
	addr := fmt.Sprintf("%s:%d", args[1].Str, args[2].Num)
	if err := h.Connect(addr); err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(0))
}

func (g *Generic) sockRecv(proc *hostio.Process, args []Arg) Result {
	h, res := g.socketArg(proc, args, 0)
	if res != nil {
		return *res
	}
	n := int64(4096)
	if len(args) > 1 && args[1].Kind == ArgNumber {
		n = args[1].Num
	}
	buf := make([]byte, n)
	read, err := h.Recv(buf)
	if err != nil {
		return ErrorResult("%s", mapSocketErr(err))
	}
	return Success(Buffer(buf[:read]))
}

func (g *Generic) sockSend(proc *hostio.Process, args []Arg) Result {
	h, res := g.socketArg(proc, args, 0)
	if res != nil {
		return *res
	}
	if len(args) < 2 || args[1].Kind != ArgBuffer {
		return ErrorResult("sock_send: expected a buffer")
	}
	n, err := h.Send(args[1].Buf)
	if err != nil {
		return ErrorResult("%s", mapSocketErr(err))
	}
	return Success(Number(int64(n)))
}

func (g *Generic) sockShutdown(proc *hostio.Process, args []Arg) Result {
	h, res := g.socketArg(proc, args, 0)
	if res != nil {
		return *res
	}
	mode := hostio.ShutdownBoth
	if len(args) > 1 && args[1].Kind == ArgNumber {
		switch args[1].Num {
		case 0:
			mode = hostio.ShutdownRead
		case 1:
			mode = hostio.ShutdownWrite
		}
	}
	if err := h.Shutdown(mode); err != nil {
		return ErrorResult("%s", err)
	}
	return Success(Number(0))
}

func (g *Generic) getaddrinfo(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 || args[0].Kind != ArgString {
		return ErrorResult("getaddrinfo: expected a hostname")
	}
	host, _, err := net.SplitHostPort(args[0].Str)
	if err != nil {
		host = args[0].Str
	}
	addrs, err := net.LookupHost(host)
	if err != nil {
		return ErrorResult("%s", err)
	}
	joined := ""
	for i, a := range addrs {
		if i > 0 {
			joined += ","
		}
		joined += a
	}
	return Success(String(joined))
}

func (g *Generic) socketArg(proc *hostio.Process, args []Arg, idx int) (*hostio.SocketHandle, *Result) {
	if len(args) <= idx || args[idx].Kind != ArgNumber {
		r := ErrorResult("expected an fd")
		return nil, &r
	}
	h, err := proc.FDs.SocketOf(int(args[idx].Num))
	if err != nil {
		r := ErrorResult("%s", mapSocketErr(err))
		return nil, &r
	}
	return h, nil
}

func mapSocketErr(err error) string {
	if err == hostio.ErrBadFD {
		return ReasonBadFD
	}
	if err == hostio.ErrNotASocket {
		return ReasonNotASocket
	}
	if err == hostio.ErrInvalidTransition {
		return ReasonNotConnected
	}
	return err.Error()
}
