package host

import (
	"bufio"
	"os"

	"go.uber.org/zap"

	"github.com/wasmforge/wasmforge/internal/hostio"
)

var stdinReader = bufio.NewReader(os.Stdin)

// print logs the message at Info tagged with pid (spec.md §4.4 #17),
// through the Generic's zap logger rather than fmt.Println. It does not
// write to host stdout: the output lands wherever that logger writes (the
// CLI's production logger writes to stderr; a nil logger discards it).
func (g *Generic) print(proc *hostio.Process, args []Arg) Result {
	if len(args) < 1 {
		return ErrorResult("print: expected a message")
	}
	msg := args[0].Str
	if args[0].Kind == ArgBuffer {
		msg = string(args[0].Buf)
	}
	g.log.Info(msg, zap.String("pid", proc.Pid))
	return Success(Number(int64(len(msg))))
}

// input reads a line from host stdin. Per spec.md's table this syscall
// is "not required"; it's implemented here since the line-reading cost
// is negligible and a guest shell built atop this surface needs it.
func (g *Generic) input(proc *hostio.Process, args []Arg) Result {
	line, err := stdinReader.ReadString('\n')
	if err != nil && line == "" {
		return ErrorResult(ReasonEOF)
	}
	return Success(String(line))
}
