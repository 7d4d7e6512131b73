package log

import (
	"bytes"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Panic logs a recovered value with the stack of the panicking goroutine,
// starting at the frame that called panic.
func Panic(v any) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		e.Dict("panic", zerolog.Dict().Any("content", v).Bytes("stack_traces", panicStack(debug.Stack())))
	}
}

func panicStack(stack []byte) []byte {
	i := bytes.Index(stack, []byte("\npanic("))
	if i < 0 {
		return stack
	}
	rest := stack[i+1:]
	// panic( line and its file:line.
	for range 2 {
		j := bytes.IndexByte(rest, '\n')
		if j < 0 {
			return stack
		}
		rest = rest[j+1:]
	}
	return rest
}
