package log

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
)

// Flaw expands err into structured fields when it carries a *flaw.Flaw and
// falls back to the plain error otherwise. Use with zerolog.Event.Func.
func Flaw(err error) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		f := new(flaw.Flaw)
		if !errors.As(err, &f) {
			e.Err(err).Str("error_type", fmt.Sprintf("%T", err))
			return
		}
		e.
			Dict("error", errorDict(f.Inner, f.InnerType, f.InnerSyntaxRepr)).
			Array("records", flawRecords(f)).
			Array("joined_errors", joinedErrors(f)).
			Array("stack_traces", stackTraces(f))
	}
}

func errorDict(message, typeName, syntaxRepr string) *zerolog.Event {
	return zerolog.
		Dict().
		Str("message", message).
		Str("type_name", typeName).
		Str("syntax_representation", syntaxRepr)
}

func flawRecords(f *flaw.Flaw) *zerolog.Array {
	arr := zerolog.Arr()
	for _, r := range f.Records {
		d := zerolog.Dict().Str("function", r.Function)
		b, err := json.MarshalWithOption(r.Payload, json.UnorderedMap(), json.DisableNormalizeUTF8(), json.DisableHTMLEscape())
		if nil != err {
			d.Dict("payload", zerolog.Dict().Str("error", err.Error()).Str("raw", fmt.Sprintf("%#+v", r.Payload)))
		} else {
			d.RawJSON("payload", b)
		}
		arr.Dict(d)
	}
	return arr
}

func joinedErrors(f *flaw.Flaw) *zerolog.Array {
	arr := zerolog.Arr()
	for _, j := range f.JoinedErrors {
		d := zerolog.Dict().Dict("error", errorDict(j.Message, j.TypeName, j.SyntaxRepr))
		if st := j.CallerStackTrace; nil != st {
			d.Dict("caller_stack_trace", frame(st.File, st.Line, st.Function))
		} else {
			d.Stringer("caller_stack_trace", nil)
		}
		arr.Dict(d)
	}
	return arr
}

func stackTraces(f *flaw.Flaw) *zerolog.Array {
	arr := zerolog.Arr()
	for _, st := range f.StackTrace {
		arr.Dict(frame(st.File, st.Line, st.Function))
	}
	return arr
}

func frame(file string, line int, function string) *zerolog.Event {
	return zerolog.Dict().Str("location", fmt.Sprintf("%s:%d", file, line)).Str("function", function)
}
