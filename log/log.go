package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"

	"github.com/xeptore/spotfolio/config"
	"github.com/xeptore/spotfolio/constant"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// New returns a trace-level logger writing in the given config.LogFormat*
// format. Unknown formats fall back to pretty output.
func New(format string, w io.Writer) zerolog.Logger {
	if format == config.LogFormatPacked {
		return NewPacked(w)
	}
	return NewPretty(w)
}

// NewPretty writes indented, colored JSON lines for terminals.
func NewPretty(w io.Writer) zerolog.Logger {
	return base(prettyWriter(w.Write))
}

// NewPacked writes one JSON document per line.
func NewPacked(w io.Writer) zerolog.Logger {
	return base(w)
}

// Module derives a logger tagged with the component that owns it.
func Module(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("module", name).Logger()
}

func base(w io.Writer) zerolog.Logger {
	app := zerolog.
		Dict().
		Str("name", "spotfolio").
		Str("version", constant.Version).
		Str("compilation_time", constant.CompileTime.Format(time.RFC3339))
	return zerolog.New(w).With().Dict("app", app).Timestamp().Logger().Level(zerolog.TraceLevel)
}

type prettyWriter func([]byte) (int, error)

func (write prettyWriter) Write(line []byte) (int, error) {
	if n, err := write(pretty.Color(pretty.Pretty(line), nil)); nil != err {
		return n, err
	}
	return len(line), nil
}
