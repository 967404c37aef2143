package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Level is a textual log level as accepted by --log-level.
type Level string

const (
	DEBUG  Level = "debug"
	INFO   Level = "info"
	WARN   Level = "warn"
	ERROR  Level = "error"
	SILENT Level = "silent"
)

// Format selects the output encoding.
type Format string

const (
	JSON    Format = "json"
	CONSOLE Format = "console"
)

// ParseLevel maps a level name to zerolog's level.
func ParseLevel(lvl Level) (zerolog.Level, error) {
	switch Level(strings.ToLower(string(lvl))) {
	case DEBUG:
		return zerolog.DebugLevel, nil
	case INFO, "":
		return zerolog.InfoLevel, nil
	case WARN:
		return zerolog.WarnLevel, nil
	case ERROR:
		return zerolog.ErrorLevel, nil
	case SILENT:
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", lvl)
	}
}

// New builds the process logger. Console output drops colors when w is
// not a terminal.
func New(w io.Writer, lvl Level, format Format) (zerolog.Logger, error) {
	level, err := ParseLevel(lvl)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := w
	if format == CONSOLE {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(w),
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

type fder interface {
	Fd() uintptr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
