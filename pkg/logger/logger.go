package logx

import (
	"io"
	"os"

	"github.com/ia-assistant/server/internal/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
	// Level is a zerolog level name; empty keeps the environment default.
	Level string
	// Output overrides the destination, mostly for tests.
	Output io.Writer
}

func safe(opts ...LoggerOpts) *LoggerOpts {
	if len(opts) == 0 {
		return DefaultLoggerOpts
	}
	return &opts[0]
}

func Init(opts ...LoggerOpts) {
	o := safe(opts...)

	out := o.Output
	if out == nil {
		out = os.Stderr
	}

	if o.Environment.IsProduction() {
		log.Logger = zerolog.New(out).With().Timestamp().Logger().Level(resolveLevel(o.Level, zerolog.InfoLevel))
		return
	}

	if o.Output == nil {
		out = zerolog.NewConsoleWriter()
	}
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger().Level(resolveLevel(o.Level, zerolog.DebugLevel))
}

func resolveLevel(name string, fallback zerolog.Level) zerolog.Level {
	if name == "" {
		return fallback
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return fallback
	}
	return lvl
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
