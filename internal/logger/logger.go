package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds the process logger from LOG_LEVEL and LOG_FORMAT.
//   - level: trace, debug, info, warn, error, fatal or panic (info on parse failure)
//   - format: "pretty" for console output, anything else for JSON lines
//
// The logger also replaces zerolog's global one, so packages logging via
// zerolog/log share the same sink.
func Setup(level, format string) zerolog.Logger {
	var writer io.Writer = os.Stdout
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.DurationFieldUnit = time.Millisecond

	ctx := zerolog.New(writer).With().Timestamp().Str("service", "quizgen")
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()

	log.Logger = logger
	return logger
}
