package observability

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. pretty switches to the human console
// writer for local development.
func NewLogger(level string, pretty bool) *zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	logger := zerolog.New(os.Stdout)
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	logger = logger.Level(lvl).With().Timestamp().Logger()
	return &logger
}
