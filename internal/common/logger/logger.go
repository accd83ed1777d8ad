package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a component-tagged logger. APP_ENV=dev switches to the
// human-readable console writer; everything else emits JSON lines.
func New(component string) zerolog.Logger {
	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "dev" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("component", component).Logger()
}
