package log

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the global zerolog.Logger instance.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Debug starts a new log event with debug level.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info starts a new log event with info level.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn starts a new log event with warn level.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error starts a new log event with error level.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal starts a new log event with fatal level.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
