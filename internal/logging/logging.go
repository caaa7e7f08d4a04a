package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var (
	Logger  zerolog.Logger
	logFile *os.File
)

// timestampHook adds timestamp at the end of each log event
type timestampHook struct{}

func (h timestampHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	e.Time("ts", time.Now())
}

// Init initializes the logging system with zerolog.
//
// Log lines go to ~/.local/state/gridswitch/gridswitch.log; when debug
// is true they are mirrored to stderr and the level drops to Debug.
func Init(debug bool) error {
	logDir := filepath.Join(os.Getenv("HOME"), ".local", "state", "gridswitch")
	os.MkdirAll(logDir, 0755)

	logPath := filepath.Join(logDir, "gridswitch.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	logFile = f

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Configure field names
	zerolog.MessageFieldName = "msg"

	var out io.Writer = logFile
	if debug {
		out = zerolog.MultiLevelWriter(logFile, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Create logger with hook that adds timestamp last
	Logger = zerolog.New(out).Hook(timestampHook{})

	return nil
}

// Close closes the log file
func Close() {
	if logFile != nil {
		logFile.Close()
	}
}

// Debug returns a debug level event
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info returns an info level event
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn returns a warn level event
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error returns an error level event
func Error() *zerolog.Event {
	return Logger.Error()
}
