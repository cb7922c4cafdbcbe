package bulbaux

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

// Level is a logging verbosity level.
type Level int

// The levels that can be passed to SetLogLevel.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelNotice
	LevelWarning
	LevelError
)

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var leveledBackend logging.LeveledBackend

var logger = logging.MustGetLogger("glbulb")

// SetLogSink overrides the output of the module logger. The verbosity is reset to Notice.
func SetLogSink(sink io.Writer) {
	backend := logging.NewLogBackend(sink, "", 0)
	backendWithFormatter := logging.NewBackendFormatter(backend, format)
	leveledBackend = logging.AddModuleLevel(backendWithFormatter)
	leveledBackend.SetLevel(logging.NOTICE, "")
	logging.SetBackend(leveledBackend)
}

// SetLogLevel sets logger verbosity.
func SetLogLevel(level Level) {
	var loggerLevel logging.Level
	switch level {
	case LevelDebug:
		loggerLevel = logging.DEBUG
	case LevelInfo:
		loggerLevel = logging.INFO
	case LevelNotice:
		loggerLevel = logging.NOTICE
	case LevelWarning:
		loggerLevel = logging.WARNING
	default:
		loggerLevel = logging.ERROR
	}
	leveledBackend.SetLevel(loggerLevel, "")
}

// Logger returns the module logger shared by the application packages.
func Logger() *logging.Logger {
	return logger
}

func init() {
	SetLogSink(os.Stderr)
}
