package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "INFO"
	}
}

var (
	current atomic.Int32
	logger  = stdlog.New(os.Stderr, "", stdlog.LstdFlags)
)

func init() { current.Store(int32(Info)) }

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "err", "error":
		return Error
	default:
		return Info
	}
}

func SetLevel(l Level) { current.Store(int32(l)) }

func CurrentLevel() Level { return Level(current.Load()) }

// SetOutput redirects all log lines, mainly for tests.
func SetOutput(w io.Writer) { logger.SetOutput(w) }

func logf(l Level, format string, v ...any) {
	if CurrentLevel() > l {
		return
	}
	logger.Printf("["+l.String()+"] "+format, v...)
}

func Debugf(format string, v ...any) { logf(Debug, format, v...) }
func Infof(format string, v ...any)  { logf(Info, format, v...) }
func Warnf(format string, v ...any)  { logf(Warn, format, v...) }
func Errorf(format string, v ...any) { logf(Error, format, v...) }

// InitFromEnvFallback sets the level from FOCUS_LOG_LEVEL, falling back to level.
func InitFromEnvFallback(level string) {
	if env := os.Getenv("FOCUS_LOG_LEVEL"); env != "" {
		level = env
	}
	SetLevel(ParseLevel(level))
}
