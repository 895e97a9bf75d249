// Package logger is the minimal leveled logger shared by the document
// services. It writes single-line records to stdout; level is set once at
// startup via Init.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

var (
	current atomic.Int32

	outMu sync.Mutex
	out   io.Writer = os.Stdout

	exit = os.Exit
)

func init() { current.Store(int32(LevelInfo)) }

// ParseLevel maps a level name to its Level; unknown names map to Info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Init sets the global log level from its textual name.
func Init(level string) {
	current.Store(int32(ParseLevel(level)))
}

// SetOutput redirects log output; tests use this to capture records.
func SetOutput(w io.Writer) {
	outMu.Lock()
	out = w
	outMu.Unlock()
}

func write(l Level, format string, v ...interface{}) {
	if l < Level(current.Load()) {
		return
	}
	line := fmt.Sprintf("%s [%s] %s\n", time.Now().Format(time.RFC3339), levelNames[l], fmt.Sprintf(format, v...))
	outMu.Lock()
	_, _ = io.WriteString(out, line)
	outMu.Unlock()
}

func Debugf(format string, v ...interface{}) { write(LevelDebug, format, v...) }
func Infof(format string, v ...interface{})  { write(LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})  { write(LevelWarn, format, v...) }
func Errorf(format string, v ...interface{}) { write(LevelError, format, v...) }

// Fatalf logs at fatal level and terminates the process.
func Fatalf(format string, v ...interface{}) {
	write(LevelFatal, format, v...)
	exit(1)
}

func Debug(msg string) { Debugf("%s", msg) }
func Info(msg string)  { Infof("%s", msg) }
func Warn(msg string)  { Warnf("%s", msg) }
func Error(msg string) { Errorf("%s", msg) }
