// Package logx is a small leveled wrapper over the standard logger. Lines look
// like "[2017.06.30 03:50:22] I message".
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var (
	currentLevel int32 = int32(LevelInfo)
	baseLogger         = log.New(os.Stderr, "", 0)
	now                = time.Now
	exit               = os.Exit
)

// SetLevel parses s ("debug", "info", "warn", "error"); unknown values are ignored.
func SetLevel(s string) bool {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return false
	}
	atomic.StoreInt32(&currentLevel, int32(l))
	return true
}

// Setup sends log output to filename (appending) or to stderr when filename is
// empty. The returned closer releases the file.
func Setup(filename string) (io.Closer, error) {
	if filename == "" {
		baseLogger.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	baseLogger.SetOutput(f)
	return f, nil
}

func logf(l Level, format string, args ...any) {
	if Level(atomic.LoadInt32(&currentLevel)) > l {
		return
	}
	tag := "I"
	switch l {
	case LevelDebug:
		tag = "D"
	case LevelWarn:
		tag = "W"
	case LevelError:
		tag = "E"
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	baseLogger.Printf("[%s] %s %s", now().Format("2006.01.02 15:04:05"), tag, msg)
}

// Debugf, Infof, Warnf and Errorf log at their level.
func Debugf(format string, a ...any) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...any)  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...any)  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...any) { logf(LevelError, format, a...) }

// Fatalf logs at error level and exits with status 1.
func Fatalf(format string, a ...any) {
	logf(LevelError, format, a...)
	exit(1)
}
