// Package logger provides the leveled console logging used by the upload
// and command surfaces.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const dateFormat = "2006-01-02 15:04:05"

const (
	nocolor = "0"
	red     = "31"
	yellow  = "33"
	gray    = "38;5;251"
	cyan    = "1;36"
)

// Logger is a printf-style leveled logger. Fatal logs and then terminates
// the process.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)

	SetLevel(level Level)
	Level() Level
}

// TextLogger writes colored, timestamped lines to a writer.
type TextLogger struct {
	mu     sync.Mutex
	level  Level
	colors bool
	writer io.Writer
	exitFn func(code int)
}

// NewTextLogger returns a TextLogger writing to stderr at INFO, with colors
// when stderr is a terminal.
func NewTextLogger() *TextLogger {
	return &TextLogger{
		level:  INFO,
		colors: term.IsTerminal(int(os.Stderr.Fd())),
		writer: os.Stderr,
		exitFn: os.Exit,
	}
}

// NewTextLoggerTo returns a TextLogger writing plain lines to w. Fatal calls
// panic rather than exiting the process, which keeps it usable in tests.
func NewTextLoggerTo(w io.Writer) *TextLogger {
	return &TextLogger{
		level:  INFO,
		writer: w,
		exitFn: func(code int) { panic(fmt.Sprintf("exit status %d", code)) },
	}
}

// SetLevel sets the minimum severity that gets written.
func (l *TextLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the minimum severity that gets written.
func (l *TextLogger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *TextLogger) log(level Level, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	message := fmt.Sprintf(format, v...)
	now := time.Now().Format(dateFormat)

	if l.colors {
		color := nocolor
		switch level {
		case DEBUG:
			color = gray
		case WARN:
			color = yellow
		case ERROR, FATAL:
			color = red
		case INFO:
			color = cyan
		}
		fmt.Fprintf(l.writer, "\x1b[%sm%s %-5s\x1b[0m %s\n", color, now, level, message)
		return
	}
	fmt.Fprintf(l.writer, "%s %-5s %s\n", now, level, message)
}

func (l *TextLogger) Debug(format string, v ...any) { l.log(DEBUG, format, v...) }
func (l *TextLogger) Info(format string, v ...any)  { l.log(INFO, format, v...) }
func (l *TextLogger) Warn(format string, v ...any)  { l.log(WARN, format, v...) }
func (l *TextLogger) Error(format string, v ...any) { l.log(ERROR, format, v...) }

func (l *TextLogger) Fatal(format string, v ...any) {
	l.log(FATAL, format, v...)
	l.exitFn(1)
}

// Discard is a Logger that drops everything.
var Discard = discarder{}

type discarder struct{}

func (discarder) Debug(string, ...any) {}
func (discarder) Info(string, ...any)  {}
func (discarder) Warn(string, ...any)  {}
func (discarder) Error(string, ...any) {}
func (discarder) Fatal(format string, v ...any) {
	panic(fmt.Sprintf(format, v...))
}
func (discarder) SetLevel(Level) {}
func (discarder) Level() Level   { return FATAL }
