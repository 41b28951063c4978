package logger

import (
	"fmt"
	"strings"
)

// Level is a logging severity.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = []string{
	"DEBUG",
	"INFO",
	"WARN",
	"ERROR",
	"FATAL",
}

// String returns the string representation of a logging level.
func (l Level) String() string {
	if l < DEBUG || l > FATAL {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// LevelFromString returns the level named by str, ignoring case.
func LevelFromString(str string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(str, name) {
			return Level(i), nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", str)
}
