package simulation

import (
	"fmt"
	"io"
	"strings"

	golog "github.com/tochemey/goakt/v3/log"
)

// ParseLogLevel maps the logLevel config values to goakt levels.
func ParseLogLevel(s string) (golog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return golog.DebugLevel, nil
	case "", "info":
		return golog.InfoLevel, nil
	case "warn", "warning":
		return golog.WarningLevel, nil
	case "error":
		return golog.ErrorLevel, nil
	}
	return golog.InvalidLevel, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
}

// NewLogger returns the logger shared by the actor system and the runners.
func NewLogger(level string, w io.Writer) (golog.Logger, error) {
	l, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return golog.New(l, w), nil
}
