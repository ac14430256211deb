// Package rlog provides the logging interface shared by the renderer,
// coordinator, and network packages, backed by zerolog.
package rlog

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the narrow Printf-shaped logging contract implemented by every
// backend in this package.
type Logger interface {
	Printf(format string, args ...interface{})
}

// New builds the default structured logger: zerolog writing console-
// formatted output to stderr with a timestamp.
func New() Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	return &zerologAdapter{zl: zl}
}

type zerologAdapter struct {
	zl zerolog.Logger
}

func (a *zerologAdapter) Printf(format string, args ...interface{}) {
	a.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// ConsoleMessage is one line of render progress, suitable for relaying to a
// remote observer (the broker's web console, a peer's status feed).
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
}

// FanoutLogger implements Logger by both logging locally through zerolog
// and forwarding the formatted message to a channel, non-blockingly.
type FanoutLogger struct {
	zl   zerolog.Logger
	sink chan<- ConsoleMessage
}

// NewFanout creates a logger that writes to stderr via zerolog and also
// pushes each message to sink when there is room; a full sink drops the
// message rather than blocking the caller.
func NewFanout(sink chan<- ConsoleMessage) Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	return &FanoutLogger{zl: zl, sink: sink}
}

func (f *FanoutLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	f.zl.Info().Msg(message)

	if f.sink == nil {
		return
	}
	select {
	case f.sink <- ConsoleMessage{Message: message, Timestamp: time.Now(), Level: "info"}:
	default:
	}
}
