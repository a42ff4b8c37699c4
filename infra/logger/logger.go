package logger

import (
	"fmt"
	"strings"

	corelogger "github.com/kilianp07/occupancy/core/logger"
)

type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger for the given component. The output format is chosen
// from the APP_ENV variable and the level from LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// Printer adapts a Logger to the Println/Printf pair expected by libraries
// with package-level loggers, such as paho.
type Printer struct {
	log  Logger
	warn bool
}

// NewPrinter writes at warn level when warn is set and at error level
// otherwise.
func NewPrinter(l Logger, warn bool) Printer { return Printer{log: l, warn: warn} }

func (p Printer) Println(v ...any) {
	p.Printf("%s", strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (p Printer) Printf(format string, v ...any) {
	if p.warn {
		p.log.Warnf(format, v...)
		return
	}
	p.log.Errorf(format, v...)
}
