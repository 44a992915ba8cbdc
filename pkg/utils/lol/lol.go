// Package lol is a minimal leveled logger with colored level tags, terse
// call sites (log.I.F, log.E.Ln, log.D.S) and a lazy variant for expensive
// messages.
package lol

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

// Level is a log level. Messages below the current level are dropped.
type Level int32

const (
	Off Level = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

var levelNames = []string{"off", "fatal", "error", "warn", "info", "debug", "trace"}

var currentLevel atomic.Int32

func init() { currentLevel.Store(int32(Info)) }

// SetLogLevel sets the active log level from its name. Unknown names leave
// the level unchanged.
func SetLogLevel(name string) {
	for i, n := range levelNames {
		if strings.EqualFold(name, n) {
			currentLevel.Store(int32(i))
			return
		}
	}
}

// GetLogLevel returns the numeric level for a level name, defaulting to
// Info.
func GetLogLevel(name string) (l Level) {
	l = Info
	for i, n := range levelNames {
		if strings.EqualFold(name, n) {
			l = Level(i)
		}
	}
	return
}

// P is a printer bound to one log level.
type P struct {
	level Level
	tag   string
	paint *color.Color
}

// NewPrinter returns a printer for the given level.
func NewPrinter(level Level, tag string, paint *color.Color) *P {
	return &P{level: level, tag: tag, paint: paint}
}

func (p *P) enabled() bool { return Level(currentLevel.Load()) >= p.level }

func (p *P) emit(msg string) {
	loc := caller(3)
	_, _ = fmt.Fprintf(
		os.Stderr, "%s %s %s %s\n",
		time.Now().Format("15:04:05.000000"), p.paint.Sprint(p.tag), msg, loc,
	)
}

// F prints a formatted message.
func (p *P) F(format string, a ...any) {
	if !p.enabled() {
		return
	}
	p.emit(fmt.Sprintf(format, a...))
}

// Ln prints its arguments separated by spaces.
func (p *P) Ln(a ...any) {
	if !p.enabled() {
		return
	}
	p.emit(strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
}

// S spew-dumps its arguments, for structured values during debugging.
func (p *P) S(a ...any) {
	if !p.enabled() {
		return
	}
	p.emit(strings.TrimSuffix(spew.Sdump(a...), "\n"))
}

// C evaluates the closure only when the level is enabled, for messages that
// are expensive to construct.
func (p *P) C(f func() string) {
	if !p.enabled() {
		return
	}
	p.emit(f())
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	if i := strings.LastIndex(file, "/"); i >= 0 {
		if j := strings.LastIndex(file[:i], "/"); j >= 0 {
			file = file[j+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, line)
}
