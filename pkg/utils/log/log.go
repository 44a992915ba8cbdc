// Package log exposes the shared level printers used throughout the relay.
package log

import (
	"github.com/fatih/color"

	"roost.dev/pkg/utils/lol"
)

var (
	// F is the fatal level printer.
	F = lol.NewPrinter(lol.Fatal, "FTL", color.New(color.FgHiRed, color.Bold))
	// E is the error level printer.
	E = lol.NewPrinter(lol.Error, "ERR", color.New(color.FgRed))
	// W is the warning level printer.
	W = lol.NewPrinter(lol.Warn, "WRN", color.New(color.FgYellow))
	// I is the info level printer.
	I = lol.NewPrinter(lol.Info, "INF", color.New(color.FgGreen))
	// D is the debug level printer.
	D = lol.NewPrinter(lol.Debug, "DBG", color.New(color.FgBlue))
	// T is the trace level printer.
	T = lol.NewPrinter(lol.Trace, "TRC", color.New(color.FgMagenta))
)
