package logger

import (
	"github.com/fatih/color" // Colored console output for the different log levels
)

// Leveled printing functions built on fatih/color. Each behaves like
// fmt.Printf but renders in the color chosen for its level, so a long
// fetch run stays scannable in the terminal.

// Info logs informational messages in green (normal progress output).
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warning messages in bright magenta (recoverable oddities,
// e.g. a target the tool does not publish binaries for).
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs error messages in red (failed downloads and extractions).
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan when enabled, otherwise is a no-op.
// It defaults to the no-op so packages can log before Init runs.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging. When disabled, Debug is a
// no-op function so call sites never need to guard it.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
