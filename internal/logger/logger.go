// Package logger is mediamind's process-wide leveled logger.
//
// Info, Warn and Error always print. Debug, Section and Timed print only
// when verbose mode is on (the --verbose flag). Output goes to stderr so
// that stdout stays clean for --json results; the TUI swaps it for
// io.Discard while the alternate screen is up.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr

	// now is replaced in tests.
	now = time.Now
)

// SetVerbose turns Debug, Section and Timed output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Output returns the current writer.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

func write(onlyVerbose bool, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if onlyVerbose && !verbose {
		return
	}
	fmt.Fprintf(output, format, args...)
}

// Debug prints a verbose-only message.
func Debug(format string, args ...any) {
	write(true, "[DEBUG] "+format+"\n", args...)
}

// Section prints a verbose-only header marking the start of a pipeline stage.
func Section(name string) {
	write(true, "\n=== %s ===\n", name)
}

// Timed prints a stage header and returns a func that reports how long the
// stage took. Use as: defer logger.Timed("Extraction")().
func Timed(stage string) func() {
	Section(stage)
	start := now()
	return func() {
		elapsed := now().Sub(start).Round(time.Millisecond)
		write(true, "[DEBUG] %s took %s\n", stage, elapsed)
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	write(false, "[INFO] "+format+"\n", args...)
}

// Warn prints a warning.
func Warn(format string, args ...any) {
	write(false, "[WARN] "+format+"\n", args...)
}

// Error prints an error.
func Error(format string, args ...any) {
	write(false, "[ERROR] "+format+"\n", args...)
}
