// Package debug holds the CLI output switches (--verbose, --quiet and
// $SYSAPP_DEBUG) and the service logger.
package debug

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

var (
	traceEnv = os.Getenv("SYSAPP_DEBUG") != ""
	verbose  atomic.Bool
	quiet    atomic.Bool
)

// Configure applies the root command's --verbose and --quiet flags.
// The two are independent: quiet silences notes, verbose enables traces.
func Configure(verboseFlag, quietFlag bool) {
	verbose.Store(verboseFlag)
	quiet.Store(quietFlag)
}

// Enabled reports whether trace output is on.
func Enabled() bool {
	return traceEnv || verbose.Load()
}

// Quiet reports whether notes are suppressed.
func Quiet() bool {
	return quiet.Load()
}

// Tracef writes a "debug: " line to stderr when tracing is on.
func Tracef(format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(os.Stderr, "debug: "+msg)
}

// Notef prints operator-facing status to stdout unless --quiet is set.
// Command results (tables, JSON) bypass it.
func Notef(format string, args ...interface{}) {
	if Quiet() {
		return
	}
	fmt.Printf(format, args...)
}
