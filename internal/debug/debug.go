// Package debug is a lightweight stderr/file logger, gated by the DEBUG
// environment variable or an explicit SetEnabled(true) call, in the
// teacher's build-flag-plus-env-var Printf idiom.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// EnableDebug can be set at build time:
// go build -ldflags "-X github.com/saitomics/proteomics/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	output io.Writer = os.Stderr
	mu     sync.Mutex
	forced bool
)

// SetEnabled forces debug output on or off regardless of build flag/env var.
func SetEnabled(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	forced = enabled
}

// SetOutput redirects debug output. Pass nil to discard it entirely.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		output = io.Discard
		return
	}
	output = w
}

// IsEnabled reports whether debug logging is currently active.
func IsEnabled() bool {
	mu.Lock()
	f := forced
	mu.Unlock()
	if f {
		return true
	}
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// Printf writes a debug line when logging is enabled.
func Printf(format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	fmt.Fprintf(writer(), "[DEBUG] "+format+"\n", args...)
}

// Log writes a component-tagged debug line, e.g. Log("INGEST", "...").
func Log(component, format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	fmt.Fprintf(writer(), "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// FileLogger prefixes every line with a file's basename, grounded on
// lib/proteomics/services/digest_and_ingest.py's get_child_logger, which
// gives every log line emitted while processing one FASTA file the same
// identifying prefix so interleaved concurrent workers stay attributable.
type FileLogger struct {
	prefix string
}

// ForFile returns a FileLogger prefixing its output with name.
func ForFile(name string) *FileLogger {
	return &FileLogger{prefix: name}
}

func (f *FileLogger) Printf(format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	fmt.Fprintf(writer(), "[DEBUG][%s] "+format+"\n", append([]interface{}{f.prefix}, args...)...)
}
