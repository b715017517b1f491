// Package log wraps the standard logger with debug output and optional
// rotating file output.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

var debug atomic.Bool

func init() {
	debug.Store(defaultDebug)
}

// Options configures the log output.
type Options struct {
	// File is the log file path. Empty keeps logging to stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Debug      bool
}

// Setup points the standard logger at the configured output. The returned
// closer releases the log file, it is a no-op when logging to stderr.
func Setup(opts Options) (io.Closer, error) {
	debug.Store(defaultDebug || opts.Debug)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if opts.File == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	out := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	log.SetOutput(out)
	return out, nil
}

// DebugEnabled reports whether Debug output is written.
func DebugEnabled() bool {
	return debug.Load()
}

// Print calls the standard log.Print()
func Print(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
}

// Printf calls the standard log.Printf()
func Printf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
}

// Println calls the standard log.Println()
func Println(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
}

// Fatal calls the standard log.Fatal()
func Fatal(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf calls the standard log.Fatalf()
func Fatalf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Fatalln calls the standard log.Fatalln()
func Fatalln(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
	os.Exit(1)
}

// Debug calls the standard log.Print() with a [DEBUG] prefix
func Debug(v ...interface{}) {
	if debug.Load() {
		log.Output(2, "[DEBUG] "+fmt.Sprint(v...))
	}
}

// Debugf calls the standard log.Printf() with a [DEBUG] prefix
func Debugf(format string, v ...interface{}) {
	if debug.Load() {
		log.Output(2, "[DEBUG] "+fmt.Sprintf(format, v...))
	}
}
