// Package logger provides the process-wide structured logger for cmsclean.
//
// The logger has an explicit lifecycle: Init configures it (optionally with a
// buffered destination flushed on an interval) and Shutdown flushes and
// releases the destination. Until Init is called messages go to stderr at
// info level.
package logger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	defaultLogger *slog.Logger
	sink          *flushWriter
	mu            sync.RWMutex
)

func init() {
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Options configures the logger.
type Options struct {
	Debug  bool      // Enable debug level logging
	Quiet  bool      // Only show errors
	JSON   bool      // Output as JSON
	Output io.Writer // Output destination (default: stderr)

	// File appends log output to this path instead of Output.
	File string

	// FlushInterval buffers output and flushes it on this interval. Zero
	// writes every record immediately.
	FlushInterval time.Duration
}

// Init replaces the process-wide logger. A previously initialised
// destination is flushed and released first.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if err := shutdownLocked(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	if opts.Quiet {
		level = slog.LevelError
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	var closer io.Closer
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		output, closer = f, f
	}

	if opts.FlushInterval > 0 || closer != nil {
		sink = newFlushWriter(output, closer, opts.FlushInterval)
		output = sink
	}

	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(output, handlerOpts)
	}

	defaultLogger = slog.New(handler)
	return nil
}

// Shutdown flushes buffered output, stops the flush timer and closes a log
// file opened by Init. Logging after Shutdown goes to stderr.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	return shutdownLocked()
}

func shutdownLocked() error {
	if sink == nil {
		return nil
	}
	err := sink.Close()
	sink = nil
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return err
}

// Flush writes out buffered log output.
func Flush() error {
	mu.RLock()
	s := sink
	mu.RUnlock()
	if s == nil {
		return nil
	}
	return s.Flush()
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return get().With(args...)
}

// DebugContext logs a debug message with context.
func DebugContext(ctx context.Context, msg string, args ...any) {
	get().DebugContext(ctx, msg, args...)
}

// InfoContext logs an info message with context.
func InfoContext(ctx context.Context, msg string, args ...any) {
	get().InfoContext(ctx, msg, args...)
}

// ErrorContext logs an error message with context.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	get().ErrorContext(ctx, msg, args...)
}

// flushWriter buffers writes and flushes them on a ticker.
type flushWriter struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	closer io.Closer
	stop   chan struct{}
	done   chan struct{}
}

func newFlushWriter(w io.Writer, closer io.Closer, interval time.Duration) *flushWriter {
	fw := &flushWriter{
		buf:    bufio.NewWriter(w),
		closer: closer,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if interval <= 0 {
		close(fw.done)
		return fw
	}

	go func() {
		defer close(fw.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = fw.Flush()
			case <-fw.stop:
				return
			}
		}
	}()
	return fw
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	n, err := fw.buf.Write(p)
	if err != nil {
		return n, err
	}
	// Without a ticker nothing else flushes, so write through.
	if isClosed(fw.done) && fw.closer != nil {
		return n, fw.buf.Flush()
	}
	return n, nil
}

func (fw *flushWriter) Flush() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.buf.Flush()
}

func (fw *flushWriter) Close() error {
	select {
	case <-fw.stop:
	default:
		close(fw.stop)
	}
	<-fw.done

	err := fw.Flush()
	if fw.closer != nil {
		if cerr := fw.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
