package grammar

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dzjyyds666/polyprops/parse/scan"
)

// DefaultMaxRecoveries bounds how many times one collection may resynchronise
// after an error before the parse is abandoned.
const DefaultMaxRecoveries = 100

// ErrRecoveryLimit aborts a parse whose error recovery cannot make progress.
var ErrRecoveryLimit = errors.New("grammar: recovery limit exceeded")

// Sink receives diagnostics as they are produced. Line and column are zero
// based.
type Sink func(line, column int, message string)

// Diagnostic is one recorded message.
type Diagnostic struct {
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
	Message string `json:"message" yaml:"message"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
}

func (d Diagnostic) String() string { return d.Error() }

// Report computes the position of offset and sends the message to sink.
// A nil sink discards it.
func Report(sink Sink, text string, offset int, format string, args ...any) {
	if sink == nil {
		return
	}
	line, col := scan.LineAndColumn(text, offset)
	sink(line, col, fmt.Sprintf(format, args...))
}

// Collector accumulates diagnostics. It is safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// Sink returns a Sink feeding the collector.
func (c *Collector) Sink() Sink {
	return func(line, column int, message string) {
		c.mu.Lock()
		c.diagnostics = append(c.diagnostics, Diagnostic{Line: line, Column: column, Message: message})
		c.mu.Unlock()
	}
}

// Diagnostics returns a copy of everything collected so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.diagnostics...)
}

// LogSink logs every diagnostic at warn level.
func LogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return func(line, column int, message string) {
		logger.Warn(message, "line", line, "column", column)
	}
}

// Tee fans diagnostics out to several sinks.
func Tee(sinks ...Sink) Sink {
	return func(line, column int, message string) {
		for _, s := range sinks {
			if s != nil {
				s(line, column, message)
			}
		}
	}
}

// DiagnosticsError reports a failed parse.
type DiagnosticsError struct {
	Diagnostics []Diagnostic
}

func (e *DiagnosticsError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "parse failed"
	}
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.Error()
	}
	return "parse failed: " + strings.Join(msgs, "; ")
}

func (e *DiagnosticsError) Unwrap() []error {
	errs := make([]error, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		errs[i] = d
	}
	return errs
}

type recoveryPanic struct {
	err error
}

// Recover turns a recovery-limit abort raised inside fn into an error.
// Other panics propagate.
func Recover(fn func()) (err error) {
	defer func() {
		if x := recover(); x != nil {
			if p, ok := x.(recoveryPanic); ok {
				err = p.err
				return
			}
			panic(x)
		}
	}()
	fn()
	return nil
}

func abortRecovery(text string, offset int, name string) {
	line, col := scan.LineAndColumn(text, offset)
	panic(recoveryPanic{fmt.Errorf("%w in %s at %d:%d", ErrRecoveryLimit, name, line, col)})
}
