// Package blog is the renderer's ambient logger: a tiny tag-prefixed line
// writer, generalized from the teacher's fmt.Printf("[job] ...") /
// fmt.Printf("[warn] ...") idiom in data.go and build.go so tests can
// capture output and every subsystem can share one writer.
package blog

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes tag-prefixed lines to an underlying writer, synchronized so
// concurrent workers/aggregators can log without interleaving partial
// lines (the teacher's own fmt.Printf calls are implicitly serialized by
// going through stdout; Logger makes that serialization explicit so an
// arbitrary io.Writer, e.g. a test buffer, works the same way).
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// New wraps w. A nil w defaults to os.Stdout, matching the teacher's
// behavior of printing straight to the console.
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{w: w}
}

// Printf writes one tag-prefixed line: "[tag] <format>\n".
func (l *Logger) Printf(tag, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[%s] %s\n", tag, fmt.Sprintf(format, args...))
}

// Job logs a "[job]" line — matches the teacher's progress-announcement tag.
func (l *Logger) Job(format string, args ...interface{}) { l.Printf("job", format, args...) }

// Warn logs a "[warn]" line — matches the teacher's non-fatal-warning tag.
func (l *Logger) Warn(format string, args ...interface{}) { l.Printf("warn", format, args...) }

// Done logs a "[done]" line — matches the teacher's completion tag.
func (l *Logger) Done(format string, args ...interface{}) { l.Printf("done", format, args...) }

// Error logs an "[error]" line for fatal per-component failures (spec.md §7).
func (l *Logger) Error(format string, args ...interface{}) { l.Printf("error", format, args...) }
