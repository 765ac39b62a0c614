package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Logf is a printf-style log sink. A missing trailing newline is added.
type Logf func(format string, args ...any)

// Discard drops every line
func Discard(string, ...any) {}

// Console writes lines to w, normally os.Stderr
func Console(w io.Writer) Logf {
	var mu sync.Mutex
	return func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(w, line(format, args...))
	}
}

// DebugFile creates path and returns a sink writing to it. Lines are
// prefixed with tag, e.g. "[UI]".
func DebugFile(path, tag string) (Logf, io.Closer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create debug log: %w", err)
	}
	logf := Console(f)
	if tag != "" {
		inner := logf
		logf = func(format string, args ...any) {
			inner(tag+" "+format, args...)
		}
	}
	return logf, f, nil
}

// Tee sends every line to each sink
func Tee(sinks ...Logf) Logf {
	return func(format string, args ...any) {
		for _, s := range sinks {
			if s != nil {
				s(format, args...)
			}
		}
	}
}

func line(format string, args ...any) string {
	s := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// Switch is a sink whose destination can change while in use, so the
// same Logf can write to the console before and after the terminal UI
// and to a debug file while the UI owns the screen.
type Switch struct {
	mu   sync.Mutex
	sink Logf
}

// NewSwitch creates a switch writing to initial
func NewSwitch(initial Logf) *Switch {
	return &Switch{sink: initial}
}

// Set changes the destination; nil discards
func (s *Switch) Set(sink Logf) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Logf writes one line to the current destination
func (s *Switch) Logf(format string, args ...any) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink != nil {
		sink(format, args...)
	}
}
