package report

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink routes rendered text blocks to an output channel by severity.
// Implementations must accept multi-line blocks.
type Sink interface {
	Info(text string)
	Error(text string)
}

// ConsoleSink writes informational blocks to stdout and error blocks to
// stderr.
type ConsoleSink struct {
	out io.Writer
	err io.Writer
}

// NewConsoleSink creates a sink over the process's standard streams.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: os.Stdout, err: os.Stderr}
}

func (s *ConsoleSink) Info(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *ConsoleSink) Error(text string) {
	fmt.Fprintln(s.err, text)
}

// BufferSink captures output per channel for tests and for embedding the
// final report in other surfaces.
type BufferSink struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (s *BufferSink) Info(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = append(s.infos, text)
}

func (s *BufferSink) Error(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, text)
}

// Infos returns the captured informational blocks in write order.
func (s *BufferSink) Infos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.infos...)
}

// Errors returns the captured error blocks in write order.
func (s *BufferSink) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.errors...)
}
