// Package stream implements the newline-delimited JSON wire format used for
// incremental generation: zero or more partial lines followed by exactly one
// terminal line carrying either "_complete" or "_error".
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ContentType marks a streamed response body.
const ContentType = "application/x-ndjson"

// Marker fields of terminal lines.
const (
	CompleteField = "_complete"
	ErrorField    = "_error"
)

// ErrTerminated is returned for writes after the terminal line.
var ErrTerminated = errors.New("stream already terminated")

// Writer encodes a stream onto an HTTP response.
type Writer struct {
	mu         sync.Mutex
	w          io.Writer
	flusher    http.Flusher
	terminated bool
}

// NewWriter sets the streaming headers on w and returns a Writer. Lines are
// flushed as they are written when w supports it.
func NewWriter(w http.ResponseWriter) *Writer {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: flusher}
}

// WritePartial writes one cumulative snapshot.
func (s *Writer) WritePartial(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode partial: %w", err)
	}
	return s.writeLine(line, false)
}

// WriteComplete writes the final object merged with "_complete": true and
// terminates the stream. v must encode to a JSON object.
func (s *Writer) WriteComplete(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode final object: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("final object is not a JSON object: %w", err)
	}
	fields[CompleteField] = json.RawMessage("true")

	line, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode final object: %w", err)
	}
	return s.writeLine(line, true)
}

// WriteError writes {"_error": true, "message": message} and terminates the stream.
func (s *Writer) WriteError(message string) error {
	line, err := json.Marshal(map[string]any{ErrorField: true, "message": message})
	if err != nil {
		return err
	}
	return s.writeLine(line, true)
}

// Terminated reports whether a terminal line has been written.
func (s *Writer) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

func (s *Writer) writeLine(line []byte, terminal bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return ErrTerminated
	}
	if terminal {
		s.terminated = true
	}
	if _, err := s.w.Write(append(line, '\n')); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}
