package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrIncompleteStream is returned when a stream ends without a terminal line.
var ErrIncompleteStream = errors.New("stream ended before completion")

// RemoteError carries the message of an "_error" line.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

type marker struct {
	Complete bool   `json:"_complete"`
	Error    bool   `json:"_error"`
	Message  string `json:"message"`
}

const readSize = 4096

// Decode consumes a stream from r. onPartial is called for every partial line
// and for the final object. It returns the final object with the completion
// marker removed, a *RemoteError for an "_error" line, or ErrIncompleteStream
// when r ends before a "_complete" line. Lines after the "_complete" line are
// read and ignored.
func Decode[T any](r io.Reader, onPartial func(T)) (T, error) {
	var (
		final    T
		complete bool
		buf      []byte
		chunk    = make([]byte, readSize)
	)

	handle := func(line []byte) error {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || complete {
			return nil
		}
		v, m, err := decodeLine[T](line)
		if err != nil {
			return err
		}
		if m.Error {
			msg := m.Message
			if msg == "" {
				msg = "stream reported an error"
			}
			return &RemoteError{Message: msg}
		}
		if onPartial != nil {
			onPartial(v)
		}
		if m.Complete {
			final, complete = v, true
		}
		return nil
	}

	for {
		n, readErr := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for {
				idx := bytes.IndexByte(buf, '\n')
				if idx < 0 {
					break
				}
				line := buf[:idx]
				buf = buf[idx+1:]
				if err := handle(line); err != nil {
					var zero T
					return zero, err
				}
			}
		}
		if errors.Is(readErr, io.EOF) || (readErr != nil && complete) {
			break
		}
		if readErr != nil {
			var zero T
			return zero, fmt.Errorf("read stream: %w", readErr)
		}
	}

	// A final line without a trailing newline still counts.
	if err := handle(buf); err != nil {
		var zero T
		return zero, err
	}
	if !complete {
		var zero T
		return zero, ErrIncompleteStream
	}
	return final, nil
}

func decodeLine[T any](line []byte) (T, marker, error) {
	var (
		v T
		m marker
	)
	if err := json.Unmarshal(line, &m); err != nil {
		return v, m, fmt.Errorf("decode stream line: %w", err)
	}
	if m.Error {
		return v, m, nil
	}
	if m.Complete {
		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal(line, &fields); err != nil {
			return v, m, fmt.Errorf("decode stream line: %w", err)
		}
		delete(fields, CompleteField)
		stripped, err := json.Marshal(fields)
		if err != nil {
			return v, m, err
		}
		line = stripped
	}
	if err := json.Unmarshal(line, &v); err != nil {
		return v, m, fmt.Errorf("decode stream line: %w", err)
	}
	return v, m, nil
}
