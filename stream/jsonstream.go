// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// errClosed is returned by Next after the caller has closed a sequence.
var errClosed = errors.New("stream: closed")

// DecodeError reports malformed JSON in a streaming response body:
// either a syntax error inside a document or a stream that ended with
// a non-empty, non-parseable remainder. It is terminal for the
// sequence that produced it.
type DecodeError struct {
	// Offset is the byte offset into the response body at which
	// decoding failed.
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("stream: malformed json at byte %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// JSONStream is a lazy sequence of JSON documents read from a chunked
// response body. It is forward-only and consumed exactly once.
//
// Partial trailing bytes between reads are internal decoder state and
// are never exposed; a stream that ends mid-document or with trailing
// garbage yields a *DecodeError rather than silently dropping data.
type JSONStream struct {
	decoder *json.Decoder
	source  io.Closer
	err     error
}

// NewJSONStream wraps a response body. The stream owns the body: it is
// closed on terminal error, on clean end of stream, and on Close.
func NewJSONStream(source io.ReadCloser) *JSONStream {
	return &JSONStream{
		decoder: json.NewDecoder(source),
		source:  source,
	}
}

// Next decodes the next complete document into v. It blocks until a
// full document has arrived, however the daemon chunked its writes.
// Returns io.EOF when the stream ends cleanly at a document boundary.
// Any other error is terminal: the sequence yields no further values
// and the underlying connection has been released.
func (s *JSONStream) Next(v any) error {
	if s.err != nil {
		return s.err
	}

	err := s.decoder.Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		// Clean termination: the body ended exactly after a complete
		// document (or was empty).
		s.err = io.EOF
	default:
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			s.err = &DecodeError{Offset: s.decoder.InputOffset(), Err: err}
		} else {
			// Transport read failure, not malformed data.
			s.err = fmt.Errorf("stream: reading json stream: %w", err)
		}
	}
	s.source.Close()
	return s.err
}

// Close abandons the sequence and releases the underlying connection.
// Safe to call at any point, including after a terminal error.
func (s *JSONStream) Close() error {
	if s.err == nil {
		s.err = errClosed
	}
	return s.source.Close()
}
