// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"io"

	"github.com/dockhand-project/dockhand/stream"
)

// MessageStream is a lazy sequence of decoded JSON documents of one
// wire type: events, pull/build progress messages, per-second stats
// samples. It is forward-only and consumed exactly once.
type MessageStream[T any] struct {
	source *stream.JSONStream
}

func newMessageStream[T any](body io.ReadCloser) *MessageStream[T] {
	return &MessageStream[T]{source: stream.NewJSONStream(body)}
}

// Next returns the next document. Returns io.EOF when the daemon
// closes the stream cleanly; any other error is terminal for the
// sequence.
func (s *MessageStream[T]) Next() (*T, error) {
	var message T
	if err := s.source.Next(&message); err != nil {
		return nil, err
	}
	return &message, nil
}

// Close abandons the sequence and releases the underlying connection.
func (s *MessageStream[T]) Close() error {
	return s.source.Close()
}
