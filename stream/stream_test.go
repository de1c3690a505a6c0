// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"io"
	"sync/atomic"
)

// chunkedReader delivers a byte stream in fixed-size chunks so tests
// can prove that decoding is independent of how the transport split
// its deliveries. It also records whether it was closed, standing in
// for connection release.
type chunkedReader struct {
	data      []byte
	chunkSize int
	position  int
	closed    atomic.Bool
}

func newChunkedReader(data []byte, chunkSize int) *chunkedReader {
	return &chunkedReader{data: data, chunkSize: chunkSize}
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.position >= len(r.data) {
		return 0, io.EOF
	}
	limit := r.chunkSize
	if limit > len(p) {
		limit = len(p)
	}
	if remaining := len(r.data) - r.position; limit > remaining {
		limit = remaining
	}
	copy(p, r.data[r.position:r.position+limit])
	r.position += limit
	return limit, nil
}

func (r *chunkedReader) Close() error {
	r.closed.Store(true)
	return nil
}
