// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O helpers shared by the transport
// and engine packages.
//
// The response helpers (ReadResponse, DecodeResponse) bound all body
// reads at MaxResponseSize to prevent unbounded memory allocation from
// a misbehaving daemon. They are for synchronous JSON API responses
// (inspect, list, create), not for streaming responses (logs, events,
// pull progress) or archive downloads, which are read incrementally.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize bounds synchronous response body reads: 64 MB. This
// exists solely to keep a pathological response from exhausting memory.
// Legitimate inspect/list responses are orders of magnitude smaller;
// the limit is generous enough to never interfere with normal use.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes. Use
// instead of io.ReadAll when reading daemon response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a response body (up to MaxResponseSize bytes)
// and JSON-decodes it into v. Replaces the common io.ReadAll +
// json.Unmarshal pair.
func DecodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}
