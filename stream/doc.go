// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package stream decodes the daemon's two streaming response body
// shapes into lazy, forward-only sequences.
//
// [JSONStream] handles bodies that are a concatenation of JSON
// documents delivered via chunked transfer encoding (pull, build,
// import progress; the events feed; per-second stats). Chunk
// boundaries carry no semantic meaning: one delivery may contain
// several complete documents, or a document may span several
// deliveries. The decoder buffers partial input internally and emits
// each document exactly once, in arrival order.
//
// [Demuxer] handles bodies that multiplex stdout and stderr (and
// echoed stdin) over one byte stream using fixed 8-byte frame headers
// (logs, attach, exec output when no pseudo-terminal is allocated).
// When the target has a pseudo-terminal the daemon sends raw unframed
// bytes instead; [Output] selects between the two modes based on the
// flag the caller carries on the request contract. The mode is never
// inferred from the bytes.
//
// Both sequences are consumed exactly once. Decoding is pull-based:
// producing the next value blocks on the underlying socket read, and
// no goroutines or timers run behind the caller's back. Closing a
// sequence releases the underlying connection, including when the
// caller abandons the sequence early.
package stream
