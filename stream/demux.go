// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Source identifies which standard stream a frame belongs to. The
// values are the daemon's wire tags.
type Source byte

const (
	// SourceStdin tags data written to the attached process's stdin,
	// echoed back on the multiplexed stream.
	SourceStdin Source = 0
	// SourceStdout tags standard output data.
	SourceStdout Source = 1
	// SourceStderr tags standard error data.
	SourceStderr Source = 2
)

// String returns the stream name.
func (s Source) String() string {
	switch s {
	case SourceStdin:
		return "stdin"
	case SourceStdout:
		return "stdout"
	case SourceStderr:
		return "stderr"
	default:
		return fmt.Sprintf("unknown(%d)", byte(s))
	}
}

// Frame is one demultiplexed unit of output. Frames arrive in wire
// order; the protocol preserves relative ordering within a single
// source but makes no ordering guarantee across sources.
type Frame struct {
	Source  Source
	Payload []byte
}

// FrameError reports a violation of the multiplexed stream protocol:
// an unrecognized source tag, or a stream that ended mid-header or
// mid-payload. It is terminal for the sequence that produced it.
type FrameError struct {
	// Offset is the byte offset into the response body at which the
	// violation was found.
	Offset int64
	Reason string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("stream: protocol violation at byte %d: %s", e.Offset, e.Reason)
}

// Demuxer is a lazy sequence of Frames read from a multiplexed
// response body. Each frame on the wire is an 8-byte header (source
// tag, three reserved bytes, big-endian uint32 payload length)
// followed by exactly that many payload bytes, regardless of how the
// transport chunked the delivery.
type Demuxer struct {
	source io.ReadCloser
	offset int64
	header [8]byte
	err    error
}

// NewDemuxer wraps a multiplexed response body. The demuxer owns the
// body: it is closed on terminal error, on clean end of stream, and on
// Close.
func NewDemuxer(source io.ReadCloser) *Demuxer {
	return &Demuxer{source: source}
}

// Next reads the next frame. The declared payload length is read in
// full before the next header is attempted; the length is never
// guessed. Returns io.EOF when the stream ends exactly at a header
// boundary. Any other error is terminal and has released the
// underlying connection.
func (d *Demuxer) Next() (Frame, error) {
	if d.err != nil {
		return Frame{}, d.err
	}

	n, err := io.ReadFull(d.source, d.header[:])
	switch {
	case errors.Is(err, io.EOF):
		// End of stream at a header boundary is normal termination.
		d.err = io.EOF
		d.source.Close()
		return Frame{}, d.err
	case errors.Is(err, io.ErrUnexpectedEOF):
		return Frame{}, d.fail(&FrameError{
			Offset: d.offset + int64(n),
			Reason: fmt.Sprintf("stream ended mid-header (%d of 8 bytes)", n),
		})
	case err != nil:
		return Frame{}, d.fail(fmt.Errorf("stream: reading frame header: %w", err))
	}

	source := Source(d.header[0])
	if source > SourceStderr {
		return Frame{}, d.fail(&FrameError{
			Offset: d.offset,
			Reason: fmt.Sprintf("unknown stream source tag 0x%02x", d.header[0]),
		})
	}
	d.offset += 8

	length := binary.BigEndian.Uint32(d.header[4:8])
	payload := make([]byte, length)
	n, err = io.ReadFull(d.source, payload)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// Ending inside a declared payload is a protocol violation,
		// not end of stream.
		return Frame{}, d.fail(&FrameError{
			Offset: d.offset + int64(n),
			Reason: fmt.Sprintf("stream ended mid-payload (%d of %d bytes)", n, length),
		})
	case err != nil:
		return Frame{}, d.fail(fmt.Errorf("stream: reading frame payload: %w", err))
	}
	d.offset += int64(length)

	return Frame{Source: source, Payload: payload}, nil
}

// fail latches a terminal error and releases the connection.
func (d *Demuxer) fail(err error) error {
	d.err = err
	d.source.Close()
	return err
}

// Close abandons the sequence and releases the underlying connection.
func (d *Demuxer) Close() error {
	if d.err == nil {
		d.err = errClosed
	}
	return d.source.Close()
}
