// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"errors"
	"fmt"
	"io"
)

// Output is a lazy sequence of Frames over a logs/attach/exec response
// body, in either of the daemon's two shapes. When the target has no
// pseudo-terminal the body is multiplexed with frame headers; when a
// pseudo-terminal is allocated the daemon sends raw bytes with no
// framing at all, and every chunk surfaces as a SourceStdout frame.
//
// The shape is decided by the TTY flag the caller carries on the
// request contract, never sniffed from the bytes.
type Output struct {
	demux  *Demuxer
	source io.ReadCloser
	err    error
}

// NewOutput wraps a response body. Pass framed=false for a target with
// an allocated pseudo-terminal.
func NewOutput(source io.ReadCloser, framed bool) *Output {
	if framed {
		return &Output{demux: NewDemuxer(source)}
	}
	return &Output{source: source}
}

// Next returns the next frame. Returns io.EOF on clean termination;
// any other error is terminal for the sequence.
func (o *Output) Next() (Frame, error) {
	if o.demux != nil {
		return o.demux.Next()
	}

	if o.err != nil {
		return Frame{}, o.err
	}
	buffer := make([]byte, 32*1024)
	for {
		n, err := o.source.Read(buffer)
		if n > 0 {
			// A raw chunk has no source tag; terminal output is stdout.
			return Frame{Source: SourceStdout, Payload: buffer[:n]}, nil
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			o.err = io.EOF
		} else {
			o.err = fmt.Errorf("stream: reading raw output: %w", err)
		}
		o.source.Close()
		return Frame{}, o.err
	}
}

// Copy drains the sequence, splitting frames onto the two writers.
// Echoed stdin frames go to stdout, matching the daemon's own stdcopy
// behavior. Returns nil once the stream terminates cleanly.
func (o *Output) Copy(stdout, stderr io.Writer) error {
	for {
		frame, err := o.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target := stdout
		if frame.Source == SourceStderr {
			target = stderr
		}
		if _, err := target.Write(frame.Payload); err != nil {
			o.Close()
			return err
		}
	}
}

// Close abandons the sequence and releases the underlying connection.
func (o *Output) Close() error {
	if o.demux != nil {
		return o.demux.Close()
	}
	if o.err == nil {
		o.err = errClosed
	}
	return o.source.Close()
}
