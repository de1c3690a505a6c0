// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dockhand-project/dockhand/stream"
	"github.com/dockhand-project/dockhand/transport"
)

// AttachOptions controls POST /containers/{id}/attach.
type AttachOptions struct {
	// Stream requests live output; Logs requests buffered history.
	// At least one must be set.
	Stream bool
	Logs   bool
	// Stdin, Stdout and Stderr select which streams to attach.
	Stdin  bool
	Stdout bool
	Stderr bool
	// DetachKeys overrides the escape sequence for detaching.
	DetachKeys string
	// TTY must mirror the container's Tty setting; it selects raw
	// passthrough versus frame demultiplexing on the output side.
	TTY bool
}

func (o AttachOptions) values() url.Values {
	query := url.Values{}
	if o.Stream {
		query.Set("stream", "true")
	}
	if o.Logs {
		query.Set("logs", "true")
	}
	if o.Stdin {
		query.Set("stdin", "true")
	}
	if o.Stdout {
		query.Set("stdout", "true")
	}
	if o.Stderr {
		query.Set("stderr", "true")
	}
	if o.DetachKeys != "" {
		query.Set("detachKeys", o.DetachKeys)
	}
	return query
}

// AttachSession is a live attachment to a container's standard
// streams over a hijacked connection. Writes go to the container's
// stdin; output is consumed through Output.
type AttachSession struct {
	conn   *transport.HijackedConn
	output *stream.Output
}

// Output returns the container's output as a frame sequence. In TTY
// mode frames carry raw chunks tagged stdout.
func (s *AttachSession) Output() *stream.Output {
	return s.output
}

// Write sends bytes to the container's stdin.
func (s *AttachSession) Write(p []byte) (int, error) {
	return s.conn.Write(p)
}

// CloseWrite half-closes the stdin side, leaving output flowing.
func (s *AttachSession) CloseWrite() error {
	return s.conn.CloseWrite()
}

// Close tears down the attachment and releases the connection.
func (s *AttachSession) Close() error {
	return s.conn.Close()
}

// Attach attaches to the container's standard streams. The connection
// is upgraded to a raw bidirectional byte stream; the caller must
// close the session.
func (c *Container) Attach(ctx context.Context, options AttachOptions) (*AttachSession, error) {
	conn, err := c.client.api.Hijack(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/attach"),
		Query:  options.values(),
	})
	if err != nil {
		return nil, fmt.Errorf("engine: attaching to container %s: %w", c.id, err)
	}
	return &AttachSession{
		conn:   conn,
		output: stream.NewOutput(readCloser{conn}, !options.TTY),
	}, nil
}

// readCloser adapts a hijacked connection to the io.ReadCloser shape
// the stream decoders own.
type readCloser struct {
	conn *transport.HijackedConn
}

func (r readCloser) Read(p []byte) (int, error) { return r.conn.Read(p) }
func (r readCloser) Close() error               { return r.conn.Close() }

var _ io.ReadCloser = readCloser{}
