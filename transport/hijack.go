// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
)

// HijackedConn is the raw bidirectional connection handed back by an
// upgraded attach request. Reads must go through Reader, which may
// hold bytes buffered while parsing the response headers; writes go
// directly to Conn.
type HijackedConn struct {
	Conn   net.Conn
	Reader *bufio.Reader
}

// Read reads demultiplexer input: buffered header remainder first,
// then the socket.
func (h *HijackedConn) Read(p []byte) (int, error) {
	return h.Reader.Read(p)
}

// Write sends bytes to the attached process's stdin.
func (h *HijackedConn) Write(p []byte) (int, error) {
	return h.Conn.Write(p)
}

// CloseWrite half-closes the write side, signalling end of stdin while
// leaving stdout/stderr flowing.
func (h *HijackedConn) CloseWrite() error {
	if cw, ok := h.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return fmt.Errorf("transport: connection does not support half-close")
}

// Close releases the connection.
func (h *HijackedConn) Close() error {
	return h.Conn.Close()
}

// Hijack performs an upgraded request: it dials a connection, writes
// the HTTP/1.1 request itself, parses the status line and headers, and
// on success hands the connection to the caller instead of treating
// the rest as an HTTP body. The daemon switches the connection to a
// raw byte stream (framed or TTY passthrough, per the attach target)
// after acknowledging the upgrade.
//
// The caller owns the returned connection and must close it.
func (c *Client) Hijack(ctx context.Context, request Request) (*HijackedConn, error) {
	requestURL := c.baseURL + request.Path
	if len(request.Query) > 0 {
		requestURL += "?" + request.Query.Encode()
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.Method, requestURL, request.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: building request: %w", err)
	}
	for name, values := range request.Headers {
		for _, value := range values {
			httpRequest.Header.Add(name, value)
		}
	}
	if request.Body != nil {
		contentType := request.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		httpRequest.Header.Set("Content-Type", contentType)
	}
	httpRequest.Header.Set("Connection", "Upgrade")
	httpRequest.Header.Set("Upgrade", "tcp")

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	if err := httpRequest.Write(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: writing %s %s: %w", request.Method, request.Path, err)
	}

	reader := bufio.NewReader(conn)
	response, err := http.ReadResponse(reader, httpRequest)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: reading %s response: %w", request.Path, err)
	}

	// 101 is the upgrade acknowledgement; older daemons answer 200 and
	// switch protocols anyway.
	if response.StatusCode != http.StatusSwitchingProtocols && response.StatusCode != http.StatusOK {
		err := classify(response)
		conn.Close()
		return nil, err
	}

	c.logger.Debug("daemon connection hijacked",
		"method", request.Method,
		"path", request.Path,
		"status", response.StatusCode,
	)
	return &HijackedConn{Conn: conn, Reader: reader}, nil
}
