// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/dockhand-project/dockhand/lib/netutil"
)

// unixHost is the placeholder Host header value sent on Unix socket
// requests. The daemon validates the Host header regardless of the
// actual transport, so every request must carry a fixed virtual host.
const unixHost = "v1.x"

// Config holds configuration for creating a Client.
type Config struct {
	// Endpoint is where the daemon listens.
	Endpoint Endpoint
	// TLS is the handshake configuration for a KindTLS endpoint.
	// Required when Endpoint.Kind is KindTLS, ignored otherwise.
	TLS *tls.Config
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client issues HTTP requests to the daemon. Each request dials a
// fresh connection and owns it exclusively until the response body is
// consumed or abandoned; there is no connection pool.
type Client struct {
	endpoint   Endpoint
	baseURL    string
	tlsConfig  *tls.Config
	httpClient *http.Client
	logger     *slog.Logger
	open       atomic.Int64
}

// NewClient creates a Client for the given endpoint.
func NewClient(config Config) (*Client, error) {
	if config.Endpoint.Kind == KindTLS && config.TLS == nil {
		return nil, fmt.Errorf("transport: endpoint %s requires TLS configuration", config.Endpoint)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		endpoint:  config.Endpoint,
		tlsConfig: config.TLS,
		logger:    logger,
	}

	// The base URL scheme is always http: for an encrypted endpoint
	// the dialer performs the TLS handshake itself, so the HTTP layer
	// treats the connection as an opaque byte stream. For Unix sockets
	// the authority is the fixed virtual host, not the socket path.
	switch config.Endpoint.Kind {
	case KindUnix:
		client.baseURL = "http://" + unixHost
	default:
		client.baseURL = "http://" + config.Endpoint.Address
	}

	client.httpClient = &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, address string) (net.Conn, error) {
				return client.dial(ctx)
			},
			// One connection per request. The connection is released
			// when the response body is fully read or closed.
			DisableKeepAlives:   true,
			MaxIdleConnsPerHost: -1,
		},
	}

	return client, nil
}

// Request describes one HTTP call against the daemon API.
type Request struct {
	// Method is the HTTP method.
	Method string
	// Path is the absolute API path, e.g. "/containers/json".
	Path string
	// Query holds query parameters. Repeated keys are preserved; the
	// API uses them for filter lists.
	Query url.Values
	// Headers holds additional request headers (e.g. X-Registry-Auth).
	Headers http.Header
	// Body is the request body, or nil. The transport writes it
	// verbatim; archive uploads are opaque bytes at this layer.
	Body io.Reader
	// ContentType is set as the Content-Type header when Body is
	// non-nil. Defaults to "application/json".
	ContentType string
}

// Endpoint returns the endpoint this client was created with.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// OpenConnections reports the number of daemon connections currently
// open. Abandoning a streaming response must bring this back to zero.
func (c *Client) OpenConnections() int {
	return int(c.open.Load())
}

// dial opens one connection to the daemon, performing the TLS
// handshake for encrypted endpoints before returning. The returned
// connection is counted until closed.
func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var (
		conn net.Conn
		err  error
	)
	switch c.endpoint.Kind {
	case KindUnix:
		conn, err = (&net.Dialer{}).DialContext(ctx, "unix", c.endpoint.SocketPath)
	case KindTCP:
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", c.endpoint.Address)
	case KindTLS:
		dialer := &tls.Dialer{Config: c.tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", c.endpoint.Address)
	}
	if err != nil {
		return nil, &ConnectionError{Endpoint: c.endpoint, Err: err}
	}

	c.open.Add(1)
	return &trackedConn{Conn: conn, open: &c.open}, nil
}

// trackedConn decrements the open-connection count exactly once when
// closed, however many times Close is called.
type trackedConn struct {
	net.Conn
	open *atomic.Int64
	once sync.Once
}

func (c *trackedConn) Close() error {
	c.once.Do(func() { c.open.Add(-1) })
	return c.Conn.Close()
}

// CloseWrite half-closes the write side when the underlying connection
// supports it (TCP and Unix sockets both do). Interactive attach uses
// this to signal end of stdin without tearing down the read side.
func (c *trackedConn) CloseWrite() error {
	if cw, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return fmt.Errorf("transport: connection does not support half-close")
}

// do sends the request and returns the response once the status line
// and headers have arrived. The body has not been read.
func (c *Client) do(ctx context.Context, request Request) (*http.Response, error) {
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

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("transport: %s %s: %w", request.Method, request.Path, err)
	}

	c.logger.Debug("daemon request",
		"method", request.Method,
		"path", request.Path,
		"status", response.StatusCode,
	)
	return response, nil
}

// JSON performs a request whose response is a single JSON document,
// read fully into memory and decoded into out. Pass a nil out to
// discard the body (endpoints that return 204 or an empty body).
func (c *Client) JSON(ctx context.Context, request Request, out any) error {
	response, err := c.do(ctx, request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if err := classify(response); err != nil {
		return err
	}
	if out == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := netutil.DecodeResponse(response.Body, out); err != nil {
		return fmt.Errorf("transport: decoding %s response: %w", request.Path, err)
	}
	return nil
}

// Text performs a request whose response is a small plain-text body.
func (c *Client) Text(ctx context.Context, request Request) (string, error) {
	response, err := c.do(ctx, request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if err := classify(response); err != nil {
		return "", err
	}
	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return "", fmt.Errorf("transport: reading %s response: %w", request.Path, err)
	}
	return string(body), nil
}

// Stream performs a request and returns the response body as a
// streaming handle. The caller owns the reader and must close it to
// release the connection; closing early (abandoning the stream) is
// always safe.
func (c *Client) Stream(ctx context.Context, request Request) (io.ReadCloser, error) {
	response, err := c.do(ctx, request)
	if err != nil {
		return nil, err
	}
	if err := classify(response); err != nil {
		return nil, err
	}
	return response.Body, nil
}

// classify maps a non-success response to a typed *APIError, consuming
// and closing the body. Success responses are left untouched.
func classify(response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	defer response.Body.Close()

	apiErr := &APIError{StatusCode: response.StatusCode}

	body, _ := netutil.ReadResponse(response.Body)
	// The daemon reports errors as {"message": "..."}. Fall back to
	// the raw body for proxies and older daemons.
	var wire struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Message != "" {
		apiErr.Message = wire.Message
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}
