// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/dockhand-project/dockhand/transport"
)

// DefaultHost is the daemon endpoint used when none is configured.
const DefaultHost = "unix:///var/run/docker.sock"

// Config holds configuration for creating a Client.
type Config struct {
	// Host is the daemon URI (unix:///path, tcp://host:port,
	// https://host:port). If empty, DefaultHost is used.
	Host string
	// TLS points at client certificate material for an https host.
	// Required when Host uses the https scheme.
	TLS *transport.TLSOptions
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is the entrypoint for communicating with the daemon.
type Client struct {
	api    *transport.Client
	logger *slog.Logger
}

// NewClient creates a Client from explicit configuration.
func NewClient(config Config) (*Client, error) {
	host := config.Host
	if host == "" {
		host = DefaultHost
	}
	endpoint, err := transport.ParseEndpoint(host)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var tlsConfig *tls.Config
	if endpoint.Kind == transport.KindTLS {
		if config.TLS == nil {
			return nil, fmt.Errorf("engine: host %s requires TLS certificate configuration", host)
		}
		tlsConfig, err = transport.LoadTLS(*config.TLS)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}

	api, err := transport.NewClient(transport.Config{
		Endpoint: endpoint,
		TLS:      tlsConfig,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &Client{api: api, logger: logger}, nil
}

// FromEnv creates a Client from the conventional environment
// variables: DOCKER_HOST for the endpoint, DOCKER_CERT_PATH for the
// certificate directory, and DOCKER_TLS_VERIFY (any non-empty value)
// for peer verification.
func FromEnv() (*Client, error) {
	config := Config{Host: os.Getenv("DOCKER_HOST")}
	if certPath := os.Getenv("DOCKER_CERT_PATH"); certPath != "" {
		config.TLS = &transport.TLSOptions{
			CertDir:    certPath,
			VerifyPeer: os.Getenv("DOCKER_TLS_VERIFY") != "",
		}
	}
	return NewClient(config)
}

// Transport exposes the underlying transport client. Useful for
// observing connection lifecycle in tests and for callers that need
// endpoints this package does not wrap.
func (c *Client) Transport() *transport.Client {
	return c.api
}

// Containers returns the container facade.
func (c *Client) Containers() *Containers {
	return &Containers{client: c}
}

// Images returns the image facade.
func (c *Client) Images() *Images {
	return &Images{client: c}
}

// Networks returns the network facade.
func (c *Client) Networks() *Networks {
	return &Networks{client: c}
}

// Volumes returns the volume facade.
func (c *Client) Volumes() *Volumes {
	return &Volumes{client: c}
}

// Version returns version information for the daemon.
func (c *Client) Version(ctx context.Context) (*Version, error) {
	var version Version
	if err := c.api.JSON(ctx, transport.Request{Method: http.MethodGet, Path: "/version"}, &version); err != nil {
		return nil, fmt.Errorf("engine: version: %w", err)
	}
	return &version, nil
}

// Info returns system-wide information about the daemon.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.api.JSON(ctx, transport.Request{Method: http.MethodGet, Path: "/info"}, &info); err != nil {
		return nil, fmt.Errorf("engine: info: %w", err)
	}
	return &info, nil
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.Text(ctx, transport.Request{Method: http.MethodGet, Path: "/_ping"}); err != nil {
		return fmt.Errorf("engine: ping: %w", err)
	}
	return nil
}

// Events subscribes to the daemon's event feed. The stream runs until
// the daemon closes it, the until filter passes, or the caller closes
// the stream.
func (c *Client) Events(ctx context.Context, options EventsOptions) (*MessageStream[Event], error) {
	body, err := c.api.Stream(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/events",
		Query:  options.values(),
	})
	if err != nil {
		return nil, fmt.Errorf("engine: events: %w", err)
	}
	return newMessageStream[Event](body), nil
}
