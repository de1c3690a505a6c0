// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"
	"strings"
)

// Kind identifies how the daemon is reached.
type Kind int

const (
	// KindUnix is a Unix domain socket on the local filesystem.
	KindUnix Kind = iota
	// KindTCP is a plain TCP connection.
	KindTCP
	// KindTLS is a TCP connection with a TLS handshake performed
	// before any HTTP bytes are written.
	KindTLS
)

// Endpoint describes where the daemon listens. It is resolved once at
// client creation and never mutated.
type Endpoint struct {
	// Kind selects the transport.
	Kind Kind
	// SocketPath is the filesystem path of the Unix socket. Set only
	// when Kind is KindUnix.
	SocketPath string
	// Address is the "host:port" authority. Set for KindTCP and
	// KindTLS.
	Address string
}

// ParseEndpoint resolves a daemon URI into an Endpoint.
//
// Supported schemes:
//   - unix:///var/run/docker.sock
//   - tcp://host:2375 and http://host:2375 (plain TCP)
//   - https://host:2376 (TLS)
func ParseEndpoint(uri string) (Endpoint, error) {
	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q has no scheme", uri)
	}
	if rest == "" {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q has no authority", uri)
	}

	switch scheme {
	case "unix":
		return Endpoint{Kind: KindUnix, SocketPath: rest}, nil
	case "tcp", "http":
		return Endpoint{Kind: KindTCP, Address: rest}, nil
	case "https":
		return Endpoint{Kind: KindTLS, Address: rest}, nil
	default:
		return Endpoint{}, fmt.Errorf("transport: unsupported endpoint scheme %q", scheme)
	}
}

// String returns the endpoint in URI form.
func (e Endpoint) String() string {
	switch e.Kind {
	case KindUnix:
		return "unix://" + e.SocketPath
	case KindTLS:
		return "https://" + e.Address
	default:
		return "tcp://" + e.Address
	}
}
