// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport opens connections to a Docker engine daemon and
// issues HTTP requests over them.
//
// The daemon listens on either a Unix domain socket or a TCP address,
// optionally with TLS. [ParseEndpoint] resolves the configured URI into
// an [Endpoint]; [Client] dials one fresh connection per request (no
// pooling: connection exclusivity during a request is the correctness
// model for the daemon's socket transports) and exposes three call
// shapes:
//
//   - [Client.JSON] for small synchronous responses, read fully into
//     memory and decoded into a caller-supplied struct.
//   - [Client.Stream] for unbounded streaming responses (logs, events,
//     pull progress), returning the body as a reader once the status
//     line and headers have arrived.
//   - [Client.Hijack] for interactive attach, upgrading the connection
//     and handing the raw bidirectional socket to the caller.
//
// Requests to a Unix socket always carry the placeholder host "v1.x":
// the daemon's HTTP layer validates the Host header independently of
// how the bytes arrived.
//
// Non-2xx responses are classified into a typed [*APIError]; the
// transport never retries.
package transport
