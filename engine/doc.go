// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine is a client for the Docker engine remote API.
//
// A [Client] is created from a [Config] or from the environment
// ([FromEnv] honors DOCKER_HOST, DOCKER_CERT_PATH and
// DOCKER_TLS_VERIFY) and exposes per-resource facades:
//
//	client, err := engine.FromEnv()
//	...
//	containers, err := client.Containers().List(ctx, engine.ContainerListOptions{All: true})
//
// Synchronous operations (list, inspect, create, start) issue one HTTP
// call and decode one JSON response. Streaming operations return lazy
// sequences: [MessageStream] for JSON document streams (events, pull
// and build progress, stats) and stream.Output for multiplexed or raw
// byte output (logs, attach, exec). Streams hold their connection
// until closed; abandoning one early by calling Close always releases
// it.
//
// Option types are plain structs with named fields. The zero value is
// always a valid "no options" request.
package engine
