// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ConnectionError reports a failure to establish a connection to the
// daemon: socket missing, host unreachable, connection refused, or TLS
// handshake failure. It is fatal for the request; the transport does
// not retry.
type ConnectionError struct {
	Endpoint Endpoint
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("transport: connecting to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// APIError is a non-success HTTP response from the daemon, classified
// by status code. Message carries the daemon's error text so the
// failure is actionable without re-running the request.
//
// Callers branch on the classification with the Is* predicates:
//
//	if transport.IsNotFound(err) { ... }
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Message is the daemon's error message, or the raw response body
	// when the daemon did not send its usual JSON error shape.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("daemon: %s: %s", http.StatusText(e.StatusCode), e.Message)
}

// IsNotFound reports whether err is a 404 from the daemon (missing
// container, image, network, or volume).
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is a 409 from the daemon (name in
// use, container in the wrong state for the operation).
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsBadParameter reports whether err is a 400 from the daemon.
func IsBadParameter(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

// IsServerError reports whether err is a 5xx from the daemon.
func IsServerError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}
