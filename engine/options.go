// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
)

// jsonBody marshals a request body for the transport.
func jsonBody(v any) (io.Reader, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(encoded), nil
}

// jsonString marshals a value destined for a JSON-in-query parameter
// (buildargs, labels).
func jsonString(v any) (string, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Filters collects the daemon's list-endpoint filters: a mapping from
// filter name to accepted values, e.g. {"label": ["env=prod"],
// "status": ["running", "paused"]}. Repeated values for one name are
// ORed by the daemon.
type Filters map[string][]string

// Add appends a value for a filter name.
func (f Filters) Add(name, value string) Filters {
	f[name] = append(f[name], value)
	return f
}

// encode serializes the filter set as the JSON document the API
// expects in the "filters" query parameter. Returns "" for an empty
// set so callers can omit the parameter entirely.
func (f Filters) encode() string {
	if len(f) == 0 {
		return ""
	}
	// Filter names and values are plain strings; marshaling a
	// map[string][]string cannot fail.
	encoded, _ := json.Marshal(f)
	return string(encoded)
}

// RegistryAuth carries registry credentials for pull, push, search and
// build. Either Username/Password or an IdentityToken from a prior
// login exchange.
type RegistryAuth struct {
	Username      string `json:"username,omitempty"`
	Password      string `json:"password,omitempty"`
	Email         string `json:"email,omitempty"`
	ServerAddress string `json:"serveraddress,omitempty"`
	IdentityToken string `json:"identitytoken,omitempty"`
}

// header serializes the credentials in the X-Registry-Auth wire form:
// base64url-encoded JSON. The transport attaches the value; credential
// lifecycle beyond that is the caller's concern.
func (a *RegistryAuth) header() string {
	encoded, _ := json.Marshal(a)
	return base64.URLEncoding.EncodeToString(encoded)
}

// EventsOptions filters the daemon event feed.
type EventsOptions struct {
	// Since and Until bound the feed by Unix timestamp. Zero means
	// unbounded on that side; with Until unset the feed follows until
	// closed.
	Since int64
	Until int64
	// Filters restricts the feed, e.g. {"type": ["container"],
	// "event": ["die"]}.
	Filters Filters
}

func (o EventsOptions) values() url.Values {
	query := url.Values{}
	if o.Since != 0 {
		query.Set("since", strconv.FormatInt(o.Since, 10))
	}
	if o.Until != 0 {
		query.Set("until", strconv.FormatInt(o.Until, 10))
	}
	if encoded := o.Filters.encode(); encoded != "" {
		query.Set("filters", encoded)
	}
	return query
}
