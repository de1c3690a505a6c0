// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dockhand-project/dockhand/transport"
)

// Volumes is the facade for volume endpoints.
type Volumes struct {
	client *Client
}

// List returns volumes known to the daemon.
func (vs *Volumes) List(ctx context.Context) (*VolumeList, error) {
	var list VolumeList
	err := vs.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/volumes",
	}, &list)
	if err != nil {
		return nil, fmt.Errorf("engine: listing volumes: %w", err)
	}
	return &list, nil
}

// VolumeCreateOptions is the body of POST /volumes/create.
type VolumeCreateOptions struct {
	// Name is the volume name. Optional; the daemon generates one
	// when empty.
	Name       string            `json:"Name,omitempty"`
	Driver     string            `json:"Driver,omitempty"`
	DriverOpts map[string]string `json:"DriverOpts,omitempty"`
	Labels     map[string]string `json:"Labels,omitempty"`
}

// Create creates a volume. Creating an existing name returns the
// existing volume unchanged.
func (vs *Volumes) Create(ctx context.Context, options VolumeCreateOptions) (*Volume, error) {
	body, err := jsonBody(options)
	if err != nil {
		return nil, fmt.Errorf("engine: creating volume: %w", err)
	}
	var volume Volume
	err = vs.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/volumes/create",
		Body:   body,
	}, &volume)
	if err != nil {
		return nil, fmt.Errorf("engine: creating volume: %w", err)
	}
	return &volume, nil
}

// Get returns a handle on a volume by name.
func (vs *Volumes) Get(name string) *VolumeHandle {
	return &VolumeHandle{client: vs.client, name: name}
}

// VolumeHandle is a handle on one volume.
type VolumeHandle struct {
	client *Client
	name   string
}

// Name returns the volume name this handle was created with.
func (v *VolumeHandle) Name() string {
	return v.name
}

// Inspect returns detailed information about the volume.
func (v *VolumeHandle) Inspect(ctx context.Context) (*Volume, error) {
	var volume Volume
	err := v.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/volumes/" + url.PathEscape(v.name),
	}, &volume)
	if err != nil {
		return nil, fmt.Errorf("engine: inspecting volume %s: %w", v.name, err)
	}
	return &volume, nil
}

// Remove deletes the volume.
func (v *VolumeHandle) Remove(ctx context.Context, force bool) error {
	query := url.Values{}
	if force {
		query.Set("force", "true")
	}
	err := v.client.api.JSON(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   "/volumes/" + url.PathEscape(v.name),
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: removing volume %s: %w", v.name, err)
	}
	return nil
}
