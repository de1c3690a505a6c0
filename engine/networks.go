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

// Networks is the facade for network endpoints.
type Networks struct {
	client *Client
}

// NetworkListOptions controls GET /networks.
type NetworkListOptions struct {
	// Filters restricts the listing, e.g. {"driver": ["bridge"]}.
	Filters Filters
}

// List returns networks known to the daemon.
func (ns *Networks) List(ctx context.Context, options NetworkListOptions) ([]NetworkResource, error) {
	query := url.Values{}
	if encoded := options.Filters.encode(); encoded != "" {
		query.Set("filters", encoded)
	}
	var networks []NetworkResource
	err := ns.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/networks",
		Query:  query,
	}, &networks)
	if err != nil {
		return nil, fmt.Errorf("engine: listing networks: %w", err)
	}
	return networks, nil
}

// Get returns a handle on a network by ID or name.
func (ns *Networks) Get(id string) *Network {
	return &Network{client: ns.client, id: id}
}

// NetworkCreateOptions is the body of POST /networks/create.
type NetworkCreateOptions struct {
	Name       string            `json:"Name"`
	Driver     string            `json:"Driver,omitempty"`
	Internal   bool              `json:"Internal,omitempty"`
	Attachable bool              `json:"Attachable,omitempty"`
	EnableIPv6 bool              `json:"EnableIPv6,omitempty"`
	IPAM       *IPAM             `json:"IPAM,omitempty"`
	Options    map[string]string `json:"Options,omitempty"`
	Labels     map[string]string `json:"Labels,omitempty"`
}

// Create creates a network.
func (ns *Networks) Create(ctx context.Context, options NetworkCreateOptions) (*NetworkCreated, error) {
	body, err := jsonBody(options)
	if err != nil {
		return nil, fmt.Errorf("engine: creating network %s: %w", options.Name, err)
	}
	var created NetworkCreated
	err = ns.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/networks/create",
		Body:   body,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("engine: creating network %s: %w", options.Name, err)
	}
	return &created, nil
}

// Network is a handle on one network.
type Network struct {
	client *Client
	id     string
}

// ID returns the network ID or name this handle was created with.
func (n *Network) ID() string {
	return n.id
}

func (n *Network) path(suffix string) string {
	return "/networks/" + url.PathEscape(n.id) + suffix
}

// Inspect returns detailed information about the network.
func (n *Network) Inspect(ctx context.Context) (*NetworkResource, error) {
	var details NetworkResource
	err := n.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   n.path(""),
	}, &details)
	if err != nil {
		return nil, fmt.Errorf("engine: inspecting network %s: %w", n.id, err)
	}
	return &details, nil
}

// Remove deletes the network.
func (n *Network) Remove(ctx context.Context) error {
	err := n.client.api.JSON(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   n.path(""),
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: removing network %s: %w", n.id, err)
	}
	return nil
}

// Connect attaches a container to the network.
func (n *Network) Connect(ctx context.Context, containerID string) error {
	body, err := jsonBody(map[string]string{"Container": containerID})
	if err != nil {
		return fmt.Errorf("engine: connecting %s to network %s: %w", containerID, n.id, err)
	}
	err = n.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   n.path("/connect"),
		Body:   body,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: connecting %s to network %s: %w", containerID, n.id, err)
	}
	return nil
}

// Disconnect detaches a container from the network.
func (n *Network) Disconnect(ctx context.Context, containerID string, force bool) error {
	body, err := jsonBody(map[string]any{"Container": containerID, "Force": force})
	if err != nil {
		return fmt.Errorf("engine: disconnecting %s from network %s: %w", containerID, n.id, err)
	}
	err = n.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   n.path("/disconnect"),
		Body:   body,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: disconnecting %s from network %s: %w", containerID, n.id, err)
	}
	return nil
}
