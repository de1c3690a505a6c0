// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dockhand-project/dockhand/stream"
	"github.com/dockhand-project/dockhand/transport"
)

// ExecCreateOptions is the body of POST /containers/{id}/exec.
type ExecCreateOptions struct {
	Cmd          []string `json:"Cmd"`
	Env          []string `json:"Env,omitempty"`
	User         string   `json:"User,omitempty"`
	WorkingDir   string   `json:"WorkingDir,omitempty"`
	AttachStdin  bool     `json:"AttachStdin,omitempty"`
	AttachStdout bool     `json:"AttachStdout,omitempty"`
	AttachStderr bool     `json:"AttachStderr,omitempty"`
	Tty          bool     `json:"Tty,omitempty"`
	Privileged   bool     `json:"Privileged,omitempty"`
	DetachKeys   string   `json:"DetachKeys,omitempty"`
}

// ExecCreate creates an exec instance in a running container. The
// command does not run until Start is called on the returned handle.
func (c *Container) ExecCreate(ctx context.Context, options ExecCreateOptions) (*Exec, error) {
	body, err := jsonBody(options)
	if err != nil {
		return nil, fmt.Errorf("engine: creating exec in container %s: %w", c.id, err)
	}

	var created ExecCreated
	err = c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/exec"),
		Body:   body,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("engine: creating exec in container %s: %w", c.id, err)
	}
	return &Exec{client: c.client, id: created.ID, tty: options.Tty}, nil
}

// Exec is a handle on one exec instance.
type Exec struct {
	client *Client
	id     string
	tty    bool
}

// ID returns the exec instance ID.
func (e *Exec) ID() string {
	return e.id
}

func (e *Exec) path(suffix string) string {
	return "/exec/" + url.PathEscape(e.id) + suffix
}

// Start runs the exec command and streams its output. The output
// shape (framed or raw) follows the Tty setting the instance was
// created with.
func (e *Exec) Start(ctx context.Context) (*stream.Output, error) {
	body, err := jsonBody(map[string]bool{"Detach": false, "Tty": e.tty})
	if err != nil {
		return nil, fmt.Errorf("engine: starting exec %s: %w", e.id, err)
	}

	output, err := e.client.api.Stream(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   e.path("/start"),
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: starting exec %s: %w", e.id, err)
	}
	return stream.NewOutput(output, !e.tty), nil
}

// StartDetached runs the exec command without attaching to its output.
func (e *Exec) StartDetached(ctx context.Context) error {
	body, err := jsonBody(map[string]bool{"Detach": true, "Tty": e.tty})
	if err != nil {
		return fmt.Errorf("engine: starting exec %s: %w", e.id, err)
	}
	err = e.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   e.path("/start"),
		Body:   body,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: starting exec %s: %w", e.id, err)
	}
	return nil
}

// Inspect returns the state of the exec instance, including the exit
// code once the command has finished.
func (e *Exec) Inspect(ctx context.Context) (*ExecDetails, error) {
	var details ExecDetails
	err := e.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   e.path("/json"),
	}, &details)
	if err != nil {
		return nil, fmt.Errorf("engine: inspecting exec %s: %w", e.id, err)
	}
	return &details, nil
}

// Resize resizes the exec instance's pseudo-terminal.
func (e *Exec) Resize(ctx context.Context, width, height int) error {
	query := url.Values{}
	query.Set("w", strconv.Itoa(width))
	query.Set("h", strconv.Itoa(height))
	err := e.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   e.path("/resize"),
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: resizing exec %s: %w", e.id, err)
	}
	return nil
}
