// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dockhand-project/dockhand/stream"
	"github.com/dockhand-project/dockhand/transport"
)

// Containers is the facade for container endpoints.
type Containers struct {
	client *Client
}

// ContainerListOptions controls GET /containers/json.
type ContainerListOptions struct {
	// All includes stopped containers. Default is running only.
	All bool
	// Limit caps the number of results, newest first. Zero means no
	// limit.
	Limit int
	// Since and Before restrict results to containers created after /
	// before the named container.
	Since  string
	Before string
	// Sized includes SizeRw/SizeRootFs in the results.
	Sized bool
	// Filters restricts the listing, e.g. {"status": ["exited"]}.
	Filters Filters
}

func (o ContainerListOptions) values() url.Values {
	query := url.Values{}
	if o.All {
		query.Set("all", "true")
	}
	if o.Limit > 0 {
		query.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Since != "" {
		query.Set("since", o.Since)
	}
	if o.Before != "" {
		query.Set("before", o.Before)
	}
	if o.Sized {
		query.Set("size", "true")
	}
	if encoded := o.Filters.encode(); encoded != "" {
		query.Set("filters", encoded)
	}
	return query
}

// List returns containers known to the daemon.
func (cs *Containers) List(ctx context.Context, options ContainerListOptions) ([]ContainerSummary, error) {
	var containers []ContainerSummary
	err := cs.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/containers/json",
		Query:  options.values(),
	}, &containers)
	if err != nil {
		return nil, fmt.Errorf("engine: listing containers: %w", err)
	}
	return containers, nil
}

// Get returns a handle on a container by ID or name. No request is
// made; a missing container surfaces as NotFound on the first
// operation.
func (cs *Containers) Get(id string) *Container {
	return &Container{client: cs.client, id: id}
}

// ContainerCreateOptions is the body of POST /containers/create plus
// the name query parameter. Field names follow the wire format.
type ContainerCreateOptions struct {
	// Name is the container name. Optional; the daemon generates one
	// when empty.
	Name string `json:"-"`

	Config ContainerConfig `json:"-"`
}

// ContainerConfig is the creation body: process configuration at the
// top level and host-side settings under HostConfig.
type ContainerConfig struct {
	Image        string              `json:"Image"`
	Hostname     string              `json:"Hostname,omitempty"`
	User         string              `json:"User,omitempty"`
	Env          []string            `json:"Env,omitempty"`
	Cmd          []string            `json:"Cmd,omitempty"`
	Entrypoint   []string            `json:"Entrypoint,omitempty"`
	WorkingDir   string              `json:"WorkingDir,omitempty"`
	Labels       map[string]string   `json:"Labels,omitempty"`
	ExposedPorts map[string]struct{} `json:"ExposedPorts,omitempty"`
	Volumes      map[string]struct{} `json:"Volumes,omitempty"`
	AttachStdin  bool                `json:"AttachStdin,omitempty"`
	AttachStdout bool                `json:"AttachStdout,omitempty"`
	AttachStderr bool                `json:"AttachStderr,omitempty"`
	OpenStdin    bool                `json:"OpenStdin,omitempty"`
	StdinOnce    bool                `json:"StdinOnce,omitempty"`
	Tty          bool                `json:"Tty,omitempty"`
	StopSignal   string              `json:"StopSignal,omitempty"`
	StopTimeout  *int                `json:"StopTimeout,omitempty"`
	HostConfig   HostConfig          `json:"HostConfig,omitempty"`
}

// HostConfig is the host-side settings block of a container creation.
type HostConfig struct {
	Binds           []string                 `json:"Binds,omitempty"`
	PortBindings    map[string][]PortBinding `json:"PortBindings,omitempty"`
	PublishAllPorts bool                     `json:"PublishAllPorts,omitempty"`
	Links           []string                 `json:"Links,omitempty"`
	Memory          int64                    `json:"Memory,omitempty"`
	MemorySwap      int64                    `json:"MemorySwap,omitempty"`
	NanoCPUs        int64                    `json:"NanoCpus,omitempty"`
	CPUShares       int64                    `json:"CpuShares,omitempty"`
	CapAdd          []string                 `json:"CapAdd,omitempty"`
	Devices         []DeviceMapping          `json:"Devices,omitempty"`
	ExtraHosts      []string                 `json:"ExtraHosts,omitempty"`
	VolumesFrom     []string                 `json:"VolumesFrom,omitempty"`
	NetworkMode     string                   `json:"NetworkMode,omitempty"`
	RestartPolicy   *RestartPolicy           `json:"RestartPolicy,omitempty"`
	AutoRemove      bool                     `json:"AutoRemove,omitempty"`
	Privileged      bool                     `json:"Privileged,omitempty"`
	UsernsMode      string                   `json:"UsernsMode,omitempty"`
	LogConfig       *LogConfig               `json:"LogConfig,omitempty"`
}

// PortBinding maps one container port to a host address.
type PortBinding struct {
	HostIP   string `json:"HostIp,omitempty"`
	HostPort string `json:"HostPort,omitempty"`
}

// DeviceMapping passes a host device into the container.
type DeviceMapping struct {
	PathOnHost        string `json:"PathOnHost"`
	PathInContainer   string `json:"PathInContainer"`
	CgroupPermissions string `json:"CgroupPermissions,omitempty"`
}

// RestartPolicy controls automatic restarts.
type RestartPolicy struct {
	Name              string `json:"Name"`
	MaximumRetryCount int    `json:"MaximumRetryCount,omitempty"`
}

// LogConfig selects the daemon-side log driver.
type LogConfig struct {
	Type   string            `json:"Type"`
	Config map[string]string `json:"Config,omitempty"`
}

// Create creates a container. The container is not started.
func (cs *Containers) Create(ctx context.Context, options ContainerCreateOptions) (*ContainerCreated, error) {
	query := url.Values{}
	if options.Name != "" {
		query.Set("name", options.Name)
	}

	body, err := jsonBody(options.Config)
	if err != nil {
		return nil, fmt.Errorf("engine: creating container: %w", err)
	}

	var created ContainerCreated
	err = cs.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/containers/create",
		Query:  query,
		Body:   body,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("engine: creating container: %w", err)
	}
	return &created, nil
}

// Container is a handle on one container.
type Container struct {
	client *Client
	id     string
}

// ID returns the container ID or name this handle was created with.
func (c *Container) ID() string {
	return c.id
}

func (c *Container) path(suffix string) string {
	return "/containers/" + url.PathEscape(c.id) + suffix
}

// Inspect returns detailed information about the container.
func (c *Container) Inspect(ctx context.Context) (*ContainerDetails, error) {
	var details ContainerDetails
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.path("/json"),
	}, &details)
	if err != nil {
		return nil, fmt.Errorf("engine: inspecting container %s: %w", c.id, err)
	}
	return &details, nil
}

// Start starts the container.
func (c *Container) Start(ctx context.Context) error {
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/start"),
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: starting container %s: %w", c.id, err)
	}
	return nil
}

// Stop stops the container, giving it timeoutSeconds to exit before
// the daemon kills it. Pass a negative value to use the container's
// configured stop timeout.
func (c *Container) Stop(ctx context.Context, timeoutSeconds int) error {
	query := url.Values{}
	if timeoutSeconds >= 0 {
		query.Set("t", strconv.Itoa(timeoutSeconds))
	}
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/stop"),
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: stopping container %s: %w", c.id, err)
	}
	return nil
}

// Restart stops and restarts the container.
func (c *Container) Restart(ctx context.Context, timeoutSeconds int) error {
	query := url.Values{}
	if timeoutSeconds >= 0 {
		query.Set("t", strconv.Itoa(timeoutSeconds))
	}
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/restart"),
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: restarting container %s: %w", c.id, err)
	}
	return nil
}

// Kill sends a signal to the container's main process. An empty
// signal means SIGKILL.
func (c *Container) Kill(ctx context.Context, signal string) error {
	query := url.Values{}
	if signal != "" {
		query.Set("signal", signal)
	}
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/kill"),
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: killing container %s: %w", c.id, err)
	}
	return nil
}

// Rename renames the container.
func (c *Container) Rename(ctx context.Context, name string) error {
	query := url.Values{}
	query.Set("name", name)
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/rename"),
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: renaming container %s: %w", c.id, err)
	}
	return nil
}

// Pause suspends all processes in the container.
func (c *Container) Pause(ctx context.Context) error {
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/pause"),
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: pausing container %s: %w", c.id, err)
	}
	return nil
}

// Unpause resumes a paused container.
func (c *Container) Unpause(ctx context.Context) error {
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/unpause"),
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: unpausing container %s: %w", c.id, err)
	}
	return nil
}

// Wait blocks until the container exits and returns its exit status.
func (c *Container) Wait(ctx context.Context) (*Exit, error) {
	var exit Exit
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.path("/wait"),
	}, &exit)
	if err != nil {
		return nil, fmt.Errorf("engine: waiting for container %s: %w", c.id, err)
	}
	return &exit, nil
}

// ContainerRemoveOptions controls DELETE /containers/{id}.
type ContainerRemoveOptions struct {
	// Force removes a running container (the daemon kills it first).
	Force bool
	// Volumes also removes anonymous volumes owned by the container.
	Volumes bool
	// Link removes the named link instead of the container.
	Link bool
}

// Remove deletes the container.
func (c *Container) Remove(ctx context.Context, options ContainerRemoveOptions) error {
	query := url.Values{}
	if options.Force {
		query.Set("force", "true")
	}
	if options.Volumes {
		query.Set("v", "true")
	}
	if options.Link {
		query.Set("link", "true")
	}
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   c.path(""),
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: removing container %s: %w", c.id, err)
	}
	return nil
}

// Top lists processes running inside the container. psArgs are passed
// to ps; empty means the daemon default ("-ef").
func (c *Container) Top(ctx context.Context, psArgs string) (*Top, error) {
	query := url.Values{}
	if psArgs != "" {
		query.Set("ps_args", psArgs)
	}
	var top Top
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.path("/top"),
		Query:  query,
	}, &top)
	if err != nil {
		return nil, fmt.Errorf("engine: listing processes in container %s: %w", c.id, err)
	}
	return &top, nil
}

// Changes lists filesystem changes relative to the container's image.
func (c *Container) Changes(ctx context.Context) ([]Change, error) {
	var changes []Change
	err := c.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.path("/changes"),
	}, &changes)
	if err != nil {
		return nil, fmt.Errorf("engine: listing changes in container %s: %w", c.id, err)
	}
	return changes, nil
}

// Export streams the container's filesystem as a tar archive. The
// caller owns the reader and must close it.
func (c *Container) Export(ctx context.Context) (io.ReadCloser, error) {
	body, err := c.client.api.Stream(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.path("/export"),
	})
	if err != nil {
		return nil, fmt.Errorf("engine: exporting container %s: %w", c.id, err)
	}
	return body, nil
}

// Stats subscribes to the container's per-second stats samples. The
// stream runs until closed.
func (c *Container) Stats(ctx context.Context) (*MessageStream[Stats], error) {
	body, err := c.client.api.Stream(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.path("/stats"),
	})
	if err != nil {
		return nil, fmt.Errorf("engine: streaming stats for container %s: %w", c.id, err)
	}
	return newMessageStream[Stats](body), nil
}

// LogsOptions controls GET /containers/{id}/logs.
type LogsOptions struct {
	// Follow keeps the stream open for new output.
	Follow bool
	// Stdout and Stderr select which streams to return. At least one
	// must be set or the daemon rejects the request.
	Stdout bool
	Stderr bool
	// Timestamps prefixes each line with its RFC3339Nano timestamp.
	Timestamps bool
	// Tail limits output to the last N lines ("all" or a number).
	Tail string
	// Since bounds output by Unix timestamp.
	Since int64
	// TTY must mirror the container's Tty setting: a container with an
	// allocated pseudo-terminal sends raw bytes with no framing, one
	// without sends the multiplexed frame stream. The daemon does not
	// announce the shape; the caller carries it on the request.
	TTY bool
}

func (o LogsOptions) values() url.Values {
	query := url.Values{}
	if o.Follow {
		query.Set("follow", "true")
	}
	if o.Stdout {
		query.Set("stdout", "true")
	}
	if o.Stderr {
		query.Set("stderr", "true")
	}
	if o.Timestamps {
		query.Set("timestamps", "true")
	}
	if o.Tail != "" {
		query.Set("tail", o.Tail)
	}
	if o.Since != 0 {
		query.Set("since", strconv.FormatInt(o.Since, 10))
	}
	return query
}

// Logs streams the container's output.
func (c *Container) Logs(ctx context.Context, options LogsOptions) (*stream.Output, error) {
	body, err := c.client.api.Stream(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.path("/logs"),
		Query:  options.values(),
	})
	if err != nil {
		return nil, fmt.Errorf("engine: streaming logs for container %s: %w", c.id, err)
	}
	return stream.NewOutput(body, !options.TTY), nil
}

// CopyFrom streams a file or directory out of the container as a tar
// archive. The caller owns the reader and must close it.
func (c *Container) CopyFrom(ctx context.Context, containerPath string) (io.ReadCloser, error) {
	query := url.Values{}
	query.Set("path", containerPath)
	body, err := c.client.api.Stream(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   c.path("/archive"),
		Query:  query,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: copying %s from container %s: %w", containerPath, c.id, err)
	}
	return body, nil
}

// CopyTo extracts a tar archive into the container at containerPath.
// The archive bytes are written verbatim; the client does not
// interpret them.
func (c *Container) CopyTo(ctx context.Context, archive io.Reader, containerPath string) error {
	query := url.Values{}
	query.Set("path", containerPath)
	err := c.client.api.JSON(ctx, transport.Request{
		Method:      http.MethodPut,
		Path:        c.path("/archive"),
		Query:       query,
		Body:        archive,
		ContentType: "application/x-tar",
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: copying into container %s at %s: %w", c.id, containerPath, err)
	}
	return nil
}
