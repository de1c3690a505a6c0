// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dockhand-project/dockhand/tarball"
	"github.com/dockhand-project/dockhand/transport"
)

// Images is the facade for image endpoints.
type Images struct {
	client *Client
}

// ImageListOptions controls GET /images/json.
type ImageListOptions struct {
	// All includes intermediate layers.
	All bool
	// Digests includes repo digests in the results.
	Digests bool
	// Filters restricts the listing, e.g. {"dangling": ["true"]}.
	Filters Filters
}

func (o ImageListOptions) values() url.Values {
	query := url.Values{}
	if o.All {
		query.Set("all", "true")
	}
	if o.Digests {
		query.Set("digests", "true")
	}
	if encoded := o.Filters.encode(); encoded != "" {
		query.Set("filters", encoded)
	}
	return query
}

// List returns images held by the daemon.
func (is *Images) List(ctx context.Context, options ImageListOptions) ([]ImageSummary, error) {
	var images []ImageSummary
	err := is.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/images/json",
		Query:  options.values(),
	}, &images)
	if err != nil {
		return nil, fmt.Errorf("engine: listing images: %w", err)
	}
	return images, nil
}

// Get returns a handle on an image by name, tag or digest.
func (is *Images) Get(name string) *Image {
	return &Image{client: is.client, name: name}
}

// PullOptions controls POST /images/create for a registry pull.
type PullOptions struct {
	// Image is the name to pull, e.g. "alpine".
	Image string
	// Tag restricts the pull to one tag. Empty pulls all tags.
	Tag string
	// Auth supplies registry credentials when required.
	Auth *RegistryAuth
}

// Pull pulls an image from a registry, returning the progress stream.
// The pull is not complete (and may yet fail, via an in-stream error
// message) until the stream ends.
func (is *Images) Pull(ctx context.Context, options PullOptions) (*MessageStream[ProgressMessage], error) {
	query := url.Values{}
	query.Set("fromImage", options.Image)
	if options.Tag != "" {
		query.Set("tag", options.Tag)
	}

	headers := http.Header{}
	if options.Auth != nil {
		headers.Set("X-Registry-Auth", options.Auth.header())
	}

	body, err := is.client.api.Stream(ctx, transport.Request{
		Method:  http.MethodPost,
		Path:    "/images/create",
		Query:   query,
		Headers: headers,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: pulling %s: %w", options.Image, err)
	}
	return newMessageStream[ProgressMessage](body), nil
}

// Import creates an image from a tarball of a root filesystem,
// supplied as an opaque byte stream.
func (is *Images) Import(ctx context.Context, archive io.Reader) (*MessageStream[ProgressMessage], error) {
	query := url.Values{}
	query.Set("fromSrc", "-")

	body, err := is.client.api.Stream(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        "/images/create",
		Query:       query,
		Body:        archive,
		ContentType: "application/x-tar",
	})
	if err != nil {
		return nil, fmt.Errorf("engine: importing image: %w", err)
	}
	return newMessageStream[ProgressMessage](body), nil
}

// BuildOptions controls POST /build.
type BuildOptions struct {
	// ContextDir is the build context directory, packaged as a
	// gzip-compressed tar and uploaded.
	ContextDir string
	// Dockerfile is the path of the Dockerfile within the context.
	// Empty means the daemon default.
	Dockerfile string
	// Tag names the built image (name:tag).
	Tag string
	// NoCache disables layer caching.
	NoCache bool
	// Pull always attempts to pull newer base images.
	Pull bool
	// Remove deletes intermediate containers after a successful build.
	Remove bool
	// BuildArgs are build-time variables.
	BuildArgs map[string]string
	// Labels are applied to the built image.
	Labels map[string]string
}

func (o BuildOptions) values() (url.Values, error) {
	query := url.Values{}
	if o.Dockerfile != "" {
		query.Set("dockerfile", o.Dockerfile)
	}
	if o.Tag != "" {
		query.Set("t", o.Tag)
	}
	if o.NoCache {
		query.Set("nocache", "true")
	}
	if o.Pull {
		query.Set("pull", "true")
	}
	if o.Remove {
		query.Set("rm", "true")
	}
	if len(o.BuildArgs) > 0 {
		encoded, err := jsonString(o.BuildArgs)
		if err != nil {
			return nil, err
		}
		query.Set("buildargs", encoded)
	}
	if len(o.Labels) > 0 {
		encoded, err := jsonString(o.Labels)
		if err != nil {
			return nil, err
		}
		query.Set("labels", encoded)
	}
	return query, nil
}

// Build builds an image from a context directory, returning the
// build output stream. The context is packaged and uploaded as a
// gzip-compressed tar; the daemon reports progress, build output and
// failures in-stream.
func (is *Images) Build(ctx context.Context, options BuildOptions) (*MessageStream[ProgressMessage], error) {
	query, err := options.values()
	if err != nil {
		return nil, fmt.Errorf("engine: building image: %w", err)
	}

	reader, writer := io.Pipe()
	go func() {
		writer.CloseWithError(tarball.Pack(options.ContextDir, writer))
	}()

	body, err := is.client.api.Stream(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        "/build",
		Query:       query,
		Body:        reader,
		ContentType: "application/x-tar",
	})
	if err != nil {
		reader.CloseWithError(err)
		return nil, fmt.Errorf("engine: building image: %w", err)
	}
	return newMessageStream[ProgressMessage](body), nil
}

// Search queries a registry for images matching term.
func (is *Images) Search(ctx context.Context, term string) ([]SearchResult, error) {
	query := url.Values{}
	query.Set("term", term)
	var results []SearchResult
	err := is.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/images/search",
		Query:  query,
	}, &results)
	if err != nil {
		return nil, fmt.Errorf("engine: searching for %q: %w", term, err)
	}
	return results, nil
}

// Image is a handle on one image.
type Image struct {
	client *Client
	name   string
}

// Name returns the image name this handle was created with.
func (i *Image) Name() string {
	return i.name
}

func (i *Image) path(suffix string) string {
	return "/images/" + url.PathEscape(i.name) + suffix
}

// Inspect returns detailed information about the image.
func (i *Image) Inspect(ctx context.Context) (*ImageDetails, error) {
	var details ImageDetails
	err := i.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   i.path("/json"),
	}, &details)
	if err != nil {
		return nil, fmt.Errorf("engine: inspecting image %s: %w", i.name, err)
	}
	return &details, nil
}

// History returns the image's layer history.
func (i *Image) History(ctx context.Context) ([]ImageHistory, error) {
	var history []ImageHistory
	err := i.client.api.JSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   i.path("/history"),
	}, &history)
	if err != nil {
		return nil, fmt.Errorf("engine: reading history of image %s: %w", i.name, err)
	}
	return history, nil
}

// ImageRemoveOptions controls DELETE /images/{name}.
type ImageRemoveOptions struct {
	// Force removes the image even when containers reference it.
	Force bool
	// NoPrune keeps untagged parent layers.
	NoPrune bool
}

// Remove deletes the image, reporting each untagged and deleted
// layer.
func (i *Image) Remove(ctx context.Context, options ImageRemoveOptions) ([]ImageDeleted, error) {
	query := url.Values{}
	if options.Force {
		query.Set("force", "true")
	}
	if options.NoPrune {
		query.Set("noprune", "true")
	}
	var deleted []ImageDeleted
	err := i.client.api.JSON(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   i.path(""),
		Query:  query,
	}, &deleted)
	if err != nil {
		return nil, fmt.Errorf("engine: removing image %s: %w", i.name, err)
	}
	return deleted, nil
}

// Tag applies a new repository:tag to the image.
func (i *Image) Tag(ctx context.Context, repository, tag string) error {
	query := url.Values{}
	query.Set("repo", repository)
	if tag != "" {
		query.Set("tag", tag)
	}
	err := i.client.api.JSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   i.path("/tag"),
		Query:  query,
	}, nil)
	if err != nil {
		return fmt.Errorf("engine: tagging image %s: %w", i.name, err)
	}
	return nil
}

// Export streams the image (its layers and metadata) as a tar
// archive. The caller owns the reader and must close it.
func (i *Image) Export(ctx context.Context) (io.ReadCloser, error) {
	body, err := i.client.api.Stream(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   i.path("/get"),
	})
	if err != nil {
		return nil, fmt.Errorf("engine: exporting image %s: %w", i.name, err)
	}
	return body, nil
}
