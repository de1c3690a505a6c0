// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dockhand-project/dockhand/lib/testutil"
)

// startUnixServer serves handler on a Unix socket and returns a client
// pointed at it. The server and client are torn down with the test.
func startUnixServer(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	socketPath := filepath.Join(testutil.SocketDir(t), "daemon.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listening on %s: %v", socketPath, err)
	}

	server := &http.Server{Handler: handler}
	go server.Serve(listener)
	t.Cleanup(func() { server.Close() })

	client, err := NewClient(Config{
		Endpoint: Endpoint{Kind: KindUnix, SocketPath: socketPath},
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return client
}

// waitForRelease polls until the client reports no open connections.
// Connection teardown races the response-body close, so a single
// immediate check would flake.
func waitForRelease(t *testing.T, client *Client) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if client.OpenConnections() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("connection not released: %d still open", client.OpenConnections())
}

func TestClientUnixVirtualHost(t *testing.T) {
	hostHeader := make(chan string, 1)
	client := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hostHeader <- r.Host
		fmt.Fprint(w, `{"ok":true}`)
	}))

	var out map[string]any
	err := client.JSON(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/_ping",
	}, &out)
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	host := testutil.RequireReceive(t, hostHeader, time.Second, "host header")
	if host != "v1.x" {
		t.Errorf("Host header = %q, want %q", host, "v1.x")
	}
}

func TestClientJSONRequest(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	client := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/widgets/create" {
			t.Errorf("path = %s, want /widgets/create", r.URL.Path)
		}
		if got := r.URL.Query().Get("tag"); got != "latest" {
			t.Errorf("tag query = %q, want latest", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		var in payload
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		json.NewEncoder(w).Encode(payload{Name: in.Name + "-created"})
	}))

	body, err := json.Marshal(payload{Name: "widget"})
	if err != nil {
		t.Fatal(err)
	}

	var out payload
	err = client.JSON(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/widgets/create",
		Query:  map[string][]string{"tag": {"latest"}},
		Body:   strings.NewReader(string(body)),
	}, &out)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if out.Name != "widget-created" {
		t.Errorf("response name = %q", out.Name)
	}
}

func TestClientErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		predicate func(error) bool
		message   string
	}{
		{
			name:      "404 empty body",
			status:    http.StatusNotFound,
			body:      "",
			predicate: IsNotFound,
		},
		{
			name:      "404 json message",
			status:    http.StatusNotFound,
			body:      `{"message":"No such container: abc123"}`,
			predicate: IsNotFound,
			message:   "No such container: abc123",
		},
		{
			name:      "400",
			status:    http.StatusBadRequest,
			body:      `{"message":"invalid filter"}`,
			predicate: IsBadParameter,
			message:   "invalid filter",
		},
		{
			name:      "409",
			status:    http.StatusConflict,
			body:      `{"message":"name already in use"}`,
			predicate: IsConflict,
			message:   "name already in use",
		},
		{
			name:      "500 non-json body",
			status:    http.StatusInternalServerError,
			body:      "boom",
			predicate: IsServerError,
			message:   "boom",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				io.WriteString(w, test.body)
			}))

			err := client.JSON(context.Background(), Request{
				Method: http.MethodGet,
				Path:   "/fail",
			}, nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !test.predicate(err) {
				t.Errorf("predicate rejected %v", err)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error is not *APIError: %v", err)
			}
			if apiErr.StatusCode != test.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, test.status)
			}
			if apiErr.Message != test.message {
				t.Errorf("message = %q, want %q", apiErr.Message, test.message)
			}
		})
	}
}

func TestClientPredicatesDistinguishStatuses(t *testing.T) {
	notFound := &APIError{StatusCode: http.StatusNotFound}
	if IsConflict(notFound) || IsBadParameter(notFound) || IsServerError(notFound) {
		t.Error("404 matched a non-404 predicate")
	}
	if IsNotFound(errors.New("plain error")) {
		t.Error("predicate matched a plain error")
	}
	wrapped := fmt.Errorf("engine: inspecting container: %w", notFound)
	if !IsNotFound(wrapped) {
		t.Error("predicate did not see through wrapping")
	}
}

func TestClientConnectionError(t *testing.T) {
	client, err := NewClient(Config{
		Endpoint: Endpoint{Kind: KindUnix, SocketPath: "/nonexistent/daemon.sock"},
	})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	err = client.JSON(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/_ping",
	}, nil)
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %v", err)
	}
	if connErr.Endpoint.SocketPath != "/nonexistent/daemon.sock" {
		t.Errorf("error endpoint = %+v", connErr.Endpoint)
	}
}

func TestClientTLSRequiresConfig(t *testing.T) {
	_, err := NewClient(Config{
		Endpoint: Endpoint{Kind: KindTLS, Address: "daemon.internal:2376"},
	})
	if err == nil {
		t.Fatal("expected an error for TLS endpoint without TLS configuration")
	}
}

func TestClientStreamReleasesConnection(t *testing.T) {
	client := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		// A long stream the client will abandon partway through.
		for i := 0; i < 1000; i++ {
			fmt.Fprintf(w, `{"status":"event %d"}`+"\n", i)
			flusher.Flush()
			select {
			case <-r.Context().Done():
				return
			default:
			}
		}
	}))

	stream, err := client.Stream(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/events",
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}

	buffer := make([]byte, 64)
	if _, err := stream.Read(buffer); err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	if client.OpenConnections() != 1 {
		t.Errorf("open connections = %d during stream, want 1", client.OpenConnections())
	}

	// Abandon the stream. The connection must be released even though
	// the server had more to send.
	if err := stream.Close(); err != nil {
		t.Fatalf("closing stream: %v", err)
	}
	waitForRelease(t, client)
}

func TestClientJSONReleasesConnection(t *testing.T) {
	client := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))

	for i := 0; i < 3; i++ {
		var out map[string]any
		if err := client.JSON(context.Background(), Request{
			Method: http.MethodGet,
			Path:   "/_ping",
		}, &out); err != nil {
			t.Fatalf("request: %v", err)
		}
	}
	waitForRelease(t, client)
}

func TestClientText(t *testing.T) {
	client := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "OK")
	}))

	body, err := client.Text(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/_ping",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body != "OK" {
		t.Errorf("body = %q, want OK", body)
	}
}

func TestClientContextCancellation(t *testing.T) {
	client := startUnixServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.JSON(ctx, Request{Method: http.MethodGet, Path: "/slow"}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	waitForRelease(t, client)
}
