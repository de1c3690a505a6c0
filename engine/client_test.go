// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/dockhand-project/dockhand/lib/testutil"
	"github.com/dockhand-project/dockhand/transport"
)

// startDaemon serves handler on a Unix socket and returns an engine
// client pointed at it.
func startDaemon(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	socketPath := filepath.Join(testutil.SocketDir(t), "daemon.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listening on %s: %v", socketPath, err)
	}

	server := &http.Server{Handler: handler}
	go server.Serve(listener)
	t.Cleanup(func() { server.Close() })

	client, err := NewClient(Config{Host: "unix://" + socketPath})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return client
}

// daemonMux builds a handler from path patterns, failing the test on
// any unexpected request.
func daemonMux(t *testing.T, routes map[string]http.HandlerFunc) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL)
		http.NotFound(w, r)
	})
	return mux
}

func TestNewClientDefaultsHost(t *testing.T) {
	client, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	endpoint := client.Transport().Endpoint()
	if endpoint.Kind != transport.KindUnix || endpoint.SocketPath != "/var/run/docker.sock" {
		t.Errorf("default endpoint = %+v", endpoint)
	}
}

func TestNewClientRejectsHTTPSWithoutCerts(t *testing.T) {
	_, err := NewClient(Config{Host: "https://daemon.internal:2376"})
	if err == nil {
		t.Fatal("expected an error for https host without certificates")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("DOCKER_HOST", "tcp://127.0.0.1:2375")
	t.Setenv("DOCKER_CERT_PATH", "")
	t.Setenv("DOCKER_TLS_VERIFY", "")

	client, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	endpoint := client.Transport().Endpoint()
	if endpoint.Kind != transport.KindTCP || endpoint.Address != "127.0.0.1:2375" {
		t.Errorf("endpoint = %+v", endpoint)
	}
}

func TestFromEnvEmptyUsesDefault(t *testing.T) {
	t.Setenv("DOCKER_HOST", "")
	t.Setenv("DOCKER_CERT_PATH", "")

	client, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if got := client.Transport().Endpoint().SocketPath; got != "/var/run/docker.sock" {
		t.Errorf("socket path = %q", got)
	}
}

func TestVersionAndPing(t *testing.T) {
	client := startDaemon(t, daemonMux(t, map[string]http.HandlerFunc{
		"/version": func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(Version{Version: "27.0.1", APIVersion: "1.46"})
		},
		"/_ping": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "OK")
		},
	}))

	version, err := client.Version(context.Background())
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version.Version != "27.0.1" || version.APIVersion != "1.46" {
		t.Errorf("version = %+v", version)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestEventsStream(t *testing.T) {
	client := startDaemon(t, daemonMux(t, map[string]http.HandlerFunc{
		"/events": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("since"); got != "1700000000" {
				t.Errorf("since = %q", got)
			}
			var filters map[string][]string
			if err := json.Unmarshal([]byte(r.URL.Query().Get("filters")), &filters); err != nil {
				t.Errorf("filters parameter: %v", err)
			} else if len(filters["type"]) != 1 || filters["type"][0] != "container" {
				t.Errorf("filters = %v", filters)
			}

			flusher := w.(http.Flusher)
			for _, action := range []string{"create", "start", "die"} {
				json.NewEncoder(w).Encode(Event{Type: "container", Action: action})
				flusher.Flush()
			}
		},
	}))

	events, err := client.Events(context.Background(), EventsOptions{
		Since:   1700000000,
		Filters: Filters{}.Add("type", "container"),
	})
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer events.Close()

	var actions []string
	for i := 0; i < 3; i++ {
		event, err := events.Next()
		if err != nil {
			t.Fatalf("next event: %v", err)
		}
		actions = append(actions, event.Action)
	}
	if actions[0] != "create" || actions[1] != "start" || actions[2] != "die" {
		t.Errorf("actions = %v", actions)
	}
}

func TestEventsAbandonReleasesConnection(t *testing.T) {
	client := startDaemon(t, daemonMux(t, map[string]http.HandlerFunc{
		"/events": func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			json.NewEncoder(w).Encode(Event{Type: "container", Action: "start"})
			flusher.Flush()
			// Follow mode: hold the stream open until the client goes
			// away.
			<-r.Context().Done()
		},
	}))

	events, err := client.Events(context.Background(), EventsOptions{})
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if _, err := events.Next(); err != nil {
		t.Fatalf("next event: %v", err)
	}
	if err := events.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if client.Transport().OpenConnections() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("connection not released: %d still open", client.Transport().OpenConnections())
}
