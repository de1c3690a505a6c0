// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/dockhand-project/dockhand/stream"
)

func TestExecCreateAndStart(t *testing.T) {
	client := startDaemon(t, daemonMux(t, map[string]http.HandlerFunc{
		"/containers/abc/exec": func(w http.ResponseWriter, r *http.Request) {
			var options ExecCreateOptions
			if err := json.NewDecoder(r.Body).Decode(&options); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if len(options.Cmd) != 2 || options.Cmd[0] != "ls" {
				t.Errorf("cmd = %v", options.Cmd)
			}
			if !options.AttachStdout {
				t.Error("AttachStdout not set")
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(ExecCreated{ID: "exec1"})
		},
		"/exec/exec1/start": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]bool
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body["Detach"] || body["Tty"] {
				t.Errorf("start body = %v", body)
			}
			writeFrame(w, 1, "bin\netc\n")
		},
		"/exec/exec1/json": func(w http.ResponseWriter, r *http.Request) {
			code := 0
			json.NewEncoder(w).Encode(ExecDetails{
				ID:       "exec1",
				Running:  false,
				ExitCode: &code,
			})
		},
	}))

	ctx := context.Background()
	exec, err := client.Containers().Get("abc").ExecCreate(ctx, ExecCreateOptions{
		Cmd:          []string{"ls", "/"},
		AttachStdout: true,
	})
	if err != nil {
		t.Fatalf("exec create: %v", err)
	}
	if exec.ID() != "exec1" {
		t.Errorf("id = %q", exec.ID())
	}

	output, err := exec.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer output.Close()

	frame, err := output.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if frame.Source != stream.SourceStdout || string(frame.Payload) != "bin\netc\n" {
		t.Errorf("frame = %v %q", frame.Source, frame.Payload)
	}
	if _, err := output.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}

	details, err := exec.Inspect(ctx)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if details.Running || details.ExitCode == nil || *details.ExitCode != 0 {
		t.Errorf("details = %+v", details)
	}
}

func TestExecDetachedAndResize(t *testing.T) {
	client := startDaemon(t, daemonMux(t, map[string]http.HandlerFunc{
		"/containers/abc/exec": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(ExecCreated{ID: "exec2"})
		},
		"/exec/exec2/start": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]bool
			json.NewDecoder(r.Body).Decode(&body)
			if !body["Detach"] || !body["Tty"] {
				t.Errorf("start body = %v", body)
			}
			w.WriteHeader(http.StatusOK)
		},
		"/exec/exec2/resize": func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			if query.Get("w") != "120" || query.Get("h") != "40" {
				t.Errorf("resize query = %v", query)
			}
			w.WriteHeader(http.StatusOK)
		},
	}))

	ctx := context.Background()
	exec, err := client.Containers().Get("abc").ExecCreate(ctx, ExecCreateOptions{
		Cmd: []string{"top"},
		Tty: true,
	})
	if err != nil {
		t.Fatalf("exec create: %v", err)
	}
	if err := exec.StartDetached(ctx); err != nil {
		t.Fatalf("start detached: %v", err)
	}
	if err := exec.Resize(ctx, 120, 40); err != nil {
		t.Fatalf("resize: %v", err)
	}
}
