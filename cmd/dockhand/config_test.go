// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dockhand-project/dockhand/transport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClientOptionsConfigFile(t *testing.T) {
	t.Setenv("DOCKER_HOST", "")
	t.Setenv("DOCKER_CERT_PATH", "")

	path := writeConfig(t, "host: tcp://build01:2375\n")
	options := &clientOptions{configPath: path}

	client, err := options.newClient(slog.Default())
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	endpoint := client.Transport().Endpoint()
	if endpoint.Kind != transport.KindTCP || endpoint.Address != "build01:2375" {
		t.Errorf("endpoint = %+v", endpoint)
	}
}

func TestClientOptionsFlagBeatsEnvAndFile(t *testing.T) {
	t.Setenv("DOCKER_HOST", "tcp://from-env:2375")
	t.Setenv("DOCKER_CERT_PATH", "")

	path := writeConfig(t, "host: tcp://from-file:2375\n")
	options := &clientOptions{configPath: path, host: "tcp://from-flag:2375"}

	client, err := options.newClient(slog.Default())
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	if got := client.Transport().Endpoint().Address; got != "from-flag:2375" {
		t.Errorf("address = %q, want flag value", got)
	}
}

func TestClientOptionsEnvBeatsFile(t *testing.T) {
	t.Setenv("DOCKER_HOST", "tcp://from-env:2375")
	t.Setenv("DOCKER_CERT_PATH", "")

	path := writeConfig(t, "host: tcp://from-file:2375\n")
	options := &clientOptions{configPath: path}

	client, err := options.newClient(slog.Default())
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	if got := client.Transport().Endpoint().Address; got != "from-env:2375" {
		t.Errorf("address = %q, want env value", got)
	}
}

func TestClientOptionsExplicitConfigMustExist(t *testing.T) {
	options := &clientOptions{configPath: filepath.Join(t.TempDir(), "missing.yaml")}
	if _, err := options.newClient(slog.Default()); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestClientOptionsBadYAML(t *testing.T) {
	path := writeConfig(t, "host: [unterminated\n")
	options := &clientOptions{configPath: path}
	if _, err := options.newClient(slog.Default()); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestSplitRepoTag(t *testing.T) {
	tests := []struct {
		ref, repo, tag string
	}{
		{"alpine:3.20", "alpine", "3.20"},
		{"alpine", "alpine", "<none>"},
		{"registry.example.com:5000/app:v1", "registry.example.com:5000/app", "v1"},
		{"registry.example.com:5000/app", "registry.example.com:5000/app", "<none>"},
		{"app@sha256:abcdef", "app@sha256:abcdef", "<none>"},
	}
	for _, test := range tests {
		repo, tag := splitRepoTag(test.ref)
		if repo != test.repo || tag != test.tag {
			t.Errorf("splitRepoTag(%q) = %q, %q; want %q, %q", test.ref, repo, tag, test.repo, test.tag)
		}
	}
}

func TestShortIDs(t *testing.T) {
	long := "0123456789abcdef0123456789abcdef"
	if got := shortID(long); got != "0123456789ab" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID of short input = %q", got)
	}
	if got := shortImageID("sha256:" + long); got != "0123456789ab" {
		t.Errorf("shortImageID = %q", got)
	}
}

func TestContainerNames(t *testing.T) {
	names := containerNames([]string{"/web", "/db"})
	if len(names) != 2 || names[0] != "web" || names[1] != "db" {
		t.Errorf("names = %v", names)
	}
}
