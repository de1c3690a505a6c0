// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"strings"
	"testing"
)

func TestReadResponseBounded(t *testing.T) {
	body, err := ReadResponse(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}
}

func TestDecodeResponse(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	if err := DecodeResponse(strings.NewReader(`{"name":"web"}`), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Name != "web" {
		t.Errorf("name = %q", out.Name)
	}

	if err := DecodeResponse(strings.NewReader("not json"), &out); err == nil {
		t.Error("expected an error for malformed body")
	}
}
