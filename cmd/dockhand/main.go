// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

// The dockhand binary is a small CLI over the client library: listing
// and managing containers and images, following logs and events, and
// attaching to running containers.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an ExitError
		// with the desired code; no redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}
