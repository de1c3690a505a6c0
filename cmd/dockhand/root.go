// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/dockhand-project/dockhand/cmd/dockhand/cli"
)

func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "dockhand",
		Description: `Dockhand: a client for the container daemon remote API.

Inspect and manage containers, images, networks and volumes over a
Unix socket or TCP, with optional TLS.`,
		Subcommands: []*cli.Command{
			versionCommand(),
			infoCommand(),
			psCommand(),
			imagesCommand(),
			pullCommand(),
			logsCommand(),
			eventsCommand(),
			attachCommand(),
			rmCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List running containers on the local daemon",
				Command:     "dockhand ps",
			},
			{
				Description: "Pull an image, streaming progress",
				Command:     "dockhand pull alpine:3.20",
			},
			{
				Description: "Follow a container's logs",
				Command:     "dockhand logs --follow web",
			},
			{
				Description: "Talk to a remote daemon over TLS",
				Command:     "dockhand ps --host https://build01:2376 --cert-dir ~/.docker",
			},
		},
	}
}
