// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/pflag"

	"github.com/dockhand-project/dockhand/cmd/dockhand/cli"
	"github.com/dockhand-project/dockhand/engine"
)

func versionCommand() *cli.Command {
	options := &clientOptions{}
	return &cli.Command{
		Name:    "version",
		Summary: "Show daemon version information",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			options.bind(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "version")
			client, err := options.newClient(logger)
			if err != nil {
				return err
			}
			version, err := client.Version(context.Background())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "Version:\t%s\n", version.Version)
			fmt.Fprintf(tw, "API version:\t%s\n", version.APIVersion)
			fmt.Fprintf(tw, "Go version:\t%s\n", version.GoVersion)
			fmt.Fprintf(tw, "Git commit:\t%s\n", version.GitCommit)
			fmt.Fprintf(tw, "OS/Arch:\t%s/%s\n", version.Os, version.Arch)
			return tw.Flush()
		},
	}
}

func infoCommand() *cli.Command {
	options := &clientOptions{}
	return &cli.Command{
		Name:    "info",
		Summary: "Show system-wide daemon information",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("info", pflag.ContinueOnError)
			options.bind(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "info")
			client, err := options.newClient(logger)
			if err != nil {
				return err
			}
			info, err := client.Info(context.Background())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "Name:\t%s\n", info.Name)
			fmt.Fprintf(tw, "Server version:\t%s\n", info.ServerVersion)
			fmt.Fprintf(tw, "Containers:\t%d (%d running, %d paused, %d stopped)\n",
				info.Containers, info.ContainersRunning, info.ContainersPaused, info.ContainersStopped)
			fmt.Fprintf(tw, "Images:\t%d\n", info.Images)
			fmt.Fprintf(tw, "Storage driver:\t%s\n", info.Driver)
			fmt.Fprintf(tw, "Operating system:\t%s\n", info.OperatingSystem)
			fmt.Fprintf(tw, "Kernel:\t%s\n", info.KernelVersion)
			fmt.Fprintf(tw, "CPUs:\t%d\n", info.NCPU)
			fmt.Fprintf(tw, "Memory:\t%s\n", units.BytesSize(float64(info.MemTotal)))
			return tw.Flush()
		},
	}
}

func eventsCommand() *cli.Command {
	options := &clientOptions{}
	var (
		sinceMinutes int
		filterType   string
	)
	return &cli.Command{
		Name:    "events",
		Summary: "Follow the daemon event feed",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("events", pflag.ContinueOnError)
			options.bind(flagSet)
			flagSet.IntVar(&sinceMinutes, "since", 0, "include events from the last N minutes")
			flagSet.StringVar(&filterType, "type", "", "only events for one object type (container, image, ...)")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Container events from the last ten minutes, then follow",
				Command: "dockhand events --since 10 --type container"},
		},
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "events")
			client, err := options.newClient(logger)
			if err != nil {
				return err
			}

			// Interrupt detaches from the feed instead of killing the
			// process mid-line.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eventsOptions := engine.EventsOptions{}
			if sinceMinutes > 0 {
				eventsOptions.Since = time.Now().Add(-time.Duration(sinceMinutes) * time.Minute).Unix()
			}
			if filterType != "" {
				eventsOptions.Filters = engine.Filters{}.Add("type", filterType)
			}

			feed, err := client.Events(ctx, eventsOptions)
			if err != nil {
				return err
			}
			defer feed.Close()

			for {
				event, err := feed.Next()
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return nil
				}
				if err != nil {
					return err
				}
				when := time.Unix(event.Time, 0).Format(time.RFC3339)
				name := event.Actor.Attributes["name"]
				if name == "" {
					name = event.Actor.ID
				}
				fmt.Printf("%s %s %s %s\n", when, event.Type, event.Action, name)
			}
		},
	}
}
