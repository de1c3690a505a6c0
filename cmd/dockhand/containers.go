// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/dockhand-project/dockhand/cmd/dockhand/cli"
	"github.com/dockhand-project/dockhand/engine"
	"github.com/dockhand-project/dockhand/transport"
)

func psCommand() *cli.Command {
	options := &clientOptions{}
	var (
		all   bool
		sized bool
	)
	return &cli.Command{
		Name:    "ps",
		Summary: "List containers",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ps", pflag.ContinueOnError)
			options.bind(flagSet)
			flagSet.BoolVarP(&all, "all", "a", false, "include stopped containers")
			flagSet.BoolVar(&sized, "size", false, "show filesystem sizes")
			return flagSet
		},
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "ps")
			client, err := options.newClient(logger)
			if err != nil {
				return err
			}
			containers, err := client.Containers().List(context.Background(), engine.ContainerListOptions{
				All:   all,
				Sized: sized,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			header := "CONTAINER ID\tIMAGE\tCOMMAND\tCREATED\tSTATUS\tNAMES"
			if sized {
				header += "\tSIZE"
			}
			fmt.Fprintln(tw, header)
			for _, container := range containers {
				row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s",
					shortID(container.ID),
					container.Image,
					truncate(container.Command, 24),
					units.HumanDuration(time.Since(time.Unix(container.Created, 0)))+" ago",
					container.Status,
					strings.Join(containerNames(container.Names), ","),
				)
				if sized {
					row += "\t" + units.HumanSize(float64(container.SizeRw))
				}
				fmt.Fprintln(tw, row)
			}
			return tw.Flush()
		},
	}
}

func logsCommand() *cli.Command {
	options := &clientOptions{}
	var (
		follow     bool
		timestamps bool
		tail       string
		tty        bool
	)
	return &cli.Command{
		Name:    "logs",
		Summary: "Show a container's logs",
		Usage:   "dockhand logs [flags] <container>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("logs", pflag.ContinueOnError)
			options.bind(flagSet)
			flagSet.BoolVarP(&follow, "follow", "f", false, "keep the stream open for new output")
			flagSet.BoolVarP(&timestamps, "timestamps", "t", false, "prefix lines with timestamps")
			flagSet.StringVar(&tail, "tail", "", "only the last N lines")
			flagSet.BoolVar(&tty, "tty", false, "container runs with a pseudo-terminal (raw output)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("logs: exactly one container expected")
			}
			logger := cli.NewCommandLogger().With("command", "logs")
			client, err := options.newClient(logger)
			if err != nil {
				return err
			}

			output, err := client.Containers().Get(args[0]).Logs(context.Background(), engine.LogsOptions{
				Follow:     follow,
				Stdout:     true,
				Stderr:     true,
				Timestamps: timestamps,
				Tail:       tail,
				TTY:        tty,
			})
			if err != nil {
				return err
			}
			defer output.Close()
			return output.Copy(os.Stdout, os.Stderr)
		},
	}
}

func rmCommand() *cli.Command {
	options := &clientOptions{}
	var (
		force   bool
		volumes bool
	)
	return &cli.Command{
		Name:    "rm",
		Summary: "Remove one or more containers",
		Usage:   "dockhand rm [flags] <container>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("rm", pflag.ContinueOnError)
			options.bind(flagSet)
			flagSet.BoolVarP(&force, "force", "f", false, "kill a running container before removing it")
			flagSet.BoolVarP(&volumes, "volumes", "v", false, "also remove anonymous volumes")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("rm: at least one container expected")
			}
			logger := cli.NewCommandLogger().With("command", "rm")
			client, err := options.newClient(logger)
			if err != nil {
				return err
			}

			ctx := context.Background()
			failed := false
			for _, id := range args {
				err := client.Containers().Get(id).Remove(ctx, engine.ContainerRemoveOptions{
					Force:   force,
					Volumes: volumes,
				})
				if err != nil {
					failed = true
					if transport.IsNotFound(err) {
						fmt.Fprintf(os.Stderr, "no such container: %s\n", id)
						continue
					}
					fmt.Fprintf(os.Stderr, "removing %s: %v\n", id, err)
					continue
				}
				fmt.Println(id)
			}
			if failed {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func attachCommand() *cli.Command {
	options := &clientOptions{}
	var tty bool
	return &cli.Command{
		Name:    "attach",
		Summary: "Attach to a running container's streams",
		Usage:   "dockhand attach [flags] <container>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("attach", pflag.ContinueOnError)
			options.bind(flagSet)
			flagSet.BoolVar(&tty, "tty", false, "container runs with a pseudo-terminal (raw mode)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("attach: exactly one container expected")
			}
			logger := cli.NewCommandLogger().With("command", "attach")
			client, err := options.newClient(logger)
			if err != nil {
				return err
			}
			return runAttach(client, args[0], tty)
		},
	}
}

func runAttach(client *engine.Client, id string, tty bool) error {
	ctx := context.Background()
	container := client.Containers().Get(id)

	session, err := container.Attach(ctx, engine.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
		TTY:    tty,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	// In TTY mode the local terminal goes raw so control sequences
	// reach the container instead of the local line discipline.
	stdinFd := int(os.Stdin.Fd())
	if tty && term.IsTerminal(stdinFd) {
		previous, err := term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("attach: entering raw mode: %w", err)
		}
		defer term.Restore(stdinFd, previous)
	}

	// stdin pump. Half-close on local EOF so the container sees end
	// of input while its output drains.
	go func() {
		io.Copy(session, os.Stdin)
		session.CloseWrite()
	}()

	if err := session.Output().Copy(os.Stdout, os.Stderr); err != nil {
		return err
	}

	// Mirror the container's exit status once the stream ends.
	details, err := container.Inspect(ctx)
	if err != nil {
		return err
	}
	if code := details.State.ExitCode; code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}

// shortID abbreviates a 64-character ID to the usual 12.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "…"
}

// containerNames strips the daemon's leading slash from each name.
func containerNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, strings.TrimPrefix(name, "/"))
	}
	return out
}
