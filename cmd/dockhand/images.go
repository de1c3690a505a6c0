// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
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
)

func imagesCommand() *cli.Command {
	options := &clientOptions{}
	var (
		all      bool
		dangling bool
	)
	return &cli.Command{
		Name:    "images",
		Summary: "List images",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("images", pflag.ContinueOnError)
			options.bind(flagSet)
			flagSet.BoolVarP(&all, "all", "a", false, "include intermediate layers")
			flagSet.BoolVar(&dangling, "dangling", false, "only untagged images")
			return flagSet
		},
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "images")
			client, err := options.newClient(logger)
			if err != nil {
				return err
			}

			listOptions := engine.ImageListOptions{All: all}
			if dangling {
				listOptions.Filters = engine.Filters{}.Add("dangling", "true")
			}
			images, err := client.Images().List(context.Background(), listOptions)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "REPOSITORY\tTAG\tIMAGE ID\tCREATED\tSIZE")
			for _, image := range images {
				repository, tag := "<none>", "<none>"
				if len(image.RepoTags) > 0 {
					repository, tag = splitRepoTag(image.RepoTags[0])
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					repository,
					tag,
					shortImageID(image.ID),
					units.HumanDuration(time.Since(time.Unix(image.Created, 0)))+" ago",
					units.HumanSize(float64(image.Size)),
				)
			}
			return tw.Flush()
		},
	}
}

func pullCommand() *cli.Command {
	options := &clientOptions{}
	return &cli.Command{
		Name:    "pull",
		Summary: "Pull an image from a registry",
		Usage:   "dockhand pull [flags] <image[:tag]>",
		Examples: []cli.Example{
			{Description: "Pull a specific tag", Command: "dockhand pull alpine:3.20"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pull", pflag.ContinueOnError)
			options.bind(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("pull: exactly one image expected")
			}
			logger := cli.NewCommandLogger().With("command", "pull")
			client, err := options.newClient(logger)
			if err != nil {
				return err
			}

			image, tag := splitRepoTag(args[0])
			if tag == "<none>" {
				tag = "latest"
			}
			progress, err := client.Images().Pull(context.Background(), engine.PullOptions{
				Image: image,
				Tag:   tag,
			})
			if err != nil {
				return err
			}
			defer progress.Close()
			return renderProgress(progress, os.Stdout)
		},
	}
}

// renderProgress prints a pull/build progress stream. On a terminal
// per-layer updates overwrite in place; otherwise each status is one
// line. An in-stream error fails the command.
func renderProgress(progress *engine.MessageStream[engine.ProgressMessage], w *os.File) error {
	interactive := term.IsTerminal(int(w.Fd()))
	lastInline := false

	for {
		message, err := progress.Next()
		if errors.Is(err, io.EOF) {
			if lastInline {
				fmt.Fprintln(w)
			}
			return nil
		}
		if err != nil {
			return err
		}
		if message.Error != "" {
			if lastInline {
				fmt.Fprintln(w)
			}
			return fmt.Errorf("pull failed: %s", message.Error)
		}

		switch {
		case message.Stream != "":
			fmt.Fprint(w, message.Stream)
			lastInline = false
		case interactive && message.Progress != "":
			fmt.Fprintf(w, "\r\x1b[K%s: %s %s", message.ID, message.Status, message.Progress)
			lastInline = true
		default:
			if lastInline {
				fmt.Fprintln(w)
				lastInline = false
			}
			if message.ID != "" {
				fmt.Fprintf(w, "%s: %s\n", message.ID, message.Status)
			} else {
				fmt.Fprintln(w, message.Status)
			}
		}
	}
}

// splitRepoTag splits "repo:tag", leaving digests ("repo@sha256:...")
// whole.
func splitRepoTag(ref string) (string, string) {
	if strings.Contains(ref, "@") {
		return ref, "<none>"
	}
	slash := strings.LastIndex(ref, "/")
	if colon := strings.LastIndex(ref, ":"); colon > slash {
		return ref[:colon], ref[colon+1:]
	}
	return ref, "<none>"
}

// shortImageID strips the digest prefix and abbreviates.
func shortImageID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
