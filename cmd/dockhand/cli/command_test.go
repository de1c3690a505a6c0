// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommandExecuteDispatchesToSubcommand(t *testing.T) {
	var ran []string
	root := &Command{
		Name: "dockhand",
		Subcommands: []*Command{
			{
				Name: "ps",
				Run: func(args []string) error {
					ran = append(ran, "ps")
					return nil
				},
			},
			{
				Name: "pull",
				Run: func(args []string) error {
					ran = append(ran, "pull:"+strings.Join(args, ","))
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"ps"}); err != nil {
		t.Fatalf("execute ps: %v", err)
	}
	if err := root.Execute([]string{"pull", "alpine:3.20"}); err != nil {
		t.Fatalf("execute pull: %v", err)
	}
	if len(ran) != 2 || ran[0] != "ps" || ran[1] != "pull:alpine:3.20" {
		t.Errorf("ran = %v", ran)
	}
}

func TestCommandExecuteFlagParsing(t *testing.T) {
	var all bool
	var got []string
	command := &Command{
		Name: "ps",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ps", pflag.ContinueOnError)
			flagSet.BoolVarP(&all, "all", "a", false, "include stopped containers")
			return flagSet
		},
		Run: func(args []string) error {
			got = args
			return nil
		},
	}

	if err := command.Execute([]string{"--all", "web", "db"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !all {
		t.Error("--all not parsed")
	}
	if len(got) != 2 || got[0] != "web" {
		t.Errorf("positional args = %v", got)
	}
}

func TestCommandExecuteUnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "dockhand",
		Subcommands: []*Command{
			{Name: "images", Run: func([]string) error { return nil }},
			{Name: "events", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"imges"})
	if err == nil {
		t.Fatal("expected an error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), `did you mean "images"?`) {
		t.Errorf("error lacks suggestion: %v", err)
	}
}

func TestCommandExecuteUnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "dockhand",
		Subcommands: []*Command{
			{Name: "ps", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"zzzzzzzz"})
	if err == nil {
		t.Fatal("expected an error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("unexpected suggestion: %v", err)
	}
}

func TestCommandExecuteUnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "logs",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("logs", pflag.ContinueOnError)
			flagSet.Bool("follow", false, "")
			return flagSet
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--folow"})
	if err == nil {
		t.Fatal("expected an error for unknown flag")
	}
	if !strings.Contains(err.Error(), "--follow") {
		t.Errorf("error lacks flag suggestion: %v", err)
	}
}

func TestCommandExecuteHelpFlag(t *testing.T) {
	command := &Command{
		Name:    "ps",
		Summary: "List containers",
		Run: func([]string) error {
			t.Error("Run called for --help")
			return nil
		},
	}
	if err := command.Execute([]string{"--help"}); err != nil {
		t.Fatalf("help: %v", err)
	}
}

func TestCommandExecuteSubcommandRequired(t *testing.T) {
	root := &Command{
		Name:        "dockhand",
		Subcommands: []*Command{{Name: "ps", Run: func([]string) error { return nil }}},
	}
	if err := root.Execute(nil); err == nil {
		t.Fatal("expected an error with no subcommand")
	}
}

func TestCommandPrintHelpListsSubcommands(t *testing.T) {
	root := &Command{
		Name: "dockhand",
		Subcommands: []*Command{
			{Name: "ps", Summary: "List containers"},
			{Name: "pull", Summary: "Pull an image"},
		},
		Examples: []Example{
			{Description: "List running containers", Command: "dockhand ps"},
		},
	}

	var help strings.Builder
	root.PrintHelp(&help)
	out := help.String()
	for _, want := range []string{"ps", "List containers", "pull", "dockhand ps", "Commands:"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q:\n%s", want, out)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"ps", "", 2},
		{"images", "images", 0},
		{"imges", "images", 1},
		{"attach", "events", 6},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
