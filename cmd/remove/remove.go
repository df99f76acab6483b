// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package remove implements the remove command.
package remove

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/brim/cmd/execute"
	"github.com/matt-FFFFFF/brim/internal/color"
	"github.com/matt-FFFFFF/brim/internal/console"
	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/manifest"
	"github.com/matt-FFFFFF/brim/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const noAutoremoveFlag = "no-autoremove"

var (
	// ErrNoPackages is returned when no package names are given.
	ErrNoPackages = errors.New("give the names of the packages to remove")
	// ErrNotInstalled is returned for names that are not installed.
	ErrNotInstalled = errors.New("not installed")
)

// NewCmd builds the remove command.
func NewCmd() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Force remove installed packages",
		ArgsUsage: "NAME...",
		Description: `Remove the named packages with 'remove -f', one at a time.
Unused dependencies are cleaned up after each removal unless --no-autoremove is given.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  noAutoremoveFlag,
				Usage: "Keep dependencies that are no longer needed",
			},
			&cli.BoolFlag{
				Name:  execute.DryRunFlag,
				Usage: "Preview the packages that would be removed",
			},
			&cli.StringFlag{
				Name:    execute.WebhookFlag,
				Usage:   "URL to post the removal summary to",
				Sources: cli.EnvVars("BRIM_WEBHOOK"),
			},
			&cli.BoolFlag{
				Name:    execute.YesFlag,
				Aliases: []string{"y"},
				Usage:   "Do not ask for confirmation",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return execute.Exit(actionFunc(ctx, cmd))
		},
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	names := dedupe(cmd.Args().Slice())
	if len(names) == 0 {
		return ErrNoPackages
	}

	installed, err := execute.Prepare(ctx, cmd)
	if err != nil {
		return err
	}

	var missing []string

	for _, n := range names {
		if !slices.Contains(installed, n) {
			missing = append(missing, n)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNotInstalled, strings.Join(missing, ", "))
	}

	out := console.NewPrinter(execute.Out(cmd))
	out.Header("Package Removal", console.Red)

	if _, err := fmt.Fprintf(execute.Out(cmd), "\n%s\n",
		color.Colorize("⚠ Warning: this removes the selected packages and their unused dependencies!", color.Bold, color.FgYellow)); err != nil {
		return err
	}

	if cmd.Bool(execute.DryRunFlag) {
		pkgs := make([]manifest.Package, len(names))
		for i, n := range names {
			pkgs[i] = manifest.Package{Name: n}
		}

		return out.DryRun(pkgs, "removed")
	}

	if err := execute.MaybeConfirm(cmd, fmt.Sprintf("Remove %d packages?", len(names))); err != nil {
		return err
	}

	ctxlog.Info(ctx, "removing packages", "count", len(names))

	return execute.Run(ctx, execute.Out(cmd), execute.ErrOut(cmd), runbatch.Removals(names), execute.Options{
		Operation:   runbatch.KindRemove.String(),
		Program:     cmd.String(execute.ProgramFlag),
		NoTUI:       cmd.Bool(execute.NoTUIFlag),
		ShowSummary: true,
		Autoremove:  !cmd.Bool(noAutoremoveFlag),
		Webhook:     cmd.String(execute.WebhookFlag),
	})
}

func dedupe(names []string) []string {
	var out []string

	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}

	return out
}
