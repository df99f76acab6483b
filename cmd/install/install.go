// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package install implements the install command.
package install

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/brim/cmd/execute"
	"github.com/matt-FFFFFF/brim/internal/console"
	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/manifest"
	"github.com/matt-FFFFFF/brim/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const (
	packageFlag          = "package"
	includeInstalledFlag = "include-installed"
	parallelFlag         = "parallel"
	noSummaryFlag        = "no-summary"
)

// NewCmd builds the install command.
func NewCmd() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install the packages of one or more recipes",
		Description: `Install the packages listed in one or more recipe files.
Recipes are merged by package name, later recipes win. Packages that are already
installed are skipped unless --include-installed is given.

Recipe URLs use Hashicorp's go-getter syntax, which allows for fetching files from various sources.
See https://github.com/hashicorp/go-getter.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    execute.URLFlag,
				Aliases: []string{"u"},
				Usage:   "Recipe file, directory or URL. Repeat the flag or separate with commas",
			},
			&cli.StringSliceFlag{
				Name:    packageFlag,
				Aliases: []string{"p"},
				Usage:   "Only install these packages from the recipe",
			},
			&cli.BoolFlag{
				Name:  includeInstalledFlag,
				Usage: "Reinstall packages that are already installed",
			},
			&cli.BoolFlag{
				Name:    parallelFlag,
				Usage:   "Download every package in parallel, then install one at a time",
				Sources: cli.EnvVars("BRIM_PARALLEL"),
			},
			&cli.BoolFlag{
				Name:  execute.DryRunFlag,
				Usage: "Preview the packages that would be installed",
			},
			&cli.StringFlag{
				Name:    execute.WebhookFlag,
				Usage:   "URL to post the installation summary to",
				Sources: cli.EnvVars("BRIM_WEBHOOK"),
			},
			&cli.BoolFlag{
				Name:  noSummaryFlag,
				Usage: "Leave the display without the summary screen",
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
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	sources := manifest.ParseSourceList(cmd.StringSlice(execute.URLFlag))
	if len(sources) == 0 {
		return fmt.Errorf("%w: use --url to give at least one recipe", manifest.ErrNoSources)
	}

	installed, err := execute.Prepare(ctx, cmd)
	if err != nil {
		return err
	}

	pkgs, err := manifest.Load(ctx, sources)
	if err != nil {
		return err
	}

	out := console.NewPrinter(execute.Out(cmd))
	if err := out.Recipe(pkgs, installed); err != nil {
		return err
	}

	selected, err := manifest.Select(pkgs, installed, manifest.Selection{
		Only:             cmd.StringSlice(packageFlag),
		IncludeInstalled: cmd.Bool(includeInstalledFlag),
	})
	if err != nil {
		return err
	}

	if len(selected) == 0 {
		_, err := fmt.Fprintln(execute.Out(cmd), "\nNothing to install.")
		return err
	}

	if cmd.Bool(execute.DryRunFlag) {
		return out.DryRun(selected, "installed")
	}

	if err := execute.MaybeConfirm(cmd, fmt.Sprintf("Install %d packages?", len(selected))); err != nil {
		return err
	}

	logger.Info("installing packages", "count", len(selected), "parallel", cmd.Bool(parallelFlag))

	ops := runbatch.Installs(manifest.Names(selected), manifest.CaskLookup(selected))

	return execute.Run(ctx, execute.Out(cmd), execute.ErrOut(cmd), ops, execute.Options{
		Operation:   runbatch.KindInstall.String(),
		Program:     cmd.String(execute.ProgramFlag),
		Parallel:    cmd.Bool(parallelFlag),
		NoTUI:       cmd.Bool(execute.NoTUIFlag),
		ShowSummary: !cmd.Bool(noSummaryFlag),
		Autoremove:  true,
		Webhook:     cmd.String(execute.WebhookFlag),
	})
}
