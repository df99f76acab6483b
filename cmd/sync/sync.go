// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sync implements the sync command, which compares recipes with the installed packages.
package sync

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/brim/cmd/execute"
	"github.com/matt-FFFFFF/brim/internal/console"
	"github.com/matt-FFFFFF/brim/internal/manifest"
	"github.com/urfave/cli/v3"
)

// NewCmd builds the sync command.
func NewCmd() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Compare recipes with the installed packages",
		Description: `Show which recipe packages are installed, which are missing,
and which installed packages no recipe mentions. Nothing is changed.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    execute.URLFlag,
				Aliases: []string{"u"},
				Usage:   "Recipe file, directory or URL. Repeat the flag or separate with commas",
			},
			&cli.BoolFlag{
				Name:  execute.DryRunFlag,
				Usage: "Word the report as a preview",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return execute.Exit(actionFunc(ctx, cmd))
		},
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	sources := manifest.ParseSourceList(cmd.StringSlice(execute.URLFlag))
	if len(sources) == 0 {
		return fmt.Errorf("%w: sync requires --url", manifest.ErrNoSources)
	}

	installed, err := execute.Prepare(ctx, cmd)
	if err != nil {
		return err
	}

	recipe, err := manifest.Load(ctx, sources)
	if err != nil {
		return err
	}

	return console.NewPrinter(execute.Out(cmd)).Sync(manifest.Diff(installed, recipe), cmd.Bool(execute.DryRunFlag))
}
