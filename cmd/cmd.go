// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/brim/cmd/execute"
	"github.com/matt-FFFFFF/brim/cmd/install"
	"github.com/matt-FFFFFF/brim/cmd/list"
	"github.com/matt-FFFFFF/brim/cmd/remove"
	"github.com/matt-FFFFFF/brim/cmd/sync"
	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/pkgmgr"
	"github.com/urfave/cli/v3"
)

const logLevelFlag = "log-level"

// NewRootCmd builds the root command. Each call returns a fresh command tree.
func NewRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			install.NewCmd(),
			remove.NewCmd(),
			list.NewCmd(),
			sync.NewCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    execute.ProgramFlag,
				Usage:   "Package manager executable",
				Value:   pkgmgr.DefaultProgram,
				Sources: cli.EnvVars("BRIM_PROGRAM"),
			},
			&cli.BoolFlag{
				Name:  execute.NoTUIFlag,
				Usage: "Print one line per state change instead of the full screen display",
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "Log level: DEBUG, INFO, WARN or ERROR. Overrides " + ctxlog.LogLevelEnvVar,
				Action: func(_ context.Context, _ *cli.Command, v string) error {
					level, ok := ctxlog.ParseLevel(v)
					if !ok {
						return fmt.Errorf("unknown log level %q", v)
					}

					ctxlog.LevelVar.Set(level)

					return nil
				},
			},
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "brim",
		Description: `BRIM (Brew Remote Install Manager) installs and removes Homebrew packages in batches.
Recipes are JSON, YAML or HCL files, local or fetched with Hashicorp's go-getter.
Progress is shown live, one row per package, and a summary can be posted to a webhook.`,
		Usage:     "brim install --url packages.json",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}
