// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package list implements the list command.
package list

import (
	"context"

	"github.com/matt-FFFFFF/brim/cmd/execute"
	"github.com/matt-FFFFFF/brim/internal/console"
	"github.com/urfave/cli/v3"
)

// NewCmd builds the list command.
func NewCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List installed packages",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			installed, err := execute.Prepare(ctx, cmd)
			if err != nil {
				return execute.Exit(err)
			}

			return execute.Exit(console.NewPrinter(execute.Out(cmd)).Installed(installed))
		},
	}
}
