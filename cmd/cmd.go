// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/gcamkit/queryrun"
	"github.com/gcamkit/queryrun/cmd/run"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Name:    "queryrun",
	Usage:   "Run batches of queries against model output databases",
	Version: queryrun.Version,
	Commands: []*cli.Command{
		run.RunCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
}
