// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the "run" subcommand: execute a batch of queries
// against one or more model output databases.
package run

import (
	"context"
	"fmt"
	"time"

	"github.com/gcamkit/queryrun/internal/batch"
	"github.com/gcamkit/queryrun/internal/config"
	"github.com/gcamkit/queryrun/internal/descriptor"
	"github.com/gcamkit/queryrun/internal/display"
	"github.com/gcamkit/queryrun/internal/driver"
	"github.com/gcamkit/queryrun/internal/engine"
	"github.com/urfave/cli/v3"
)

const (
	configFlag          = "config"
	queryFlag           = "query"
	databaseFlag        = "database"
	outputFlag          = "output"
	inputDirFlag        = "input-dir"
	timeoutFlag         = "timeout"
	continueOnErrorFlag = "continue-on-error"
)

// RunCmd is the command that runs a batch of queries described by descriptor
// templates against model output databases.
var RunCmd = &cli.Command{
	Name:  "run",
	Usage: "Run query descriptor templates against model output databases",
	Description: "Each --query names a batch query descriptor template. A single --database " +
		"or --output is shared by every query; otherwise their counts must match the query count.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      configFlag,
			Aliases:   []string{"c"},
			Usage:     "Path to the engine configuration file",
			Required:  true,
			TakesFile: true,
		},
		&cli.StringSliceFlag{
			Name:      queryFlag,
			Aliases:   []string{"q"},
			Usage:     "Batch query descriptor template (repeatable)",
			Required:  true,
			TakesFile: true,
		},
		&cli.StringSliceFlag{
			Name:      databaseFlag,
			Aliases:   []string{"d"},
			Usage:     "Model output database to query (repeatable; a single value is shared)",
			Required:  true,
			TakesFile: true,
		},
		&cli.StringSliceFlag{
			Name:      outputFlag,
			Aliases:   []string{"o"},
			Usage:     "Result file for the corresponding query (repeatable; a single value is shared)",
			Required:  true,
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      inputDirFlag,
			Usage:     "Base directory for bare query file references (overrides the configuration)",
			TakesFile: true,
		},
		&cli.DurationFlag{
			Name:  timeoutFlag,
			Usage: "Per-invocation timeout (overrides the configuration)",
		},
		&cli.BoolFlag{
			Name:  continueOnErrorFlag,
			Usage: "Keep processing remaining queries after one fails",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String(configFlag))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load configuration: %s", err.Error()), 1)
	}

	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %s", err.Error()), 1)
	}

	if cfg.Xvfb != "" {
		display.XvfbPath = cfg.Xvfb
	}

	inputDir := cfg.InputDir
	if v := cmd.String(inputDirFlag); v != "" {
		inputDir = v
	}

	timeout := time.Duration(cfg.Timeout)
	if v := cmd.Duration(timeoutFlag); v > 0 {
		timeout = v
	}

	runner := &driver.Runner{
		Rewriter: &descriptor.Rewriter{BaseDir: inputDir},
		Invoker: &engine.Invoker{
			ModelInterface: cfg.ModelInterface,
			DBXMLLib:       cfg.DBXMLLib,
			Java:           cfg.Java,
			Timeout:        timeout,
			StrictExit:     bool(cfg.StrictExit),
		},
		ContinueOnError: bool(cfg.ContinueOnError) || cmd.Bool(continueOnErrorFlag),
	}

	outs, err := runner.Run(ctx,
		asInput(cmd.StringSlice(queryFlag)),
		asInput(cmd.StringSlice(databaseFlag)),
		asInput(cmd.StringSlice(outputFlag)),
	)
	if err != nil {
		return cli.Exit(fmt.Sprintf("batch failed: %s", err.Error()), 1)
	}

	for _, out := range outs {
		fmt.Fprintln(cmd.Writer, out) //nolint:errcheck
	}

	return nil
}

// asInput maps repeated CLI flag values onto the normalizer's tagged input
// type: a flag given once is a scalar, repeated flags form a sequence.
func asInput(vs []string) batch.Input {
	if len(vs) == 1 {
		return batch.Scalar(vs[0])
	}

	return batch.Sequence(vs...)
}
