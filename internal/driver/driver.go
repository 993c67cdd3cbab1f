// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package driver runs a normalized batch of queries against the model
// interface.
//
// Control flow: normalize the inputs, start one virtual display for the whole
// batch, then for each item rewrite the descriptor template into a temporary
// artifact, invoke the engine against it and remove the artifact. The display
// is stopped and the in-flight artifact removed on every exit path, including
// propagated failures. Items are processed strictly sequentially; the only
// concurrency concern is other pipeline instances on the same host, which the
// display session's randomized identifier accounts for.
package driver

import (
	"context"
	"errors"

	"github.com/gcamkit/queryrun/internal/batch"
	"github.com/gcamkit/queryrun/internal/ctxlog"
	"github.com/gcamkit/queryrun/internal/descriptor"
	"github.com/gcamkit/queryrun/internal/display"
	"github.com/gcamkit/queryrun/internal/engine"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Stage-typed failures, so operators can tell configuration problems from
// transient engine failures.
var (
	// ErrNormalize is returned when the inputs cannot be aligned into a batch.
	ErrNormalize = errors.New("input normalization failed")
	// ErrDisplayStart is returned when the virtual display cannot be started.
	ErrDisplayStart = errors.New("display session start failed")
	// ErrRewrite is returned when a descriptor template cannot be rewritten.
	ErrRewrite = errors.New("descriptor rewrite failed")
	// ErrInvocation is returned when an engine invocation fails.
	ErrInvocation = errors.New("engine invocation failed")
	// ErrCleanup is returned when a temporary artifact cannot be removed and
	// no other error is in flight.
	ErrCleanup = errors.New("temporary artifact cleanup failed")
)

// Runner executes query batches. All collaborators are injected.
type Runner struct {
	Rewriter *descriptor.Rewriter
	Invoker  *engine.Invoker
	// Session is the display session to use. Nil means the runner creates
	// its own. A session is good for exactly one Run.
	Session *display.Session
	// ContinueOnError keeps processing remaining items after one fails,
	// aggregating the failures instead of stopping at the first.
	ContinueOnError bool
}

// Run normalizes the inputs and executes every resulting query item. It
// returns the output file paths from the normalized batch; the engine writes
// results into those files, so callers judging success should inspect them.
//
// On a per-item failure the error is never lost: with ContinueOnError unset
// the batch stops and surfaces it, otherwise remaining items still run and
// all failures come back aggregated.
func (r *Runner) Run(ctx context.Context, queries, databases, outputs batch.Input) ([]string, error) {
	logger := ctxlog.Logger(ctx).With("runID", uuid.NewString())
	ctx = ctxlog.New(ctx, logger)

	items, err := batch.Normalize(queries, databases, outputs)
	if err != nil {
		return nil, errors.Join(ErrNormalize, err)
	}

	session := r.Session
	if session == nil {
		session = &display.Session{}
	}

	if err := session.Start(ctx); err != nil {
		return nil, errors.Join(ErrDisplayStart, err)
	}
	defer session.Stop(ctx)

	displayNum, err := session.Num()
	if err != nil {
		return nil, errors.Join(ErrDisplayStart, err)
	}

	outs := make([]string, len(items))
	for i, item := range items {
		outs[i] = item.OutputFile
	}

	var errs *multierror.Error

	for i, item := range items {
		select {
		case <-ctx.Done():
			return outs, multierror.Append(errs, ctx.Err()).ErrorOrNil()
		default:
		}

		logger.Info("running query",
			"item", i+1, "of", len(items),
			"query", item.QueryFile, "database", item.Database, "output", item.OutputFile)

		err := r.runItem(ctx, item, displayNum)
		if err == nil {
			continue
		}

		if !r.ContinueOnError {
			return outs, err
		}

		logger.Error("query item failed, continuing", "query", item.QueryFile, "error", err)
		errs = multierror.Append(errs, err)
	}

	return outs, errs.ErrorOrNil()
}

// runItem rewrites one descriptor, invokes the engine against it and removes
// the artifact. Removal happens on success and failure alike; a removal
// failure never masks an in-flight error.
func (r *Runner) runItem(ctx context.Context, item batch.QueryItem, displayNum int) (err error) {
	path, rwErr := r.Rewriter.Rewrite(item.QueryFile, item.Database, item.OutputFile)
	if rwErr != nil {
		// no artifact was produced, so there is nothing to delete
		return errors.Join(ErrRewrite, rwErr)
	}

	artifact := descriptor.NewArtifact(path)

	defer func() {
		rmErr := artifact.Remove()
		if rmErr == nil {
			return
		}

		if err != nil {
			ctxlog.Warn(ctx, "failed to remove temporary descriptor",
				"path", artifact.Path(), "error", rmErr)

			return
		}

		err = errors.Join(ErrCleanup, rmErr)
	}()

	if invErr := r.Invoker.Invoke(ctx, path, displayNum); invErr != nil {
		return errors.Join(ErrInvocation, invErr)
	}

	return nil
}
