// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for OS termination signals.
//
// The first signal of a type is logged and ignored so that an in-flight
// engine invocation can finish; the second cancels the run context, which
// routes the batch through its cleanup paths (display stop, artifact
// removal).
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gcamkit/queryrun/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New creates a channel receiving the OS signals that should terminate the
// process. With no arguments it subscribes to the default termination set.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Watch monitors the signal channel and cancels the context on the second
// signal of a given type.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Info(ctx, "received second signal, cancelling run", "signal", sig.String())
			close(sigCh)
			cancel()

			return
		}

		ctxlog.Info(ctx, "received signal, send again to cancel", "signal", sig.String())

		seen[sig] = struct{}{}
	}
}
