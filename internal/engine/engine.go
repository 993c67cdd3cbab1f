// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package engine invokes the external model interface against one resolved
// query descriptor.
//
// The model interface is a Java application driven in batch mode. It needs a
// display to exist even headless, and its XML database bindings live in a
// shared library directory that must be on the library search path. The
// invoker owns building that environment; it does not interpret the engine's
// output, which goes to the files named inside the descriptor.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gcamkit/queryrun/internal/ctxlog"
)

var (
	// ErrConfig is returned when the engine paths are not configured.
	ErrConfig = errors.New("engine configuration incomplete")
	// ErrInvoke is returned when the model interface process could not be run.
	ErrInvoke = errors.New("model interface invocation failed")
	// ErrTimeout is returned when the invocation exceeds the configured timeout.
	ErrTimeout = errors.New("model interface invocation timed out")
	// ErrExitStatus is returned when strict exit checking is on and the engine exits non-zero.
	ErrExitStatus = errors.New("model interface exited with non-zero status")
)

const (
	displayEnv = "DISPLAY"
	libPathEnv = "LD_LIBRARY_PATH"
	batchFlag  = "-b"
)

// Invoker runs the model interface. Configuration is injected explicitly;
// there is no process-wide configuration lookup.
type Invoker struct {
	// ModelInterface is the path to the model interface jar.
	ModelInterface string
	// DBXMLLib is the directory holding the XML database runtime libraries.
	DBXMLLib string
	// Java is the java executable to use. Empty means "java" from PATH.
	Java string
	// Timeout bounds a single invocation. Zero means no timeout; a hung
	// engine then blocks the batch indefinitely.
	Timeout time.Duration
	// StrictExit treats a non-zero engine exit status as an error. Off by
	// default: the engine's contract is "ran to completion", and success is
	// judged from the output files it was configured to produce.
	StrictExit bool
}

// Invoke runs the model interface in batch mode against the resolved
// descriptor, blocking until it exits. The display number selects the
// virtual display the engine binds to.
func (inv *Invoker) Invoke(ctx context.Context, descriptorPath string, displayNum int) error {
	if inv.ModelInterface == "" || inv.DBXMLLib == "" {
		return ErrConfig
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	java := inv.Java
	if java == "" {
		java = "java"
	}

	cmd := exec.CommandContext(ctx, java, "-jar", inv.ModelInterface, batchFlag, descriptorPath)
	cmd.Env = invocationEnv(os.Environ(), displayNum, inv.DBXMLLib)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	ctxlog.Debug(ctx, "invoking model interface",
		"descriptor", descriptorPath, "display", displayNum, "jar", inv.ModelInterface)

	err := cmd.Run()

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}

	var exitErr *exec.ExitError

	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		if inv.StrictExit {
			return fmt.Errorf("%w: %d", ErrExitStatus, exitErr.ExitCode())
		}

		// engine exit status is the engine's business; success is judged
		// from the output files it produced
		ctxlog.Warn(ctx, "model interface exited non-zero",
			"exitCode", exitErr.ExitCode(), "descriptor", descriptorPath)

		return nil
	default:
		return errors.Join(ErrInvoke, err)
	}
}

// invocationEnv builds the child environment: the display target is pointed
// at the session's display and the library search path is extended, not
// replaced, with the XML database library directory.
func invocationEnv(environ []string, displayNum int, lib string) []string {
	out := make([]string, 0, len(environ)+2)
	foundLib := false

	for _, kv := range environ {
		switch {
		case strings.HasPrefix(kv, libPathEnv+"="):
			out = append(out, kv+":"+lib)
			foundLib = true
		case strings.HasPrefix(kv, displayEnv+"="):
			// replaced below with the session's display
		default:
			out = append(out, kv)
		}
	}

	if !foundLib {
		out = append(out, libPathEnv+"="+lib)
	}

	out = append(out, fmt.Sprintf("%s=:%d.0", displayEnv, displayNum))

	return out
}
