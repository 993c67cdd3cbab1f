// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package display manages a throwaway virtual display server for the
// lifetime of one batch run.
//
// The model interface needs an X display even though it never shows a window.
// Each session launches its own Xvfb instance on a randomized display number
// so that several pipeline instances can run concurrently on one host without
// fighting over the same display.
package display

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gcamkit/queryrun/internal/ctxlog"
)

var (
	// ErrAlreadyStarted is returned when Start is called on a running session.
	ErrAlreadyStarted = errors.New("display session already started")
	// ErrNotStarted is returned when the session's identifier is requested before Start.
	ErrNotStarted = errors.New("display session not started")
	// ErrStart is returned when the virtual display server could not be started.
	ErrStart = errors.New("failed to start virtual display server")
)

const (
	// minNum and maxNum bound the display number. Numbers up to 1024 are
	// safe on common X installations.
	minNum = 1
	maxNum = 1024

	// screenSpec is the geometry and depth of the virtual screen.
	screenSpec = "800x600x16"

	// settleDelay is how long a freshly started server must survive before
	// the display number is considered free. A collision makes Xvfb exit
	// almost immediately.
	settleDelay = 150 * time.Millisecond

	retryInterval = 100 * time.Millisecond
	maxRetries    = 4

	reapTimeout = 5 * time.Second
)

// XvfbPath is the executable launched to provide the virtual display.
// Variable so it can be replaced in tests.
var XvfbPath = "Xvfb"

// Getpid returns the current process id, used to perturb the display number
// draw. Variable so it can be replaced in tests.
var Getpid = os.Getpid

// Session is a single virtual display server instance. The zero value is
// ready to use. A session is started at most once and stopped at most once;
// Stop is safe to call on any exit path, including after a failed Start.
type Session struct {
	num      int
	cmd      *exec.Cmd
	waitCh   chan error
	stopOnce sync.Once
	running  bool
}

// newRand returns a pseudo-random source perturbed by the process identity,
// so co-resident pipeline instances diverge with high probability.
func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(Getpid())))
}

// drawNum draws a display number in [minNum, maxNum].
func drawNum(rng *rand.Rand) int {
	return minNum + rng.Intn(maxNum-minNum+1)
}

// Start launches the virtual display server on a randomized display number.
// Each attempt draws a fresh number; an attempt fails if the server cannot be
// spawned or exits within the settle delay, and is retried a bounded number
// of times.
func (s *Session) Start(ctx context.Context) error {
	if s.running {
		return ErrAlreadyStarted
	}

	rng := newRand()

	op := func() error {
		return s.attempt(ctx, drawNum(rng))
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), maxRetries), ctx)

	if err := backoff.Retry(op, bo); err != nil {
		return errors.Join(ErrStart, err)
	}

	s.running = true

	ctxlog.Info(ctx, "virtual display started", "display", s.num, "pid", s.cmd.Process.Pid)

	return nil
}

func (s *Session) attempt(ctx context.Context, num int) error {
	cmd := exec.Command(XvfbPath,
		fmt.Sprintf(":%d", num),
		"-pn",
		"-audit", "4",
		"-screen", "0", screenSpec,
	)

	ctxlog.Debug(ctx, "starting virtual display", "display", num, "path", XvfbPath)

	if err := cmd.Start(); err != nil {
		return err
	}

	waitCh := make(chan error, 1)

	go func() {
		waitCh <- cmd.Wait()
	}()

	select {
	case err := <-waitCh:
		// exited straight away, most likely a display number collision
		ctxlog.Debug(ctx, "virtual display exited during settle", "display", num, "error", err)

		return fmt.Errorf("display :%d exited during startup: %w", num, errOrExit(err))
	case <-time.After(settleDelay):
	}

	s.num = num
	s.cmd = cmd
	s.waitCh = waitCh

	return nil
}

func errOrExit(err error) error {
	if err == nil {
		return errors.New("clean exit")
	}

	return err
}

// Num returns the display number of a running session.
func (s *Session) Num() (int, error) {
	if !s.running {
		return 0, ErrNotStarted
	}

	return s.num, nil
}

// Stop forcibly terminates the display server. It runs at most once per
// session and tolerates a process that has already died; it must be called
// on every exit path of the owning batch, including error paths.
func (s *Session) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		if s.cmd == nil || s.cmd.Process == nil {
			return
		}

		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			ctxlog.Warn(ctx, "failed to kill virtual display", "display", s.num, "error", err)
		}

		// reap the process so it does not linger as a zombie
		select {
		case <-s.waitCh:
		case <-time.After(reapTimeout):
			ctxlog.Warn(ctx, "timed out waiting for virtual display to exit", "display", s.num)
		}

		s.running = false

		ctxlog.Info(ctx, "virtual display stopped", "display", s.num)
	})
}
