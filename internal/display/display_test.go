// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package display

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeServer writes a shell script standing in for Xvfb and returns its path.
func fakeServer(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "xvfb")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	return path
}

func TestDrawNumRange(t *testing.T) {
	rng := newRand()

	for range 10000 {
		n := drawNum(rng)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 1024)
	}
}

func TestDrawNumDivergesAcrossProcessIdentities(t *testing.T) {
	// probabilistic: sessions seeded with different pids should draw
	// different sequences with overwhelming probability
	draw := func(pid int) []int {
		defer gostub.Stub(&Getpid, func() int { return pid }).Reset()

		rng := newRand()
		out := make([]int, 32)
		for i := range out {
			out[i] = drawNum(rng)
		}

		return out
	}

	assert.NotEqual(t, draw(1001), draw(2002))
}

func TestSessionStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	defer gostub.Stub(&XvfbPath, fakeServer(t, "sleep 60")).Reset()

	ctx := context.Background()
	s := &Session{}

	require.NoError(t, s.Start(ctx))

	num, err := s.Num()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, num, 1)
	assert.LessOrEqual(t, num, 1024)

	s.Stop(ctx)
	// a second stop is a no-op
	s.Stop(ctx)

	_, err = s.Num()
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestSessionStartTwice(t *testing.T) {
	defer goleak.VerifyNone(t)
	defer gostub.Stub(&XvfbPath, fakeServer(t, "sleep 60")).Reset()

	ctx := context.Background()
	s := &Session{}

	require.NoError(t, s.Start(ctx))
	defer s.Stop(ctx)

	assert.ErrorIs(t, s.Start(ctx), ErrAlreadyStarted)
}

func TestSessionStartMissingBinary(t *testing.T) {
	defer goleak.VerifyNone(t)
	defer gostub.Stub(&XvfbPath, "/nonexistent/xvfb").Reset()

	ctx := context.Background()
	s := &Session{}

	assert.ErrorIs(t, s.Start(ctx), ErrStart)

	// stopping a session that never started is safe
	s.Stop(ctx)
}

func TestSessionStartServerExitsImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)
	defer gostub.Stub(&XvfbPath, fakeServer(t, "exit 1")).Reset()

	ctx := context.Background()
	s := &Session{}

	assert.ErrorIs(t, s.Start(ctx), ErrStart)
	s.Stop(ctx)
}

func TestNumBeforeStart(t *testing.T) {
	s := &Session{}
	_, err := s.Num()
	assert.ErrorIs(t, err, ErrNotStarted)
}
