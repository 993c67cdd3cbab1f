// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultsWhenContextEmpty(t *testing.T) {
	assert.Same(t, DefaultLogger, Logger(context.Background()))
}

func TestNewNilLoggerUsesDefault(t *testing.T) {
	ctx := New(context.Background(), nil)
	assert.Same(t, DefaultLogger, Logger(ctx))
}

func TestNewCarriesLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))

	ctx := New(context.Background(), logger)
	require.Same(t, logger, Logger(ctx))

	Info(ctx, "hello", "key", "value")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "key=value")
}

func TestPrettyHandlerOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelDebug)

	logger := slog.New(NewPrettyHandler(
		&slog.HandlerOptions{Level: lv},
		WithDestinationWriter(buf),
	))

	logger.Warn("careful now", "display", 42)

	out := buf.String()
	assert.Contains(t, out, "WARN:")
	assert.Contains(t, out, "careful now")
	assert.Contains(t, out, "display")
	assert.Contains(t, out, "42")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandlerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelWarn)

	logger := slog.New(NewPrettyHandler(
		&slog.HandlerOptions{Level: lv},
		WithDestinationWriter(buf),
	))

	logger.Debug("not shown")
	assert.Empty(t, buf.String())

	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandlerWithAttrs(t *testing.T) {
	buf := &bytes.Buffer{}

	logger := slog.New(NewPrettyHandler(nil, WithDestinationWriter(buf)))
	logger = logger.With("runID", "abc123")

	logger.Warn("tagged")
	assert.Contains(t, buf.String(), "abc123")
}
