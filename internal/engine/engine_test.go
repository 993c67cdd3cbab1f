// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJava writes a shell script standing in for the java executable.
func fakeJava(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	return path
}

func TestInvocationEnv(t *testing.T) {
	environ := []string{"HOME=/home/u", "LD_LIBRARY_PATH=/usr/lib", "DISPLAY=:0"}

	env := invocationEnv(environ, 42, "/opt/dbxml/lib")

	assert.Contains(t, env, "HOME=/home/u")
	assert.Contains(t, env, "LD_LIBRARY_PATH=/usr/lib:/opt/dbxml/lib")
	assert.Contains(t, env, "DISPLAY=:42.0")
	assert.NotContains(t, env, "DISPLAY=:0")
}

func TestInvocationEnvNoExistingLibPath(t *testing.T) {
	env := invocationEnv([]string{"HOME=/home/u"}, 7, "/opt/dbxml/lib")

	assert.Contains(t, env, "LD_LIBRARY_PATH=/opt/dbxml/lib")
	assert.Contains(t, env, "DISPLAY=:7.0")
}

func TestInvokeRunsEngineWithEnvironment(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "env.txt")
	t.Setenv("ENGINE_TEST_OUT", outFile)
	t.Setenv("LD_LIBRARY_PATH", "/preexisting")

	inv := &Invoker{
		ModelInterface: "/opt/mi/ModelInterface.jar",
		DBXMLLib:       "/opt/dbxml/lib",
		Java:           fakeJava(t, `echo "$DISPLAY" > "$ENGINE_TEST_OUT"; echo "$LD_LIBRARY_PATH" >> "$ENGINE_TEST_OUT"; echo "$@" >> "$ENGINE_TEST_OUT"`),
	}

	require.NoError(t, inv.Invoke(context.Background(), "/tmp/resolved.xml", 99))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ":99.0", lines[0])
	assert.Equal(t, "/preexisting:/opt/dbxml/lib", lines[1])
	assert.Equal(t, "-jar /opt/mi/ModelInterface.jar -b /tmp/resolved.xml", lines[2])
}

func TestInvokeNonZeroExitIsNotAnErrorByDefault(t *testing.T) {
	inv := &Invoker{
		ModelInterface: "/opt/mi/ModelInterface.jar",
		DBXMLLib:       "/opt/dbxml/lib",
		Java:           fakeJava(t, "exit 3"),
	}

	assert.NoError(t, inv.Invoke(context.Background(), "/tmp/resolved.xml", 1))
}

func TestInvokeStrictExit(t *testing.T) {
	inv := &Invoker{
		ModelInterface: "/opt/mi/ModelInterface.jar",
		DBXMLLib:       "/opt/dbxml/lib",
		Java:           fakeJava(t, "exit 3"),
		StrictExit:     true,
	}

	assert.ErrorIs(t, inv.Invoke(context.Background(), "/tmp/resolved.xml", 1), ErrExitStatus)
}

func TestInvokeTimeout(t *testing.T) {
	inv := &Invoker{
		ModelInterface: "/opt/mi/ModelInterface.jar",
		DBXMLLib:       "/opt/dbxml/lib",
		Java:           fakeJava(t, "sleep 30"),
		Timeout:        100 * time.Millisecond,
	}

	assert.ErrorIs(t, inv.Invoke(context.Background(), "/tmp/resolved.xml", 1), ErrTimeout)
}

func TestInvokeMissingExecutable(t *testing.T) {
	inv := &Invoker{
		ModelInterface: "/opt/mi/ModelInterface.jar",
		DBXMLLib:       "/opt/dbxml/lib",
		Java:           "/nonexistent/java",
	}

	assert.ErrorIs(t, inv.Invoke(context.Background(), "/tmp/resolved.xml", 1), ErrInvoke)
}

func TestInvokeIncompleteConfig(t *testing.T) {
	inv := &Invoker{ModelInterface: "", DBXMLLib: "/opt/dbxml/lib"}
	assert.ErrorIs(t, inv.Invoke(context.Background(), "x.xml", 1), ErrConfig)

	inv = &Invoker{ModelInterface: "/opt/mi.jar", DBXMLLib: ""}
	assert.ErrorIs(t, inv.Invoke(context.Background(), "x.xml", 1), ErrConfig)
}
