// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pathutil provides path resolution and directory helpers shared by
// the query pipeline.
package pathutil

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNoBaseDir is returned when a bare relative path is resolved without a
// base directory to resolve it against.
var ErrNoBaseDir = errors.New("no base directory supplied for relative path")

const dirMode = 0o755

// FS is the filesystem abstraction used for directory operations.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

// Abs converts a file name to an absolute path.
//
// Absolute names are returned unchanged. Names beginning with "./" or "../"
// are resolved against the current working directory. All other names are
// resolved against the supplied base directory; if base is empty they are
// resolved against the current working directory too, unless that is
// disallowed by the caller having no meaningful cwd, in which case
// filepath.Abs reports the error.
func Abs(name, base string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	if strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") {
		return filepath.Abs(name)
	}

	if base == "" {
		return "", ErrNoBaseDir
	}

	return filepath.Join(base, name), nil
}

// MkdirIfAbsent creates the named directory, along with any intermediate
// directories, if it does not already exist. It is not an error for the
// directory to exist; it is an error for a non-directory to exist at the name.
func MkdirIfAbsent(dirname string) error {
	err := FS.MkdirAll(dirname, dirMode)
	if err == nil {
		return nil
	}

	if ok, statErr := afero.DirExists(FS, dirname); statErr == nil && ok {
		return nil
	}

	return err
}

// AllExist reports whether every named file exists.
func AllExist(names []string) bool {
	for _, name := range names {
		ok, err := afero.Exists(FS, name)
		if err != nil || !ok {
			return false
		}
	}

	return true
}
