// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package descriptor

import (
	"errors"
	"io/fs"
)

// Artifact is a single-use resolved descriptor file. Its lifetime is scoped
// to one engine invocation: the owner must remove it after the invocation
// returns, whether it succeeded or failed.
type Artifact struct {
	path    string
	removed bool
}

// NewArtifact wraps a rewritten descriptor path produced by Rewrite.
func NewArtifact(path string) *Artifact {
	return &Artifact{path: path}
}

// Path returns the location of the artifact.
func (a *Artifact) Path() string {
	return a.path
}

// Remove deletes the artifact. It is safe to call more than once, and a file
// that is already gone is not an error; anything else is reported so the
// caller can decide whether it outranks an in-flight failure.
func (a *Artifact) Remove() error {
	if a.removed {
		return nil
	}

	a.removed = true

	if err := FS.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}
