// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package descriptor rewrites batch query descriptor templates.
//
// A descriptor is an XML-like text file carrying up to three recognized tags:
// the database location, the output file and the referenced query file. The
// database and output locations are encoded in the file, so to set them per
// run the template is copied line by line into a fresh temporary file with
// the tag contents substituted. The original template is never modified.
package descriptor

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gcamkit/queryrun/internal/pathutil"
	"github.com/spf13/afero"
)

var (
	// ErrTemplateRead is returned when the template file cannot be read.
	ErrTemplateRead = errors.New("failed to read descriptor template")
	// ErrTempCreate is returned when the temporary descriptor cannot be created.
	ErrTempCreate = errors.New("failed to create temporary descriptor")
	// ErrQueryFileResolve is returned when the query file reference cannot be resolved.
	ErrQueryFileResolve = errors.New("failed to resolve query file reference")
)

// Tag patterns recognized in a descriptor. Each appears at most once per
// line; anything else passes through verbatim.
var (
	dbLocTag     = regexp.MustCompile(`<xmldbLocation>.*</xmldbLocation>`)
	outFileTag   = regexp.MustCompile(`<outFile>.*</outFile>`)
	queryFileTag = regexp.MustCompile(`<queryFile>(.*)</queryFile>`)
)

// FS is the filesystem abstraction used for file operations.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

// TempDirPath returns the directory temporary descriptors are created in.
var TempDirPath = os.TempDir

// Rewriter produces resolved descriptors from a template.
type Rewriter struct {
	// BaseDir is the directory bare query-file references resolve against.
	BaseDir string
}

// Rewrite copies the template into a new temporary file, substituting the
// database location and output file tags and re-resolving the query file
// reference. It returns the path of the temporary file; the caller owns the
// file and is responsible for removing it.
//
// Substitution is line-local and idempotent: rewriting an already-rewritten
// descriptor with the same arguments reproduces identical content.
func (r *Rewriter) Rewrite(template, database, outFile string) (string, error) {
	src, err := FS.Open(template)
	if err != nil {
		return "", errors.Join(ErrTemplateRead, err)
	}
	defer src.Close() //nolint:errcheck

	tmp, err := afero.TempFile(FS, TempDirPath(), "query-*.xml")
	if err != nil {
		return "", errors.Join(ErrTempCreate, err)
	}

	name := tmp.Name()

	if err := r.rewriteLines(src, tmp, database, outFile); err != nil {
		_ = tmp.Close()
		_ = FS.Remove(name)

		return "", err
	}

	if err := tmp.Close(); err != nil {
		_ = FS.Remove(name)

		return "", errors.Join(ErrTempCreate, err)
	}

	return name, nil
}

func (r *Rewriter) rewriteLines(src afero.File, dst afero.File, database, outFile string) error {
	w := bufio.NewWriter(dst)
	scanner := bufio.NewScanner(src)

	for scanner.Scan() {
		line := scanner.Text()

		line = dbLocTag.ReplaceAllLiteralString(line, "<xmldbLocation>"+database+"</xmldbLocation>")
		line = outFileTag.ReplaceAllLiteralString(line, "<outFile>"+outFile+"</outFile>")

		if m := queryFileTag.FindStringSubmatch(line); m != nil {
			resolved, err := r.resolveQueryFile(m[1])
			if err != nil {
				return errors.Join(ErrQueryFileResolve, err)
			}

			line = queryFileTag.ReplaceAllLiteralString(line, "<queryFile>"+resolved+"</queryFile>")
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Join(ErrTempCreate, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Join(ErrTemplateRead, err)
	}

	if err := w.Flush(); err != nil {
		return errors.Join(ErrTempCreate, err)
	}

	return nil
}

// resolveQueryFile turns the query file reference from the template into an
// absolute path. Absolute references pass through unchanged. References
// starting with a current- or parent-directory marker resolve against the
// working directory. Anything else loses its (probably bogus) directory
// component and resolves against the rewriter's base directory.
func (r *Rewriter) resolveQueryFile(ref string) (string, error) {
	if filepath.IsAbs(ref) {
		return ref, nil
	}

	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") {
		return filepath.Abs(ref)
	}

	return pathutil.Abs(filepath.Base(ref), r.BaseDir)
}
