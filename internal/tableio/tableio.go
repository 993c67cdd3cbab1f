// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tableio reads the simple CSV tables produced around model runs.
//
// Robust CSV handling (quoting, escaping) is out of scope: the only fixup
// applied is removing a single trailing comma, which the model interface
// likes to emit. Scenario names are the other wrinkle: they invariably
// contain a comma, so ScrubScenario replaces them with a benign token before
// a line is split.
package tableio

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gcamkit/queryrun/internal/strutil"
	"github.com/spf13/afero"
)

var (
	// ErrRead is returned when the table file cannot be read.
	ErrRead = errors.New("failed to read region table")
	// ErrFloatConv is returned when a cell cannot be converted to a float.
	ErrFloatConv = errors.New("failed to convert cell to float")
)

// FS is the filesystem abstraction used for file operations.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

// scenarioPattern matches a quoted scenario field at the start of a line.
var scenarioPattern = regexp.MustCompile(`^"[^"]*"`)

// ScrubScenario replaces the leading quoted scenario field of a model output
// line with a benign token, so that splitting on commas works.
func ScrubScenario(line string) string {
	return scenarioPattern.ReplaceAllLiteralString(line, "scenario")
}

// Options controls how a region table is read.
type Options struct {
	// SkipRows is the number of initial header rows to skip.
	SkipRows int
}

// Table is a CSV table of regions and properties. The region name is the
// first column; Order preserves the original row order in case it matters.
type Table struct {
	Order []string
	Rows  map[string][]string
}

// Scalar returns the lone value for a region in a two-column table.
func (t *Table) Scalar(region string) (string, bool) {
	row, ok := t.Rows[region]
	if !ok || len(row) != 1 {
		return "", false
	}

	return row[0], true
}

// Floats converts every cell of the table to float64, keyed by region.
func (t *Table) Floats() (map[string][]float64, error) {
	out := make(map[string][]float64, len(t.Rows))

	for rgn, row := range t.Rows {
		vals := make([]float64, len(row))

		for i, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: region %q column %d: %v", ErrFloatConv, rgn, i, err)
			}

			vals[i] = v
		}

		out[rgn] = vals
	}

	return out, nil
}

// ReadRegionTable reads a CSV table of regions and properties from path.
// Cells are whitespace-trimmed; a single trailing comma per line is dropped.
func ReadRegionTable(path string, opts Options) (*Table, error) {
	f, err := FS.Open(path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	defer f.Close() //nolint:errcheck

	t := &Table{Rows: make(map[string][]string)}
	scanner := bufio.NewScanner(f)
	row := 0

	for scanner.Scan() {
		row++
		if row <= opts.SkipRows {
			continue
		}

		line := strutil.TrimTrailingComma(strutil.Chomp(scanner.Text()))
		if line == "" {
			continue
		}

		toks := strings.Split(line, ",")
		rgn := strings.TrimSpace(toks[0])

		data := make([]string, len(toks)-1)
		for i, tok := range toks[1:] {
			data[i] = strings.TrimSpace(tok)
		}

		t.Order = append(t.Order, rgn)
		t.Rows[rgn] = data
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Join(ErrRead, err)
	}

	return t, nil
}
