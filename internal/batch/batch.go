// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch normalizes the scalar-or-sequence query, database and output
// arguments into an aligned batch of query items.
package batch

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when the database or output inputs cannot be
// broadcast to the length of the query input.
var ErrLengthMismatch = errors.New("mismatch in input lengths")

// QueryItem is one unit of work: a batch query file, the database it runs
// against and the file its results are written to. Immutable once constructed.
type QueryItem struct {
	QueryFile  string
	Database   string
	OutputFile string
}

// Input is a tagged scalar-or-sequence argument. Call sites construct it
// explicitly with Scalar or Sequence; normalization logic operates only on
// this type, never on duck-typed values.
type Input struct {
	values []string
	scalar bool
}

// Scalar wraps a single value.
func Scalar(v string) Input {
	return Input{values: []string{v}, scalar: true}
}

// Sequence wraps an ordered list of values. A length-1 Sequence is distinct
// from a Scalar: broadcast rules treat them differently.
func Sequence(vs ...string) Input {
	return Input{values: vs}
}

// Len returns the number of values in the input.
func (in Input) Len() int {
	return len(in.values)
}

// Values returns a copy of the input's values.
func (in Input) Values() []string {
	out := make([]string, len(in.values))
	copy(out, in.values)

	return out
}

// Normalize aligns the three inputs into a batch of length L = queries.Len().
//
// A scalar database is broadcast to L, as is a length-1 database sequence. A
// scalar output is broadcast to L, but a length-1 output sequence is not: the
// output list must match the query list exactly. Any other length disagreement
// returns ErrLengthMismatch. No external resource is touched here, so a
// mismatch is always reported before anything needs cleaning up.
func Normalize(queries, databases, outputs Input) ([]QueryItem, error) {
	want := queries.Len()

	dbs, err := broadcast(databases, want, true)
	if err != nil {
		return nil, fmt.Errorf("databases: %w", err)
	}

	outs, err := broadcast(outputs, want, false)
	if err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}

	items := make([]QueryItem, want)
	for i, q := range queries.values {
		items[i] = QueryItem{
			QueryFile:  q,
			Database:   dbs[i],
			OutputFile: outs[i],
		}
	}

	return items, nil
}

// broadcast expands in to length want. Scalars always broadcast; length-1
// sequences broadcast only when allowSingle is set.
func broadcast(in Input, want int, allowSingle bool) ([]string, error) {
	n := in.Len()

	if n == want {
		return in.Values(), nil
	}

	if in.scalar || (allowSingle && n == 1) {
		out := make([]string, want)
		for i := range out {
			out[i] = in.values[0]
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, n, want)
}
