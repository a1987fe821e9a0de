// Copyright 2026 The Kestrel Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package backend declares the contract a storage driver must satisfy
// to back the SQL evaluator (spec.md §6): execute SQL and stream
// named-column rows back, and materialize a frame.Frame into a table so
// it can be joined against in later queries. The contract is grounded
// on the teacher's `driver.Conn`/`driver.Rows` split (a connection that
// prepares/executes, an iterator that exposes Columns()/Next(dest)),
// simplified from a full `database/sql/driver` SPI implementation (the
// teacher wraps a `sqle.Engine` as a driver so `database/sql` callers
// get it for free; we only need the two operations above, so exposing
// our own small interface avoids implementing the entire
// `database/sql/driver` surface for no benefit).
package backend

import (
	"context"
	"io"

	"github.com/kestrel-lang/kestrel/frame"
)

// Connection is a live handle to a backend capable of executing SQL
// text produced by sqltranslate and of persisting a frame.Frame as a
// named table.
type Connection interface {
	// Execute runs query with the given positional bind args and
	// returns a streaming row iterator.
	Execute(ctx context.Context, query string, args []any) (RowIter, error)

	// WriteFrame persists fr under tableName, replacing any existing
	// table of that name (used both to materialize a Construct's
	// literal rows and to realize a cached result for reuse in a later
	// query).
	WriteFrame(ctx context.Context, tableName string, fr *frame.Frame) error

	// Close releases the connection's resources.
	Close() error
}

// RowIter streams the rows of an executed query, grounded on
// `driver.Rows`'s Columns()/Next(dest) shape.
type RowIter interface {
	// Columns returns the result's column names, in select-list order.
	Columns() []string

	// Next populates dest (sized len(Columns())) with the next row's
	// values, returning io.EOF once exhausted.
	Next(dest []any) error

	// Close releases the iterator's resources.
	Close() error
}

// ReadFrame drains iter into a frame.Frame, preserving iter.Columns()'s
// order, and closes iter when done.
func ReadFrame(iter RowIter) (*frame.Frame, error) {
	defer iter.Close()
	cols := iter.Columns()
	var rows []map[string]any
	for {
		dest := make([]any, len(cols))
		if err := iter.Next(dest); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = dest[i]
		}
		rows = append(rows, row)
	}
	return frame.FromRowsWithColumns(cols, rows), nil
}
