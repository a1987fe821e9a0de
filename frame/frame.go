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

// Package frame implements the columnar in-memory table shared by the
// frame-native evaluator (spec.md §4.H) and, for Construct materialization
// and final sink results, the SQL evaluator (§4.G). It is new code: the
// pack carries no Go dataframe library, so it is grounded directly on
// `original_source/.../interface/codegen/dataframe.py`'s pandas-DataFrame
// operations, translated one function at a time into Go slices instead of
// a borrowed third-party dataframe package (see DESIGN.md for why no
// ecosystem dataframe library was adopted instead).
package frame

import "github.com/kestrel-lang/kestrel/kerr"

// Frame is an ordered set of named columns sharing one row count. Column
// values are untyped (any) since a row can mix native-driver types
// (int64, float64, string, bool, nil) depending on its source.
type Frame struct {
	columns []string
	data    map[string][]any
	numRows int
}

// New returns an empty Frame with the given column order and no rows.
func New(columns []string) *Frame {
	data := make(map[string][]any, len(columns))
	for _, c := range columns {
		data[c] = nil
	}
	return &Frame{columns: append([]string(nil), columns...), data: data}
}

// FromRows builds a Frame from a list of row maps, grounded on
// `_eval_Construct`'s `DataFrame(instruction.data)`: the columns are the
// union of all rows' keys, added as rows are visited in order. Keys
// within one row are visited in Go map iteration order, so the column
// order is not deterministic; FromRowsWithColumns takes a fixed order.
func FromRows(rows []map[string]any) *Frame {
	var columns []string
	seen := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	fr := New(columns)
	for _, row := range rows {
		fr.appendRow(row)
	}
	return fr
}

// FromRowsWithColumns builds a Frame with a caller-fixed column order
// (rather than inferring it from first-seen keys), used when the column
// order is already authoritative, e.g. a backend's query result set.
func FromRowsWithColumns(columns []string, rows []map[string]any) *Frame {
	fr := New(columns)
	for _, row := range rows {
		fr.appendRow(row)
	}
	return fr
}

func (fr *Frame) appendRow(row map[string]any) {
	for _, c := range fr.columns {
		fr.data[c] = append(fr.data[c], row[c])
	}
	fr.numRows++
}

// Columns returns the Frame's column names in order.
func (fr *Frame) Columns() []string {
	return append([]string(nil), fr.columns...)
}

// NumRows returns the number of rows in the Frame.
func (fr *Frame) NumRows() int {
	return fr.numRows
}

// Column returns the values of the named column and whether it exists.
func (fr *Frame) Column(name string) ([]any, bool) {
	col, ok := fr.data[name]
	return col, ok
}

// Row returns row i as a map, one entry per column.
func (fr *Frame) Row(i int) map[string]any {
	row := make(map[string]any, len(fr.columns))
	for _, c := range fr.columns {
		row[c] = fr.data[c][i]
	}
	return row
}

// Rows returns every row as a map, in order.
func (fr *Frame) Rows() []map[string]any {
	rows := make([]map[string]any, fr.numRows)
	for i := range rows {
		rows[i] = fr.Row(i)
	}
	return rows
}

// Head returns a Frame containing the first n rows (or fewer, if the
// Frame has fewer than n), grounded on `_eval_Limit`'s `dataframe.head(n)`.
func (fr *Frame) Head(n int) *Frame {
	if n < 0 || n > fr.numRows {
		n = fr.numRows
	}
	out := New(fr.columns)
	for _, c := range fr.columns {
		out.data[c] = append([]any(nil), fr.data[c][:n]...)
	}
	out.numRows = n
	return out
}

// SelectAttrs returns a Frame restricted to (and ordered by) attrs,
// grounded on `_eval_ProjectAttrs`'s `dataframe[list(instruction.attrs)]`.
func (fr *Frame) SelectAttrs(attrs []string) (*Frame, error) {
	out := New(attrs)
	for _, c := range attrs {
		col, ok := fr.data[c]
		if !ok {
			return nil, kerr.ErrSourceSchemaNotFound.New("no column " + c + " in frame")
		}
		out.data[c] = append([]any(nil), col...)
	}
	out.numRows = fr.numRows
	return out, nil
}

// ProjectEntity returns a Frame containing only the columns prefixed by
// "ocsfField.", with that prefix stripped, then deduplicated, grounded
// on `_eval_ProjectEntity` (select-by-prefix, rename, drop_duplicates).
func (fr *Frame) ProjectEntity(ocsfField string) *Frame {
	prefix := ocsfField + "."
	var cols []string
	for _, c := range fr.columns {
		if len(c) > len(prefix) && c[:len(prefix)] == prefix {
			cols = append(cols, c[len(prefix):])
		}
	}
	out := New(cols)
	i := 0
	for _, c := range fr.columns {
		if len(c) > len(prefix) && c[:len(prefix)] == prefix {
			out.data[cols[i]] = append([]any(nil), fr.data[c]...)
			i++
		}
	}
	out.numRows = fr.numRows
	return out.DropDuplicates()
}

// Filter returns a Frame containing only the rows where mask[i] is true.
// mask must have exactly fr.numRows entries.
func (fr *Frame) Filter(mask []bool) *Frame {
	out := New(fr.columns)
	for i, keep := range mask {
		if !keep {
			continue
		}
		for _, c := range fr.columns {
			out.data[c] = append(out.data[c], fr.data[c][i])
		}
		out.numRows++
	}
	return out
}

// DropDuplicates returns a Frame with exact-duplicate rows (comparing
// every column's value) collapsed to their first occurrence, preserving
// row order, grounded on pandas' `drop_duplicates()` default behavior.
func (fr *Frame) DropDuplicates() *Frame {
	out := New(fr.columns)
	seen := map[string]bool{}
	for i := 0; i < fr.numRows; i++ {
		key := rowKey(fr.Row(i), fr.columns)
		if seen[key] {
			continue
		}
		seen[key] = true
		for _, c := range fr.columns {
			out.data[c] = append(out.data[c], fr.data[c][i])
		}
		out.numRows++
	}
	return out
}
