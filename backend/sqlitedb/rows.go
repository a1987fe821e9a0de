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

package sqlitedb

import (
	"database/sql"
	"io"

	"github.com/kestrel-lang/kestrel/backend"
)

// rowIter adapts *sql.Rows to backend.RowIter.
type rowIter struct {
	rows *sql.Rows
	cols []string
}

var _ backend.RowIter = (*rowIter)(nil)

func (r *rowIter) Columns() []string {
	return r.cols
}

// Next scans the next row into dest, matching backend.RowIter's
// io.EOF-on-exhaustion contract (sql.Rows.Next returns false both on
// exhaustion and on error, so Err is consulted to tell them apart).
func (r *rowIter) Next(dest []any) error {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	scanDest := make([]any, len(dest))
	for i := range scanDest {
		scanDest[i] = &dest[i]
	}
	return r.rows.Scan(scanDest...)
}

func (r *rowIter) Close() error {
	return r.rows.Close()
}
