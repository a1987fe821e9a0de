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

// Package sqlitedb is the reference backend.Connection implementation
// (spec.md §6), a `database/sql` handle over `modernc.org/sqlite`
// grounded on the `sqldef-sqldef` repo's `sqlite3.Sqlite3Database`
// (`sql.Open("sqlite", dsn)` against the driver modernc.org/sqlite
// registers on import). Unlike the teacher's `driver` package, which
// wraps an in-process go-mysql-server engine behind the full
// `database/sql/driver` SPI so arbitrary MySQL clients can dial in,
// sqlitedb only needs to satisfy backend.Connection's two operations
// (Execute, WriteFrame), so it is a thin wrapper over `*sql.DB` rather
// than a driver.Conn/driver.Stmt implementation.
package sqlitedb

import (
	"context"
	"database/sql"
	sqldriver "database/sql/driver"
	"fmt"
	"regexp"
	"sync"

	"modernc.org/sqlite"

	"github.com/kestrel-lang/kestrel/backend"
	"github.com/kestrel-lang/kestrel/frame"
	"github.com/kestrel-lang/kestrel/kerr"
)

var registerRegexpOnce sync.Once

// registerRegexp installs a process-wide `regexp(pattern, value)`
// scalar function, matching the sqltranslate SQLite dialect's
// `col REGEXP ?` rendering. SQLite desugars `X REGEXP Y` into a call to
// `regexp(Y, X)`, so the first argument is the pattern and the second
// is the value being matched. SQLite has no built-in REGEXP; this is
// the pure-Go equivalent of the REGEXP extension cgo bindings like
// mattn/go-sqlite3 register via a connection hook.
func registerRegexp() {
	registerRegexpOnce.Do(func() {
		_ = sqlite.RegisterDeterministicScalarFunction("regexp", 2,
			func(ctx *sqlite.FunctionContext, args []sqldriver.Value) (sqldriver.Value, error) {
				pattern, _ := args[0].(string)
				value, _ := args[1].(string)
				return regexp.MatchString(pattern, value)
			})
	})
}

// Open returns a Conn backed by a fresh SQLite database at dsn (a file
// path, or ":memory:" for an ephemeral in-process database), with the
// REGEXP function available to translated queries.
func Open(dsn string) (*Conn, error) {
	registerRegexp()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, kerr.ErrBackend.New(err.Error())
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers on one file
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, kerr.ErrBackend.New(err.Error())
	}
	return &Conn{db: db}, nil
}

// Conn is a backend.Connection over a SQLite database.
type Conn struct {
	db *sql.DB
}

var _ backend.Connection = (*Conn)(nil)

// Execute runs query against the database and streams its result.
func (c *Conn) Execute(ctx context.Context, query string, args []any) (backend.RowIter, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, kerr.ErrBackend.New(err.Error())
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, kerr.ErrBackend.New(err.Error())
	}
	return &rowIter{rows: rows, cols: cols}, nil
}

// WriteFrame persists fr as tableName, inferring a column's SQLite
// storage class from the first non-nil value seen in fr for that
// column (SQLite's type affinity is advisory, so an approximate
// inference is sufficient; unconstrained columns fall back to the
// untyped BLOB affinity, which still accepts ints/floats/text/nulls).
func (c *Conn) WriteFrame(ctx context.Context, tableName string, fr *frame.Frame) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return kerr.ErrBackend.New(err.Error())
	}
	defer tx.Rollback()

	quoted := quoteIdent(tableName)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		return kerr.ErrBackend.New(err.Error())
	}
	if _, err := tx.ExecContext(ctx, createTableDDL(tableName, fr)); err != nil {
		return kerr.ErrBackend.New(err.Error())
	}

	cols := fr.Columns()
	if len(cols) > 0 {
		insert := insertDML(tableName, cols)
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return kerr.ErrBackend.New(err.Error())
		}
		defer stmt.Close()
		for i := 0; i < fr.NumRows(); i++ {
			row := fr.Row(i)
			args := make([]any, len(cols))
			for j, col := range cols {
				args[j] = row[col]
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return kerr.ErrBackend.New(err.Error())
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return kerr.ErrBackend.New(err.Error())
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Conn) Close() error {
	return c.db.Close()
}

func createTableDDL(tableName string, fr *frame.Frame) string {
	cols := fr.Columns()
	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = quoteIdent(col) + " " + columnAffinity(fr, col)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tableName), joinComma(defs))
}

func insertDML(tableName string, cols []string) string {
	quotedCols := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		quotedCols[i] = quoteIdent(col)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(tableName), joinComma(quotedCols), joinComma(placeholders))
}

// columnAffinity picks a SQLite column type from the first non-nil
// value observed for col, matching spec.md's "best-effort native typing"
// wording for the reference backend (§6).
func columnAffinity(fr *frame.Frame, col string) string {
	values, _ := fr.Column(col)
	for _, v := range values {
		switch v.(type) {
		case int, int64:
			return "INTEGER"
		case float64, float32:
			return "REAL"
		case string:
			return "TEXT"
		case []byte:
			return "BLOB"
		case bool:
			return "INTEGER"
		}
	}
	return "BLOB"
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
