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

// Package sqltranslate renders an IR instruction chain into SQL text
// against a pluggable Translator, one instruction add_* method at a
// time, mirroring `interface/codegen/sql.py`'s SqlTranslator and
// `ossql.py`'s OpenSearchTranslator (no sqlalchemy-equivalent query
// builder exists in the pack, so rendering is done directly as a
// `strings.Builder` pipeline instead of an expression tree).
package sqltranslate

import "strconv"

// Dialect selects the SQL quoting/paging/regex conventions a Translator
// renders against (spec.md §4.F, SPEC_FULL.md Open Question decision 2).
type Dialect int

const (
	// DialectSQLite is the reference backend dialect (backend/sqlitedb):
	// double-quoted identifiers, `LIMIT n OFFSET m`, REGEXP via a
	// registered SQLite function.
	DialectSQLite Dialect = iota
	// DialectGeneric assumes ANSI-ish SQL with a MySQL-style REGEXP
	// operator; used for backends that don't need special-casing.
	DialectGeneric
	// DialectMySQL matches MySQL identifier quoting (backticks) and its
	// REGEXP operator.
	DialectMySQL
	// DialectPostgres uses double-quoted identifiers and Postgres's
	// `~`/`!~` regex operators instead of REGEXP.
	DialectPostgres
)

func (d Dialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectMySQL:
		return "mysql"
	case DialectPostgres:
		return "postgres"
	default:
		return "generic"
	}
}

// quoteIdent renders a single identifier (column or table name) quoted
// per dialect convention.
func (d Dialect) quoteIdent(name string) string {
	switch d {
	case DialectMySQL:
		return "`" + name + "`"
	case DialectPostgres, DialectSQLite:
		return `"` + name + `"`
	default:
		return name
	}
}

// regexOp returns the SQL operator/function-style rendering for a
// MATCHES/NOT MATCHES comparison against col and a placeholder for the
// pattern, per dialect (SPEC_FULL.md Open Question decision 2).
func (d Dialect) regexOp(col string, negate bool) (opener, closer string) {
	switch d {
	case DialectPostgres:
		if negate {
			return col + " !~ ", ""
		}
		return col + " ~ ", ""
	default: // DialectSQLite, DialectGeneric, DialectMySQL all support REGEXP
		if negate {
			return "NOT (" + col + " REGEXP ", ")"
		}
		return col + " REGEXP ", ""
	}
}

// placeholder renders the n-th (1-indexed) bind placeholder for a
// parameterized query.
func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// limitOffsetClause renders the LIMIT/OFFSET tail. All four dialects
// here share MySQL/SQLite/Postgres's common `LIMIT n OFFSET m` syntax;
// this is factored out because a future dialect (e.g. SQL Server's
// `OFFSET ... FETCH`) would only need to change this one method.
func (d Dialect) limitOffsetClause(limit, offset int) string {
	clause := ""
	if limit > 0 {
		clause += " LIMIT " + strconv.Itoa(limit)
	}
	if offset > 0 {
		clause += " OFFSET " + strconv.Itoa(offset)
	}
	return clause
}
