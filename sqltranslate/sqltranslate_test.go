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

package sqltranslate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	f "github.com/kestrel-lang/kestrel/ir/filter"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
	"github.com/kestrel-lang/kestrel/mapping"
	"github.com/kestrel-lang/kestrel/sqltranslate"
)

const sampleMappingYAML = `
process:
  pid: pid
  name: proc_name
`

func loadMapping(t *testing.T) *mapping.Mapping {
	t.Helper()
	m, err := mapping.Load([]byte(sampleMappingYAML))
	require.NoError(t, err)
	return m
}

func TestResult_SimpleComparisonNoMapping(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	require.NoError(t, tr.AddFilter(inst.NewFilter(&f.IntComparison{Field: "pid", Op: f.NumEQ, Value: 42})))

	sql, params, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, `SELECT DISTINCT * FROM "events"`)
	assert.Contains(t, sql, `"pid" = ?`)
	assert.Equal(t, []any{int64(42)}, params)
}

func TestResultWithLiteralBinds_InlinesValues(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	require.NoError(t, tr.AddFilter(inst.NewFilter(&f.StrComparison{Field: "name", Op: f.StrEQ, Value: "bash"})))

	sql, err := tr.ResultWithLiteralBinds()
	require.NoError(t, err)
	assert.Contains(t, sql, `"name" = 'bash'`)
}

func TestResult_BoolExpAndMultiComp(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	exp := &f.BoolExp{
		LHS: &f.IntComparison{Field: "pid", Op: f.NumEQ, Value: 1},
		Op:  f.And,
		RHS: &f.MultiComp{Op: f.Or, Comps: []f.BasicComparison{
			&f.StrComparison{Field: "name", Op: f.StrEQ, Value: "a"},
			&f.StrComparison{Field: "name", Op: f.StrEQ, Value: "b"},
		}},
	}
	require.NoError(t, tr.AddFilter(inst.NewFilter(exp)))

	sql, params, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, `"pid" = ?`)
	assert.Contains(t, sql, `"name" = ?`)
	assert.Contains(t, sql, " OR ")
	assert.Contains(t, sql, " AND ")
	assert.Len(t, params, 3)
}

func TestRenderComparison_RegexDialects(t *testing.T) {
	exp := &f.StrComparison{Field: "name", Op: f.StrMatches, Value: "^a.*"}

	sqlite := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	require.NoError(t, sqlite.AddFilter(inst.NewFilter(exp)))
	sqliteSQL, err := sqlite.ResultWithLiteralBinds()
	require.NoError(t, err)
	assert.Contains(t, sqliteSQL, "REGEXP")

	pg := sqltranslate.New(sqltranslate.DialectPostgres, "events", sqltranslate.Options{})
	require.NoError(t, pg.AddFilter(inst.NewFilter(exp)))
	pgSQL, err := pg.ResultWithLiteralBinds()
	require.NoError(t, err)
	assert.Contains(t, pgSQL, " ~ ")
}

func TestRenderComparison_NotMatchesNegates(t *testing.T) {
	exp := &f.StrComparison{Field: "name", Op: f.StrNMatches, Value: "^a.*"}
	pg := sqltranslate.New(sqltranslate.DialectPostgres, "events", sqltranslate.Options{})
	require.NoError(t, pg.AddFilter(inst.NewFilter(exp)))
	sql, err := pg.ResultWithLiteralBinds()
	require.NoError(t, err)
	assert.Contains(t, sql, "!~")

	sqlite := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	require.NoError(t, sqlite.AddFilter(inst.NewFilter(exp)))
	sqliteSQL, err := sqlite.ResultWithLiteralBinds()
	require.NoError(t, err)
	assert.Contains(t, sqliteSQL, "NOT (")
	assert.Contains(t, sqliteSQL, "REGEXP")
}

func TestRenderComparison_MappingRenamesFieldToNative(t *testing.T) {
	m := loadMapping(t)
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "proc_table", sqltranslate.Options{Mapping: m})
	require.NoError(t, tr.AddFilter(inst.NewFilter(&f.IntComparison{Field: "process.pid", Op: f.NumEQ, Value: 7})))

	sql, params, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, `"pid" = ?`)
	assert.Equal(t, []any{int64(7)}, params)
}

func TestRenderRefComparison_InlinesSubquery(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	ref := &f.RefComparison{Fields: []string{"pid"}, Op: f.ListIn, Value: "SELECT pid FROM t1"}
	require.NoError(t, tr.AddFilter(inst.NewFilter(ref)))

	sql, _, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, `"pid" IN (SELECT pid FROM t1)`)
}

func TestRenderRefComparison_MultiColumnUsesTuple(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	ref := &f.RefComparison{Fields: []string{"pid", "host"}, Op: f.ListNotIn, Value: "SELECT pid, host FROM t1"}
	require.NoError(t, tr.AddFilter(inst.NewFilter(ref)))

	sql, _, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, `("pid", "host") NOT IN (SELECT pid, host FROM t1)`)
}

func TestRenderRefComparison_UnresolvedReferenceErrors(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	ref := &f.RefComparison{Fields: []string{"pid"}, Op: f.ListIn, Value: f.ReferenceValue{Variable: "a", Attributes: []string{"pid"}}}
	require.NoError(t, tr.AddFilter(inst.NewFilter(ref)))

	_, _, err := tr.Result()
	assert.Error(t, err)
}

func TestProjectEntity_WithMapping(t *testing.T) {
	m := loadMapping(t)
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "proc_table", sqltranslate.Options{Mapping: m})
	require.NoError(t, tr.AddProjectEntity(inst.NewProjectEntity("process", "process")))

	sql, _, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, `"pid" AS "pid"`)
	assert.Contains(t, sql, `"proc_name" AS "name"`)
}

func TestProjectEntity_NoMappingUsesSchemaPrefix(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "cte1", sqltranslate.Options{
		IsCTE:  true,
		Schema: []string{"process.pid", "process.name", "other.field"},
	})
	require.NoError(t, tr.AddProjectEntity(inst.NewProjectEntity("process", "process")))

	sql, _, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, `"process.pid" AS "pid"`)
	assert.Contains(t, sql, `"process.name" AS "name"`)
	assert.NotContains(t, sql, "other.field")
}

func TestProjectEntity_DualProjectionErrors(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	require.NoError(t, tr.AddProjectEntity(inst.NewProjectEntity("process", "process")))
	err := tr.AddProjectEntity(inst.NewProjectEntity("user", "user"))
	assert.Error(t, err)
}

func TestProjectAttrs_NoEntityProjectsBareColumns(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	require.NoError(t, tr.AddProjectAttrs(inst.NewProjectAttrs([]string{"pid", "name"})))

	sql, _, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, `SELECT DISTINCT "pid", "name" FROM`)
}

func TestLimitOffsetSort(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	require.NoError(t, tr.AddLimit(inst.NewLimit(10)))
	require.NoError(t, tr.AddOffset(inst.NewOffset(5)))
	require.NoError(t, tr.AddSort(inst.NewSort("pid", inst.Desc)))

	sql, _, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, `ORDER BY "pid" DESC`)
	assert.Contains(t, sql, "LIMIT 10")
	assert.Contains(t, sql, "OFFSET 5")
}

func TestResult_PostgresPlaceholdersAreIndexed(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectPostgres, "events", sqltranslate.Options{})
	exp := &f.BoolExp{
		LHS: &f.IntComparison{Field: "pid", Op: f.NumEQ, Value: 1},
		Op:  f.And,
		RHS: &f.IntComparison{Field: "host_id", Op: f.NumEQ, Value: 2},
	}
	require.NoError(t, tr.AddFilter(inst.NewFilter(exp)))

	sql, params, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, "$1")
	assert.Contains(t, sql, "$2")
	assert.Len(t, params, 2)
}

func TestResult_TimeRangeAndedIntoFilter(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{Timestamp: "ts"})
	filt := inst.NewFilter(&f.IntComparison{Field: "pid", Op: f.NumEQ, Value: 1})
	filt.TimeRange = f.TimeRange{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Stop:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, tr.AddFilter(filt))

	sql, err := tr.ResultWithLiteralBinds()
	require.NoError(t, err)
	assert.Contains(t, sql, `"ts" >= '2026-01-01T00:00:00Z'`)
	assert.Contains(t, sql, `"ts" < '2026-01-02T00:00:00Z'`)
	assert.Contains(t, sql, `"pid" = 1`)
}

func TestAddInstruction_DispatchesByKind(t *testing.T) {
	tr := sqltranslate.New(sqltranslate.DialectSQLite, "events", sqltranslate.Options{})
	require.NoError(t, tr.AddInstruction(inst.NewLimit(3)))

	sql, _, err := tr.Result()
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 3")
}
