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

package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	f "github.com/kestrel-lang/kestrel/ir/filter"
	"github.com/kestrel-lang/kestrel/frame"
)

func sampleRows() []map[string]any {
	return []map[string]any{
		{"process.pid": int64(1), "process.name": "bash"},
		{"process.pid": int64(2), "process.name": "sh"},
		{"process.pid": int64(2), "process.name": "sh"},
	}
}

func TestFromRows_ColumnOrderAndValues(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	assert.Equal(t, 3, fr.NumRows())
	col, ok := fr.Column("process.pid")
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2), int64(2)}, col)
}

// FromRows infers column order by ranging each row map for first-seen
// keys, and Go randomizes map iteration order — so FromRows alone
// cannot promise a stable column order across runs. Callers that need a
// deterministic order (e.g. a parsed `NEW` statement, spec.md §8
// Testable Scenario 1) must capture it themselves while the source
// order is still known and pass it through FromRowsWithColumns instead.
func TestFromRowsWithColumns_PreservesDeclaredOrder(t *testing.T) {
	fr := frame.FromRowsWithColumns([]string{"name", "pid"}, []map[string]any{
		{"name": "bash", "pid": int64(1)},
		{"name": "sh", "pid": int64(2)},
	})
	assert.Equal(t, []string{"name", "pid"}, fr.Columns())
}

func TestHead_TruncatesRows(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	head := fr.Head(1)
	assert.Equal(t, 1, head.NumRows())
	assert.Equal(t, int64(1), head.Row(0)["process.pid"])
}

func TestSelectAttrs_RestrictsColumns(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	sel, err := fr.SelectAttrs([]string{"process.name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"process.name"}, sel.Columns())
	_, ok := sel.Column("process.pid")
	assert.False(t, ok)
}

func TestSelectAttrs_UnknownColumnErrors(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	_, err := fr.SelectAttrs([]string{"nope"})
	assert.Error(t, err)
}

func TestProjectEntity_StripsPrefixAndDedupes(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	proj := fr.ProjectEntity("process")
	assert.ElementsMatch(t, []string{"pid", "name"}, proj.Columns())
	assert.Equal(t, 2, proj.NumRows()) // the two identical {2, "sh"} rows collapse
}

func TestDropDuplicates_CollapsesExactRows(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	deduped := fr.DropDuplicates()
	assert.Equal(t, 2, deduped.NumRows())
}

func TestFilter_KeepsMaskedRows(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	out := fr.Filter([]bool{true, false, true})
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, int64(1), out.Row(0)["process.pid"])
	assert.Equal(t, int64(2), out.Row(1)["process.pid"])
}

func TestEvalFilterMask_SimpleComparison(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	mask, err := frame.EvalFilterMask(&f.IntComparison{Field: "process.pid", Op: f.NumEQ, Value: 2}, fr)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, mask)
}

func TestEvalFilterMask_BoolExpAnd(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	exp := &f.BoolExp{
		LHS: &f.IntComparison{Field: "process.pid", Op: f.NumEQ, Value: 2},
		Op:  f.And,
		RHS: &f.StrComparison{Field: "process.name", Op: f.StrEQ, Value: "sh"},
	}
	mask, err := frame.EvalFilterMask(exp, fr)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, mask)
}

func TestEvalFilterMask_MultiCompOr(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	exp := &f.MultiComp{Op: f.Or, Comps: []f.BasicComparison{
		&f.StrComparison{Field: "process.name", Op: f.StrEQ, Value: "bash"},
		&f.StrComparison{Field: "process.name", Op: f.StrEQ, Value: "sh"},
	}}
	mask, err := frame.EvalFilterMask(exp, fr)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, mask)
}

func TestEvalFilterMask_LikeWildcard(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	mask, err := frame.EvalFilterMask(&f.StrComparison{Field: "process.name", Op: f.StrLike, Value: "s%"}, fr)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, mask)
}

func TestEvalFilterMask_RefComparisonSingleColumn(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	ref := &f.RefComparison{Fields: []string{"process.pid"}, Op: f.ListIn, Value: []any{int64(2)}}
	mask, err := frame.EvalFilterMask(ref, fr)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, mask)
}

func TestEvalFilterMask_RefComparisonMultiColumnTuple(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	ref := &f.RefComparison{
		Fields: []string{"process.pid", "process.name"},
		Op:     f.ListNotIn,
		Value:  [][]any{{int64(1), "bash"}},
	}
	mask, err := frame.EvalFilterMask(ref, fr)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, mask)
}

func TestEvalFilterMask_UnknownColumnErrors(t *testing.T) {
	fr := frame.FromRows(sampleRows())
	_, err := frame.EvalFilterMask(&f.IntComparison{Field: "nope", Op: f.NumEQ, Value: 1}, fr)
	assert.Error(t, err)
}
