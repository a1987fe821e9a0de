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

package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	f "github.com/kestrel-lang/kestrel/ir/filter"
)

func TestNewComparison_StringEqualityWithReferenceRewritesToIn(t *testing.T) {
	c := f.NewComparison("pid", string(f.StrEQ), f.ReferenceValue{Variable: "newvar", Attributes: []string{"pid"}})
	ref, ok := c.(*f.RefComparison)
	require.True(t, ok)
	assert.Equal(t, f.ListIn, ref.Op)
	assert.Equal(t, []string{"pid"}, ref.Fields)
}

func TestNewComparison_StringInequalityWithReferenceRewritesToNotIn(t *testing.T) {
	c := f.NewComparison("pid", string(f.StrNE), f.ReferenceValue{Variable: "newvar", Attributes: []string{"pid"}})
	ref := c.(*f.RefComparison)
	assert.Equal(t, f.ListNotIn, ref.Op)
}

func TestNewComparison_NumericNeverRewritten(t *testing.T) {
	c := f.NewComparison("pid", string(f.NumEQ), 123)
	_, ok := c.(*f.IntComparison)
	assert.True(t, ok)
}

func TestGetReferences(t *testing.T) {
	exp := &f.BoolExp{
		LHS: f.NewComparison("pid", string(f.ListIn), f.ReferenceValue{Variable: "a", Attributes: []string{"pid"}}),
		Op:  f.And,
		RHS: &f.StrComparison{Field: "name", Op: f.StrEQ, Value: "cmd.exe"},
	}
	refs := f.GetReferences(exp)
	require.Len(t, refs, 1)
	assert.Equal(t, "a", refs[0].Variable)
}

func TestResolveReferences_NoMutationAndNoReferencesLeft(t *testing.T) {
	orig := &f.RefComparison{
		Fields: []string{"pid"},
		Op:     f.ListIn,
		Value:  f.ReferenceValue{Variable: "a", Attributes: []string{"pid"}},
	}
	resolved := f.ResolveReferences(orig, func(rv f.ReferenceValue) any {
		return "SUBQUERY(" + rv.Variable + ")"
	})

	// Original untouched.
	rv, ok := orig.Value.(f.ReferenceValue)
	require.True(t, ok)
	assert.Equal(t, "a", rv.Variable)

	// Resolved tree has no ReferenceValues left.
	assert.Empty(t, f.GetReferences(resolved))
	rc := resolved.(*f.RefComparison)
	assert.Equal(t, "SUBQUERY(a)", rc.Value)
}

func TestClone_Independent(t *testing.T) {
	orig := &f.ListComparison{Field: "pid", Op: f.ListIn, Value: []any{1, 2, 3}}
	clone := f.Clone(orig).(*f.ListComparison)
	clone.Value[0] = 999
	assert.Equal(t, 1, orig.Value[0])
}
