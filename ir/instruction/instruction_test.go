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

package instruction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	f "github.com/kestrel-lang/kestrel/ir/filter"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
)

func TestIdentityIsStable(t *testing.T) {
	c := inst.NewConstruct("process", nil)
	id1 := c.ID()
	id2 := c.ID()
	assert.Equal(t, id1, id2)
}

func TestTwoNodesHaveDistinctIdentity(t *testing.T) {
	a := inst.NewReturn()
	b := inst.NewReturn()
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestCategories(t *testing.T) {
	assert.True(t, inst.IsSource(inst.NewConstruct("x", nil)))
	assert.True(t, inst.IsSolePredecessor(inst.NewVariable("v", "process", "process")))
	assert.True(t, inst.IsMultiPredecessor(inst.NewFilter(nil)))
	_, isRef := inst.Instruction(inst.NewReference("v")).(*inst.Reference)
	require.True(t, isRef)
	assert.Equal(t, inst.CategoryReference, inst.NewReference("v").Category())
}

func TestFilterDefaultsToAbsoluteTrue(t *testing.T) {
	flt := inst.NewFilter(nil)
	_, ok := flt.Exp.(f.AbsoluteTrue)
	assert.True(t, ok)
}

func TestFilterResolveReferencesDoesNotMutateSiblingCopies(t *testing.T) {
	exp := &f.RefComparison{Fields: []string{"pid"}, Op: f.ListIn, Value: f.ReferenceValue{Variable: "a", Attributes: []string{"pid"}}}
	flt := inst.NewFilter(exp)
	flt.ResolveReferences(func(rv f.ReferenceValue) any { return "SUB" })
	rc := flt.Exp.(*f.RefComparison)
	assert.Equal(t, "SUB", rc.Value)
	// Original exp object (used to build flt) remains untouched since
	// ResolveReferences deep-copies.
	orig := exp.Value.(f.ReferenceValue)
	assert.Equal(t, "a", orig.Variable)
}
