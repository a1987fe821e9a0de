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

package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	f "github.com/kestrel-lang/kestrel/ir/filter"
	g "github.com/kestrel-lang/kestrel/ir/graph"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
)

func TestAddEdgeRejectsCycle(t *testing.T) {
	graph := g.New()
	a := inst.NewConstruct("process", nil)
	b := inst.NewReturn()
	graph.AddNode(a, nil)
	graph.AddNode(b, a)
	err := graph.AddEdge(b, a)
	assert.Error(t, err)
}

func TestGetSinkNodes(t *testing.T) {
	graph := g.New()
	a := inst.NewConstruct("process", nil)
	b := inst.NewReturn()
	graph.AddNode(a, nil)
	graph.AddNode(b, a)
	sinks := graph.GetSinkNodes()
	require.Len(t, sinks, 1)
	assert.Equal(t, b.ID(), sinks[0].ID())
}

func TestTrunkUniquenessForSolePredecessor(t *testing.T) {
	graph := g.New()
	a := inst.NewConstruct("process", nil)
	lim := inst.NewLimit(5)
	graph.AddNode(a, nil)
	graph.AddNode(lim, a)

	trunk, branches, err := graph.GetTrunkNBranches(lim)
	require.NoError(t, err)
	assert.Nil(t, branches)
	assert.Equal(t, a.ID(), trunk.ID())
}

func TestFilterTrunkAndBranches(t *testing.T) {
	graph := g.New()
	src := inst.NewConstruct("process", nil)

	exp := &f.RefComparison{
		Fields: []string{"pid"},
		Op:     f.ListIn,
		Value:  f.ReferenceValue{Variable: "newvar", Attributes: []string{"pid"}},
	}
	filt := inst.NewFilter(exp)
	graph.AddNode(src, nil)
	graph.AddNode(filt, src)

	ref := inst.NewReference("newvar")
	pa := inst.NewProjectAttrs([]string{"pid"})
	graph.AddNode(ref, nil)
	graph.AddNode(pa, ref)
	require.NoError(t, graph.AddEdge(pa, filt))

	trunk, branches, err := graph.GetTrunkNBranches(filt)
	require.NoError(t, err)
	assert.Equal(t, src.ID(), trunk.ID())
	require.Contains(t, branches, "newvar")
	assert.Equal(t, ref.ID(), branches["newvar"].ID())
}

func TestGetVariableReturnsMostRecent(t *testing.T) {
	graph := g.New()
	a := inst.NewConstruct("process", nil)
	v1 := inst.NewVariable("x", "process", "process")
	graph.AddNode(a, nil)
	graph.AddNode(v1, a)

	b := inst.NewConstruct("process", nil)
	v2 := inst.NewVariable("x", "process", "process")
	graph.AddNode(b, nil)
	graph.AddNode(v2, b)

	found, ok := graph.GetVariable("x")
	require.True(t, ok)
	assert.Equal(t, v2.ID(), found.ID())
}

func TestDeepCopyIsIndependent(t *testing.T) {
	graph := g.New()
	src := inst.NewConstruct("process", nil)
	filt := inst.NewFilter(&f.StrComparison{Field: "name", Op: f.StrEQ, Value: "cmd.exe"})
	graph.AddNode(src, nil)
	graph.AddNode(filt, src)

	clone := graph.DeepCopy()
	require.Equal(t, graph.Len(), clone.Len())

	cloneFilt := clone.GetNodesByType(inst.KindFilter)[0].(*inst.Filter)
	cloneFilt.ResolveReferences(func(rv f.ReferenceValue) any { return nil })

	origFilt := graph.GetNodesByType(inst.KindFilter)[0].(*inst.Filter)
	_, stillStrComp := origFilt.Exp.(*f.StrComparison)
	assert.True(t, stillStrComp)

	// Identities differ between original and clone.
	assert.NotEqual(t, origFilt.ID(), cloneFilt.ID())
}

func TestContentHash_StableAcrossFreshIds_DiffersOnShape(t *testing.T) {
	build := func() *g.Graph {
		graph := g.New()
		src := inst.NewConstruct("process", nil)
		filt := inst.NewFilter(&f.StrComparison{Field: "name", Op: f.StrEQ, Value: "cmd.exe"})
		graph.AddNode(src, nil)
		graph.AddNode(filt, src)
		return graph
	}

	a := build()
	b := build() // independent nodes, independent fresh uuids

	hashA, err := a.ContentHash()
	require.NoError(t, err)
	hashB, err := b.ContentHash()
	require.NoError(t, err)
	assert.Equal(t, hashA, hashB, "same shape should hash the same regardless of node identity")

	c := g.New()
	src := inst.NewConstruct("process", nil)
	lim := inst.NewLimit(5)
	c.AddNode(src, nil)
	c.AddNode(lim, src)
	hashC, err := c.ContentHash()
	require.NoError(t, err)
	assert.NotEqual(t, hashA, hashC, "a Filter-shaped graph and a Limit-shaped graph must hash differently")
}

func TestFindDataSourceOfNode(t *testing.T) {
	graph := g.New()
	ds := inst.NewDataSource("stixshifter://host101")
	filt := inst.NewFilter(nil)
	proj := inst.NewProjectEntity("process", "process")
	graph.AddNode(ds, nil)
	graph.AddNode(filt, ds)
	graph.AddNode(proj, filt)

	found, err := graph.FindDataSourceOfNode(proj)
	require.NoError(t, err)
	assert.Equal(t, ds.ID(), found.ID())
}

func TestComposeReconnectsReferenceToVariable(t *testing.T) {
	g1 := g.New()
	src := inst.NewConstruct("process", nil)
	v := inst.NewVariable("proclist", "process", "process")
	g1.AddNode(src, nil)
	g1.AddNode(v, src)

	g2 := g.New()
	ref := inst.NewReference("proclist")
	filt := inst.NewFilter(&f.StrComparison{Field: "name", Op: f.StrNE, Value: "cmd.exe"})
	g2.AddNode(ref, nil)
	g2.AddNode(filt, ref)

	composed := g.Compose(g1, g2)
	trunk, _, err := composed.GetTrunkNBranches(filt)
	require.NoError(t, err)
	assert.Equal(t, v.ID(), trunk.ID())

	// The dangling Reference node itself should not appear as a node
	// with successors pointing away from the resolved Variable.
	for _, n := range composed.GetNodesByType(inst.KindReference) {
		assert.NotEqual(t, ref.ID(), n.ID())
	}
}
