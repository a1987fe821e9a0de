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

package graph

import (
	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure"

	ir "github.com/kestrel-lang/kestrel/ir/filter"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
)

// DuplicateDependentSubgraphOfNode returns the subgraph of nodes
// reachable upward (along predecessor edges) from n, inclusive of n
// itself, as a structural copy with fresh identities consistently
// reused across the clone. Used by EXPLAIN (spec.md §4.C, §6).
func (g *Graph) DuplicateDependentSubgraphOfNode(n inst.Instruction) *Graph {
	reachable := map[uuid.UUID]bool{}
	var collect func(uuid.UUID)
	collect = func(id uuid.UUID) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		for _, p := range g.preds[id] {
			collect(p)
		}
	}
	collect(n.ID())
	return g.cloneSubset(reachable)
}

// DeepCopy returns a structural clone of the entire graph with fresh
// identities consistently reused across the clone. Filter.ResolveReferences
// replaces the expression of the node it is called on, so resolving
// references on a DeepCopy leaves the original graph unchanged
// (spec.md §3, §9).
func (g *Graph) DeepCopy() *Graph {
	all := map[uuid.UUID]bool{}
	for _, id := range g.order {
		all[id] = true
	}
	return g.cloneSubset(all)
}

// cloneSubset builds a new Graph containing only the nodes whose id is
// in keep, re-keyed under fresh identities, preserving edges between
// kept nodes.
func (g *Graph) cloneSubset(keep map[uuid.UUID]bool) *Graph {
	out := New()
	remap := map[uuid.UUID]uuid.UUID{}
	cloned := map[uuid.UUID]inst.Instruction{}

	for _, id := range g.order {
		if !keep[id] {
			continue
		}
		c := cloneInstruction(g.nodes[id])
		cloned[id] = c
		remap[id] = c.ID()
		out.nodes[c.ID()] = c
		out.order = append(out.order, c.ID())
	}
	for _, id := range g.order {
		if !keep[id] {
			continue
		}
		for _, pid := range g.preds[id] {
			if !keep[pid] {
				continue
			}
			newP, newS := remap[pid], remap[id]
			out.preds[newS] = append(out.preds[newS], newP)
			out.succs[newP] = append(out.succs[newP], newS)
		}
	}
	return out
}

// cloneInstruction returns a copy of n with a freshly allocated
// identity, preserving all kind-specific attributes.
func cloneInstruction(n inst.Instruction) inst.Instruction {
	switch v := n.(type) {
	case *inst.Construct:
		data := make([]map[string]any, len(v.Data))
		for i, row := range v.Data {
			rowCopy := make(map[string]any, len(row))
			for k, val := range row {
				rowCopy[k] = val
			}
			data[i] = rowCopy
		}
		columns := append([]string(nil), v.Columns...)
		return inst.NewConstructOrdered(v.EntityType, data, columns)
	case *inst.DataSource:
		return inst.NewDataSource(v.Name)
	case *inst.Variable:
		return inst.NewVariable(v.Name, v.EntityType, v.NativeType)
	case *inst.ProjectEntity:
		return inst.NewProjectEntity(v.OCSFField, v.NativeField)
	case *inst.ProjectAttrs:
		attrs := append([]string(nil), v.Attrs...)
		return inst.NewProjectAttrs(attrs)
	case *inst.Limit:
		return inst.NewLimit(v.Num)
	case *inst.Offset:
		return inst.NewOffset(v.Num)
	case *inst.Sort:
		return inst.NewSort(v.Attribute, v.Direction)
	case *inst.Return:
		return inst.NewReturn()
	case *inst.Explain:
		return inst.NewExplain()
	case *inst.Filter:
		f := inst.NewFilter(ir.Clone(v.Exp))
		f.TimeRange = v.TimeRange
		return f
	case *inst.Analytic:
		params := make(map[string]any, len(v.Params))
		for k, val := range v.Params {
			params[k] = val
		}
		return inst.NewAnalytic(v.Scheme, v.Name, params)
	case *inst.Reference:
		return inst.NewReference(v.Name)
	default:
		return n
	}
}

// ToDict returns a structural, JSON-friendly description of the graph
// (id, kind, predecessor ids, content hash) suitable for EXPLAIN output
// (spec.md §6).
func (g *Graph) ToDict() map[string]any {
	nodes := make([]map[string]any, 0, len(g.order))
	for _, id := range g.order {
		n := g.nodes[id]
		preds := make([]string, 0, len(g.preds[id]))
		for _, p := range g.preds[id] {
			preds = append(preds, p.String())
		}
		nodes = append(nodes, map[string]any{
			"id":           id.String(),
			"kind":         n.Kind().String(),
			"predecessors": preds,
		})
	}
	hash, _ := g.ContentHash()
	return map[string]any{"nodes": nodes, "content_hash": hash}
}

// ContentHash returns a hash of the graph's shape (node kinds and their
// relative predecessor structure) that is stable across two
// structurally identical graphs even though their node ids differ —
// every DuplicateDependentSubgraphOfNode call mints fresh ids, so two
// EXPLAIN calls against the same statement would otherwise look
// unrelated by id alone. Used to let a caller recognize and dedupe
// repeated EXPLAIN output for the same query shape.
func (g *Graph) ContentHash() (uint64, error) {
	index := make(map[uuid.UUID]int, len(g.order))
	for i, id := range g.order {
		index[id] = i
	}
	type shapeNode struct {
		Kind         string
		Predecessors []int
	}
	shape := make([]shapeNode, len(g.order))
	for i, id := range g.order {
		preds := make([]int, 0, len(g.preds[id]))
		for _, p := range g.preds[id] {
			preds = append(preds, index[p])
		}
		shape[i] = shapeNode{Kind: g.nodes[id].Kind().String(), Predecessors: preds}
	}
	return hashstructure.Hash(shape, nil)
}
