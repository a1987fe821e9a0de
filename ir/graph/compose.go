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

	inst "github.com/kestrel-lang/kestrel/ir/instruction"
)

// Compose returns the disjoint union of g1 and g2, then reconnects: every
// Reference(name) in g2 that matches a Variable(name) in g1 is replaced
// by an edge from that Variable to the Reference's successors, and the
// Reference node itself is dropped (spec.md §4.C). This is how the
// frontend stitches one statement's graph onto the accumulated graph of
// a whole statement block.
func Compose(g1, g2 *Graph) *Graph {
	if g1 == nil {
		return g2
	}
	if g2 == nil {
		return g1
	}

	out := New()
	copyInto(out, g1)

	remap := map[uuid.UUID]uuid.UUID{} // g2 node id -> out node id (identity-preserving copy)
	var danglingRefs []*inst.Reference

	for _, n := range g2.AllNodes() {
		if ref, ok := n.(*inst.Reference); ok {
			if v, found := out.GetVariable(ref.Name); found {
				// Reference is replaced by the existing Variable: route
				// g2's consumers of ref to v instead of duplicating ref.
				remap[n.ID()] = v.ID()
				continue
			}
			danglingRefs = append(danglingRefs, ref)
		}
		out.nodes[n.ID()] = n
		out.order = append(out.order, n.ID())
		remap[n.ID()] = n.ID()
	}
	if len(danglingRefs) > 0 {
		names := make([]string, len(danglingRefs))
		for i, r := range danglingRefs {
			names[i] = r.Name
		}
		log.WithField("unresolved", names).Debug("composed graph still has references with no matching variable")
	}

	for _, n := range g2.AllNodes() {
		newS, ok := remap[n.ID()]
		if !ok {
			continue
		}
		for _, p := range g2.preds[n.ID()] {
			newP, ok := remap[p]
			if !ok {
				continue
			}
			out.preds[newS] = append(out.preds[newS], newP)
			out.succs[newP] = append(out.succs[newP], newS)
		}
	}

	return out
}

func copyInto(out, g *Graph) {
	for _, n := range g.AllNodes() {
		out.nodes[n.ID()] = n
		out.order = append(out.order, n.ID())
	}
	for id, ps := range g.preds {
		out.preds[id] = append([]uuid.UUID(nil), ps...)
	}
	for id, ss := range g.succs {
		out.succs[id] = append([]uuid.UUID(nil), ss...)
	}
}
