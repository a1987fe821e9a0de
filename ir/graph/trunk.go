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
	"fmt"

	inst "github.com/kestrel-lang/kestrel/ir/instruction"
	"github.com/kestrel-lang/kestrel/kerr"
)

// GetTrunkNBranches returns n's trunk (its unique data-flow predecessor)
// and, for a Filter node, the set of branch heads keyed by the
// referenced variable name (spec.md §3, invariant 3, §4.C).
//
// A branch is identified by walking from a Reference predecessor
// forward to n: spec.md requires each branch to terminate in a
// Reference node with a ProjectAttrs immediately downstream, so the
// "branch head" returned for a given reference name is that
// Reference node.
func (g *Graph) GetTrunkNBranches(n inst.Instruction) (inst.Instruction, map[string]inst.Instruction, error) {
	preds := g.Predecessors(n)
	if len(preds) == 0 {
		return nil, nil, kerr.ErrMissingTrunk.New(n.Kind())
	}

	if n.Kind() != inst.KindFilter {
		if len(preds) != 1 {
			return nil, nil, kerr.ErrMultipleTrunks.New(n.Kind())
		}
		return preds[0], nil, nil
	}

	// A Filter node: exactly one trunk (data-flow predecessor) and zero
	// or more branches, each branch being a ProjectAttrs whose own
	// predecessor is a Reference node.
	var trunk inst.Instruction
	branches := map[string]inst.Instruction{}
	for _, p := range preds {
		if pa, ok := p.(*inst.ProjectAttrs); ok {
			branchPreds := g.Predecessors(pa)
			if len(branchPreds) == 1 {
				if ref, ok := branchPreds[0].(*inst.Reference); ok {
					branches[ref.Name] = ref
					continue
				}
			}
		}
		if trunk != nil {
			return nil, nil, kerr.ErrMultipleTrunks.New(n.Kind())
		}
		trunk = p
	}
	if trunk == nil {
		return nil, nil, kerr.ErrMissingTrunk.New(n.Kind())
	}

	filt := n.(*inst.Filter)
	refValues := filt.GetReferences()
	if len(refValues) != len(branches) {
		return nil, nil, fmt.Errorf("filter %s references %d variables but has %d branches", n.ID(), len(refValues), len(branches))
	}
	for _, rv := range refValues {
		if _, ok := branches[rv.Variable]; !ok {
			return nil, nil, kerr.ErrUnresolvedReference.New(rv.Variable)
		}
	}

	return trunk, branches, nil
}

// FindDataSourceOfNode walks n's trunk chain until it reaches a
// DataSource node, returning it. It fails if the chain bottoms out at a
// Construct or has no trunk at all (spec.md §4.C).
func (g *Graph) FindDataSourceOfNode(n inst.Instruction) (*inst.DataSource, error) {
	cur := n
	for {
		if ds, ok := cur.(*inst.DataSource); ok {
			return ds, nil
		}
		if inst.IsSource(cur) {
			return nil, kerr.ErrSourceNotFound.New(fmt.Sprintf("no DataSource ancestor of %s", n.ID()))
		}
		trunk, _, err := g.GetTrunkNBranches(cur)
		if err != nil {
			return nil, err
		}
		cur = trunk
	}
}
