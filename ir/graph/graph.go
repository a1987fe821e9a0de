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

// Package graph implements the Kestrel IR graph: a directed acyclic
// graph of instruction nodes with the structural invariants of
// spec.md §3 (trunk vs. branch predecessors, sink discovery,
// dependent-subgraph duplication, reference composition).
//
// The graph is modeled as an arena (nodes keyed by their stable uuid.UUID
// identity) plus adjacency lists of ids, per spec.md §9's design note
// that an arena + index-pair design keeps deep copy a linear pass and
// identity stable. Evaluation never mutates the graph it is given;
// anything that must mutate (reference resolution) operates on a
// DeepCopy.
package graph

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	inst "github.com/kestrel-lang/kestrel/ir/instruction"
	"github.com/kestrel-lang/kestrel/kerr"
)

var log = logrus.WithField("component", "ir/graph")

// Graph is a directed acyclic graph of instruction.Instruction nodes.
type Graph struct {
	nodes map[uuid.UUID]inst.Instruction
	order []uuid.UUID // insertion order, for deterministic iteration
	preds map[uuid.UUID][]uuid.UUID
	succs map[uuid.UUID][]uuid.UUID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: map[uuid.UUID]inst.Instruction{},
		preds: map[uuid.UUID][]uuid.UUID{},
		succs: map[uuid.UUID][]uuid.UUID{},
	}
}

// Contains reports whether n is a member of the graph.
func (g *Graph) Contains(n inst.Instruction) bool {
	_, ok := g.nodes[n.ID()]
	return ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.order) }

// AddNode registers n in the graph, optionally adding an edge from
// predecessor to n when predecessor is non-nil. It returns n for
// convenient chaining (`root = graph.AddNode(x, root)`), matching the
// teacher's own builder-return style.
func (g *Graph) AddNode(n inst.Instruction, predecessor inst.Instruction) inst.Instruction {
	if _, ok := g.nodes[n.ID()]; !ok {
		g.nodes[n.ID()] = n
		g.order = append(g.order, n.ID())
	}
	if predecessor != nil {
		if err := g.AddEdge(predecessor, n); err != nil {
			// AddNode is used in contexts (the frontend) that treat
			// structural errors as programmer errors, not user errors;
			// a cycle here always means a lowering bug.
			panic(err)
		}
	}
	return n
}

// AddEdge adds a directed edge from p to s. It returns ErrGraphCycle if
// the edge would introduce one, and never partially applies the edge in
// that case.
func (g *Graph) AddEdge(p, s inst.Instruction) error {
	g.ensure(p)
	g.ensure(s)
	if p.ID() == s.ID() || g.reaches(s.ID(), p.ID()) {
		log.WithFields(logrus.Fields{"predecessor": p.ID(), "successor": s.ID()}).Warn("rejected edge that would introduce a cycle")
		return kerr.ErrGraphCycle.New()
	}
	g.succs[p.ID()] = append(g.succs[p.ID()], s.ID())
	g.preds[s.ID()] = append(g.preds[s.ID()], p.ID())
	return nil
}

func (g *Graph) ensure(n inst.Instruction) {
	if _, ok := g.nodes[n.ID()]; !ok {
		g.nodes[n.ID()] = n
		g.order = append(g.order, n.ID())
	}
}

// reaches reports whether a node reachable from `from` equals `to`
// (depth-first search forward along successor edges).
func (g *Graph) reaches(from, to uuid.UUID) bool {
	seen := map[uuid.UUID]bool{}
	var dfs func(uuid.UUID) bool
	dfs = func(cur uuid.UUID) bool {
		if cur == to {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		for _, next := range g.succs[cur] {
			if dfs(next) {
				return true
			}
		}
		return false
	}
	return dfs(from)
}

// Predecessors returns n's direct predecessors, in the order their
// edges were added.
func (g *Graph) Predecessors(n inst.Instruction) []inst.Instruction {
	return g.resolve(g.preds[n.ID()])
}

// Successors returns n's direct successors, in the order their edges
// were added.
func (g *Graph) Successors(n inst.Instruction) []inst.Instruction {
	return g.resolve(g.succs[n.ID()])
}

func (g *Graph) resolve(ids []uuid.UUID) []inst.Instruction {
	out := make([]inst.Instruction, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// GetSinkNodes returns every node with no successors (spec.md §3). The
// order matches node insertion order, so evaluation order is
// deterministic for a given parse.
func (g *Graph) GetSinkNodes() []inst.Instruction {
	var out []inst.Instruction
	for _, id := range g.order {
		if len(g.succs[id]) == 0 {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// GetNodesByType returns every node of the given kind, in insertion
// order.
func (g *Graph) GetNodesByType(k inst.Kind) []inst.Instruction {
	var out []inst.Instruction
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind() == k {
			out = append(out, n)
		}
	}
	return out
}

// GetNodesByTypeAndAttributes returns every node of the given kind for
// which pred returns true, in insertion order.
func (g *Graph) GetNodesByTypeAndAttributes(k inst.Kind, pred func(inst.Instruction) bool) []inst.Instruction {
	var out []inst.Instruction
	for _, n := range g.GetNodesByType(k) {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// GetVariable returns the most recently added Variable node with the
// given name (spec.md's open question on shadowing: last-write-wins),
// and false if none exists.
func (g *Graph) GetVariable(name string) (*inst.Variable, bool) {
	var found *inst.Variable
	for _, id := range g.order {
		if v, ok := g.nodes[id].(*inst.Variable); ok && v.Name == name {
			found = v
		}
	}
	if found == nil {
		return nil, false
	}
	return found, true
}

// AllNodes returns every node in insertion order.
func (g *Graph) AllNodes() []inst.Instruction {
	out := make([]inst.Instruction, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}
