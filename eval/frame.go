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

package eval

import (
	"github.com/google/uuid"

	"github.com/kestrel-lang/kestrel/frame"
	f "github.com/kestrel-lang/kestrel/ir/filter"
	"github.com/kestrel-lang/kestrel/ir/graph"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
	"github.com/kestrel-lang/kestrel/kerr"
)

// FrameEvaluator walks an IR graph entirely in memory, against
// frame.Frame values instead of SQL, grounded on spec.md §4.H (the
// in-memory mirror of §4.G). It has no backend dependency: Construct
// materializes directly from its literal rows, and every other
// transforming instruction is a pure Frame->Frame function.
type FrameEvaluator struct {
	cache *Cache
	memo  map[uuid.UUID]*frame.Frame
}

// NewFrameEvaluator returns an evaluator over cache, or over a new empty
// Cache when cache is nil. Passing a
// VirtualCopy() of a SqlEvaluator's Cache lets the two evaluators agree
// on which node ids are already computed without sharing backend state.
func NewFrameEvaluator(cache *Cache) *FrameEvaluator {
	if cache == nil {
		cache = NewCache()
	}
	return &FrameEvaluator{cache: cache, memo: map[uuid.UUID]*frame.Frame{}}
}

// Cache exposes the evaluator's cache, e.g. for VirtualCopy()-ing it
// into a SqlEvaluator so a later evaluation over the same graph can
// reuse a Variable this evaluator already computed instead of
// recomputing it.
func (e *FrameEvaluator) Cache() *Cache { return e.cache }

// EvaluateGraph evaluates every instruction in sinks (or every
// graph.GetSinkNodes() node, if sinks is nil) and returns the resulting
// frame keyed by sink id.
func (e *FrameEvaluator) EvaluateGraph(g *graph.Graph, sinks []inst.Instruction) (map[uuid.UUID]*frame.Frame, error) {
	if sinks == nil {
		sinks = g.GetSinkNodes()
	}
	out := make(map[uuid.UUID]*frame.Frame, len(sinks))
	for _, sink := range sinks {
		fr, err := e.evalNode(g, sink)
		if err != nil {
			return nil, err
		}
		out[sink.ID()] = fr
	}
	return out, nil
}

// evalNode recursively evaluates n, mirroring planInstruction's shape
// but over Frame values instead of SQL translators. Every Variable's
// result is memoized in e.memo so a Variable reachable from more than
// one downstream consumer is only computed once per EvaluateGraph call.
func (e *FrameEvaluator) evalNode(g *graph.Graph, n inst.Instruction) (*frame.Frame, error) {
	if fr, ok := e.memo[n.ID()]; ok {
		return fr, nil
	}
	if fr, ok := e.cache.GetFrame(n.ID()); ok {
		return fr, nil
	}

	if inst.IsSource(n) {
		construct, ok := n.(*inst.Construct)
		if !ok {
			return nil, kerr.ErrSourceNotFound.New(n.Kind().String())
		}
		var fr *frame.Frame
		if construct.Columns != nil {
			fr = frame.FromRowsWithColumns(construct.Columns, construct.Data)
		} else {
			fr = frame.FromRows(construct.Data)
		}
		e.cache.PutFrame(construct.ID(), fr)
		return fr, nil
	}

	if !inst.IsTransforming(n) {
		return nil, kerr.ErrNodeNotFound.New(n.ID().String())
	}

	trunk, _, err := g.GetTrunkNBranches(n)
	if err != nil {
		return nil, err
	}
	trunkFrame, err := e.evalNode(g, trunk)
	if err != nil {
		return nil, err
	}

	if inst.IsSolePredecessor(n) {
		switch node := n.(type) {
		case *inst.Return, *inst.Explain:
			return trunkFrame, nil
		case *inst.Variable:
			e.memo[node.ID()] = trunkFrame
			e.cache.PutFrame(node.ID(), trunkFrame)
			return trunkFrame, nil
		case *inst.ProjectAttrs:
			return trunkFrame.SelectAttrs(node.Attrs)
		case *inst.ProjectEntity:
			return trunkFrame.ProjectEntity(node.OCSFField), nil
		case *inst.Limit:
			return trunkFrame.Head(node.Num), nil
		case *inst.Offset:
			return frameOffset(trunkFrame, node.Num), nil
		case *inst.Sort:
			return frameSort(trunkFrame, node.Attribute, node.Direction), nil
		default:
			return nil, kerr.ErrUnsupportedOperator.New(n.Kind().String(), "frame")
		}
	}

	if a, ok := n.(*inst.Analytic); ok {
		return nil, kerr.ErrAnalyticNotSupported.New(a.Scheme, a.Name)
	}
	filt, ok := n.(*inst.Filter)
	if !ok {
		return nil, kerr.ErrNodeNotFound.New(n.ID().String())
	}
	// Resolve on a copy of the node so the graph's Filter keeps its
	// ReferenceValues.
	resolved := *filt
	resolveErr := error(nil)
	resolved.ResolveReferences(func(rv f.ReferenceValue) any {
		v, ok := g.GetVariable(rv.Variable)
		if !ok {
			resolveErr = kerr.ErrUnresolvedReference.New(rv.Variable)
			return rv
		}
		branchFrame, err := e.evalNode(g, v)
		if err != nil {
			resolveErr = err
			return rv
		}
		sel, err := branchFrame.SelectAttrs(rv.Attributes)
		if err != nil {
			resolveErr = err
			return rv
		}
		return frameColumnValues(sel, rv.Attributes)
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	mask, err := frame.EvalFilterMask(resolved.Exp, trunkFrame)
	if err != nil {
		return nil, err
	}
	return trunkFrame.Filter(mask), nil
}

// frameColumnValues returns the resolved reference value for a
// RefComparison: a flat []any for a single-attribute reference (set
// membership), or a [][]any of fixed-arity tuples for a multi-attribute
// one (composite-key membership), matching what frame.EvalFilterMask's
// RefComparison branch expects.
func frameColumnValues(sel *frame.Frame, attrs []string) any {
	if len(attrs) == 1 {
		col, _ := sel.Column(attrs[0])
		return append([]any(nil), col...)
	}
	tuples := make([][]any, sel.NumRows())
	for i := 0; i < sel.NumRows(); i++ {
		row := sel.Row(i)
		tup := make([]any, len(attrs))
		for j, a := range attrs {
			tup[j] = row[a]
		}
		tuples[i] = tup
	}
	return tuples
}

// frameOffset returns a Frame skipping the first n rows, grounded on
// pandas' `dataframe[n:]` slicing (the teacher's §4.F translator renders
// the same semantics as SQL OFFSET; frame.Frame has no native slice-tail
// helper yet since nothing else needed it until Offset).
func frameOffset(fr *frame.Frame, n int) *frame.Frame {
	if n <= 0 {
		return fr
	}
	mask := make([]bool, fr.NumRows())
	for i := range mask {
		mask[i] = i >= n
	}
	return fr.Filter(mask)
}

// frameSort returns a Frame with rows reordered by attr, grounded on
// pandas' `sort_values`. Ties keep their original relative order
// (stable sort), matching SQL's typical ORDER BY behavior for a single
// key over otherwise-equal rows.
func frameSort(fr *frame.Frame, attr string, dir inst.SortDirection) *frame.Frame {
	col, ok := fr.Column(attr)
	if !ok {
		return fr
	}
	order := make([]int, fr.NumRows())
	for i := range order {
		order[i] = i
	}
	less := func(i, j int) bool {
		return lessValue(col[order[i]], col[order[j]])
	}
	if dir == inst.Desc {
		orig := less
		less = func(i, j int) bool { return orig(j, i) }
	}
	insertionSort(order, less)

	rows := make([]map[string]any, len(order))
	for i, idx := range order {
		rows[i] = fr.Row(idx)
	}
	return frame.FromRowsWithColumns(fr.Columns(), rows)
}

func insertionSort(order []int, less func(i, j int) bool) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
}

func lessValue(a, b any) bool {
	af, aok := toFloatValue(a)
	bf, bok := toFloatValue(b)
	if aok && bok {
		return af < bf
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs
	}
	return false
}

func toFloatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
