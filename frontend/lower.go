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

package frontend

import (
	"strings"

	f "github.com/kestrel-lang/kestrel/ir/filter"
	g "github.com/kestrel-lang/kestrel/ir/graph"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
	"github.com/kestrel-lang/kestrel/mapping"
)

// trimOCSFEventField drops a leading "*_event"/"*_activity" path segment,
// mirroring `_trim_ocsf_event_field`: user-written fields address the
// entity directly, but OCSF sometimes nests identical attributes under
// an event/activity wrapper object.
func trimOCSFEventField(field string) string {
	parts := strings.SplitN(field, ".", 2)
	if len(parts) == 2 && (strings.HasSuffix(parts[0], "_event") || strings.HasSuffix(parts[0], "_activity")) {
		return parts[1]
	}
	return field
}

// addReferenceBranchesForFilter inserts, for every ReferenceValue
// mentioned in filt's expression, a `Reference -> ProjectAttrs -> filt`
// branch (spec.md §4.D, §4.C), grounded on
// `_add_reference_branches_for_filter`.
func addReferenceBranchesForFilter(graph *g.Graph, filt *inst.Filter) {
	for _, rv := range filt.GetReferences() {
		ref := inst.NewReference(rv.Variable)
		graph.AddNode(ref, nil)
		pa := inst.NewProjectAttrs(rv.Attributes)
		graph.AddNode(pa, ref)
		if err := graph.AddEdge(pa, filt); err != nil {
			panic(err)
		}
	}
}

// getTypeFromPredecessors walks backward from root along trunk
// predecessors (and across branch predecessors too, mirroring the
// original's plain predecessor stack) until it finds a node that
// carries type information, returning (entityType, nativeType).
// Grounded on `_KestrelT._get_type_from_predecessors`.
func getTypeFromPredecessors(graph *g.Graph, typeMap map[string]string, root inst.Instruction) (entityType, nativeType string) {
	stack := []inst.Instruction{root}
	seen := map[string]bool{}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur.ID().String()] {
			continue
		}
		seen[cur.ID().String()] = true

		switch n := cur.(type) {
		case *inst.ProjectEntity:
			nativeType = n.NativeField
			entityType = mapTypeOrIdentity(typeMap, n.OCSFField)
			return entityType, nativeType
		case *inst.Variable:
			return n.EntityType, n.NativeType
		case *inst.Construct:
			nativeType = n.EntityType
			entityType = mapTypeOrIdentity(typeMap, nativeType)
			return entityType, nativeType
		}
		stack = append(stack, graph.Predecessors(cur)...)
	}
	return "", ""
}

func mapTypeOrIdentity(typeMap map[string]string, key string) string {
	if v, ok := typeMap[key]; ok {
		return v
	}
	return key
}

// createComp builds a BasicComparison for (field, op, value), applying
// the reference/IN rewrite and event-prefix trim, grounded on
// `_create_comp`.
func createComp(field, op string, value any) f.BasicComparison {
	return f.NewComparison(trimOCSFEventField(field), op, value)
}

// mapTriple is a (field, op, value) triple used while deduplicating
// candidate OCSF mappings for a single user-written comparison.
type mapTriple struct {
	field string
	op    string
	value any
}

// mapFilterExp recursively rewrites exp's field names from the native
// data model the user wrote to OCSF, expanding a field that maps to
// several OCSF fields into a MultiComp OR, grounded on `_map_filter_exp`
// and `_KestrelT.get`'s entity-less-prefix handling (spec.md §4.D).
func mapFilterExp(nativeProjectionField, ocsfProjectionField string, exp f.Expression, m *mapping.Mapping) f.Expression {
	switch e := exp.(type) {
	case f.BasicComparison:
		if _, isRef := e.(*f.RefComparison); isRef {
			return e
		}
		field := f.Field(e)
		op := f.Op(e)
		value := f.Value(e)

		seen := map[string]mapTriple{}
		addCandidate := func(t mapTriple) {
			key := t.field + "\x00" + t.op
			seen[key] = t
		}

		direct, _ := m.TranslateComparisonToOCSF(field, op, value)
		for _, t := range direct {
			addCandidate(mapTriple{t.Field, t.Op, t.Value})
		}

		if nativeProjectionField != "" {
			for _, full := range []string{
				nativeProjectionField + ":" + field,
				nativeProjectionField + "." + field,
			} {
				extended, _ := m.TranslateComparisonToOCSF(full, op, value)
				for _, t := range extended {
					if strings.HasPrefix(t.Field, ocsfProjectionField+".") {
						addCandidate(mapTriple{t.Field, t.Op, t.Value})
					}
				}
			}
		}

		switch len(seen) {
		case 0:
			return e
		case 1:
			for _, t := range seen {
				c := f.WithField(e, trimOCSFEventField(t.field))
				return f.WithOpValue(c, t.op, t.value)
			}
		}
		comps := make([]f.BasicComparison, 0, len(seen))
		for _, t := range seen {
			comps = append(comps, createComp(t.field, t.op, t.value))
		}
		return &f.MultiComp{Op: f.Or, Comps: comps}

	case *f.BoolExp:
		return &f.BoolExp{
			LHS: mapFilterExp(nativeProjectionField, ocsfProjectionField, e.LHS, m),
			Op:  e.Op,
			RHS: mapFilterExp(nativeProjectionField, ocsfProjectionField, e.RHS, m),
		}

	case *f.MultiComp:
		comps := make([]f.BasicComparison, len(e.Comps))
		for i, c := range e.Comps {
			mapped := mapFilterExp(nativeProjectionField, ocsfProjectionField, c, m)
			if bc, ok := mapped.(f.BasicComparison); ok {
				comps[i] = bc
			} else {
				comps[i] = c
			}
		}
		return &f.MultiComp{Op: e.Op, Comps: comps}

	default:
		return exp
	}
}
