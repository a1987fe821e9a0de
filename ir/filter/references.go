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

package filter

// GetReferences returns the set of ReferenceValues transitively
// mentioned in exp, one entry per distinct (variable, attributes) pair
// in first-encountered order.
func GetReferences(exp Expression) []ReferenceValue {
	var out []ReferenceValue
	seen := map[string]bool{}
	walkComparisons(exp, func(c BasicComparison) {
		ref, ok := c.(*RefComparison)
		if !ok {
			return
		}
		rv, ok := ref.Value.(ReferenceValue)
		if !ok {
			return
		}
		key := rv.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, rv)
		}
	})
	return out
}

// walkComparisons calls fn for every BasicComparison reachable in exp.
func walkComparisons(exp Expression, fn func(BasicComparison)) {
	switch e := exp.(type) {
	case nil, AbsoluteTrue:
		return
	case *BoolExp:
		walkComparisons(e.LHS, fn)
		walkComparisons(e.RHS, fn)
	case *MultiComp:
		for _, c := range e.Comps {
			fn(c)
		}
	case BasicComparison:
		fn(e)
	}
}

// Resolver produces a replacement value for a ReferenceValue, typically
// a subquery handle built by planning the branch that computes it.
type Resolver func(ReferenceValue) any

// ResolveReferences returns a deep copy of exp with every ReferenceValue
// substituted by resolve(v). The input tree is never mutated, per
// spec.md §3 ("reference resolution operates on a deep copy when a
// graph is to be re-evaluated more than once").
func ResolveReferences(exp Expression, resolve Resolver) Expression {
	switch e := exp.(type) {
	case nil:
		return nil
	case AbsoluteTrue:
		return e
	case *BoolExp:
		return &BoolExp{
			LHS: ResolveReferences(e.LHS, resolve),
			Op:  e.Op,
			RHS: ResolveReferences(e.RHS, resolve),
		}
	case *MultiComp:
		comps := make([]BasicComparison, len(e.Comps))
		for i, c := range e.Comps {
			comps[i] = resolveComparison(c, resolve)
		}
		return &MultiComp{Op: e.Op, Comps: comps}
	case BasicComparison:
		return resolveComparison(e, resolve)
	default:
		return exp
	}
}

func resolveComparison(c BasicComparison, resolve Resolver) BasicComparison {
	ref, ok := c.(*RefComparison)
	if !ok {
		return cloneComparison(c)
	}
	rv, ok := ref.Value.(ReferenceValue)
	if !ok {
		// Already resolved; still copy to respect deep-copy semantics.
		fields := append([]string(nil), ref.Fields...)
		return &RefComparison{Fields: fields, Op: ref.Op, Value: ref.Value}
	}
	fields := append([]string(nil), ref.Fields...)
	return &RefComparison{Fields: fields, Op: ref.Op, Value: resolve(rv)}
}

func cloneComparison(c BasicComparison) BasicComparison {
	switch v := c.(type) {
	case *IntComparison:
		cp := *v
		return &cp
	case *FloatComparison:
		cp := *v
		return &cp
	case *StrComparison:
		cp := *v
		return &cp
	case *ListComparison:
		cp := *v
		cp.Value = append([]any(nil), v.Value...)
		return &cp
	case *RefComparison:
		cp := *v
		cp.Fields = append([]string(nil), v.Fields...)
		return &cp
	default:
		return c
	}
}

// Clone returns a deep copy of exp, independent of the original.
func Clone(exp Expression) Expression {
	return ResolveReferences(exp, func(rv ReferenceValue) any { return rv })
}
