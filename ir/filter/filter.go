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

// Package filter implements the Kestrel filter expression model: a small
// recursive sum type of boolean trees over typed comparisons, including
// comparisons whose value is resolved from another variable at
// evaluation time (spec.md §4.A).
//
// The tree is purely data. Two operations act on it generically without
// knowing which concrete comparison kind they are looking at:
// References (walk for ReferenceValues) and ResolveReferences
// (substitute them). Everything else (rendering to SQL, evaluating over
// a frame) lives in the consuming packages.
package filter

import "fmt"

// ExpOp is the boolean connective joining two sub-expressions.
type ExpOp string

const (
	And ExpOp = "AND"
	Or  ExpOp = "OR"
)

// NumCompOp is a numeric comparison operator.
type NumCompOp string

const (
	NumEQ NumCompOp = "="
	NumNE NumCompOp = "!="
	NumLT NumCompOp = "<"
	NumLE NumCompOp = "<="
	NumGT NumCompOp = ">"
	NumGE NumCompOp = ">="
)

// StrCompOp is a string comparison operator.
type StrCompOp string

const (
	StrEQ       StrCompOp = "="
	StrNE       StrCompOp = "!="
	StrLike     StrCompOp = "LIKE"
	StrNotLike  StrCompOp = "NOT LIKE"
	StrMatches  StrCompOp = "MATCHES"
	StrNMatches StrCompOp = "NOT MATCHES"
)

// ListOp is a list membership operator, also used for reference-valued
// comparisons (a ReferenceValue is resolved to a list/subquery).
type ListOp string

const (
	ListIn    ListOp = "IN"
	ListNotIn ListOp = "NOT IN"
)

// Expression is any node of the filter expression tree: BoolExp,
// MultiComp, one of the BasicComparison variants, or AbsoluteTrue.
type Expression interface {
	isExpression()
}

// BoolExp is a binary boolean connective over two sub-expressions.
type BoolExp struct {
	LHS Expression
	Op  ExpOp
	RHS Expression
}

func (*BoolExp) isExpression() {}

// MultiComp is a flat n-ary conjunction/disjunction over basic
// comparisons, produced when a single user-written field maps to
// several native/OCSF fields (spec.md §4.D).
type MultiComp struct {
	Op    ExpOp
	Comps []BasicComparison
}

func (*MultiComp) isExpression() {}

// AbsoluteTrue is the identity element for filter conjunctions (e.g. a
// FIND expansion or a bare WHERE-less clause).
type AbsoluteTrue struct{}

func (AbsoluteTrue) isExpression() {}

// BasicComparison is a leaf comparison: one of Int, Float, Str, List,
// or Ref (reference-valued).
type BasicComparison interface {
	Expression
	isBasicComparison()
}

// ReferenceValue names a variable and the attribute(s) of it a
// reference-valued comparison is resolved against, e.g. `pid IN
// newvar.pid`.
type ReferenceValue struct {
	Variable   string
	Attributes []string
}

func (r ReferenceValue) String() string {
	return fmt.Sprintf("%s.%v", r.Variable, r.Attributes)
}

// IntComparison compares a single field against an integer value.
type IntComparison struct {
	Field string
	Op    NumCompOp
	Value int64
}

func (*IntComparison) isExpression()     {}
func (*IntComparison) isBasicComparison() {}

// FloatComparison compares a single field against a floating value.
type FloatComparison struct {
	Field string
	Op    NumCompOp
	Value float64
}

func (*FloatComparison) isExpression()     {}
func (*FloatComparison) isBasicComparison() {}

// StrComparison compares a single field against a string value.
type StrComparison struct {
	Field string
	Op    StrCompOp
	Value string
}

func (*StrComparison) isExpression()     {}
func (*StrComparison) isBasicComparison() {}

// ListComparison compares a single field for membership in a literal
// list of values.
type ListComparison struct {
	Field string
	Op    ListOp
	Value []any
}

func (*ListComparison) isExpression()     {}
func (*ListComparison) isBasicComparison() {}

// RefComparison compares one or more fields for membership in the
// result of evaluating another variable (possibly over a tuple of
// attributes, for a multi-column IN). Value starts out as a
// ReferenceValue; ResolveReferences returns a copy of the tree in which
// it is replaced.
type RefComparison struct {
	Fields []string
	Op     ListOp
	Value  any // ReferenceValue until resolved; then a resolver-defined handle
}

func (*RefComparison) isExpression()     {}
func (*RefComparison) isBasicComparison() {}

// TimeRange is a half-open [Start, Stop) absolute time window, carried
// alongside a Filter rather than being part of the expression tree
// (spec.md §3).
type TimeRange struct {
	Start, Stop any // time.Time in practice; kept generic so callers can use their own clock type
}

// IsZero reports whether no time range was set.
func (t TimeRange) IsZero() bool {
	return t.Start == nil && t.Stop == nil
}
