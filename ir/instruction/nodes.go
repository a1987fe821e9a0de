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

package instruction

import (
	ir "github.com/kestrel-lang/kestrel/ir/filter"
)

// Construct is an inline literal data source: a fixed set of rows plus
// the entity type they represent (`NEW <entity> [ ... ]`). Columns
// records the field order the rows were declared in, when known (the
// parser fills it from the source text's key order); it is authoritative
// over the first-seen-key order `frame.FromRows` would otherwise infer
// by ranging the row maps, which Go randomizes (spec.md §8 Testable
// Scenario 1 requires deterministic column order). Columns is nil for
// Construct nodes built directly in Go code with no declared order to
// preserve.
type Construct struct {
	base
	EntityType string
	Data       []map[string]any
	Columns    []string
}

// NewConstruct builds a Construct node with inferred (nondeterministic)
// column order; use NewConstructOrdered when the caller knows the
// authoritative column order.
func NewConstruct(entityType string, data []map[string]any) *Construct {
	return &Construct{base: newBase(), EntityType: entityType, Data: data}
}

// NewConstructOrdered builds a Construct node with an explicit,
// authoritative column order.
func NewConstructOrdered(entityType string, data []map[string]any, columns []string) *Construct {
	return &Construct{base: newBase(), EntityType: entityType, Data: data, Columns: columns}
}

func (*Construct) Kind() Kind         { return KindConstruct }
func (*Construct) Category() Category { return CategorySource }

// DataSource names an external table (`<entity> FROM scheme://name`).
type DataSource struct {
	base
	Name string
}

func NewDataSource(name string) *DataSource {
	return &DataSource{base: newBase(), Name: name}
}

func (*DataSource) Kind() Kind         { return KindDataSource }
func (*DataSource) Category() Category { return CategorySource }

// Variable is a named, memoizable assignment boundary. Its columns are
// always in OCSF; it re-normalizes all downstream field resolution
// (spec.md invariant 6).
type Variable struct {
	base
	Name       string
	EntityType string // OCSF entity type
	NativeType string // native entity type, preserved for dual use
}

func NewVariable(name, entityType, nativeType string) *Variable {
	return &Variable{base: newBase(), Name: name, EntityType: entityType, NativeType: nativeType}
}

func (*Variable) Kind() Kind         { return KindVariable }
func (*Variable) Category() Category { return CategorySolePredecessor }

// ProjectEntity introduces an OCSF base field used by all downstream
// field resolution until the next Variable boundary (invariant 6).
type ProjectEntity struct {
	base
	OCSFField   string
	NativeField string
}

func NewProjectEntity(ocsfField, nativeField string) *ProjectEntity {
	return &ProjectEntity{base: newBase(), OCSFField: ocsfField, NativeField: nativeField}
}

func (*ProjectEntity) Kind() Kind         { return KindProjectEntity }
func (*ProjectEntity) Category() Category { return CategorySolePredecessor }

// ProjectAttrs selects an ordered list of attributes (`DISP x ATTR
// a, b`).
type ProjectAttrs struct {
	base
	Attrs []string
}

func NewProjectAttrs(attrs []string) *ProjectAttrs {
	return &ProjectAttrs{base: newBase(), Attrs: attrs}
}

func (*ProjectAttrs) Kind() Kind         { return KindProjectAttrs }
func (*ProjectAttrs) Category() Category { return CategorySolePredecessor }

// Limit caps the number of rows returned.
type Limit struct {
	base
	Num int
}

func NewLimit(n int) *Limit { return &Limit{base: newBase(), Num: n} }

func (*Limit) Kind() Kind         { return KindLimit }
func (*Limit) Category() Category { return CategorySolePredecessor }

// Offset skips a number of rows.
type Offset struct {
	base
	Num int
}

func NewOffset(n int) *Offset { return &Offset{base: newBase(), Num: n} }

func (*Offset) Kind() Kind         { return KindOffset }
func (*Offset) Category() Category { return CategorySolePredecessor }

// SortDirection is the direction of a Sort instruction.
type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

// Sort orders rows by a single attribute.
type Sort struct {
	base
	Attribute string
	Direction SortDirection
}

func NewSort(attr string, dir SortDirection) *Sort {
	return &Sort{base: newBase(), Attribute: attr, Direction: dir}
}

func (*Sort) Kind() Kind         { return KindSort }
func (*Sort) Category() Category { return CategorySolePredecessor }

// Return marks a node as a display/output target (`DISP`).
type Return struct {
	base
}

func NewReturn() *Return { return &Return{base: newBase()} }

func (*Return) Kind() Kind         { return KindReturn }
func (*Return) Category() Category { return CategorySolePredecessor }

// Explain marks a node as an EXPLAIN target; it never executes
// anything, only produces a structural + SQL-text description.
type Explain struct {
	base
}

func NewExplain() *Explain { return &Explain{base: newBase()} }

func (*Explain) Kind() Kind         { return KindExplain }
func (*Explain) Category() Category { return CategorySolePredecessor }

// Filter is a multi-predecessor transform: a filter expression plus an
// optional time range, and (at the graph level) one branch predecessor
// per ReferenceValue mentioned in the expression.
type Filter struct {
	base
	Exp       ir.Expression
	TimeRange ir.TimeRange
}

func NewFilter(exp ir.Expression) *Filter {
	if exp == nil {
		exp = ir.AbsoluteTrue{}
	}
	return &Filter{base: newBase(), Exp: exp}
}

func (*Filter) Kind() Kind         { return KindFilter }
func (*Filter) Category() Category { return CategoryMultiPredecessor }

// GetReferences returns the ReferenceValues mentioned in the filter's
// expression tree.
func (f *Filter) GetReferences() []ir.ReferenceValue {
	return ir.GetReferences(f.Exp)
}

// ResolveReferences replaces every ReferenceValue in a deep copy of the
// filter's expression with the value resolve produces, and installs
// that copy as the filter's new expression. The graph this Filter node
// belongs to is otherwise untouched.
func (f *Filter) ResolveReferences(resolve ir.Resolver) {
	f.Exp = ir.ResolveReferences(f.Exp, resolve)
}

// Analytic is a named external analytic applied to a variable, with
// key/value parameters (`APPLY scheme://name ON x WITH k=v`).
type Analytic struct {
	base
	Scheme string
	Name   string
	Params map[string]any
}

func NewAnalytic(scheme, name string, params map[string]any) *Analytic {
	if params == nil {
		params = map[string]any{}
	}
	return &Analytic{base: newBase(), Scheme: scheme, Name: name, Params: params}
}

func (*Analytic) Kind() Kind         { return KindAnalytic }
func (*Analytic) Category() Category { return CategoryMultiPredecessor }

// Reference is a forward reference to a Variable defined elsewhere; it
// must be resolved (linked, by name, to a Variable node) before
// evaluation.
type Reference struct {
	base
	Name string
}

func NewReference(name string) *Reference {
	return &Reference{base: newBase(), Name: name}
}

func (*Reference) Kind() Kind         { return KindReference }
func (*Reference) Category() Category { return CategoryReference }

// IsSource reports whether inst is a SourceInstruction.
func IsSource(inst Instruction) bool { return inst.Category() == CategorySource }

// IsTransforming reports whether inst is a TransformingInstruction
// (sole- or multi-predecessor).
func IsTransforming(inst Instruction) bool {
	c := inst.Category()
	return c == CategorySolePredecessor || c == CategoryMultiPredecessor
}

// IsSolePredecessor reports whether inst takes exactly one predecessor
// and no branches.
func IsSolePredecessor(inst Instruction) bool {
	return inst.Category() == CategorySolePredecessor
}

// IsMultiPredecessor reports whether inst may have branch predecessors.
func IsMultiPredecessor(inst Instruction) bool {
	return inst.Category() == CategoryMultiPredecessor
}
