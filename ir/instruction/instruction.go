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

// Package instruction implements the Kestrel instruction (IR node)
// model: a closed set of tagged node kinds, each carrying a stable
// identity and kind-specific attributes (spec.md §3, §4.B).
//
// Dynamic dispatch by node kind, done in the original implementation by
// method-name lookup (`getattr(self, "add_" + kind)`), is replaced here
// by an explicit Kind enum plus a type switch at call sites — the
// teacher's own closed-sum-type-of-structs pattern, generalized from
// "one struct type per SQL node" to "one struct type per IR node".
package instruction

import "github.com/google/uuid"

// Kind tags which concrete instruction a node is.
type Kind int

const (
	KindConstruct Kind = iota
	KindDataSource
	KindVariable
	KindProjectEntity
	KindProjectAttrs
	KindLimit
	KindOffset
	KindSort
	KindReturn
	KindExplain
	KindFilter
	KindAnalytic
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindConstruct:
		return "Construct"
	case KindDataSource:
		return "DataSource"
	case KindVariable:
		return "Variable"
	case KindProjectEntity:
		return "ProjectEntity"
	case KindProjectAttrs:
		return "ProjectAttrs"
	case KindLimit:
		return "Limit"
	case KindOffset:
		return "Offset"
	case KindSort:
		return "Sort"
	case KindReturn:
		return "Return"
	case KindExplain:
		return "Explain"
	case KindFilter:
		return "Filter"
	case KindAnalytic:
		return "Analytic"
	case KindReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// Category groups instructions by their role in the graph (spec.md §3).
type Category int

const (
	// CategorySource instructions have no predecessor; they originate
	// data (Construct, DataSource).
	CategorySource Category = iota
	// CategorySolePredecessor instructions have exactly one (trunk)
	// predecessor and no branches.
	CategorySolePredecessor
	// CategoryMultiPredecessor instructions may have branch
	// predecessors in addition to their trunk (Filter, Analytic).
	CategoryMultiPredecessor
	// CategoryReference instructions are forward references to a
	// Variable defined elsewhere.
	CategoryReference
)

// Instruction is implemented by every concrete IR node type. Identity is
// assigned once at construction and is never recomputed; equality
// between instructions is by identity, not content (spec.md §4.B).
type Instruction interface {
	ID() uuid.UUID
	Kind() Kind
	Category() Category
}

// base is embedded by every concrete instruction type to provide
// identity bookkeeping.
type base struct {
	id uuid.UUID
}

func newBase() base {
	return base{id: uuid.New()}
}

func (b base) ID() uuid.UUID { return b.id }
