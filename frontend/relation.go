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

// Relation describes one FIND-able relationship between a origin native
// entity type and a target native entity type: the attribute pairs that
// must match for a row of one to be "related to" a row of the other.
// Grounded on `frontend/compile.py`'s `entity_entity_relation_table` /
// `entity_event_relation_table` constructor parameters, which the
// original never finishes wiring into `find()` (spec.md §4.D
// supplemental feature: FIND is fully implemented here).
type Relation struct {
	TargetNativeType string
	// JoinFrom/JoinTo are parallel slices of identifier attribute names:
	// JoinFrom[i] on the origin entity must equal JoinTo[i] on the
	// target entity for a relation to hold.
	JoinFrom []string
	JoinTo   []string
}

// RelationTable maps an origin native entity type and a relation verb to
// the Relation describing how to join into the target entity.
type RelationTable map[string]map[string]Relation

// Lookup returns the Relation for (originNativeType, relationName), and
// false if none is registered.
func (rt RelationTable) Lookup(originNativeType, relationName string) (Relation, bool) {
	if rt == nil {
		return Relation{}, false
	}
	byRelation, ok := rt[originNativeType]
	if !ok {
		return Relation{}, false
	}
	rel, ok := byRelation[relationName]
	return rel, ok
}
