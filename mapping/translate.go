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

package mapping

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kestrel-lang/kestrel/kerr"
	"github.com/kestrel-lang/kestrel/mapping/transform"
)

// Triple is a translated (field, op, value) comparison, mirroring the
// original's plain 3-tuple (spec.md §4.E algorithm 2).
type Triple struct {
	Field string
	Op    string
	Value any
}

// TranslateComparisonToNative translates an OCSF (field, op, value)
// triple into one or more native triples, to be OR-joined by the
// caller when more than one is returned (spec.md §4.E algorithm 2).
func (m *Mapping) TranslateComparisonToNative(field, op string, value any) ([]Triple, error) {
	node, ok := lookup(m.Forward, field)
	if !ok {
		// Pass-through: no mapping found for this field at all.
		return []Triple{{Field: field, Op: op, Value: value}}, nil
	}
	return m.translateComparison(node, op, value, "native")
}

// TranslateComparisonToOCSF is the mirror operation, looking up in the
// flattened reverse (native->OCSF) map (spec.md §4.E algorithm 3). Unlike
// the native direction, the reverse direction never overrides op: the
// mapping file only ever carries a native_op override, not an ocsf_op one.
func (m *Mapping) TranslateComparisonToOCSF(field, op string, value any) ([]Triple, error) {
	recs, ok := m.Reverse[field]
	if !ok {
		return nil, nil
	}
	var out []Triple
	for _, r := range recs {
		if r.NativeField == "" && r.OCSFField != "" {
			// Simple 1:1 rename.
			out = append(out, Triple{Field: r.OCSFField, Op: op, Value: value})
			continue
		}
		newValue, err := runTransformerOrPass(r.OCSFValue, value)
		if err != nil {
			return nil, err
		}
		out = append(out, Triple{Field: r.OCSFField, Op: op, Value: newValue})
	}
	return out, nil
}

func (m *Mapping) translateComparison(node Node, op string, value any, direction string) ([]Triple, error) {
	switch {
	case node.Str != "":
		return []Triple{{Field: node.Str, Op: op, Value: value}}, nil
	case node.Record != nil:
		t, err := applyRecordTriple(node.Record, op, value, direction)
		if err != nil {
			return nil, err
		}
		return []Triple{t}, nil
	case node.List != nil:
		var out []Triple
		for _, item := range node.List {
			ts, err := m.translateComparison(item, op, value, direction)
			if err != nil {
				return nil, err
			}
			out = append(out, ts...)
		}
		return out, nil
	default:
		return []Triple{{Field: "", Op: op, Value: value}}, nil
	}
}

// applyRecordTriple mirrors the original's _get_map_triple: the native
// direction may override the operator via native_op and transform the
// value via the transformer named in native_value; the ocsf direction
// never overrides the operator (no ocsf_op exists in the mapping format)
// and transforms the value via ocsf_value.
func applyRecordTriple(r *Record, op string, value any, direction string) (Triple, error) {
	field := r.NativeField
	newOp := op
	transformerName := r.NativeValue
	if direction == "ocsf" {
		field = r.OCSFField
		transformerName = r.OCSFValue
	} else if r.NativeOp != "" {
		newOp = r.NativeOp
	}
	newValue, err := runTransformerOrPass(transformerName, value)
	if err != nil {
		return Triple{}, err
	}
	return Triple{Field: field, Op: newOp, Value: newValue}, nil
}

// ProjectionPair is a (native_column, alias) pair produced by
// TranslateProjectionToNative (spec.md §4.E algorithm 4).
type ProjectionPair struct {
	NativeColumn string
	Alias        string
}

// TranslateProjectionToNative resolves either a specific attribute list
// under ocsfBase, or (when attrs is nil) every descendant leaf under
// ocsfBase, into native-column/OCSF-alias pairs, preserving first-seen
// order for de-duplication (spec.md §4.E algorithm 4).
func (m *Mapping) TranslateProjectionToNative(ocsfBase string, attrs []string) []ProjectionPair {
	base := m.Forward
	baseOrder := m.ForwardOrder
	if ocsfBase != "" {
		node, ok := lookup(m.Forward, ocsfBase)
		if !ok || node.Map == nil {
			return nil
		}
		base = node.Map
		baseOrder = node.Keys
	}

	var out []ProjectionPair
	seen := map[string]bool{}
	add := func(col, alias string) {
		key := col + "\x00" + alias
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, ProjectionPair{NativeColumn: col, Alias: alias})
	}

	if attrs != nil {
		for _, attr := range attrs {
			node, ok := lookup(base, attr)
			if !ok {
				continue
			}
			for _, nf := range nativeFieldsOf(node) {
				add(nf, attr)
			}
		}
		return out
	}

	reverse, reverseOrder := ReverseMappingOrdered(base, baseOrder)
	for _, native := range reverseOrder {
		for _, r := range reverse[native] {
			add(native, r.OCSFField)
		}
	}
	return out
}

func nativeFieldsOf(n Node) []string {
	switch {
	case n.Str != "":
		return []string{n.Str}
	case n.Record != nil:
		return []string{n.Record.NativeField}
	case n.List != nil:
		var out []string
		for _, item := range n.List {
			out = append(out, nativeFieldsOf(item)...)
		}
		return out
	default:
		return nil
	}
}

// TranslateEntityProjectionToOCSF maps a native entity/table name to its
// OCSF equivalent via the flattened reverse map's wildcard convention
// (`<native>.*` -> `<ocsf>.*`), used to resolve `ProjectEntity`'s OCSF
// name during lowering (spec.md §4.D).
func (m *Mapping) TranslateEntityProjectionToOCSF(nativeProjection string) string {
	key := nativeProjection
	if !strings.HasSuffix(key, "*") {
		key = key + ".*"
	}
	recs, ok := m.Reverse[key]
	if !ok || len(recs) == 0 {
		return strings.TrimSuffix(key, ".*")
	}
	ocsf := recs[0].OCSFField
	return strings.TrimSuffix(ocsf, ".*")
}

// TranslateAttrsProjectionToOCSF maps a list of native attribute names
// to OCSF, trying `attr`, `<native_type>:attr` (STIX), and
// `<native_type>.attr` (ECS) in turn, and stripping the current entity's
// own prefix from the result (spec.md §4.D).
func (m *Mapping) TranslateAttrsProjectionToOCSF(nativeType, entityType string, attrs []string) []string {
	var out []string
	for _, attr := range attrs {
		recs, ok := m.Reverse[attr]
		if !ok && nativeType != "" {
			recs, ok = m.Reverse[nativeType+":"+attr]
		}
		if !ok && nativeType != "" {
			recs, ok = m.Reverse[nativeType+"."+attr]
		}
		if !ok {
			out = append(out, attr)
			continue
		}
		for _, r := range recs {
			out = append(out, r.OCSFField)
		}
	}
	if entityType != "" {
		prefix := entityType + "."
		for i, field := range out {
			out[i] = strings.TrimPrefix(field, prefix)
		}
	}
	return out
}

func runTransformerOrPass(name string, value any) (any, error) {
	return transform.Run(name, value)
}

// CheckEntityIdentifierExistence validates that every identifier path
// required by an entity type actually resolves in the forward mapping
// tree, returning kerr.ErrIncompleteDataMapping naming the first missing
// one (spec.md §4.E: datasource registration must fail fast when a
// mapping file omits an identifier the schema declares mandatory).
// entityIdentifiers maps entity type -> required dotted attribute paths.
func (m *Mapping) CheckEntityIdentifierExistence(entityIdentifiers map[string][]string, interfaceInfo string) error {
	for entityName, ids := range entityIdentifiers {
		entity, ok := m.Forward[entityName]
		if !ok || entity.Map == nil {
			continue
		}
		for _, idx := range ids {
			if _, found := lookup(entity.Map, idx); !found {
				log.WithFields(logrus.Fields{"entity": entityName, "identifier": idx, "interface": interfaceInfo}).Warn("identifier missing in data mapping")
				return kerr.ErrIncompleteDataMapping.New(idx, entityName)
			}
		}
	}
	return nil
}
