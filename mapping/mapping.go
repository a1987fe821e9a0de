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

// Package mapping implements the bidirectional OCSF <-> native schema
// mapping engine (spec.md §4.E). A mapping is loaded as a nested
// OCSF -> native tree (forward form); a flattened native -> OCSF form
// (reverse) is derived from it by deep traversal, dot-joining keys.
//
// Ported in semantics, not in code, from
// original_source/.../kestrel/mapping/data_model.py; Python's
// OrderedDict.fromkeys-based de-duplication becomes an explicit
// seen-set + slice in Go.
package mapping

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/kestrel-lang/kestrel/kerr"
)

var log = logrus.WithField("component", "mapping")

// Record is a complex mapping leaf: {native_field, native_op?,
// native_value?, ocsf_value?} (spec.md §4.E / §6).
type Record struct {
	NativeField string `yaml:"native_field"`
	NativeOp    string `yaml:"native_op,omitempty"`
	NativeValue string `yaml:"native_value,omitempty"`
	OCSFValue   string `yaml:"ocsf_value,omitempty"`

	// OCSFField is filled in only on reverse-mapping records (the
	// dotted OCSF path this native field was reversed from); forward
	// records never set it.
	OCSFField string `yaml:"-"`
}

// Node is one entry of a loaded mapping tree: it's either a nested
// object (map[string]Node), a plain string (a 1:1 field rename), a
// Record (a field rename with op/value transforms), or a list of any of
// the above (one-to-many). Keys records a Map node's keys in the order
// they were declared in the source YAML; gopkg.in/yaml.v2 decodes into
// a plain Go map, which has no order of its own, so Keys is captured
// separately via a yaml.MapSlice pass during UnmarshalYAML.
type Node struct {
	Map    map[string]Node
	Keys   []string
	Str    string
	Record *Record
	List   []Node
}

func (n Node) isZero() bool {
	return n.Map == nil && n.Str == "" && n.Record == nil && n.List == nil
}

// UnmarshalYAML implements custom decoding so a mapping file's leaves
// (string / list / {native_field: ...} record / nested map) all land in
// the right Node field.
func (n *Node) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		n.Str = s
		return nil
	}
	var rec struct {
		NativeField string `yaml:"native_field"`
		NativeOp    string `yaml:"native_op"`
		NativeValue string `yaml:"native_value"`
		OCSFValue   string `yaml:"ocsf_value"`
	}
	if err := unmarshal(&rec); err == nil && rec.NativeField != "" {
		n.Record = &Record{
			NativeField: rec.NativeField,
			NativeOp:    rec.NativeOp,
			NativeValue: rec.NativeValue,
			OCSFValue:   rec.OCSFValue,
		}
		return nil
	}
	var list []Node
	if err := unmarshal(&list); err == nil {
		n.List = list
		return nil
	}
	m, keys, err := unmarshalOrderedMap(unmarshal)
	if err == nil {
		n.Map = m
		n.Keys = keys
		return nil
	}
	return kerr.ErrInvalidMapping.New("leaf is neither string, list, record, nor map")
}

// unmarshalOrderedMap decodes a YAML mapping node twice: once as a
// yaml.MapSlice to recover declaration order, once per-key into a Node
// for its value, since yaml.MapSlice.Value arrives as a plain
// interface{} rather than already-typed Node values.
func unmarshalOrderedMap(unmarshal func(any) error) (map[string]Node, []string, error) {
	var ms yaml.MapSlice
	if err := unmarshal(&ms); err != nil {
		return nil, nil, err
	}
	m := make(map[string]Node, len(ms))
	keys := make([]string, 0, len(ms))
	for _, item := range ms {
		key, ok := item.Key.(string)
		if !ok {
			return nil, nil, kerr.ErrInvalidMapping.New("map key %v is not a string", item.Key)
		}
		raw, err := yaml.Marshal(item.Value)
		if err != nil {
			return nil, nil, err
		}
		var child Node
		if err := yaml.Unmarshal(raw, &child); err != nil {
			return nil, nil, err
		}
		m[key] = child
		keys = append(keys, key)
	}
	return m, keys, nil
}

// Mapping holds both the loaded forward (OCSF->native) tree and the
// derived, flattened reverse (native->OCSF) map.
type Mapping struct {
	Forward      map[string]Node     // as loaded, OCSF -> native
	ForwardOrder []string            // Forward's top-level keys, in declaration order
	Reverse      map[string][]Record // flattened native -> OCSF, one entry per alternative

	// ReverseOrder is the native keys of Reverse in first-seen
	// depth-first traversal order over Forward (following each Node's
	// Keys, not a map range, which Go randomizes). SPEC_FULL.md §4.E
	// point 4 requires this order preserved for a whole-entity
	// projection with no explicit attribute list.
	ReverseOrder []string
}

// Load parses a YAML mapping file's bytes (spec.md §6: "Mapping file.
// YAML, OCSF -> native").
func Load(data []byte) (*Mapping, error) {
	var ms yaml.MapSlice
	if err := yaml.Unmarshal(data, &ms); err != nil {
		return nil, kerr.ErrInvalidMapping.New(err.Error())
	}
	forward := make(map[string]Node, len(ms))
	order := make([]string, 0, len(ms))
	for _, item := range ms {
		key, ok := item.Key.(string)
		if !ok {
			return nil, kerr.ErrInvalidMapping.New("top-level map key %v is not a string", item.Key)
		}
		raw, err := yaml.Marshal(item.Value)
		if err != nil {
			return nil, kerr.ErrInvalidMapping.New(err.Error())
		}
		var child Node
		if err := yaml.Unmarshal(raw, &child); err != nil {
			return nil, kerr.ErrInvalidMapping.New(err.Error())
		}
		forward[key] = child
		order = append(order, key)
	}
	m := &Mapping{Forward: forward, ForwardOrder: order}
	m.Reverse, m.ReverseOrder = ReverseMappingOrdered(forward, order)
	log.WithFields(logrus.Fields{"ocsf_fields": len(forward), "native_fields": len(m.Reverse)}).Debug("loaded mapping")
	return m, nil
}

// ReverseMapping computes the flattened native -> OCSF map from a
// loaded OCSF -> native tree (spec.md §4.E algorithm 1). Iterating the
// result directly loses traversal order; use ReverseMappingOrdered when
// order matters.
func ReverseMapping(obj map[string]Node, order []string) map[string][]Record {
	acc, _ := ReverseMappingOrdered(obj, order)
	return acc
}

// ReverseMappingOrdered is ReverseMapping plus the native keys in
// first-seen depth-first order over obj, walked according to order (obj's
// own top-level key declaration order; see Node.Keys for nested levels).
// If order is nil, obj's keys are visited in sorted order as a
// deterministic (if not declaration-faithful) fallback, rather than
// Go's randomized map range.
func ReverseMappingOrdered(obj map[string]Node, order []string) (map[string][]Record, []string) {
	acc := newReverseAcc()
	reverseInto(obj, orderedKeysOf(obj, order), "", acc)
	return acc.m, acc.order
}

// orderedKeysOf returns order if non-nil, else obj's keys sorted
// alphabetically.
func orderedKeysOf(obj map[string]Node, order []string) []string {
	if order != nil {
		return order
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// reverseAcc accumulates reverse-mapping records while remembering the
// order native keys were first inserted, since obj (and every Go map
// derived from it) has no order of its own.
type reverseAcc struct {
	m     map[string][]Record
	order []string
}

func newReverseAcc() *reverseAcc {
	return &reverseAcc{m: map[string][]Record{}}
}

func (a *reverseAcc) add(key string, rec Record) {
	if _, ok := a.m[key]; !ok {
		a.order = append(a.order, key)
	}
	a.m[key] = append(a.m[key], rec)
}

func reverseInto(obj map[string]Node, keys []string, prefix string, acc *reverseAcc) {
	for _, k := range keys {
		v := obj[k]
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch {
		case v.Str != "":
			addAttr(acc, v.Str, path)
		case v.Record != nil:
			rec := *v.Record
			rec.OCSFField = path
			acc.add(rec.NativeField, rec)
		case v.List != nil:
			for _, item := range v.List {
				switch {
				case item.Str != "":
					addAttr(acc, item.Str, path)
				case item.Record != nil:
					rec := *item.Record
					rec.OCSFField = path
					acc.add(rec.NativeField, rec)
				case item.Map != nil:
					reverseInto(item.Map, orderedKeysOf(item.Map, item.Keys), path, acc)
				}
			}
		case v.Map != nil:
			reverseInto(v.Map, orderedKeysOf(v.Map, v.Keys), path, acc)
		}
	}
}

func addAttr(acc *reverseAcc, key, ocsfField string) {
	for _, r := range acc.m[key] {
		if r.OCSFField == ocsfField && r.NativeField == "" {
			return
		}
	}
	acc.add(key, Record{OCSFField: ocsfField})
}

// lookup walks a dotted path through a forward (OCSF->native) tree,
// returning the Node found there, or a zero Node and false.
func lookup(forward map[string]Node, dotted string) (Node, bool) {
	parts := strings.Split(dotted, ".")
	cur := forward
	for i, p := range parts {
		n, ok := cur[p]
		if !ok {
			return Node{}, false
		}
		if i == len(parts)-1 {
			return n, true
		}
		if n.Map == nil {
			return Node{}, false
		}
		cur = n.Map
	}
	return Node{}, false
}
