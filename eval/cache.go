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

// Package eval implements the two evaluators of spec.md §4.G/§4.H: a
// SQL planner that recursively lowers an IR graph into translator
// chains executed against a backend.Connection, and a frame-native
// evaluator that walks the same graph against in-memory frame.Frame
// values. Both are grounded on
// `original_source/.../kestrel/cache/sql.py`'s `SqlCache`/
// `SqlCacheVirtual`/`_evaluate_instruction_in_graph`.
package eval

import (
	"github.com/google/uuid"

	"github.com/kestrel-lang/kestrel/frame"
)

// Cache records, per instruction id, either the name of a real backend
// table holding that instruction's materialized result, or (when no
// backend write ever happened for it) the in-memory frame.Frame itself.
// The frame-only form is what lets a cache hit be reused across
// evaluators that don't share a backend connection — grounded on
// `SqlCacheVirtual`'s override of `__setitem__`/`__getitem__` to skip
// the SQL round-trip, generalized here to actually retain the data
// (spec.md §8 Testable Scenario 5's cross-interface join needs the
// first variable's rows available to resolve inside the second's
// evaluation, not just a membership marker).
type Cache struct {
	catalog map[uuid.UUID]string
	frames  map[uuid.UUID]*frame.Frame
	virtual bool
}

// NewCache returns an empty, non-virtual Cache.
func NewCache() *Cache {
	return &Cache{catalog: map[uuid.UUID]string{}, frames: map[uuid.UUID]*frame.Frame{}}
}

// Has reports whether id has a cache entry of either form.
func (c *Cache) Has(id uuid.UUID) bool {
	if _, ok := c.catalog[id]; ok {
		return true
	}
	_, ok := c.frames[id]
	return ok
}

// Get returns the backend table name recorded for id, if any. It does
// not consult frame entries; callers that also want to resolve a
// frame-only hit should fall back to GetFrame.
func (c *Cache) Get(id uuid.UUID) (string, bool) {
	name, ok := c.catalog[id]
	return name, ok
}

// GetFrame returns the in-memory frame recorded for id, if any.
func (c *Cache) GetFrame(id uuid.UUID) (*frame.Frame, bool) {
	fr, ok := c.frames[id]
	return fr, ok
}

// Put records tableName as id's backing table, for a result already
// materialized into a real backend.
func (c *Cache) Put(id uuid.UUID, tableName string) {
	c.catalog[id] = tableName
}

// PutFrame records fr as id's result without any backend table,
// e.g. from the frame-native evaluator (which has no backend to write
// to) or a virtual Cache. A later SqlEvaluator cache hit on id
// (planInstruction) materializes fr into its own backend on demand.
func (c *Cache) PutFrame(id uuid.UUID, fr *frame.Frame) {
	c.frames[id] = fr
}

// Delete removes id's cache entry, of either form.
func (c *Cache) Delete(id uuid.UUID) {
	delete(c.catalog, id)
	delete(c.frames, id)
}

// VirtualCopy returns a Cache that starts out with the same entries as
// c but is marked virtual, grounded on `SqlCache.get_virtual_copy`
// (`copy(self)` then rebinding `__class__` to `SqlCacheVirtual`). Used
// to let a frame-native evaluation see (and reuse, via GetFrame/Get)
// which nodes a prior evaluation already computed, without risking
// writes through this copy ever reaching the original's real backend
// table until explicitly re-materialized.
func (c *Cache) VirtualCopy() *Cache {
	catalog := make(map[uuid.UUID]string, len(c.catalog))
	for k, v := range c.catalog {
		catalog[k] = v
	}
	frames := make(map[uuid.UUID]*frame.Frame, len(c.frames))
	for k, v := range c.frames {
		frames[k] = v
	}
	return &Cache{catalog: catalog, frames: frames, virtual: true}
}

// IsVirtual reports whether c is a virtual copy.
func (c *Cache) IsVirtual() bool {
	return c.virtual
}
