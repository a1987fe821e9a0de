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

// Package transform implements the named value-transformer registry
// referenced (but not itself retrieved) by the original Kestrel
// implementation's mapping.transformers module — evident from
// data_model.py's `run_transformer(transform_name, value)` calls inside
// `_get_map_triple`. Transformers are pure, single-argument functions
// named in a schema mapping file's `native_value`/`ocsf_value` fields
// and applied to a scalar during comparison/projection translation
// (spec.md §4.E, §9).
package transform

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cast"
)

// Func is a named value transformer: a pure function from one scalar to
// another.
type Func func(any) (any, error)

var registry = map[string]Func{
	"basename": func(v any) (any, error) {
		return path.Base(cast.ToString(v)), nil
	},
	"endswith": func(v any) (any, error) {
		// Used as a marker for callers that need to know "this value
		// should be matched with a trailing wildcard" rather than
		// transforming the value itself; pass-through by default.
		return v, nil
	},
	"to_int": func(v any) (any, error) {
		return cast.ToInt64E(v)
	},
	"to_str": func(v any) (any, error) {
		return cast.ToString(v), nil
	},
	"to_float": func(v any) (any, error) {
		return cast.ToFloat64E(v)
	},
	"lower": func(v any) (any, error) {
		return strings.ToLower(cast.ToString(v)), nil
	},
	"upper": func(v any) (any, error) {
		return strings.ToUpper(cast.ToString(v)), nil
	},
}

// Register adds or replaces a named transformer, for out-of-band
// extension (spec.md §9).
func Register(name string, fn Func) {
	registry[name] = fn
}

// Run applies the transformer named by name to value. An empty name
// means "pass through" (spec.md §4.E: "Missing ops/values mean
// 'pass through'").
func Run(name string, value any) (any, error) {
	if name == "" {
		return value, nil
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("transform: unknown transformer %q", name)
	}
	return fn(value)
}

// RunOnSlice applies the named transformer element-wise to a slice of
// scalars, skipping nil entries (mirrors
// `run_transformer_on_series`/`translate_dataframe`'s handling of
// null/NaN cells in spec.md §4.E.5).
func RunOnSlice(name string, values []any) ([]any, error) {
	if name == "" {
		return values, nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = nil
			continue
		}
		r, err := Run(name, v)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
