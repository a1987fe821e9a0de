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

// NewComparison builds the correct BasicComparison variant for a
// (field, op, value) triple, applying the tie-break rules in spec.md
// §4.A: a reference value compared with string equality/inequality is
// rewritten to IN/NOT IN (a single-column subquery test); numeric and
// string comparators are never rewritten for any other value kind.
func NewComparison(field string, op string, value any) BasicComparison {
	if rv, ok := value.(ReferenceValue); ok {
		listOp := ListIn
		if op == string(StrNE) || op == string(ListNotIn) || op == string(NumNE) {
			listOp = ListNotIn
		}
		return &RefComparison{Fields: []string{field}, Op: listOp, Value: rv}
	}
	switch v := value.(type) {
	case int:
		return &IntComparison{Field: field, Op: NumCompOp(op), Value: int64(v)}
	case int64:
		return &IntComparison{Field: field, Op: NumCompOp(op), Value: v}
	case float64:
		return &FloatComparison{Field: field, Op: NumCompOp(op), Value: v}
	case string:
		return &StrComparison{Field: field, Op: StrCompOp(op), Value: v}
	case []any:
		return &ListComparison{Field: field, Op: ListOp(op), Value: v}
	default:
		return &StrComparison{Field: field, Op: StrCompOp(op), Value: ""}
	}
}

// Field returns the single field name of a basic comparison that has
// exactly one (non-RefComparison comparisons always do), or the first
// field of a RefComparison.
func Field(c BasicComparison) string {
	switch v := c.(type) {
	case *IntComparison:
		return v.Field
	case *FloatComparison:
		return v.Field
	case *StrComparison:
		return v.Field
	case *ListComparison:
		return v.Field
	case *RefComparison:
		if len(v.Fields) > 0 {
			return v.Fields[0]
		}
	}
	return ""
}

// Op returns the comparison's operator as a plain string, regardless of
// which concrete operator type it carries.
func Op(c BasicComparison) string {
	switch v := c.(type) {
	case *IntComparison:
		return string(v.Op)
	case *FloatComparison:
		return string(v.Op)
	case *StrComparison:
		return string(v.Op)
	case *ListComparison:
		return string(v.Op)
	case *RefComparison:
		return string(v.Op)
	}
	return ""
}

// Value returns the comparison's right-hand operand as an any.
func Value(c BasicComparison) any {
	switch v := c.(type) {
	case *IntComparison:
		return v.Value
	case *FloatComparison:
		return v.Value
	case *StrComparison:
		return v.Value
	case *ListComparison:
		return v.Value
	case *RefComparison:
		return v.Value
	}
	return nil
}

// WithField returns a copy of c with its field(s) replaced by field (a
// single-element rewrite; used when lowering a comparison to its
// mapped native/OCSF name).
func WithField(c BasicComparison, field string) BasicComparison {
	switch v := c.(type) {
	case *IntComparison:
		cp := *v
		cp.Field = field
		return &cp
	case *FloatComparison:
		cp := *v
		cp.Field = field
		return &cp
	case *StrComparison:
		cp := *v
		cp.Field = field
		return &cp
	case *ListComparison:
		cp := *v
		cp.Field = field
		return &cp
	case *RefComparison:
		cp := *v
		cp.Fields = []string{field}
		return &cp
	}
	return c
}

// WithOpValue returns a copy of c with its operator and value replaced,
// used when a mapping record supplies a native_op/native_value override.
func WithOpValue(c BasicComparison, op string, value any) BasicComparison {
	switch v := c.(type) {
	case *IntComparison:
		cp := *v
		cp.Op = NumCompOp(op)
		if iv, ok := value.(int64); ok {
			cp.Value = iv
		}
		return &cp
	case *FloatComparison:
		cp := *v
		cp.Op = NumCompOp(op)
		if fv, ok := value.(float64); ok {
			cp.Value = fv
		}
		return &cp
	case *StrComparison:
		cp := *v
		cp.Op = StrCompOp(op)
		if sv, ok := value.(string); ok {
			cp.Value = sv
		}
		return &cp
	case *ListComparison:
		cp := *v
		cp.Op = ListOp(op)
		if lv, ok := value.([]any); ok {
			cp.Value = lv
		}
		return &cp
	}
	return c
}
