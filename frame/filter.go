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

package frame

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	f "github.com/kestrel-lang/kestrel/ir/filter"
	"github.com/kestrel-lang/kestrel/kerr"
)

// EvalFilterMask returns a boolean mask, one entry per row of fr,
// reporting whether each row satisfies exp, grounded on
// `_eval_Filter_exp`/`_eval_Filter_exp_BoolExp`/`_eval_Filter_exp_Comparison`.
// A RefComparison's Value must already be resolved to a literal list (or
// list of tuples, for a multi-column comparison); an unresolved
// f.ReferenceValue is an error here (resolution is the evaluator's job).
func EvalFilterMask(exp f.Expression, fr *Frame) ([]bool, error) {
	switch e := exp.(type) {
	case nil, f.AbsoluteTrue:
		mask := make([]bool, fr.numRows)
		for i := range mask {
			mask[i] = true
		}
		return mask, nil
	case *f.BoolExp:
		lhs, err := EvalFilterMask(e.LHS, fr)
		if err != nil {
			return nil, err
		}
		rhs, err := EvalFilterMask(e.RHS, fr)
		if err != nil {
			return nil, err
		}
		return combineMask(lhs, rhs, e.Op), nil
	case *f.MultiComp:
		if len(e.Comps) == 0 {
			mask := make([]bool, fr.numRows)
			for i := range mask {
				mask[i] = true
			}
			return mask, nil
		}
		acc, err := evalComparisonMask(e.Comps[0], fr)
		if err != nil {
			return nil, err
		}
		for _, c := range e.Comps[1:] {
			m, err := evalComparisonMask(c, fr)
			if err != nil {
				return nil, err
			}
			acc = combineMask(acc, m, e.Op)
		}
		return acc, nil
	case f.BasicComparison:
		return evalComparisonMask(e, fr)
	default:
		return nil, kerr.ErrInvalidComparison.New("<unknown>", exp)
	}
}

func combineMask(lhs, rhs []bool, op f.ExpOp) []bool {
	out := make([]bool, len(lhs))
	for i := range lhs {
		if op == f.And {
			out[i] = lhs[i] && rhs[i]
		} else {
			out[i] = lhs[i] || rhs[i]
		}
	}
	return out
}

// evalComparisonMask renders a single leaf comparison to a mask,
// grounded on `_eval_Filter_exp_Comparison`.
func evalComparisonMask(c f.BasicComparison, fr *Frame) ([]bool, error) {
	if rc, ok := c.(*f.RefComparison); ok {
		return evalRefComparisonMask(rc, fr)
	}

	field := f.Field(c)
	col, ok := fr.Column(field)
	if !ok {
		return nil, kerr.ErrSourceSchemaNotFound.New("no column " + field + " in frame")
	}
	op := f.Op(c)
	value := f.Value(c)
	mask := make([]bool, len(col))
	for i, cell := range col {
		ok, err := compareScalar(cell, op, value)
		if err != nil {
			return nil, err
		}
		mask[i] = ok
	}
	return mask, nil
}

// evalRefComparisonMask handles a RefComparison whose value has already
// been resolved to a literal list (single field) or a list of
// fixed-arity tuples (multi-field), grounded on the `RefComparison`
// branch of `_eval_Filter_exp_Comparison` (composite-key index lookup).
func evalRefComparisonMask(rc *f.RefComparison, fr *Frame) ([]bool, error) {
	if rc.Op != f.ListIn && rc.Op != f.ListNotIn {
		return nil, kerr.ErrInvalidMultiColumnOperator.New(string(rc.Op))
	}
	negate := rc.Op == f.ListNotIn

	if len(rc.Fields) == 1 {
		col, ok := fr.Column(rc.Fields[0])
		if !ok {
			return nil, kerr.ErrSourceSchemaNotFound.New("no column " + rc.Fields[0] + " in frame")
		}
		values, ok := rc.Value.([]any)
		if !ok {
			return nil, kerr.ErrMismatchedFieldValueArity.New(1, 0)
		}
		set := map[string]bool{}
		for _, v := range values {
			set[scalarKey(v)] = true
		}
		mask := make([]bool, len(col))
		for i, cell := range col {
			found := set[scalarKey(cell)]
			mask[i] = found != negate
		}
		return mask, nil
	}

	tuples, ok := rc.Value.([][]any)
	if !ok || (len(tuples) > 0 && len(tuples[0]) != len(rc.Fields)) {
		return nil, kerr.ErrMismatchedFieldValueArity.New(len(rc.Fields), tupleArity(rc.Value))
	}
	cols := make([][]any, len(rc.Fields))
	for i, field := range rc.Fields {
		col, ok := fr.Column(field)
		if !ok {
			return nil, kerr.ErrSourceSchemaNotFound.New("no column " + field + " in frame")
		}
		cols[i] = col
	}
	set := map[string]bool{}
	for _, tup := range tuples {
		set[tupleKey(tup)] = true
	}
	mask := make([]bool, fr.numRows)
	for i := 0; i < fr.numRows; i++ {
		row := make([]any, len(cols))
		for j, col := range cols {
			row[j] = col[i]
		}
		found := set[tupleKey(row)]
		mask[i] = found != negate
	}
	return mask, nil
}

func tupleArity(v any) int {
	if tuples, ok := v.([][]any); ok && len(tuples) > 0 {
		return len(tuples[0])
	}
	return 0
}

// compareScalar applies op to (cell, value), grounded on
// `_eval_Filter_exp_Comparison`'s `comp2func` table: numeric comparisons
// via Go's native ordering, LIKE via the same `%`->`.*?`, `.`->`\.`
// substitution, MATCHES via direct regex search, IN/NOT IN via a Go
// slice membership scan (the pandas function already used this lookup
// shape for a single non-reference value list).
func compareScalar(cell any, op string, value any) (bool, error) {
	switch op {
	// StrEQ/StrNE have the same text as NumEQ/NumNE ("=", "!="), so
	// these two cases cover both.
	case string(f.NumEQ):
		return scalarKey(cell) == scalarKey(value), nil
	case string(f.NumNE):
		return scalarKey(cell) != scalarKey(value), nil
	case string(f.NumLT), string(f.NumLE), string(f.NumGT), string(f.NumGE):
		return compareNumeric(cell, op, value)
	case string(f.StrLike), string(f.StrNotLike):
		ok, err := likeMatch(cell, value)
		if err != nil {
			return false, err
		}
		if op == string(f.StrNotLike) {
			return !ok, nil
		}
		return ok, nil
	case string(f.StrMatches), string(f.StrNMatches):
		ok, err := regexMatch(cell, value)
		if err != nil {
			return false, err
		}
		if op == string(f.StrNMatches) {
			return !ok, nil
		}
		return ok, nil
	case string(f.ListIn), string(f.ListNotIn):
		items, _ := value.([]any)
		found := false
		for _, item := range items {
			if scalarKey(item) == scalarKey(cell) {
				found = true
				break
			}
		}
		if op == string(f.ListNotIn) {
			return !found, nil
		}
		return found, nil
	default:
		return false, kerr.ErrInvalidComparison.New(op, value)
	}
}

func compareNumeric(cell any, op string, value any) (bool, error) {
	a, aok := toFloat(cell)
	b, bok := toFloat(value)
	if !aok || !bok {
		return false, kerr.ErrInvalidComparison.New(op, value)
	}
	switch op {
	case string(f.NumLT):
		return a < b, nil
	case string(f.NumLE):
		return a <= b, nil
	case string(f.NumGT):
		return a > b, nil
	case string(f.NumGE):
		return a >= b, nil
	}
	return false, kerr.ErrInvalidComparison.New(op, value)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func likeMatch(cell, value any) (bool, error) {
	pattern, ok := value.(string)
	if !ok {
		return false, kerr.ErrInvalidComparison.New("LIKE", value)
	}
	s, ok := cell.(string)
	if !ok {
		return false, nil
	}
	rewritten := strings.ReplaceAll(pattern, ".", `\.`)
	rewritten = strings.ReplaceAll(rewritten, "%", ".*?")
	re, err := regexp.Compile("^" + rewritten + "$")
	if err != nil {
		return false, kerr.ErrInvalidComparison.New("LIKE", value)
	}
	return re.MatchString(s), nil
}

func regexMatch(cell, value any) (bool, error) {
	pattern, ok := value.(string)
	if !ok {
		return false, kerr.ErrInvalidComparison.New("MATCHES", value)
	}
	s, ok := cell.(string)
	if !ok {
		return false, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, kerr.ErrInvalidComparison.New("MATCHES", value)
	}
	return re.MatchString(s), nil
}

func scalarKey(v any) string {
	return fmt.Sprintf("%v", v)
}

func tupleKey(tup []any) string {
	parts := make([]string, len(tup))
	for i, v := range tup {
		parts[i] = scalarKey(v)
	}
	return strings.Join(parts, "\x00")
}

func rowKey(row map[string]any, columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = scalarKey(row[c])
	}
	return strings.Join(parts, "\x00")
}
