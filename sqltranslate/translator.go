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

package sqltranslate

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	f "github.com/kestrel-lang/kestrel/ir/filter"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
	"github.com/kestrel-lang/kestrel/kerr"
	"github.com/kestrel-lang/kestrel/mapping"
)

var log = logrus.WithField("component", "sqltranslate")

// comp2func maps a filter operator to its rendered SQL text, grounded
// on `interface/codegen/sql.py`'s module-level `comp2func` dict. MATCHES
// and IN/NOT IN over a list value are rendered by dedicated code paths
// instead (regex needs dialect-specific syntax; list values need a
// tuple literal), so they are not listed here.
var comp2func = map[string]string{
	string(f.NumEQ): "=", string(f.NumNE): "<>",
	string(f.NumLT): "<", string(f.NumLE): "<=",
	string(f.NumGT): ">", string(f.NumGE): ">=",
	// StrEQ/StrNE have the same text as NumEQ/NumNE, so the entries
	// above cover them.
	string(f.StrLike): "LIKE", string(f.StrNotLike): "NOT LIKE",
}

// Options configures a Translator over a single from-object (a raw
// backend table or an already-OCSF CTE), grounded on SqlTranslator's
// constructor parameters.
type Options struct {
	// IsCTE marks fromObj as a previously-closed CTE name: already in
	// OCSF, needs no mapping or schema to project from.
	IsCTE bool
	// Schema lists the known native columns of a raw table, required to
	// resolve a ProjectEntity without a mapping (prefix-match fallback).
	Schema []string
	// ProjectionBaseField seeds projection_base_field, inherited from an
	// upstream translator when this one is opened over its CTE.
	ProjectionBaseField string
	// Mapping is the OCSF<->native schema mapping for this source, nil
	// for CTEs (already OCSF) and raw tables with no mapping file.
	Mapping *mapping.Mapping
	// Timestamp is the native timestamp column name, required to render
	// a Filter's time range.
	Timestamp string
	// Timefmt formats a time.Time into the literal the backend expects
	// for Timestamp comparisons; defaults to time.RFC3339.
	Timefmt func(time.Time) string
}

// Translator accumulates instructions into one SQL SELECT statement,
// rendering lazily at Result()/ResultWithLiteralBinds(), grounded on
// `interface/codegen/sql.py`'s SqlTranslator and `ossql.py`'s
// OpenSearchTranslator (both save-then-render-at-result()).
type Translator struct {
	dialect Dialect
	fromObj string
	opts    Options

	projectionBaseField string
	filter              *inst.Filter
	projectAttrs        []string
	limitN              int
	offsetN             int
	sortSet             bool
	sortAttr            string
	sortDir             inst.SortDirection
}

// New opens a Translator over fromObj (a raw table name, or a CTE name
// when opts.IsCTE is set).
func New(dialect Dialect, fromObj string, opts Options) *Translator {
	if opts.Timefmt == nil {
		opts.Timefmt = func(t time.Time) string { return t.UTC().Format(time.RFC3339) }
	}
	log.WithFields(logrus.Fields{"dialect": dialect.String(), "from": fromObj, "is_cte": opts.IsCTE}).Debug("opened translator")
	return &Translator{
		dialect:             dialect,
		fromObj:             fromObj,
		opts:                opts,
		projectionBaseField: opts.ProjectionBaseField,
	}
}

// AddFilter saves filt verbatim; rendered lazily at Result() (spec.md
// §4.F).
func (t *Translator) AddFilter(filt *inst.Filter) error {
	t.filter = filt
	return nil
}

// AddProjectAttrs sets the projected attribute list.
func (t *Translator) AddProjectAttrs(proj *inst.ProjectAttrs) error {
	t.projectAttrs = proj.Attrs
	return nil
}

// AddProjectEntity sets the OCSF base field every downstream attribute
// resolves against. A second entity projection in the same translator
// chain is rejected (spec.md §4.F, §3 invariant 6).
func (t *Translator) AddProjectEntity(proj *inst.ProjectEntity) error {
	if t.projectionBaseField != "" {
		return kerr.ErrDualEntityProjection.New()
	}
	t.projectionBaseField = proj.OCSFField
	return nil
}

// AddLimit sets the row cap.
func (t *Translator) AddLimit(lim *inst.Limit) error {
	t.limitN = lim.Num
	return nil
}

// AddOffset sets the row skip count.
func (t *Translator) AddOffset(off *inst.Offset) error {
	t.offsetN = off.Num
	return nil
}

// AddSort sets the order-by clause.
func (t *Translator) AddSort(sort *inst.Sort) error {
	t.sortSet = true
	t.sortAttr = sort.Attribute
	t.sortDir = sort.Direction
	return nil
}

// AddInstruction dispatches i to the matching Add* method by kind,
// grounded on `add_instruction`'s `getattr(self, f"add_{inst_name}")`
// dispatch.
func (t *Translator) AddInstruction(i inst.Instruction) error {
	switch n := i.(type) {
	case *inst.Filter:
		return t.AddFilter(n)
	case *inst.ProjectAttrs:
		return t.AddProjectAttrs(n)
	case *inst.ProjectEntity:
		return t.AddProjectEntity(n)
	case *inst.Limit:
		return t.AddLimit(n)
	case *inst.Offset:
		return t.AddOffset(n)
	case *inst.Sort:
		return t.AddSort(n)
	default:
		return kerr.ErrUnsupportedOperator.New(i.Kind(), t.dialect)
	}
}

// Clone returns an independent copy of t: further Add*/Result calls on
// either copy never affect the other. Used by the evaluator when a
// Variable's closed CTE translator is reused by more than one
// downstream consumer, so that one consumer's added instructions (e.g.
// its own Filter) cannot leak into another's rendering of the same
// Variable (a latent shared-mutability hazard in the translator this
// package is grounded on, where reusing a memoized translator reused
// the identical object).
func (t *Translator) Clone() *Translator {
	cp := *t
	cp.projectAttrs = append([]string(nil), t.projectAttrs...)
	cp.opts.Schema = append([]string(nil), t.opts.Schema...)
	return &cp
}

// Result renders the accumulated query as parameterized SQL: literal
// values are replaced with dialect placeholders, returned alongside the
// bind values in order (for execution through a backend connection).
func (t *Translator) Result() (string, []any, error) {
	var params []any
	sql, err := t.render(false, &params)
	if err != nil {
		log.WithError(err).Debug("render failed")
		return sql, params, err
	}
	log.WithField("params", len(params)).Debug("rendered query")
	return sql, params, nil
}

// ResultWithLiteralBinds renders the query with every value inlined as
// a SQL literal, for EXPLAIN/debug display; never used to execute
// against a backend (spec.md §4.F `result_with_literal_binds`).
func (t *Translator) ResultWithLiteralBinds() (string, error) {
	return t.render(true, nil)
}

func (t *Translator) render(literal bool, params *[]any) (string, error) {
	cols, err := t.selectColumns()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT DISTINCT ")
	b.WriteString(cols)
	b.WriteString(" FROM ")
	b.WriteString(t.renderFromObj())

	if t.filter != nil {
		where, err := t.renderFilter(t.filter, literal, params)
		if err != nil {
			return "", err
		}
		if where != "" {
			b.WriteString(" WHERE ")
			b.WriteString(where)
		}
	}

	if t.sortSet {
		dir := "ASC"
		if t.sortDir == inst.Desc {
			dir = "DESC"
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(t.dialect.quoteIdent(t.sortAttr))
		b.WriteString(" ")
		b.WriteString(dir)
	}

	b.WriteString(t.dialect.limitOffsetClause(t.limitN, t.offsetN))

	return b.String(), nil
}

func (t *Translator) renderFromObj() string {
	if t.opts.IsCTE {
		return t.fromObj
	}
	return t.dialect.quoteIdent(t.fromObj)
}

// selectColumns composes the final select list (spec.md §4.F `result()`):
// a raw backend table with a mapping resolves OCSF attrs to native
// columns aliased back to OCSF; a raw table with no mapping falls back
// to a `base.` prefix match against the known schema; a CTE/subquery
// (already OCSF) selects either the projected attrs or `*`.
func (t *Translator) selectColumns() (string, error) {
	if t.projectionBaseField == "" {
		if len(t.projectAttrs) == 0 {
			return "*", nil
		}
		return t.quotedList(t.projectAttrs), nil
	}

	if t.opts.Mapping != nil {
		var attrs []string
		if len(t.projectAttrs) > 0 {
			attrs = t.projectAttrs
		}
		pairs := t.opts.Mapping.TranslateProjectionToNative(t.projectionBaseField, attrs)
		if len(pairs) == 0 {
			return "", kerr.ErrSourceSchemaNotFound.New("no mapped columns under " + t.projectionBaseField)
		}
		parts := make([]string, len(pairs))
		for i, p := range pairs {
			parts[i] = t.dialect.quoteIdent(p.NativeColumn) + " AS " + t.dialect.quoteIdent(p.Alias)
		}
		return strings.Join(parts, ", "), nil
	}

	if len(t.opts.Schema) == 0 {
		return "", kerr.ErrSourceSchemaNotFound.New("<not yet rendered>")
	}
	prefix := t.projectionBaseField + "."
	var parts []string
	for _, col := range t.opts.Schema {
		if strings.HasPrefix(col, prefix) {
			alias := col[len(prefix):]
			parts = append(parts, t.dialect.quoteIdent(col)+" AS "+t.dialect.quoteIdent(alias))
		}
	}
	if len(parts) == 0 {
		return "", kerr.ErrSourceSchemaNotFound.New("no columns under " + t.projectionBaseField)
	}
	return strings.Join(parts, ", "), nil
}

func (t *Translator) quotedList(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = t.dialect.quoteIdent(c)
	}
	return strings.Join(parts, ", ")
}

// renderFilter wraps the filter's timerange (if any) around its
// expression tree and renders the result, grounded on
// `filter_to_selection`.
func (t *Translator) renderFilter(filt *inst.Filter, literal bool, params *[]any) (string, error) {
	exp := filt.Exp
	if !filt.TimeRange.IsZero() {
		start, ok1 := filt.TimeRange.Start.(time.Time)
		stop, ok2 := filt.TimeRange.Stop.(time.Time)
		if ok1 && ok2 {
			if t.opts.Timestamp == "" {
				return "", kerr.ErrSourceSchemaNotFound.New("no timestamp column configured for time range filter")
			}
			startComp := &f.StrComparison{Field: t.opts.Timestamp, Op: f.StrCompOp(">="), Value: t.opts.Timefmt(start)}
			stopComp := &f.StrComparison{Field: t.opts.Timestamp, Op: f.StrCompOp("<"), Value: t.opts.Timefmt(stop)}
			timeExp := &f.BoolExp{LHS: startComp, Op: f.And, RHS: stopComp}
			exp = &f.BoolExp{LHS: exp, Op: f.And, RHS: timeExp}
		}
	}
	return t.renderExpression(exp, literal, params)
}

func (t *Translator) renderExpression(exp f.Expression, literal bool, params *[]any) (string, error) {
	switch e := exp.(type) {
	case nil, f.AbsoluteTrue:
		return "1=1", nil
	case *f.BoolExp:
		lhs, err := t.renderExpression(e.LHS, literal, params)
		if err != nil {
			return "", err
		}
		rhs, err := t.renderExpression(e.RHS, literal, params)
		if err != nil {
			return "", err
		}
		conj := " AND "
		if e.Op == f.Or {
			conj = " OR "
		}
		return "(" + lhs + conj + rhs + ")", nil
	case *f.MultiComp:
		parts := make([]string, len(e.Comps))
		for i, c := range e.Comps {
			p, err := t.renderComparison(c, literal, params)
			if err != nil {
				return "", err
			}
			parts[i] = p
		}
		conj := " AND "
		if e.Op == f.Or {
			conj = " OR "
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "(" + strings.Join(parts, conj) + ")", nil
	case f.BasicComparison:
		return t.renderComparison(e, literal, params)
	default:
		return "", kerr.ErrInvalidComparison.New("<unknown>", exp)
	}
}

// renderComparison renders one leaf comparison, grounded on `_render_comp`:
// a RefComparison is never translated through the mapping (its subquery
// already produces matching columns); any other comparison is lowered
// to native via the mapping first when one is configured, producing
// possibly several OR-joined predicates (spec.md §4.F step 3).
func (t *Translator) renderComparison(c f.BasicComparison, literal bool, params *[]any) (string, error) {
	if rc, ok := c.(*f.RefComparison); ok {
		return t.renderRefComparison(rc, literal, params)
	}

	if t.opts.Mapping == nil {
		return t.renderBasic(f.Field(c), f.Op(c), f.Value(c), literal, params)
	}

	triples, err := t.opts.Mapping.TranslateComparisonToNative(f.Field(c), f.Op(c), f.Value(c))
	if err != nil {
		return "", err
	}
	parts := make([]string, len(triples))
	for i, tr := range triples {
		p, err := t.renderBasic(tr.Field, tr.Op, tr.Value, literal, params)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}

func (t *Translator) renderBasic(field, op string, value any, literal bool, params *[]any) (string, error) {
	col := t.dialect.quoteIdent(field)

	switch op {
	case string(f.StrMatches), string(f.StrNMatches):
		opener, closer := t.dialect.regexOp(col, op == string(f.StrNMatches))
		val, err := t.renderValue(value, literal, params)
		if err != nil {
			return "", err
		}
		return opener + val + closer, nil
	case string(f.ListIn), string(f.ListNotIn):
		return t.renderInList(col, op == string(f.ListNotIn), value, literal, params)
	}

	sqlOp, ok := comp2func[op]
	if !ok {
		return "", kerr.ErrUnsupportedOperator.New(op, t.dialect)
	}
	val, err := t.renderValue(value, literal, params)
	if err != nil {
		return "", err
	}
	return col + " " + sqlOp + " " + val, nil
}

func (t *Translator) renderInList(col string, not bool, value any, literal bool, params *[]any) (string, error) {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	rendered := make([]string, len(items))
	for i, v := range items {
		val, err := t.renderValue(v, literal, params)
		if err != nil {
			return "", err
		}
		rendered[i] = val
	}
	op := "IN"
	if not {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", col, op, strings.Join(rendered, ", ")), nil
}

// renderRefComparison renders a filter comparison whose value is a
// subquery handle: a raw SELECT string (planned by the evaluator,
// inlined directly) or a literal slice of already-resolved values.
// Never translated through the mapping (spec.md §4.F step 4).
func (t *Translator) renderRefComparison(rc *f.RefComparison, literal bool, params *[]any) (string, error) {
	var colExpr string
	if len(rc.Fields) == 1 {
		colExpr = t.dialect.quoteIdent(rc.Fields[0])
	} else {
		quoted := make([]string, len(rc.Fields))
		for i, field := range rc.Fields {
			quoted[i] = t.dialect.quoteIdent(field)
		}
		colExpr = "(" + strings.Join(quoted, ", ") + ")"
	}

	op := "IN"
	if rc.Op == f.ListNotIn {
		op = "NOT IN"
	}

	switch v := rc.Value.(type) {
	case string:
		// An already-planned SELECT subquery, inlined verbatim.
		return colExpr + " " + op + " (" + v + ")", nil
	case []any:
		return t.renderInList(colExpr, rc.Op == f.ListNotIn, v, literal, params)
	case f.ReferenceValue:
		return "", kerr.ErrUnresolvedReference.New(v.Variable)
	default:
		return "", kerr.ErrMismatchedFieldValueArity.New(len(rc.Fields), 0)
	}
}

// renderValue renders a scalar value either as a dialect placeholder
// (appending to params) or as an inline SQL literal (ResultWithLiteralBinds).
func (t *Translator) renderValue(value any, literal bool, params *[]any) (string, error) {
	if !literal {
		*params = append(*params, value)
		return t.dialect.placeholder(len(*params)), nil
	}
	return formatLiteral(value)
}

// formatLiteral renders value as an inline SQL literal: strings single-quoted
// (with embedded quotes doubled), numbers/bools as-is, nil as NULL.
func formatLiteral(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case float64:
		return fmt.Sprintf("%v", v), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}
