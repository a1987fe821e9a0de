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

// Package frontend parses Kestrel statement blocks and lowers them
// directly into an IR graph (spec.md §4.D, §6), grounded on
// `original_source/.../frontend/compile.py`'s `_KestrelT` Transformer:
// where the original pairs a Lark LALR grammar with a separate
// tree-transformer pass, this package folds parsing and lowering into
// one hand-written recursive-descent pass over a flat token stream —
// idiomatic for a grammar this size, and the style the teacher itself
// uses for SQL fragments too small to warrant a generated parser.
package frontend

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	f "github.com/kestrel-lang/kestrel/ir/filter"
	g "github.com/kestrel-lang/kestrel/ir/graph"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
	"github.com/kestrel-lang/kestrel/kerr"
	"github.com/kestrel-lang/kestrel/mapping"
)

var log = logrus.WithField("component", "frontend")

const defaultVariable = "_"

// Options bundles everything a parse needs beyond the source text
// itself: the loaded schema mapping, the native->OCSF entity type
// table, and the FIND relation table (spec.md §4.D, §4.E).
type Options struct {
	Mapping           *mapping.Mapping
	TypeMap           map[string]string // native entity type -> OCSF entity type
	Relations         RelationTable
	EntityIdentifiers map[string][]string // OCSF entity type -> identifier attribute paths
}

type varInfo struct {
	entityType string
	nativeType string
}

// Parse lowers a full Kestrel statement block into one composed IR
// graph, mirroring `_KestrelT.start`'s `reduce(compose, args, IRGraph())`
// but composing incrementally, statement by statement, so each
// statement's lowering can resolve variables defined earlier in the same
// block (matching the sequential order Lark visits them in anyway).
func Parse(source string, opts Options) (*g.Graph, error) {
	lx := newLexer(source)
	toks, err := lx.tokenize()
	if err != nil {
		log.WithError(err).Debug("lex error")
		return nil, err
	}

	stmts := splitStatements(toks)
	log.WithField("statements", len(stmts)).Debug("parsing statement block")
	p := &parser{opts: opts, variables: map[string]varInfo{}, acc: g.New()}
	for i, stmt := range stmts {
		if len(stmt) == 0 {
			continue
		}
		sp := &stmtParser{parser: p, toks: stmt}
		if err := sp.parseStatement(); err != nil {
			log.WithField("statement", i).WithError(err).Debug("parse error")
			return nil, err
		}
	}
	return p.acc, nil
}

func splitStatements(toks []token) [][]token {
	var stmts [][]token
	var cur []token
	for _, t := range toks {
		if t.kind == tokNewline || t.kind == tokEOF {
			if len(cur) > 0 {
				stmts = append(stmts, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		stmts = append(stmts, cur)
	}
	return stmts
}

type parser struct {
	opts      Options
	variables map[string]varInfo
	acc       *g.Graph
}

// compose merges local onto the accumulated graph, matching
// `kestrel.ir.graph.compose` (adapted in ir/graph/compose.go).
func (p *parser) compose(local *g.Graph) {
	p.acc = g.Compose(p.acc, local)
}

type stmtParser struct {
	*parser
	toks []token
	pos  int
}

func (sp *stmtParser) cur() token {
	if sp.pos >= len(sp.toks) {
		return token{kind: tokEOF}
	}
	return sp.toks[sp.pos]
}

func (sp *stmtParser) peekAt(off int) token {
	if sp.pos+off >= len(sp.toks) {
		return token{kind: tokEOF}
	}
	return sp.toks[sp.pos+off]
}

func (sp *stmtParser) advance() token {
	t := sp.cur()
	if sp.pos < len(sp.toks) {
		sp.pos++
	}
	return t
}

func (sp *stmtParser) expect(k kind, what string) (token, error) {
	if sp.cur().kind != k {
		return token{}, kerr.ErrParse.New("expected " + what + " at line " + strconv.Itoa(sp.cur().line))
	}
	return sp.advance(), nil
}

func (sp *stmtParser) atEnd() bool { return sp.pos >= len(sp.toks) }

// parseStatement dispatches on the leading token, mirroring the grammar
// alternatives of spec.md §6.
func (sp *stmtParser) parseStatement() error {
	switch sp.cur().kind {
	case tokDISP:
		return sp.parseDisp()
	case tokEXPLAIN:
		return sp.parseExplain()
	case tokAPPLY:
		return sp.parseApply()
	case tokFIND:
		return sp.parseFindStatement()
	case tokIdent:
		if sp.peekAt(1).kind == tokEq {
			return sp.parseAssignment()
		}
	}
	return kerr.ErrParse.New("unrecognized statement starting with %q at line %d", sp.cur().text, sp.cur().line)
}

// parseAssignment handles `VAR = <rhs>` where rhs is NEW, a datasource
// GET, a reference WHERE-clause, or FIND (`assignment`/`expression` in
// the original).
func (sp *stmtParser) parseAssignment() error {
	name, err := sp.expect(tokIdent, "variable name")
	if err != nil {
		return err
	}
	if _, err := sp.expect(tokEq, "'='"); err != nil {
		return err
	}

	local, root, err := sp.parseRHS()
	if err != nil {
		return err
	}

	entityType, nativeType := getTypeFromPredecessors(local, sp.opts.TypeMap, root)
	v := inst.NewVariable(name.text, entityType, nativeType)
	local.AddNode(v, root)
	sp.variables[name.text] = varInfo{entityType: entityType, nativeType: nativeType}
	sp.compose(local)
	return nil
}

// parseRHS parses the right-hand side of an assignment, returning the
// local graph it built and the current root (trunk tip) node.
func (sp *stmtParser) parseRHS() (*g.Graph, inst.Instruction, error) {
	switch sp.cur().kind {
	case tokNEW:
		return sp.parseNew()
	case tokFIND:
		return sp.parseFind()
	case tokIdent:
		return sp.parseSourceOrReference()
	}
	return nil, nil, kerr.ErrParse.New("expected assignment right-hand side at line %d", sp.cur().line)
}

// parseNew handles `NEW <entity> [ <json-row>, ... ]`.
func (sp *stmtParser) parseNew() (*g.Graph, inst.Instruction, error) {
	sp.advance() // NEW
	entityType := ""
	if sp.cur().kind == tokIdent {
		entityType = sp.advance().text
	}
	rows, columns, err := sp.parseJSONRows()
	if err != nil {
		return nil, nil, err
	}
	local := g.New()
	node := inst.NewConstructOrdered(entityType, rows, columns)
	local.AddNode(node, nil)
	return local, node, nil
}

// parseSourceOrReference distinguishes `<entity> FROM scheme://src
// WHERE ...` from `var WHERE ...` by looking for FROM after the leading
// identifier.
func (sp *stmtParser) parseSourceOrReference() (*g.Graph, inst.Instruction, error) {
	if sp.peekAt(1).kind == tokFROM {
		return sp.parseGet()
	}
	return sp.parseReferenceWhere()
}

// parseGet handles `<entity> FROM <scheme>://<source> WHERE <exp>
// [<timespan>] [LIMIT n]`, grounded on `_KestrelT.get`.
func (sp *stmtParser) parseGet() (*g.Graph, inst.Instruction, error) {
	nativeProjectionField := sp.advance().text // entity
	if _, err := sp.expect(tokFROM, "'FROM'"); err != nil {
		return nil, nil, err
	}
	dsName, err := sp.parseDataSourceURI()
	if err != nil {
		return nil, nil, err
	}

	var exp f.Expression = f.AbsoluteTrue{}
	if sp.cur().kind == tokWHERE {
		sp.advance()
		exp, err = sp.parseExpr()
		if err != nil {
			return nil, nil, err
		}
	}

	ocsfProjectionField := ""
	if sp.opts.Mapping != nil {
		ocsfProjectionField = sp.opts.Mapping.TranslateEntityProjectionToOCSF(nativeProjectionField)
	} else {
		ocsfProjectionField = nativeProjectionField
	}

	if sp.opts.Mapping != nil {
		exp = mapFilterExp(nativeProjectionField, ocsfProjectionField, exp, sp.opts.Mapping)
	}

	filt := inst.NewFilter(exp)

	local := g.New()
	source := local.AddNode(inst.NewDataSource(dsName), nil)
	filtNode := local.AddNode(filt, source)
	addReferenceBranchesForFilter(local, filt)

	proj := local.AddNode(inst.NewProjectEntity(ocsfProjectionField, nativeProjectionField), filtNode)
	root := proj

	for !sp.atEnd() {
		switch sp.cur().kind {
		case tokLAST, tokSTART:
			tr, err := sp.parseTimespan()
			if err != nil {
				return nil, nil, err
			}
			filt.TimeRange = tr
		case tokLIMIT:
			n, err := sp.parseLimitClause()
			if err != nil {
				return nil, nil, err
			}
			root = local.AddNode(n, root)
		default:
			return nil, nil, kerr.ErrParse.New("unexpected token %q after projection at line %d", sp.cur().text, sp.cur().line)
		}
	}
	return local, root, nil
}

// parseReferenceWhere handles `VAR2 = VAR WHERE <exp>`.
func (sp *stmtParser) parseReferenceWhere() (*g.Graph, inst.Instruction, error) {
	refName := sp.advance().text
	local := g.New()
	ref := local.AddNode(inst.NewReference(refName), nil)
	root := ref
	if sp.cur().kind == tokWHERE {
		sp.advance()
		exp, err := sp.parseExpr()
		if err != nil {
			return nil, nil, err
		}
		filt := inst.NewFilter(exp)
		filtNode := local.AddNode(filt, root)
		addReferenceBranchesForFilter(local, filt)
		root = filtNode
	}
	return local, root, nil
}

// parseFind is the RHS form of FIND, usable on the right of an
// assignment (spec.md §4.D supplemental feature).
func (sp *stmtParser) parseFind() (*g.Graph, inst.Instruction, error) {
	return sp.parseFindCore()
}

// parseFindStatement parses a standalone `FIND ... VAR` statement that
// is not itself assigned; by spec.md convention this assigns the
// default variable name "_" (mirroring the teacher's treatment of an
// implicit display target and the grammar's `DEFAULT_VARIABLE`).
func (sp *stmtParser) parseFindStatement() error {
	local, root, err := sp.parseFindCore()
	if err != nil {
		return err
	}
	entityType, nativeType := getTypeFromPredecessors(local, sp.opts.TypeMap, root)
	v := inst.NewVariable(defaultVariable, entityType, nativeType)
	local.AddNode(v, root)
	sp.variables[defaultVariable] = varInfo{entityType: entityType, nativeType: nativeType}
	sp.compose(local)
	return nil
}

// parseFindCore implements `FIND <entity> <relation> [REVERSED] VAR
// [WHERE <exp>] [<timespan>] [LIMIT n]`: it looks up the join attributes
// for (origin-native-type, relation) in the relation table and builds a
// RefComparison filter over them against the referenced variable's
// identifier attributes, then projects to the target entity. Grounded on
// `_KestrelT.find`, completing what the original left unfinished
// (spec.md §4.D).
func (sp *stmtParser) parseFindCore() (*g.Graph, inst.Instruction, error) {
	sp.advance() // FIND
	targetEntityNative, err := sp.expect(tokIdent, "entity type")
	if err != nil {
		return nil, nil, err
	}
	relName, err := sp.expect(tokIdent, "relation name")
	if err != nil {
		return nil, nil, err
	}
	reversed := false
	if sp.cur().kind == tokREVERSED {
		sp.advance()
		reversed = true
	}
	varTok, err := sp.expect(tokIdent, "variable reference")
	if err != nil {
		return nil, nil, err
	}
	varName := varTok.text

	origin, ok := sp.variables[varName]
	if !ok {
		return nil, nil, kerr.ErrUnresolvedReference.New(varName)
	}

	rel, found := sp.opts.Relations.Lookup(origin.nativeType, relName.text)
	if !found {
		// Try the reverse direction: the relation may be registered from
		// the target entity's perspective.
		rel, found = sp.opts.Relations.Lookup(targetEntityNative.text, relName.text)
		if found {
			reversed = !reversed
		}
	}
	if !found {
		return nil, nil, kerr.ErrSourceNotFound.New("no relation %q between %q and %q", relName.text, origin.nativeType, targetEntityNative.text)
	}

	joinFrom, joinTo := rel.JoinFrom, rel.JoinTo
	if reversed {
		joinFrom, joinTo = joinTo, joinFrom
	}

	var exp f.Expression = &f.RefComparison{
		Fields: joinTo,
		Op:     f.ListIn,
		Value:  f.ReferenceValue{Variable: varName, Attributes: joinFrom},
	}
	if sp.cur().kind == tokWHERE {
		sp.advance()
		userExp, err := sp.parseExpr()
		if err != nil {
			return nil, nil, err
		}
		exp = &f.BoolExp{LHS: exp, Op: f.And, RHS: userExp}
	}

	ocsfEntity := targetEntityNative.text
	if sp.opts.Mapping != nil {
		ocsfEntity = sp.opts.Mapping.TranslateEntityProjectionToOCSF(targetEntityNative.text)
		exp = mapFilterExp(targetEntityNative.text, ocsfEntity, exp, sp.opts.Mapping)
	}

	local := g.New()
	source := local.AddNode(inst.NewDataSource(rel.TargetNativeType), nil)
	filt := inst.NewFilter(exp)
	filtNode := local.AddNode(filt, source)
	addReferenceBranchesForFilter(local, filt)
	proj := local.AddNode(inst.NewProjectEntity(ocsfEntity, targetEntityNative.text), filtNode)
	root := proj

	for !sp.atEnd() {
		switch sp.cur().kind {
		case tokLAST, tokSTART:
			tr, err := sp.parseTimespan()
			if err != nil {
				return nil, nil, err
			}
			filt.TimeRange = tr
		case tokLIMIT:
			n, err := sp.parseLimitClause()
			if err != nil {
				return nil, nil, err
			}
			root = local.AddNode(n, root)
		default:
			return nil, nil, kerr.ErrParse.New("unexpected token %q in FIND at line %d", sp.cur().text, sp.cur().line)
		}
	}
	return local, root, nil
}

// parseApply handles the standalone `APPLY <scheme>://<analytic> ON VAR
// [WITH k=v, ...]` statement, which rebinds VAR in place (grounded on
// `_KestrelT.apply`).
func (sp *stmtParser) parseApply() error {
	sp.advance() // APPLY
	scheme, analyticName, err := sp.parseSchemeURI()
	if err != nil {
		return err
	}
	if _, err := sp.expect(tokON, "'ON'"); err != nil {
		return err
	}
	varTok, err := sp.expect(tokIdent, "variable reference")
	if err != nil {
		return err
	}
	varName := varTok.text

	params := map[string]any{}
	if sp.cur().kind == tokWITH {
		sp.advance()
		params, err = sp.parseWithParams()
		if err != nil {
			return err
		}
	}

	origin, ok := sp.variables[varName]
	if !ok {
		return kerr.ErrUnresolvedReference.New(varName)
	}

	local := g.New()
	refVar := local.AddNode(inst.NewReference(varName), nil)
	analytic := local.AddNode(inst.NewAnalytic(scheme, analyticName, params), refVar)
	local.AddNode(inst.NewVariable(varName, origin.entityType, origin.nativeType), analytic)
	sp.variables[varName] = origin
	sp.compose(local)
	return nil
}

// parseDisp handles `DISP VAR [ATTR a, b, …] [LIMIT n]`.
func (sp *stmtParser) parseDisp() error {
	sp.advance() // DISP
	varTok, err := sp.expect(tokIdent, "variable reference")
	if err != nil {
		return err
	}
	varName := varTok.text
	origin, ok := sp.variables[varName]
	if !ok {
		return kerr.ErrUnresolvedReference.New(varName)
	}

	local := g.New()
	root := local.AddNode(inst.NewReference(varName), nil)

	for !sp.atEnd() {
		switch sp.cur().kind {
		case tokATTR:
			sp.advance()
			attrs, err := sp.parseAttrList()
			if err != nil {
				return err
			}
			if sp.opts.Mapping != nil {
				attrs = sp.opts.Mapping.TranslateAttrsProjectionToOCSF(origin.nativeType, origin.entityType, attrs)
			}
			root = local.AddNode(inst.NewProjectAttrs(attrs), root)
		case tokLIMIT:
			n, err := sp.parseLimitClause()
			if err != nil {
				return err
			}
			root = local.AddNode(n, root)
		default:
			return kerr.ErrParse.New("unexpected token %q in DISP at line %d", sp.cur().text, sp.cur().line)
		}
	}

	local.AddNode(inst.NewReturn(), root)
	sp.compose(local)
	return nil
}

// parseExplain handles `EXPLAIN VAR`.
func (sp *stmtParser) parseExplain() error {
	sp.advance() // EXPLAIN
	varTok, err := sp.expect(tokIdent, "variable reference")
	if err != nil {
		return err
	}
	local := g.New()
	ref := local.AddNode(inst.NewReference(varTok.text), nil)
	explain := local.AddNode(inst.NewExplain(), ref)
	local.AddNode(inst.NewReturn(), explain)
	sp.compose(local)
	return nil
}

// parseAttrList parses a comma-separated attribute list up to (but not
// including) the next clause keyword.
func (sp *stmtParser) parseAttrList() ([]string, error) {
	var attrs []string
	for {
		t, err := sp.expect(tokIdent, "attribute name")
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, t.text)
		if sp.cur().kind == tokComma {
			sp.advance()
			continue
		}
		break
	}
	return attrs, nil
}

// parseLimitClause parses `LIMIT n`.
func (sp *stmtParser) parseLimitClause() (*inst.Limit, error) {
	sp.advance() // LIMIT
	t, err := sp.expect(tokNumber, "limit count")
	if err != nil {
		return nil, err
	}
	n, convErr := strconv.Atoi(t.text)
	if convErr != nil {
		return nil, kerr.ErrParse.New("invalid LIMIT value %q at line %d", t.text, t.line)
	}
	return inst.NewLimit(n), nil
}

// parseTimespan parses `LAST n {DAY|HOUR|MINUTE|SECOND}` or `START t1
// STOP t2`, grounded on `timespan_relative`/`timespan_absolute`.
func (sp *stmtParser) parseTimespan() (f.TimeRange, error) {
	if sp.cur().kind == tokLAST {
		sp.advance()
		nTok, err := sp.expect(tokNumber, "timespan count")
		if err != nil {
			return f.TimeRange{}, err
		}
		n, convErr := strconv.Atoi(nTok.text)
		if convErr != nil {
			return f.TimeRange{}, kerr.ErrParse.New("invalid timespan count %q at line %d", nTok.text, nTok.line)
		}
		var dur time.Duration
		switch sp.cur().kind {
		case tokDAY:
			dur = time.Duration(n) * 24 * time.Hour
		case tokHOUR:
			dur = time.Duration(n) * time.Hour
		case tokMINUTE:
			dur = time.Duration(n) * time.Minute
		case tokSECOND:
			dur = time.Duration(n) * time.Second
		default:
			return f.TimeRange{}, kerr.ErrParse.New("expected time unit at line %d", sp.cur().line)
		}
		sp.advance()
		stop := time.Now().UTC()
		start := stop.Add(-dur)
		return f.TimeRange{Start: start, Stop: stop}, nil
	}

	if _, err := sp.expect(tokSTART, "'START'"); err != nil {
		return f.TimeRange{}, err
	}
	start, err := sp.parseTimestamp()
	if err != nil {
		return f.TimeRange{}, err
	}
	if _, err := sp.expect(tokSTOP, "'STOP'"); err != nil {
		return f.TimeRange{}, err
	}
	stop, err := sp.parseTimestamp()
	if err != nil {
		return f.TimeRange{}, err
	}
	return f.TimeRange{Start: start, Stop: stop}, nil
}

func (sp *stmtParser) parseTimestamp() (time.Time, error) {
	t := sp.advance()
	if t.kind != tokString && t.kind != tokIdent {
		return time.Time{}, kerr.ErrParse.New("expected ISO-8601 timestamp at line %d", t.line)
	}
	ts, err := time.Parse(time.RFC3339, t.text)
	if err != nil {
		return time.Time{}, kerr.ErrParse.New("invalid timestamp %q: %s", t.text, err.Error())
	}
	return ts, nil
}

// parseDataSourceURI parses `<scheme>://<source>` as a single opaque
// connection name, matching `datasource`'s plain-token handling.
func (sp *stmtParser) parseDataSourceURI() (string, error) {
	var b strings.Builder
	for !sp.atEnd() {
		switch sp.cur().kind {
		case tokWHERE, tokLAST, tokSTART, tokLIMIT:
			return b.String(), nil
		case tokIdent, tokColon, tokSlashSlash, tokDot, tokNumber:
			b.WriteString(sp.advance().text)
		default:
			return b.String(), nil
		}
	}
	return b.String(), nil
}

// parseSchemeURI parses `<scheme>://<analytic>` into its two halves,
// grounded on `analytics_uri`.
func (sp *stmtParser) parseSchemeURI() (scheme, name string, err error) {
	uri, err := sp.parseDataSourceURI()
	if err != nil {
		return "", "", err
	}
	parts := strings.SplitN(uri, "://", 2)
	if len(parts) != 2 {
		return "", "", kerr.ErrParse.New("expected scheme://name URI, got %q", uri)
	}
	return parts[0], parts[1], nil
}

// parseWithParams parses a comma-separated `k=v, ...` parameter list,
// grounded on `arg_kv_pair`/`args`.
func (sp *stmtParser) parseWithParams() (map[string]any, error) {
	out := map[string]any{}
	for {
		nameTok, err := sp.expect(tokIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := sp.expect(tokEq, "'='"); err != nil {
			return nil, err
		}
		val, err := sp.parseScalarLiteral()
		if err != nil {
			return nil, err
		}
		out[nameTok.text] = val
		if sp.cur().kind == tokComma {
			sp.advance()
			continue
		}
		break
	}
	return out, nil
}

// parseJSONRows parses `[ {k: v, ...}, ... ]` for NEW, returning the
// rows alongside the union of their keys in first-seen declaration
// order. That order, not a map's iteration order, is what callers must
// use for a Construct's column order (spec.md §8 Testable Scenario 1
// expects deterministic `{name, pid}` ordering matching source text).
func (sp *stmtParser) parseJSONRows() ([]map[string]any, []string, error) {
	if _, err := sp.expect(tokLBracket, "'['"); err != nil {
		return nil, nil, err
	}
	var rows []map[string]any
	var columns []string
	seen := map[string]bool{}
	for sp.cur().kind != tokRBracket {
		row, keys, err := sp.parseJSONObj()
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
		if sp.cur().kind == tokComma {
			sp.advance()
			continue
		}
		break
	}
	if _, err := sp.expect(tokRBracket, "']'"); err != nil {
		return nil, nil, err
	}
	return rows, columns, nil
}

// parseJSONObj parses one `{k: v, ...}` object, returning both the
// value map and its keys in the order they appeared in the source text.
func (sp *stmtParser) parseJSONObj() (map[string]any, []string, error) {
	if _, err := sp.expect(tokLBrace, "'{'"); err != nil {
		return nil, nil, err
	}
	obj := map[string]any{}
	var keys []string
	for sp.cur().kind != tokRBrace {
		keyTok := sp.advance()
		key := keyTok.text
		if _, err := sp.expect(tokColon, "':'"); err != nil {
			return nil, nil, err
		}
		val, err := sp.parseScalarLiteral()
		if err != nil {
			return nil, nil, err
		}
		obj[key] = val
		keys = append(keys, key)
		if sp.cur().kind == tokComma {
			sp.advance()
			continue
		}
		break
	}
	if _, err := sp.expect(tokRBrace, "'}'"); err != nil {
		return nil, nil, err
	}
	return obj, keys, nil
}

// parseScalarLiteral parses a number, string, true/false/null literal.
func (sp *stmtParser) parseScalarLiteral() (any, error) {
	t := sp.advance()
	switch t.kind {
	case tokNumber:
		return parseNumber(t.text)
	case tokString:
		return t.text, nil
	case tokRawString:
		return t.text, nil
	case tokTRUE:
		return true, nil
	case tokFALSE:
		return false, nil
	case tokNULL:
		return nil, nil
	case tokLBracket:
		sp.pos--
		return sp.parseLiteralList()
	}
	return nil, kerr.ErrParse.New("expected a literal value at line %d, got %q", t.line, t.text)
}

func (sp *stmtParser) parseLiteralList() ([]any, error) {
	if _, err := sp.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	var out []any
	for sp.cur().kind != tokRBracket {
		v, err := sp.parseScalarLiteral()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if sp.cur().kind == tokComma {
			sp.advance()
			continue
		}
		break
	}
	if _, err := sp.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return out, nil
}

func parseNumber(text string) (any, error) {
	if strings.Contains(text, ".") {
		return strconv.ParseFloat(text, 64)
	}
	return strconv.Atoi(text)
}
