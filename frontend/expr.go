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

import (
	f "github.com/kestrel-lang/kestrel/ir/filter"
	"github.com/kestrel-lang/kestrel/kerr"
)

// parseExpr parses a WHERE-clause boolean expression:
//
//	expr    := orTerm (OR orTerm)*
//	orTerm  := andTerm (AND andTerm)*
//	andTerm := '(' expr ')' | comparison
//
// grounded on `expression_or`/`expression_and`/`comparison_std`.
func (sp *stmtParser) parseExpr() (f.Expression, error) {
	lhs, err := sp.parseAndTerm()
	if err != nil {
		return nil, err
	}
	for sp.cur().kind == tokOR {
		sp.advance()
		rhs, err := sp.parseAndTerm()
		if err != nil {
			return nil, err
		}
		lhs = &f.BoolExp{LHS: lhs, Op: f.Or, RHS: rhs}
	}
	return lhs, nil
}

func (sp *stmtParser) parseAndTerm() (f.Expression, error) {
	lhs, err := sp.parseUnary()
	if err != nil {
		return nil, err
	}
	for sp.cur().kind == tokAND {
		sp.advance()
		rhs, err := sp.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &f.BoolExp{LHS: lhs, Op: f.And, RHS: rhs}
	}
	return lhs, nil
}

func (sp *stmtParser) parseUnary() (f.Expression, error) {
	if sp.cur().kind == tokLParen {
		sp.advance()
		e, err := sp.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := sp.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	}
	return sp.parseComparison()
}

// parseComparison parses `field op value`, grounded on `comparison_std`.
func (sp *stmtParser) parseComparison() (f.Expression, error) {
	field, err := sp.parseDottedField()
	if err != nil {
		return nil, err
	}
	op, err := sp.parseOp()
	if err != nil {
		return nil, err
	}
	value, err := sp.parseComparisonValue()
	if err != nil {
		return nil, err
	}
	return createComp(field, op, value), nil
}

func (sp *stmtParser) parseDottedField() (string, error) {
	t, err := sp.expect(tokIdent, "field name")
	if err != nil {
		return "", err
	}
	field := t.text
	for sp.cur().kind == tokDot && sp.peekAt(1).kind == tokIdent {
		sp.advance()
		next, _ := sp.expect(tokIdent, "field name segment")
		field += "." + next.text
	}
	return field, nil
}

// parseOp parses a comparison operator, including the two-keyword forms
// `NOT IN`, `NOT LIKE`, `NOT MATCHES`.
func (sp *stmtParser) parseOp() (string, error) {
	if sp.cur().kind == tokNOT {
		sp.advance()
		switch sp.cur().kind {
		case tokIN:
			sp.advance()
			return string(f.ListNotIn), nil
		case tokLIKE:
			sp.advance()
			return string(f.StrNotLike), nil
		case tokMATCHES:
			sp.advance()
			return string(f.StrNMatches), nil
		}
		return "", kerr.ErrParse.New("expected IN/LIKE/MATCHES after NOT at line %d", sp.cur().line)
	}
	switch sp.cur().kind {
	case tokEq:
		sp.advance()
		return string(f.StrEQ), nil
	case tokNe:
		sp.advance()
		return string(f.StrNE), nil
	case tokLt:
		sp.advance()
		return string(f.NumLT), nil
	case tokLe:
		sp.advance()
		return string(f.NumLE), nil
	case tokGt:
		sp.advance()
		return string(f.NumGT), nil
	case tokGe:
		sp.advance()
		return string(f.NumGE), nil
	case tokIN:
		sp.advance()
		return string(f.ListIn), nil
	case tokLIKE:
		sp.advance()
		return string(f.StrLike), nil
	case tokMATCHES:
		sp.advance()
		return string(f.StrMatches), nil
	}
	return "", kerr.ErrParse.New("expected comparison operator at line %d, got %q", sp.cur().line, sp.cur().text)
}

// parseComparisonValue parses the right-hand side of a comparison:
// number, string, literal list, or a variable reference written as
// `var.attr` or `var:attr` (grounded on `reference_or_simple_string`).
func (sp *stmtParser) parseComparisonValue() (any, error) {
	if sp.cur().kind == tokLBracket {
		return sp.parseLiteralList()
	}
	if sp.cur().kind == tokIdent && (sp.peekAt(1).kind == tokDot || sp.peekAt(1).kind == tokColon) && sp.peekAt(2).kind == tokIdent {
		vname := sp.advance().text
		sp.advance() // '.' or ':'
		attr := sp.advance().text
		return f.ReferenceValue{Variable: vname, Attributes: []string{attr}}, nil
	}
	return sp.parseScalarLiteral()
}
