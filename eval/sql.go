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

package eval

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kestrel-lang/kestrel/backend"
	"github.com/kestrel-lang/kestrel/frame"
	f "github.com/kestrel-lang/kestrel/ir/filter"
	"github.com/kestrel-lang/kestrel/ir/graph"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
	"github.com/kestrel-lang/kestrel/kerr"
	"github.com/kestrel-lang/kestrel/mapping"
	"github.com/kestrel-lang/kestrel/sqltranslate"
)

var log = logrus.WithField("component", "eval")

// SourceConfig describes how a named DataSource resolves to a backend
// table: its native schema, OCSF mapping (nil if the table is already
// OCSF), timestamp column, and timestamp literal formatter. One entry is
// registered per scheme://name a Kestrel program may reference.
type SourceConfig struct {
	TableName string
	Mapping   *mapping.Mapping
	Schema    []string
	Timestamp string
	Timefmt   func(time.Time) string
}

// Explanation is the EXPLAIN output for one sink: the dependent
// subgraph's structural description paired with the literal-binds SQL
// that would be executed, grounded on `cache/sql.py`'s
// `GraphletExplanation(graph_dict, NativeQuery("SQL", ...))`.
type Explanation struct {
	Graph map[string]any
	SQL   string
}

// SqlEvaluator lowers an IR graph into SQL executed against a
// backend.Connection, grounded on `cache/sql.py`'s `SqlCache`.
type SqlEvaluator struct {
	conn    backend.Connection
	dialect sqltranslate.Dialect
	cache   *Cache
	sources map[string]SourceConfig
}

// NewSqlEvaluator returns an evaluator executing against conn, with
// sources keyed by DataSource name (spec.md §6 `scheme://name`).
func NewSqlEvaluator(conn backend.Connection, dialect sqltranslate.Dialect, sources map[string]SourceConfig) *SqlEvaluator {
	return NewSqlEvaluatorWithCache(conn, dialect, sources, NewCache())
}

// NewSqlEvaluatorWithCache is NewSqlEvaluator but seeds the evaluator
// with a foreign cache instead of an empty one — e.g. a FrameEvaluator's
// Cache after it computed a Variable, letting this evaluator resolve a
// later reference to that Variable by materializing the cached frame
// into a table (planInstruction's cache-hit branch) instead of
// recomputing it from scratch (spec.md §8 Testable Scenario 5). A nil
// cache behaves like NewSqlEvaluator.
func NewSqlEvaluatorWithCache(conn backend.Connection, dialect sqltranslate.Dialect, sources map[string]SourceConfig, cache *Cache) *SqlEvaluator {
	if cache == nil {
		cache = NewCache()
	}
	return &SqlEvaluator{conn: conn, dialect: dialect, cache: cache, sources: sources}
}

// Cache exposes the evaluator's cache, e.g. for VirtualCopy()-ing it
// into a frame-native evaluation that should see the same node ids as
// already computed.
func (e *SqlEvaluator) Cache() *Cache { return e.cache }

// EvaluateGraph evaluates every instruction in sinks (or, if sinks is
// nil, every graph.GetSinkNodes() node) and returns the resulting frame
// keyed by sink id, grounded on `SqlCache.evaluate_graph`.
func (e *SqlEvaluator) EvaluateGraph(ctx context.Context, g *graph.Graph, sinks []inst.Instruction) (map[uuid.UUID]*frame.Frame, error) {
	if sinks == nil {
		sinks = g.GetSinkNodes()
	}
	log.WithField("sinks", len(sinks)).Debug("evaluating graph against backend")
	out := make(map[uuid.UUID]*frame.Frame, len(sinks))
	for _, sink := range sinks {
		translator, err := e.planInstruction(ctx, g, sink, map[uuid.UUID]*sqltranslate.Translator{})
		if err != nil {
			return nil, err
		}
		sql, params, err := translator.Result()
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"sink": sink.ID(), "params": len(params)}).Debug("executing planned query")
		iter, err := e.conn.Execute(ctx, sql, params)
		if err != nil {
			return nil, kerr.ErrBackend.New(err.Error())
		}
		fr, err := backend.ReadFrame(iter)
		if err != nil {
			return nil, kerr.ErrBackend.New(err.Error())
		}
		out[sink.ID()] = fr
	}
	return out, nil
}

// ExplainGraph produces, for each sink (or every sink node if explain
// is nil), the dependent subgraph plus the literal-binds SQL that would
// execute it, without executing anything, grounded on
// `SqlCache.explain_graph`.
func (e *SqlEvaluator) ExplainGraph(ctx context.Context, g *graph.Graph, explain []inst.Instruction) (map[uuid.UUID]*Explanation, error) {
	if explain == nil {
		explain = g.GetSinkNodes()
	}
	out := make(map[uuid.UUID]*Explanation, len(explain))
	for _, n := range explain {
		depGraph := g.DuplicateDependentSubgraphOfNode(n)
		translator, err := e.planInstruction(ctx, g, n, map[uuid.UUID]*sqltranslate.Translator{})
		if err != nil {
			return nil, err
		}
		sql, err := translator.ResultWithLiteralBinds()
		if err != nil {
			return nil, err
		}
		out[n.ID()] = &Explanation{Graph: depGraph.ToDict(), SQL: sql}
	}
	return out, nil
}

// planInstruction recursively lowers n into a translator, mirroring
// `_evaluate_instruction_in_graph`. subqueryMemory memoizes the closed
// CTE translator of each Variable node already visited during this
// call, so a Variable reachable from more than one downstream consumer
// is only planned (and only renders its own CTE) once.
func (e *SqlEvaluator) planInstruction(ctx context.Context, g *graph.Graph, n inst.Instruction, subqueryMemory map[uuid.UUID]*sqltranslate.Translator) (*sqltranslate.Translator, error) {
	if tableName, ok := e.cache.Get(n.ID()); ok {
		return sqltranslate.New(e.dialect, tableName, sqltranslate.Options{}), nil
	}
	if fr, ok := e.cache.GetFrame(n.ID()); ok {
		id := n.ID()
		tableName := hex.EncodeToString(id[:])
		if err := e.conn.WriteFrame(ctx, tableName, fr); err != nil {
			return nil, kerr.ErrBackend.New(err.Error())
		}
		log.WithFields(logrus.Fields{"table": tableName, "rows": fr.NumRows()}).Debug("materialized frame-cached node")
		e.cache.Put(n.ID(), tableName)
		return sqltranslate.New(e.dialect, tableName, sqltranslate.Options{}), nil
	}

	if inst.IsSource(n) {
		switch src := n.(type) {
		case *inst.Construct:
			id := src.ID()
			tableName := hex.EncodeToString(id[:])
			fr := frameFromConstruct(src)
			if err := e.conn.WriteFrame(ctx, tableName, fr); err != nil {
				return nil, kerr.ErrBackend.New(err.Error())
			}
			log.WithFields(logrus.Fields{"table": tableName, "rows": fr.NumRows()}).Debug("materialized construct")
			e.cache.Put(src.ID(), tableName)
			return sqltranslate.New(e.dialect, tableName, sqltranslate.Options{}), nil
		case *inst.DataSource:
			cfg, ok := e.sources[src.Name]
			if !ok {
				return nil, kerr.ErrSourceNotFound.New(src.Name)
			}
			return sqltranslate.New(e.dialect, cfg.TableName, sqltranslate.Options{
				Schema:    cfg.Schema,
				Mapping:   cfg.Mapping,
				Timestamp: cfg.Timestamp,
				Timefmt:   cfg.Timefmt,
			}), nil
		default:
			return nil, kerr.ErrSourceNotFound.New(n.Kind().String())
		}
	}

	if !inst.IsTransforming(n) {
		return nil, kerr.ErrNodeNotFound.New(n.ID().String())
	}

	if memo, ok := subqueryMemory[n.ID()]; ok {
		return memo.Clone(), nil
	}

	trunk, _, err := g.GetTrunkNBranches(n)
	if err != nil {
		return nil, err
	}
	translator, err := e.planInstruction(ctx, g, trunk, subqueryMemory)
	if err != nil {
		return nil, err
	}

	if inst.IsSolePredecessor(n) {
		switch node := n.(type) {
		case *inst.Return, *inst.Explain:
			return translator, nil
		case *inst.Variable:
			cteName := "v_" + hex.EncodeToString([]byte(node.Name))
			sql, err := translator.ResultWithLiteralBinds()
			if err != nil {
				return nil, err
			}
			closed := sqltranslate.New(e.dialect, "("+sql+") AS "+cteName, sqltranslate.Options{IsCTE: true})
			subqueryMemory[node.ID()] = closed
			return closed.Clone(), nil
		default:
			if err := translator.AddInstruction(n); err != nil {
				return nil, err
			}
			return translator, nil
		}
	}

	if a, ok := n.(*inst.Analytic); ok {
		return nil, kerr.ErrAnalyticNotSupported.New(a.Scheme, a.Name)
	}
	filt, ok := n.(*inst.Filter)
	if !ok {
		return nil, kerr.ErrNodeNotFound.New(n.ID().String())
	}
	// Resolve on a copy of the node so the graph's Filter keeps its
	// ReferenceValues.
	resolved := *filt
	resolveErr := error(nil)
	resolved.ResolveReferences(func(rv f.ReferenceValue) any {
		v, ok := g.GetVariable(rv.Variable)
		if !ok {
			resolveErr = kerr.ErrUnresolvedReference.New(rv.Variable)
			return rv
		}
		branchTranslator, err := e.planInstruction(ctx, g, v, subqueryMemory)
		if err != nil {
			resolveErr = err
			return rv
		}
		if err := branchTranslator.AddProjectAttrs(inst.NewProjectAttrs(rv.Attributes)); err != nil {
			resolveErr = err
			return rv
		}
		sql, err := branchTranslator.ResultWithLiteralBinds()
		if err != nil {
			resolveErr = err
			return rv
		}
		return sql
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	if err := translator.AddInstruction(&resolved); err != nil {
		return nil, err
	}
	return translator, nil
}

// frameFromConstruct materializes a Construct's literal rows into a
// frame.Frame suitable for writing to the backend, grounded on
// `_evaluate_instruction_in_graph`'s `DataFrame(instruction.data)`. It
// prefers the Construct's declared column order when the parser
// recorded one, since ranging the row maps for first-seen keys (what
// plain FromRows falls back to) is nondeterministic.
func frameFromConstruct(c *inst.Construct) *frame.Frame {
	if c.Columns != nil {
		return frame.FromRowsWithColumns(c.Columns, c.Data)
	}
	return frame.FromRows(c.Data)
}
