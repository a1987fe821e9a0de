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

// Package kerr declares the abstract error kinds of the Kestrel compiler
// and evaluator core (spec §7). Each kind is a *errors.Kind, following
// the same declare-once/New-to-raise/Is-to-test pattern the teacher uses
// for its own permission errors.
package kerr

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrParse is raised for unrecognized Kestrel syntax.
	ErrParse = errors.NewKind("parse error: %s")

	// ErrUnresolvedReference is raised when a Reference node has no
	// matching Variable in the graph (or a caller-provided graph) at
	// resolution time.
	ErrUnresolvedReference = errors.NewKind("unresolved reference to variable %q")

	// ErrInvalidComparison is raised when a comparison operator is
	// incompatible with its operand types.
	ErrInvalidComparison = errors.NewKind("invalid comparison: operator %q incompatible with value %v")

	// ErrUnsupportedOperator is raised when an operator cannot be
	// rendered for the active SQL dialect.
	ErrUnsupportedOperator = errors.NewKind("operator %q is not supported by dialect %q")

	// ErrSourceNotFound is raised when a datasource is missing, or an
	// ancestor search for an enclosing DataSource fails.
	ErrSourceNotFound = errors.NewKind("data source not found: %s")

	// ErrSourceSchemaNotFound is raised when a projection needs a known
	// source schema but none was provided.
	ErrSourceSchemaNotFound = errors.NewKind("source schema not available for projection (query so far: %s)")

	// ErrMismatchedFieldValueArity is raised when a reference comparison's
	// column arity differs from its value arity.
	ErrMismatchedFieldValueArity = errors.NewKind("comparison over %d fields received values of arity %d")

	// ErrInvalidMultiColumnOperator is raised when a multi-column
	// reference comparison uses an operator other than IN/NOT IN.
	ErrInvalidMultiColumnOperator = errors.NewKind("multi-column comparison only supports IN/NOT IN, got %q")

	// ErrIncompleteDataMapping is raised when a configured entity
	// identifier is absent from the schema mapping.
	ErrIncompleteDataMapping = errors.NewKind("identifier %q for entity %q is missing in data mapping")

	// ErrInvalidMapping is raised for a malformed mapping file.
	ErrInvalidMapping = errors.NewKind("invalid schema mapping: %s")

	// ErrDualEntityProjection is raised when a second ProjectEntity is
	// added to a translator chain that already has one.
	ErrDualEntityProjection = errors.NewKind("dual entity projection in one translator chain")

	// ErrBackend wraps an error surfaced verbatim from a backend
	// connection.
	ErrBackend = errors.NewKind("backend error: %s")

	// ErrGraphCycle is raised when add_edge would introduce a cycle.
	ErrGraphCycle = errors.NewKind("adding edge would introduce a cycle")

	// ErrMultipleTrunks is raised when a transforming node has more
	// than one data-flow predecessor.
	ErrMultipleTrunks = errors.NewKind("node %s has more than one trunk predecessor")

	// ErrMissingTrunk is raised when a transforming node has no
	// predecessor at all.
	ErrMissingTrunk = errors.NewKind("node %s has no trunk predecessor")

	// ErrNodeNotFound is raised when an operation references a node id
	// that is not part of the graph.
	ErrNodeNotFound = errors.NewKind("node %s not found in graph")

	// ErrAnalyticNotSupported is raised when evaluation reaches an
	// Analytic instruction: executing a named external analytic against
	// a live connector is out of scope for both evaluators (no remote
	// connector transport is shipped), so the graph can be built and
	// explained but not evaluated past this node.
	ErrAnalyticNotSupported = errors.NewKind("evaluating analytic %s://%s requires an external connector, which is not supported")
)
