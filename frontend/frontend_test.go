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

package frontend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-lang/kestrel/frontend"
	f "github.com/kestrel-lang/kestrel/ir/filter"
	inst "github.com/kestrel-lang/kestrel/ir/instruction"
	"github.com/kestrel-lang/kestrel/mapping"
)

const sampleMappingYAML = `
process:
  pid: pid
  name: proc_name
network_traffic:
  pid: pid
`

func loadMapping(t *testing.T) *mapping.Mapping {
	t.Helper()
	m, err := mapping.Load([]byte(sampleMappingYAML))
	require.NoError(t, err)
	return m
}

func TestParse_NewAndDisp(t *testing.T) {
	src := "p = NEW process [{pid: 1, name: \"bash\"}]\nDISP p ATTR pid, name\n"
	graph, err := frontend.Parse(src, frontend.Options{})
	require.NoError(t, err)

	constructs := graph.GetNodesByType(inst.KindConstruct)
	require.Len(t, constructs, 1)
	c := constructs[0].(*inst.Construct)
	assert.Equal(t, "process", c.EntityType)
	require.Len(t, c.Data, 1)
	assert.EqualValues(t, 1, c.Data[0]["pid"])
	assert.Equal(t, []string{"pid", "name"}, c.Columns, "column order must match the source text's field order")

	variables := graph.GetNodesByType(inst.KindVariable)
	require.Len(t, variables, 1)
	assert.Equal(t, "p", variables[0].(*inst.Variable).Name)

	returns := graph.GetNodesByType(inst.KindReturn)
	require.Len(t, returns, 1)

	projAttrs := graph.GetNodesByType(inst.KindProjectAttrs)
	require.Len(t, projAttrs, 1)
}

func TestParse_NewColumnOrderUnionsAcrossRows(t *testing.T) {
	// The second row introduces "host" after "name" and before a
	// repeated "pid": Columns must reflect first-seen order across the
	// whole row set, not just the first row's keys.
	src := "p = NEW process [{pid: 1, name: \"bash\"}, {name: \"sh\", host: \"h1\", pid: 2}]\nDISP p\n"
	graph, err := frontend.Parse(src, frontend.Options{})
	require.NoError(t, err)

	c := graph.GetNodesByType(inst.KindConstruct)[0].(*inst.Construct)
	assert.Equal(t, []string{"pid", "name", "host"}, c.Columns)
}

func TestParse_SourceWhereAssignment(t *testing.T) {
	m := loadMapping(t)
	src := "procs = process FROM stixshifter://host1 WHERE pid = 42 LIMIT 10\n"
	graph, err := frontend.Parse(src, frontend.Options{Mapping: m})
	require.NoError(t, err)

	sources := graph.GetNodesByType(inst.KindDataSource)
	require.Len(t, sources, 1)
	assert.Equal(t, "stixshifter://host1", sources[0].(*inst.DataSource).Name)

	filters := graph.GetNodesByType(inst.KindFilter)
	require.Len(t, filters, 1)
	comp, ok := filters[0].(*inst.Filter).Exp.(*f.IntComparison)
	require.True(t, ok)
	assert.Equal(t, "pid", comp.Field)
	assert.EqualValues(t, 42, comp.Value)

	limits := graph.GetNodesByType(inst.KindLimit)
	require.Len(t, limits, 1)
	assert.Equal(t, 10, limits[0].(*inst.Limit).Num)

	projEntities := graph.GetNodesByType(inst.KindProjectEntity)
	require.Len(t, projEntities, 1)
	assert.Equal(t, "process", projEntities[0].(*inst.ProjectEntity).NativeField)
}

func TestParse_ReferenceWhereAndExplain(t *testing.T) {
	src := "a = NEW process [{pid: 1}]\nb = a WHERE pid > 0\nEXPLAIN b\n"
	graph, err := frontend.Parse(src, frontend.Options{})
	require.NoError(t, err)

	vars := graph.GetNodesByType(inst.KindVariable)
	require.Len(t, vars, 2)

	explains := graph.GetNodesByType(inst.KindExplain)
	require.Len(t, explains, 1)
}

func TestParse_ApplyRebindsVariable(t *testing.T) {
	src := "a = NEW process [{pid: 1}]\nAPPLY sigma://detect ON a WITH threshold=5\n"
	graph, err := frontend.Parse(src, frontend.Options{})
	require.NoError(t, err)

	analytics := graph.GetNodesByType(inst.KindAnalytic)
	require.Len(t, analytics, 1)
	an := analytics[0].(*inst.Analytic)
	assert.Equal(t, "sigma", an.Scheme)
	assert.Equal(t, "detect", an.Name)
	assert.EqualValues(t, 5, an.Params["threshold"])

	vars := graph.GetNodesByType(inst.KindVariable)
	require.Len(t, vars, 2) // one from NEW, one rebound by APPLY
}

func TestParse_FindExpandsViaRelationTable(t *testing.T) {
	relations := frontend.RelationTable{
		"process": {
			"created": frontend.Relation{
				TargetNativeType: "network_traffic",
				JoinFrom:         []string{"pid"},
				JoinTo:           []string{"pid"},
			},
		},
	}
	m := loadMapping(t)
	src := "p = NEW process [{pid: 7}]\nnt = FIND network_traffic created p\n"
	graph, err := frontend.Parse(src, frontend.Options{Mapping: m, Relations: relations})
	require.NoError(t, err)

	filters := graph.GetNodesByType(inst.KindFilter)
	require.Len(t, filters, 1)
	ref, ok := filters[0].(*inst.Filter).Exp.(*f.RefComparison)
	require.True(t, ok)
	assert.Equal(t, []string{"pid"}, ref.Fields)
	rv, ok := ref.Value.(f.ReferenceValue)
	require.True(t, ok)
	assert.Equal(t, "p", rv.Variable)
	assert.Equal(t, []string{"pid"}, rv.Attributes)

	projEntities := graph.GetNodesByType(inst.KindProjectEntity)
	require.Len(t, projEntities, 1)
	assert.Equal(t, "network_traffic", projEntities[0].(*inst.ProjectEntity).NativeField)
}

func TestParse_UnresolvedReferenceErrors(t *testing.T) {
	_, err := frontend.Parse("DISP nope\n", frontend.Options{})
	assert.Error(t, err)
}

func TestParse_BooleanAndOrPrecedence(t *testing.T) {
	src := "a = NEW process [{pid: 1}]\nb = a WHERE pid = 1 AND name = \"bash\" OR pid = 2\n"
	graph, err := frontend.Parse(src, frontend.Options{})
	require.NoError(t, err)
	filters := graph.GetNodesByType(inst.KindFilter)
	require.Len(t, filters, 1)
	top, ok := filters[0].(*inst.Filter).Exp.(*f.BoolExp)
	require.True(t, ok)
	assert.Equal(t, f.Or, top.Op)
}
