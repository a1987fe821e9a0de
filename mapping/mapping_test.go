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

package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/kestrel-lang/kestrel/mapping"
)

const sampleYAML = `
process:
  pid: pid
  file:
    name:
      native_field: file_name
      ocsf_value: basename
  cmd_line: command_line
user:
  name:
    - username
    - login_name
`

func load(t *testing.T) *m.Mapping {
	t.Helper()
	mm, err := m.Load([]byte(sampleYAML))
	require.NoError(t, err)
	return mm
}

func TestLoad_ForwardTreeShape(t *testing.T) {
	mm := load(t)
	require.Contains(t, mm.Forward, "process")
	proc := mm.Forward["process"]
	require.NotNil(t, proc.Map)
	assert.Equal(t, "pid", proc.Map["pid"].Str)
}

func TestReverseMapping_SimpleRename(t *testing.T) {
	mm := load(t)
	recs, ok := mm.Reverse["pid"]
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, "process.pid", recs[0].OCSFField)
}

func TestReverseMapping_ListFlattensToMultipleAlternatives(t *testing.T) {
	mm := load(t)
	recs, ok := mm.Reverse["username"]
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, "user.name", recs[0].OCSFField)

	recs2, ok := mm.Reverse["login_name"]
	require.True(t, ok)
	assert.Equal(t, "user.name", recs2[0].OCSFField)
}

func TestReverseMapping_RecordCarriesTransformer(t *testing.T) {
	mm := load(t)
	recs, ok := mm.Reverse["file_name"]
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, "process.file.name", recs[0].OCSFField)
	assert.Equal(t, "basename", recs[0].OCSFValue)
}

func TestTranslateComparisonToNative_SimpleRename(t *testing.T) {
	mm := load(t)
	triples, err := mm.TranslateComparisonToNative("process.pid", "=", 42)
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "pid", triples[0].Field)
	assert.Equal(t, 42, triples[0].Value)
}

func TestTranslateComparisonToNative_RecordRenamesFieldOnly(t *testing.T) {
	// No native_value transformer is set on this record, only ocsf_value
	// (which applies on the reverse leg), so the value passes through
	// unchanged here and only the field name is rewritten.
	mm := load(t)
	triples, err := mm.TranslateComparisonToNative("process.file.name", "=", "/bin/bash")
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "file_name", triples[0].Field)
	assert.Equal(t, "/bin/bash", triples[0].Value)
}

func TestTranslateComparisonToOCSF_RecordAppliesTransformer(t *testing.T) {
	mm := load(t)
	triples, err := mm.TranslateComparisonToOCSF("file_name", "=", "/bin/bash")
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "process.file.name", triples[0].Field)
	assert.Equal(t, "bash", triples[0].Value)
}

func TestTranslateComparisonToNative_PassThroughWhenUnmapped(t *testing.T) {
	mm := load(t)
	triples, err := mm.TranslateComparisonToNative("process.unknown_field", "=", "x")
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "process.unknown_field", triples[0].Field)
}

func TestTranslateComparisonToOCSF_RoundTripsRename(t *testing.T) {
	mm := load(t)
	triples, err := mm.TranslateComparisonToOCSF("pid", "=", 7)
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "process.pid", triples[0].Field)
}

func TestTranslateProjectionToNative_SpecificAttrs(t *testing.T) {
	mm := load(t)
	pairs := mm.TranslateProjectionToNative("process", []string{"pid", "cmd_line"})
	require.Len(t, pairs, 2)
	cols := map[string]string{}
	for _, p := range pairs {
		cols[p.Alias] = p.NativeColumn
	}
	assert.Equal(t, "pid", cols["pid"])
	assert.Equal(t, "command_line", cols["cmd_line"])
}

func TestTranslateProjectionToNative_AllAttrsWhenNil(t *testing.T) {
	mm := load(t)
	pairs := mm.TranslateProjectionToNative("process", nil)
	require.Len(t, pairs, 3)
	// Declaration order in sampleYAML's "process" block is pid, file,
	// cmd_line — the projection must reproduce that order deterministically
	// rather than whatever order Go's map range happens to pick.
	var natives []string
	for _, p := range pairs {
		natives = append(natives, p.NativeColumn)
	}
	assert.Equal(t, []string{"pid", "file_name", "command_line"}, natives)
}

func TestTranslateProjectionToNative_AllAttrsWhenNil_StableAcrossRepeatedCalls(t *testing.T) {
	mm := load(t)
	first := mm.TranslateProjectionToNative("process", nil)
	for i := 0; i < 5; i++ {
		again := mm.TranslateProjectionToNative("process", nil)
		assert.Equal(t, first, again, "projection order must not vary call to call")
	}
}

func TestCheckEntityIdentifierExistence(t *testing.T) {
	mm := load(t)
	err := mm.CheckEntityIdentifierExistence(map[string][]string{"process": {"pid"}}, "")
	assert.NoError(t, err)

	err = mm.CheckEntityIdentifierExistence(map[string][]string{"process": {"does.not.exist"}}, "test-interface")
	assert.Error(t, err)
}
