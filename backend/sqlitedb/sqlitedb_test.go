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

package sqlitedb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-lang/kestrel/backend"
	"github.com/kestrel-lang/kestrel/backend/sqlitedb"
	"github.com/kestrel-lang/kestrel/frame"
)

func openMemory(t *testing.T) *sqlitedb.Conn {
	t.Helper()
	conn, err := sqlitedb.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestConn_WriteFrameThenExecute_RoundTrips(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()

	fr := frame.FromRows([]map[string]any{
		{"process.pid": int64(1), "process.name": "bash"},
		{"process.pid": int64(2), "process.name": "sh"},
	})
	require.NoError(t, conn.WriteFrame(ctx, "proc_events", fr))

	iter, err := conn.Execute(ctx, `SELECT "process.pid", "process.name" FROM "proc_events" ORDER BY "process.pid"`, nil)
	require.NoError(t, err)
	out, err := backend.ReadFrame(iter)
	require.NoError(t, err)

	require.Equal(t, 2, out.NumRows())
	assert.EqualValues(t, 1, out.Row(0)["process.pid"])
	assert.Equal(t, "bash", out.Row(0)["process.name"])
	assert.EqualValues(t, 2, out.Row(1)["process.pid"])
}

func TestConn_WriteFrame_Overwrites(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()

	first := frame.FromRows([]map[string]any{{"x": int64(1)}})
	require.NoError(t, conn.WriteFrame(ctx, "t", first))

	second := frame.FromRows([]map[string]any{{"x": int64(7)}, {"x": int64(8)}})
	require.NoError(t, conn.WriteFrame(ctx, "t", second))

	iter, err := conn.Execute(ctx, `SELECT "x" FROM "t" ORDER BY "x"`, nil)
	require.NoError(t, err)
	out, err := backend.ReadFrame(iter)
	require.NoError(t, err)
	require.Equal(t, 2, out.NumRows())
	assert.EqualValues(t, 7, out.Row(0)["x"])
}

func TestConn_Execute_Regexp(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()

	fr := frame.FromRows([]map[string]any{
		{"host.name": "web-01"},
		{"host.name": "db-01"},
	})
	require.NoError(t, conn.WriteFrame(ctx, "hosts", fr))

	iter, err := conn.Execute(ctx, `SELECT "host.name" FROM "hosts" WHERE "host.name" REGEXP ?`, []any{"^web-"})
	require.NoError(t, err)
	out, err := backend.ReadFrame(iter)
	require.NoError(t, err)
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "web-01", out.Row(0)["host.name"])
}

func TestConn_Execute_BadQuery_Errors(t *testing.T) {
	conn := openMemory(t)
	_, err := conn.Execute(context.Background(), `SELECT * FROM "nope"`, nil)
	assert.Error(t, err)
}
