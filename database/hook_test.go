/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryCounter(t *testing.T) {
	ctx := context.Background()
	db := newMemoryDB(t)
	_, err := db.ExecContext(ctx, "CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	counter := NewQueryCounter()
	db.AddQueryHook(counter)

	_, err = db.ExecContext(ctx, "INSERT INTO teams (name) VALUES ('teamA')")
	require.NoError(t, err)
	_, err = db.NewSelect().TableExpr("teams").Count(ctx)
	require.NoError(t, err)
	var names []string
	require.NoError(t, db.NewSelect().TableExpr("teams").Column("name").Scan(ctx, &names))
	require.Equal(t, []string{"teamA"}, names)
	_, err = db.ExecContext(ctx, "UPDATE teams SET name = 'teamB'")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "DELETE FROM teams")
	require.NoError(t, err)

	stats := counter.Stats()
	require.Equal(t, QueryStats{Total: 5, Selects: 2, Counts: 1, Inserts: 1, Updates: 1, Deletes: 1}, stats)
	require.Len(t, counter.Queries(), 5)

	counter.Reset()
	require.Zero(t, counter.Stats().Total)
	require.Empty(t, counter.Queries())
}

func TestConsoleQueryHook(t *testing.T) {
	ctx := context.Background()
	db := newMemoryDB(t)

	var buf bytes.Buffer
	db.AddQueryHook(&ConsoleQueryHook{Writer: &buf})

	_, err := db.ExecContext(ctx, "SELECT 1")
	require.NoError(t, err)
	require.Empty(t, buf.String())

	_, err = db.ExecContext(ctx, "SELECT * FROM missing_table")
	require.Error(t, err)
	require.Contains(t, buf.String(), "missing_table")

	buf.Reset()
	EnableBunSqlSilent(true)
	_, _ = db.ExecContext(ctx, "SELECT * FROM missing_table")
	EnableBunSqlSilent(false)
	require.Empty(t, buf.String())
}
