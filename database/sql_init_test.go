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
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newMemoryDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSplitSQLStatements(t *testing.T) {
	content := `
-- leading comment
INSERT INTO t (id) VALUES (1);

INSERT INTO t (id, name)
  VALUES (2, 'two');
-- trailing comment
UPDATE t SET name = 'x'`

	require.Equal(t, []string{
		"INSERT INTO t (id) VALUES (1);",
		"INSERT INTO t (id, name) VALUES (2, 'two');",
		"UPDATE t SET name = 'x'",
	}, splitSQLStatements(content))
	require.Empty(t, splitSQLStatements("-- only a comment\n\n"))
}

func TestParseFileOrder(t *testing.T) {
	require.Equal(t, 1, parseFileOrder("001_teams.sql"))
	require.Equal(t, 42, parseFileOrder("42_members.sql"))
	require.Equal(t, 999, parseFileOrder("members.sql"))
}

func TestGetSQLFilesOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "common", "010_b.sql"), "")
	writeFile(t, filepath.Join(root, "common", "002_a.sql"), "")
	writeFile(t, filepath.Join(root, "common", "notes.txt"), "")
	writeFile(t, filepath.Join(root, "environments", "test", "001_c.sql"), "")
	writeFile(t, filepath.Join(root, "environments", "prod", "001_d.sql"), "")

	m := NewSQLInitManager(newMemoryDB(t), "test")
	m.SetSQLRootPath(root)
	files, err := m.GetSQLFiles()
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"002_a.sql", "010_b.sql", "001_c.sql"}, names)
	require.Equal(t, "common", files[0].Environment)
	require.Equal(t, "test", files[2].Environment)
}

func TestReplaceEnvVariables(t *testing.T) {
	t.Setenv("MEMBERSEARCH_SEED_OWNER", "ops")
	m := NewSQLInitManager(newMemoryDB(t), "staging")

	out, err := m.replaceEnvVariables("VALUES ('{{.ENVIRONMENT}}', '{{.MEMBERSEARCH_SEED_OWNER}}', '{{.MISSING}}')")
	require.NoError(t, err)
	require.Equal(t, "VALUES ('staging', 'ops', '')", out)

	_, err = m.replaceEnvVariables("{{.broken")
	require.Error(t, err)
}

func TestExecuteInitialization(t *testing.T) {
	ctx := context.Background()
	db := newMemoryDB(t)
	_, err := db.ExecContext(ctx, "CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "common", "001_teams.sql"),
		"INSERT INTO teams (id, name) VALUES (1, 'teamA');\nINSERT INTO teams (id, name) VALUES (2, 'teamB');\n")
	writeFile(t, filepath.Join(root, "environments", "dev", "001_dev.sql"),
		"INSERT INTO teams (id, name) VALUES (3, '{{.ENVIRONMENT}}_team');\n")

	m := NewSQLInitManager(db, "dev")
	m.SetSQLRootPath(root)
	require.NoError(t, m.ExecuteInitialization(ctx))

	var names []string
	require.NoError(t, db.NewSelect().TableExpr("teams").Column("name").Order("id").Scan(ctx, &names))
	require.Equal(t, []string{"teamA", "teamB", "dev_team"}, names)
}

func TestExecuteInitializationRollsBackFailingFile(t *testing.T) {
	ctx := context.Background()
	db := newMemoryDB(t)
	_, err := db.ExecContext(ctx, "CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "common", "001_teams.sql"),
		"INSERT INTO teams (id, name) VALUES (1, 'teamA');\nINSERT INTO teams (id, name) VALUES (1, 'again');\n")

	m := NewSQLInitManager(db, "dev")
	m.SetSQLRootPath(root)
	err = m.ExecuteInitialization(ctx)
	require.Error(t, err)

	is, kind := IsSqlError(err)
	require.True(t, is)
	require.Equal(t, DuplicateKeyErr, kind)

	count, err := db.NewSelect().TableExpr("teams").Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestExecuteInitializationWithoutFiles(t *testing.T) {
	m := NewSQLInitManager(newMemoryDB(t), "dev")
	m.SetSQLRootPath(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, m.ExecuteInitialization(context.Background()))
}
