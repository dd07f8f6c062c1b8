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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Database.Type)
	require.True(t, cfg.Search.CountShortcut)
	require.True(t, cfg.Database.Migrate.OnStartup)

	dbCfg := cfg.ConfigLoader()
	require.Equal(t, "sqlite", dbCfg.ConnectionConfig.Type)
	require.Equal(t, "membersearch", dbCfg.ConnectionConfig.DBName)
	require.Equal(t, "configs/sql", dbCfg.DataInitConfig.Filepath)
	require.Equal(t, 10*time.Second, dbCfg.ConnectionConfig.ConnectTimeout)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
database:
  type: postgres
  host: db.internal
  port: 5432
  username: app
  dbname: members
  connect_timeout: 3s
  query_log_style: color
  migrate:
    foreign_keys: false
  init:
    environment: test
search:
  count_shortcut: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "json", cfg.Log.Format)
	require.False(t, cfg.Search.CountShortcut)

	dbCfg := cfg.ConfigLoader()
	require.Equal(t, "postgres", dbCfg.ConnectionConfig.Type)
	require.Equal(t, "db.internal", dbCfg.ConnectionConfig.Host)
	require.Equal(t, 3*time.Second, dbCfg.ConnectionConfig.ConnectTimeout)
	require.Equal(t, "color", dbCfg.ConnectionConfig.QueryLogStyle)
	require.False(t, dbCfg.DataMigrateConfig.EnableForeignKey)
	require.Equal(t, "test", dbCfg.DataInitConfig.Environment)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MEMBERSEARCH_DATABASE_TYPE", "mysql")
	t.Setenv("MEMBERSEARCH_DATABASE_DSN", "user:pass@tcp(localhost:3306)/members")
	t.Setenv("MEMBERSEARCH_SEARCH_COUNT_SHORTCUT", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.Database.Type)
	require.Equal(t, "user:pass@tcp(localhost:3306)/members", cfg.ConfigLoader().ConnectionConfig.DSN)
	require.False(t, cfg.Search.CountShortcut)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown type":   "database:\n  type: oracle\n",
		"bad log format": "log:\n  format: xml\n",
		"bad port":       "database:\n  port: 70000\n",
		"bad log style":  "database:\n  query_log_style: rainbow\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
