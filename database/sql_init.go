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
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

// SQLInitManager discovers and executes SQL files to seed data. Files under
// <root>/common run first, then <root>/environments/<env>, each set ordered
// by its numeric file name prefix.
type SQLInitManager struct {
	db          bun.IDB
	environment string
	sqlRootPath string
	logger      Logger
}

// SQLFileInfo describes a SQL file to be executed during initialization.
type SQLFileInfo struct {
	Path        string
	Name        string
	Order       int
	Environment string
	ModTime     time.Time
}

// ExecutionResult contains the outcome of executing a single SQL file.
type ExecutionResult struct {
	File         string
	Success      bool
	Error        error
	Duration     time.Duration
	RowsAffected int64
}

var fileOrderPattern = regexp.MustCompile(`^(\d+)_`)

// NewSQLInitManager creates a SQL initializer for the given environment.
func NewSQLInitManager(db bun.IDB, environment string) *SQLInitManager {
	return &SQLInitManager{
		db:          db,
		environment: environment,
		sqlRootPath: "configs/sql",
		logger:      GetDBLogger(),
	}
}

// SetSQLRootPath sets the root directory from which SQL files are loaded.
func (s *SQLInitManager) SetSQLRootPath(path string) {
	s.sqlRootPath = path
}

// ExecuteInitialization runs all discovered SQL files in order and stops at
// the first failing file.
func (s *SQLInitManager) ExecuteInitialization(ctx context.Context) error {
	s.logger.Info("Starting SQL initialization", "environment", s.environment, "sql_path", s.sqlRootPath)

	files, err := s.GetSQLFiles()
	if err != nil {
		return fmt.Errorf("failed to get SQL files: %w", err)
	}
	if len(files) == 0 {
		s.logger.Info("No SQL files found to execute")
		return nil
	}

	for _, file := range files {
		result := s.executeFile(ctx, file)
		if !result.Success {
			s.logger.Error("SQL file execution failed", "file", result.File, "error", result.Error.Error())
			return fmt.Errorf("SQL file execution failed %s: %w", result.File, result.Error)
		}
		s.logger.Info("SQL file executed successfully",
			"file", result.File,
			"duration", result.Duration.String(),
			"rows_affected", result.RowsAffected,
		)
	}

	s.logger.Info("SQL initialization completed", "total_files", len(files), "environment", s.environment)
	return nil
}

// GetSQLFiles returns the list of SQL files from common and environment dirs.
func (s *SQLInitManager) GetSQLFiles() ([]SQLFileInfo, error) {
	var files []SQLFileInfo

	commonPath := filepath.Join(s.sqlRootPath, "common")
	if _, err := os.Stat(commonPath); err == nil {
		commonFiles, err := s.getFilesFromDir(commonPath, "common")
		if err != nil {
			return nil, fmt.Errorf("failed to get common SQL files: %w", err)
		}
		files = append(files, commonFiles...)
	}

	envPath := filepath.Join(s.sqlRootPath, "environments", s.environment)
	if _, err := os.Stat(envPath); err == nil {
		envFiles, err := s.getFilesFromDir(envPath, s.environment)
		if err != nil {
			return nil, fmt.Errorf("failed to get environment SQL files: %w", err)
		}
		files = append(files, envFiles...)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Environment != files[j].Environment {
			return files[i].Environment == "common"
		}
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (s *SQLInitManager) getFilesFromDir(dir, environment string) ([]SQLFileInfo, error) {
	var files []SQLFileInfo

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, SQLFileInfo{
			Path:        path,
			Name:        d.Name(),
			Order:       parseFileOrder(d.Name()),
			Environment: environment,
			ModTime:     info.ModTime(),
		})
		return nil
	})
	return files, err
}

// parseFileOrder reads the "NNN_" prefix of filename; unnumbered files sort last.
func parseFileOrder(filename string) int {
	matches := fileOrderPattern.FindStringSubmatch(filename)
	if len(matches) > 1 {
		if order, err := strconv.Atoi(matches[1]); err == nil {
			return order
		}
	}
	return 999
}

func (s *SQLInitManager) executeFile(ctx context.Context, file SQLFileInfo) (result ExecutionResult) {
	start := time.Now()
	result.File = file.Path
	defer func() { result.Duration = time.Since(start) }()

	content, err := os.ReadFile(file.Path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read file: %w", err)
		return result
	}

	text := string(content)
	if strings.Contains(text, "{{") {
		if text, err = s.replaceEnvVariables(text); err != nil {
			result.Error = err
			return result
		}
	}

	statements := splitSQLStatements(text)
	if len(statements) == 0 {
		result.Success = true
		return result
	}

	exec := func(ctx context.Context, conn bun.IConn) error {
		for _, stmt := range statements {
			res, err := conn.ExecContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("failed to execute SQL statement: %s, error: %w", stmt, err)
			}
			n, _ := res.RowsAffected()
			result.RowsAffected += n
		}
		return nil
	}

	switch db := s.db.(type) {
	case *bun.DB:
		err = db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			return exec(ctx, tx)
		})
	default:
		// already inside a transaction
		err = exec(ctx, db)
	}
	if err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	return result
}

// replaceEnvVariables renders content as a text/template over the process
// environment plus ENVIRONMENT and TIMESTAMP.
func (s *SQLInitManager) replaceEnvVariables(content string) (string, error) {
	tmpl, err := template.New("sql").Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		if k, v, ok := strings.Cut(env, "="); ok {
			envVars[k] = v
		}
	}
	envVars["ENVIRONMENT"] = s.environment
	envVars["TIMESTAMP"] = time.Now().Format("2006-01-02 15:04:05")

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, envVars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// splitSQLStatements splits content on trailing semicolons, dropping blank
// and "--" comment lines.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")

		if strings.HasSuffix(line, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
