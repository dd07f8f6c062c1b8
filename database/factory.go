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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/membersearch/utils"
)

var supportedTypes = []string{"mysql", "postgres", "sqlite"}

// typeAliases maps accepted spellings of a database type to its canonical name.
var typeAliases = map[string]string{
	"mysql":      "mysql",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
}

// BaseDatabaseFactory creates and manages a configured database manager and
// provides helpers for initialization, health checks, and statistics.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

// NewDatabaseFactory returns a new database factory using the global logger.
func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{
		logger: GetLogger(),
	}
}

// CreateFromConfig applies the DB_* overrides to cfg, canonicalizes its type
// and builds the manager the factory will initialize.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *ConnectionConfig) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	f.overrideFromEnv(cfg)

	typ, ok := typeAliases[strings.ToLower(cfg.Type)]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %q, supported types: %v", cfg.Type, supportedTypes)
	}
	cfg.Type = typ

	manager := NewDatabaseManager(cfg)
	manager.SetLogger(f.logger)
	f.manager = manager
	return manager, nil
}

// envSetter parses one DB_* variable into a ConnectionConfig field.
type envSetter func(cfg *ConnectionConfig, value string) error

func setString(field func(*ConnectionConfig) *string) envSetter {
	return func(cfg *ConnectionConfig, value string) error {
		*field(cfg) = value
		return nil
	}
}

func setInt(field func(*ConnectionConfig) *int) envSetter {
	return func(cfg *ConnectionConfig, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*field(cfg) = n
		return nil
	}
}

// setSeconds reads a whole number of seconds.
func setSeconds(field func(*ConnectionConfig) *time.Duration) envSetter {
	return func(cfg *ConnectionConfig, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*field(cfg) = time.Duration(n) * time.Second
		return nil
	}
}

func setBool(field func(*ConnectionConfig) *bool) envSetter {
	return func(cfg *ConnectionConfig, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*field(cfg) = b
		return nil
	}
}

// connectionEnv lists the environment variables that take precedence over
// the connection settings of a config file.
var connectionEnv = map[string]envSetter{
	"DB_TYPE":               setString(func(c *ConnectionConfig) *string { return &c.Type }),
	"DB_DSN":                setString(func(c *ConnectionConfig) *string { return &c.DSN }),
	"DB_HOST":               setString(func(c *ConnectionConfig) *string { return &c.Host }),
	"DB_PORT":               setInt(func(c *ConnectionConfig) *int { return &c.Port }),
	"DB_USERNAME":           setString(func(c *ConnectionConfig) *string { return &c.Username }),
	"DB_PASSWORD":           setString(func(c *ConnectionConfig) *string { return &c.Password }),
	"DB_NAME":               setString(func(c *ConnectionConfig) *string { return &c.DBName }),
	"DB_SSLMODE":            setString(func(c *ConnectionConfig) *string { return &c.SSLMode }),
	"DB_MAX_IDLE_CONNS":     setInt(func(c *ConnectionConfig) *int { return &c.MaxIdleConns }),
	"DB_MAX_OPEN_CONNS":     setInt(func(c *ConnectionConfig) *int { return &c.MaxOpenConns }),
	"DB_CONN_MAX_LIFETIME":  setSeconds(func(c *ConnectionConfig) *time.Duration { return &c.ConnMaxLifetime }),
	"DB_ENABLE_RECONNECT":   setBool(func(c *ConnectionConfig) *bool { return &c.EnableReconnect }),
	"DB_RECONNECT_INTERVAL": setSeconds(func(c *ConnectionConfig) *time.Duration { return &c.ReconnectInterval }),
	"DB_ENABLE_QUERY_LOG":   setBool(func(c *ConnectionConfig) *bool { return &c.EnableQueryLog }),
	"DB_QUERY_LOG_STYLE":    setString(func(c *ConnectionConfig) *string { return &c.QueryLogStyle }),
}

// overrideFromEnv applies every non-empty DB_* variable to cfg. Values that
// do not parse are logged and skipped.
func (f *BaseDatabaseFactory) overrideFromEnv(cfg *ConnectionConfig) {
	for key, set := range connectionEnv {
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		if err := set(cfg, value); err != nil && f.logger != nil {
			f.logger.Warn("Ignoring invalid database environment override", "key", key, "error", err)
		}
	}
}

// CreateFromFullConfig is CreateFromConfig plus the migration and seeding
// settings of cfg.
func (f *BaseDatabaseFactory) CreateFromFullConfig(cfg *Config) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	manager, err := f.CreateFromConfig(&cfg.ConnectionConfig)
	if err != nil {
		return nil, err
	}
	if m, ok := manager.(interface{ SetMigrationConfig(*Config) }); ok {
		m.SetMigrationConfig(cfg)
	}
	return manager, nil
}

// InitializeDatabase connects and, when runMigrations is set, brings the
// schema up to date.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context, runMigrations bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}
	start := time.Now()
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if runMigrations {
		if err := f.manager.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	f.logger.Info("Database initialization completed",
		"migrations", runMigrations,
		"elapsed", utils.FormatDuration(time.Since(start)),
	)
	return nil
}

// GetManager returns the underlying database manager.
func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetDB returns the Bun database instance, or nil if not initialized.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// SetLogger sets the logger on the factory and the underlying manager.
func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

// Close closes the database connection managed by the factory.
func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// GetHealthStatus returns the current database health status from the manager.
func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			Healthy:       false,
			Connected:     false,
			LastError:     "Database manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

// GetStats returns database connection statistics from the manager.
func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
