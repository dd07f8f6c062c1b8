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
	"sync"

	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalFactory *BaseDatabaseFactory
	globalConfig  *Config
)

// GetDB returns the global Bun database instance, or nil before InitDB.
func GetDB() *bun.DB {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalFactory != nil {
		return globalFactory.GetDB()
	}
	return nil
}

// GetDatabaseManager returns the global database manager.
func GetDatabaseManager() AbstractDatabaseManager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalFactory != nil {
		return globalFactory.GetManager()
	}
	return nil
}

// GetDatabaseFactory returns the global database factory.
func GetDatabaseFactory() *BaseDatabaseFactory {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalFactory
}

// InitDB initializes the global database using the provided configuration.
// Migrations run when DataMigrateConfig.EnableMigrateOnStartup is set.
func InitDB(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	return InitDatabaseWithOptions(cfg, cfg.DataMigrateConfig.EnableMigrateOnStartup)
}

// InitDatabaseWithOptions initializes the database, optionally runs
// migrations and seeds data when DataInitConfig.AutoInitOnStartup is set.
// A previously initialized global database is closed first.
func InitDatabaseWithOptions(cfg *Config, runMigrations bool) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	factory := NewDatabaseFactory()
	manager, err := factory.CreateFromFullConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	ctx := context.Background()
	if err := factory.InitializeDatabase(ctx, runMigrations); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	db := manager.GetDB()
	db.RegisterModel(RegisteredModelInstances()...)

	if cfg.DataInitConfig.AutoInitOnStartup {
		if err := manager.InitData(ctx); err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("failed to initialize data: %w", err)
		}
	}

	globalMu.Lock()
	previous := globalFactory
	globalFactory = factory
	globalConfig = cfg
	globalMu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
	return db, nil
}

// CloseDB closes the global database connection.
func CloseDB() error {
	globalMu.Lock()
	factory := globalFactory
	globalFactory = nil
	globalConfig = nil
	globalMu.Unlock()

	if factory != nil {
		return factory.Close()
	}
	return nil
}

// GetHealthStatus returns the current database health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if factory := GetDatabaseFactory(); factory != nil {
		return factory.GetHealthStatus(ctx)
	}
	return &HealthStatus{
		Healthy:   false,
		Connected: false,
		LastError: "Database not initialized",
	}
}

// GetDatabaseStats returns global database statistics.
func GetDatabaseStats() *DBStats {
	if factory := GetDatabaseFactory(); factory != nil {
		return factory.GetStats()
	}
	return &DBStats{}
}

// RunMigrations executes database migrations on the global database.
func RunMigrations(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil {
		return fmt.Errorf("database not initialized")
	}
	return manager.RunMigrations(ctx)
}

// InitData seeds the global database from the configured SQL directory.
func InitData(ctx context.Context) error {
	manager := GetDatabaseManager()
	if manager == nil {
		return fmt.Errorf("database not initialized")
	}
	return manager.InitData(ctx)
}

// InitDataWithSQL seeds the global database from the SQL files of environment.
func InitDataWithSQL(ctx context.Context, environment string) error {
	db := GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	root := "configs/sql"
	globalMu.RLock()
	if globalConfig != nil && globalConfig.DataInitConfig.Filepath != "" {
		root = globalConfig.DataInitConfig.Filepath
	}
	globalMu.RUnlock()

	sqlManager := NewSQLInitManager(db, environment)
	sqlManager.SetSQLRootPath(root)
	return sqlManager.ExecuteInitialization(ctx)
}
