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
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// MigrationManager coordinates schema migrations and data initialization.
type MigrationManager struct {
	db          *bun.DB
	logger      Logger
	environment string
	config      *Config
}

// Migration represents an applied migration record stored in the database.
type Migration struct {
	bun.BaseModel `bun:"table:migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version with up/down functions.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// NewMigrationManager constructs a new MigrationManager using the provided Bun
// database and logger. Settings come from the global config when present.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	mm := &MigrationManager{
		db:          db,
		logger:      logger,
		environment: "development",
		config:      &Config{},
	}
	globalMu.RLock()
	cfg := globalConfig
	globalMu.RUnlock()
	mm.SetConfig(cfg)
	return mm
}

// SetConfig replaces the migration and seeding settings. A non-empty
// DataInitConfig.Environment also becomes the seeding environment.
func (mm *MigrationManager) SetConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	mm.config = cfg
	if cfg.DataInitConfig.Environment != "" {
		mm.environment = cfg.DataInitConfig.Environment
	}
}

// SetEnvironment sets the environment used when initializing data from SQL.
func (mm *MigrationManager) SetEnvironment(env string) {
	mm.environment = env
}

// RunMigrations creates the migration tracking table if needed and executes all
// registered migrations in ascending version order.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}

	// silent migration
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if err := mm.createMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := mm.getAllMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for _, migration := range migrations {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}

	if mm.logger != nil {
		mm.logger.Info("Database migrations completed", "count", len(migrations))
	}
	return nil
}

func (mm *MigrationManager) createMigrationTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	migrations := []MigrationItem{
		{
			Version:     "001",
			Name:        "create_base_tables",
			Description: "Create base table structure",
			Up:          mm.createBaseTables,
			Down:        mm.dropBaseTables,
		},
	}
	if mm.config.DataMigrateConfig.EnableForeignKey {
		migrations = append(migrations, MigrationItem{
			Version:     "002",
			Name:        "add_foreign_keys",
			Description: "Add table foreign key constraints",
			Up:          mm.addForeignKeys,
		})
	}
	if mm.config.DataInitConfig.AutoInitOnMigration {
		migrations = append(migrations, MigrationItem{
			Version:     "003",
			Name:        "seed_initial_data",
			Description: "Seed initial data",
			Up:          mm.seedInitialData,
		})
	}
	return migrations
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := migration.Up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().
			Model(&Migration{
				Version:     migration.Version,
				Name:        migration.Name,
				AppliedAt:   time.Now(),
				Description: migration.Description,
			}).
			Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if mm.logger != nil {
		mm.logger.Info("Migration executed successfully", "version", migration.Version, "name", migration.Name)
	}
	return nil
}

func (mm *MigrationManager) createBaseTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table %T: %w", model, err)
		}
	}
	return nil
}

// dropBaseTables drops registered tables, referencing tables first.
func (mm *MigrationManager) dropBaseTables(ctx context.Context, db bun.IDB) error {
	models := RegisteredModelInstances()
	for i := len(models) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table %T: %w", models[i], err)
		}
	}
	return nil
}

func (mm *MigrationManager) addForeignKeys(ctx context.Context, db bun.IDB) error {
	configPath := mm.config.DataMigrateConfig.ForeignKeyFile
	fkManager := NewConfigurableForeignKeyManager(mm.logger, configPath)

	if errs := fkManager.ValidateConstraints(); len(errs) > 0 {
		for _, err := range errs {
			if mm.logger != nil {
				mm.logger.Debug("Foreign key constraint validation failed", "error", err.Error())
			}
		}
		return fmt.Errorf("foreign key constraint validation failed, %d errors in total", len(errs))
	}
	return fkManager.AddAllForeignKeys(ctx, db)
}

// InitData runs the SQL seed files outside of the migration table.
func (mm *MigrationManager) InitData(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return mm.seedInitialData(ctx, mm.db)
}

func (mm *MigrationManager) seedInitialData(ctx context.Context, db bun.IDB) error {
	sqlManager := NewSQLInitManager(db, mm.environment)
	if mm.config.DataInitConfig.Filepath != "" {
		sqlManager.SetSQLRootPath(mm.config.DataInitConfig.Filepath)
	}
	if err := sqlManager.ExecuteInitialization(ctx); err != nil {
		return fmt.Errorf("SQL file initialization failed: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}

// RollbackMigration runs the Down step of version and removes its record.
func (mm *MigrationManager) RollbackMigration(ctx context.Context, version string) error {
	for _, migration := range mm.getAllMigrations() {
		if migration.Version != version {
			continue
		}
		if migration.Down == nil {
			return fmt.Errorf("migration %s has no rollback step", version)
		}
		return mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := migration.Down(ctx, tx); err != nil {
				return err
			}
			_, err := tx.NewDelete().
				Model((*Migration)(nil)).
				Where("version = ?", version).
				Exec(ctx)
			return err
		})
	}
	return fmt.Errorf("unknown migration version: %s", version)
}
