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
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

var validReferentialActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string
	ConstraintName  string
}

// ForeignKeyProvider is implemented by registered models that own a
// foreign key column.
type ForeignKeyProvider interface {
	ForeignKeys() []ForeignKeyConstraint
}

// GenerateConstraintName returns the explicit name or a derived name.
func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// GenerateSQL returns the ALTER TABLE statement to add the constraint.
func (fk *ForeignKeyConstraint) GenerateSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		fk.Table, fk.GenerateConstraintName(), fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE " + strings.ToUpper(fk.OnDelete))
	}
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE " + strings.ToUpper(fk.OnUpdate))
	}
	return b.String()
}

// ForeignKeyManager adds and validates foreign key constraints.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager creates a manager with the constraints declared by
// registered models.
func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	return &ForeignKeyManager{
		constraints: getForeignKeyConstraints(),
		logger:      logger,
	}
}

func getForeignKeyConstraints() []ForeignKeyConstraint {
	var constraints []ForeignKeyConstraint
	for _, model := range RegisteredModelInstances() {
		if p, ok := model.(ForeignKeyProvider); ok {
			constraints = append(constraints, p.ForeignKeys()...)
		}
	}
	return constraints
}

// AddAllForeignKeys adds every constraint. Failures are logged and skipped so
// re-running against an existing schema is harmless. SQLite cannot add
// constraints to existing tables, so nothing is attempted there.
func (fkm *ForeignKeyManager) AddAllForeignKeys(ctx context.Context, db bun.IDB) error {
	if db.Dialect().Name() == dialect.SQLite {
		if fkm.logger != nil {
			fkm.logger.Debug("Skipping foreign keys, sqlite does not support ALTER TABLE ADD CONSTRAINT", "count", len(fkm.constraints))
		}
		return nil
	}
	for _, constraint := range fkm.constraints {
		if _, err := db.ExecContext(ctx, constraint.GenerateSQL()); err != nil {
			if fkm.logger != nil {
				fkm.logger.Debug("Failed to add foreign key constraint", "constraint", constraint.GenerateConstraintName(), "error", err.Error())
			}
			continue
		}
		if fkm.logger != nil {
			fkm.logger.Debug("Added foreign key constraint", "constraint", constraint.GenerateConstraintName())
		}
	}
	return nil
}

// RemoveForeignKey drops a named foreign key from a table.
func (fkm *ForeignKeyManager) RemoveForeignKey(ctx context.Context, db bun.IDB, tableName, constraintName string) error {
	stmt := fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", tableName, constraintName)
	if db.Dialect().Name() == dialect.MySQL {
		stmt = fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", tableName, constraintName)
	}
	_, err := db.ExecContext(ctx, stmt)
	return err
}

// GetConstraintsByTable returns the constraints defined for a table.
func (fkm *ForeignKeyManager) GetConstraintsByTable(tableName string) []ForeignKeyConstraint {
	var result []ForeignKeyConstraint
	for _, constraint := range fkm.constraints {
		if strings.EqualFold(constraint.Table, tableName) {
			result = append(result, constraint)
		}
	}
	return result
}

// ListAllConstraints returns all configured constraints.
func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}

// ValidateConstraints checks the configured constraints for missing names
// and unknown referential actions.
func (fkm *ForeignKeyManager) ValidateConstraints() []error {
	var errs []error
	for _, c := range fkm.constraints {
		if c.Table == "" {
			errs = append(errs, fmt.Errorf("table name cannot be empty"))
		}
		if c.Column == "" {
			errs = append(errs, fmt.Errorf("column name cannot be empty: %s", c.Table))
		}
		if c.ReferenceTable == "" {
			errs = append(errs, fmt.Errorf("reference table name cannot be empty: %s.%s", c.Table, c.Column))
		}
		if c.ReferenceColumn == "" {
			errs = append(errs, fmt.Errorf("reference column name cannot be empty: %s.%s -> %s", c.Table, c.Column, c.ReferenceTable))
		}
		if c.OnDelete != "" && !isReferentialAction(c.OnDelete) {
			errs = append(errs, fmt.Errorf("invalid delete policy: %s, constraint: %s", c.OnDelete, c.GenerateConstraintName()))
		}
		if c.OnUpdate != "" && !isReferentialAction(c.OnUpdate) {
			errs = append(errs, fmt.Errorf("invalid update policy: %s, constraint: %s", c.OnUpdate, c.GenerateConstraintName()))
		}
	}
	return errs
}

func isReferentialAction(action string) bool {
	for _, valid := range validReferentialActions {
		if strings.EqualFold(action, valid) {
			return true
		}
	}
	return false
}
