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
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// SQLError is a driver-independent classification of a storage error. It is
// used for logging only; callers always receive the original error.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

var sqlErrorNames = map[SQLError]string{
	UnknownErr:                  "unknown",
	NoRowsErr:                   "no_rows",
	NoIndexErr:                  "no_index",
	NoColumnErr:                 "no_column",
	ExistIndexErr:               "index_exists",
	ExistColumnErr:              "column_exists",
	NoTableErr:                  "no_table",
	ExistTableErr:               "table_exists",
	DuplicateKeyErr:             "duplicate_key",
	NotNullViolationErr:         "not_null_violation",
	ForeignKeyViolationErr:      "foreign_key_violation",
	CheckConstraintViolationErr: "check_violation",
	DataTruncatedErr:            "data_truncated",
	InvalidTypeCastErr:          "invalid_type_cast",
}

func (e SQLError) String() string {
	if s, ok := sqlErrorNames[e]; ok {
		return s
	}
	return sqlErrorNames[UnknownErr]
}

var pgCodes = map[string]SQLError{
	pgerrcode.UndefinedColumn:                        NoColumnErr,
	pgerrcode.UndefinedObject:                        NoIndexErr,
	pgerrcode.UndefinedTable:                         NoTableErr,
	pgerrcode.DuplicateTable:                         ExistTableErr,
	pgerrcode.DuplicateColumn:                        ExistColumnErr,
	pgerrcode.UniqueViolation:                        DuplicateKeyErr,
	pgerrcode.NotNullViolation:                       NotNullViolationErr,
	pgerrcode.ForeignKeyViolation:                    ForeignKeyViolationErr,
	pgerrcode.CheckViolation:                         CheckConstraintViolationErr,
	pgerrcode.StringDataRightTruncationDataException: DataTruncatedErr,
	pgerrcode.DatatypeMismatch:                       InvalidTypeCastErr,
}

var mysqlCodes = map[uint16]SQLError{
	1091: NoIndexErr,
	1054: NoColumnErr,
	1061: ExistIndexErr,
	1060: ExistColumnErr,
	1050: ExistTableErr,
	1146: NoTableErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1451: ForeignKeyViolationErr,
	1452: ForeignKeyViolationErr,
	3819: CheckConstraintViolationErr,
	1265: DataTruncatedErr,
	1406: DataTruncatedErr,
}

// IsSqlError reports whether err came from the database and, if so, which
// kind it is. MySQL and Postgres errors are matched on their codes; anything
// else (sqlite in particular) falls back to message matching.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if kind, ok := mysqlCodes[mysqlErr.Number]; ok {
			return true, kind
		}
		return true, UnknownErr
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if kind, ok := pgCodes[string(pqErr.Code)]; ok {
			return true, kind
		}
		return true, UnknownErr
	}

	return classifyMessage(strings.ToLower(err.Error()))
}

func classifyMessage(s string) (bool, SQLError) {
	switch {
	case strings.Contains(s, "sqlstate 42703"),
		strings.Contains(s, "undefined column"),
		strings.Contains(s, "no such column"):
		return true, NoColumnErr
	case strings.Contains(s, "sqlstate 42704"),
		strings.Contains(s, "no such index"),
		strings.Contains(s, "does not exist") && strings.Contains(s, "index"):
		return true, NoIndexErr
	case strings.Contains(s, "sqlstate 42p01"),
		strings.Contains(s, "undefined table"),
		strings.Contains(s, "no such table"):
		return true, NoTableErr
	case strings.Contains(s, "already exists") && strings.Contains(s, "index"):
		return true, ExistIndexErr
	case strings.Contains(s, "already exists") && (strings.Contains(s, "table") || strings.Contains(s, "relation")):
		return true, ExistTableErr
	case strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "sqlstate 23505"):
		return true, DuplicateKeyErr
	case strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "sqlstate 23502"),
		strings.Contains(s, "not null constraint failed"):
		return true, NotNullViolationErr
	case strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "sqlstate 23503"):
		return true, ForeignKeyViolationErr
	case strings.Contains(s, "check constraint"),
		strings.Contains(s, "sqlstate 23514"):
		return true, CheckConstraintViolationErr
	case strings.Contains(s, "string data right truncation"),
		strings.Contains(s, "sqlstate 22001"),
		strings.Contains(s, "data truncated"):
		return true, DataTruncatedErr
	case strings.Contains(s, "datatype mismatch"),
		strings.Contains(s, "sqlstate 42804"):
		return true, InvalidTypeCastErr
	}
	return false, UnknownErr
}
