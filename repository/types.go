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

package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/membersearch/model"
	"github.com/tomoncle/membersearch/types"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	Create(ctx context.Context, entity ...*T) error

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error
}

// TransactionRepository defines CRUD operations executed within a transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error
	UpsertWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error
	UpdateWithTx(ctx context.Context, tx *bun.Tx, entity *T) error
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD, pagination, and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}

// MemberSearchRepository searches the member/team left join with optional
// predicates.
type MemberSearchRepository interface {
	// Search returns every member row matching the present criteria, unordered.
	Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error)

	// SearchPageSimple pages the search and skips the count query when the
	// first page comes back short, if the count shortcut is enabled.
	SearchPageSimple(ctx context.Context, cond model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeam], error)

	// SearchPageComplex pages the search and always runs the count query.
	SearchPageComplex(ctx context.Context, cond model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeam], error)

	// SearchByBuilder filters with a where group assembled step by step.
	SearchByBuilder(ctx context.Context, username *string, age *int) ([]*model.Member, error)
}

// MemberQueryRepository holds the join, subquery, aggregate, SQL function
// and bulk queries over members.
type MemberQueryRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Member, error)
	ListOrdered(ctx context.Context, age int) ([]*model.Member, error)
	ListPage(ctx context.Context, page *types.PageRequest) (*types.Pagination[model.Member], error)
	Stats(ctx context.Context) (*model.MemberStats, error)
	TeamAverages(ctx context.Context) ([]*model.TeamAgeStats, error)
	MembersOfTeam(ctx context.Context, teamName string) ([]*model.Member, error)
	MembersNamedLikeTeam(ctx context.Context) ([]*model.Member, error)
	MembersWithTeamFilteredJoin(ctx context.Context, teamName string) ([]*model.MemberTeam, error)
	FindWithTeam(ctx context.Context, username string) (*model.Member, error)
	FindWithoutTeam(ctx context.Context, username string) (*model.Member, error)
	Oldest(ctx context.Context) ([]*model.Member, error)
	AtLeastAverageAge(ctx context.Context) ([]*model.Member, error)
	AgeIn(ctx context.Context, greaterThan int) ([]*model.Member, error)
	WithAverageAge(ctx context.Context) ([]*model.MemberAverage, error)
	AgeBrackets(ctx context.Context) ([]*model.MemberAgeBracket, error)
	AgeNames(ctx context.Context) ([]*model.MemberAgeName, error)
	UsernameAgeLabels(ctx context.Context, username string) ([]string, error)
	ReplacedUsernames(ctx context.Context, old, replacement string) ([]string, error)
	LowercaseUsernames(ctx context.Context) ([]string, error)
	BulkRename(ctx context.Context, below int, username string) (int64, error)
	BulkAddAge(ctx context.Context, delta int) (int64, error)
	BulkMultiplyAge(ctx context.Context, factor int) (int64, error)
	BulkDeleteOlderThan(ctx context.Context, age int) (int64, error)
}

// MemberRepository is the member/team data access surface.
type MemberRepository interface {
	MemberSearchRepository
	MemberQueryRepository

	SaveTeams(ctx context.Context, teams ...*model.Team) error
	SaveMembers(ctx context.Context, members ...*model.Member) error
	GetMember(ctx context.Context, id int64) (*model.Member, error)
	Members(ctx context.Context) ([]*model.Member, error)
	DeleteMember(ctx context.Context, id int64) error
}
