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

package membersearch

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/tomoncle/membersearch/database"
	"github.com/tomoncle/membersearch/model"
	"github.com/tomoncle/membersearch/repository"
	"github.com/tomoncle/membersearch/types"
	"github.com/tomoncle/membersearch/utils"
)

// ErrNotInitialized is returned by services bound to the global database
// before Init has run.
var ErrNotInitialized = errors.New("membersearch: database not initialized")

var log = utils.NewLogger("MEMBERSEARCH")

// Service is the generic entity service over repository.Repository.
type Service[T any] interface {
	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Page returns a paginated list of entities; the count always runs.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities based on fields and duplicate keys.
	SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error

	Update(ctx context.Context, model *T) error

	Delete(ctx context.Context, id any) error

	// RunInTx runs fn in a transaction on the bound database; the *WithTx
	// methods take the tx it hands out.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error

	SaveWithTx(ctx context.Context, tx *bun.Tx, model ...*T) error

	SaveOrUpdateWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, model ...*T) error

	UpdateWithTx(ctx context.Context, tx *bun.Tx, model *T) error

	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error
}

// MemberService exposes the member repository, logging a classification of
// every storage error before returning it unchanged.
type MemberService interface {
	repository.MemberRepository
}

// binding resolves a *bun.DB, either the one given or the global one. A
// nil global DB is not cached, so services created before Init bind on the
// first call after it.
type binding struct {
	mu sync.Mutex
	db *bun.DB
}

func (b *binding) get() (*bun.DB, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		b.db = database.GetDB()
	}
	if b.db == nil {
		return nil, ErrNotInitialized
	}
	return b.db, nil
}

type baseServiceImpl[T any] struct {
	binding
	repoOnce sync.Once
	repo     repository.Repository[T]
}

// NewService returns a Service bound lazily to the global database.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

func (s *baseServiceImpl[T]) baseRepo() (repository.Repository[T], error) {
	db, err := s.get()
	if err != nil {
		return nil, err
	}
	s.repoOnce.Do(func() { s.repo = repository.NewRepository[T](db) })
	return s.repo, nil
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	entity, err := repo.GetOne(ctx, id)
	return entity, check("get", err)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	entities, err := repo.GetAll(ctx)
	return entities, check("all", err)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	entities, err := repo.List(ctx, filter)
	return entities, check("list", err)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	p, err := repo.Page(ctx, page)
	return p, check("page", err)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return check("save", repo.Create(ctx, model...))
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return check("save_or_update", repo.Upsert(ctx, fields, duplicateKeys, model...))
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return check("update", repo.Update(ctx, model))
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return check("delete", repo.Delete(ctx, id))
}

func (s *baseServiceImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	db, err := s.get()
	if err != nil {
		return err
	}
	return check("run_in_tx", db.RunInTx(ctx, nil, fn))
}

func (s *baseServiceImpl[T]) SaveWithTx(ctx context.Context, tx *bun.Tx, model ...*T) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return check("save_with_tx", repo.CreateWithTx(ctx, tx, model...))
}

func (s *baseServiceImpl[T]) SaveOrUpdateWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, model ...*T) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return check("save_or_update_with_tx", repo.UpsertWithTx(ctx, tx, fields, duplicateKeys, model...))
}

func (s *baseServiceImpl[T]) UpdateWithTx(ctx context.Context, tx *bun.Tx, model *T) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return check("update_with_tx", repo.UpdateWithTx(ctx, tx, model))
}

func (s *baseServiceImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return check("delete_with_tx", repo.DeleteWithTx(ctx, tx, id))
}

// check logs err with its storage classification and returns it as is.
// Missing rows are logged at debug level.
func check(op string, err error) error {
	if err == nil {
		return nil
	}
	fields := logrus.Fields{"op": op}
	is, kind := database.IsSqlError(err)
	if is {
		fields["sql_error"] = kind.String()
	}
	entry := log.WithFields(fields).WithError(err)
	if kind == database.NoRowsErr {
		entry.Debug("query returned no rows")
	} else {
		entry.Error("member search operation failed")
	}
	return err
}

type memberServiceImpl struct {
	binding
	opts     []repository.MemberRepositoryOption
	repoOnce sync.Once
	repo     repository.MemberRepository
}

// NewMemberService returns a MemberService bound lazily to the global
// database initialized by Init.
func NewMemberService(opts ...repository.MemberRepositoryOption) MemberService {
	return &memberServiceImpl{opts: opts}
}

// NewMemberServiceWithDB returns a MemberService bound to db.
func NewMemberServiceWithDB(db *bun.DB, opts ...repository.MemberRepositoryOption) MemberService {
	s := &memberServiceImpl{opts: opts}
	s.db = db
	return s
}

func (s *memberServiceImpl) repository() (repository.MemberRepository, error) {
	db, err := s.get()
	if err != nil {
		return nil, err
	}
	s.repoOnce.Do(func() { s.repo = repository.NewMemberRepository(db, s.opts...) })
	return s.repo, nil
}

func (s *memberServiceImpl) Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	rows, err := repo.Search(ctx, cond)
	return rows, check("search", err)
}

func (s *memberServiceImpl) SearchPageSimple(ctx context.Context, cond model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeam], error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	p, err := repo.SearchPageSimple(ctx, cond, page)
	if err == nil {
		log.WithFields(logrus.Fields{
			"offset":         p.Offset,
			"page_size":      p.PageSize,
			"total":          p.Total,
			"count_executed": p.CountExecuted,
		}).Debug("search page")
	}
	return p, check("search_page_simple", err)
}

func (s *memberServiceImpl) SearchPageComplex(ctx context.Context, cond model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeam], error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	p, err := repo.SearchPageComplex(ctx, cond, page)
	return p, check("search_page_complex", err)
}

func (s *memberServiceImpl) SearchByBuilder(ctx context.Context, username *string, age *int) ([]*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	members, err := repo.SearchByBuilder(ctx, username, age)
	return members, check("search_by_builder", err)
}

func (s *memberServiceImpl) SaveTeams(ctx context.Context, teams ...*model.Team) error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	return check("save_teams", repo.SaveTeams(ctx, teams...))
}

func (s *memberServiceImpl) SaveMembers(ctx context.Context, members ...*model.Member) error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	return check("save_members", repo.SaveMembers(ctx, members...))
}

func (s *memberServiceImpl) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	m, err := repo.GetMember(ctx, id)
	return m, check("get_member", err)
}

func (s *memberServiceImpl) Members(ctx context.Context) ([]*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	members, err := repo.Members(ctx)
	return members, check("members", err)
}

func (s *memberServiceImpl) DeleteMember(ctx context.Context, id int64) error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	return check("delete_member", repo.DeleteMember(ctx, id))
}

func (s *memberServiceImpl) FindByUsername(ctx context.Context, username string) (*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.FindByUsername(ctx, username)
	return v, check("find_by_username", err)
}

func (s *memberServiceImpl) ListOrdered(ctx context.Context, age int) ([]*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.ListOrdered(ctx, age)
	return v, check("list_ordered", err)
}

func (s *memberServiceImpl) ListPage(ctx context.Context, page *types.PageRequest) (*types.Pagination[model.Member], error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.ListPage(ctx, page)
	return v, check("list_page", err)
}

func (s *memberServiceImpl) Stats(ctx context.Context) (*model.MemberStats, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.Stats(ctx)
	return v, check("stats", err)
}

func (s *memberServiceImpl) TeamAverages(ctx context.Context) ([]*model.TeamAgeStats, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.TeamAverages(ctx)
	return v, check("team_averages", err)
}

func (s *memberServiceImpl) MembersOfTeam(ctx context.Context, teamName string) ([]*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.MembersOfTeam(ctx, teamName)
	return v, check("members_of_team", err)
}

func (s *memberServiceImpl) MembersNamedLikeTeam(ctx context.Context) ([]*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.MembersNamedLikeTeam(ctx)
	return v, check("members_named_like_team", err)
}

func (s *memberServiceImpl) MembersWithTeamFilteredJoin(ctx context.Context, teamName string) ([]*model.MemberTeam, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.MembersWithTeamFilteredJoin(ctx, teamName)
	return v, check("members_with_team_filtered_join", err)
}

func (s *memberServiceImpl) FindWithTeam(ctx context.Context, username string) (*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.FindWithTeam(ctx, username)
	return v, check("find_with_team", err)
}

func (s *memberServiceImpl) FindWithoutTeam(ctx context.Context, username string) (*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.FindWithoutTeam(ctx, username)
	return v, check("find_without_team", err)
}

func (s *memberServiceImpl) Oldest(ctx context.Context) ([]*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.Oldest(ctx)
	return v, check("oldest", err)
}

func (s *memberServiceImpl) AtLeastAverageAge(ctx context.Context) ([]*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.AtLeastAverageAge(ctx)
	return v, check("at_least_average_age", err)
}

func (s *memberServiceImpl) AgeIn(ctx context.Context, greaterThan int) ([]*model.Member, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.AgeIn(ctx, greaterThan)
	return v, check("age_in", err)
}

func (s *memberServiceImpl) WithAverageAge(ctx context.Context) ([]*model.MemberAverage, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.WithAverageAge(ctx)
	return v, check("with_average_age", err)
}

func (s *memberServiceImpl) AgeBrackets(ctx context.Context) ([]*model.MemberAgeBracket, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.AgeBrackets(ctx)
	return v, check("age_brackets", err)
}

func (s *memberServiceImpl) AgeNames(ctx context.Context) ([]*model.MemberAgeName, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.AgeNames(ctx)
	return v, check("age_names", err)
}

func (s *memberServiceImpl) UsernameAgeLabels(ctx context.Context, username string) ([]string, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.UsernameAgeLabels(ctx, username)
	return v, check("username_age_labels", err)
}

func (s *memberServiceImpl) ReplacedUsernames(ctx context.Context, old, replacement string) ([]string, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.ReplacedUsernames(ctx, old, replacement)
	return v, check("replaced_usernames", err)
}

func (s *memberServiceImpl) LowercaseUsernames(ctx context.Context) ([]string, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	v, err := repo.LowercaseUsernames(ctx)
	return v, check("lowercase_usernames", err)
}

func (s *memberServiceImpl) BulkRename(ctx context.Context, below int, username string) (int64, error) {
	repo, err := s.repository()
	if err != nil {
		return 0, err
	}
	v, err := repo.BulkRename(ctx, below, username)
	return v, check("bulk_rename", err)
}

func (s *memberServiceImpl) BulkAddAge(ctx context.Context, delta int) (int64, error) {
	repo, err := s.repository()
	if err != nil {
		return 0, err
	}
	v, err := repo.BulkAddAge(ctx, delta)
	return v, check("bulk_add_age", err)
}

func (s *memberServiceImpl) BulkMultiplyAge(ctx context.Context, factor int) (int64, error) {
	repo, err := s.repository()
	if err != nil {
		return 0, err
	}
	v, err := repo.BulkMultiplyAge(ctx, factor)
	return v, check("bulk_multiply_age", err)
}

func (s *memberServiceImpl) BulkDeleteOlderThan(ctx context.Context, age int) (int64, error) {
	repo, err := s.repository()
	if err != nil {
		return 0, err
	}
	v, err := repo.BulkDeleteOlderThan(ctx, age)
	return v, check("bulk_delete_older_than", err)
}
