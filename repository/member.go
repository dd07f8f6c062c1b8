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

	"github.com/tomoncle/membersearch/model"
	"github.com/tomoncle/membersearch/types"
)

type memberRepositoryImpl struct {
	db            *bun.DB
	members       Repository[model.Member]
	teams         Repository[model.Team]
	countShortcut bool
}

// MemberRepositoryOption configures a member repository.
type MemberRepositoryOption func(*memberRepositoryImpl)

// WithCountShortcut toggles skipping the count query on a short first page
// in SearchPageSimple. It is enabled by default.
func WithCountShortcut(enabled bool) MemberRepositoryOption {
	return func(r *memberRepositoryImpl) {
		r.countShortcut = enabled
	}
}

// NewMemberRepository returns a MemberRepository backed by db.
func NewMemberRepository(db *bun.DB, opts ...MemberRepositoryOption) MemberRepository {
	r := &memberRepositoryImpl{
		db:            db,
		members:       NewRepository[model.Member](db),
		teams:         NewRepository[model.Team](db),
		countShortcut: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// searchQuery selects the member/team projection over
// members m LEFT JOIN teams t, restricted by the present criteria of cond.
func (r *memberRepositoryImpl) searchQuery(cond model.MemberSearchCondition) *bun.SelectQuery {
	q := r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("m.id AS member_id").
		ColumnExpr("m.username AS username").
		ColumnExpr("m.age AS age").
		ColumnExpr("t.id AS team_id").
		ColumnExpr("t.name AS team_name").
		Join("LEFT JOIN teams AS t ON t.id = m.team_id")
	return Where(q, SearchPredicates(cond)...)
}

func (r *memberRepositoryImpl) Search(ctx context.Context, cond model.MemberSearchCondition) ([]*model.MemberTeam, error) {
	rows := make([]*model.MemberTeam, 0)
	if err := r.searchQuery(cond).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *memberRepositoryImpl) SearchPageSimple(ctx context.Context, cond model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeam], error) {
	return fetchPage[model.MemberTeam](ctx, page, r.countShortcut, func() *bun.SelectQuery {
		return r.searchQuery(cond)
	})
}

func (r *memberRepositoryImpl) SearchPageComplex(ctx context.Context, cond model.MemberSearchCondition, page *types.PageRequest) (*types.Pagination[model.MemberTeam], error) {
	return fetchPage[model.MemberTeam](ctx, page, false, func() *bun.SelectQuery {
		return r.searchQuery(cond)
	})
}

// SearchByBuilder accumulates the present filters in one where group, the
// builder counterpart of the predicate functions.
func (r *memberRepositoryImpl) SearchByBuilder(ctx context.Context, username *string, age *int) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	q := r.db.NewSelect().Model(&members)
	if username != nil || age != nil {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			if username != nil {
				q = q.Where("m.username = ?", *username)
			}
			if age != nil {
				q = q.Where("m.age = ?", *age)
			}
			return q
		})
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return members, nil
}

// SaveTeams inserts teams and fills in their generated ids.
func (r *memberRepositoryImpl) SaveTeams(ctx context.Context, teams ...*model.Team) error {
	if len(teams) == 0 {
		return nil
	}
	return r.teams.Create(ctx, teams...)
}

// SaveMembers inserts members, taking team_id from an already saved Team.
func (r *memberRepositoryImpl) SaveMembers(ctx context.Context, members ...*model.Member) error {
	if len(members) == 0 {
		return nil
	}
	for _, m := range members {
		if m.Team != nil && m.Team.ID != 0 {
			id := m.Team.ID
			m.TeamID = &id
		}
	}
	return r.members.Create(ctx, members...)
}

func (r *memberRepositoryImpl) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	member := new(model.Member)
	if err := r.db.NewSelect().Model(member).Where("m.id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepositoryImpl) Members(ctx context.Context) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	if err := r.db.NewSelect().Model(&members).OrderExpr("m.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepositoryImpl) DeleteMember(ctx context.Context, id int64) error {
	return r.members.Delete(ctx, id)
}
