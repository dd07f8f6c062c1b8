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
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/tomoncle/membersearch/model"
	"github.com/tomoncle/membersearch/types"
)

func (r *memberRepositoryImpl) FindByUsername(ctx context.Context, username string) (*model.Member, error) {
	member := new(model.Member)
	err := r.db.NewSelect().
		Model(member).
		Where("m.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return member, nil
}

// ListOrdered returns members of the given age ordered by age desc, then
// username asc with NULL usernames last.
func (r *memberRepositoryImpl) ListOrdered(ctx context.Context, age int) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	err := r.db.NewSelect().
		Model(&members).
		Where("m.age = ?", age).
		OrderExpr("m.age DESC").
		OrderExpr("CASE WHEN m.username IS NULL THEN 1 ELSE 0 END ASC").
		OrderExpr("m.username ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListPage pages all members, by username desc unless page carries orders.
func (r *memberRepositoryImpl) ListPage(ctx context.Context, page *types.PageRequest) (*types.Pagination[model.Member], error) {
	if page == nil {
		page = types.NewOffsetPageRequest(0, types.DefaultPageSize)
	}
	if len(page.GetOrders()) == 0 {
		page = page.WithOrders("m.username DESC")
	}
	return fetchPage[model.Member](ctx, page, r.countShortcut, func() *bun.SelectQuery {
		return r.db.NewSelect().Model((*model.Member)(nil))
	})
}

func (r *memberRepositoryImpl) Stats(ctx context.Context) (*model.MemberStats, error) {
	stats := new(model.MemberStats)
	err := r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("COUNT(*) AS member_count").
		ColumnExpr("COALESCE(SUM(m.age), 0) AS age_sum").
		ColumnExpr("COALESCE(AVG(m.age), 0) AS age_avg").
		ColumnExpr("COALESCE(MIN(m.age), 0) AS age_min").
		ColumnExpr("COALESCE(MAX(m.age), 0) AS age_max").
		Scan(ctx, stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// TeamAverages returns the average member age per team, by team name.
func (r *memberRepositoryImpl) TeamAverages(ctx context.Context) ([]*model.TeamAgeStats, error) {
	rows := make([]*model.TeamAgeStats, 0)
	err := r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("t.name AS team_name").
		ColumnExpr("AVG(m.age) AS avg_age").
		Join("JOIN teams AS t ON t.id = m.team_id").
		GroupExpr("t.name").
		OrderExpr("t.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *memberRepositoryImpl) MembersOfTeam(ctx context.Context, teamName string) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	err := r.db.NewSelect().
		Model(&members).
		Join("JOIN teams AS t ON t.id = m.team_id").
		Where("t.name = ?", teamName).
		OrderExpr("m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// MembersNamedLikeTeam is a theta join: members whose username equals some
// team's name, with no relation between the two rows.
func (r *memberRepositoryImpl) MembersNamedLikeTeam(ctx context.Context) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	err := r.db.NewSelect().
		Model(&members).
		TableExpr("teams AS t").
		Where("m.username = t.name").
		OrderExpr("m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// MembersWithTeamFilteredJoin returns every member; team columns are only
// filled for members of teamName.
func (r *memberRepositoryImpl) MembersWithTeamFilteredJoin(ctx context.Context, teamName string) ([]*model.MemberTeam, error) {
	rows := make([]*model.MemberTeam, 0)
	err := r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("m.id AS member_id").
		ColumnExpr("m.username AS username").
		ColumnExpr("m.age AS age").
		ColumnExpr("t.id AS team_id").
		ColumnExpr("t.name AS team_name").
		Join("LEFT JOIN teams AS t").
		JoinOn("t.id = m.team_id").
		JoinOn("t.name = ?", teamName).
		OrderExpr("m.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindWithTeam loads the member and its team in a single joined query.
func (r *memberRepositoryImpl) FindWithTeam(ctx context.Context, username string) (*model.Member, error) {
	member := new(model.Member)
	err := r.db.NewSelect().
		Model(member).
		Relation("Team").
		Where("m.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return member, nil
}

// FindWithoutTeam loads only the member row; Team stays nil.
func (r *memberRepositoryImpl) FindWithoutTeam(ctx context.Context, username string) (*model.Member, error) {
	return r.FindByUsername(ctx, username)
}

// memberSubquery selects from members under the alias ms so it can be
// nested inside queries on m.
func (r *memberRepositoryImpl) memberSubquery(column string) *bun.SelectQuery {
	return r.db.NewSelect().
		TableExpr("members AS ms").
		ColumnExpr(column)
}

func (r *memberRepositoryImpl) Oldest(ctx context.Context) ([]*model.Member, error) {
	return r.membersWhere(ctx, "m.age = (?)", r.memberSubquery("MAX(ms.age)"))
}

func (r *memberRepositoryImpl) AtLeastAverageAge(ctx context.Context) ([]*model.Member, error) {
	return r.membersWhere(ctx, "m.age >= (?)", r.memberSubquery("AVG(ms.age)"))
}

// AgeIn returns members whose age is one of the ages greater than greaterThan.
func (r *memberRepositoryImpl) AgeIn(ctx context.Context, greaterThan int) ([]*model.Member, error) {
	sub := r.memberSubquery("ms.age").Where("ms.age > ?", greaterThan)
	return r.membersWhere(ctx, "m.age IN (?)", sub)
}

func (r *memberRepositoryImpl) membersWhere(ctx context.Context, where string, args ...interface{}) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	err := r.db.NewSelect().
		Model(&members).
		Where(where, args...).
		OrderExpr("m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// WithAverageAge pairs each username with the overall average age computed
// by a scalar subquery in the select list.
func (r *memberRepositoryImpl) WithAverageAge(ctx context.Context) ([]*model.MemberAverage, error) {
	rows := make([]*model.MemberAverage, 0)
	err := r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("m.username AS username").
		ColumnExpr("(?) AS avg_age", r.memberSubquery("AVG(ms.age)")).
		OrderExpr("m.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *memberRepositoryImpl) AgeBrackets(ctx context.Context) ([]*model.MemberAgeBracket, error) {
	rows := make([]*model.MemberAgeBracket, 0)
	err := r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("m.username AS username").
		ColumnExpr("CASE WHEN m.age BETWEEN 0 AND 20 THEN ? WHEN m.age BETWEEN 21 AND 30 THEN ? ELSE ? END AS bracket",
			model.AgeBracketYouth.Name(), model.AgeBracketTwenties.Name(), model.AgeBracketOther.Name()).
		OrderExpr("m.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AgeNames names members aged exactly 10 or 20 with a simple CASE on m.age.
func (r *memberRepositoryImpl) AgeNames(ctx context.Context) ([]*model.MemberAgeName, error) {
	rows := make([]*model.MemberAgeName, 0)
	err := r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("m.username AS username").
		ColumnExpr("CASE m.age WHEN 10 THEN ? WHEN 20 THEN ? ELSE ? END AS age_name", "ten", "twenty", "other").
		OrderExpr("m.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UsernameAgeLabels returns "username_age" for members named username.
func (r *memberRepositoryImpl) UsernameAgeLabels(ctx context.Context, username string) ([]string, error) {
	expr := "m.username || '_' || CAST(m.age AS VARCHAR(11))"
	if r.db.Dialect().Name() == dialect.MySQL {
		expr = "CONCAT(m.username, '_', m.age)"
	}
	return r.scanStrings(ctx, r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr(expr+" AS label").
		Where("m.username = ?", username))
}

// ReplacedUsernames returns every non-NULL username with old replaced.
func (r *memberRepositoryImpl) ReplacedUsernames(ctx context.Context, old, replacement string) ([]string, error) {
	return r.scanStrings(ctx, r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("REPLACE(m.username, ?, ?) AS username", old, replacement).
		Where("m.username IS NOT NULL"))
}

// LowercaseUsernames returns the usernames that are already lower case.
func (r *memberRepositoryImpl) LowercaseUsernames(ctx context.Context) ([]string, error) {
	return r.scanStrings(ctx, r.db.NewSelect().
		Model((*model.Member)(nil)).
		ColumnExpr("m.username AS username").
		Where("m.username = LOWER(m.username)"))
}

func (r *memberRepositoryImpl) scanStrings(ctx context.Context, q *bun.SelectQuery) ([]string, error) {
	values := make([]string, 0)
	if err := q.OrderExpr("m.id ASC").Scan(ctx, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// BulkRename sets username on every member younger than below.
func (r *memberRepositoryImpl) BulkRename(ctx context.Context, below int, username string) (int64, error) {
	return r.bulk(ctx, func(ctx context.Context, tx bun.Tx) (sql.Result, error) {
		return tx.NewUpdate().
			Model((*model.Member)(nil)).
			Set("username = ?", username).
			Where("age < ?", below).
			Exec(ctx)
	})
}

func (r *memberRepositoryImpl) BulkAddAge(ctx context.Context, delta int) (int64, error) {
	return r.bulk(ctx, func(ctx context.Context, tx bun.Tx) (sql.Result, error) {
		return tx.NewUpdate().
			Model((*model.Member)(nil)).
			Set("age = age + ?", delta).
			Where("1 = 1").
			Exec(ctx)
	})
}

func (r *memberRepositoryImpl) BulkMultiplyAge(ctx context.Context, factor int) (int64, error) {
	return r.bulk(ctx, func(ctx context.Context, tx bun.Tx) (sql.Result, error) {
		return tx.NewUpdate().
			Model((*model.Member)(nil)).
			Set("age = age * ?", factor).
			Where("1 = 1").
			Exec(ctx)
	})
}

func (r *memberRepositoryImpl) BulkDeleteOlderThan(ctx context.Context, age int) (int64, error) {
	return r.bulk(ctx, func(ctx context.Context, tx bun.Tx) (sql.Result, error) {
		return tx.NewDelete().
			Model((*model.Member)(nil)).
			Where("age > ?", age).
			Exec(ctx)
	})
}

// bulk runs a write statement in its own transaction and reports the
// affected row count.
func (r *memberRepositoryImpl) bulk(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) (sql.Result, error)) (int64, error) {
	var affected int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
