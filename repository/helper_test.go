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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tomoncle/membersearch/database"
	"github.com/tomoncle/membersearch/model"
)

// fixture is teamA{member1/10, member2/20} and teamB{member3/30, member4/40}.
type fixture struct {
	teamA, teamB *model.Team
	members      []*model.Member
}

func (f *fixture) member(username string) *model.Member {
	for _, m := range f.members {
		if m.Name() == username {
			return m
		}
	}
	return nil
}

// newTestDB opens a private in-memory sqlite database with the member
// schema and a query counter attached.
func newTestDB(t *testing.T) (*bun.DB, *database.QueryCounter) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, m := range []interface{}{(*model.Team)(nil), (*model.Member)(nil)} {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	counter := database.NewQueryCounter()
	db.AddQueryHook(counter)
	return db, counter
}

func seedFixture(t *testing.T, repo MemberRepository) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{teamA: model.NewTeam("teamA"), teamB: model.NewTeam("teamB")}
	require.NoError(t, repo.SaveTeams(ctx, f.teamA, f.teamB))
	require.NotZero(t, f.teamA.ID)

	f.members = []*model.Member{
		model.NewMember("member1", 10, f.teamA),
		model.NewMember("member2", 20, f.teamA),
		model.NewMember("member3", 30, f.teamB),
		model.NewMember("member4", 40, f.teamB),
	}
	require.NoError(t, repo.SaveMembers(ctx, f.members...))
	return f
}

func usernames(rows []*model.MemberTeam) []string {
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Username != nil {
			names = append(names, *r.Username)
		}
	}
	return names
}

func memberNames(members []*model.Member) []string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name())
	}
	return names
}
