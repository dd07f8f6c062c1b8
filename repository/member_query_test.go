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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomoncle/membersearch/model"
	"github.com/tomoncle/membersearch/types"
)

func TestFindByUsername(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)
	ctx := context.Background()

	m, err := repo.FindByUsername(ctx, "member3")
	require.NoError(t, err)
	require.Equal(t, 30, m.Age)

	_, err = repo.FindByUsername(ctx, "nobody")
	require.Error(t, err)
}

func TestListOrderedPutsNullUsernamesLast(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.SaveMembers(ctx,
		&model.Member{Age: 100},
		model.NewMember("member6", 100, nil),
		model.NewMember("member5", 100, nil),
	))

	members, err := repo.ListOrdered(ctx, 100)
	require.NoError(t, err)
	require.Len(t, members, 3)
	require.Equal(t, "member5", members[0].Name())
	require.Equal(t, "member6", members[1].Name())
	require.Nil(t, members[2].Username)
}

func TestListPage(t *testing.T) {
	db, counter := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)
	counter.Reset()

	page, err := repo.ListPage(context.Background(), types.NewOffsetPageRequest(1, 2))
	require.NoError(t, err)
	require.Equal(t, []string{"member3", "member2"}, memberNames(page.Items))
	require.Equal(t, 4, page.Total)
	require.Equal(t, 1, counter.Stats().Counts)
}

func TestStats(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.Count)
	require.Equal(t, int64(100), stats.Sum)
	require.InDelta(t, 25.0, stats.Avg, 0.001)
	require.Equal(t, 10, stats.Min)
	require.Equal(t, 40, stats.Max)
}

func TestTeamAverages(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)

	rows, err := repo.TeamAverages(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "teamA", rows[0].TeamName)
	require.InDelta(t, 15.0, rows[0].AvgAge, 0.001)
	require.Equal(t, "teamB", rows[1].TeamName)
	require.InDelta(t, 35.0, rows[1].AvgAge, 0.001)
}

func TestJoins(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	f := seedFixture(t, repo)
	ctx := context.Background()

	t.Run("inner join", func(t *testing.T) {
		members, err := repo.MembersOfTeam(ctx, "teamA")
		require.NoError(t, err)
		require.Equal(t, []string{"member1", "member2"}, memberNames(members))
	})

	t.Run("theta join", func(t *testing.T) {
		require.NoError(t, repo.SaveMembers(ctx,
			model.NewMember("teamA", 0, nil),
			model.NewMember("teamB", 0, nil),
			model.NewMember("teamC", 0, nil),
		))
		members, err := repo.MembersNamedLikeTeam(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"teamA", "teamB"}, memberNames(members))
	})

	t.Run("left join with on filter", func(t *testing.T) {
		rows, err := repo.MembersWithTeamFilteredJoin(ctx, "teamA")
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(rows), 4)
		for _, row := range rows {
			switch *row.Username {
			case "member1", "member2":
				require.NotNil(t, row.TeamName)
				require.Equal(t, "teamA", *row.TeamName)
				require.Equal(t, f.teamA.ID, *row.TeamID)
			default:
				require.Nil(t, row.TeamName)
				require.Nil(t, row.TeamID)
			}
		}
	})
}

func TestFetchJoin(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)
	ctx := context.Background()

	withTeam, err := repo.FindWithTeam(ctx, "member1")
	require.NoError(t, err)
	require.NotNil(t, withTeam.Team)
	require.Equal(t, "teamA", withTeam.Team.Name)

	withoutTeam, err := repo.FindWithoutTeam(ctx, "member1")
	require.NoError(t, err)
	require.Nil(t, withoutTeam.Team)
	require.NotNil(t, withoutTeam.TeamID)
}

func TestSubqueries(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)
	ctx := context.Background()

	oldest, err := repo.Oldest(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"member4"}, memberNames(oldest))

	aboveAvg, err := repo.AtLeastAverageAge(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"member3", "member4"}, memberNames(aboveAvg))

	in, err := repo.AgeIn(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"member2", "member3", "member4"}, memberNames(in))

	avg, err := repo.WithAverageAge(ctx)
	require.NoError(t, err)
	require.Len(t, avg, 4)
	for _, row := range avg {
		require.InDelta(t, 25.0, row.AvgAge, 0.001)
	}
}

func TestAgeBrackets(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)

	rows, err := repo.AgeBrackets(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	want := []model.AgeBracket{
		model.AgeBracketYouth,
		model.AgeBracketYouth,
		model.AgeBracketTwenties,
		model.AgeBracketOther,
	}
	for i, row := range rows {
		require.Equal(t, want[i], row.Bracket, "row %d", i)
	}
}

func TestAgeNames(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)

	rows, err := repo.AgeNames(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	var names []string
	for _, row := range rows {
		names = append(names, row.Name)
	}
	require.Equal(t, []string{"ten", "twenty", "other", "other"}, names)
}

func TestSQLFunctions(t *testing.T) {
	db, _ := newTestDB(t)
	repo := NewMemberRepository(db)
	seedFixture(t, repo)
	ctx := context.Background()

	labels, err := repo.UsernameAgeLabels(ctx, "member1")
	require.NoError(t, err)
	require.Equal(t, []string{"member1_10"}, labels)

	replaced, err := repo.ReplacedUsernames(ctx, "member", "M")
	require.NoError(t, err)
	require.Equal(t, []string{"M1", "M2", "M3", "M4"}, replaced)

	require.NoError(t, repo.SaveMembers(ctx, model.NewMember("Shouty", 1, nil)))
	lower, err := repo.LowercaseUsernames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"member1", "member2", "member3", "member4"}, lower)
}

func TestBulkOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("rename", func(t *testing.T) {
		db, _ := newTestDB(t)
		repo := NewMemberRepository(db)
		seedFixture(t, repo)

		n, err := repo.BulkRename(ctx, 28, "guest")
		require.NoError(t, err)
		require.Equal(t, int64(2), n)

		members, err := repo.Members(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"guest", "guest", "member3", "member4"}, memberNames(members))
	})

	t.Run("add", func(t *testing.T) {
		db, _ := newTestDB(t)
		repo := NewMemberRepository(db)
		seedFixture(t, repo)

		n, err := repo.BulkAddAge(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, int64(4), n)

		m, err := repo.FindByUsername(ctx, "member1")
		require.NoError(t, err)
		require.Equal(t, 11, m.Age)
	})

	t.Run("multiply", func(t *testing.T) {
		db, _ := newTestDB(t)
		repo := NewMemberRepository(db)
		seedFixture(t, repo)

		n, err := repo.BulkMultiplyAge(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, int64(4), n)

		m, err := repo.FindByUsername(ctx, "member4")
		require.NoError(t, err)
		require.Equal(t, 80, m.Age)
	})

	t.Run("delete", func(t *testing.T) {
		db, counter := newTestDB(t)
		repo := NewMemberRepository(db)
		seedFixture(t, repo)
		counter.Reset()

		n, err := repo.BulkDeleteOlderThan(ctx, 18)
		require.NoError(t, err)
		require.Equal(t, int64(3), n)
		require.Equal(t, 1, counter.Stats().Deletes)

		members, err := repo.Members(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"member1"}, memberNames(members))
	})
}
