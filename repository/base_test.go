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
	"github.com/uptrace/bun"

	"github.com/tomoncle/membersearch/model"
	"github.com/tomoncle/membersearch/types"
)

func TestRepositoryCrud(t *testing.T) {
	db, _ := newTestDB(t)
	teams := NewRepository[model.Team](db)
	ctx := context.Background()

	a, b := model.NewTeam("teamA"), model.NewTeam("teamB")
	require.NoError(t, teams.Create(ctx, a, b))

	got, err := teams.GetOne(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "teamA", got.Name)

	all, err := teams.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	listed, err := teams.List(ctx, types.NewQueryFilter("t.name = ?", "teamB"))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, b.ID, listed[0].ID)

	queried, err := teams.Query(ctx, "t.name LIKE ?", "team%")
	require.NoError(t, err)
	require.Len(t, queried, 2)

	b.Name = "teamC"
	require.NoError(t, teams.Update(ctx, b))
	got, err = teams.GetOne(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "teamC", got.Name)

	require.NoError(t, teams.Delete(ctx, a.ID))
	all, err = teams.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestRepositoryUpsert(t *testing.T) {
	db, _ := newTestDB(t)
	teams := NewRepository[model.Team](db)
	ctx := context.Background()

	require.Error(t, teams.Upsert(ctx, nil, nil, &model.Team{ID: 1, Name: "x"}))

	require.NoError(t, teams.Upsert(ctx, []string{"name"}, []string{"id"}, &model.Team{ID: 1, Name: "teamA"}))
	require.NoError(t, teams.Upsert(ctx, []string{"name"}, []string{"id"}, &model.Team{ID: 1, Name: "renamed"}))

	all, err := teams.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "renamed", all[0].Name)
}

func TestRepositoryWithTx(t *testing.T) {
	db, _ := newTestDB(t)
	teams := NewRepository[model.Team](db)
	ctx := context.Background()

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		team := model.NewTeam("teamA")
		if err := teams.CreateWithTx(ctx, &tx, team); err != nil {
			return err
		}
		team.Name = "teamB"
		return teams.UpdateWithTx(ctx, &tx, team)
	})
	require.NoError(t, err)

	all, err := teams.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "teamB", all[0].Name)

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return teams.DeleteWithTx(ctx, &tx, all[0].ID)
	})
	require.NoError(t, err)
	all, err = teams.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestRepositoryPageAlwaysCounts(t *testing.T) {
	db, counter := newTestDB(t)
	teams := NewRepository[model.Team](db)
	ctx := context.Background()

	require.NoError(t, teams.Create(ctx, model.NewTeam("a"), model.NewTeam("b"), model.NewTeam("c")))
	counter.Reset()

	req := types.NewPageRequest(1, 2).
		WithFilter(types.NewQueryFilter("t.name <> ?", "c")).
		WithOrders("t.name DESC")
	page, err := teams.Page(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, "b", page.Items[0].Name)
	require.Equal(t, 1, counter.Stats().Counts)
}
