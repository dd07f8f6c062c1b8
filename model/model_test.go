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

package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomoncle/membersearch/database"
	"github.com/tomoncle/membersearch/types"
)

func TestAgeBracketOf(t *testing.T) {
	tests := []struct {
		age  int
		want AgeBracket
	}{
		{0, AgeBracketYouth},
		{20, AgeBracketYouth},
		{21, AgeBracketTwenties},
		{30, AgeBracketTwenties},
		{31, AgeBracketOther},
		{-1, AgeBracketOther},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, AgeBracketOf(tt.age), "age %d", tt.age)
	}
}

func TestAgeBracketScan(t *testing.T) {
	var b AgeBracket
	require.NoError(t, b.Scan("21~30"))
	require.Equal(t, AgeBracketTwenties, b)

	require.NoError(t, b.Scan([]byte("other")))
	require.Equal(t, AgeBracketOther, b)

	require.NoError(t, b.Scan("bogus"))
	require.False(t, b.IsValid())
	require.Equal(t, types.IllegalName, b.Name())
	require.Equal(t, types.IllegalValue, b.Number())

	require.Error(t, b.Scan(42))

	v, err := AgeBracketYouth.Value()
	require.NoError(t, err)
	require.Equal(t, "0~20", v)

	_, err = AgeBracket(0).Value()
	require.Error(t, err)
}

func TestMemberChangeTeam(t *testing.T) {
	team := &Team{ID: 7, Name: "teamA"}
	m := NewMember("member1", 10, team)
	require.Equal(t, int64(7), *m.TeamID)
	require.Same(t, m, team.Members[0])

	m.ChangeTeam(nil)
	require.Nil(t, m.TeamID)
	require.Nil(t, m.Team)

	unnamed := &Member{}
	require.Equal(t, "", unnamed.Name())
	require.Contains(t, m.String(), "member1")
}

func TestRegisterOrdersTeamsFirst(t *testing.T) {
	Register()
	Register()

	var names []string
	for _, inst := range database.RegisteredModelInstances() {
		switch inst.(type) {
		case *Team:
			names = append(names, "team")
		case *Member:
			names = append(names, "member")
		}
	}
	require.Equal(t, []string{"team", "member"}, names)

	var fks []database.ForeignKeyConstraint
	for _, inst := range database.RegisteredModelInstances() {
		if p, ok := inst.(database.ForeignKeyProvider); ok {
			fks = append(fks, p.ForeignKeys()...)
		}
	}
	require.Len(t, fks, 1)
	require.Equal(t, "teams", fks[0].ReferenceTable)
}
