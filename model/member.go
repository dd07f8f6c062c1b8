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
	"fmt"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/membersearch/database"
)

// Member belongs to at most one team. Username is nullable.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID       int64   `bun:"id,pk,autoincrement" json:"id"`
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age,notnull" json:"age"`
	TeamID   *int64  `bun:"team_id" json:"team_id"`
	Team     *Team   `bun:"rel:belongs-to,join:team_id=id" json:"team,omitempty"`
}

// NewMember builds a member; a nil team leaves it unassigned.
func NewMember(username string, age int, team *Team) *Member {
	m := &Member{Username: &username, Age: age}
	m.ChangeTeam(team)
	return m
}

// ChangeTeam moves the member to team and appends it to team.Members.
func (m *Member) ChangeTeam(team *Team) {
	m.Team = team
	if team == nil {
		m.TeamID = nil
		return
	}
	if team.ID != 0 {
		id := team.ID
		m.TeamID = &id
	}
	team.Members = append(team.Members, m)
}

// Name returns the username or "" when it is NULL.
func (m *Member) Name() string {
	if m.Username == nil {
		return ""
	}
	return *m.Username
}

func (m *Member) String() string {
	return fmt.Sprintf("Member(id=%d, username=%s, age=%d)", m.ID, m.Name(), m.Age)
}

// ForeignKeys implements database.ForeignKeyProvider.
func (m *Member) ForeignKeys() []database.ForeignKeyConstraint {
	return []database.ForeignKeyConstraint{{
		Table:           "members",
		Column:          "team_id",
		ReferenceTable:  "teams",
		ReferenceColumn: "id",
		OnDelete:        "SET NULL",
		ConstraintName:  "fk_members_team_id",
	}}
}

var registerOnce sync.Once

// Register adds Team and Member to the database model registry. Teams sort
// first so members can reference them.
func Register() {
	registerOnce.Do(func() {
		database.RegisteredModel(database.NewModelAdapter((*Team)(nil), 1))
		database.RegisteredModel(database.NewModelAdapter((*Member)(nil), 2))
	})
}
