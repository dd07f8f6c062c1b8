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

// MemberSearchCondition is a sparse filter. Empty strings and nil bounds
// mean "do not filter on this".
type MemberSearchCondition struct {
	Username string `json:"username,omitempty"`
	TeamName string `json:"team_name,omitempty"`
	AgeGoe   *int   `json:"age_goe,omitempty"`
	AgeLoe   *int   `json:"age_loe,omitempty"`
}

// MemberTeam is the flattened member row with its team, if any.
type MemberTeam struct {
	MemberID int64   `bun:"member_id" json:"member_id"`
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age" json:"age"`
	TeamID   *int64  `bun:"team_id" json:"team_id"`
	TeamName *string `bun:"team_name" json:"team_name"`
}

// MemberStats aggregates member ages.
type MemberStats struct {
	Count int64   `bun:"member_count" json:"count"`
	Sum   int64   `bun:"age_sum" json:"sum"`
	Avg   float64 `bun:"age_avg" json:"avg"`
	Min   int     `bun:"age_min" json:"min"`
	Max   int     `bun:"age_max" json:"max"`
}

type TeamAgeStats struct {
	TeamName string  `bun:"team_name" json:"team_name"`
	AvgAge   float64 `bun:"avg_age" json:"avg_age"`
}

// MemberAverage pairs a username with the average age of all members.
type MemberAverage struct {
	Username *string `bun:"username" json:"username"`
	AvgAge   float64 `bun:"avg_age" json:"avg_age"`
}

// UsernameAge is a minimal projection used by the SQL function queries.
type UsernameAge struct {
	Username *string `bun:"username" json:"username"`
	Age      int     `bun:"age" json:"age"`
}

// MemberAgeBracket is a member's username with its age bracket.
type MemberAgeBracket struct {
	Username *string    `bun:"username" json:"username"`
	Bracket  AgeBracket `bun:"bracket" json:"bracket"`
}

// MemberAgeName labels a member by an exact age, "other" for any age
// without a label.
type MemberAgeName struct {
	Username *string `bun:"username" json:"username"`
	Name     string  `bun:"age_name" json:"age_name"`
}

// IntPtr is a helper for building conditions.
func IntPtr(v int) *int { return &v }

func StringPtr(v string) *string { return &v }
