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
	"github.com/uptrace/bun"

	"github.com/tomoncle/membersearch/model"
)

// Predicate restricts a member search query. A nil Predicate means the
// criterion is absent and is left out of the conjunction.
type Predicate func(q *bun.SelectQuery) *bun.SelectQuery

// UsernameEq matches m.username exactly; "" is absent.
func UsernameEq(username string) Predicate {
	if username == "" {
		return nil
	}
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("m.username = ?", username)
	}
}

// TeamNameEq matches t.name exactly; "" is absent.
func TeamNameEq(teamName string) Predicate {
	if teamName == "" {
		return nil
	}
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("t.name = ?", teamName)
	}
}

func AgeGoe(age *int) Predicate {
	if age == nil {
		return nil
	}
	v := *age
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("m.age >= ?", v)
	}
}

func AgeLoe(age *int) Predicate {
	if age == nil {
		return nil
	}
	v := *age
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("m.age <= ?", v)
	}
}

// SearchPredicates maps every criterion of cond to its predicate, nil when
// the criterion is absent.
func SearchPredicates(cond model.MemberSearchCondition) []Predicate {
	return []Predicate{
		UsernameEq(cond.Username),
		TeamNameEq(cond.TeamName),
		AgeGoe(cond.AgeGoe),
		AgeLoe(cond.AgeLoe),
	}
}

// Where ANDs the present predicates onto q.
func Where(q *bun.SelectQuery, predicates ...Predicate) *bun.SelectQuery {
	for _, p := range predicates {
		if p != nil {
			q = q.Apply(p)
		}
	}
	return q
}
