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
	"database/sql/driver"
	"fmt"

	"github.com/tomoncle/membersearch/types"
)

// AgeBracket is the label computed by the CASE expression in age bracket
// queries. It is stored and scanned by name.
type AgeBracket int

const (
	AgeBracketYouth AgeBracket = iota + 1
	AgeBracketTwenties
	AgeBracketOther
)

var _ types.BaseEnum = AgeBracket(0)

var ageBracketNames = map[AgeBracket]string{
	AgeBracketYouth:    "0~20",
	AgeBracketTwenties: "21~30",
	AgeBracketOther:    "other",
}

var ageBracketDescs = map[AgeBracket]string{
	AgeBracketYouth:    "aged 0 to 20",
	AgeBracketTwenties: "aged 21 to 30",
	AgeBracketOther:    "older than 30",
}

// AgeBrackets lists every valid bracket in ascending order.
func AgeBrackets() []AgeBracket {
	return []AgeBracket{AgeBracketYouth, AgeBracketTwenties, AgeBracketOther}
}

// AgeBracketOf classifies age the same way the SQL CASE expression does.
func AgeBracketOf(age int) AgeBracket {
	switch {
	case age >= 0 && age <= 20:
		return AgeBracketYouth
	case age >= 21 && age <= 30:
		return AgeBracketTwenties
	default:
		return AgeBracketOther
	}
}

func ParseAgeBracket(name string) AgeBracket {
	return types.EnumByName(AgeBrackets(), name, AgeBracket(types.IllegalValue))
}

func (b AgeBracket) IsValid() bool {
	_, ok := ageBracketNames[b]
	return ok
}

func (b AgeBracket) Number() int {
	if !b.IsValid() {
		return types.IllegalValue
	}
	return int(b)
}

func (b AgeBracket) Name() string {
	if name, ok := ageBracketNames[b]; ok {
		return name
	}
	return types.IllegalName
}

func (b AgeBracket) String() string { return b.Name() }

func (b AgeBracket) Desc() string {
	if desc, ok := ageBracketDescs[b]; ok {
		return desc
	}
	return types.IllegalDesc
}

// Scan implements sql.Scanner.
func (b *AgeBracket) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*b = ParseAgeBracket(v)
	case []byte:
		*b = ParseAgeBracket(string(v))
	case nil:
		*b = AgeBracket(types.IllegalValue)
	default:
		return fmt.Errorf("cannot scan %T into AgeBracket", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (b AgeBracket) Value() (driver.Value, error) {
	if !b.IsValid() {
		return nil, fmt.Errorf("invalid age bracket: %d", int(b))
	}
	return b.Name(), nil
}
