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

package types

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// OrderDirection is the sort direction applied to listings.
type OrderDirection int

const (
	OrderDesc OrderDirection = iota
	OrderAsc
)

// ParseOrderDirection reads "asc" or "desc" case-insensitively. Anything
// else, including the empty string, yields OrderDesc.
func ParseOrderDirection(s string) OrderDirection {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return OrderAsc
	}
	return OrderDesc
}

func (o OrderDirection) IsValid() bool {
	return o == OrderDesc || o == OrderAsc
}

func (o OrderDirection) Number() int {
	if !o.IsValid() {
		return IllegalValue
	}
	return int(o)
}

// String returns the SQL keyword for the direction.
func (o OrderDirection) String() string {
	switch o {
	case OrderAsc:
		return "ASC"
	case OrderDesc:
		return "DESC"
	}
	return IllegalName
}

func (o OrderDirection) Desc() string {
	switch o {
	case OrderAsc:
		return "oldest first"
	case OrderDesc:
		return "newest first"
	}
	return IllegalDesc
}

func (o OrderDirection) Name() string {
	if !o.IsValid() {
		return IllegalName
	}
	return strings.ToLower(o.String())
}
