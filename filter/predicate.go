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

package filter

import (
	"fmt"
	"strings"
)

// Op joins the members of a Group.
type Op int

const (
	And Op = iota
	Or
)

func (o Op) String() string {
	if o == Or {
		return "OR"
	}
	return "AND"
}

// Predicate is an immutable condition tree over a listing's rows.
// Implementations are Group, Like, Equals and Related.
type Predicate interface {
	fmt.Stringer
	// Empty reports whether the predicate constrains nothing.
	Empty() bool
}

// Group joins its items with Op. An empty group matches every row.
type Group struct {
	Op    Op
	Items []Predicate
}

// Like matches rows whose Column contains Value as a substring.
type Like struct {
	Column string
	Value  string
}

// Equals matches rows whose Column equals Value.
type Equals struct {
	Column string
	Value  any
}

// Related matches rows whose Column appears in Key of the rows of Table
// that satisfy Where. With SoftDelete set, Table rows where that column is
// not null are left out.
type Related struct {
	Column     string
	Table      string
	Key        string
	Where      Predicate
	SoftDelete string
}

// AllOf returns an AND group of the non-empty predicates.
func AllOf(items ...Predicate) Group {
	return Group{Op: And, Items: nonEmpty(items)}
}

// AnyOf returns an OR group of the non-empty predicates.
func AnyOf(items ...Predicate) Group {
	return Group{Op: Or, Items: nonEmpty(items)}
}

func nonEmpty(items []Predicate) []Predicate {
	out := make([]Predicate, 0, len(items))
	for _, p := range items {
		if p != nil && !p.Empty() {
			out = append(out, p)
		}
	}
	return out
}

func (g Group) Empty() bool {
	for _, p := range g.Items {
		if p != nil && !p.Empty() {
			return false
		}
	}
	return true
}

// And returns a new AND group holding g followed by the non-empty extras.
// g itself is not modified.
func (g Group) And(extra ...Predicate) Group {
	items := make([]Predicate, 0, len(g.Items)+len(extra))
	if g.Op == And {
		items = append(items, g.Items...)
	} else if !g.Empty() {
		items = append(items, g)
	}
	return Group{Op: And, Items: append(items, nonEmpty(extra)...)}
}

func (g Group) String() string {
	parts := make([]string, 0, len(g.Items))
	for _, p := range g.Items {
		if p == nil || p.Empty() {
			continue
		}
		parts = append(parts, p.String())
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, " "+g.Op.String()+" ") + ")"
}

func (l Like) Empty() bool { return l.Column == "" }

func (l Like) String() string {
	return fmt.Sprintf("%s LIKE '%%%s%%'", l.Column, l.Value)
}

// Pattern is the LIKE operand.
func (l Like) Pattern() string {
	return "%" + l.Value + "%"
}

func (e Equals) Empty() bool { return e.Column == "" }

func (e Equals) String() string {
	return fmt.Sprintf("%s = %v", e.Column, e.Value)
}

func (r Related) Empty() bool { return r.Column == "" || r.Table == "" || r.Key == "" }

func (r Related) String() string {
	conds := make([]string, 0, 2)
	if r.SoftDelete != "" {
		conds = append(conds, r.SoftDelete+" IS NULL")
	}
	if r.Where != nil && !r.Where.Empty() {
		conds = append(conds, r.Where.String())
	}
	inner := ""
	if len(conds) > 0 {
		inner = " WHERE " + strings.Join(conds, " AND ")
	}
	return fmt.Sprintf("%s IN (SELECT %s FROM %s%s)", r.Column, r.Key, r.Table, inner)
}
