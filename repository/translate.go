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
	"fmt"

	"github.com/tomoncle/chirp/filter"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const (
	sepAnd = " AND "
	sepOr  = " OR "
)

// conditions renders a filter.Predicate into Bun where clauses. Columns are
// qualified with ?TableAlias, with table when set, or left bare.
type conditions struct {
	db    *bun.DB
	table string
	bare  bool
}

// ApplyPredicate appends predicate to the WHERE clause of q. An empty
// predicate leaves q untouched.
func ApplyPredicate(db *bun.DB, q bun.QueryBuilder, predicate filter.Predicate) bun.QueryBuilder {
	return conditions{db: db}.apply(q, predicate)
}

func (c conditions) apply(q bun.QueryBuilder, predicate filter.Predicate) bun.QueryBuilder {
	if predicate == nil || predicate.Empty() {
		return q
	}
	return c.where(q, predicate, sepAnd)
}

func (c conditions) where(q bun.QueryBuilder, predicate filter.Predicate, sep string) bun.QueryBuilder {
	switch p := predicate.(type) {
	case filter.Group:
		inner := sepAnd
		if p.Op == filter.Or {
			inner = sepOr
		}
		return q.WhereGroup(sep, func(q bun.QueryBuilder) bun.QueryBuilder {
			for _, item := range p.Items {
				if item == nil || item.Empty() {
					continue
				}
				q = c.where(q, item, inner)
			}
			return q
		})
	case filter.Like:
		query, args := c.column(p.Column)
		return c.add(q, sep, query+" "+c.like()+" ?", append(args, p.Pattern())...)
	case filter.Equals:
		query, args := c.column(p.Column)
		return c.add(q, sep, query+" = ?", append(args, p.Value)...)
	case filter.Related:
		sub := c.db.NewSelect().Table(p.Table).Column(p.Key)
		if p.SoftDelete != "" {
			sub = sub.Where("?.? IS NULL", bun.Ident(p.Table), bun.Ident(p.SoftDelete))
		}
		nested := conditions{db: c.db, table: p.Table}
		sub = sub.ApplyQueryBuilder(func(qb bun.QueryBuilder) bun.QueryBuilder {
			return nested.apply(qb, p.Where)
		})
		query, args := c.column(p.Column)
		return c.add(q, sep, query+" IN (?)", append(args, sub)...)
	default:
		panic(fmt.Sprintf("repository: unsupported predicate %T", predicate))
	}
}

func (c conditions) add(q bun.QueryBuilder, sep, query string, args ...interface{}) bun.QueryBuilder {
	if sep == sepOr {
		return q.WhereOr(query, args...)
	}
	return q.Where(query, args...)
}

func (c conditions) column(name string) (string, []interface{}) {
	switch {
	case c.bare:
		return "?", []interface{}{bun.Ident(name)}
	case c.table != "":
		return "?.?", []interface{}{bun.Ident(c.table), bun.Ident(name)}
	default:
		return "?TableAlias.?", []interface{}{bun.Ident(name)}
	}
}

// like is case-insensitive on every supported dialect.
func (c conditions) like() string {
	if c.db != nil && c.db.Dialect().Name() == dialect.PG {
		return "ILIKE"
	}
	return "LIKE"
}
