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
	"github.com/tomoncle/chirp/filter"
	"github.com/uptrace/bun"
)

// QueryOption modifies a select query before it runs.
type QueryOption func(q *bun.SelectQuery) *bun.SelectQuery

func applyOptions(q *bun.SelectQuery, opts []QueryOption) *bun.SelectQuery {
	for _, opt := range opts {
		if opt != nil {
			q = opt(q)
		}
	}
	return q
}

// Where restricts the query to rows matching predicate.
func Where(predicate filter.Predicate) QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if predicate == nil || predicate.Empty() {
			return q
		}
		db := q.DB()
		return q.ApplyQueryBuilder(func(qb bun.QueryBuilder) bun.QueryBuilder {
			return ApplyPredicate(db, qb, predicate)
		})
	}
}

// WithTrashed includes soft-deleted rows.
func WithTrashed() QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.WhereAllWithDeleted()
	}
}

// OnlyTrashed selects soft-deleted rows only.
func OnlyTrashed() QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.WhereDeleted()
	}
}

// WithRelation eager-loads the named model relation.
func WithRelation(name string, apply ...func(*bun.SelectQuery) *bun.SelectQuery) QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation(name, apply...)
	}
}

// PublishedOnly keeps rows whose is_published flag is set.
func PublishedOnly() QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident("is_published"), true)
	}
}

// OrderBy adds ordering expressions ahead of the creation-time order.
func OrderBy(exprs ...string) QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, expr := range exprs {
			q = q.OrderExpr(expr)
		}
		return q
	}
}
