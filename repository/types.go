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
	"errors"

	"github.com/tomoncle/chirp/filter"
	"github.com/tomoncle/chirp/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// ErrRecordNotFound is returned by point lookups and mutations that match no row.
var ErrRecordNotFound = errors.New("record not found")

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any, opts ...QueryOption) (*T, error)

	GetAll(ctx context.Context, opts ...QueryOption) ([]*T, error)

	List(ctx context.Context, predicate filter.Predicate, opts ...QueryOption) ([]*T, error)

	Exists(ctx context.Context, predicate filter.Predicate, opts ...QueryOption) (bool, error)

	Create(ctx context.Context, entity ...*T) error

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	// Update writes entity by primary key. With columns, only those are set.
	Update(ctx context.Context, entity *T, columns ...string) error

	// Delete removes the row with id. Soft-delete models are only marked.
	Delete(ctx context.Context, id any) error

	// DeleteWhere removes every row matching predicate and reports how many.
	DeleteWhere(ctx context.Context, predicate filter.Predicate) (int64, error)

	// Restore clears the soft-delete mark of the row with id.
	Restore(ctx context.Context, id any) error
}

// TransactionRepository defines CRUD operations executed within a transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error

	// UpsertWithTx inserts entities, updating fields on a duplicateKeys conflict.
	UpsertWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error

	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error

	DeleteWhereWithTx(ctx context.Context, tx *bun.Tx, predicate filter.Predicate) (int64, error)
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	// Page returns one window ordered by creation time.
	Page(ctx context.Context, page *types.PageRequest, opts ...QueryOption) (*types.Pagination[T], error)

	// Paginate filters by the request through schema, then pages the
	// result. The page path is the canonical request URL without page.
	Paginate(ctx context.Context, schema *filter.Schema, req *filter.Request, actor types.Actor, opts ...QueryOption) (*types.Pagination[T], error)
}

// SearchRepository defines unpaginated filtered lookups.
type SearchRepository[T any] interface {
	// Search returns at most the request's limit of filtered rows. An empty
	// request matches nothing.
	Search(ctx context.Context, schema *filter.Schema, req *filter.Request, actor types.Actor, opts ...QueryOption) ([]*T, error)

	// SearchURL returns the canonical request URL with page kept.
	SearchURL(req *filter.Request) string
}

// Repository combines CRUD, pagination, search, and transactional operations
// and exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	SearchRepository[T]
	TransactionRepository[T]
	DB() *bun.DB
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
