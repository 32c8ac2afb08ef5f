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

package chirp

import (
	"context"
	"sync"

	"github.com/tomoncle/chirp/database"
	"github.com/tomoncle/chirp/filter"
	"github.com/tomoncle/chirp/repository"
	"github.com/tomoncle/chirp/types"

	"github.com/uptrace/bun"
)

type Service[T any] interface {
	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id any, opts ...repository.QueryOption) (*T, error)

	// All returns all entities.
	All(ctx context.Context, opts ...repository.QueryOption) ([]*T, error)

	// List returns entities that match the provided predicate.
	List(ctx context.Context, predicate filter.Predicate, opts ...repository.QueryOption) ([]*T, error)

	// Exists reports whether any entity matches the predicate.
	Exists(ctx context.Context, predicate filter.Predicate, opts ...repository.QueryOption) (bool, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest, opts ...repository.QueryOption) (*types.Pagination[T], error)

	// Paginate filters by request parameters through the service schema and
	// pages the result.
	Paginate(ctx context.Context, req *filter.Request, actor types.Actor, opts ...repository.QueryOption) (*types.Pagination[T], error)

	// Search returns a limited, unpaginated filtered list.
	Search(ctx context.Context, req *filter.Request, actor types.Actor, opts ...repository.QueryOption) ([]*T, error)

	// SearchURL returns the canonical URL of a Search request.
	SearchURL(req *filter.Request) string

	// Schema returns the filter schema used by Paginate and Search.
	Schema() *filter.Schema

	// Update modifies an existing entity.
	Update(ctx context.Context, model *T, columns ...string) error

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id any) error

	// DeleteWhere removes entities matching the predicate.
	DeleteWhere(ctx context.Context, predicate filter.Predicate) (int64, error)

	// Restore brings back a soft-deleted entity.
	Restore(ctx context.Context, id any) error

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// SaveWithTx inserts entities within an existing transaction.
	SaveWithTx(ctx context.Context, tx *bun.Tx, model ...*T) error

	// SaveOrUpdateWithTx upserts entities based on fields and duplicate keys
	// within a transaction.
	SaveOrUpdateWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, model ...*T) error

	// DeleteWithTx removes an entity within a transaction.
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error

	// DeleteWhereWithTx removes entities matching the predicate within a
	// transaction.
	DeleteWhereWithTx(ctx context.Context, tx *bun.Tx, predicate filter.Predicate) (int64, error)

	// RunInTx runs fn in a transaction on the service's database.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error
}

type baseServiceImpl[T any] struct {
	db     *bun.DB
	schema *filter.Schema
	repo   repository.Repository[T]
	once   sync.Once
}

// NewService returns a default Service implementation using the generic
// repository backed by the global database connection. The connection is
// resolved on first use.
func NewService[T any](schema *filter.Schema) Service[T] {
	return &baseServiceImpl[T]{schema: schema}
}

// NewServiceWithDB returns a Service bound to db.
func NewServiceWithDB[T any](db *bun.DB, schema *filter.Schema) Service[T] {
	return &baseServiceImpl[T]{db: db, schema: schema}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() {
		if s.db == nil {
			s.db = database.GetDB()
		}
		s.repo = repository.NewRepository[T](s.db)
	})
	return s.repo
}

func (s *baseServiceImpl[T]) Schema() *filter.Schema {
	if s.schema == nil {
		return filter.NewSchema()
	}
	return s.schema
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.baseRepo().Create(ctx, model...)
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any, opts ...repository.QueryOption) (*T, error) {
	return s.baseRepo().GetOne(ctx, id, opts...)
}

func (s *baseServiceImpl[T]) All(ctx context.Context, opts ...repository.QueryOption) ([]*T, error) {
	return s.baseRepo().GetAll(ctx, opts...)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, predicate filter.Predicate, opts ...repository.QueryOption) ([]*T, error) {
	return s.baseRepo().List(ctx, predicate, opts...)
}

func (s *baseServiceImpl[T]) Exists(ctx context.Context, predicate filter.Predicate, opts ...repository.QueryOption) (bool, error) {
	return s.baseRepo().Exists(ctx, predicate, opts...)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T, columns ...string) error {
	return s.baseRepo().Update(ctx, model, columns...)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[T]) DeleteWhere(ctx context.Context, predicate filter.Predicate) (int64, error) {
	return s.baseRepo().DeleteWhere(ctx, predicate)
}

func (s *baseServiceImpl[T]) Restore(ctx context.Context, id any) error {
	return s.baseRepo().Restore(ctx, id)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest, opts ...repository.QueryOption) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page, opts...)
}

func (s *baseServiceImpl[T]) Paginate(ctx context.Context, req *filter.Request, actor types.Actor, opts ...repository.QueryOption) (*types.Pagination[T], error) {
	return s.baseRepo().Paginate(ctx, s.Schema(), req, actor, opts...)
}

func (s *baseServiceImpl[T]) Search(ctx context.Context, req *filter.Request, actor types.Actor, opts ...repository.QueryOption) ([]*T, error) {
	return s.baseRepo().Search(ctx, s.Schema(), req, actor, opts...)
}

func (s *baseServiceImpl[T]) SearchURL(req *filter.Request) string {
	return s.baseRepo().SearchURL(req)
}

func (s *baseServiceImpl[T]) SaveWithTx(ctx context.Context, tx *bun.Tx, model ...*T) error {
	return s.baseRepo().CreateWithTx(ctx, tx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdateWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, model ...*T) error {
	return s.baseRepo().UpsertWithTx(ctx, tx, fields, duplicateKeys, model...)
}

func (s *baseServiceImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	return s.baseRepo().DeleteWithTx(ctx, tx, id)
}

func (s *baseServiceImpl[T]) DeleteWhereWithTx(ctx context.Context, tx *bun.Tx, predicate filter.Predicate) (int64, error) {
	return s.baseRepo().DeleteWhereWithTx(ctx, tx, predicate)
}

func (s *baseServiceImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return s.baseRepo().DB().RunInTx(ctx, nil, fn)
}
