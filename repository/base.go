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
	"fmt"
	"strings"

	"github.com/tomoncle/chirp/database"
	"github.com/tomoncle/chirp/filter"
	"github.com/tomoncle/chirp/pagination"
	"github.com/tomoncle/chirp/types"

	"github.com/uptrace/bun/schema"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

type baseRepositoryImpl[T any] struct {
	db *bun.DB
}

// NewRepository returns a generic repository backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) DB() *bun.DB { return r.db }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) ValsToSlice(entity ...*T) []*T {
	entities := make([]*T, len(entity))
	copy(entities, entity)
	return entities
}

func notFound(err error) error {
	if is, kind := database.IsSqlError(err); is && kind == database.NoRowsErr {
		return ErrRecordNotFound
	}
	return err
}

func affected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any, opts ...QueryOption) (*T, error) {
	var entity T
	query := r.db.NewSelect().Model(&entity).Where("?TableAlias.id = ?", id)
	err := applyOptions(query, opts).Limit(1).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context, opts ...QueryOption) ([]*T, error) {
	var entities []*T
	err := applyOptions(r.db.NewSelect().Model(&entities), opts).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, predicate filter.Predicate, opts ...QueryOption) ([]*T, error) {
	var entities []*T
	query := Where(predicate)(r.db.NewSelect().Model(&entities))
	err := applyOptions(query, opts).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Exists(ctx context.Context, predicate filter.Predicate, opts ...QueryOption) (bool, error) {
	query := Where(predicate)(r.db.NewSelect().Model((*T)(nil)))
	return applyOptions(query, opts).Exists(ctx)
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest, opts ...QueryOption) (*types.Pagination[T], error) {
	var entities []*T
	query := applyOptions(r.db.NewSelect().Model(&entities), opts)
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	pagination.Path = pageRequest.GetPath()
	total, err := query.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return pagination, nil
	}
	err = query.
		OrderExpr("?TableAlias.? "+pageRequest.GetOrder().String(), bun.Ident("created_at")).
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Paginate(ctx context.Context, schema *filter.Schema, req *filter.Request, actor types.Actor, opts ...QueryOption) (*types.Pagination[T], error) {
	path := pagination.Canonicalize(req.Path(), req.Params(), true)
	options := make([]QueryOption, 0, len(opts)+1)
	options = append(options, Where(schema.Predicate(ctx, req, actor)))
	options = append(options, opts...)
	return r.Page(ctx, req.PageRequest(types.DefaultPageSize, path), options...)
}

func (r *baseRepositoryImpl[T]) Search(ctx context.Context, schema *filter.Schema, req *filter.Request, actor types.Actor, opts ...QueryOption) ([]*T, error) {
	if req.IsEmpty() {
		return []*T{}, nil
	}
	var entities []*T
	query := Where(schema.Predicate(ctx, req, actor))(r.db.NewSelect().Model(&entities))
	err := applyOptions(query, opts).
		OrderExpr("?TableAlias.? "+req.Order().String(), bun.Ident("created_at")).
		Limit(req.Limit(types.DefaultPageSize)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) SearchURL(req *filter.Request) string {
	return pagination.Canonicalize(req.Path(), req.Params(), false)
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	entities := r.ValsToSlice(entity...)
	_, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	return r.multipleUpsert(ctx, nil, fields, duplicateKeys, entity...)
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T, columns ...string) error {
	query := r.db.NewUpdate().Model(entity).WherePK()
	if len(columns) > 0 {
		query = query.Column(columns...)
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	return r.delete(ctx, r.db, id)
}

func (r *baseRepositoryImpl[T]) delete(ctx context.Context, db bun.IDB, id any) error {
	res, err := db.NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *baseRepositoryImpl[T]) DeleteWhere(ctx context.Context, predicate filter.Predicate) (int64, error) {
	return r.deleteWhere(ctx, r.db, predicate)
}

func (r *baseRepositoryImpl[T]) deleteWhere(ctx context.Context, db bun.IDB, predicate filter.Predicate) (int64, error) {
	if predicate == nil || predicate.Empty() {
		return 0, fmt.Errorf("refusing to delete without a predicate")
	}
	where := conditions{db: r.db, bare: true}
	res, err := db.NewDelete().
		Model((*T)(nil)).
		ApplyQueryBuilder(func(qb bun.QueryBuilder) bun.QueryBuilder {
			return where.apply(qb, predicate)
		}).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *baseRepositoryImpl[T]) Restore(ctx context.Context, id any) error {
	res, err := r.db.NewUpdate().
		Model((*T)(nil)).
		WhereDeleted().
		Set("? = NULL", bun.Ident("deleted_at")).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return affected(res)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error {
	entities := r.ValsToSlice(entity...)
	_, err := tx.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) UpsertWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error {
	return r.multipleUpsert(ctx, tx, fields, duplicateKeys, entity...)
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	return r.delete(ctx, tx, id)
}

func (r *baseRepositoryImpl[T]) DeleteWhereWithTx(ctx context.Context, tx *bun.Tx, predicate filter.Predicate) (int64, error) {
	return r.deleteWhere(ctx, tx, predicate)
}

func (r *baseRepositoryImpl[T]) multipleUpsert(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}

	var db bun.IDB = r.db
	if tx != nil {
		db = tx
	}

	entities := r.ValsToSlice(entity...)

	if r.db.HasFeature(feature.InsertOnConflict) {
		return r.upsertWithPostgresqlOrSQLite(ctx, db.NewInsert(), fields, duplicateKeys, entities)
	} else if r.db.HasFeature(feature.InsertOnDuplicateKey) {
		return r.upsertWithMySQL(ctx, db.NewInsert(), fields, entities)
	}
	return r.upsertFallback(ctx, db, entities)
}

func (r *baseRepositoryImpl[T]) upsertWithMySQL(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, entities []*T) error {
	queryArgs := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields)*2)
	for _, field := range fields {
		queryArgs = append(queryArgs, "? = VALUES(?)")
		args = append(args, bun.Ident(field), bun.Ident(field))
	}
	_, err := insertQuery.
		Model(&entities).
		On("DUPLICATE KEY UPDATE "+strings.Join(queryArgs, ", "), args...).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertWithPostgresqlOrSQLite(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{"id"}
	}
	keyNames := strings.Join(duplicateKeys, ",")
	query := insertQuery.
		Model(&entities).
		On("CONFLICT (" + keyNames + ") DO UPDATE")
	for _, field := range fields {
		query = query.Set("? = EXCLUDED.?", bun.Ident(field), bun.Ident(field))
	}
	_, err := query.Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, db bun.IDB, entities []*T) error {
	for _, entity := range entities {
		_, err := db.NewInsert().Model(entity).Exec(ctx)
		if err != nil {
			_, updateErr := db.NewUpdate().Model(entity).WherePK().Exec(ctx)
			if updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %v", err, updateErr)
			}
		}
	}
	return nil
}
