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
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/chirp/filter"
	"github.com/tomoncle/chirp/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

type post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`
	ID            int64     `bun:"id,pk,autoincrement"`
	AuthorID      int64     `bun:"author_id,notnull"`
	Body          string    `bun:"body,notnull"`
	IsPublished   bool      `bun:"is_published,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	DeletedAt     time.Time `bun:"deleted_at,soft_delete,nullzero"`
	Author        *author   `bun:"rel:belongs-to,join:author_id=id"`
}

var postSchema = filter.NewSchema("body", "author_id").With(filter.NewRelationFilter(filter.Relation{
	Name:       "author",
	Table:      "authors",
	ForeignKey: "author_id",
	Key:        "id",
	Columns:    filter.Columns("name"),
}))

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{(*author)(nil), (*post)(nil)} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	return db
}

// seed inserts two authors and five posts, the newest last.
func seed(t *testing.T, db *bun.DB) (*author, *author) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ada := &author{Name: "ada", CreatedAt: base}
	bob := &author{Name: "bob", CreatedAt: base}
	require.NoError(t, NewRepository[author](db).Create(ctx, ada, bob))

	posts := []*post{
		{AuthorID: ada.ID, Body: "hello world", IsPublished: true},
		{AuthorID: ada.ID, Body: "draft hello", IsPublished: false},
		{AuthorID: bob.ID, Body: "good morning", IsPublished: true},
		{AuthorID: bob.ID, Body: "hello again", IsPublished: true},
		{AuthorID: ada.ID, Body: "bye", IsPublished: true},
	}
	for i, p := range posts {
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
	}
	require.NoError(t, NewRepository[post](db).Create(ctx, posts...))
	return ada, bob
}

func bodies(items []*post) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Body)
	}
	return out
}

func TestPaginateFiltersAndCanonicalPath(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	repo := NewRepository[post](db)

	req := filter.ParseRequest("posts", "body=hello&page=1&per_page=2&_token=abc")
	page, err := repo.Paginate(context.Background(), postSchema, req, types.Actor{})
	require.NoError(t, err)

	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.PageSize)
	assert.Equal(t, 2, page.LastPage())
	assert.Equal(t, "/posts?body=hello&per_page=2", page.Path)
	assert.Equal(t, []string{"hello again", "draft hello"}, bodies(page.Items))
	assert.Equal(t, "/posts?body=hello&per_page=2&page=2", page.NextURL())
}

func TestPaginateOrderAndWindow(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	repo := NewRepository[post](db)

	req := filter.ParseRequest("/posts", "order_by=ASC&per_page=2&page=3")
	page, err := repo.Paginate(context.Background(), postSchema, req, types.Actor{})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, []string{"bye"}, bodies(page.Items))
	assert.Empty(t, page.NextURL())
}

func TestPaginateIgnoresUnknownColumns(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	repo := NewRepository[post](db)

	withUnknown, err := repo.Paginate(context.Background(), postSchema, filter.ParseRequest("/posts", "bio=x&is_published=0"), types.Actor{})
	require.NoError(t, err)
	plain, err := repo.Paginate(context.Background(), postSchema, filter.ParseRequest("/posts", ""), types.Actor{})
	require.NoError(t, err)
	assert.Equal(t, bodies(plain.Items), bodies(withUnknown.Items))
	assert.Equal(t, 5, plain.Total)
}

func TestPaginateStrictAndLists(t *testing.T) {
	db := newTestDB(t)
	ada, _ := seed(t, db)
	repo := NewRepository[post](db)
	ctx := context.Background()

	loose, err := repo.Paginate(ctx, postSchema, filter.ParseRequest("/posts", fmt.Sprintf("body=morning&author_id=%d", ada.ID)), types.Actor{})
	require.NoError(t, err)
	assert.Equal(t, 4, loose.Total)

	strict, err := repo.Paginate(ctx, postSchema, filter.ParseRequest("/posts", fmt.Sprintf("body=hello&author_id=%d&is_strict=true", ada.ID)), types.Actor{})
	require.NoError(t, err)
	assert.Equal(t, []string{"draft hello", "hello world"}, bodies(strict.Items))

	list, err := repo.Paginate(ctx, postSchema, filter.ParseRequest("/posts", "body[]=bye&body[]=morning"), types.Actor{})
	require.NoError(t, err)
	assert.Equal(t, []string{"bye", "good morning"}, bodies(list.Items))
}

func TestPaginateRelationFilter(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	repo := NewRepository[post](db)

	req := filter.ParseRequest("/posts", "nameFromModelAuthor=bo")
	page, err := repo.Paginate(context.Background(), postSchema, req, types.Actor{}, WithRelation("Author"))
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	for _, p := range page.Items {
		require.NotNil(t, p.Author)
		assert.Equal(t, "bob", p.Author.Name)
	}
}

func TestPaginateVariants(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	repo := NewRepository[post](db)
	ctx := context.Background()

	published, err := repo.Paginate(ctx, postSchema, filter.ParseRequest("/posts", "body=hello"), types.Actor{}, PublishedOnly())
	require.NoError(t, err)
	assert.Equal(t, []string{"hello again", "hello world"}, bodies(published.Items))

	require.NoError(t, repo.Delete(ctx, published.Items[0].ID))
	visible, err := repo.Paginate(ctx, postSchema, filter.ParseRequest("/posts", ""), types.Actor{})
	require.NoError(t, err)
	assert.Equal(t, 4, visible.Total)

	all, err := repo.Paginate(ctx, postSchema, filter.ParseRequest("/posts", ""), types.Actor{}, WithTrashed())
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total)

	trashed, err := repo.GetAll(ctx, OnlyTrashed())
	require.NoError(t, err)
	assert.Equal(t, []string{"hello again"}, bodies(trashed))
}

func TestPaginateScope(t *testing.T) {
	db := newTestDB(t)
	ada, _ := seed(t, db)
	repo := NewRepository[post](db)

	scope := Where(filter.Equals{Column: "author_id", Value: ada.ID})
	page, err := repo.Paginate(context.Background(), postSchema, filter.ParseRequest("/posts", "body=hello&body=good"), types.Actor{}, scope)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.LastPage())
}

func TestGetOneDeleteRestore(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	repo := NewRepository[post](db)
	ctx := context.Background()

	_, err := repo.GetOne(ctx, 999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 999), ErrRecordNotFound)

	got, err := repo.GetOne(ctx, 1, WithRelation("Author"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Body)
	assert.Equal(t, "ada", got.Author.Name)

	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.GetOne(ctx, 1)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	trashed, err := repo.GetOne(ctx, 1, WithTrashed())
	require.NoError(t, err)
	assert.False(t, trashed.DeletedAt.IsZero())

	require.NoError(t, repo.Restore(ctx, 1))
	assert.ErrorIs(t, repo.Restore(ctx, 1), ErrRecordNotFound)
	_, err = repo.GetOne(ctx, 1)
	assert.NoError(t, err)
}

func TestUpdateColumns(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	repo := NewRepository[post](db)
	ctx := context.Background()

	got, err := repo.GetOne(ctx, 2)
	require.NoError(t, err)
	got.Body = "published now"
	got.IsPublished = true
	require.NoError(t, repo.Update(ctx, got, "is_published"))

	reloaded, err := repo.GetOne(ctx, 2)
	require.NoError(t, err)
	assert.True(t, reloaded.IsPublished)
	assert.Equal(t, "draft hello", reloaded.Body)

	assert.ErrorIs(t, repo.Update(ctx, &post{ID: 999, Body: "x"}), ErrRecordNotFound)
}

func TestListExistsAndDeleteWhere(t *testing.T) {
	db := newTestDB(t)
	_, bob := seed(t, db)
	repo := NewRepository[post](db)
	ctx := context.Background()

	byBob := filter.AllOf(filter.Equals{Column: "author_id", Value: bob.ID})
	items, err := repo.List(ctx, byBob)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	ok, err := repo.Exists(ctx, filter.AllOf(filter.Like{Column: "body", Value: "morning"}))
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.DeleteWhere(ctx, byBob)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = repo.DeleteWhere(ctx, filter.AllOf())
	assert.Error(t, err)

	ok, err = repo.Exists(ctx, byBob)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	repo := NewRepository[post](db)
	ctx := context.Background()

	none, err := repo.Search(ctx, postSchema, filter.ParseRequest("/posts/search", ""), types.Actor{})
	require.NoError(t, err)
	assert.Empty(t, none)

	req := filter.ParseRequest("/posts/search", "body=hello&limit=2&page=4")
	found, err := repo.Search(ctx, postSchema, req, types.Actor{})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello again", "draft hello"}, bodies(found))
	assert.Equal(t, "/posts/search?body=hello&limit=2&page=4", repo.SearchURL(req))
}

func TestUpsertOnSQLite(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	repo := NewRepository[author](db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []string{"name"}, nil, &author{ID: 1, Name: "ada lovelace", CreatedAt: time.Now()}))
	got, err := repo.GetOne(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ada lovelace", got.Name)

	assert.Error(t, repo.Upsert(ctx, nil, nil, got))
}

func TestTransactionalWrites(t *testing.T) {
	db := newTestDB(t)
	ada, bob := seed(t, db)
	authors := NewRepository[author](db)
	posts := NewRepository[post](db)
	ctx := context.Background()
	rollback := errors.New("rollback")

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		require.NoError(t, authors.UpsertWithTx(ctx, &tx, []string{"name"}, []string{"id"},
			&author{ID: ada.ID, Name: "countess", CreatedAt: ada.CreatedAt},
			&author{ID: 3, Name: "cy", CreatedAt: time.Now()}))
		require.NoError(t, posts.DeleteWithTx(ctx, &tx, 1))
		n, err := posts.DeleteWhereWithTx(ctx, &tx, filter.AllOf(filter.Equals{Column: "author_id", Value: bob.ID}))
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	got, err := authors.GetOne(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Name)
	all, err := posts.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := authors.UpsertWithTx(ctx, &tx, []string{"name"}, []string{"id"}, &author{ID: ada.ID, Name: "countess", CreatedAt: ada.CreatedAt}); err != nil {
			return err
		}
		if err := posts.DeleteWithTx(ctx, &tx, 1); err != nil {
			return err
		}
		_, err := posts.DeleteWhereWithTx(ctx, &tx, filter.AllOf(filter.Equals{Column: "author_id", Value: bob.ID}))
		return err
	})
	require.NoError(t, err)

	got, err = authors.GetOne(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "countess", got.Name)
	all, err = posts.GetAll(ctx, OrderBy("?TableAlias.id ASC"))
	require.NoError(t, err)
	assert.Equal(t, []string{"draft hello", "bye"}, bodies(all))

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return posts.DeleteWithTx(ctx, &tx, 1)
	})
	assert.ErrorIs(t, err, ErrRecordNotFound)
	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := posts.DeleteWhereWithTx(ctx, &tx, nil)
		return err
	})
	assert.Error(t, err)
}

func TestApplyPredicateRendersGroups(t *testing.T) {
	db := newTestDB(t)
	pred := filter.AllOf(filter.AnyOf(
		filter.Like{Column: "body", Value: "a"},
		filter.Like{Column: "body", Value: "b"},
	))
	query := db.NewSelect().Model((*post)(nil)).ApplyQueryBuilder(func(q bun.QueryBuilder) bun.QueryBuilder {
		return ApplyPredicate(db, q, pred)
	})
	sql := query.String()
	assert.Contains(t, sql, `"p"."body" LIKE '%a%'`)
	assert.Contains(t, sql, `) OR (`)
	assert.Contains(t, sql, `"p"."body" LIKE '%b%'`)
	assert.Contains(t, sql, `"p"."deleted_at" IS NULL`)

	related := db.NewSelect().Model((*post)(nil)).ApplyQueryBuilder(func(q bun.QueryBuilder) bun.QueryBuilder {
		return ApplyPredicate(db, q, filter.Related{
			Column: "author_id", Table: "authors", Key: "id",
			Where: filter.Equals{Column: "name", Value: "ada"},
		})
	})
	assert.Contains(t, related.String(), `"p"."author_id" IN (SELECT "id" FROM "authors" WHERE ("authors"."name" = 'ada'))`)
	assert.NotContains(t, related.String(), `"authors"."deleted_at"`)

	live := db.NewSelect().Model((*post)(nil)).ApplyQueryBuilder(func(q bun.QueryBuilder) bun.QueryBuilder {
		return ApplyPredicate(db, q, filter.Related{
			Column: "author_id", Table: "authors", Key: "id",
			Where:      filter.Equals{Column: "name", Value: "ada"},
			SoftDelete: "deleted_at",
		})
	})
	sql = live.String()
	assert.Contains(t, sql, `"authors"."deleted_at" IS NULL`)
	assert.Contains(t, sql, `"authors"."name" = 'ada'`)
}
