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

package models

import (
	"context"

	"github.com/tomoncle/chirp/database"
	"github.com/uptrace/bun"
)

const (
	TableUsers     = "users"
	TableTweets    = "tweets"
	TableFollowers = "followers"
)

var indexes = []struct {
	name    string
	model   interface{}
	columns []string
}{
	{"idx_tweets_user_id", (*Tweet)(nil), []string{"user_id"}},
	{"idx_tweets_created_at", (*Tweet)(nil), []string{"created_at"}},
	{"idx_users_created_at", (*User)(nil), []string{"created_at"}},
	{"idx_followers_following_id", (*Follower)(nil), []string{"following_id"}},
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*User)(nil), 10))
	database.RegisteredModel(database.NewModelAdapter((*Tweet)(nil), 20))
	database.RegisteredModel(database.NewModelAdapter((*Follower)(nil), 30))

	database.RegisteredForeignKey(database.ForeignKeyConstraint{
		Table: TableTweets, Column: "user_id",
		ReferenceTable: TableUsers, ReferenceColumn: "id",
		OnDelete: "CASCADE", OnUpdate: "CASCADE",
	})
	database.RegisteredForeignKey(database.ForeignKeyConstraint{
		Table: TableFollowers, Column: "follower_id",
		ReferenceTable: TableUsers, ReferenceColumn: "id",
		OnDelete: "CASCADE", OnUpdate: "CASCADE",
	})
	database.RegisteredForeignKey(database.ForeignKeyConstraint{
		Table: TableFollowers, Column: "following_id",
		ReferenceTable: TableUsers, ReferenceColumn: "id",
		OnDelete: "CASCADE", OnUpdate: "CASCADE",
	})

	database.RegisteredMigration(database.MigrationItem{
		Version:     "003",
		Name:        "create_indexes",
		Description: "Index foreign keys and creation time",
		Up:          createIndexes,
		Down:        dropIndexes,
	})
}

func createIndexes(ctx context.Context, db bun.IDB) error {
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func dropIndexes(ctx context.Context, db bun.IDB) error {
	for _, idx := range indexes {
		if _, err := db.NewDropIndex().Model(idx.model).Index(idx.name).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
