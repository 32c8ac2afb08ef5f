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

import "github.com/tomoncle/chirp/filter"

// UserRelation lets tweet filters reach the author, e.g. nameFromModelUser
// or from_user_email.
var UserRelation = filter.Relation{
	Name:       "user",
	Table:      TableUsers,
	ForeignKey: "user_id",
	Key:        "id",
	Columns:    filter.Columns("name", "email"),
	SoftDelete: "deleted_at",
}

// UserSchema filters users by their fillable columns.
var UserSchema = filter.NewSchema("name", "email")

// TweetSchema filters tweets by their fillable columns and by author.
var TweetSchema = filter.NewSchema("tweet", "user_id").With(filter.NewRelationFilter(UserRelation))
