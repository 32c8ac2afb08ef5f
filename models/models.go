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
	"time"

	"github.com/uptrace/bun"
)

// User is an account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Name           string    `bun:"name,notnull" json:"name"`
	Email          string    `bun:"email,notnull,unique" json:"email"`
	Password       string    `bun:"password,notnull" json:"-"`
	FollowersCount int64     `bun:"followers_count,scanonly" json:"followers_count"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt      time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

func (u *User) BeforeAppendModel(_ context.Context, query bun.Query) error {
	touch(query, &u.CreatedAt, &u.UpdatedAt)
	return nil
}

// Tweet is a post authored by a user. Drafts have IsPublished unset.
type Tweet struct {
	bun.BaseModel `bun:"table:tweets,alias:t"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      int64     `bun:"user_id,notnull" json:"user_id"`
	Tweet       string    `bun:"tweet,type:text,notnull" json:"tweet"`
	IsPublished bool      `bun:"is_published,notnull" json:"is_published"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt   time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*Tweet)(nil)

func (t *Tweet) BeforeAppendModel(_ context.Context, query bun.Query) error {
	touch(query, &t.CreatedAt, &t.UpdatedAt)
	return nil
}

// Follower is one edge of the follow graph: FollowerID follows FollowingID.
type Follower struct {
	bun.BaseModel `bun:"table:followers,alias:f"`

	FollowerID  int64     `bun:"follower_id,pk" json:"follower_id"`
	FollowingID int64     `bun:"following_id,pk" json:"following_id"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

var _ bun.BeforeAppendModelHook = (*Follower)(nil)

func (f *Follower) BeforeAppendModel(_ context.Context, query bun.Query) error {
	touch(query, &f.CreatedAt, nil)
	return nil
}

// touch stamps creation time on insert and modification time on insert and
// update. Explicit creation times are kept.
func touch(query bun.Query, created, updated *time.Time) {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if created != nil && created.IsZero() {
			*created = now
		}
		if updated != nil {
			*updated = now
		}
	case *bun.UpdateQuery:
		if updated != nil {
			*updated = now
		}
	}
}
