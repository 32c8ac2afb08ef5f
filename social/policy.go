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

// Package social implements the user, follow graph, and tweet operations on
// top of the generic services.
package social

import (
	"context"
	"errors"

	"github.com/tomoncle/chirp/filter"
	"github.com/tomoncle/chirp/models"
	"github.com/tomoncle/chirp/types"
)

var (
	ErrCannotFollowSelf   = errors.New("you cannot follow yourself")
	ErrCannotUnfollowSelf = errors.New("you cannot unfollow yourself")
	ErrForbidden          = errors.New("this action is unauthorized")
	ErrEmailTaken         = errors.New("the email has already been taken")
	ErrWrongPassword      = errors.New("the current password is incorrect")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// FollowingPolicy narrows records to those authored by users the actor
// follows. Column is the author column, user_id by default.
type FollowingPolicy struct {
	Column string
}

func (p FollowingPolicy) Extend(_ context.Context, _ *filter.Request, actor types.Actor) filter.Predicate {
	column := p.Column
	if column == "" {
		column = "user_id"
	}
	return filter.Related{
		Column: column,
		Table:  models.TableFollowers,
		Key:    "following_id",
		Where:  filter.Equals{Column: "follower_id", Value: actor.UserID},
	}
}

// VisibilityPolicy hides unpublished tweets of other users.
type VisibilityPolicy struct{}

func (VisibilityPolicy) Extend(_ context.Context, _ *filter.Request, actor types.Actor) filter.Predicate {
	published := filter.Equals{Column: "is_published", Value: true}
	if actor.IsAnonymous() {
		return published
	}
	return filter.AnyOf(published, filter.Equals{Column: "user_id", Value: actor.UserID})
}
