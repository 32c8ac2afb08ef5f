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

package social

import (
	"context"
	"strings"

	"github.com/tomoncle/chirp"
	"github.com/tomoncle/chirp/auth"
	"github.com/tomoncle/chirp/database"
	"github.com/tomoncle/chirp/filter"
	"github.com/tomoncle/chirp/models"
	"github.com/tomoncle/chirp/repository"
	"github.com/tomoncle/chirp/types"
	"github.com/uptrace/bun"
)

// WithFollowersCount selects users together with their follower count.
func WithFollowersCount() repository.QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.ColumnExpr("?TableAlias.*").
			ColumnExpr("(SELECT COUNT(*) FROM ? AS fc WHERE fc.following_id = ?TableAlias.id) AS followers_count",
				bun.Ident(models.TableFollowers))
	}
}

// UserService manages accounts and the follow graph.
type UserService struct {
	users     chirp.Service[models.User]
	followers chirp.Service[models.Follower]
}

var _ auth.UserFinder = (*UserService)(nil)

// NewUserService returns a UserService on db, or on the global database
// when db is nil.
func NewUserService(db *bun.DB) *UserService {
	if db == nil {
		return &UserService{
			users:     chirp.NewService[models.User](models.UserSchema),
			followers: chirp.NewService[models.Follower](nil),
		}
	}
	return &UserService{
		users:     chirp.NewServiceWithDB[models.User](db, models.UserSchema),
		followers: chirp.NewServiceWithDB[models.Follower](db, nil),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) emailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	users, err := s.users.List(ctx, filter.Equals{Column: "email", Value: email}, repository.WithTrashed())
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// Register creates an account with a hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	taken, err := s.emailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: strings.TrimSpace(in.Name), Email: email, Password: hash}
	if err := s.users.Save(ctx, user); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// FindByEmail returns the active account with email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.users.List(ctx, filter.Equals{Column: "email", Value: normalizeEmail(email)})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, repository.ErrRecordNotFound
	}
	return users[0], nil
}

// Find returns the user with id and its follower count.
func (s *UserService) Find(ctx context.Context, id int64) (*models.User, error) {
	return s.users.Get(ctx, id, WithFollowersCount())
}

// Paginate lists users filtered by the request.
func (s *UserService) Paginate(ctx context.Context, req *filter.Request, actor types.Actor) (*types.Pagination[models.User], error) {
	return s.users.Paginate(ctx, req, actor, WithFollowersCount())
}

// Search returns a limited filtered list of users.
func (s *UserService) Search(ctx context.Context, req *filter.Request, actor types.Actor) ([]*models.User, string, error) {
	users, err := s.users.Search(ctx, req, actor, WithFollowersCount())
	if err != nil {
		return nil, "", err
	}
	return users, s.users.SearchURL(req), nil
}

// All returns every user.
func (s *UserService) All(ctx context.Context) ([]*models.User, error) {
	return s.users.All(ctx, WithFollowersCount(), repository.OrderBy("?TableAlias.created_at DESC"))
}

// Update changes the actor's own profile.
func (s *UserService) Update(ctx context.Context, actor types.Actor, id int64, in UpdateUserInput) (*models.User, error) {
	if actor.UserID != id {
		return nil, ErrForbidden
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	columns := []string{"updated_at"}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
		columns = append(columns, "name")
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != user.Email {
			taken, err := s.emailTaken(ctx, email, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmailTaken
			}
			user.Email = email
			columns = append(columns, "email")
		}
	}
	if err := s.users.Update(ctx, user, columns...); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.Find(ctx, id)
}

// Delete soft-deletes the actor's own account and drops its follow edges.
func (s *UserService) Delete(ctx context.Context, actor types.Actor, id int64) error {
	if actor.UserID != id {
		return ErrForbidden
	}
	return s.users.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := s.users.DeleteWithTx(ctx, &tx, id); err != nil {
			return err
		}
		_, err := s.followers.DeleteWhereWithTx(ctx, &tx, filter.AnyOf(
			filter.Equals{Column: "follower_id", Value: id},
			filter.Equals{Column: "following_id", Value: id},
		))
		return err
	})
}

// ChangePassword replaces the actor's password.
func (s *UserService) ChangePassword(ctx context.Context, actor types.Actor, in ChangePasswordInput) error {
	if actor.IsAnonymous() {
		return ErrUnauthenticated
	}
	user, err := s.users.Get(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, in.CurrentPassword) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	return s.users.Update(ctx, user, "password", "updated_at")
}

// Follow makes userID follow followingID. Only the actor may follow on
// its own behalf. Following twice is a no-op.
func (s *UserService) Follow(ctx context.Context, actor types.Actor, userID, followingID int64) error {
	if followingID == userID {
		return ErrCannotFollowSelf
	}
	if actor.UserID != userID {
		return ErrForbidden
	}
	if _, err := s.users.Get(ctx, followingID); err != nil {
		return err
	}
	edge := &models.Follower{FollowerID: userID, FollowingID: followingID}
	return s.followers.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return s.followers.SaveOrUpdateWithTx(ctx, &tx, []string{"follower_id"}, followerKey, edge)
	})
}

// Unfollow removes the follow edge from userID to followingID.
func (s *UserService) Unfollow(ctx context.Context, actor types.Actor, userID, followingID int64) error {
	if followingID == userID {
		return ErrCannotUnfollowSelf
	}
	if actor.UserID != userID {
		return ErrForbidden
	}
	if _, err := s.users.Get(ctx, followingID); err != nil {
		return err
	}
	_, err := s.followers.DeleteWhere(ctx, edgeOf(userID, followingID))
	return err
}

// followerKey is the primary key of a follow edge.
var followerKey = []string{"follower_id", "following_id"}

func edgeOf(followerID, followingID int64) filter.Group {
	return filter.AllOf(
		filter.Equals{Column: "follower_id", Value: followerID},
		filter.Equals{Column: "following_id", Value: followingID},
	)
}

// Following lists the users id follows.
func (s *UserService) Following(ctx context.Context, id int64) ([]*models.User, error) {
	return s.related(ctx, id, "following_id", "follower_id")
}

// Followers lists the users following id.
func (s *UserService) Followers(ctx context.Context, id int64) ([]*models.User, error) {
	return s.related(ctx, id, "follower_id", "following_id")
}

func (s *UserService) related(ctx context.Context, id int64, key, by string) ([]*models.User, error) {
	if _, err := s.users.Get(ctx, id); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, filter.Related{
		Column: "id",
		Table:  models.TableFollowers,
		Key:    key,
		Where:  filter.Equals{Column: by, Value: id},
	}, WithFollowersCount(), repository.OrderBy("?TableAlias.created_at DESC"))
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// SuggestedFollowing lists every user, most followed first and newest
// first among equals.
func (s *UserService) SuggestedFollowing(ctx context.Context) ([]*models.User, error) {
	return s.users.All(ctx,
		WithFollowersCount(),
		repository.OrderBy("followers_count DESC", "?TableAlias.created_at DESC"),
	)
}
