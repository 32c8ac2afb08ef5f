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
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomoncle/chirp/auth"
	"github.com/tomoncle/chirp/database"
	"github.com/tomoncle/chirp/filter"
	"github.com/tomoncle/chirp/models"
	"github.com/tomoncle/chirp/repository"
	"github.com/tomoncle/chirp/types"
)

func init() {
	auth.PasswordCost = bcrypt.MinCost
}

func newDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	mm := database.NewMigrationManager(db, database.GetLogger(), database.DataMigrateConfig{EnableForeignKey: true})
	require.NoError(t, mm.RunMigrations(context.Background()))
	return db
}

func register(t *testing.T, users *UserService, name string) *models.User {
	t.Helper()
	user, err := users.Register(context.Background(), RegisterInput{
		Name:                 name,
		Email:                name + "@example.com",
		Password:             "password-" + name,
		PasswordConfirmation: "password-" + name,
	})
	require.NoError(t, err)
	return user
}

func as(u *models.User) types.Actor {
	return types.Actor{UserID: u.ID}
}

func names(users []*models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Name)
	}
	return out
}

func texts(tweets []*models.Tweet) []string {
	out := make([]string, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, t.Tweet)
	}
	return out
}

func TestRegisterAndFind(t *testing.T) {
	users := NewUserService(newDB(t))
	ctx := context.Background()

	ada := register(t, users, "ada")
	assert.NotZero(t, ada.ID)
	assert.NotEqual(t, "password-ada", ada.Password)
	assert.False(t, ada.CreatedAt.IsZero())

	_, err := users.Register(ctx, RegisterInput{Name: "x", Email: " ADA@example.com ", Password: "password1", PasswordConfirmation: "password1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	found, err := users.FindByEmail(ctx, "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, found.ID)
	assert.True(t, auth.CheckPassword(found.Password, "password-ada"))

	_, err = users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestFollowGraph(t *testing.T) {
	users := NewUserService(newDB(t))
	ctx := context.Background()
	ada := register(t, users, "ada")
	bob := register(t, users, "bob")
	cy := register(t, users, "cy")

	assert.ErrorIs(t, users.Follow(ctx, as(ada), ada.ID, ada.ID), ErrCannotFollowSelf)
	assert.ErrorIs(t, users.Follow(ctx, as(bob), ada.ID, cy.ID), ErrForbidden)
	assert.ErrorIs(t, users.Follow(ctx, as(ada), ada.ID, 999), repository.ErrRecordNotFound)

	require.NoError(t, users.Follow(ctx, as(ada), ada.ID, bob.ID))
	require.NoError(t, users.Follow(ctx, as(ada), ada.ID, bob.ID))
	require.NoError(t, users.Follow(ctx, as(ada), ada.ID, cy.ID))
	require.NoError(t, users.Follow(ctx, as(bob), bob.ID, cy.ID))

	following, err := users.Following(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cy", "bob"}, names(following))

	followers, err := users.Followers(ctx, cy.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "ada"}, names(followers))

	found, err := users.Find(ctx, cy.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, found.FollowersCount)

	suggested, err := users.SuggestedFollowing(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cy", "bob", "ada"}, names(suggested))

	assert.ErrorIs(t, users.Unfollow(ctx, as(ada), ada.ID, ada.ID), ErrCannotUnfollowSelf)
	require.NoError(t, users.Unfollow(ctx, as(ada), ada.ID, bob.ID))
	followers, err = users.Followers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)

	_, err = users.Following(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestPaginateUsers(t *testing.T) {
	users := NewUserService(newDB(t))
	ctx := context.Background()
	ada := register(t, users, "ada")
	register(t, users, "bob")
	register(t, users, "adam")

	page, err := users.Paginate(ctx, filter.ParseRequest("/users", "name=ada&password=x&page=1"), as(ada))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, []string{"adam", "ada"}, names(page.Items))
	assert.Equal(t, "/users?name=ada&password=x", page.Path)

	found, url, err := users.Search(ctx, filter.ParseRequest("/users", "email=bob&limit=5"), as(ada))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, names(found))
	assert.Equal(t, "/users?email=bob&limit=5", url)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	users := NewUserService(newDB(t))
	ctx := context.Background()
	ada := register(t, users, "ada")
	bob := register(t, users, "bob")

	name := "Ada Lovelace"
	_, err := users.Update(ctx, as(bob), ada.ID, UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := users.Update(ctx, as(ada), ada.ID, UpdateUserInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)

	taken := "BOB@example.com"
	_, err = users.Update(ctx, as(ada), ada.ID, UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	same := "ada@example.com"
	_, err = users.Update(ctx, as(ada), ada.ID, UpdateUserInput{Email: &same})
	assert.NoError(t, err)

	require.NoError(t, users.Follow(ctx, as(ada), ada.ID, bob.ID))
	require.NoError(t, users.Follow(ctx, as(bob), bob.ID, ada.ID))

	assert.ErrorIs(t, users.Delete(ctx, as(bob), ada.ID), ErrForbidden)
	require.NoError(t, users.Delete(ctx, as(ada), ada.ID))
	_, err = users.Find(ctx, ada.ID)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
	assert.ErrorIs(t, users.Delete(ctx, as(ada), ada.ID), repository.ErrRecordNotFound)

	found, err := users.Find(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, found.FollowersCount)
	following, err := users.Following(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, following)

	_, err = users.Register(ctx, RegisterInput{Name: "again", Email: "ada@example.com", Password: "password1", PasswordConfirmation: "password1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestChangePassword(t *testing.T) {
	users := NewUserService(newDB(t))
	ctx := context.Background()
	ada := register(t, users, "ada")

	err := users.ChangePassword(ctx, as(ada), ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "newpassword"})
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.ErrorIs(t, users.ChangePassword(ctx, types.Actor{}, ChangePasswordInput{}), ErrUnauthenticated)

	require.NoError(t, users.ChangePassword(ctx, as(ada), ChangePasswordInput{CurrentPassword: "password-ada", NewPassword: "newpassword"}))
	found, err := users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(found.Password, "newpassword"))
}

func TestTweets(t *testing.T) {
	db := newDB(t)
	users := NewUserService(db)
	tweets := NewTweetService(db)
	ctx := context.Background()
	ada := register(t, users, "ada")
	bob := register(t, users, "bob")
	draft := false

	_, err := tweets.Create(ctx, types.Actor{}, CreateTweetInput{Tweet: "anon"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	first, err := tweets.Create(ctx, as(ada), CreateTweetInput{Tweet: "hello from ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada", first.User.Name)
	assert.True(t, first.IsPublished)
	_, err = tweets.Create(ctx, as(ada), CreateTweetInput{Tweet: "second ada"})
	require.NoError(t, err)
	hidden, err := tweets.Create(ctx, as(ada), CreateTweetInput{Tweet: "ada draft", IsPublished: &draft})
	require.NoError(t, err)
	_, err = tweets.Create(ctx, as(bob), CreateTweetInput{Tweet: "hello from bob"})
	require.NoError(t, err)

	asBob, err := tweets.Paginate(ctx, filter.ParseRequest("/tweets", ""), as(bob))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello from bob", "second ada", "hello from ada"}, texts(asBob.Items))

	asAda, err := tweets.Paginate(ctx, filter.ParseRequest("/tweets", ""), as(ada))
	require.NoError(t, err)
	assert.Equal(t, 4, asAda.Total)

	hello, err := tweets.Paginate(ctx, filter.ParseRequest("/tweets", "tweet=hello&order_by=asc"), as(bob))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello from ada", "hello from bob"}, texts(hello.Items))

	byAuthor, err := tweets.Paginate(ctx, filter.ParseRequest("/tweets", "nameFromModelUser=bob"), as(ada))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello from bob"}, texts(byAuthor.Items))

	_, err = tweets.Find(ctx, as(bob), hidden.ID)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
	own, err := tweets.Find(ctx, as(ada), hidden.ID)
	require.NoError(t, err)
	assert.False(t, own.IsPublished)

	text := "edited"
	_, err = tweets.Update(ctx, as(bob), first.ID, UpdateTweetInput{Tweet: &text})
	assert.ErrorIs(t, err, ErrForbidden)
	edited, err := tweets.Update(ctx, as(ada), first.ID, UpdateTweetInput{Tweet: &text})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Tweet)

	assert.ErrorIs(t, tweets.Delete(ctx, as(bob), first.ID), ErrForbidden)
	require.NoError(t, tweets.Delete(ctx, as(ada), first.ID))
	_, err = tweets.Find(ctx, as(ada), first.ID)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
	assert.ErrorIs(t, tweets.Restore(ctx, as(bob), first.ID), ErrForbidden)
	require.NoError(t, tweets.Restore(ctx, as(ada), first.ID))
	_, err = tweets.Find(ctx, as(ada), first.ID)
	assert.NoError(t, err)

	require.NoError(t, users.Delete(ctx, as(bob), bob.ID))
	byAuthor, err = tweets.Paginate(ctx, filter.ParseRequest("/tweets", "nameFromModelUser=bob"), as(ada))
	require.NoError(t, err)
	assert.Empty(t, byAuthor.Items)
}

func TestTimelines(t *testing.T) {
	db := newDB(t)
	users := NewUserService(db)
	tweets := NewTweetService(db)
	ctx := context.Background()
	ada := register(t, users, "ada")
	bob := register(t, users, "bob")
	cy := register(t, users, "cy")
	draft := false

	for _, in := range []struct {
		author *models.User
		input  CreateTweetInput
	}{
		{bob, CreateTweetInput{Tweet: "bob one"}},
		{bob, CreateTweetInput{Tweet: "bob draft", IsPublished: &draft}},
		{cy, CreateTweetInput{Tweet: "cy one"}},
		{ada, CreateTweetInput{Tweet: "ada one"}},
	} {
		_, err := tweets.Create(ctx, as(in.author), in.input)
		require.NoError(t, err)
	}

	empty, err := tweets.FollowedTweets(ctx, filter.ParseRequest("/tweets/users-followed-tweets", ""), as(ada))
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	require.NoError(t, users.Follow(ctx, as(ada), ada.ID, bob.ID))
	timeline, err := tweets.FollowedTweets(ctx, filter.ParseRequest("/tweets/users-followed-tweets", "page=1"), as(ada))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob one"}, texts(timeline.Items))
	assert.Equal(t, "/tweets/users-followed-tweets", timeline.Path)

	_, err = tweets.FollowedTweets(ctx, filter.ParseRequest("/tweets/users-followed-tweets", ""), types.Actor{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ofBob, err := tweets.UserTweets(ctx, filter.ParseRequest("/users/2/tweets", ""), as(ada), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob one"}, texts(ofBob.Items))

	ownBob, err := tweets.UserTweets(ctx, filter.ParseRequest("/users/2/tweets", ""), as(bob), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob draft", "bob one"}, texts(ownBob.Items))

	_, err = tweets.UserTweets(ctx, filter.ParseRequest("/users/9/tweets", ""), as(bob), 999)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)

	found, url, err := tweets.Search(ctx, filter.ParseRequest("/tweets", "tweet=one&limit=2"), as(cy))
	require.NoError(t, err)
	assert.Equal(t, []string{"ada one", "cy one"}, texts(found))
	assert.Equal(t, "/tweets?tweet=one&limit=2", url)
}

func TestPolicies(t *testing.T) {
	ctx := context.Background()
	pred := FollowingPolicy{}.Extend(ctx, nil, types.Actor{UserID: 3})
	assert.Equal(t, "user_id IN (SELECT following_id FROM followers WHERE follower_id = 3)", pred.String())

	assert.Equal(t, "is_published = true", VisibilityPolicy{}.Extend(ctx, nil, types.Actor{}).String())
	assert.Equal(t, "(is_published = true OR user_id = 3)", VisibilityPolicy{}.Extend(ctx, nil, types.Actor{UserID: 3}).String())
}
